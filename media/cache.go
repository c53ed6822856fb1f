package media

import (
	"context"
	"image"
	"io"

	"github.com/hupe1980/annoset/blobstore"
	"github.com/hupe1980/annoset/internal/cache"
	"github.com/hupe1980/annoset/resource"
)

// Cache keeps decoded images keyed by location. It is safe for concurrent
// use and may be shared by all descriptors of a session.
type Cache struct {
	lru *cache.LRU[string, image.Image]
}

// NewCache creates a cache holding about capacity bytes of decoded pixels.
func NewCache(capacity int64, rc *resource.Controller) *Cache {
	return &Cache{lru: cache.New[string](capacity, imageSize, rc)}
}

func imageSize(img image.Image) int64 {
	b := img.Bounds()
	return int64(b.Dx()) * int64(b.Dy()) * 4
}

// Stats returns hit and miss counts.
func (c *Cache) Stats() (hits, misses int64) {
	return c.lru.Stats()
}

// Loader returns a Loader that decodes the stream returned by open and
// caches the result under key.
func (c *Cache) Loader(key string, open func(ctx context.Context) (io.ReadCloser, error)) Loader {
	return func(ctx context.Context) (image.Image, error) {
		if c != nil {
			if img, ok := c.lru.Get(key); ok {
				return img, nil
			}
		}
		rc, err := open(ctx)
		if err != nil {
			return nil, err
		}
		defer func() { _ = rc.Close() }()

		img, err := Decode(rc)
		if err != nil {
			return nil, err
		}
		if c != nil {
			c.lru.Set(key, img)
		}
		return img, nil
	}
}

// StoreLoader returns a Loader reading name from store. c may be nil.
func StoreLoader(store blobstore.Store, name string, c *Cache) Loader {
	open := func(ctx context.Context) (io.ReadCloser, error) {
		b, err := store.Open(ctx, name)
		if err != nil {
			return nil, err
		}
		r, err := b.ReadRange(ctx, 0, b.Size())
		if err != nil {
			_ = b.Close()
			return nil, err
		}
		return &blobReader{ReadCloser: r, blob: b}, nil
	}
	return c.Loader(name, open)
}

type blobReader struct {
	io.ReadCloser
	blob blobstore.Blob
}

func (r *blobReader) Close() error {
	err := r.ReadCloser.Close()
	if cerr := r.blob.Close(); err == nil {
		err = cerr
	}
	return err
}
