package format

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"

	"github.com/hupe1980/annoset/blobstore"
	"github.com/hupe1980/annoset/dataset"
	"github.com/hupe1980/annoset/media"
)

// WriteBlob streams data into name, throttled by the options' resource
// controller.
func WriteBlob(ctx context.Context, store blobstore.Store, name string, data []byte, opts Options) error {
	w, err := store.Create(ctx, name)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := io.Copy(opts.Resources.Writer(ctx, w), bytes.NewReader(data)); err != nil {
		_ = w.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	return w.Close()
}

// ReadBlob reads a whole blob, throttled by the options' resource
// controller.
func ReadBlob(ctx context.Context, store blobstore.Store, name string, opts Options) ([]byte, error) {
	b, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = b.Close() }()
	if b.Size() == 0 {
		return []byte{}, nil
	}
	rc, err := b.ReadRange(ctx, 0, b.Size())
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(opts.Resources.Reader(ctx, rc))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

// SaveMedia encodes the item's image into name. It reports false when the
// item has no pixel data.
func SaveMedia(ctx context.Context, store blobstore.Store, it *dataset.Item, name string, opts Options) (bool, error) {
	if !it.Media.HasData() {
		return false, nil
	}
	img, err := it.Media.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("load media of %s: %w", it.Key(), err)
	}
	var buf bytes.Buffer
	if err := media.Encode(&buf, img, path.Ext(name)); err != nil {
		return false, fmt.Errorf("encode media of %s: %w", it.Key(), err)
	}
	return true, WriteBlob(ctx, store, name, buf.Bytes(), opts)
}

// AttachMedia returns a descriptor for name that loads lazily from store
// when the blob exists.
func AttachMedia(ctx context.Context, store blobstore.Store, name string, d *media.Descriptor, opts Options) (*media.Descriptor, error) {
	ok, err := blobstore.Exists(ctx, store, name)
	if err != nil || !ok {
		return d, err
	}
	if d == nil {
		d = media.NewImage(name, nil)
	}
	return d.WithLoader(media.StoreLoader(store, name, opts.MediaCache)), nil
}
