package main

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/hupe1980/annoset/blobstore"
	"github.com/hupe1980/annoset/blobstore/minio"
	"github.com/hupe1980/annoset/blobstore/s3"
	"github.com/hupe1980/annoset/resource"
)

const minioScheme = "minio://"

// openStore resolves a location: a local directory, s3://bucket/prefix or
// minio://bucket/prefix. Remote stores are read through a block cache when
// blob_cache is set.
func openStore(ctx context.Context, cfg *Config, loc string, rc *resource.Controller) (blobstore.Store, error) {
	var store blobstore.Store
	switch {
	case s3.IsURI(loc):
		bucket, prefix, err := s3.ParseURI(loc)
		if err != nil {
			return nil, err
		}
		var opts []s3.Option
		if prefix != "" {
			opts = append(opts, s3.WithPrefix(prefix))
		}
		if cfg.S3.Region != "" {
			opts = append(opts, s3.WithRegion(cfg.S3.Region))
		}
		if cfg.S3.Endpoint != "" {
			opts = append(opts, s3.WithEndpoint(cfg.S3.Endpoint))
		}
		s, err := s3.New(ctx, bucket, opts...)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", loc, err)
		}
		store = s
	case strings.HasPrefix(loc, minioScheme):
		u, err := url.Parse(loc)
		if err != nil || u.Host == "" {
			return nil, fmt.Errorf("invalid minio uri %q", loc)
		}
		if cfg.MinIO.Endpoint == "" {
			return nil, fmt.Errorf("open %s: minio.endpoint is not configured", loc)
		}
		s, err := minio.Dial(cfg.MinIO.Endpoint, cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, cfg.MinIO.Secure, u.Host, strings.Trim(u.Path, "/"))
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", loc, err)
		}
		store = s
	default:
		if loc == "" {
			return nil, fmt.Errorf("empty location")
		}
		return blobstore.NewLocalStore(loc), nil
	}

	if cfg.BlobCache > 0 {
		store = blobstore.NewCachingStore(store, cfg.BlobCache, 1<<20, rc)
	}
	return store, nil
}
