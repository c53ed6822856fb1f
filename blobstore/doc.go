// Package blobstore is the storage abstraction behind dataset import and
// export.
//
// Format plugins read and write named blobs (annotation files, media)
// through the Store interface, so the same exporter can target a local
// directory, memory, or object storage:
//
//   - MemoryStore: in-process maps, used by tests and conversions
//   - LocalStore: a directory on the local filesystem
//   - s3.Store: Amazon S3 with range reads and multipart uploads
//   - minio.Store: MinIO and other S3-compatible services
//
// CachingStore wraps any Store with an LRU block cache for remote sources
// that are read repeatedly.
package blobstore
