// Package s3 provides an Amazon S3 implementation of blobstore.Store.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("datasets/coco/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	ds, warnings, err := session.Import(ctx, "yolo", store)
//
// The CLI accepts s3://bucket/prefix paths; ParseURI splits them.
//
// # Features
//
//   - Range reads for partial fetches
//   - Multipart streaming uploads through the s3 manager
//   - CRC32C checksums on uploads
//   - Automatic pagination for listing
package s3
