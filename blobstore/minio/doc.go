// Package minio stores datasets in MinIO or any other S3-compatible object
// store reachable with static credentials (Ceph, Garage, SeaweedFS).
//
//	store, err := minio.Dial("localhost:9000", "minioadmin", "minioadmin", false, "datasets", "coco/v2")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ds, warnings, err := session.Import(ctx, annoset.AutoFormat, store, format.Options{})
//
// Blob names are keys below the root prefix. Reads are ranged GETs and
// writes stream through a pipe into PutObject, so large mask documents and
// media are never buffered whole. The annoset CLI resolves
// minio://bucket/prefix locations with this package.
package minio
