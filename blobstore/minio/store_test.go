package minio

import (
	"context"
	"os"
	"testing"

	"github.com/hupe1980/annoset/blobstore"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMinioStore_Integration requires a running MinIO instance.
func TestMinioStore_Integration(t *testing.T) {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	if endpoint == "" {
		endpoint = "localhost:9000"
	}
	bucket := "test-annoset"

	store, err := Dial(endpoint, "minioadmin", "minioadmin", false, bucket, "test-prefix/")
	if err != nil {
		t.Skipf("MinIO client creation failed: %v", err)
	}

	ctx := context.Background()
	if _, err := store.client.ListBuckets(ctx); err != nil {
		t.Skipf("MinIO not available: %v", err)
	}

	exists, err := store.client.BucketExists(ctx, bucket)
	require.NoError(t, err)
	if !exists {
		require.NoError(t, store.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}))
	}

	data := []byte("0 0.5 0.5 0.25 0.25\n")
	require.NoError(t, store.Put(ctx, "obj_train_data/a.txt", data))

	got, err := blobstore.ReadAll(ctx, store, "obj_train_data/a.txt")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	names, err := store.List(ctx, "obj_train_data/")
	require.NoError(t, err)
	assert.Contains(t, names, "obj_train_data/a.txt")

	wb, err := store.Create(ctx, "stream.txt")
	require.NoError(t, err)
	_, err = wb.Write([]byte("streamed data"))
	require.NoError(t, err)
	require.NoError(t, wb.Close())

	blob, err := store.Open(ctx, "stream.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(13), blob.Size())
	require.NoError(t, blob.Close())

	require.NoError(t, store.Delete(ctx, "stream.txt"))
	require.NoError(t, store.Delete(ctx, "obj_train_data/a.txt"))
	_, err = store.Open(ctx, "stream.txt")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}
