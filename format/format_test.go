package format

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/annoset/blobstore"
	"github.com/hupe1980/annoset/dataset"
)

type stubFormat struct {
	name   string
	marker string
}

func (f stubFormat) Name() string { return f.name }

func (f stubFormat) Detect(ctx context.Context, store blobstore.Store) (bool, error) {
	return blobstore.Exists(ctx, store, f.marker)
}

func (stubFormat) Extract(context.Context, blobstore.Store, Options) (*dataset.Dataset, []Warning, error) {
	return nil, nil, errors.New("not implemented")
}

func (stubFormat) Export(context.Context, dataset.Source, blobstore.Store, Options) error {
	return nil
}

func TestRegistry(t *testing.T) {
	ctx := context.Background()
	r, err := NewRegistry(stubFormat{name: "b", marker: "b.txt"}, stubFormat{name: "a", marker: "a.txt"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, r.Names())

	require.Error(t, r.Register(stubFormat{name: "a"}))

	f, err := r.Lookup("b")
	require.NoError(t, err)
	assert.Equal(t, "b", f.Name())

	_, err = r.Lookup("coco")
	require.ErrorIs(t, err, ErrUnknownFormat)

	store := blobstore.NewMemoryStore()
	require.NoError(t, store.Put(ctx, "b.txt", nil))
	found, err := r.Detect(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, found)
}

func TestFormatError(t *testing.T) {
	cause := errors.New("boom")
	err := error(&FormatError{Format: "yolo", Path: "obj.data", Err: cause})
	assert.ErrorIs(t, err, ErrFormat)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "yolo: obj.data: boom", err.Error())
	assert.Equal(t, "native: no documents", Errorf("native", "", "no %s", "documents").Error())
}

func TestWarningString(t *testing.T) {
	assert.Equal(t, "a.txt:3 (train/1): bad", Warning{ItemID: "1", Subset: "train", Path: "a.txt", Line: 3, Message: "bad"}.String())
	assert.Equal(t, "obj.data: bad", Warning{Path: "obj.data", Message: "bad"}.String())
}

func TestOptionsExt(t *testing.T) {
	assert.Equal(t, ".jpg", Options{}.Ext(""))
	assert.Equal(t, ".png", Options{}.Ext("x/Y.PNG"))
	assert.Equal(t, ".png", Options{ImageExt: "PNG"}.Ext("a.jpg"))
	assert.Equal(t, ".bmp", Options{ImageExt: ".bmp"}.Ext("a.jpg"))
}

func TestBlobHelpers(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	require.NoError(t, WriteBlob(ctx, store, "x/y", []byte("hello"), Options{}))
	data, err := ReadBlob(ctx, store, "x/y", Options{})
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	_, err = ReadBlob(ctx, store, "missing", Options{})
	require.ErrorIs(t, err, blobstore.ErrNotFound)

	d, err := AttachMedia(ctx, store, "missing.jpg", nil, Options{})
	require.NoError(t, err)
	assert.Nil(t, d)
}
