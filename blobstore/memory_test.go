package blobstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Put(ctx, "b/2", []byte("two")))
	w, err := s.Create(ctx, "a/1")
	require.NoError(t, err)
	_, err = w.Write([]byte("one"))
	require.NoError(t, err)

	ok, err := Exists(ctx, s, "a/1")
	require.NoError(t, err)
	assert.False(t, ok, "blob is visible only after Close")
	require.NoError(t, w.Close())

	data, err := ReadAll(ctx, s, "a/1")
	require.NoError(t, err)
	assert.Equal(t, "one", string(data))

	names, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a/1", "b/2"}, names)

	dst := NewMemoryStore()
	require.NoError(t, Copy(ctx, dst, "copy", s, "b/2"))
	data, err = ReadAll(ctx, dst, "copy")
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))

	require.NoError(t, s.Delete(ctx, "a/1"))
	_, err = ReadAll(ctx, s, "a/1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, s.Len())
}

func TestMemoryStore_PutCopiesInput(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	buf := []byte("abc")
	require.NoError(t, s.Put(ctx, "x", buf))
	buf[0] = 'z'

	data, err := ReadAll(ctx, s, "x")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))
}

func TestReadAllEmptyBlob(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Put(ctx, "empty", nil))
	data, err := ReadAll(ctx, s, "empty")
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestMemoryStore_Writes(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Put(ctx, "a", []byte("1")))
	w, err := s.Create(ctx, "b")
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, s.Delete(ctx, "missing"))
	assert.Equal(t, int64(2), s.Writes())

	_, err = ReadAll(ctx, s, "a")
	require.NoError(t, err)
	_, err = s.List(ctx, "")
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, "a"))
	assert.Equal(t, int64(3), s.Writes())
}
