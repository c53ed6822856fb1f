package media

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/hupe1980/annoset/blobstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 7, A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, img, "png"))
	return buf.Bytes()
}

func TestKind(t *testing.T) {
	for _, k := range []Kind{KindImage, KindVideoFrame, KindPointCloud} {
		got, ok := ParseKind(k.String())
		require.True(t, ok)
		assert.Equal(t, k, got)
	}
	_, ok := ParseKind("hologram")
	assert.False(t, ok)
}

func TestFromImage(t *testing.T) {
	d := FromImage(testImage(6, 4))
	assert.Equal(t, &Size{Width: 6, Height: 4}, d.Size)
	require.True(t, d.HasData())

	img, err := d.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, img.Bounds().Dx())
}

func TestFromFileReadsHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "img.png")
	require.NoError(t, os.WriteFile(path, encodePNG(t, testImage(10, 3)), 0o600))

	d, err := FromFile(path)
	require.NoError(t, err)
	assert.Equal(t, KindImage, d.Kind)
	assert.Equal(t, &Size{Width: 10, Height: 3}, d.Size)

	img, err := d.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 10, 3), img.Bounds())

	_, err = FromFile(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}

func TestLoadWithoutData(t *testing.T) {
	d := NewImage("a.jpg", &Size{Width: 1, Height: 1})
	_, err := d.Load(context.Background())
	assert.ErrorIs(t, err, ErrNoData)
}

func TestLoadFillsUnknownSize(t *testing.T) {
	d := NewImage("a.png", nil).WithLoader(func(context.Context) (image.Image, error) {
		return testImage(5, 2), nil
	})
	_, err := d.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &Size{Width: 5, Height: 2}, d.Size)
}

func TestCloneAndSameSize(t *testing.T) {
	a := NewVideoFrame("v.mp4", 3, &Size{Width: 4, Height: 4})
	b := a.Clone()
	b.Size.Width = 8
	assert.Equal(t, 4, a.Size.Width)
	assert.False(t, SameSize(a, b))
	assert.True(t, SameSize(a, a.Clone()))
	assert.True(t, SameSize(nil, NewPointCloud("p.pcd")))
	assert.False(t, SameSize(a, nil))
}

func TestStoreLoaderUsesCache(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	require.NoError(t, store.Put(ctx, "images/a.png", encodePNG(t, testImage(4, 4))))

	c := NewCache(1<<20, nil)
	d := NewImage("images/a.png", nil).WithLoader(StoreLoader(store, "images/a.png", c))

	_, err := d.Load(ctx)
	require.NoError(t, err)
	_, err = d.Load(ctx)
	require.NoError(t, err)

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)

	missing := StoreLoader(store, "nope.png", nil)
	_, err = missing(ctx)
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestExt(t *testing.T) {
	assert.Equal(t, ".jpg", Ext("a/b/C.JPG", ".png"))
	assert.Equal(t, ".png", Ext("noext", ".png"))
}
