package native

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/annoset/annotation"
	"github.com/hupe1980/annoset/blobstore"
	"github.com/hupe1980/annoset/category"
	"github.com/hupe1980/annoset/codec"
	"github.com/hupe1980/annoset/dataset"
	"github.com/hupe1980/annoset/format"
	"github.com/hupe1980/annoset/media"
	"github.com/hupe1980/annoset/testutil"
)

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := testutil.NewRNG(42).Dataset(testutil.DatasetConfig{
		Items:      25,
		Subsets:    []string{"train", "val", "test"},
		Attributes: true,
	})
	src.Categories().Mask = category.NewMaskCategories()
	require.NoError(t, src.Categories().Mask.SetHex(0, "#ff8800"))
	src.Categories().Points = category.NewPointsCategories()
	src.Categories().Points.Add(1, []string{"head", "tail", "paw"}, [][2]int{{0, 1}})

	for _, c := range []codec.Compression{codec.None, codec.Zstd, codec.LZ4} {
		t.Run(c.String(), func(t *testing.T) {
			store := blobstore.NewMemoryStore()
			require.NoError(t, Format{}.Export(ctx, src, store, format.Options{Compression: c}))

			names, err := store.List(ctx, "annotations/")
			require.NoError(t, err)
			assert.Equal(t, []string{
				"annotations/test.json" + c.Ext(),
				"annotations/train.json" + c.Ext(),
				"annotations/val.json" + c.Ext(),
			}, names)

			writes := store.Writes()
			got, warnings, err := Format{}.Extract(ctx, store, format.Options{})
			require.NoError(t, err)
			assert.Empty(t, warnings)
			testutil.RequireEqualDatasets(t, src, got, dataset.Strict(), dataset.CompareItemAttributes())
			assert.True(t, src.Categories().Equal(got.Categories()))
			assert.Equal(t, writes, store.Writes(), "extract must not modify the store")
		})
	}
}

func TestExportDeterministic(t *testing.T) {
	ctx := context.Background()
	src := testutil.NewRNG(7).Dataset(testutil.DatasetConfig{Items: 10, Attributes: true})

	a, b := blobstore.NewMemoryStore(), blobstore.NewMemoryStore()
	require.NoError(t, Format{}.Export(ctx, src, a, format.Options{Compression: codec.Zstd}))
	require.NoError(t, Format{}.Export(ctx, src.Clone(), b, format.Options{Compression: codec.Zstd}))

	da, err := blobstore.ReadAll(ctx, a, "annotations/default.json.zst")
	require.NoError(t, err)
	db, err := blobstore.ReadAll(ctx, b, "annotations/default.json.zst")
	require.NoError(t, err)
	assert.Equal(t, da, db)
}

func TestEmptyDatasetKeepsCategories(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	src := dataset.New(category.NewRegistry("a", "b"))
	require.NoError(t, Format{}.Export(ctx, src, store, format.Options{}))

	got, _, err := Format{}.Extract(ctx, store, format.Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, got.Len())
	assert.Equal(t, []string{"a", "b"}, got.Categories().Labels().Names())
}

func TestSaveMedia(t *testing.T) {
	ctx := context.Background()
	img := image.NewNRGBA(image.Rect(0, 0, 6, 4))
	img.Set(1, 1, color.NRGBA{R: 255, A: 255})

	src := dataset.New(category.NewRegistry("a"))
	require.NoError(t, src.Add(dataset.NewItem("img1",
		dataset.WithMedia(media.FromImage(img)),
		dataset.WithAnnotations(annotation.New(annotation.Bbox{X: 1, Y: 1, W: 2, H: 2}, annotation.WithLabel(0))),
	)))

	store := blobstore.NewMemoryStore()
	require.NoError(t, Format{}.Export(ctx, src, store, format.Options{SaveMedia: true, ImageExt: "png"}))

	ok, err := blobstore.Exists(ctx, store, "images/default/img1.png")
	require.NoError(t, err)
	require.True(t, ok)

	got, _, err := Format{}.Extract(ctx, store, format.Options{})
	require.NoError(t, err)
	it, err := got.Get("img1", dataset.DefaultSubset)
	require.NoError(t, err)
	require.True(t, it.Media.HasData())
	loaded, err := it.Media.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 6, 4), loaded.Bounds())
}

func TestMalformedRecordsBecomeWarnings(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	doc := `{
	  "info": {"format_version": 1, "subset": "train"},
	  "categories": {"label": {"labels": [{"name": "car"}]}},
	  "items": [
	    {"id": "1", "annotations": [
	      {"id": 1, "type": "bbox", "label_id": 0, "bbox": [0, 0, 2, 2]},
	      {"id": 2, "type": "hexagon"},
	      {"id": 3, "type": "bbox", "label_id": 5, "bbox": [0, 0, 2, 2]},
	      {"id": 4, "type": "bbox", "bbox": [0, 0, 2]}
	    ]},
	    {"id": "1", "annotations": []}
	  ]
	}`
	require.NoError(t, store.Put(ctx, "annotations/train.json", []byte(doc)))

	got, warnings, err := Format{}.Extract(ctx, store, format.Options{})
	require.NoError(t, err)
	assert.Len(t, warnings, 4)
	for _, w := range warnings {
		assert.Equal(t, "1", w.ItemID)
		assert.Equal(t, "train", w.Subset)
	}
	it, err := got.Get("1", "train")
	require.NoError(t, err)
	assert.Len(t, it.Annotations, 1)
}

func TestUnreadableSource(t *testing.T) {
	ctx := context.Background()

	_, _, err := Format{}.Extract(ctx, blobstore.NewMemoryStore(), format.Options{})
	require.ErrorIs(t, err, format.ErrFormat)

	store := blobstore.NewMemoryStore()
	require.NoError(t, store.Put(ctx, "annotations/default.json", []byte("{not json")))
	_, _, err = Format{}.Extract(ctx, store, format.Options{})
	require.ErrorIs(t, err, format.ErrFormat)
	var fe *format.FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "annotations/default.json", fe.Path)

	require.NoError(t, store.Put(ctx, "annotations/default.json", []byte(`{"info": {"format_version": 99}}`)))
	_, _, err = Format{}.Extract(ctx, store, format.Options{})
	require.ErrorIs(t, err, format.ErrFormat)
}

func TestDetectAndRegistry(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	ok, err := Format{}.Detect(ctx, store)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Put(ctx, "annotations/readme.txt", []byte("x")))
	ok, _ = Format{}.Detect(ctx, store)
	assert.False(t, ok)

	require.NoError(t, store.Put(ctx, "annotations/val.json.lz4", []byte("x")))
	ok, _ = Format{}.Detect(ctx, store)
	assert.True(t, ok)

	f, err := format.Default().Lookup(Name)
	require.NoError(t, err)
	assert.Equal(t, Name, f.Name())
}

func TestMaskRLE(t *testing.T) {
	m := annotation.NewMask(5, 3)
	m.SetRect(0, 0, 2, 1)
	m.Set(4, 2)
	doc := encodeMask(m)
	assert.Equal(t, []uint32{0, 2, 12, 1}, doc.Counts)

	back, err := decodeMask(doc)
	require.NoError(t, err)
	assert.True(t, annotation.ShapeEqual(m, back, 0))

	empty := encodeMask(annotation.NewMask(2, 2))
	assert.Equal(t, []uint32{4}, empty.Counts)

	_, err = decodeMask(&maskDoc{Width: 2, Height: 2, Counts: []uint32{3, 3}})
	require.Error(t, err)
}
