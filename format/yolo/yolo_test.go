package yolo

import (
	"context"
	"image"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/annoset/annotation"
	"github.com/hupe1980/annoset/blobstore"
	"github.com/hupe1980/annoset/category"
	"github.com/hupe1980/annoset/dataset"
	"github.com/hupe1980/annoset/format"
	"github.com/hupe1980/annoset/media"
	"github.com/hupe1980/annoset/testutil"
)

func labels(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = "label_" + string(rune('0'+i))
	}
	return out
}

func box(label int, x, y, w, h float64) *annotation.Annotation {
	return annotation.New(annotation.Bbox{X: x, Y: y, W: w, H: h}, annotation.WithLabel(label))
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	src, err := dataset.FromItems(category.NewRegistry(labels(10)...),
		dataset.NewItem("1", dataset.WithSubset("train"), dataset.WithImageSize(15, 10), dataset.WithAnnotations(
			box(2, 0, 2, 4, 2),
			box(4, 3, 3, 2, 3),
		)),
		dataset.NewItem("2", dataset.WithSubset("train"), dataset.WithImageSize(640, 480), dataset.WithAnnotations(
			box(0, 100.25, 33.125, 212.5, 400.75),
		)),
		dataset.NewItem("nested/3", dataset.WithSubset("valid"), dataset.WithImageSize(20, 10)),
	)
	require.NoError(t, err)

	store := blobstore.NewMemoryStore()
	require.NoError(t, Format{}.Export(ctx, src, store, format.Options{}))

	data, err := blobstore.ReadAll(ctx, store, "obj.data")
	require.NoError(t, err)
	assert.Equal(t, "classes = 10\ntrain = data/train.txt\nvalid = data/valid.txt\nnames = data/obj.names\nbackup = backup/\n", string(data))

	list, err := blobstore.ReadAll(ctx, store, "train.txt")
	require.NoError(t, err)
	assert.Equal(t, "data/obj_train_data/1.jpg\ndata/obj_train_data/2.jpg\n", string(list))

	boxes, err := blobstore.ReadAll(ctx, store, "obj_train_data/1.txt")
	require.NoError(t, err)
	rows := strings.Split(strings.TrimSpace(string(boxes)), "\n")
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"2", "4"}, []string{strings.Fields(rows[0])[0], strings.Fields(rows[1])[0]})
	assert.Equal(t, "0.3", strings.Fields(rows[0])[2])

	got, warnings, err := Format{}.Extract(ctx, store, format.Options{})
	require.NoError(t, err)
	assert.Empty(t, warnings)
	testutil.RequireEqualDatasets(t, src, got)
	assert.Equal(t, labels(10), got.Categories().Labels().Names())
}

func TestExportSkipsUnsupported(t *testing.T) {
	ctx := context.Background()
	src, err := dataset.FromItems(category.NewRegistry("a"),
		dataset.NewItem("1", dataset.WithImageSize(10, 10), dataset.WithAnnotations(
			box(0, 1, 1, 2, 2),
			annotation.New(annotation.Polygon{Points: []float64{0, 0, 1, 0, 1, 1}}, annotation.WithLabel(0)),
			annotation.New(annotation.Bbox{X: 1, Y: 1, W: 1, H: 1}),
		)),
	)
	require.NoError(t, err)

	store := blobstore.NewMemoryStore()
	require.NoError(t, Format{}.Export(ctx, src, store, format.Options{}))
	got, _, err := Format{}.Extract(ctx, store, format.Options{})
	require.NoError(t, err)
	it, err := got.Get("1", dataset.DefaultSubset)
	require.NoError(t, err)
	require.Len(t, it.Annotations, 1)
}

func TestExportRequiresSize(t *testing.T) {
	src, err := dataset.FromItems(category.NewRegistry("a"),
		dataset.NewItem("1", dataset.WithAnnotations(box(0, 1, 1, 2, 2))),
	)
	require.NoError(t, err)
	err = Format{}.Export(context.Background(), src, blobstore.NewMemoryStore(), format.Options{})
	require.ErrorIs(t, err, format.ErrFormat)
}

func TestSaveMediaGivesSize(t *testing.T) {
	ctx := context.Background()
	img := image.NewGray(image.Rect(0, 0, 8, 6))
	src, err := dataset.FromItems(category.NewRegistry("a"),
		dataset.NewItem("1", dataset.WithMedia(media.FromImage(img)), dataset.WithAnnotations(box(0, 1, 1, 2, 2))),
	)
	require.NoError(t, err)

	store := blobstore.NewMemoryStore()
	require.NoError(t, Format{}.Export(ctx, src, store, format.Options{SaveMedia: true, ImageExt: ".png"}))
	// without the meta file the size comes from the saved image
	require.NoError(t, store.Delete(ctx, "obj_default_data/images.meta"))

	got, warnings, err := Format{}.Extract(ctx, store, format.Options{})
	require.NoError(t, err)
	assert.Empty(t, warnings)
	testutil.RequireEqualDatasets(t, src, got)
	it, _ := got.Get("1", dataset.DefaultSubset)
	assert.True(t, it.Media.HasData())
}

func TestMalformedLines(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	put := func(name, data string) { require.NoError(t, store.Put(ctx, name, []byte(data))) }
	put("obj.data", "classes = 2\ntrain = data/train.txt\nnames = data/obj.names\n")
	put("obj.names", "cat\ndog\n")
	put("train.txt", "data/obj_train_data/a.jpg\ndata/obj_train_data/b.jpg\ndata/elsewhere/c.jpg\n")
	put("obj_train_data/images.meta", "a 100 50\n")
	put("obj_train_data/a.txt", "0 0.5 0.5 0.2 0.2\n7 0.5 0.5 0.1 0.1\n1 0.5 x 0.1 0.1\n1 0.5\n")
	put("obj_train_data/b.txt", "1 0.5 0.5 0.1 0.1\n")

	got, warnings, err := Format{}.Extract(ctx, store, format.Options{})
	require.NoError(t, err)
	require.Len(t, warnings, 5)
	assert.Equal(t, "obj_train_data/a.txt:2 (train/a): invalid label \"7\"", warnings[0].String())
	assert.Equal(t, 3, warnings[1].Line)
	assert.Equal(t, 4, warnings[2].Line)
	assert.Equal(t, "b", warnings[3].ItemID)
	assert.Contains(t, warnings[4].Message, "outside")

	a, err := got.Get("a", "train")
	require.NoError(t, err)
	require.Len(t, a.Annotations, 1)
	assert.True(t, annotation.ShapeEqual(annotation.Bbox{X: 40, Y: 20, W: 20, H: 10}, a.Annotations[0].Shape, 1e-9))

	b, err := got.Get("b", "train")
	require.NoError(t, err)
	assert.Empty(t, b.Annotations)
}

func TestUnreadable(t *testing.T) {
	_, _, err := Format{}.Extract(context.Background(), blobstore.NewMemoryStore(), format.Options{})
	require.ErrorIs(t, err, format.ErrFormat)

	store := blobstore.NewMemoryStore()
	require.NoError(t, store.Put(context.Background(), "obj.data", []byte("classes = 1\n")))
	_, _, err = Format{}.Extract(context.Background(), store, format.Options{})
	require.ErrorIs(t, err, format.ErrFormat)

	ok, err := Format{}.Detect(context.Background(), store)
	require.NoError(t, err)
	assert.True(t, ok)
}
