package dataset

import (
	"slices"
	"testing"

	"github.com/hupe1980/annoset/annotation"
	"github.com/hupe1980/annoset/attr"
	"github.com/hupe1980/annoset/category"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func box(label int, x, y, w, h float64, opts ...annotation.Option) *annotation.Annotation {
	return annotation.New(annotation.Bbox{X: x, Y: y, W: w, H: h}, append([]annotation.Option{annotation.WithLabel(label)}, opts...)...)
}

func ids(src Source) []string {
	var out []string
	for it := range src.Items() {
		out = append(out, it.Key().String())
	}
	return out
}

func TestAddGetRemove(t *testing.T) {
	ds := New(category.NewRegistry("a", "b"))

	require.NoError(t, ds.Add(NewItem("1", WithAnnotations(box(0, 0, 0, 1, 1)))))
	require.NoError(t, ds.Add(NewItem("1", WithSubset("train"))))
	require.NoError(t, ds.Add(NewItem("2")))
	assert.Equal(t, 3, ds.Len())
	assert.Equal(t, []string{"default", "train"}, ds.Subsets())

	it, err := ds.Get("1", "")
	require.NoError(t, err)
	assert.Len(t, it.Annotations, 1)

	_, err = ds.Get("1", "val")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "val", nf.Subset)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, ds.Remove("1", "default"))
	assert.ErrorIs(t, ds.Remove("1", "default"), ErrNotFound)
	assert.Equal(t, []string{"train/1", "default/2"}, ids(ds))
}

func TestAddRejectsInvalidItems(t *testing.T) {
	ds := New(category.NewRegistry("a"))
	require.NoError(t, ds.Add(NewItem("x")))

	tests := []struct {
		name  string
		item  *Item
		field string
	}{
		{"duplicate", NewItem("x"), "id"},
		{"empty id", NewItem(""), "id"},
		{"label out of range", NewItem("y", WithAnnotations(box(1, 0, 0, 1, 1))), "annotations[0].label"},
		{"negative size", NewItem("y", WithAnnotations(box(0, 0, 0, -1, 1))), "annotations[0]"},
		{"mask size mismatch", NewItem("y", WithImageSize(4, 4), WithAnnotations(annotation.New(annotation.NewMask(2, 2)))), "annotations[0]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ds.Add(tt.item)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Equal(t, 1, ds.Len(), "rejected item must not be stored")
		})
	}
}

func TestPutReplacesInPlace(t *testing.T) {
	ds := New(nil)
	require.NoError(t, ds.Add(NewItem("a")))
	require.NoError(t, ds.Add(NewItem("b")))
	require.NoError(t, ds.Put(NewItem("a", WithAnnotations(annotation.New(annotation.Caption{Text: "hi"})))))
	require.NoError(t, ds.Put(NewItem("c")))

	assert.Equal(t, []string{"default/a", "default/b", "default/c"}, ids(ds))
	it, _ := ds.Get("a", "")
	assert.Len(t, it.Annotations, 1)
}

func TestItemsIsRestartableAndStoppable(t *testing.T) {
	ds := New(nil)
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, ds.Add(NewItem(id)))
	}
	assert.Equal(t, ids(ds), ids(ds))

	n := 0
	for range ds.Items() {
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)
}

func TestRemoveCompactsAndKeepsOrder(t *testing.T) {
	ds := New(nil)
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, ds.Add(NewItem(id)))
	}
	require.NoError(t, ds.Remove("b", ""))
	require.NoError(t, ds.Remove("c", ""))
	require.NoError(t, ds.Remove("d", ""))
	require.NoError(t, ds.Add(NewItem("b")))

	assert.Equal(t, []string{"default/a", "default/e", "default/b"}, ids(ds))
	it, err := ds.Get("e", "")
	require.NoError(t, err)
	assert.Equal(t, "e", it.ID)
}

func TestSort(t *testing.T) {
	ds := New(nil)
	require.NoError(t, ds.Add(NewItem("b")))
	require.NoError(t, ds.Add(NewItem("a", WithSubset("val"))))
	require.NoError(t, ds.Add(NewItem("a", WithSubset("train"))))
	ds.Sort()
	assert.Equal(t, []string{"train/a", "val/a", "default/b"}, ids(ds))
	_, err := ds.Get("b", "")
	require.NoError(t, err)
}

func TestConsistencyAfterRegistryEdit(t *testing.T) {
	ds := New(category.NewRegistry("a", "b", "c"))
	require.NoError(t, ds.Add(NewItem("1", WithAnnotations(box(2, 0, 0, 1, 1), box(0, 0, 0, 1, 1)))))
	assert.True(t, ds.Consistent())
	assert.Empty(t, ds.Validate())

	ds.SetCategories(category.NewRegistry("a"))
	assert.False(t, ds.Consistent())
	problems := ds.Validate()
	require.Len(t, problems, 1)
	assert.Equal(t, "annotations[0].label", problems[0].Field)

	it, _ := ds.Get("1", "")
	assert.Len(t, it.Annotations, 2, "annotations are never dropped silently")
}

func TestAttributeSchema(t *testing.T) {
	cats := category.NewRegistry("car")
	cats.Label.Schema = attr.Schema{"occluded": attr.FieldTypeBool, "score": attr.FieldTypeFloat}
	ds := New(cats)

	ok := box(0, 0, 0, 1, 1, annotation.WithAttributes(attr.Map{"occluded": attr.Bool(true), "score": attr.Int(1), "note": attr.String("x")}))
	require.NoError(t, ds.Add(NewItem("1", WithAnnotations(ok))))

	bad := box(0, 0, 0, 1, 1, annotation.WithAttributes(attr.Map{"occluded": attr.String("yes")}))
	err := ds.Add(NewItem("2", WithAnnotations(ok, bad)))
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "annotations[1].attributes", ve.Field)
	assert.Equal(t, 1, ds.Len())

	strict := cats.Clone()
	strict.Label.Schema = attr.Schema{"note": attr.FieldTypeInt}
	ds.SetCategories(strict)
	problems := ds.Validate()
	require.Len(t, problems, 1)
	assert.Equal(t, "annotations[0].attributes", problems[0].Field)
}

func TestCloneIsDeep(t *testing.T) {
	ds := New(category.NewRegistry("a"))
	require.NoError(t, ds.Add(NewItem("1", WithAnnotations(box(0, 1, 1, 2, 2)))))

	cl := ds.Clone()
	it, _ := cl.Get("1", "")
	it.Annotations[0].Shape = annotation.Bbox{X: 9, Y: 9, W: 1, H: 1}
	_, _ = cl.Categories().Label.Add("b", "")

	orig, _ := ds.Get("1", "")
	assert.Equal(t, annotation.Bbox{X: 1, Y: 1, W: 2, H: 2}, orig.Annotations[0].Shape)
	assert.Equal(t, 1, ds.Categories().Labels().Len())
}

func TestViewAndMaterialize(t *testing.T) {
	ds := New(category.NewRegistry("a"))
	require.NoError(t, ds.Add(NewItem("1")))
	require.NoError(t, ds.Add(NewItem("2", WithSubset("train"))))

	calls := 0
	v := MapItems(ds, ds.Categories(), func(it *Item) *Item {
		calls++
		if it.Subset == "train" {
			return nil
		}
		return it.Rename(it.ID+"x", it.Subset)
	})
	assert.Zero(t, calls, "views are lazy")

	out, err := Materialize(v)
	require.NoError(t, err)
	assert.Equal(t, []string{"default/1x"}, ids(out))
	assert.Equal(t, 1, Count(v))

	assert.Equal(t, []string{"train/2"}, ids(ds.Subset("train")))

	dup := MapItems(ds, ds.Categories(), func(it *Item) *Item { return it.Rename("same", "default") })
	_, err = Materialize(dup)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestKeyCompare(t *testing.T) {
	keys := []Key{{"b", "a"}, {"a", "z"}, {"a", "b"}}
	slices.SortFunc(keys, Key.Compare)
	assert.Equal(t, []Key{{"a", "b"}, {"a", "z"}, {"b", "a"}}, keys)
}
