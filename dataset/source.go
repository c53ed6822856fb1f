package dataset

import (
	"iter"

	"github.com/hupe1980/annoset/category"
)

// Source is anything that yields items under a category registry: a
// Dataset or a lazy View over one.
//
// Items must be restartable: every call returns a fresh traversal.
type Source interface {
	Categories() *category.Registry
	Items() iter.Seq[*Item]
}

// View is a lazy Source. Nothing is computed until Items is iterated.
type View struct {
	cats  *category.Registry
	items func() iter.Seq[*Item]
}

// NewView creates a view from a registry and an item sequence factory.
func NewView(cats *category.Registry, items func() iter.Seq[*Item]) *View {
	return &View{cats: cats, items: items}
}

// MapItems returns a view that applies fn to every item of src. Items for
// which fn returns nil are dropped.
func MapItems(src Source, cats *category.Registry, fn func(*Item) *Item) *View {
	return NewView(cats, func() iter.Seq[*Item] {
		return func(yield func(*Item) bool) {
			for it := range src.Items() {
				out := fn(it)
				if out == nil {
					continue
				}
				if !yield(out) {
					return
				}
			}
		}
	})
}

// Categories returns the registry of the view.
func (v *View) Categories() *category.Registry {
	return v.cats
}

// Items returns a fresh traversal of the view.
func (v *View) Items() iter.Seq[*Item] {
	return v.items()
}

// Materialize copies a source into a new Dataset. It fails with a
// ValidationError when the source yields duplicate keys or invalid items.
func Materialize(src Source) (*Dataset, error) {
	if ds, ok := src.(*Dataset); ok {
		return ds.Clone(), nil
	}
	ds := New(src.Categories().Clone())
	for it := range src.Items() {
		if err := ds.Add(it.Clone()); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

// Count returns the number of items a source yields.
func Count(src Source) int {
	if ds, ok := src.(*Dataset); ok {
		return ds.Len()
	}
	n := 0
	for range src.Items() {
		n++
	}
	return n
}
