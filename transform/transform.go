package transform

import (
	"iter"
	"sync"

	"github.com/hupe1980/annoset/category"
	"github.com/hupe1980/annoset/dataset"
)

// Transform maps a source to a new lazy source. Implementations must not
// mutate the items or the registry of their input.
type Transform interface {
	Apply(src dataset.Source) dataset.Source
}

// Describer is implemented by transforms that can be recorded in a
// Definition.
type Describer interface {
	Step() Step
}

// Func adapts an item-local function into a Transform that keeps the
// registry. Returning nil drops the item.
type Func func(it *dataset.Item) *dataset.Item

// Apply implements Transform.
func (f Func) Apply(src dataset.Source) dataset.Source {
	return dataset.MapItems(src, src.Categories(), f)
}

// deferred is a source whose registry and per-item function are computed
// from one pass over the upstream source on first use.
type deferred struct {
	src  dataset.Source
	init func(src dataset.Source) (*category.Registry, func(*dataset.Item) *dataset.Item)

	once sync.Once
	cats *category.Registry
	fn   func(*dataset.Item) *dataset.Item
}

func newDeferred(src dataset.Source, init func(dataset.Source) (*category.Registry, func(*dataset.Item) *dataset.Item)) *deferred {
	return &deferred{src: src, init: init}
}

func (d *deferred) load() {
	d.once.Do(func() { d.cats, d.fn = d.init(d.src) })
}

func (d *deferred) Categories() *category.Registry {
	d.load()
	return d.cats
}

func (d *deferred) Items() iter.Seq[*dataset.Item] {
	d.load()
	return dataset.MapItems(d.src, d.cats, d.fn).Items()
}

// keySet matches item keys. An empty set matches every item; a key with an
// empty subset matches the id in any subset.
type keySet struct {
	exact map[dataset.Key]struct{}
	ids   map[string]struct{}
}

func newKeySet(keys []dataset.Key) keySet {
	if len(keys) == 0 {
		return keySet{}
	}
	s := keySet{exact: make(map[dataset.Key]struct{}), ids: make(map[string]struct{})}
	for _, k := range keys {
		if k.Subset == "" {
			s.ids[k.ID] = struct{}{}
		} else {
			s.exact[k] = struct{}{}
		}
	}
	return s
}

func (s keySet) all() bool {
	return s.exact == nil
}

func (s keySet) has(k dataset.Key) bool {
	if s.all() {
		return true
	}
	if _, ok := s.exact[k]; ok {
		return true
	}
	_, ok := s.ids[k.ID]
	return ok
}

func keyParams(keys []dataset.Key) []map[string]any {
	out := make([]map[string]any, len(keys))
	for i, k := range keys {
		out[i] = map[string]any{"id": k.ID, "subset": k.Subset}
	}
	return out
}
