package transform

import (
	"iter"
	"maps"
	"regexp"
	"slices"
	"strconv"

	"github.com/hupe1980/annoset/annotation"
	"github.com/hupe1980/annoset/attr"
	"github.com/hupe1980/annoset/dataset"
)

// counted returns a view applying fn with a counter that restarts at
// start on every traversal.
func counted(src dataset.Source, start int, fn func(it *dataset.Item, next *int) *dataset.Item) dataset.Source {
	return dataset.NewView(src.Categories(), func() iter.Seq[*dataset.Item] {
		return func(yield func(*dataset.Item) bool) {
			next := start
			for it := range src.Items() {
				if !yield(fn(it, &next)) {
					return
				}
			}
		}
	})
}

// Reindex replaces item ids with consecutive numbers starting at Start,
// in iteration order.
type Reindex struct {
	Start int
}

// Apply implements Transform.
func (r Reindex) Apply(src dataset.Source) dataset.Source {
	return counted(src, r.Start, func(it *dataset.Item, next *int) *dataset.Item {
		id := strconv.Itoa(*next)
		*next++
		return it.Rename(id, it.Subset)
	})
}

// Step implements Describer.
func (r Reindex) Step() Step {
	return Step{Name: "reindex", Params: map[string]any{"start": r.Start}}
}

// ReindexAnnotations numbers annotation ids consecutively across the
// whole source, starting at Start. Groups are left alone.
type ReindexAnnotations struct {
	Start int
}

// Apply implements Transform.
func (r ReindexAnnotations) Apply(src dataset.Source) dataset.Source {
	return counted(src, r.Start, func(it *dataset.Item, next *int) *dataset.Item {
		anns := make([]*annotation.Annotation, len(it.Annotations))
		for i, a := range it.Annotations {
			c := a.Clone()
			c.ID = *next
			*next++
			anns[i] = c
		}
		return it.WithAnnotations(anns)
	})
}

// Step implements Describer.
func (r ReindexAnnotations) Step() Step {
	return Step{Name: "reindex_annotations", Params: map[string]any{"start": r.Start}}
}

// MapSubsets renames subsets. Unlisted subsets are kept; an empty target
// means the default subset.
type MapSubsets struct {
	mapping map[string]string
}

// NewMapSubsets creates a subset rename.
func NewMapSubsets(mapping map[string]string) *MapSubsets {
	return &MapSubsets{mapping: maps.Clone(mapping)}
}

// Apply implements Transform.
func (m *MapSubsets) Apply(src dataset.Source) dataset.Source {
	return dataset.MapItems(src, src.Categories(), func(it *dataset.Item) *dataset.Item {
		to, ok := m.mapping[it.Subset]
		if !ok {
			return it
		}
		if to == "" {
			to = dataset.DefaultSubset
		}
		return it.Rename(it.ID, to)
	})
}

// Step implements Describer.
func (m *MapSubsets) Step() Step {
	mapping := make(map[string]any, len(m.mapping))
	for k, v := range m.mapping {
		mapping[k] = v
	}
	return Step{Name: "map_subsets", Params: map[string]any{"mapping": mapping}}
}

// RenameItems rewrites item ids with a regular expression replacement.
type RenameItems struct {
	re          *regexp.Regexp
	replacement string
}

// NewRenameItems compiles pattern. replacement may reference groups as in
// regexp.Regexp.ReplaceAllString.
func NewRenameItems(pattern, replacement string) (*RenameItems, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, dataset.Invalid("pattern", "%v", err)
	}
	return &RenameItems{re: re, replacement: replacement}, nil
}

// Apply implements Transform.
func (r *RenameItems) Apply(src dataset.Source) dataset.Source {
	return dataset.MapItems(src, src.Categories(), func(it *dataset.Item) *dataset.Item {
		id := r.re.ReplaceAllString(it.ID, r.replacement)
		if id == it.ID {
			return it
		}
		return it.Rename(id, it.Subset)
	})
}

// Step implements Describer.
func (r *RenameItems) Step() Step {
	return Step{Name: "rename", Params: map[string]any{"pattern": r.re.String(), "replacement": r.replacement}}
}

// RemoveItems drops the listed items. A key with an empty subset matches
// the id in every subset.
type RemoveItems struct {
	keys []dataset.Key
	set  keySet
}

// NewRemoveItems creates an item removal.
func NewRemoveItems(keys ...dataset.Key) *RemoveItems {
	return &RemoveItems{keys: slices.Clone(keys), set: newKeySet(keys)}
}

// Apply implements Transform.
func (r *RemoveItems) Apply(src dataset.Source) dataset.Source {
	return dataset.MapItems(src, src.Categories(), func(it *dataset.Item) *dataset.Item {
		if len(r.keys) > 0 && r.set.has(it.Key()) {
			return nil
		}
		return it
	})
}

// Step implements Describer.
func (r *RemoveItems) Step() Step {
	return Step{Name: "remove_items", Params: map[string]any{"items": keyParams(r.keys)}}
}

// RemoveAnnotations clears annotations of the listed items, or of every
// item when none are listed. With ids, only annotations carrying one of
// those ids are removed.
type RemoveAnnotations struct {
	keys []dataset.Key
	set  keySet
	ids  []int
}

// NewRemoveAnnotations creates an annotation removal.
func NewRemoveAnnotations(keys []dataset.Key, ids ...int) *RemoveAnnotations {
	return &RemoveAnnotations{keys: slices.Clone(keys), set: newKeySet(keys), ids: slices.Clone(ids)}
}

// Apply implements Transform.
func (r *RemoveAnnotations) Apply(src dataset.Source) dataset.Source {
	return dataset.MapItems(src, src.Categories(), func(it *dataset.Item) *dataset.Item {
		if !r.set.has(it.Key()) || len(it.Annotations) == 0 {
			return it
		}
		if len(r.ids) == 0 {
			return it.WithAnnotations(nil)
		}
		kept := slices.DeleteFunc(slices.Clone(it.Annotations), func(a *annotation.Annotation) bool {
			return slices.Contains(r.ids, a.ID)
		})
		return it.WithAnnotations(kept)
	})
}

// Step implements Describer.
func (r *RemoveAnnotations) Step() Step {
	params := map[string]any{"items": keyParams(r.keys)}
	if len(r.ids) > 0 {
		ids := make([]any, len(r.ids))
		for i, id := range r.ids {
			ids[i] = id
		}
		params["ids"] = ids
	}
	return Step{Name: "remove_annotations", Params: params}
}

// RemoveAttributes deletes attributes from the listed items (all items
// when none are listed) and their annotations. With no names every
// attribute is removed.
type RemoveAttributes struct {
	keys  []dataset.Key
	set   keySet
	names []string
}

// NewRemoveAttributes creates an attribute removal.
func NewRemoveAttributes(keys []dataset.Key, names ...string) *RemoveAttributes {
	return &RemoveAttributes{keys: slices.Clone(keys), set: newKeySet(keys), names: slices.Clone(names)}
}

// Apply implements Transform.
func (r *RemoveAttributes) Apply(src dataset.Source) dataset.Source {
	return dataset.MapItems(src, src.Categories(), func(it *dataset.Item) *dataset.Item {
		if !r.set.has(it.Key()) {
			return it
		}
		out := it.WithAnnotations(make([]*annotation.Annotation, len(it.Annotations)))
		out.Attributes = r.strip(it.Attributes)
		for i, a := range it.Annotations {
			c := *a
			c.Attributes = r.strip(a.Attributes)
			out.Annotations[i] = &c
		}
		return out
	})
}

func (r *RemoveAttributes) strip(m attr.Map) attr.Map {
	if len(m) == 0 || len(r.names) == 0 {
		return nil
	}
	out := maps.Clone(m)
	for _, n := range r.names {
		delete(out, n)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Step implements Describer.
func (r *RemoveAttributes) Step() Step {
	params := map[string]any{"items": keyParams(r.keys)}
	if len(r.names) > 0 {
		names := make([]any, len(r.names))
		for i, n := range r.names {
			names[i] = n
		}
		params["attributes"] = names
	}
	return Step{Name: "remove_attributes", Params: params}
}
