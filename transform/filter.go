package transform

import (
	"github.com/hupe1980/annoset/annotation"
	"github.com/hupe1980/annoset/dataset"
	"github.com/hupe1980/annoset/query"
)

// Mode selects what a Filter removes.
type Mode string

const (
	// ModeItems drops items the query does not match and keeps matching
	// items intact.
	ModeItems Mode = "i"
	// ModeAnnotations keeps every item but only its selected annotations.
	ModeAnnotations Mode = "a"
	// ModeItemsAnnotations drops unmatched items and the unselected
	// annotations of matched ones.
	ModeItemsAnnotations Mode = "i+a"
)

// ParseMode accepts the short names and the long forms "items",
// "annotations" and "items+annotations".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "i", "items", "":
		return ModeItems, nil
	case "a", "annotations":
		return ModeAnnotations, nil
	case "i+a", "items+annotations":
		return ModeItemsAnnotations, nil
	default:
		return "", dataset.Invalid("mode", "unknown filter mode %q", s)
	}
}

// Filter keeps the items and annotations selected by a query. Categories
// are never touched; use PruneLabels to drop unused ones.
type Filter struct {
	query       *query.Query
	mode        Mode
	removeEmpty bool
}

// FilterOption configures a Filter.
type FilterOption func(*Filter)

// RemoveEmpty drops items left without annotations in annotation modes.
func RemoveEmpty() FilterOption {
	return func(f *Filter) { f.removeEmpty = true }
}

// NewFilter compiles expr for the given mode.
func NewFilter(expr string, mode Mode, opts ...FilterOption) (*Filter, error) {
	q, err := query.Compile(expr)
	if err != nil {
		return nil, err
	}
	mode, err = ParseMode(string(mode))
	if err != nil {
		return nil, err
	}
	f := &Filter{query: q, mode: mode}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Apply implements Transform.
func (f *Filter) Apply(src dataset.Source) dataset.Source {
	cats := src.Categories()
	return dataset.MapItems(src, cats, func(it *dataset.Item) *dataset.Item {
		if f.mode == ModeItems {
			if f.query.MatchItem(it, cats) {
				return it
			}
			return nil
		}

		m := f.query.Eval(it, cats)
		if f.mode == ModeItemsAnnotations && !m.Item {
			return nil
		}
		if m.Annotations.Count() == uint(len(it.Annotations)) {
			if f.removeEmpty && len(it.Annotations) == 0 {
				return nil
			}
			return it
		}
		kept := make([]*annotation.Annotation, 0, m.Annotations.Count())
		for i, a := range it.Annotations {
			if m.Annotations.Test(uint(i)) {
				kept = append(kept, a)
			}
		}
		if f.removeEmpty && len(kept) == 0 {
			return nil
		}
		return it.WithAnnotations(kept)
	})
}

// Step implements Describer.
func (f *Filter) Step() Step {
	return Step{Name: "filter", Params: map[string]any{
		"expr":         f.query.String(),
		"mode":         string(f.mode),
		"remove_empty": f.removeEmpty,
	}}
}
