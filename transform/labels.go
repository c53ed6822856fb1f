package transform

import (
	"maps"
	"slices"

	"github.com/hupe1980/annoset/annotation"
	"github.com/hupe1980/annoset/category"
	"github.com/hupe1980/annoset/dataset"
)

// labelTable rewrites label indices into a new registry. table[old] is the
// new index or -1 when annotations with that label are deleted.
type labelTable struct {
	cats  *category.Registry
	table []int
}

// buildTable walks the old labels in order. target returns the new name of
// a label and false when it is deleted. New labels are added in the order
// they are first produced.
func buildTable(old *category.Registry, target func(int, category.Label) (string, bool)) *labelTable {
	src := old.Labels()
	dst := category.NewLabelCategories()
	dst.Attributes = slices.Clone(src.Attributes)
	dst.Schema = maps.Clone(src.Schema)

	t := &labelTable{table: make([]int, src.Len())}
	for i, l := range src.All() {
		name, keep := target(i, l)
		if !keep {
			t.table[i] = -1
			continue
		}
		idx, ok := dst.Find(name)
		if !ok {
			idx, _ = dst.Add(name, l.Parent, l.Attributes...)
		}
		t.table[i] = idx
	}
	t.cats = &category.Registry{Label: dst}
	t.remapExtra(old)
	return t
}

func (t *labelTable) lookup(old int) int {
	if old < 0 || old >= len(t.table) {
		return -1
	}
	return t.table[old]
}

func (t *labelTable) remapExtra(old *category.Registry) {
	if old == nil {
		return
	}
	if old.Points != nil {
		t.cats.Points = old.Points.Remap(t.lookup)
	}
	if old.Mask != nil {
		t.cats.Mask = old.Mask.Remap(t.lookup)
	}
}

// apply rewrites the labels of one item. Annotations without a label are
// kept as they are; dangling labels are deleted.
func (t *labelTable) apply(it *dataset.Item) *dataset.Item {
	var out []*annotation.Annotation
	changed := false
	for i, a := range it.Annotations {
		next := a
		if a.HasLabel() {
			nl := t.lookup(a.Label)
			switch {
			case nl < 0:
				next = nil
			case nl != a.Label:
				next = a.Clone()
				next.Label = nl
			}
		}
		if next != a && !changed {
			changed = true
			out = append(make([]*annotation.Annotation, 0, len(it.Annotations)), it.Annotations[:i]...)
		}
		if changed && next != nil {
			out = append(out, next)
		}
	}
	if !changed {
		return it
	}
	return it.WithAnnotations(out)
}

// DefaultPolicy decides what happens to labels a mapping does not name.
type DefaultPolicy string

const (
	// DefaultKeep keeps unmapped labels under their own name.
	DefaultKeep DefaultPolicy = "keep"
	// DefaultDelete deletes unmapped labels and their annotations.
	DefaultDelete DefaultPolicy = "delete"
)

// RemapLabels renames, merges and deletes labels.
//
// The new registry lists the distinct target names in the order of the old
// labels that produce them. Annotations of deleted labels are dropped;
// annotations of labels mapped to the same name end up under one label.
// A mapping to the empty string deletes the label.
type RemapLabels struct {
	mapping map[string]string
	def     DefaultPolicy
}

// NewRemapLabels creates a label remap.
func NewRemapLabels(mapping map[string]string, def DefaultPolicy) (*RemapLabels, error) {
	switch def {
	case "":
		def = DefaultKeep
	case DefaultKeep, DefaultDelete:
	default:
		return nil, dataset.Invalid("default", "unknown default policy %q", def)
	}
	return &RemapLabels{mapping: maps.Clone(mapping), def: def}, nil
}

// Apply implements Transform.
func (r *RemapLabels) Apply(src dataset.Source) dataset.Source {
	t := buildTable(src.Categories(), func(_ int, l category.Label) (string, bool) {
		if to, ok := r.mapping[l.Name]; ok {
			return to, to != ""
		}
		return l.Name, r.def == DefaultKeep
	})
	return dataset.MapItems(src, t.cats, t.apply)
}

// Step implements Describer.
func (r *RemapLabels) Step() Step {
	m := make(map[string]any, len(r.mapping))
	for k, v := range r.mapping {
		m[k] = v
	}
	return Step{Name: "remap_labels", Params: map[string]any{"mapping": m, "default": string(r.def)}}
}

// ProjectLabels replaces the label list with labels, in that order.
// Annotations whose label is not listed are dropped; listed names missing
// from the source are added.
type ProjectLabels struct {
	labels []string
}

// NewProjectLabels creates a projection onto labels.
func NewProjectLabels(labels ...string) *ProjectLabels {
	return &ProjectLabels{labels: slices.Clone(labels)}
}

// Apply implements Transform.
func (p *ProjectLabels) Apply(src dataset.Source) dataset.Source {
	old := src.Categories()
	srcLabels := old.Labels()

	dst := category.NewLabelCategories()
	dst.Attributes = slices.Clone(srcLabels.Attributes)
	dst.Schema = maps.Clone(srcLabels.Schema)
	for _, name := range p.labels {
		if _, dup := dst.Find(name); dup {
			continue
		}
		if i, ok := srcLabels.Find(name); ok {
			l, _ := srcLabels.At(i)
			_, _ = dst.Add(name, l.Parent, l.Attributes...)
		} else {
			_, _ = dst.Add(name, "")
		}
	}

	t := &labelTable{cats: &category.Registry{Label: dst}, table: make([]int, srcLabels.Len())}
	for i, l := range srcLabels.All() {
		idx, ok := dst.Find(l.Name)
		if !ok {
			idx = -1
		}
		t.table[i] = idx
	}
	t.remapExtra(old)
	return dataset.MapItems(src, t.cats, t.apply)
}

// Step implements Describer.
func (p *ProjectLabels) Step() Step {
	labels := make([]any, len(p.labels))
	for i, l := range p.labels {
		labels[i] = l
	}
	return Step{Name: "project_labels", Params: map[string]any{"labels": labels}}
}

// PruneLabels removes labels no annotation refers to. It reads the whole
// source once.
type PruneLabels struct{}

// Apply implements Transform.
func (PruneLabels) Apply(src dataset.Source) dataset.Source {
	return newDeferred(src, func(src dataset.Source) (*category.Registry, func(*dataset.Item) *dataset.Item) {
		used := make(map[int]struct{})
		for it := range src.Items() {
			for _, a := range it.Annotations {
				if a.HasLabel() {
					used[a.Label] = struct{}{}
				}
			}
		}
		t := buildTable(src.Categories(), func(i int, l category.Label) (string, bool) {
			_, ok := used[i]
			return l.Name, ok
		})
		return t.cats, t.apply
	})
}

// Step implements Describer.
func (PruneLabels) Step() Step {
	return Step{Name: "prune_labels"}
}
