package merge

import (
	"slices"

	"github.com/hupe1980/annoset/category"
)

// reconciled is the merged registry and, per source, the table from
// source label index to merged index.
type reconciled struct {
	cats   *category.Registry
	tables [][]int
}

func reconcile(regs []*category.Registry, mapping map[string]string) *reconciled {
	labels := category.NewLabelCategories()
	r := &reconciled{tables: make([][]int, len(regs))}

	for s, reg := range regs {
		src := reg.Labels()
		for _, a := range src.Attributes {
			if !slices.Contains(labels.Attributes, a) {
				labels.Attributes = append(labels.Attributes, a)
			}
		}
		table := make([]int, src.Len())
		for i, l := range src.All() {
			name := l.Name
			if to, ok := mapping[name]; ok && to != "" {
				name = to
			}
			idx, ok := labels.Find(name)
			if !ok {
				idx, _ = labels.Add(name, l.Parent, l.Attributes...)
			}
			table[i] = idx
		}
		r.tables[s] = table
	}
	r.cats = &category.Registry{Label: labels}

	for s, reg := range regs {
		if reg == nil {
			continue
		}
		for _, old := range reg.Points.Labels() {
			nl := r.label(s, old)
			if nl < 0 {
				continue
			}
			if r.cats.Points == nil {
				r.cats.Points = category.NewPointsCategories()
			}
			if _, seen := r.cats.Points.Get(nl); !seen {
				pc, _ := reg.Points.Get(old)
				r.cats.Points.Add(nl, pc.Labels, pc.Joints)
			}
		}
		for _, old := range reg.Mask.Labels() {
			nl := r.label(s, old)
			if nl < 0 {
				continue
			}
			if r.cats.Mask == nil {
				r.cats.Mask = category.NewMaskCategories()
			}
			if _, seen := r.cats.Mask.Color(nl); !seen {
				c, _ := reg.Mask.Color(old)
				r.cats.Mask.SetColor(nl, c)
			}
		}
	}
	return r
}

// label maps a source label into the merged registry. Dangling indices
// map to -1.
func (r *reconciled) label(source, old int) int {
	t := r.tables[source]
	if old < 0 || old >= len(t) {
		return -1
	}
	return t[old]
}
