package category

import (
	"maps"
	"slices"
)

// PointsCategory describes the keypoint topology of one label.
type PointsCategory struct {
	// Labels names each keypoint in order.
	Labels []string
	// Joints are pairs of 1-based keypoint indices connected by an edge.
	Joints [][2]int
}

func (p PointsCategory) clone() PointsCategory {
	return PointsCategory{Labels: slices.Clone(p.Labels), Joints: slices.Clone(p.Joints)}
}

func (p PointsCategory) equal(o PointsCategory) bool {
	return slices.Equal(p.Labels, o.Labels) && slices.Equal(p.Joints, o.Joints)
}

// PointsCategories maps label indices to keypoint topologies.
type PointsCategories struct {
	items map[int]PointsCategory
}

// NewPointsCategories returns an empty set.
func NewPointsCategories() *PointsCategories {
	return &PointsCategories{items: make(map[int]PointsCategory)}
}

// Add sets the topology for a label index.
func (p *PointsCategories) Add(label int, names []string, joints [][2]int) {
	if p.items == nil {
		p.items = make(map[int]PointsCategory)
	}
	p.items[label] = PointsCategory{Labels: slices.Clone(names), Joints: slices.Clone(joints)}
}

// Get returns the topology of a label index.
func (p *PointsCategories) Get(label int) (PointsCategory, bool) {
	if p == nil {
		return PointsCategory{}, false
	}
	c, ok := p.items[label]
	return c, ok
}

// Labels returns the label indices with a topology, ascending.
func (p *PointsCategories) Labels() []int {
	if p == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(p.items))
}

// Len returns the number of entries.
func (p *PointsCategories) Len() int {
	if p == nil {
		return 0
	}
	return len(p.items)
}

// Clone returns a deep copy.
func (p *PointsCategories) Clone() *PointsCategories {
	if p == nil {
		return nil
	}
	out := NewPointsCategories()
	for k, v := range p.items {
		out.items[k] = v.clone()
	}
	return out
}

// Equal reports whether both sets are identical.
func (p *PointsCategories) Equal(o *PointsCategories) bool {
	if p.Len() != o.Len() {
		return false
	}
	for _, k := range p.Labels() {
		oc, ok := o.Get(k)
		if !ok || !p.items[k].equal(oc) {
			return false
		}
	}
	return true
}

// Remap returns a copy keyed by new label indices. Entries mapped to a
// negative index are dropped. When two entries collide the first one wins.
func (p *PointsCategories) Remap(mapping func(int) int) *PointsCategories {
	out := NewPointsCategories()
	for _, k := range p.Labels() {
		nk := mapping(k)
		if nk < 0 {
			continue
		}
		if _, ok := out.items[nk]; ok {
			continue
		}
		out.items[nk] = p.items[k].clone()
	}
	return out
}
