package category

// Registry is the set of vocabularies owned by one dataset.
type Registry struct {
	Label  *LabelCategories
	Points *PointsCategories
	Mask   *MaskCategories
}

// NewRegistry returns a registry with the given label names and no points
// or mask categories.
func NewRegistry(labels ...string) *Registry {
	return &Registry{Label: NewLabelCategories(labels...)}
}

// Labels returns the label vocabulary, never nil.
func (r *Registry) Labels() *LabelCategories {
	if r == nil || r.Label == nil {
		return NewLabelCategories()
	}
	return r.Label
}

// LabelName resolves a label index to its name.
func (r *Registry) LabelName(idx int) (string, bool) {
	if r == nil {
		return "", false
	}
	return r.Label.Name(idx)
}

// Clone returns a deep copy.
func (r *Registry) Clone() *Registry {
	if r == nil {
		return nil
	}
	return &Registry{
		Label:  r.Label.Clone(),
		Points: r.Points.Clone(),
		Mask:   r.Mask.Clone(),
	}
}

// Equal reports whether both registries hold the same vocabularies.
func (r *Registry) Equal(o *Registry) bool {
	var a, b Registry
	if r != nil {
		a = *r
	}
	if o != nil {
		b = *o
	}
	return a.Label.Equal(b.Label) && a.Points.Equal(b.Points) && a.Mask.Equal(b.Mask)
}
