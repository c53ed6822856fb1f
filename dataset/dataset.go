package dataset

import (
	"fmt"
	"iter"
	"slices"

	"github.com/hupe1980/annoset/annotation"
	"github.com/hupe1980/annoset/category"
)

// Dataset is an insertion-ordered collection of items keyed by (id,
// subset) that owns one category registry.
//
// A Dataset is not safe for concurrent mutation.
type Dataset struct {
	cats    *category.Registry
	items   []*Item // nil marks a removed slot
	index   map[Key]int
	removed int
}

var _ Source = (*Dataset)(nil)

// New creates an empty dataset. A nil registry is replaced by an empty one.
func New(cats *category.Registry) *Dataset {
	if cats == nil {
		cats = category.NewRegistry()
	}
	if cats.Label == nil {
		cats.Label = category.NewLabelCategories()
	}
	return &Dataset{cats: cats, index: make(map[Key]int)}
}

// FromItems creates a dataset holding items in order.
func FromItems(cats *category.Registry, items ...*Item) (*Dataset, error) {
	ds := New(cats)
	for _, it := range items {
		if err := ds.Add(it); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

// Categories returns the registry. Edits through it are visible to the
// dataset but never rewrite annotations; see Consistent.
func (d *Dataset) Categories() *category.Registry {
	return d.cats
}

// SetCategories replaces the registry. Annotations are not rewritten, so
// the dataset may become inconsistent until a remap repairs it.
func (d *Dataset) SetCategories(cats *category.Registry) {
	if cats == nil {
		cats = category.NewRegistry()
	}
	d.cats = cats
}

// Len returns the number of items.
func (d *Dataset) Len() int {
	return len(d.index)
}

// Add appends an item. It fails with a ValidationError when the key is
// taken or the item does not fit the registry.
func (d *Dataset) Add(it *Item) error {
	normalize(it)
	if _, ok := d.index[it.Key()]; ok {
		return &ValidationError{ID: it.ID, Subset: it.Subset, Field: "id", Reason: "duplicate item"}
	}
	if err := d.check(it); err != nil {
		return err
	}
	d.index[it.Key()] = len(d.items)
	d.items = append(d.items, it)
	return nil
}

// Put adds an item or replaces the item with the same key in place.
func (d *Dataset) Put(it *Item) error {
	normalize(it)
	if err := d.check(it); err != nil {
		return err
	}
	if pos, ok := d.index[it.Key()]; ok {
		d.items[pos] = it
		return nil
	}
	d.index[it.Key()] = len(d.items)
	d.items = append(d.items, it)
	return nil
}

// Get returns the item with the given key.
func (d *Dataset) Get(id, subset string) (*Item, error) {
	if subset == "" {
		subset = DefaultSubset
	}
	pos, ok := d.index[Key{ID: id, Subset: subset}]
	if !ok {
		return nil, &NotFoundError{ID: id, Subset: subset}
	}
	return d.items[pos], nil
}

// Remove deletes the item with the given key.
func (d *Dataset) Remove(id, subset string) error {
	if subset == "" {
		subset = DefaultSubset
	}
	k := Key{ID: id, Subset: subset}
	pos, ok := d.index[k]
	if !ok {
		return &NotFoundError{ID: id, Subset: subset}
	}
	d.items[pos] = nil
	delete(d.index, k)
	d.removed++
	if d.removed > len(d.items)/2 {
		d.compact()
	}
	return nil
}

func (d *Dataset) compact() {
	d.items = slices.DeleteFunc(d.items, func(it *Item) bool { return it == nil })
	for i, it := range d.items {
		d.index[it.Key()] = i
	}
	d.removed = 0
}

// Items iterates items in the current order. Each call starts a new
// traversal.
func (d *Dataset) Items() iter.Seq[*Item] {
	return func(yield func(*Item) bool) {
		for _, it := range d.items {
			if it == nil {
				continue
			}
			if !yield(it) {
				return
			}
		}
	}
}

// Subsets returns the subset names in sorted order.
func (d *Dataset) Subsets() []string {
	seen := make(map[string]struct{})
	for k := range d.index {
		seen[k.Subset] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	slices.Sort(out)
	return out
}

// Subset returns a view of the items of one subset.
func (d *Dataset) Subset(name string) *View {
	return NewView(d.cats, func() iter.Seq[*Item] {
		return func(yield func(*Item) bool) {
			for it := range d.Items() {
				if it.Subset == name && !yield(it) {
					return
				}
			}
		}
	})
}

// Sort orders items by id, then subset.
func (d *Dataset) Sort() {
	d.compact()
	slices.SortStableFunc(d.items, func(a, b *Item) int { return a.Key().Compare(b.Key()) })
	for i, it := range d.items {
		d.index[it.Key()] = i
	}
}

// Clone returns a deep copy.
func (d *Dataset) Clone() *Dataset {
	c := New(d.cats.Clone())
	for it := range d.Items() {
		cl := it.Clone()
		c.index[cl.Key()] = len(c.items)
		c.items = append(c.items, cl)
	}
	return c
}

// Consistent reports whether every annotation label is a valid index into
// the registry.
func (d *Dataset) Consistent() bool {
	labels := d.cats.Labels()
	for it := range d.Items() {
		for _, a := range it.Annotations {
			if a.HasLabel() && !labels.Valid(a.Label) {
				return false
			}
		}
	}
	return true
}

// Validate lists all dangling label references, invalid shapes and
// attributes violating the label schema.
func (d *Dataset) Validate() []*ValidationError {
	var out []*ValidationError
	labels := d.cats.Labels()
	for it := range d.Items() {
		for i, a := range it.Annotations {
			if a.HasLabel() && !labels.Valid(a.Label) {
				out = append(out, &ValidationError{
					ID: it.ID, Subset: it.Subset,
					Field:  fmt.Sprintf("annotations[%d].label", i),
					Reason: fmt.Sprintf("label index %d out of range [0, %d)", a.Label, labels.Len()),
				})
			}
			if err := a.Validate(); err != nil {
				out = append(out, &ValidationError{
					ID: it.ID, Subset: it.Subset,
					Field:  fmt.Sprintf("annotations[%d]", i),
					Reason: err.Error(),
				})
			}
			if err := labels.Schema.Validate(a.Attributes); err != nil {
				out = append(out, &ValidationError{
					ID: it.ID, Subset: it.Subset,
					Field:  fmt.Sprintf("annotations[%d].attributes", i),
					Reason: err.Error(),
				})
			}
		}
	}
	return out
}

func normalize(it *Item) {
	if it.Subset == "" {
		it.Subset = DefaultSubset
	}
}

// check validates an item against the registry without mutating anything.
func (d *Dataset) check(it *Item) error {
	if it.ID == "" {
		return &ValidationError{Subset: it.Subset, Field: "id", Reason: "empty id"}
	}
	labels := d.cats.Labels()
	w, h, sized := it.Size()
	for i, a := range it.Annotations {
		if a == nil || a.Shape == nil {
			return &ValidationError{ID: it.ID, Subset: it.Subset, Field: fmt.Sprintf("annotations[%d]", i), Reason: "missing shape"}
		}
		if a.HasLabel() && !labels.Valid(a.Label) {
			return &ValidationError{
				ID: it.ID, Subset: it.Subset,
				Field:  fmt.Sprintf("annotations[%d].label", i),
				Reason: fmt.Sprintf("label index %d out of range [0, %d)", a.Label, labels.Len()),
			}
		}
		if a.Label < annotation.NoLabel {
			return &ValidationError{ID: it.ID, Subset: it.Subset, Field: fmt.Sprintf("annotations[%d].label", i), Reason: "negative label index"}
		}
		if err := a.Validate(); err != nil {
			return &ValidationError{ID: it.ID, Subset: it.Subset, Field: fmt.Sprintf("annotations[%d]", i), Reason: err.Error()}
		}
		if err := labels.Schema.Validate(a.Attributes); err != nil {
			return &ValidationError{ID: it.ID, Subset: it.Subset, Field: fmt.Sprintf("annotations[%d].attributes", i), Reason: err.Error()}
		}
		if m, ok := a.Shape.(annotation.Mask); ok && sized && (m.Width != w || m.Height != h) {
			return &ValidationError{
				ID: it.ID, Subset: it.Subset,
				Field:  fmt.Sprintf("annotations[%d]", i),
				Reason: fmt.Sprintf("mask size %dx%d does not match media %dx%d", m.Width, m.Height, w, h),
			}
		}
	}
	return nil
}
