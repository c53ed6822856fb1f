package category

import (
	"errors"
	"fmt"
	"iter"
	"slices"

	"github.com/hupe1980/annoset/attr"
)

// ErrDuplicateLabel is returned when a label name is registered twice.
var ErrDuplicateLabel = errors.New("duplicate label")

// Label is one entry of the label vocabulary.
type Label struct {
	Name   string
	Parent string
	// Attributes lists the attribute names annotations of this label may carry.
	Attributes []string
}

func (l Label) clone() Label {
	l.Attributes = slices.Clone(l.Attributes)
	return l
}

func (l Label) equal(o Label) bool {
	return l.Name == o.Name && l.Parent == o.Parent && slices.Equal(l.Attributes, o.Attributes)
}

// LabelCategories is an ordered label vocabulary. The index of a label is
// its position in the list.
type LabelCategories struct {
	items []Label
	index map[string]int

	// Attributes lists attribute names shared by all labels.
	Attributes []string
	// Schema optionally restricts attribute kinds.
	Schema attr.Schema
}

// NewLabelCategories creates a vocabulary from names in order. Duplicate
// names are skipped.
func NewLabelCategories(names ...string) *LabelCategories {
	c := &LabelCategories{index: make(map[string]int, len(names))}
	for _, n := range names {
		_, _ = c.Add(n, "")
	}
	return c
}

// Add appends a label and returns its index.
func (c *LabelCategories) Add(name, parent string, attributes ...string) (int, error) {
	if c.index == nil {
		c.index = make(map[string]int)
	}
	if _, ok := c.index[name]; ok {
		return -1, fmt.Errorf("%w: %q", ErrDuplicateLabel, name)
	}
	idx := len(c.items)
	c.items = append(c.items, Label{Name: name, Parent: parent, Attributes: slices.Clone(attributes)})
	c.index[name] = idx
	return idx, nil
}

// Ensure returns the index of name, adding it when missing.
func (c *LabelCategories) Ensure(name string) int {
	if idx, ok := c.Find(name); ok {
		return idx
	}
	idx, _ := c.Add(name, "")
	return idx
}

// Find returns the index of name.
func (c *LabelCategories) Find(name string) (int, bool) {
	if c == nil {
		return -1, false
	}
	idx, ok := c.index[name]
	return idx, ok
}

// Len returns the number of labels.
func (c *LabelCategories) Len() int {
	if c == nil {
		return 0
	}
	return len(c.items)
}

// Valid reports whether idx is a registered label index.
func (c *LabelCategories) Valid(idx int) bool {
	return idx >= 0 && idx < c.Len()
}

// At returns the label at idx.
func (c *LabelCategories) At(idx int) (Label, bool) {
	if !c.Valid(idx) {
		return Label{}, false
	}
	return c.items[idx], true
}

// Name returns the name of the label at idx.
func (c *LabelCategories) Name(idx int) (string, bool) {
	l, ok := c.At(idx)
	return l.Name, ok
}

// Names returns all label names in index order.
func (c *LabelCategories) Names() []string {
	if c == nil {
		return nil
	}
	out := make([]string, len(c.items))
	for i, l := range c.items {
		out[i] = l.Name
	}
	return out
}

// All iterates labels in index order.
func (c *LabelCategories) All() iter.Seq2[int, Label] {
	return func(yield func(int, Label) bool) {
		if c == nil {
			return
		}
		for i, l := range c.items {
			if !yield(i, l) {
				return
			}
		}
	}
}

// Clone returns a deep copy.
func (c *LabelCategories) Clone() *LabelCategories {
	if c == nil {
		return nil
	}
	out := &LabelCategories{
		items:      make([]Label, len(c.items)),
		index:      make(map[string]int, len(c.items)),
		Attributes: slices.Clone(c.Attributes),
	}
	for i, l := range c.items {
		out.items[i] = l.clone()
		out.index[l.Name] = i
	}
	if c.Schema != nil {
		out.Schema = make(attr.Schema, len(c.Schema))
		for k, v := range c.Schema {
			out.Schema[k] = v
		}
	}
	return out
}

// Equal reports whether both vocabularies hold the same labels in the same
// order.
func (c *LabelCategories) Equal(o *LabelCategories) bool {
	if c.Len() != o.Len() {
		return false
	}
	for i := 0; i < c.Len(); i++ {
		if !c.items[i].equal(o.items[i]) {
			return false
		}
	}
	var a, b []string
	if c != nil {
		a = c.Attributes
	}
	if o != nil {
		b = o.Attributes
	}
	return slices.Equal(a, b)
}

// AllowedAttributes returns the attribute names allowed for the label at
// idx: the shared names followed by the label's own.
func (c *LabelCategories) AllowedAttributes(idx int) []string {
	l, ok := c.At(idx)
	if !ok {
		return slices.Clone(c.Attributes)
	}
	return append(slices.Clone(c.Attributes), l.Attributes...)
}
