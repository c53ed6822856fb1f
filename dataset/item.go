package dataset

import (
	"fmt"
	"slices"

	"github.com/hupe1980/annoset/annotation"
	"github.com/hupe1980/annoset/attr"
	"github.com/hupe1980/annoset/media"
)

// DefaultSubset is the subset of items created without one.
const DefaultSubset = "default"

// Key identifies an item within a dataset.
type Key struct {
	ID     string
	Subset string
}

func (k Key) String() string {
	return k.Subset + "/" + k.ID
}

// Compare orders keys by id, then subset.
func (k Key) Compare(o Key) int {
	if k.ID != o.ID {
		if k.ID < o.ID {
			return -1
		}
		return 1
	}
	switch {
	case k.Subset < o.Subset:
		return -1
	case k.Subset > o.Subset:
		return 1
	}
	return 0
}

// Item is one media unit with its annotations.
//
// Items handed out by a Source are shared. Callers that need to change an
// item work on a Clone or build a new one with WithAnnotations.
type Item struct {
	ID          string
	Subset      string
	Media       *media.Descriptor
	Annotations []*annotation.Annotation
	Attributes  attr.Map
}

// ItemOption configures an Item.
type ItemOption func(*Item)

// WithSubset sets the subset.
func WithSubset(subset string) ItemOption {
	return func(it *Item) { it.Subset = subset }
}

// WithMedia sets the media descriptor.
func WithMedia(m *media.Descriptor) ItemOption {
	return func(it *Item) { it.Media = m }
}

// WithImageSize attaches an image descriptor of the given size.
func WithImageSize(width, height int) ItemOption {
	return func(it *Item) { it.Media = media.NewImage("", &media.Size{Width: width, Height: height}) }
}

// WithAnnotations sets the annotations.
func WithAnnotations(anns ...*annotation.Annotation) ItemOption {
	return func(it *Item) { it.Annotations = anns }
}

// WithAttributes sets item attributes.
func WithAttributes(attrs attr.Map) ItemOption {
	return func(it *Item) { it.Attributes = attrs }
}

// NewItem creates an item in the default subset.
func NewItem(id string, opts ...ItemOption) *Item {
	it := &Item{ID: id, Subset: DefaultSubset}
	for _, fn := range opts {
		fn(it)
	}
	if it.Subset == "" {
		it.Subset = DefaultSubset
	}
	return it
}

// Key returns the (id, subset) key.
func (it *Item) Key() Key {
	return Key{ID: it.ID, Subset: it.Subset}
}

// Size returns the media dimensions if known.
func (it *Item) Size() (width, height int, ok bool) {
	if it.Media == nil || it.Media.Size == nil {
		return 0, 0, false
	}
	return it.Media.Size.Width, it.Media.Size.Height, true
}

// Clone returns a deep copy.
func (it *Item) Clone() *Item {
	c := *it
	c.Media = it.Media.Clone()
	c.Attributes = it.Attributes.Clone()
	c.Annotations = make([]*annotation.Annotation, len(it.Annotations))
	for i, a := range it.Annotations {
		c.Annotations[i] = a.Clone()
	}
	return &c
}

// WithAnnotations returns a shallow copy of the item carrying anns.
func (it *Item) WithAnnotations(anns []*annotation.Annotation) *Item {
	c := *it
	c.Annotations = anns
	return &c
}

// Rename returns a shallow copy with another id and subset.
func (it *Item) Rename(id, subset string) *Item {
	c := *it
	c.ID, c.Subset = id, subset
	c.Annotations = slices.Clone(it.Annotations)
	return &c
}

func (it *Item) String() string {
	return fmt.Sprintf("item(%s, %d annotations)", it.Key(), len(it.Annotations))
}
