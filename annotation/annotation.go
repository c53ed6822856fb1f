package annotation

import (
	"fmt"
	"math"

	"github.com/hupe1980/annoset/attr"
)

// NoLabel marks an annotation without a label.
const NoLabel = -1

// Kind identifies the shape variant of an annotation.
type Kind uint8

const (
	KindLabel Kind = iota + 1
	KindBbox
	KindPolygon
	KindPolyLine
	KindMask
	KindPoints
	KindCuboid3D
	KindCaption
)

var kindNames = map[Kind]string{
	KindLabel:    "label",
	KindBbox:     "bbox",
	KindPolygon:  "polygon",
	KindPolyLine: "polyline",
	KindMask:     "mask",
	KindPoints:   "points",
	KindCuboid3D: "cuboid_3d",
	KindCaption:  "caption",
}

// String returns the stable name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// MarshalText encodes the stable name.
func (k Kind) MarshalText() ([]byte, error) {
	if _, ok := kindNames[k]; !ok {
		return nil, fmt.Errorf("unknown annotation kind %d", uint8(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText decodes a stable name.
func (k *Kind) UnmarshalText(b []byte) error {
	kind, ok := ParseKind(string(b))
	if !ok {
		return fmt.Errorf("unknown annotation kind %q", b)
	}
	*k = kind
	return nil
}

// Kinds returns all kinds in declaration order.
func Kinds() []Kind {
	return []Kind{KindLabel, KindBbox, KindPolygon, KindPolyLine, KindMask, KindPoints, KindCuboid3D, KindCaption}
}

// ParseKind resolves a stable kind name.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}

// Shape is the variant part of an annotation.
type Shape interface {
	Kind() Kind
	clone() Shape
}

// Annotation is the envelope shared by all shape variants.
//
// ID is caller-assigned and only unique by convention: two annotations with
// the same ID on one item are distinct object instances.
type Annotation struct {
	ID         int
	Label      int
	Group      int
	ZOrder     int
	Attributes attr.Map
	Shape      Shape
}

// Option configures an annotation at construction time.
type Option func(*Annotation)

// WithID sets the annotation id.
func WithID(id int) Option {
	return func(a *Annotation) { a.ID = id }
}

// WithLabel sets the label index.
func WithLabel(label int) Option {
	return func(a *Annotation) { a.Label = label }
}

// WithGroup sets the group id.
func WithGroup(group int) Option {
	return func(a *Annotation) { a.Group = group }
}

// WithZOrder sets the z-order.
func WithZOrder(z int) Option {
	return func(a *Annotation) { a.ZOrder = z }
}

// WithAttributes sets the attribute map.
func WithAttributes(attrs attr.Map) Option {
	return func(a *Annotation) { a.Attributes = attrs }
}

// WithAttribute sets a single attribute.
func WithAttribute(name string, v attr.Value) Option {
	return func(a *Annotation) {
		if a.Attributes == nil {
			a.Attributes = attr.Map{}
		}
		a.Attributes[name] = v
	}
}

// New wraps a shape into an annotation.
func New(shape Shape, opts ...Option) *Annotation {
	a := &Annotation{Label: NoLabel, Shape: shape}
	for _, fn := range opts {
		if fn != nil {
			fn(a)
		}
	}
	return a
}

// Kind returns the shape kind.
func (a *Annotation) Kind() Kind {
	return a.Shape.Kind()
}

// HasLabel reports whether the annotation references a category.
func (a *Annotation) HasLabel() bool {
	return a.Label >= 0
}

// Clone returns a deep copy.
func (a *Annotation) Clone() *Annotation {
	c := *a
	c.Attributes = a.Attributes.Clone()
	if a.Shape != nil {
		c.Shape = a.Shape.clone()
	}
	return &c
}

// String returns a compact description for logs and test failures.
func (a *Annotation) String() string {
	return fmt.Sprintf("%s(id=%d label=%d group=%d z=%d %s)", a.Kind(), a.ID, a.Label, a.Group, a.ZOrder, describe(a.Shape))
}

// Validate checks the geometric invariants of the shape.
func (a *Annotation) Validate() error {
	if a.Shape == nil {
		return fmt.Errorf("annotation %d: missing shape", a.ID)
	}
	switch s := a.Shape.(type) {
	case Bbox:
		if !finite(s.X, s.Y, s.W, s.H) {
			return fmt.Errorf("bbox %d: non-finite coordinates", a.ID)
		}
		if s.W < 0 || s.H < 0 {
			return fmt.Errorf("bbox %d: negative size %gx%g", a.ID, s.W, s.H)
		}
	case Polygon:
		if !finite(s.Points...) {
			return fmt.Errorf("polygon %d: non-finite coordinates", a.ID)
		}
		if len(s.Points)%2 != 0 || len(s.Points) < 6 {
			return fmt.Errorf("polygon %d: need at least 3 points, got %d coordinates", a.ID, len(s.Points))
		}
	case PolyLine:
		if !finite(s.Points...) {
			return fmt.Errorf("polyline %d: non-finite coordinates", a.ID)
		}
		if len(s.Points)%2 != 0 || len(s.Points) < 4 {
			return fmt.Errorf("polyline %d: need at least 2 points, got %d coordinates", a.ID, len(s.Points))
		}
	case Points:
		if !finite(s.Points...) {
			return fmt.Errorf("points %d: non-finite coordinates", a.ID)
		}
		if len(s.Points)%2 != 0 {
			return fmt.Errorf("points %d: odd coordinate count %d", a.ID, len(s.Points))
		}
		if len(s.Visibility) != 0 && len(s.Visibility) != len(s.Points)/2 {
			return fmt.Errorf("points %d: %d visibility flags for %d points", a.ID, len(s.Visibility), len(s.Points)/2)
		}
	case Mask:
		if s.Width < 0 || s.Height < 0 {
			return fmt.Errorf("mask %d: negative size", a.ID)
		}
	case Cuboid3D:
		if !finite(s.Position[:]...) || !finite(s.Rotation[:]...) || !finite(s.Scale[:]...) {
			return fmt.Errorf("cuboid %d: non-finite coordinates", a.ID)
		}
	}
	return nil
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
