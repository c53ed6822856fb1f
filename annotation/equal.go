package annotation

import "math"

// DefaultTolerance is the absolute tolerance used for geometry comparison.
const DefaultTolerance = 1e-6

// EqualOptions controls annotation comparison.
type EqualOptions struct {
	// Tolerance is the absolute tolerance on coordinates and float attributes.
	Tolerance float64
	// CompareID includes the annotation id in the comparison.
	CompareID bool
	// SkipLabel leaves label indices out; callers comparing across category
	// registries resolve label names themselves.
	SkipLabel bool
	// SkipAttributes leaves the attribute maps out.
	SkipAttributes bool
}

// Equal reports whether two annotations are equal under opts.
func Equal(a, b *Annotation, opts EqualOptions) bool {
	if a == nil || b == nil {
		return a == b
	}
	if opts.CompareID && a.ID != b.ID {
		return false
	}
	if !opts.SkipLabel && a.Label != b.Label {
		return false
	}
	if a.Group != b.Group || a.ZOrder != b.ZOrder {
		return false
	}
	if !opts.SkipAttributes && !a.Attributes.Equal(b.Attributes, opts.Tolerance) {
		return false
	}
	return ShapeEqual(a.Shape, b.Shape, opts.Tolerance)
}

// ShapeEqual reports whether two shapes have the same kind and geometry
// within tol.
func ShapeEqual(a, b Shape, tol float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch x := a.(type) {
	case Label:
		return true
	case Bbox:
		y := b.(Bbox)
		return near(x.X, y.X, tol) && near(x.Y, y.Y, tol) && near(x.W, y.W, tol) && near(x.H, y.H, tol)
	case Polygon:
		return floatsEqual(x.Points, b.(Polygon).Points, tol)
	case PolyLine:
		return floatsEqual(x.Points, b.(PolyLine).Points, tol)
	case Points:
		y := b.(Points)
		if !floatsEqual(x.Points, y.Points, tol) {
			return false
		}
		for i := 0; i < len(x.Points)/2; i++ {
			if visibility(x.Visibility, i) != visibility(y.Visibility, i) {
				return false
			}
		}
		return true
	case Mask:
		y := b.(Mask)
		if x.Width != y.Width || x.Height != y.Height {
			return false
		}
		if x.Pixels == nil || y.Pixels == nil {
			return x.Area() == 0 && y.Area() == 0
		}
		return x.Pixels.Equals(y.Pixels)
	case Cuboid3D:
		y := b.(Cuboid3D)
		for i := 0; i < 3; i++ {
			if !near(x.Position[i], y.Position[i], tol) ||
				!near(x.Rotation[i], y.Rotation[i], tol) ||
				!near(x.Scale[i], y.Scale[i], tol) {
				return false
			}
		}
		return true
	case Caption:
		return x.Text == b.(Caption).Text
	default:
		return false
	}
}

func visibility(v []Visibility, i int) Visibility {
	if i < len(v) {
		return v[i]
	}
	return VisibilityVisible
}

func near(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func floatsEqual(a, b []float64, tol float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !near(a[i], b[i], tol) {
			return false
		}
	}
	return true
}
