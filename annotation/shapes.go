package annotation

import (
	"fmt"
	"math"

	"github.com/RoaringBitmap/roaring/v2"
)

// Label is an image-level class label without geometry.
type Label struct{}

func (Label) Kind() Kind     { return KindLabel }
func (s Label) clone() Shape { return s }

// Bbox is an axis-aligned box in absolute pixels.
type Bbox struct {
	X, Y, W, H float64
}

func (Bbox) Kind() Kind     { return KindBbox }
func (s Bbox) clone() Shape { return s }

// Corners returns (x1, y1, x2, y2).
func (s Bbox) Corners() (x1, y1, x2, y2 float64) {
	return s.X, s.Y, s.X + s.W, s.Y + s.H
}

// Polygon is a closed polygon stored as [x0, y0, x1, y1, ...].
type Polygon struct {
	Points []float64
}

func (Polygon) Kind() Kind { return KindPolygon }
func (s Polygon) clone() Shape {
	return Polygon{Points: append([]float64(nil), s.Points...)}
}

// Area returns the polygon area using the shoelace formula.
func (s Polygon) Area() float64 {
	n := len(s.Points) / 2
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += s.Points[2*i]*s.Points[2*j+1] - s.Points[2*j]*s.Points[2*i+1]
	}
	return math.Abs(sum) / 2
}

// PolyLine is an open polyline stored as [x0, y0, x1, y1, ...].
type PolyLine struct {
	Points []float64
}

func (PolyLine) Kind() Kind { return KindPolyLine }
func (s PolyLine) clone() Shape {
	return PolyLine{Points: append([]float64(nil), s.Points...)}
}

// Mask is a binary pixel region. Pixel (x, y) is stored at index y*Width+x.
//
// An empty Pixels bitmap is a valid mask covering no region.
type Mask struct {
	Width, Height int
	Pixels        *roaring.Bitmap
}

// NewMask returns an empty mask of the given size.
func NewMask(width, height int) Mask {
	return Mask{Width: width, Height: height, Pixels: roaring.New()}
}

func (Mask) Kind() Kind { return KindMask }
func (s Mask) clone() Shape {
	c := s
	if s.Pixels != nil {
		c.Pixels = s.Pixels.Clone()
	}
	return c
}

// Set marks pixel (x, y). Out-of-frame pixels are ignored.
func (s Mask) Set(x, y int) {
	if x < 0 || y < 0 || x >= s.Width || y >= s.Height {
		return
	}
	s.Pixels.Add(uint32(y*s.Width + x))
}

// SetRect marks all pixels of the half-open rectangle [x1,x2) x [y1,y2).
func (s Mask) SetRect(x1, y1, x2, y2 int) {
	x1, y1 = max(x1, 0), max(y1, 0)
	x2, y2 = min(x2, s.Width), min(y2, s.Height)
	if x1 >= x2 {
		return
	}
	for y := y1; y < y2; y++ {
		row := uint64(y * s.Width)
		s.Pixels.AddRange(row+uint64(x1), row+uint64(x2))
	}
}

// Contains reports whether pixel (x, y) is set.
func (s Mask) Contains(x, y int) bool {
	if s.Pixels == nil || x < 0 || y < 0 || x >= s.Width || y >= s.Height {
		return false
	}
	return s.Pixels.Contains(uint32(y*s.Width + x))
}

// Area returns the number of set pixels.
func (s Mask) Area() float64 {
	if s.Pixels == nil {
		return 0
	}
	return float64(s.Pixels.GetCardinality())
}

// Visibility is the state of a single keypoint.
type Visibility uint8

const (
	VisibilityAbsent Visibility = iota
	VisibilityHidden
	VisibilityVisible
)

// Points is a keypoint set stored as [x0, y0, x1, y1, ...] with one
// visibility flag per point. Missing flags mean visible.
type Points struct {
	Points     []float64
	Visibility []Visibility
}

func (Points) Kind() Kind { return KindPoints }
func (s Points) clone() Shape {
	return Points{
		Points:     append([]float64(nil), s.Points...),
		Visibility: append([]Visibility(nil), s.Visibility...),
	}
}

// Visible reports whether point i is visible.
func (s Points) Visible(i int) bool {
	if i >= len(s.Visibility) {
		return true
	}
	return s.Visibility[i] == VisibilityVisible
}

// Cuboid3D is an oriented box in 3D space.
type Cuboid3D struct {
	Position [3]float64
	Rotation [3]float64
	Scale    [3]float64
}

func (Cuboid3D) Kind() Kind     { return KindCuboid3D }
func (s Cuboid3D) clone() Shape { return s }

// Caption is a free-form text annotation.
type Caption struct {
	Text string
}

func (Caption) Kind() Kind     { return KindCaption }
func (s Caption) clone() Shape { return s }

// Bounds returns the bounding box of a geometric shape. ok is false for
// shapes without a 2D extent (Label, Caption, Cuboid3D) and for empty masks.
func Bounds(shape Shape) (box Bbox, ok bool) {
	switch s := shape.(type) {
	case Bbox:
		return s, true
	case Polygon:
		return pointsBounds(s.Points, nil)
	case PolyLine:
		return pointsBounds(s.Points, nil)
	case Points:
		return pointsBounds(s.Points, s.Visibility)
	case Mask:
		if s.Pixels == nil || s.Pixels.IsEmpty() || s.Width == 0 {
			return Bbox{}, false
		}
		x1, y1 := s.Width, s.Height
		x2, y2 := -1, -1
		it := s.Pixels.Iterator()
		for it.HasNext() {
			p := int(it.Next())
			x, y := p%s.Width, p/s.Width
			x1, y1 = min(x1, x), min(y1, y)
			x2, y2 = max(x2, x), max(y2, y)
		}
		return Bbox{X: float64(x1), Y: float64(y1), W: float64(x2 - x1 + 1), H: float64(y2 - y1 + 1)}, true
	default:
		return Bbox{}, false
	}
}

func pointsBounds(points []float64, vis []Visibility) (Bbox, bool) {
	x1, y1 := math.Inf(1), math.Inf(1)
	x2, y2 := math.Inf(-1), math.Inf(-1)
	seen := false
	for i := 0; i+1 < len(points); i += 2 {
		if i/2 < len(vis) && vis[i/2] == VisibilityAbsent {
			continue
		}
		x, y := points[i], points[i+1]
		x1, y1 = math.Min(x1, x), math.Min(y1, y)
		x2, y2 = math.Max(x2, x), math.Max(y2, y)
		seen = true
	}
	if !seen {
		return Bbox{}, false
	}
	return Bbox{X: x1, Y: y1, W: x2 - x1, H: y2 - y1}, true
}

// Area returns the covered area of a shape, or 0 for shapes without area.
func Area(shape Shape) float64 {
	switch s := shape.(type) {
	case Bbox:
		return s.W * s.H
	case Polygon:
		return s.Area()
	case Mask:
		return s.Area()
	default:
		return 0
	}
}

func describe(shape Shape) string {
	switch s := shape.(type) {
	case Bbox:
		return fmt.Sprintf("[%g %g %g %g]", s.X, s.Y, s.W, s.H)
	case Polygon:
		return fmt.Sprintf("%v", s.Points)
	case PolyLine:
		return fmt.Sprintf("%v", s.Points)
	case Points:
		return fmt.Sprintf("%v", s.Points)
	case Mask:
		return fmt.Sprintf("%dx%d area=%g", s.Width, s.Height, s.Area())
	case Cuboid3D:
		return fmt.Sprintf("pos=%v rot=%v scale=%v", s.Position, s.Rotation, s.Scale)
	case Caption:
		return fmt.Sprintf("%q", s.Text)
	default:
		return ""
	}
}
