package geometry

import (
	"math"

	"github.com/hupe1980/annoset/annotation"
)

// Params tunes the distance-based similarities.
type Params struct {
	// PointSigma is the per-keypoint falloff used by OKS.
	PointSigma float64
	// CuboidSigma is the distance scale used for cuboids.
	CuboidSigma float64
}

// DefaultParams returns the default similarity parameters.
func DefaultParams() Params {
	return Params{PointSigma: 0.1, CuboidSigma: 1.0}
}

// Similarity returns a score in [0, 1] for two shapes of the same kind.
// Shapes of different kinds score 0.
func Similarity(a, b annotation.Shape, p Params) float64 {
	if a == nil || b == nil || a.Kind() != b.Kind() {
		return 0
	}
	switch x := a.(type) {
	case annotation.Label:
		return 1
	case annotation.Caption:
		if x.Text == b.(annotation.Caption).Text {
			return 1
		}
		return 0
	case annotation.Bbox:
		return BboxIoU(x, b.(annotation.Bbox))
	case annotation.Polygon:
		return PolygonIoU(x, b.(annotation.Polygon))
	case annotation.PolyLine:
		ba, okA := annotation.Bounds(x)
		bb, okB := annotation.Bounds(b)
		if !okA || !okB {
			return 0
		}
		return BboxIoU(ba, bb)
	case annotation.Mask:
		return MaskIoU(x, b.(annotation.Mask))
	case annotation.Points:
		return OKS(x, b.(annotation.Points), p.PointSigma)
	case annotation.Cuboid3D:
		return CuboidSimilarity(x, b.(annotation.Cuboid3D), p.CuboidSigma)
	default:
		return 0
	}
}

// OKS returns the Object Keypoint Similarity of two point sets with the
// same number of points. The object scale is the area of the box covering
// both sets. Points absent in both sets are skipped.
func OKS(a, b annotation.Points, sigma float64) float64 {
	if len(a.Points) != len(b.Points) {
		return 0
	}
	if sigma <= 0 {
		sigma = DefaultParams().PointSigma
	}

	scale := 1.0
	ba, okA := annotation.Bounds(a)
	bb, okB := annotation.Bounds(b)
	switch {
	case okA && okB:
		x1, y1 := math.Min(ba.X, bb.X), math.Min(ba.Y, bb.Y)
		x2, y2 := math.Max(ba.X+ba.W, bb.X+bb.W), math.Max(ba.Y+ba.H, bb.Y+bb.H)
		scale = math.Max((x2-x1)*(y2-y1), 1)
	case okA:
		scale = math.Max(ba.W*ba.H, 1)
	case okB:
		scale = math.Max(bb.W*bb.H, 1)
	}

	denom := 2 * scale * (2 * sigma) * (2 * sigma)
	var sum float64
	count := 0
	for i := 0; i < len(a.Points)/2; i++ {
		va := a.Visible(i) || visibleHidden(a, i)
		vb := b.Visible(i) || visibleHidden(b, i)
		if !va && !vb {
			continue
		}
		count++
		if !va || !vb {
			continue
		}
		dx := a.Points[2*i] - b.Points[2*i]
		dy := a.Points[2*i+1] - b.Points[2*i+1]
		sum += math.Exp(-(dx*dx + dy*dy) / denom)
	}
	if count == 0 {
		return 1
	}
	return sum / float64(count)
}

func visibleHidden(p annotation.Points, i int) bool {
	return i < len(p.Visibility) && p.Visibility[i] == annotation.VisibilityHidden
}

// CuboidSimilarity is a Gaussian of the combined position, rotation and
// scale distance between two cuboids.
func CuboidSimilarity(a, b annotation.Cuboid3D, sigma float64) float64 {
	if sigma <= 0 {
		sigma = DefaultParams().CuboidSigma
	}
	var d2 float64
	for i := 0; i < 3; i++ {
		dp := a.Position[i] - b.Position[i]
		dr := a.Rotation[i] - b.Rotation[i]
		ds := a.Scale[i] - b.Scale[i]
		d2 += dp*dp + dr*dr + ds*ds
	}
	return math.Exp(-d2 / (2 * sigma * sigma))
}
