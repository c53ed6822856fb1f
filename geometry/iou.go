package geometry

import (
	"image"
	"math"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/annoset/annotation"
	"golang.org/x/image/vector"
)

// BboxIoU returns the intersection over union of two boxes.
// Two empty boxes at the same place are considered identical.
func BboxIoU(a, b annotation.Bbox) float64 {
	ax1, ay1, ax2, ay2 := a.Corners()
	bx1, by1, bx2, by2 := b.Corners()

	iw := math.Min(ax2, bx2) - math.Max(ax1, bx1)
	ih := math.Min(ay2, by2) - math.Max(ay1, by1)
	inter := 0.0
	if iw > 0 && ih > 0 {
		inter = iw * ih
	}
	union := a.W*a.H + b.W*b.H - inter
	if union <= 0 {
		if a == b {
			return 1
		}
		return 0
	}
	return inter / union
}

// Frame is the pixel grid shared by rasterized regions.
type Frame struct {
	X, Y          int
	Width, Height int
}

// frameFor returns the integer pixel frame covering both boxes.
func frameFor(a, b annotation.Bbox) Frame {
	x1 := math.Floor(math.Min(a.X, b.X))
	y1 := math.Floor(math.Min(a.Y, b.Y))
	x2 := math.Ceil(math.Max(a.X+a.W, b.X+b.W))
	y2 := math.Ceil(math.Max(a.Y+a.H, b.Y+b.H))
	return Frame{X: int(x1), Y: int(y1), Width: max(int(x2-x1), 1), Height: max(int(y2-y1), 1)}
}

// RasterizePolygon scan-converts a polygon into the pixels of frame.
// A pixel belongs to the polygon when at least half of it is covered.
func RasterizePolygon(points []float64, frame Frame) *roaring.Bitmap {
	bm := roaring.New()
	n := len(points) / 2
	if n < 3 || frame.Width <= 0 || frame.Height <= 0 {
		return bm
	}

	r := vector.NewRasterizer(frame.Width, frame.Height)
	ox, oy := float32(frame.X), float32(frame.Y)
	r.MoveTo(float32(points[0])-ox, float32(points[1])-oy)
	for i := 1; i < n; i++ {
		r.LineTo(float32(points[2*i])-ox, float32(points[2*i+1])-oy)
	}
	r.ClosePath()

	dst := image.NewAlpha(image.Rect(0, 0, frame.Width, frame.Height))
	r.Draw(dst, dst.Bounds(), image.Opaque, image.Point{})

	for y := 0; y < frame.Height; y++ {
		row := dst.Pix[y*dst.Stride : y*dst.Stride+frame.Width]
		for x, a := range row {
			if a >= 0x80 {
				bm.Add(uint32(y*frame.Width + x))
			}
		}
	}
	return bm
}

// PolygonToMask rasterizes a polygon into a mask of the given image size.
func PolygonToMask(points []float64, width, height int) annotation.Mask {
	return annotation.Mask{
		Width:  width,
		Height: height,
		Pixels: RasterizePolygon(points, Frame{Width: width, Height: height}),
	}
}

// BboxToMask fills the pixels covered by a box into a mask of the given
// image size.
func BboxToMask(b annotation.Bbox, width, height int) annotation.Mask {
	m := annotation.NewMask(width, height)
	x1, y1, x2, y2 := b.Corners()
	m.SetRect(int(math.Round(x1)), int(math.Round(y1)), int(math.Round(x2)), int(math.Round(y2)))
	return m
}

// PolygonIoU returns the IoU of two polygons computed on their rasterized
// regions.
func PolygonIoU(a, b annotation.Polygon) float64 {
	ba, okA := annotation.Bounds(a)
	bb, okB := annotation.Bounds(b)
	if !okA || !okB {
		return 0
	}
	if BboxIoU(ba, bb) == 0 && !touches(ba, bb) {
		return 0
	}
	frame := frameFor(ba, bb)
	ra, rb := RasterizePolygon(a.Points, frame), RasterizePolygon(b.Points, frame)
	if ra.IsEmpty() || rb.IsEmpty() {
		return finePolygonIoU(a.Points, b.Points, ba, bb)
	}
	return bitmapIoU(ra, rb)
}

// fineGrid is the side of the grid used for sub-pixel polygons.
const fineGrid = 256

// finePolygonIoU rescales both polygons so their joint bounds span
// fineGrid pixels. IoU is invariant under the scaling. Degenerate
// polygons only match when their points are identical.
func finePolygonIoU(a, b []float64, ba, bb annotation.Bbox) float64 {
	if PolygonArea(a) == 0 || PolygonArea(b) == 0 {
		if slices.Equal(a, b) {
			return 1
		}
		return 0
	}
	x1, y1 := math.Min(ba.X, bb.X), math.Min(ba.Y, bb.Y)
	x2, y2 := math.Max(ba.X+ba.W, bb.X+bb.W), math.Max(ba.Y+ba.H, bb.Y+bb.H)
	scale := fineGrid / math.Max(x2-x1, y2-y1)
	rescale := func(points []float64) []float64 {
		out := make([]float64, len(points))
		for i := 0; i+1 < len(points); i += 2 {
			out[i] = (points[i] - x1) * scale
			out[i+1] = (points[i+1] - y1) * scale
		}
		return out
	}
	frame := Frame{Width: fineGrid + 1, Height: fineGrid + 1}
	ra, rb := RasterizePolygon(rescale(a), frame), RasterizePolygon(rescale(b), frame)
	if ra.OrCardinality(rb) == 0 {
		return 0
	}
	return bitmapIoU(ra, rb)
}

// MaskIoU returns the IoU of two masks. Masks of different sizes are
// compared in the coordinate system they share at the origin.
func MaskIoU(a, b annotation.Mask) float64 {
	pa, pb := a.Pixels, b.Pixels
	switch {
	case a.Width < b.Width:
		pa = reindex(a, b.Width)
	case a.Width > b.Width:
		pb = reindex(b, a.Width)
	}
	if pa == nil || pb == nil {
		return 0
	}
	return bitmapIoU(pa, pb)
}

// reindex re-expresses mask pixels on a grid of the given row width.
func reindex(m annotation.Mask, width int) *roaring.Bitmap {
	out := roaring.New()
	if m.Pixels == nil || m.Width == 0 {
		return out
	}
	it := m.Pixels.Iterator()
	for it.HasNext() {
		p := int(it.Next())
		x, y := p%m.Width, p/m.Width
		out.Add(uint32(y*width + x))
	}
	return out
}

func bitmapIoU(a, b *roaring.Bitmap) float64 {
	union := a.OrCardinality(b)
	if union == 0 {
		return 1
	}
	return float64(a.AndCardinality(b)) / float64(union)
}

func touches(a, b annotation.Bbox) bool {
	ax1, ay1, ax2, ay2 := a.Corners()
	bx1, by1, bx2, by2 := b.Corners()
	return ax1 <= bx2 && bx1 <= ax2 && ay1 <= by2 && by1 <= ay2
}
