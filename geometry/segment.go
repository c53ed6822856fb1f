package geometry

import (
	"math"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/annoset/annotation"
)

// PolygonArea returns the area enclosed by a flat [x0, y0, x1, y1, ...]
// point list.
func PolygonArea(points []float64) float64 {
	return annotation.Polygon{Points: points}.Area()
}

// SegmentIoU returns the IoU of two region shapes of any of the kinds
// Bbox, Polygon and Mask. Both regions are rasterized on a frame anchored
// at the image origin. Non-region shapes score 0.
func SegmentIoU(a, b annotation.Shape) float64 {
	w, h, ok := segmentExtent(a)
	if !ok {
		return 0
	}
	w2, h2, ok := segmentExtent(b)
	if !ok {
		return 0
	}
	if pa, ok := a.(annotation.Polygon); ok {
		if pb, ok := b.(annotation.Polygon); ok {
			return PolygonIoU(pa, pb)
		}
	}
	frame := Frame{Width: max(w, w2, 1), Height: max(h, h2, 1)}
	ra, rb := segmentPixels(a, frame), segmentPixels(b, frame)
	if ra.OrCardinality(rb) == 0 && !annotation.ShapeEqual(a, b, 0) {
		return 0
	}
	return bitmapIoU(ra, rb)
}

func segmentExtent(s annotation.Shape) (w, h int, ok bool) {
	switch v := s.(type) {
	case annotation.Mask:
		return v.Width, v.Height, true
	case annotation.Bbox, annotation.Polygon:
		b, found := annotation.Bounds(v)
		if !found {
			return 0, 0, true
		}
		return int(math.Ceil(b.X + b.W)), int(math.Ceil(b.Y + b.H)), true
	default:
		return 0, 0, false
	}
}

func segmentPixels(s annotation.Shape, frame Frame) *roaring.Bitmap {
	switch v := s.(type) {
	case annotation.Mask:
		if v.Width == frame.Width {
			if v.Pixels == nil {
				return roaring.New()
			}
			return v.Pixels
		}
		return reindex(v, frame.Width)
	case annotation.Bbox:
		return BboxToMask(v, frame.Width, frame.Height).Pixels
	case annotation.Polygon:
		return RasterizePolygon(v.Points, frame)
	default:
		return roaring.New()
	}
}
