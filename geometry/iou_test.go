package geometry

import (
	"testing"

	"github.com/hupe1980/annoset/annotation"
	"github.com/stretchr/testify/assert"
)

func TestBboxIoU(t *testing.T) {
	tests := []struct {
		name string
		a, b annotation.Bbox
		want float64
	}{
		{"identical", annotation.Bbox{X: 0, Y: 0, W: 4, H: 4}, annotation.Bbox{X: 0, Y: 0, W: 4, H: 4}, 1},
		{"disjoint", annotation.Bbox{X: 0, Y: 0, W: 2, H: 2}, annotation.Bbox{X: 5, Y: 5, W: 2, H: 2}, 0},
		{"touching edge", annotation.Bbox{X: 0, Y: 0, W: 2, H: 2}, annotation.Bbox{X: 2, Y: 0, W: 2, H: 2}, 0},
		// inter = 2*4 = 8, union = 16 + 8 - 8 = 16 -> 0.5
		{"exactly half", annotation.Bbox{X: 0, Y: 0, W: 4, H: 4}, annotation.Bbox{X: 0, Y: 0, W: 2, H: 4}, 0.5},
		// inter = 1*2 = 2, union = 4 + 4 - 2 = 6
		{"partial", annotation.Bbox{X: 0, Y: 0, W: 2, H: 2}, annotation.Bbox{X: 1, Y: 0, W: 2, H: 2}, 2.0 / 6.0},
		{"both empty same place", annotation.Bbox{X: 1, Y: 1}, annotation.Bbox{X: 1, Y: 1}, 1},
		{"both empty elsewhere", annotation.Bbox{X: 1, Y: 1}, annotation.Bbox{X: 2, Y: 1}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, BboxIoU(tt.a, tt.b), 1e-12)
			assert.InDelta(t, tt.want, BboxIoU(tt.b, tt.a), 1e-12)
		})
	}
}

func TestRasterizePolygon(t *testing.T) {
	square := []float64{0, 0, 4, 0, 4, 2, 0, 2}
	bm := RasterizePolygon(square, Frame{Width: 6, Height: 4})
	assert.Equal(t, uint64(8), bm.GetCardinality())
	assert.True(t, bm.Contains(0))
	assert.True(t, bm.Contains(uint32(1*6+3)))
	assert.False(t, bm.Contains(uint32(2*6+0)))

	offset := RasterizePolygon([]float64{10, 10, 12, 10, 12, 12, 10, 12}, Frame{X: 10, Y: 10, Width: 2, Height: 2})
	assert.Equal(t, uint64(4), offset.GetCardinality())

	assert.True(t, RasterizePolygon([]float64{0, 0, 1, 1}, Frame{Width: 2, Height: 2}).IsEmpty())
}

func TestPolygonIoU(t *testing.T) {
	a := annotation.Polygon{Points: []float64{0, 0, 4, 0, 4, 4, 0, 4}}
	b := annotation.Polygon{Points: []float64{0, 0, 2, 0, 2, 4, 0, 4}}
	assert.InDelta(t, 0.5, PolygonIoU(a, b), 1e-9)
	assert.InDelta(t, 1.0, PolygonIoU(a, a), 1e-9)

	far := annotation.Polygon{Points: []float64{10, 10, 12, 10, 12, 12}}
	assert.Equal(t, 0.0, PolygonIoU(a, far))
}

func TestPolygonIoUSubPixel(t *testing.T) {
	a := annotation.Polygon{Points: []float64{0, 0, 0.4, 0, 0, 0.4}}
	b := annotation.Polygon{Points: []float64{0.4, 0.4, 0.8, 0.4, 0.4, 0.8}}
	assert.InDelta(t, 0.0, PolygonIoU(a, b), 1e-9)
	assert.InDelta(t, 1.0, PolygonIoU(a, a), 1e-9)

	sq := annotation.Polygon{Points: []float64{0, 0, 0.4, 0, 0.4, 0.4, 0, 0.4}}
	half := annotation.Polygon{Points: []float64{0, 0, 0.2, 0, 0.2, 0.4, 0, 0.4}}
	assert.InDelta(t, 0.5, PolygonIoU(sq, half), 0.02)

	line := annotation.Polygon{Points: []float64{0, 0, 0.3, 0, 0.6, 0}}
	assert.Equal(t, 0.0, PolygonIoU(line, a))
	assert.Equal(t, 1.0, PolygonIoU(line, line))
}

func TestMaskIoU(t *testing.T) {
	a := annotation.NewMask(4, 4)
	a.SetRect(0, 0, 4, 4)
	b := annotation.NewMask(4, 4)
	b.SetRect(0, 0, 2, 4)
	assert.InDelta(t, 0.5, MaskIoU(a, b), 1e-12)

	wide := annotation.NewMask(8, 4)
	wide.SetRect(0, 0, 2, 4)
	assert.InDelta(t, 0.5, MaskIoU(a, wide), 1e-12)
	assert.InDelta(t, 0.5, MaskIoU(wide, a), 1e-12)

	assert.Equal(t, 1.0, MaskIoU(annotation.NewMask(2, 2), annotation.NewMask(2, 2)))
}

func TestPolygonAndBboxToMask(t *testing.T) {
	m := PolygonToMask([]float64{1, 1, 3, 1, 3, 3, 1, 3}, 5, 5)
	assert.Equal(t, float64(4), m.Area())
	assert.True(t, m.Contains(1, 1))
	assert.True(t, m.Contains(2, 2))
	assert.False(t, m.Contains(3, 3))

	bm := BboxToMask(annotation.Bbox{X: 1, Y: 1, W: 2, H: 2}, 5, 5)
	assert.True(t, annotation.ShapeEqual(m, bm, 0))
}

func TestSegmentIoU(t *testing.T) {
	box := annotation.Bbox{X: 0, Y: 0, W: 4, H: 4}
	poly := annotation.Polygon{Points: []float64{0, 0, 2, 0, 2, 4, 0, 4}}
	assert.InDelta(t, 0.5, SegmentIoU(box, poly), 1e-9)

	mask := annotation.NewMask(8, 8)
	mask.SetRect(0, 0, 4, 4)
	assert.InDelta(t, 1.0, SegmentIoU(box, mask), 1e-9)

	assert.Equal(t, 0.0, SegmentIoU(box, annotation.Label{}))
	tiny := annotation.Polygon{Points: []float64{0, 0, 0.4, 0, 0, 0.4}}
	other := annotation.Polygon{Points: []float64{0.4, 0.4, 0.8, 0.4, 0.4, 0.8}}
	assert.Equal(t, 0.0, SegmentIoU(tiny, other))
	assert.Equal(t, 0.0, SegmentIoU(tiny, annotation.NewMask(2, 2)))
	assert.Equal(t, 1.0, SegmentIoU(annotation.NewMask(2, 2), annotation.NewMask(2, 2)))
	assert.InDelta(t, 8.0, PolygonArea(poly.Points), 1e-12)
}
