package annotation

import (
	"math"
	"testing"

	"github.com/hupe1980/annoset/attr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	a := New(Bbox{X: 1, Y: 2, W: 3, H: 4})
	assert.Equal(t, NoLabel, a.Label)
	assert.False(t, a.HasLabel())
	assert.Equal(t, KindBbox, a.Kind())

	b := New(Caption{Text: "a cat"}, WithID(7), WithLabel(2), WithGroup(3), WithZOrder(1),
		WithAttribute("occluded", attr.Bool(true)))
	assert.Equal(t, 7, b.ID)
	assert.Equal(t, 2, b.Label)
	assert.Equal(t, 3, b.Group)
	assert.Equal(t, 1, b.ZOrder)
	assert.True(t, b.Attributes["occluded"].B)
}

func TestKindNames(t *testing.T) {
	for _, k := range Kinds() {
		parsed, ok := ParseKind(k.String())
		require.True(t, ok, k.String())
		assert.Equal(t, k, parsed)
	}
	_, ok := ParseKind("ellipse")
	assert.False(t, ok)
}

func TestClone(t *testing.T) {
	m := NewMask(4, 4)
	m.Set(1, 1)
	a := New(m, WithAttributes(attr.Map{"k": attr.Int(1)}))

	c := a.Clone()
	c.Shape.(Mask).Set(2, 2)
	c.Attributes["k"] = attr.Int(2)

	assert.Equal(t, float64(1), Area(a.Shape))
	assert.Equal(t, int64(1), a.Attributes["k"].I64)

	p := New(Polygon{Points: []float64{0, 0, 1, 0, 1, 1}})
	pc := p.Clone()
	pc.Shape.(Polygon).Points[0] = 5
	assert.Equal(t, float64(0), p.Shape.(Polygon).Points[0])
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		shape   Shape
		wantErr bool
	}{
		{"bbox ok", Bbox{W: 1, H: 1}, false},
		{"bbox zero size ok", Bbox{}, false},
		{"bbox negative", Bbox{W: -1, H: 1}, true},
		{"bbox NaN width", Bbox{W: math.NaN(), H: 1}, true},
		{"bbox infinite x", Bbox{X: math.Inf(1), W: 1, H: 1}, true},
		{"polygon NaN", Polygon{Points: []float64{0, 0, math.NaN(), 0, 1, 1}}, true},
		{"points infinite", Points{Points: []float64{0, math.Inf(-1)}}, true},
		{"cuboid NaN", Cuboid3D{Scale: [3]float64{1, math.NaN(), 1}}, true},
		{"polygon ok", Polygon{Points: []float64{0, 0, 1, 0, 1, 1}}, false},
		{"polygon too short", Polygon{Points: []float64{0, 0, 1, 0}}, true},
		{"polyline ok", PolyLine{Points: []float64{0, 0, 1, 0}}, false},
		{"points odd", Points{Points: []float64{0, 0, 1}}, true},
		{"points visibility mismatch", Points{Points: []float64{0, 0}, Visibility: []Visibility{1, 2}}, true},
		{"empty mask ok", NewMask(3, 3), false},
		{"nil shape", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := (&Annotation{Shape: tt.shape}).Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBoundsAndArea(t *testing.T) {
	box, ok := Bounds(Polygon{Points: []float64{1, 1, 5, 1, 5, 4}})
	require.True(t, ok)
	assert.Equal(t, Bbox{X: 1, Y: 1, W: 4, H: 3}, box)
	assert.InDelta(t, 6.0, Area(Polygon{Points: []float64{1, 1, 5, 1, 5, 4}}), 1e-9)

	m := NewMask(10, 10)
	m.SetRect(2, 3, 5, 7)
	box, ok = Bounds(m)
	require.True(t, ok)
	assert.Equal(t, Bbox{X: 2, Y: 3, W: 3, H: 4}, box)
	assert.Equal(t, float64(12), Area(m))

	_, ok = Bounds(NewMask(10, 10))
	assert.False(t, ok)

	box, ok = Bounds(Points{Points: []float64{0, 0, 4, 4, 9, 9}, Visibility: []Visibility{VisibilityVisible, VisibilityHidden, VisibilityAbsent}})
	require.True(t, ok)
	assert.Equal(t, Bbox{W: 4, H: 4}, box)

	_, ok = Bounds(Caption{Text: "x"})
	assert.False(t, ok)
}

func TestEqual(t *testing.T) {
	a := New(Bbox{X: 0, Y: 2, W: 4, H: 2}, WithLabel(2), WithID(0))
	b := New(Bbox{X: 0, Y: 2 + 1e-9, W: 4, H: 2}, WithLabel(2), WithID(5))

	assert.True(t, Equal(a, b, EqualOptions{Tolerance: DefaultTolerance}))
	assert.False(t, Equal(a, b, EqualOptions{Tolerance: DefaultTolerance, CompareID: true}))

	b.Label = 3
	assert.False(t, Equal(a, b, EqualOptions{Tolerance: DefaultTolerance}))
	assert.True(t, Equal(a, b, EqualOptions{Tolerance: DefaultTolerance, SkipLabel: true}))

	assert.False(t, ShapeEqual(Bbox{}, Polygon{}, 0))
	assert.True(t, ShapeEqual(Caption{Text: "x"}, Caption{Text: "x"}, 0))

	m1, m2 := NewMask(4, 4), NewMask(4, 4)
	m1.Set(1, 2)
	assert.False(t, ShapeEqual(m1, m2, 0))
	m2.Set(1, 2)
	assert.True(t, ShapeEqual(m1, m2, 0))

	p1 := Points{Points: []float64{1, 1}}
	p2 := Points{Points: []float64{1, 1}, Visibility: []Visibility{VisibilityVisible}}
	assert.True(t, ShapeEqual(p1, p2, 0))
}
