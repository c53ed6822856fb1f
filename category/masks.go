package category

import (
	"maps"
	"math"
	"slices"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// MaskCategories maps label indices to display colours.
type MaskCategories struct {
	colors map[int]colorful.Color
}

// NewMaskCategories returns an empty colour map.
func NewMaskCategories() *MaskCategories {
	return &MaskCategories{colors: make(map[int]colorful.Color)}
}

// GenerateColormap returns a deterministic colour map for n labels with
// hues spread by the golden angle.
func GenerateColormap(n int) *MaskCategories {
	m := NewMaskCategories()
	for i := 0; i < n; i++ {
		hue := math.Mod(float64(i)*137.508, 360)
		m.colors[i] = colorful.Hcl(hue, 0.6, 0.65).Clamped()
	}
	return m
}

// SetColor assigns a colour to a label index.
func (m *MaskCategories) SetColor(label int, c colorful.Color) {
	if m.colors == nil {
		m.colors = make(map[int]colorful.Color)
	}
	m.colors[label] = c
}

// SetHex assigns a colour given as "#rrggbb".
func (m *MaskCategories) SetHex(label int, hex string) error {
	c, err := colorful.Hex(hex)
	if err != nil {
		return err
	}
	m.SetColor(label, c)
	return nil
}

// Color returns the colour of a label index.
func (m *MaskCategories) Color(label int) (colorful.Color, bool) {
	if m == nil {
		return colorful.Color{}, false
	}
	c, ok := m.colors[label]
	return c, ok
}

// Hex returns the colour of a label index as "#rrggbb".
func (m *MaskCategories) Hex(label int) (string, bool) {
	c, ok := m.Color(label)
	if !ok {
		return "", false
	}
	return c.Hex(), true
}

// Labels returns the label indices with a colour, ascending.
func (m *MaskCategories) Labels() []int {
	if m == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(m.colors))
}

// Len returns the number of entries.
func (m *MaskCategories) Len() int {
	if m == nil {
		return 0
	}
	return len(m.colors)
}

// Clone returns a copy.
func (m *MaskCategories) Clone() *MaskCategories {
	if m == nil {
		return nil
	}
	return &MaskCategories{colors: maps.Clone(m.colors)}
}

// Equal compares colours at 8-bit precision.
func (m *MaskCategories) Equal(o *MaskCategories) bool {
	if m.Len() != o.Len() {
		return false
	}
	for _, k := range m.Labels() {
		a, _ := m.Hex(k)
		b, ok := o.Hex(k)
		if !ok || a != b {
			return false
		}
	}
	return true
}

// Remap returns a copy keyed by new label indices. Entries mapped to a
// negative index are dropped. When two entries collide the first one wins.
func (m *MaskCategories) Remap(mapping func(int) int) *MaskCategories {
	out := NewMaskCategories()
	for _, k := range m.Labels() {
		nk := mapping(k)
		if nk < 0 {
			continue
		}
		if _, ok := out.colors[nk]; ok {
			continue
		}
		out.colors[nk] = m.colors[k]
	}
	return out
}
