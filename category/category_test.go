package category

import (
	"testing"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabelCategories(t *testing.T) {
	c := NewLabelCategories("cat", "dog", "cat")
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, []string{"cat", "dog"}, c.Names())

	idx, ok := c.Find("dog")
	require.True(t, ok)
	assert.Equal(t, 1, idx)

	_, err := c.Add("dog", "")
	assert.ErrorIs(t, err, ErrDuplicateLabel)

	idx, err = c.Add("puppy", "dog", "age")
	require.NoError(t, err)
	assert.Equal(t, 2, idx)
	l, ok := c.At(2)
	require.True(t, ok)
	assert.Equal(t, "dog", l.Parent)

	c.Attributes = []string{"occluded"}
	assert.Equal(t, []string{"occluded", "age"}, c.AllowedAttributes(2))

	assert.Equal(t, 3, c.Ensure("bird"))
	assert.Equal(t, 0, c.Ensure("cat"))

	assert.False(t, c.Valid(-1))
	assert.False(t, c.Valid(4))
	_, ok = c.Name(10)
	assert.False(t, ok)
}

func TestLabelCategoriesCloneIsIndependent(t *testing.T) {
	c := NewLabelCategories("a", "b")
	cl := c.Clone()
	require.True(t, c.Equal(cl))

	_, _ = cl.Add("c", "")
	assert.Equal(t, 2, c.Len())
	assert.False(t, c.Equal(cl))

	var nilCats *LabelCategories
	assert.True(t, nilCats.Equal(NewLabelCategories()))
}

func TestPointsCategoriesRemap(t *testing.T) {
	p := NewPointsCategories()
	p.Add(0, []string{"head", "tail"}, [][2]int{{1, 2}})
	p.Add(2, []string{"a"}, nil)

	r := p.Remap(func(i int) int {
		if i == 2 {
			return 0
		}
		return -1
	})
	assert.Equal(t, []int{0}, r.Labels())
	got, ok := r.Get(0)
	require.True(t, ok)
	assert.Equal(t, []string{"a"}, got.Labels)
	assert.True(t, p.Equal(p.Clone()))
}

func TestMaskCategories(t *testing.T) {
	m := NewMaskCategories()
	require.NoError(t, m.SetHex(1, "#ff0000"))
	assert.Error(t, m.SetHex(2, "nope"))

	hex, ok := m.Hex(1)
	require.True(t, ok)
	assert.Equal(t, "#ff0000", hex)

	c, _ := colorful.Hex("#00ff00")
	m.SetColor(3, c)
	assert.Equal(t, []int{1, 3}, m.Labels())

	moved := m.Remap(func(i int) int { return i - 1 })
	assert.Equal(t, []int{0, 2}, moved.Labels())
	assert.True(t, m.Equal(m.Clone()))
}

func TestGenerateColormapIsDeterministic(t *testing.T) {
	a := GenerateColormap(10)
	b := GenerateColormap(10)
	assert.Equal(t, 10, a.Len())
	assert.True(t, a.Equal(b))

	h0, _ := a.Hex(0)
	h1, _ := a.Hex(1)
	assert.NotEqual(t, h0, h1)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry("x", "y")
	name, ok := r.LabelName(1)
	require.True(t, ok)
	assert.Equal(t, "y", name)

	cl := r.Clone()
	assert.True(t, r.Equal(cl))
	cl.Mask = GenerateColormap(2)
	assert.False(t, r.Equal(cl))

	var empty *Registry
	assert.Equal(t, 0, empty.Labels().Len())
	assert.True(t, empty.Equal(&Registry{}))
}
