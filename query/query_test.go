package query

import (
	"testing"

	"github.com/hupe1980/annoset/annotation"
	"github.com/hupe1980/annoset/attr"
	"github.com/hupe1980/annoset/category"
	"github.com/hupe1980/annoset/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture() (*dataset.Item, *category.Registry) {
	cats := category.NewRegistry("cat", "dog", "label_2")
	it := dataset.NewItem("img1",
		dataset.WithSubset("train"),
		dataset.WithImageSize(640, 480),
		dataset.WithAttributes(attr.Map{"frame": attr.Int(3)}),
		dataset.WithAnnotations(
			annotation.New(annotation.Bbox{X: 10, Y: 10, W: 20, H: 30},
				annotation.WithID(1), annotation.WithLabel(0), annotation.WithAttribute("occluded", attr.Bool(true))),
			annotation.New(annotation.Bbox{X: 0, Y: 0, W: 2, H: 2},
				annotation.WithID(2), annotation.WithLabel(1)),
			annotation.New(annotation.Polygon{Points: []float64{0, 0, 4, 0, 4, 4}},
				annotation.WithID(3), annotation.WithLabel(2)),
			annotation.New(annotation.Caption{Text: "a cat on a mat"},
				annotation.WithID(4)),
			annotation.New(annotation.Points{
				Points:     []float64{1, 1, 2, 2},
				Visibility: []annotation.Visibility{annotation.VisibilityVisible, annotation.VisibilityAbsent},
			}, annotation.WithID(5), annotation.WithLabel(2)),
		),
	)
	return it, cats
}

func selected(m Match) []int {
	out := []int{}
	for i, ok := m.Annotations.NextSet(0); ok; i, ok = m.Annotations.NextSet(i + 1) {
		out = append(out, int(i))
	}
	return out
}

func TestEval(t *testing.T) {
	it, cats := fixture()
	all := []int{0, 1, 2, 3, 4}

	tests := []struct {
		query string
		item  bool
		anns  []int
	}{
		{`/item/annotation[label='label_2']`, true, []int{2, 4}},
		{`/item/annotation[label='cow']`, false, []int{}},
		{`/item[subset='train']`, true, all},
		{`/item[subset='val']`, false, []int{}},
		{`/item[image/width > 600 and image/height = 480]`, true, all},
		{`/item/annotation[type='bbox' and w * h > 10]`, true, []int{0}},
		{`//annotation[contains(caption, 'cat')]`, true, []int{3}},
		{`/item[count(annotation) = 5]`, true, all},
		{`/item/annotation[not(label)]`, true, []int{3}},
		{`/item/annotation[attributes/occluded = 'true']`, true, []int{0}},
		{`/item/annotation[attributes/occluded = true()]`, true, []int{0}},
		{`/item/annotation[2]`, true, []int{1}},
		{`/item/annotation[last()]`, true, []int{4}},
		{`/item/annotation[label_id >= 1 and label_id < 3]`, true, []int{1, 2, 4}},
		{`/item/annotation[starts-with(label, 'la')]/points`, true, []int{2, 4}},
		{`/item/annotation[area div 2 = 4]`, true, []int{2}},
		{`/item/annotation[visible = 1]`, true, []int{4}},
		{`count(/item/annotation[type='bbox']) > 1`, true, all},
		{`count(/item/annotation[type='bbox']) > 2`, false, []int{}},
		{`/item/annotation[label='cat'] | /item/annotation[label='dog']`, true, []int{0, 1}},
		{`/item/annotation[id mod 2 = 0]`, true, []int{1, 3}},
		{`/item/attributes/frame = 3`, true, all},
		{`/item/annotation[.//occluded]`, true, []int{0}},
		{`/item/annotation/label[. = 'dog']/..`, true, []int{1}},
		{`/item/annotation[string-length(label) > 3]`, true, []int{2, 4}},
		{`/item/annotation[-x < -5]`, true, []int{0}},
		{`/item/annotation[label='cat' or (type='caption' and group=0)]`, true, []int{0, 3}},
		{`/item/*[name() = 'image']`, true, []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			q, err := Compile(tt.query)
			require.NoError(t, err)

			m := q.Eval(it, cats)
			assert.Equal(t, tt.item, m.Item)
			assert.Equal(t, tt.anns, selected(m))
		})
	}
}

func TestMatchItemAndSelectAnnotations(t *testing.T) {
	it, cats := fixture()
	q := MustCompile(`/item/annotation[label='dog']`)

	assert.True(t, q.MatchItem(it, cats))
	sel := q.SelectAnnotations(it, cats)
	assert.Equal(t, uint(1), sel.Count())
	assert.True(t, sel.Test(1))

	// Label names resolve through the registry passed in.
	renamed := category.NewRegistry("cat", "wolf", "label_2")
	assert.False(t, q.MatchItem(it, renamed))
}

func TestQueryIsReusable(t *testing.T) {
	q := MustCompile(`/item/annotation[label='cat']`)
	cats := category.NewRegistry("cat")
	a := dataset.NewItem("a", dataset.WithAnnotations(annotation.New(annotation.Label{}, annotation.WithLabel(0))))
	b := dataset.NewItem("b")

	for range 3 {
		assert.True(t, q.MatchItem(a, cats))
		assert.False(t, q.MatchItem(b, cats))
	}
	assert.Equal(t, `/item/annotation[label='cat']`, q.String())
	assert.Len(t, a.Annotations, 1)
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		query string
		pos   int
	}{
		{`/item[`, 6},
		{`/item/annotation[label=]`, 23},
		{`'abc`, 0},
		{`/item[foo(1)]`, 6},
		{`count()`, 0},
		{`/item]`, 5},
		{`/item[a ! b]`, 8},
		{`/item/@`, 7},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			_, err := Compile(tt.query)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrSyntax)

			var se *SyntaxError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.pos, se.Pos)
			assert.Equal(t, tt.query, se.Query)
		})
	}

	assert.Panics(t, func() { MustCompile(`[`) })
}

func TestLexOperatorDisambiguation(t *testing.T) {
	tokens, err := lex(`/item/*[w * h > 2 and div div mod]`)
	require.NoError(t, err)

	var types []tokenType
	for _, tk := range tokens {
		types = append(types, tk.typ)
	}
	assert.Equal(t, []tokenType{
		tokSlash, tokName, tokSlash, tokStar, tokLBracket,
		tokName, tokMul, tokName, tokGt, tokNumber, tokAnd,
		tokName, tokDiv, tokName, tokRBracket, tokEOF,
	}, types)
}
