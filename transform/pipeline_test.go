package transform

import (
	"bytes"
	"context"
	"testing"

	"github.com/hupe1980/annoset/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filterRemapFixture(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.FromItems(tenLabels(),
		dataset.NewItem("1", dataset.WithAnnotations(bbox(2, 0), bbox(4, 10))),
		dataset.NewItem("2", dataset.WithSubset("val"), dataset.WithAnnotations(bbox(5, 0))),
		dataset.NewItem("3", dataset.WithAnnotations(bbox(4, 3))),
	)
	require.NoError(t, err)
	return ds
}

func TestPipelineComposesLikeSequentialApplication(t *testing.T) {
	ds := filterRemapFixture(t)

	f, err := NewFilter(`/item/annotation[label='c2' or label='c4']`, ModeItemsAnnotations)
	require.NoError(t, err)
	r, err := NewRemapLabels(map[string]string{"c4": "four"}, DefaultDelete)
	require.NoError(t, err)

	got, err := NewPipeline(f, r).Run(context.Background(), ds)
	require.NoError(t, err)

	step1 := materialize(t, f.Apply(ds))
	want := materialize(t, r.Apply(step1))

	assert.True(t, dataset.Equal(want, got, dataset.CompareCategories()), "%v", dataset.Compare(want, got))
	assert.Equal(t, []string{"four"}, got.Categories().Labels().Names())
	assert.Equal(t, []string{"default/1", "default/3"}, itemKeys(got))
}

func TestPipelineRunHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewPipeline().Run(ctx, filterRemapFixture(t))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDefinitionRoundTrip(t *testing.T) {
	ds := filterRemapFixture(t)

	f, err := NewFilter(`/item/annotation[label='c4']`, ModeItemsAnnotations)
	require.NoError(t, err)
	r, err := NewRemapLabels(map[string]string{"c4": "animal"}, DefaultDelete)
	require.NoError(t, err)
	s, err := NewSplit([]SplitPart{{"train", 0.5}, {"test", 0.5}}, "s")
	require.NoError(t, err)
	p := NewPipeline(f, r, NewPipeline(s, Reindex{Start: 1}), NewRemoveItems(dataset.Key{ID: "9"}))

	def, err := p.Definition()
	require.NoError(t, err)
	require.Len(t, def.Steps, 5)

	var buf bytes.Buffer
	require.NoError(t, def.Save(&buf))
	loaded, err := LoadDefinition(&buf)
	require.NoError(t, err)

	rebuilt, err := Default().Build(loaded)
	require.NoError(t, err)

	want, err := p.Run(context.Background(), ds)
	require.NoError(t, err)
	got, err := rebuilt.Run(context.Background(), ds)
	require.NoError(t, err)
	assert.True(t, dataset.Equal(want, got, dataset.CompareCategories()))
	assert.Equal(t, itemKeys(want), itemKeys(got))
}

func TestParseDefinitionYAML(t *testing.T) {
	def, err := ParseDefinition([]byte(`
steps:
  - name: filter
    params:
      expr: /item/annotation[label='c2']
      mode: i+a
  - name: remap_labels
    params:
      mapping: {c2: c2}
      default: delete
  - name: prune_labels
`))
	require.NoError(t, err)

	p, err := Default().Build(def)
	require.NoError(t, err)
	assert.Equal(t, 3, p.Len())

	out, err := p.Run(context.Background(), filterRemapFixture(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"c2"}, out.Categories().Labels().Names())
	assert.Equal(t, 1, out.Len())
}

func TestDefinitionErrors(t *testing.T) {
	_, err := Default().Build(&Definition{Steps: []Step{{Name: "sharpen"}}})
	assert.ErrorIs(t, err, ErrUnknownTransform)

	_, err = Default().Build(&Definition{Steps: []Step{{Name: "reindex", Params: map[string]any{"begin": 1}}}})
	assert.ErrorIs(t, err, dataset.ErrValidation)

	_, err = Default().Build(&Definition{Steps: []Step{{Name: "prune_labels", Params: map[string]any{"x": 1}}}})
	assert.ErrorIs(t, err, dataset.ErrValidation)

	_, err = Default().Build(&Definition{Steps: []Step{{Name: "filter"}}})
	assert.ErrorIs(t, err, dataset.ErrValidation)

	_, err = ParseDefinition([]byte("steps:\n  - params: {}\n"))
	assert.ErrorIs(t, err, dataset.ErrValidation)

	_, err = ParseDefinition([]byte("stages: []\n"))
	assert.ErrorIs(t, err, dataset.ErrValidation)

	_, err = NewPipeline(Func(func(it *dataset.Item) *dataset.Item { return it })).Definition()
	assert.Error(t, err)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, RegisterBuiltins(r))
	assert.Contains(t, r.Names(), "remap_labels")
	assert.Len(t, r.Names(), 14)

	err := r.Register("filter", newFilterFactory)
	assert.Error(t, err)

	require.NoError(t, r.Register("identity", func(map[string]any) (Transform, error) {
		return Func(func(it *dataset.Item) *dataset.Item { return it }), nil
	}))
	tr, err := r.New(Step{Name: "identity"})
	require.NoError(t, err)
	assert.Equal(t, 3, dataset.Count(tr.Apply(filterRemapFixture(t))))
}
