package transform

import (
	"context"
	"fmt"
	"testing"

	"github.com/hupe1980/annoset/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func manyItems(t *testing.T, n int) *dataset.Dataset {
	t.Helper()
	ds := dataset.New(nil)
	for i := range n {
		require.NoError(t, ds.Add(dataset.NewItem(fmt.Sprintf("item_%03d", i))))
	}
	return ds
}

func subsetCounts(src dataset.Source) map[string]int {
	out := map[string]int{}
	for it := range src.Items() {
		out[it.Subset]++
	}
	return out
}

func TestSplitCountsAndDeterminism(t *testing.T) {
	ds := manyItems(t, 10)
	s, err := NewSplit([]SplitPart{{"train", 0.5}, {"val", 0.3}, {"test", 0.2}}, "seed")
	require.NoError(t, err)

	out := s.Apply(ds)
	assert.Equal(t, map[string]int{"train": 5, "val": 3, "test": 2}, subsetCounts(out))

	first := itemKeys(out)
	assert.Equal(t, first, itemKeys(out), "restartable")
	assert.Equal(t, first, itemKeys(s.Apply(ds.Clone())), "reproducible")

	big := manyItems(t, 64)
	a, err := NewSplit([]SplitPart{{"train", 0.5}, {"test", 0.5}}, "one")
	require.NoError(t, err)
	b, err := NewSplit([]SplitPart{{"train", 0.5}, {"test", 0.5}}, "two")
	require.NoError(t, err)
	assert.NotEqual(t, itemKeys(a.Apply(big)), itemKeys(b.Apply(big)), "seed changes the split")
}

func TestSplitLargestRemainder(t *testing.T) {
	s, err := NewSplit([]SplitPart{{"a", 1.0 / 3}, {"b", 1.0 / 3}, {"c", 1.0 / 3}}, "")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1, 1}, s.counts(3))
	assert.Equal(t, []int{2, 1, 1}, s.counts(4))
	assert.Equal(t, []int{0, 0, 0}, s.counts(0))

	s, err = NewSplit([]SplitPart{{"a", 0.7}, {"b", 0.3}}, "")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1}, s.counts(3))
}

func TestSplitIndependentOfInputOrder(t *testing.T) {
	ds := manyItems(t, 20)
	rev := dataset.New(nil)
	var items []*dataset.Item
	for it := range ds.Items() {
		items = append(items, it)
	}
	for i := len(items) - 1; i >= 0; i-- {
		require.NoError(t, rev.Add(items[i].Clone()))
	}

	s, err := NewSplit([]SplitPart{{"train", 0.8}, {"val", 0.2}}, "x")
	require.NoError(t, err)

	assign := func(src dataset.Source) map[string]string {
		out := map[string]string{}
		for it := range s.Apply(src).Items() {
			out[it.ID] = it.Subset
		}
		return out
	}
	assert.Equal(t, assign(ds), assign(rev))
}

func TestSplitSameIDAcrossSubsets(t *testing.T) {
	ds := dataset.New(nil)
	require.NoError(t, ds.Add(dataset.NewItem("1", dataset.WithSubset("train"))))
	require.NoError(t, ds.Add(dataset.NewItem("1", dataset.WithSubset("test"))))
	require.NoError(t, ds.Add(dataset.NewItem("1_test", dataset.WithSubset("val"))))

	for _, seed := range []string{"", "a", "b", "c"} {
		s, err := NewSplit([]SplitPart{{"x", 0.9}, {"y", 0.1}}, seed)
		require.NoError(t, err)

		out, err := NewPipeline(s).Run(context.Background(), ds)
		require.NoError(t, err, "seed %q", seed)
		assert.Equal(t, 3, out.Len())

		ids := map[string]bool{}
		for it := range out.Items() {
			assert.False(t, ids[it.ID+"/"+it.Subset], "duplicate %s", it.Key())
			ids[it.ID+"/"+it.Subset] = true
		}
	}
}

func TestResolveCollisions(t *testing.T) {
	got := resolveCollisions(map[dataset.Key]string{
		{ID: "1", Subset: "train"}:     "x",
		{ID: "1", Subset: "test"}:      "x",
		{ID: "1_train", Subset: "val"}: "x",
		{ID: "2", Subset: "train"}:     "y",
	})
	assert.Equal(t, map[dataset.Key]dataset.Key{
		{ID: "1", Subset: "test"}:      {ID: "1", Subset: "x"},
		{ID: "1", Subset: "train"}:     {ID: "1_train_2", Subset: "x"},
		{ID: "1_train", Subset: "val"}: {ID: "1_train", Subset: "x"},
		{ID: "2", Subset: "train"}:     {ID: "2", Subset: "y"},
	}, got)
}

func TestNewSplitValidation(t *testing.T) {
	tests := [][]SplitPart{
		nil,
		{{"", 1}},
		{{"a", 0.5}, {"a", 0.5}},
		{{"a", -0.5}, {"b", 1.5}},
		{{"a", 0.5}, {"b", 0.4}},
	}
	for _, parts := range tests {
		_, err := NewSplit(parts, "")
		assert.ErrorIs(t, err, dataset.ErrValidation, "%v", parts)
	}
}
