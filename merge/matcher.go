package merge

import (
	"cmp"
	"slices"

	"github.com/bits-and-blooms/bitset"

	"github.com/hupe1980/annoset/annotation"
	"github.com/hupe1980/annoset/geometry"
)

// entry is one relabelled annotation of a shared item.
type entry struct {
	source int
	index  int
	ann    *annotation.Annotation
}

func (e entry) compare(o entry) int {
	if c := cmp.Compare(e.source, o.source); c != 0 {
		return c
	}
	if c := cmp.Compare(e.ann.ID, o.ann.ID); c != 0 {
		return c
	}
	return cmp.Compare(e.index, o.index)
}

type pair struct {
	a, b int // entry indices, entries[a] ordered before entries[b]
	sim  float64
}

// candidates returns every cross-source pair that may match, strongest
// first. Ties are broken by source order then annotation id.
func candidates(entries []entry, o *options) []pair {
	var pairs []pair
	for i := range entries {
		for j := i + 1; j < len(entries); j++ {
			x, y := entries[i], entries[j]
			if x.source == y.source || x.ann.Kind() != y.ann.Kind() {
				continue
			}
			if !o.labelAgnostic && x.ann.Label != y.ann.Label {
				continue
			}
			sim := geometry.Similarity(x.ann.Shape, y.ann.Shape, o.params)
			if sim < o.threshold {
				continue
			}
			a, b := i, j
			if x.compare(y) > 0 {
				a, b = j, i
			}
			pairs = append(pairs, pair{a: a, b: b, sim: sim})
		}
	}
	slices.SortFunc(pairs, func(p, q pair) int {
		if c := cmp.Compare(q.sim, p.sim); c != 0 {
			return c
		}
		if c := entries[p.a].compare(entries[q.a]); c != 0 {
			return c
		}
		return entries[p.b].compare(entries[q.b])
	})
	return pairs
}

// cluster is a group of entries believed to observe the same object,
// holding at most one entry per source.
type cluster struct {
	members []int
	sources *bitset.BitSet
	minSim  float64
}

// clusters commits candidate pairs greedily. A pair joins two groups only
// when no source would then contribute twice, so for two sources this is
// exactly greedy one-to-one matching. Clusters are returned in order of
// their earliest member, members ordered by source then position.
func clusters(entries []entry, pairs []pair) []*cluster {
	owner := make([]*cluster, len(entries))
	for i, e := range entries {
		owner[i] = &cluster{members: []int{i}, sources: bitset.New(uint(e.source + 1)).Set(uint(e.source)), minSim: 1}
	}
	for _, p := range pairs {
		ca, cb := owner[p.a], owner[p.b]
		if ca == cb || ca.sources.IntersectionCardinality(cb.sources) > 0 {
			continue
		}
		ca.members = append(ca.members, cb.members...)
		ca.sources.InPlaceUnion(cb.sources)
		ca.minSim = min(ca.minSim, cb.minSim, p.sim)
		for _, m := range cb.members {
			owner[m] = ca
		}
	}

	seen := make(map[*cluster]bool)
	var out []*cluster
	for _, c := range owner {
		if seen[c] {
			continue
		}
		seen[c] = true
		slices.SortFunc(c.members, func(a, b int) int {
			if x := cmp.Compare(entries[a].source, entries[b].source); x != 0 {
				return x
			}
			return cmp.Compare(entries[a].index, entries[b].index)
		})
		if len(c.members) == 1 {
			c.minSim = 0
		}
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b *cluster) int {
		x, y := entries[a.members[0]], entries[b.members[0]]
		if c := cmp.Compare(x.source, y.source); c != 0 {
			return c
		}
		return cmp.Compare(x.index, y.index)
	})
	return out
}
