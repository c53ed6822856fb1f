package transform

import (
	"cmp"
	"maps"
	"math"
	"slices"
	"strconv"

	"github.com/hupe1980/annoset/category"
	"github.com/hupe1980/annoset/dataset"
	"github.com/hupe1980/annoset/internal/hash"
)

// SplitPart is one target subset and its share of the items.
type SplitPart struct {
	Subset string  `yaml:"subset" json:"subset"`
	Ratio  float64 `yaml:"ratio" json:"ratio"`
}

// Split reassigns every item to one of the parts. Items are ordered by a
// hash of seed and item key, and consecutive runs of that order go to
// each part, so the result depends only on the set of keys and the seed.
// Part sizes use the largest remainder method.
//
// When items sharing an id across source subsets land in the same part,
// the first in key order keeps its id and the others are renamed to
// "<id>_<source subset>", with a numeric suffix if that is taken too.
type Split struct {
	parts []SplitPart
	seed  string
}

// NewSplit validates parts: subsets must be distinct and non-empty and
// ratios positive and summing to 1.
func NewSplit(parts []SplitPart, seed string) (*Split, error) {
	if len(parts) == 0 {
		return nil, dataset.Invalid("parts", "no split parts")
	}
	seen := make(map[string]struct{}, len(parts))
	var sum float64
	for _, p := range parts {
		if p.Subset == "" {
			return nil, dataset.Invalid("parts", "empty subset name")
		}
		if _, dup := seen[p.Subset]; dup {
			return nil, dataset.Invalid("parts", "subset %q listed twice", p.Subset)
		}
		seen[p.Subset] = struct{}{}
		if p.Ratio <= 0 {
			return nil, dataset.Invalid("parts", "ratio of %q must be positive, got %g", p.Subset, p.Ratio)
		}
		sum += p.Ratio
	}
	if math.Abs(sum-1) > 1e-6 {
		return nil, dataset.Invalid("parts", "ratios sum to %g, want 1", sum)
	}
	return &Split{parts: slices.Clone(parts), seed: seed}, nil
}

// Apply implements Transform.
func (s *Split) Apply(src dataset.Source) dataset.Source {
	return newDeferred(src, func(src dataset.Source) (*category.Registry, func(*dataset.Item) *dataset.Item) {
		assign := s.assign(src)
		return src.Categories(), func(it *dataset.Item) *dataset.Item {
			to := assign[it.Key()]
			if to == it.Key() {
				return it
			}
			return it.Rename(to.ID, to.Subset)
		}
	})
}

type hashedKey struct {
	key dataset.Key
	sum uint64
}

func (s *Split) assign(src dataset.Source) map[dataset.Key]dataset.Key {
	var keys []hashedKey
	for it := range src.Items() {
		k := it.Key()
		keys = append(keys, hashedKey{key: k, sum: hash.Key(s.seed, k.Subset, k.ID)})
	}
	slices.SortFunc(keys, func(a, b hashedKey) int {
		if c := cmp.Compare(a.sum, b.sum); c != 0 {
			return c
		}
		return a.key.Compare(b.key)
	})

	counts := s.counts(len(keys))
	parts := make(map[dataset.Key]string, len(keys))
	pos := 0
	for i, n := range counts {
		for _, hk := range keys[pos : pos+n] {
			parts[hk.key] = s.parts[i].Subset
		}
		pos += n
	}
	return resolveCollisions(parts)
}

// resolveCollisions maps every source key to its target key. Targets are
// claimed in source key order; losers get a suffixed id.
func resolveCollisions(parts map[dataset.Key]string) map[dataset.Key]dataset.Key {
	order := slices.SortedFunc(maps.Keys(parts), dataset.Key.Compare)
	out := make(map[dataset.Key]dataset.Key, len(parts))
	taken := make(map[dataset.Key]struct{}, len(parts))
	var losers []dataset.Key
	for _, k := range order {
		to := dataset.Key{ID: k.ID, Subset: parts[k]}
		if _, dup := taken[to]; dup {
			losers = append(losers, k)
			continue
		}
		taken[to] = struct{}{}
		out[k] = to
	}
	for _, k := range losers {
		base := k.ID + "_" + k.Subset
		to := dataset.Key{ID: base, Subset: parts[k]}
		for n := 2; ; n++ {
			if _, dup := taken[to]; !dup {
				break
			}
			to.ID = base + "_" + strconv.Itoa(n)
		}
		taken[to] = struct{}{}
		out[k] = to
	}
	return out
}

// counts distributes n items over the parts by largest remainder; ties go
// to the earlier part.
func (s *Split) counts(n int) []int {
	counts := make([]int, len(s.parts))
	type rem struct {
		part int
		frac float64
	}
	rems := make([]rem, len(s.parts))
	total := 0
	for i, p := range s.parts {
		exact := p.Ratio * float64(n)
		counts[i] = int(math.Floor(exact))
		total += counts[i]
		rems[i] = rem{part: i, frac: exact - math.Floor(exact)}
	}
	slices.SortStableFunc(rems, func(a, b rem) int { return cmp.Compare(b.frac, a.frac) })
	for i := 0; total < n; i++ {
		counts[rems[i%len(rems)].part]++
		total++
	}
	return counts
}

// Step implements Describer.
func (s *Split) Step() Step {
	parts := make([]any, len(s.parts))
	for i, p := range s.parts {
		parts[i] = map[string]any{"subset": p.Subset, "ratio": p.Ratio}
	}
	return Step{Name: "split", Params: map[string]any{"parts": parts, "seed": s.seed}}
}
