package dataset

import (
	"fmt"
	"slices"

	"github.com/hupe1980/annoset/annotation"
	"github.com/hupe1980/annoset/category"
	"github.com/hupe1980/annoset/media"
)

type compareOptions struct {
	tolerance        float64
	strict           bool
	ignoreMedia      bool
	ignoreAnnAttrs   bool
	itemAttributes   bool
	compareCatalogue bool
}

// CompareOption configures Compare.
type CompareOption func(*compareOptions)

// Tolerance sets the absolute tolerance on coordinates and float
// attributes. Default 1e-6.
func Tolerance(eps float64) CompareOption {
	return func(o *compareOptions) { o.tolerance = eps }
}

// Strict makes annotation order and annotation ids significant.
func Strict() CompareOption {
	return func(o *compareOptions) { o.strict = true }
}

// IgnoreMedia skips the media dimension check.
func IgnoreMedia() CompareOption {
	return func(o *compareOptions) { o.ignoreMedia = true }
}

// IgnoreAnnotationAttributes skips annotation attribute maps, for formats
// that cannot store them.
func IgnoreAnnotationAttributes() CompareOption {
	return func(o *compareOptions) { o.ignoreAnnAttrs = true }
}

// CompareItemAttributes includes item attribute maps.
func CompareItemAttributes() CompareOption {
	return func(o *compareOptions) { o.itemAttributes = true }
}

// CompareCategories requires identical label name lists.
func CompareCategories() CompareOption {
	return func(o *compareOptions) { o.compareCatalogue = true }
}

// Difference is one reason two datasets are not equal.
type Difference struct {
	Key     Key
	Message string
}

func (d Difference) String() string {
	if d.Key == (Key{}) {
		return d.Message
	}
	return d.Key.String() + ": " + d.Message
}

// Compare lists the differences between two sources. Labels are compared
// by name through each source's registry, so datasets with differently
// ordered registries can still be equal. Annotations form a multiset:
// order and ids are ignored unless Strict is given.
func Compare(a, b Source, opts ...CompareOption) []Difference {
	o := compareOptions{tolerance: annotation.DefaultTolerance}
	for _, fn := range opts {
		fn(&o)
	}

	var diffs []Difference
	if o.compareCatalogue && !slices.Equal(a.Categories().Labels().Names(), b.Categories().Labels().Names()) {
		diffs = append(diffs, Difference{Message: fmt.Sprintf("label categories differ: %v vs %v",
			a.Categories().Labels().Names(), b.Categories().Labels().Names())})
	}

	left := collect(a)
	right := collect(b)

	keys := make([]Key, 0, len(left.index))
	for k := range left.index {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, Key.Compare)

	for _, k := range keys {
		rit, ok := right.index[k]
		if !ok {
			diffs = append(diffs, Difference{Key: k, Message: "missing in second dataset"})
			continue
		}
		diffs = append(diffs, compareItems(left.index[k], a.Categories(), rit, b.Categories(), o)...)
	}

	var extra []Key
	for k := range right.index {
		if _, ok := left.index[k]; !ok {
			extra = append(extra, k)
		}
	}
	slices.SortFunc(extra, Key.Compare)
	for _, k := range extra {
		diffs = append(diffs, Difference{Key: k, Message: "missing in first dataset"})
	}
	return diffs
}

// Equal reports whether Compare finds no difference.
func Equal(a, b Source, opts ...CompareOption) bool {
	return len(Compare(a, b, opts...)) == 0
}

type collected struct {
	index map[Key]*Item
}

func collect(src Source) collected {
	c := collected{index: make(map[Key]*Item)}
	for it := range src.Items() {
		c.index[it.Key()] = it
	}
	return c
}

func compareItems(a *Item, ca *category.Registry, b *Item, cb *category.Registry, o compareOptions) []Difference {
	k := a.Key()
	var diffs []Difference

	if !o.ignoreMedia && !media.SameSize(a.Media, b.Media) {
		diffs = append(diffs, Difference{Key: k, Message: fmt.Sprintf("media size %s vs %s", sizeString(a), sizeString(b))})
	}
	if o.itemAttributes && !a.Attributes.Equal(b.Attributes, o.tolerance) {
		diffs = append(diffs, Difference{Key: k, Message: "item attributes differ"})
	}
	if len(a.Annotations) != len(b.Annotations) {
		return append(diffs, Difference{Key: k, Message: fmt.Sprintf("%d vs %d annotations", len(a.Annotations), len(b.Annotations))})
	}

	eq := annotation.EqualOptions{
		Tolerance:      o.tolerance,
		CompareID:      o.strict,
		SkipLabel:      true,
		SkipAttributes: o.ignoreAnnAttrs,
	}
	same := func(x, y *annotation.Annotation) bool {
		return labelName(ca, x) == labelName(cb, y) && annotation.Equal(x, y, eq)
	}

	if o.strict {
		for i := range a.Annotations {
			if !same(a.Annotations[i], b.Annotations[i]) {
				diffs = append(diffs, Difference{Key: k, Message: fmt.Sprintf("annotation %d: %s vs %s", i, a.Annotations[i], b.Annotations[i])})
			}
		}
		return diffs
	}

	used := make([]bool, len(b.Annotations))
	for _, x := range a.Annotations {
		found := false
		for j, y := range b.Annotations {
			if !used[j] && same(x, y) {
				used[j] = true
				found = true
				break
			}
		}
		if !found {
			diffs = append(diffs, Difference{Key: k, Message: fmt.Sprintf("no match for %s (label %q)", x, labelName(ca, x))})
		}
	}
	return diffs
}

func labelName(cats *category.Registry, a *annotation.Annotation) string {
	if !a.HasLabel() {
		return ""
	}
	if name, ok := cats.LabelName(a.Label); ok {
		return name
	}
	return fmt.Sprintf("#%d", a.Label)
}

func sizeString(it *Item) string {
	w, h, ok := it.Size()
	if !ok {
		return "unknown"
	}
	return fmt.Sprintf("%dx%d", w, h)
}
