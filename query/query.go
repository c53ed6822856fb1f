package query

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/hupe1980/annoset/category"
	"github.com/hupe1980/annoset/dataset"
)

// Query is a compiled expression.
type Query struct {
	src  string
	root expr
}

// Compile parses expr. Errors are *SyntaxError values wrapping ErrSyntax.
func Compile(expr string) (*Query, error) {
	root, err := parse(expr)
	if err != nil {
		return nil, err
	}
	return &Query{src: expr, root: root}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(expr string) *Query {
	q, err := Compile(expr)
	if err != nil {
		panic(err)
	}
	return q
}

// String returns the source expression.
func (q *Query) String() string {
	return q.src
}

// Match is the outcome of evaluating a query against one item.
type Match struct {
	// Item reports whether the query selected anything.
	Item bool
	// Annotations holds the indices of selected annotations.
	Annotations *bitset.BitSet
}

// Eval evaluates the query against it. Label names are resolved through
// cats.
//
// An annotation is selected when the result contains the annotation node
// or one of its descendants. A result that contains the item node, or a
// non-node result that is true, selects every annotation.
func (q *Query) Eval(it *dataset.Item, cats *category.Registry) Match {
	root, item := project(it, cats)
	v := q.root.eval(&evalContext{node: root, pos: 1, size: 1})

	sel := bitset.New(uint(len(it.Annotations)))
	if v.kind != kindNodes {
		ok := v.toBool()
		if ok {
			selectAll(sel, len(it.Annotations))
		}
		return Match{Item: ok, Annotations: sel}
	}

	for _, n := range v.nodes {
		if n.ann >= 0 {
			sel.Set(uint(n.ann))
			continue
		}
		if n == item || n == root {
			selectAll(sel, len(it.Annotations))
			break
		}
	}
	return Match{Item: len(v.nodes) > 0, Annotations: sel}
}

// MatchItem reports whether the query selects anything in it.
func (q *Query) MatchItem(it *dataset.Item, cats *category.Registry) bool {
	return q.Eval(it, cats).Item
}

// SelectAnnotations returns the indices of the annotations of it selected
// by the query.
func (q *Query) SelectAnnotations(it *dataset.Item, cats *category.Registry) *bitset.BitSet {
	return q.Eval(it, cats).Annotations
}

func selectAll(sel *bitset.BitSet, n int) {
	for i := 0; i < n; i++ {
		sel.Set(uint(i))
	}
}
