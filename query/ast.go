package query

import "github.com/hupe1980/annoset/attr"

// expr is a compiled expression node.
type expr interface {
	eval(c *evalContext) value
}

type literal struct {
	v value
}

type binaryExpr struct {
	op    tokenType
	left  expr
	right expr
}

type negExpr struct {
	operand expr
}

type unionExpr struct {
	left  expr
	right expr
}

type funcCall struct {
	name string
	fn   *function
	args []expr
}

// filterExpr applies predicates to the node-set of a primary expression,
// as in (//annotation)[1].
type filterExpr struct {
	primary    expr
	predicates []expr
}

type axis int

const (
	axisChild axis = iota
	axisSelf
	axisParent
	axisDescendantOrSelf
)

type step struct {
	axis       axis
	name       string // "*" matches any element
	anyNode    bool   // node() test, used for '//' expansion
	predicates []expr
}

// pathExpr is a location path, optionally rooted at a filter expression.
type pathExpr struct {
	absolute bool
	base     expr
	steps    []step
}

// comparison maps comparison tokens onto attribute operators.
var comparison = map[tokenType]attr.Operator{
	tokEq:  attr.OpEqual,
	tokNeq: attr.OpNotEqual,
	tokLt:  attr.OpLessThan,
	tokLte: attr.OpLessEqual,
	tokGt:  attr.OpGreaterThan,
	tokGte: attr.OpGreaterEqual,
}
