package query

import (
	"math"
	"strconv"
	"strings"

	"github.com/hupe1980/annoset/attr"
)

type valueKind uint8

const (
	kindNodes valueKind = iota
	kindNumber
	kindString
	kindBool
)

// value is the result of evaluating an expression: a node-set, a number,
// a string or a boolean.
type value struct {
	kind  valueKind
	nodes []*node
	num   float64
	str   string
	b     bool
}

func nodesValue(nodes []*node) value { return value{kind: kindNodes, nodes: nodes} }
func numberValue(f float64) value    { return value{kind: kindNumber, num: f} }
func stringValue(s string) value     { return value{kind: kindString, str: s} }
func boolValue(b bool) value         { return value{kind: kindBool, b: b} }

func (v value) toBool() bool {
	switch v.kind {
	case kindNodes:
		return len(v.nodes) > 0
	case kindNumber:
		return v.num != 0 && !math.IsNaN(v.num)
	case kindString:
		return v.str != ""
	default:
		return v.b
	}
}

func (v value) toString() string {
	switch v.kind {
	case kindNodes:
		if len(v.nodes) == 0 {
			return ""
		}
		return v.nodes[0].stringValue()
	case kindNumber:
		return formatNumber(v.num)
	case kindString:
		return v.str
	default:
		return strconv.FormatBool(v.b)
	}
}

func (v value) toNumber() float64 {
	switch v.kind {
	case kindNumber:
		return v.num
	case kindBool:
		if v.b {
			return 1
		}
		return 0
	default:
		return parseNumber(v.toString())
	}
}

func parseNumber(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == math.Trunc(f) && math.Abs(f) < 1e15:
		return strconv.FormatInt(int64(f), 10)
	default:
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
}

// compare applies op with node-set semantics: a comparison involving a
// node-set holds if it holds for at least one node.
func compare(op attr.Operator, a, b value) bool {
	switch {
	case a.kind == kindNodes && b.kind == kindNodes:
		for _, x := range a.nodes {
			for _, y := range b.nodes {
				if compareAtoms(op, stringValue(x.stringValue()), stringValue(y.stringValue())) {
					return true
				}
			}
		}
		return false
	case a.kind == kindNodes:
		if b.kind == kindBool {
			return compareAtoms(op, boolValue(a.toBool()), b)
		}
		for _, x := range a.nodes {
			if compareAtoms(op, atomize(x, b.kind), b) {
				return true
			}
		}
		return false
	case b.kind == kindNodes:
		if a.kind == kindBool {
			return compareAtoms(op, a, boolValue(b.toBool()))
		}
		for _, y := range b.nodes {
			if compareAtoms(op, a, atomize(y, a.kind)) {
				return true
			}
		}
		return false
	default:
		return compareAtoms(op, a, b)
	}
}

func atomize(n *node, kind valueKind) value {
	if kind == kindNumber {
		return numberValue(parseNumber(n.stringValue()))
	}
	return stringValue(n.stringValue())
}

// compareAtoms compares two scalar values. Equality picks the strongest
// common type (boolean, then number, then string); ordering is numeric.
func compareAtoms(op attr.Operator, a, b value) bool {
	if op == attr.OpEqual || op == attr.OpNotEqual {
		switch {
		case a.kind == kindBool || b.kind == kindBool:
			return attr.Compare(attr.Bool(a.toBool()), op, attr.Bool(b.toBool()))
		case a.kind == kindNumber || b.kind == kindNumber:
			x, y := a.toNumber(), b.toNumber()
			if math.IsNaN(x) || math.IsNaN(y) {
				return op == attr.OpNotEqual
			}
			return attr.Compare(attr.Float(x), op, attr.Float(y))
		default:
			return attr.Compare(attr.String(a.toString()), op, attr.String(b.toString()))
		}
	}
	return attr.Compare(attr.Float(a.toNumber()), op, attr.Float(b.toNumber()))
}
