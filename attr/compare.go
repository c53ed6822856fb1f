package attr

import "strings"

// Operator represents a comparison operator.
type Operator string

const (
	// OpEqual represents the equality operator.
	OpEqual Operator = "="
	// OpNotEqual represents the inequality operator.
	OpNotEqual Operator = "!="
	// OpLessThan represents the less than operator.
	OpLessThan Operator = "<"
	// OpLessEqual represents the less than or equal operator.
	OpLessEqual Operator = "<="
	// OpGreaterThan represents the greater than operator.
	OpGreaterThan Operator = ">"
	// OpGreaterEqual represents the greater than or equal operator.
	OpGreaterEqual Operator = ">="
	// OpIn represents the in list operator.
	OpIn Operator = "in"
	// OpContains represents the contains substring operator.
	OpContains Operator = "contains"
)

// Compare applies op to a and b.
//
// Ordering operators are only defined for numbers; they return false for any
// other kinds. Equality compares numbers numerically across Int and Float.
func Compare(a Value, op Operator, b Value) bool {
	switch op {
	case OpEqual:
		return compareEqual(a, b)
	case OpNotEqual:
		return !compareEqual(a, b)
	case OpGreaterThan:
		return compareGreater(a, b)
	case OpGreaterEqual:
		return compareGreater(a, b) || compareEqual(a, b)
	case OpLessThan:
		return compareLess(a, b)
	case OpLessEqual:
		return compareLess(a, b) || compareEqual(a, b)
	case OpIn:
		return compareIn(a, b)
	case OpContains:
		return compareContains(a, b)
	default:
		return false
	}
}

func compareEqual(a, b Value) bool {
	if a.Kind == KindNull && b.Kind == KindNull {
		return true
	}
	if a.Kind == KindNull || b.Kind == KindNull {
		return false
	}
	return a.Equal(b, 0)
}

func compareGreater(a, b Value) bool {
	x, ok1 := a.AsFloat64()
	y, ok2 := b.AsFloat64()
	return ok1 && ok2 && x > y
}

func compareLess(a, b Value) bool {
	x, ok1 := a.AsFloat64()
	y, ok2 := b.AsFloat64()
	return ok1 && ok2 && x < y
}

func compareIn(a, b Value) bool {
	if b.Kind != KindArray {
		return false
	}
	for _, item := range b.A {
		if compareEqual(a, item) {
			return true
		}
	}
	return false
}

func compareContains(a, b Value) bool {
	if a.Kind != KindString || b.Kind != KindString {
		return false
	}
	return strings.Contains(a.s.Value(), b.s.Value())
}
