package attr

import "testing"

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		a    Value
		op   Operator
		b    Value
		want bool
	}{
		{"equal string", String("tech"), OpEqual, String("tech"), true},
		{"equal string no match", String("tech"), OpEqual, String("sports"), false},
		{"equal int float", Int(10), OpEqual, Float(10), true},
		{"not equal", String("active"), OpNotEqual, String("inactive"), true},
		{"greater", Int(75), OpGreaterThan, Int(50), true},
		{"greater false", Int(25), OpGreaterThan, Int(50), false},
		{"greater equal boundary", Float(0.5), OpGreaterEqual, Float(0.5), true},
		{"less", Int(75), OpLessThan, Int(100), true},
		{"less equal", Int(10), OpLessEqual, Int(10), true},
		{"ordering on strings is false", String("b"), OpGreaterThan, String("a"), false},
		{"in", String("blue"), OpIn, Array(String("red"), String("blue")), true},
		{"in non array", String("blue"), OpIn, String("blue"), false},
		{"contains", String("label_2"), OpContains, String("_2"), true},
		{"null equal null", Null(), OpEqual, Null(), true},
		{"null not equal value", Null(), OpEqual, Int(0), false},
		{"unknown operator", Int(1), Operator("~"), Int(1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compare(tt.a, tt.op, tt.b); got != tt.want {
				t.Errorf("Compare(%s, %s, %s) = %v, want %v", tt.a.Key(), tt.op, tt.b.Key(), got, tt.want)
			}
		})
	}
}
