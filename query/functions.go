package query

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

type function struct {
	minArgs int
	maxArgs int // -1 for variadic
	call    func(c *evalContext, args []value) value
}

func (f *function) arity() string {
	switch {
	case f.minArgs == f.maxArgs:
		return fmt.Sprintf("%d arguments", f.minArgs)
	case f.maxArgs < 0:
		return fmt.Sprintf("at least %d arguments", f.minArgs)
	default:
		return fmt.Sprintf("%d to %d arguments", f.minArgs, f.maxArgs)
	}
}

// argOrContext returns the single argument, or the context node when the
// call has none.
func argOrContext(c *evalContext, args []value) value {
	if len(args) > 0 {
		return args[0]
	}
	return nodesValue([]*node{c.node})
}

var functions map[string]*function

func init() {
	functions = map[string]*function{
		"not": {1, 1, func(_ *evalContext, a []value) value {
			return boolValue(!a[0].toBool())
		}},
		"true":    {0, 0, func(*evalContext, []value) value { return boolValue(true) }},
		"false":   {0, 0, func(*evalContext, []value) value { return boolValue(false) }},
		"boolean": {1, 1, func(_ *evalContext, a []value) value { return boolValue(a[0].toBool()) }},
		"number": {0, 1, func(c *evalContext, a []value) value {
			return numberValue(argOrContext(c, a).toNumber())
		}},
		"string": {0, 1, func(c *evalContext, a []value) value {
			return stringValue(argOrContext(c, a).toString())
		}},
		"count": {1, 1, func(_ *evalContext, a []value) value {
			if a[0].kind != kindNodes {
				return numberValue(math.NaN())
			}
			return numberValue(float64(len(a[0].nodes)))
		}},
		"sum": {1, 1, func(_ *evalContext, a []value) value {
			if a[0].kind != kindNodes {
				return numberValue(math.NaN())
			}
			var s float64
			for _, n := range a[0].nodes {
				s += parseNumber(n.stringValue())
			}
			return numberValue(s)
		}},
		"position": {0, 0, func(c *evalContext, _ []value) value { return numberValue(float64(c.pos)) }},
		"last":     {0, 0, func(c *evalContext, _ []value) value { return numberValue(float64(c.size)) }},
		"name": {0, 1, func(c *evalContext, a []value) value {
			v := argOrContext(c, a)
			if v.kind != kindNodes || len(v.nodes) == 0 {
				return stringValue("")
			}
			return stringValue(v.nodes[0].name)
		}},
		"contains": {2, 2, func(_ *evalContext, a []value) value {
			return boolValue(strings.Contains(a[0].toString(), a[1].toString()))
		}},
		"starts-with": {2, 2, func(_ *evalContext, a []value) value {
			return boolValue(strings.HasPrefix(a[0].toString(), a[1].toString()))
		}},
		"ends-with": {2, 2, func(_ *evalContext, a []value) value {
			return boolValue(strings.HasSuffix(a[0].toString(), a[1].toString()))
		}},
		"string-length": {0, 1, func(c *evalContext, a []value) value {
			return numberValue(float64(utf8.RuneCountInString(argOrContext(c, a).toString())))
		}},
		"concat": {2, -1, func(_ *evalContext, a []value) value {
			var sb strings.Builder
			for _, v := range a {
				sb.WriteString(v.toString())
			}
			return stringValue(sb.String())
		}},
		"floor":   {1, 1, func(_ *evalContext, a []value) value { return numberValue(math.Floor(a[0].toNumber())) }},
		"ceiling": {1, 1, func(_ *evalContext, a []value) value { return numberValue(math.Ceil(a[0].toNumber())) }},
		"round": {1, 1, func(_ *evalContext, a []value) value {
			return numberValue(math.Floor(a[0].toNumber() + 0.5))
		}},
	}
}
