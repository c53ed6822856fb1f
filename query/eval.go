package query

import (
	"math"
	"slices"
)

type evalContext struct {
	node *node
	pos  int // 1-based position in the current node list
	size int
}

func (e *literal) eval(*evalContext) value {
	return e.v
}

func (e *negExpr) eval(c *evalContext) value {
	return numberValue(-e.operand.eval(c).toNumber())
}

func (e *binaryExpr) eval(c *evalContext) value {
	switch e.op {
	case tokOr:
		return boolValue(e.left.eval(c).toBool() || e.right.eval(c).toBool())
	case tokAnd:
		return boolValue(e.left.eval(c).toBool() && e.right.eval(c).toBool())
	}

	l, r := e.left.eval(c), e.right.eval(c)
	if op, ok := comparison[e.op]; ok {
		return boolValue(compare(op, l, r))
	}

	x, y := l.toNumber(), r.toNumber()
	switch e.op {
	case tokPlus:
		return numberValue(x + y)
	case tokMinus:
		return numberValue(x - y)
	case tokMul:
		return numberValue(x * y)
	case tokDiv:
		return numberValue(x / y)
	case tokMod:
		return numberValue(math.Mod(x, y))
	default:
		return numberValue(math.NaN())
	}
}

func (e *unionExpr) eval(c *evalContext) value {
	l, r := e.left.eval(c), e.right.eval(c)
	if l.kind != kindNodes || r.kind != kindNodes {
		return nodesValue(nil)
	}
	return nodesValue(docOrder(append(slices.Clone(l.nodes), r.nodes...)))
}

func (e *funcCall) eval(c *evalContext) value {
	args := make([]value, len(e.args))
	for i, a := range e.args {
		args[i] = a.eval(c)
	}
	return e.fn.call(c, args)
}

func (e *filterExpr) eval(c *evalContext) value {
	v := e.primary.eval(c)
	if v.kind != kindNodes {
		return nodesValue(nil)
	}
	return nodesValue(applyPredicates(v.nodes, e.predicates))
}

func (e *pathExpr) eval(c *evalContext) value {
	var current []*node
	switch {
	case e.base != nil:
		v := e.base.eval(c)
		if v.kind != kindNodes {
			return nodesValue(nil)
		}
		current = v.nodes
	case e.absolute:
		root := c.node
		for root.parent != nil {
			root = root.parent
		}
		current = []*node{root}
	default:
		current = []*node{c.node}
	}

	for i := range e.steps {
		current = e.steps[i].apply(current)
		if len(current) == 0 {
			break
		}
	}
	return nodesValue(current)
}

func (s *step) apply(nodes []*node) []*node {
	var out []*node
	for _, n := range nodes {
		var candidates []*node
		switch s.axis {
		case axisChild:
			for _, ch := range n.children {
				if s.test(ch) {
					candidates = append(candidates, ch)
				}
			}
		case axisSelf:
			candidates = []*node{n}
		case axisParent:
			if n.parent != nil {
				candidates = []*node{n.parent}
			}
		case axisDescendantOrSelf:
			candidates = descendantsOrSelf(n, nil)
		}
		out = append(out, applyPredicates(candidates, s.predicates)...)
	}
	if len(nodes) > 1 || s.axis == axisParent {
		out = docOrder(out)
	}
	return out
}

func (s *step) test(n *node) bool {
	if s.anyNode {
		return true
	}
	return s.name == "*" || s.name == n.name
}

func applyPredicates(nodes []*node, preds []expr) []*node {
	for _, pred := range preds {
		kept := nodes[:0:0]
		for i, n := range nodes {
			v := pred.eval(&evalContext{node: n, pos: i + 1, size: len(nodes)})
			if v.kind == kindNumber {
				if v.num == float64(i+1) {
					kept = append(kept, n)
				}
				continue
			}
			if v.toBool() {
				kept = append(kept, n)
			}
		}
		nodes = kept
	}
	return nodes
}

func descendantsOrSelf(n *node, acc []*node) []*node {
	acc = append(acc, n)
	for _, c := range n.children {
		acc = descendantsOrSelf(c, acc)
	}
	return acc
}

// docOrder sorts nodes by document order and removes duplicates.
func docOrder(nodes []*node) []*node {
	slices.SortFunc(nodes, func(a, b *node) int { return a.order - b.order })
	return slices.CompactFunc(nodes, func(a, b *node) bool { return a == b })
}
