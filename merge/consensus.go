package merge

import (
	"cmp"
	"maps"
	"slices"

	"github.com/hupe1980/annoset/annotation"
	"github.com/hupe1980/annoset/attr"
	"github.com/hupe1980/annoset/geometry"
)

// agreement classifies a cluster. An empty reason means full agreement.
func agreement(members []*annotation.Annotation, sources int, o *options) Reason {
	switch {
	case len(members) == 1:
		return ReasonUnmatched
	case len(members) < sources:
		return ReasonBelowQuorum
	}
	first := members[0]
	for _, m := range members[1:] {
		if !annotation.ShapeEqual(first.Shape, m.Shape, o.epsilon) {
			return ReasonGeometryMismatch
		}
	}
	for _, m := range members[1:] {
		if m.Label != first.Label {
			return ReasonLabelMismatch
		}
	}
	if _, ok := unionAttributes(members, o.epsilon); !ok {
		return ReasonAttributeMismatch
	}
	return ""
}

// unionAttributes merges member attributes. It reports false when two
// members hold different values for the same name.
func unionAttributes(members []*annotation.Annotation, tol float64) (attr.Map, bool) {
	var out attr.Map
	for _, m := range members {
		for k, v := range m.Attributes {
			if out == nil {
				out = make(attr.Map)
			}
			if prev, ok := out[k]; ok {
				if !prev.Equal(v, tol) {
					return nil, false
				}
				continue
			}
			out[k] = v
		}
	}
	return out, true
}

// consensus builds one annotation standing for the whole cluster. The
// result does not depend on member order.
func consensus(members []*annotation.Annotation, o *options) *annotation.Annotation {
	out := &annotation.Annotation{
		ID:     slices.MinFunc(members, func(a, b *annotation.Annotation) int { return cmp.Compare(a.ID, b.ID) }).ID,
		Label:  voteInt(members, func(a *annotation.Annotation) int { return a.Label }),
		Group:  voteInt(members, func(a *annotation.Annotation) int { return a.Group }),
		ZOrder: voteInt(members, func(a *annotation.Annotation) int { return a.ZOrder }),
		Shape:  consensusShape(members, o),
	}
	out.Attributes = voteAttributes(members)
	return out
}

func consensusShape(members []*annotation.Annotation, o *options) annotation.Shape {
	switch members[0].Shape.(type) {
	case annotation.Bbox:
		var x, y, w, h float64
		for _, m := range members {
			b := m.Shape.(annotation.Bbox)
			x, y, w, h = x+b.X, y+b.Y, w+b.W, h+b.H
		}
		n := float64(len(members))
		return annotation.Bbox{X: x / n, Y: y / n, W: w / n, H: h / n}
	case annotation.Cuboid3D:
		var c annotation.Cuboid3D
		for _, m := range members {
			s := m.Shape.(annotation.Cuboid3D)
			for i := range 3 {
				c.Position[i] += s.Position[i]
				c.Rotation[i] += s.Rotation[i]
				c.Scale[i] += s.Scale[i]
			}
		}
		n := float64(len(members))
		for i := range 3 {
			c.Position[i] /= n
			c.Rotation[i] /= n
			c.Scale[i] /= n
		}
		return c
	case annotation.Points:
		if p, ok := averagePoints(members); ok {
			return p
		}
	case annotation.Caption:
		texts := make([]string, len(members))
		for i, m := range members {
			texts[i] = m.Shape.(annotation.Caption).Text
		}
		return annotation.Caption{Text: vote(texts, cmp.Compare[string])}
	}
	return representative(members, o).Shape
}

// averagePoints averages coordinates of equally sized point sets. The
// visibility of each point is the highest among members.
func averagePoints(members []*annotation.Annotation) (annotation.Points, bool) {
	first := members[0].Shape.(annotation.Points)
	n := len(first.Points)
	out := annotation.Points{Points: make([]float64, n)}
	hasVis := false
	for _, m := range members {
		p := m.Shape.(annotation.Points)
		if len(p.Points) != n {
			return annotation.Points{}, false
		}
		hasVis = hasVis || len(p.Visibility) > 0
		for i, v := range p.Points {
			out.Points[i] += v
		}
	}
	for i := range out.Points {
		out.Points[i] /= float64(len(members))
	}
	if hasVis {
		out.Visibility = make([]annotation.Visibility, n/2)
		for _, m := range members {
			p := m.Shape.(annotation.Points)
			for i := range out.Visibility {
				v := annotation.VisibilityVisible
				if i < len(p.Visibility) {
					v = p.Visibility[i]
				}
				out.Visibility[i] = max(out.Visibility[i], v)
			}
		}
	}
	return out, true
}

// representative returns the member most similar to the others. Ties go
// to the smaller shape so that member order does not matter.
func representative(members []*annotation.Annotation, o *options) *annotation.Annotation {
	best, bestScore := -1, 0.0
	for i, a := range members {
		score := 0.0
		for j, b := range members {
			if i != j {
				score += geometry.Similarity(a.Shape, b.Shape, o.params)
			}
		}
		if best < 0 || score > bestScore || (score == bestScore && shapeOrder(a.Shape, members[best].Shape) < 0) {
			best, bestScore = i, score
		}
	}
	return members[best].Clone()
}

func shapeOrder(a, b annotation.Shape) int {
	switch x := a.(type) {
	case annotation.Polygon:
		return slices.Compare(x.Points, b.(annotation.Polygon).Points)
	case annotation.PolyLine:
		return slices.Compare(x.Points, b.(annotation.PolyLine).Points)
	case annotation.Points:
		return slices.Compare(x.Points, b.(annotation.Points).Points)
	case annotation.Mask:
		y := b.(annotation.Mask)
		if c := cmp.Compare(x.Area(), y.Area()); c != 0 {
			return c
		}
		return slices.Compare(maskPixels(x), maskPixels(y))
	}
	return 0
}

func maskPixels(m annotation.Mask) []uint32 {
	if m.Pixels == nil {
		return nil
	}
	return m.Pixels.ToArray()
}

// voteAttributes keeps, per name, the value most members agree on. Ties
// go to the value with the smallest key.
func voteAttributes(members []*annotation.Annotation) attr.Map {
	byName := make(map[string][]attr.Value)
	for _, m := range members {
		for k, v := range m.Attributes {
			byName[k] = append(byName[k], v)
		}
	}
	if len(byName) == 0 {
		return nil
	}
	out := make(attr.Map, len(byName))
	for _, name := range slices.Sorted(maps.Keys(byName)) {
		values := make(map[string]attr.Value)
		keys := make([]string, 0, len(byName[name]))
		for _, v := range byName[name] {
			k := v.Key()
			values[k] = v
			keys = append(keys, k)
		}
		out[name] = values[vote(keys, cmp.Compare[string])]
	}
	return out
}

func voteInt(members []*annotation.Annotation, field func(*annotation.Annotation) int) int {
	vals := make([]int, len(members))
	for i, m := range members {
		vals[i] = field(m)
	}
	return vote(vals, cmp.Compare[int])
}

// vote returns the most frequent value, the smallest one on ties.
func vote[T comparable](vals []T, compare func(a, b T) int) T {
	counts := make(map[T]int, len(vals))
	for _, v := range vals {
		counts[v]++
	}
	var best T
	bestN := 0
	for v, n := range counts {
		if n > bestN || (n == bestN && compare(v, best) < 0) {
			best, bestN = v, n
		}
	}
	return best
}
