package query

import (
	"strconv"
	"strings"

	"github.com/hupe1980/annoset/annotation"
	"github.com/hupe1980/annoset/attr"
	"github.com/hupe1980/annoset/category"
	"github.com/hupe1980/annoset/dataset"
	"github.com/hupe1980/annoset/media"
)

// node is an element of the projected item tree.
type node struct {
	name     string
	text     string
	leaf     bool
	parent   *node
	children []*node
	order    int // document order
	ann      int // owning annotation index, -1 outside annotations
}

func (n *node) stringValue() string {
	if n.leaf {
		return n.text
	}
	var sb strings.Builder
	var walk func(*node)
	walk = func(m *node) {
		if m.leaf {
			sb.WriteString(m.text)
			return
		}
		for _, c := range m.children {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

type treeBuilder struct {
	next int
}

func (b *treeBuilder) element(parent *node, name string, ann int) *node {
	n := &node{name: name, parent: parent, order: b.next, ann: ann}
	b.next++
	if parent != nil {
		parent.children = append(parent.children, n)
	}
	return n
}

func (b *treeBuilder) leaf(parent *node, name, text string) {
	n := b.element(parent, name, parent.ann)
	n.leaf = true
	n.text = text
}

func (b *treeBuilder) intLeaf(parent *node, name string, v int) {
	b.leaf(parent, name, strconv.Itoa(v))
}

func (b *treeBuilder) floatLeaf(parent *node, name string, v float64) {
	b.leaf(parent, name, formatNumber(v))
}

// project builds the element tree for one item below a document root.
func project(it *dataset.Item, cats *category.Registry) (root, item *node) {
	b := &treeBuilder{}
	root = b.element(nil, "", -1)
	item = b.element(root, "item", -1)

	b.leaf(item, "id", it.ID)
	b.leaf(item, "subset", it.Subset)
	if it.Media != nil {
		b.media(item, it.Media)
	}
	if len(it.Attributes) > 0 {
		b.attributes(item, it.Attributes, -1)
	}
	labels := cats.Labels()
	for i, a := range it.Annotations {
		b.annotation(item, i, a, labels)
	}
	return root, item
}

func (b *treeBuilder) media(parent *node, d *media.Descriptor) {
	name := "image"
	if d.Kind == media.KindPointCloud {
		name = "point_cloud"
	}
	m := b.element(parent, name, -1)
	b.leaf(m, "kind", d.Kind.String())
	if d.Size != nil {
		b.intLeaf(m, "width", d.Size.Width)
		b.intLeaf(m, "height", d.Size.Height)
	}
	if d.Path != "" {
		b.leaf(m, "path", d.Path)
	}
	if d.Kind == media.KindVideoFrame {
		b.intLeaf(m, "frame", d.Frame)
	}
}

func (b *treeBuilder) attributes(parent *node, m attr.Map, ann int) {
	el := b.element(parent, "attributes", ann)
	for _, k := range m.Keys() {
		b.leaf(el, k, m[k].Text())
	}
}

func (b *treeBuilder) annotation(parent *node, idx int, a *annotation.Annotation, labels *category.LabelCategories) {
	el := b.element(parent, "annotation", idx)
	b.intLeaf(el, "id", a.ID)
	b.leaf(el, "type", a.Kind().String())
	if a.HasLabel() {
		if name, ok := labels.Name(a.Label); ok {
			b.leaf(el, "label", name)
		}
		b.intLeaf(el, "label_id", a.Label)
	}
	b.intLeaf(el, "group", a.Group)
	b.intLeaf(el, "z_order", a.ZOrder)

	if box, ok := annotation.Bounds(a.Shape); ok {
		b.floatLeaf(el, "x", box.X)
		b.floatLeaf(el, "y", box.Y)
		b.floatLeaf(el, "w", box.W)
		b.floatLeaf(el, "h", box.H)
		b.floatLeaf(el, "area", annotation.Area(a.Shape))
	}

	switch s := a.Shape.(type) {
	case annotation.Polygon:
		b.coords(el, s.Points)
	case annotation.PolyLine:
		b.coords(el, s.Points)
	case annotation.Points:
		b.coords(el, s.Points)
		visible := 0
		for i := 0; i < len(s.Points)/2; i++ {
			if s.Visible(i) {
				visible++
			}
		}
		b.intLeaf(el, "visible", visible)
	case annotation.Cuboid3D:
		b.leaf(el, "position", joinFloats(s.Position[:]))
		b.leaf(el, "rotation", joinFloats(s.Rotation[:]))
		b.leaf(el, "scale", joinFloats(s.Scale[:]))
	case annotation.Caption:
		b.leaf(el, "caption", s.Text)
	}

	if len(a.Attributes) > 0 {
		b.attributes(el, a.Attributes, idx)
	}
}

func (b *treeBuilder) coords(parent *node, points []float64) {
	b.leaf(parent, "points", joinFloats(points))
	b.intLeaf(parent, "points_count", len(points)/2)
}

func joinFloats(v []float64) string {
	parts := make([]string, len(v))
	for i, f := range v {
		parts[i] = formatNumber(f)
	}
	return strings.Join(parts, " ")
}
