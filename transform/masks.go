package transform

import (
	"github.com/hupe1980/annoset/annotation"
	"github.com/hupe1980/annoset/dataset"
	"github.com/hupe1980/annoset/geometry"
)

// shapesToMasks converts matching shapes of sized items into masks of the
// media size, keeping id, label, group, z-order and attributes. Items
// without known media size pass through unchanged.
func shapesToMasks(src dataset.Source, convert func(s annotation.Shape, w, h int) (annotation.Mask, bool)) dataset.Source {
	return dataset.MapItems(src, src.Categories(), func(it *dataset.Item) *dataset.Item {
		w, h, ok := it.Size()
		if !ok {
			return it
		}
		var out []*annotation.Annotation
		for i, a := range it.Annotations {
			m, ok := convert(a.Shape, w, h)
			if !ok {
				if out != nil {
					out = append(out, a)
				}
				continue
			}
			if out == nil {
				out = append(make([]*annotation.Annotation, 0, len(it.Annotations)), it.Annotations[:i]...)
			}
			c := *a
			c.Attributes = a.Attributes.Clone()
			c.Shape = m
			out = append(out, &c)
		}
		if out == nil {
			return it
		}
		return it.WithAnnotations(out)
	})
}

// BoxesToMasks turns bounding boxes into masks.
type BoxesToMasks struct{}

// Apply implements Transform.
func (BoxesToMasks) Apply(src dataset.Source) dataset.Source {
	return shapesToMasks(src, func(s annotation.Shape, w, h int) (annotation.Mask, bool) {
		b, ok := s.(annotation.Bbox)
		if !ok {
			return annotation.Mask{}, false
		}
		return geometry.BboxToMask(b, w, h), true
	})
}

// Step implements Describer.
func (BoxesToMasks) Step() Step {
	return Step{Name: "boxes_to_masks"}
}

// PolygonsToMasks rasterizes polygons into masks.
type PolygonsToMasks struct{}

// Apply implements Transform.
func (PolygonsToMasks) Apply(src dataset.Source) dataset.Source {
	return shapesToMasks(src, func(s annotation.Shape, w, h int) (annotation.Mask, bool) {
		p, ok := s.(annotation.Polygon)
		if !ok {
			return annotation.Mask{}, false
		}
		return geometry.PolygonToMask(p.Points, w, h), true
	})
}

// Step implements Describer.
func (PolygonsToMasks) Step() Step {
	return Step{Name: "polygons_to_masks"}
}
