package native

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/annoset/annotation"
	"github.com/hupe1980/annoset/category"
	"github.com/hupe1980/annoset/dataset"
	"github.com/hupe1980/annoset/media"
)

func encodeCategories(reg *category.Registry) categoriesDoc {
	labels := reg.Labels()
	out := categoriesDoc{Label: labelCategoriesDoc{
		Labels:     make([]labelDoc, 0, labels.Len()),
		Attributes: labels.Attributes,
	}}
	for _, l := range labels.All() {
		out.Label.Labels = append(out.Label.Labels, labelDoc{Name: l.Name, Parent: l.Parent, Attributes: l.Attributes})
	}
	if reg == nil {
		return out
	}
	for _, id := range reg.Points.Labels() {
		pc, _ := reg.Points.Get(id)
		out.Points = append(out.Points, pointsCategoryDoc{LabelID: id, Labels: pc.Labels, Joints: pc.Joints})
	}
	for _, id := range reg.Mask.Labels() {
		hex, _ := reg.Mask.Hex(id)
		out.Mask = append(out.Mask, maskCategoryDoc{LabelID: id, Color: hex})
	}
	return out
}

func decodeCategories(doc categoriesDoc) (*category.Registry, error) {
	labels := category.NewLabelCategories()
	labels.Attributes = doc.Label.Attributes
	for _, l := range doc.Label.Labels {
		if _, err := labels.Add(l.Name, l.Parent, l.Attributes...); err != nil {
			return nil, err
		}
	}
	reg := &category.Registry{Label: labels}
	if len(doc.Points) > 0 {
		reg.Points = category.NewPointsCategories()
		for _, p := range doc.Points {
			reg.Points.Add(p.LabelID, p.Labels, p.Joints)
		}
	}
	if len(doc.Mask) > 0 {
		reg.Mask = category.NewMaskCategories()
		for _, m := range doc.Mask {
			if err := reg.Mask.SetHex(m.LabelID, m.Color); err != nil {
				return nil, fmt.Errorf("mask color of label %d: %w", m.LabelID, err)
			}
		}
	}
	return reg, nil
}

func encodeMedia(d *media.Descriptor) *mediaDoc {
	if d == nil {
		return nil
	}
	out := &mediaDoc{Kind: d.Kind.String(), Path: d.Path, Frame: d.Frame, Related: d.Related}
	if d.Size != nil {
		out.Width, out.Height = d.Size.Width, d.Size.Height
	}
	return out
}

func decodeMedia(doc *mediaDoc) (*media.Descriptor, error) {
	if doc == nil {
		return nil, nil
	}
	kind, ok := media.ParseKind(doc.Kind)
	if !ok {
		return nil, fmt.Errorf("unknown media kind %q", doc.Kind)
	}
	d := &media.Descriptor{Kind: kind, Path: doc.Path, Frame: doc.Frame, Related: doc.Related}
	if doc.Width > 0 || doc.Height > 0 {
		d.Size = &media.Size{Width: doc.Width, Height: doc.Height}
	}
	return d, nil
}

func encodeItem(it *dataset.Item) itemDoc {
	out := itemDoc{
		ID:          it.ID,
		Media:       encodeMedia(it.Media),
		Attributes:  it.Attributes,
		Annotations: make([]annotationDoc, 0, len(it.Annotations)),
	}
	for _, a := range it.Annotations {
		out.Annotations = append(out.Annotations, encodeAnnotation(a))
	}
	return out
}

func encodeAnnotation(a *annotation.Annotation) annotationDoc {
	out := annotationDoc{
		ID:         a.ID,
		Type:       a.Kind().String(),
		Group:      a.Group,
		ZOrder:     a.ZOrder,
		Attributes: a.Attributes,
	}
	if a.HasLabel() {
		label := a.Label
		out.LabelID = &label
	}
	switch s := a.Shape.(type) {
	case annotation.Bbox:
		out.Bbox = []float64{s.X, s.Y, s.W, s.H}
	case annotation.Polygon:
		out.Points = s.Points
	case annotation.PolyLine:
		out.Points = s.Points
	case annotation.Points:
		out.Points = s.Points
		if len(s.Visibility) > 0 {
			out.Visibility = make([]int, len(s.Visibility))
			for i, v := range s.Visibility {
				out.Visibility[i] = int(v)
			}
		}
	case annotation.Mask:
		out.Mask = encodeMask(s)
	case annotation.Cuboid3D:
		out.Position, out.Rotation, out.Scale = &s.Position, &s.Rotation, &s.Scale
	case annotation.Caption:
		out.Caption = &s.Text
	}
	return out
}

func decodeAnnotation(doc annotationDoc, labels int) (*annotation.Annotation, error) {
	kind, ok := annotation.ParseKind(doc.Type)
	if !ok {
		return nil, fmt.Errorf("unknown annotation type %q", doc.Type)
	}
	var shape annotation.Shape
	switch kind {
	case annotation.KindLabel:
		shape = annotation.Label{}
	case annotation.KindBbox:
		if len(doc.Bbox) != 4 {
			return nil, fmt.Errorf("bbox needs 4 values, got %d", len(doc.Bbox))
		}
		shape = annotation.Bbox{X: doc.Bbox[0], Y: doc.Bbox[1], W: doc.Bbox[2], H: doc.Bbox[3]}
	case annotation.KindPolygon:
		shape = annotation.Polygon{Points: doc.Points}
	case annotation.KindPolyLine:
		shape = annotation.PolyLine{Points: doc.Points}
	case annotation.KindPoints:
		p := annotation.Points{Points: doc.Points}
		if len(doc.Visibility) > 0 {
			p.Visibility = make([]annotation.Visibility, len(doc.Visibility))
			for i, v := range doc.Visibility {
				if v < int(annotation.VisibilityAbsent) || v > int(annotation.VisibilityVisible) {
					return nil, fmt.Errorf("invalid visibility %d", v)
				}
				p.Visibility[i] = annotation.Visibility(v)
			}
		}
		shape = p
	case annotation.KindMask:
		if doc.Mask == nil {
			return nil, fmt.Errorf("mask without data")
		}
		m, err := decodeMask(doc.Mask)
		if err != nil {
			return nil, err
		}
		shape = m
	case annotation.KindCuboid3D:
		var c annotation.Cuboid3D
		if doc.Position != nil {
			c.Position = *doc.Position
		}
		if doc.Rotation != nil {
			c.Rotation = *doc.Rotation
		}
		if doc.Scale != nil {
			c.Scale = *doc.Scale
		}
		shape = c
	case annotation.KindCaption:
		var text string
		if doc.Caption != nil {
			text = *doc.Caption
		}
		shape = annotation.Caption{Text: text}
	}

	a := annotation.New(shape,
		annotation.WithID(doc.ID),
		annotation.WithGroup(doc.Group),
		annotation.WithZOrder(doc.ZOrder),
		annotation.WithAttributes(doc.Attributes),
	)
	if doc.LabelID != nil {
		if *doc.LabelID < 0 || *doc.LabelID >= labels {
			return nil, fmt.Errorf("label %d out of range [0, %d)", *doc.LabelID, labels)
		}
		a.Label = *doc.LabelID
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

func encodeMask(m annotation.Mask) *maskDoc {
	total := uint32(m.Width * m.Height)
	out := &maskDoc{Width: m.Width, Height: m.Height, Counts: []uint32{}}
	var pos, run uint32
	if m.Pixels != nil {
		it := m.Pixels.Iterator()
		for it.HasNext() {
			p := it.Next()
			if p >= total {
				break
			}
			if run > 0 && p == pos {
				run++
				pos++
				continue
			}
			if run > 0 {
				out.Counts = append(out.Counts, run)
			}
			out.Counts = append(out.Counts, p-pos)
			run, pos = 1, p+1
		}
	}
	if run > 0 {
		out.Counts = append(out.Counts, run)
	}
	if pos < total {
		out.Counts = append(out.Counts, total-pos)
	}
	return out
}

func decodeMask(doc *maskDoc) (annotation.Mask, error) {
	if doc.Width < 0 || doc.Height < 0 {
		return annotation.Mask{}, fmt.Errorf("negative mask size")
	}
	total := uint64(doc.Width) * uint64(doc.Height)
	bm := roaring.New()
	var pos uint64
	for i, n := range doc.Counts {
		end := pos + uint64(n)
		if end > total {
			return annotation.Mask{}, fmt.Errorf("mask runs exceed %dx%d", doc.Width, doc.Height)
		}
		if i%2 == 1 && n > 0 {
			bm.AddRange(pos, end)
		}
		pos = end
	}
	return annotation.Mask{Width: doc.Width, Height: doc.Height, Pixels: bm}, nil
}
