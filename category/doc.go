// Package category holds the per-dataset label vocabularies.
//
// A Registry groups the label list shared by all annotation kinds with the
// optional keypoint topology (PointsCategories) and mask colour map
// (MaskCategories). The position of a name in LabelCategories is the
// integer label index stored on annotations, so the order is stable and
// only changes through an explicit remap.
package category
