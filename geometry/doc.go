// Package geometry computes overlap and distance similarities between
// annotation shapes.
//
// Boxes use the closed-form axis-aligned IoU. Polygons are rasterized into
// Roaring bitmaps over a shared frame (golang.org/x/image/vector does the
// scan conversion) so that polygon and mask IoU reduce to bitmap
// cardinalities. Keypoints use Object Keypoint Similarity and cuboids a
// Gaussian of the center distance; both are configurable through Params.
package geometry
