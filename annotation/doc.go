// Package annotation defines the annotation model: a common envelope holding
// the shared fields (id, label, group, z-order, attributes) around a closed
// set of shape variants.
//
// # Shape Variants
//
//   - Label: image-level class label, no geometry
//   - Bbox: axis-aligned box (x, y, w, h) with w >= 0, h >= 0
//   - Polygon: closed polygon as a flat [x0, y0, x1, y1, ...] slice
//   - PolyLine: open polyline, same layout as Polygon
//   - Mask: pixel set backed by a Roaring bitmap
//   - Points: keypoints with per-point visibility
//   - Cuboid3D: position, rotation and scale in 3D
//   - Caption: free-form text
//
// Shape is sealed: only this package can add variants, so a type switch
// over the variants is exhaustive for serialization, matching and equality.
//
// # Units
//
// All coordinates are absolute pixels relative to the item's media. Format
// plugins convert to and from their own conventions at the boundary.
package annotation
