// Package query compiles XPath-style expressions into predicates over a
// projected item tree.
//
// Each item is seen as an element tree:
//
//	item
//	├── id, subset
//	├── image (width, height, path, frame, kind)
//	├── attributes/<name>
//	└── annotation*
//	    ├── id, type, label, label_id, group, z_order
//	    ├── x, y, w, h, area (bounds of geometric shapes)
//	    ├── points, points_count, caption, visible
//	    └── attributes/<name>
//
// A query such as
//
//	/item/annotation[label='cat' and w * h > 100]
//
// matches an item when it selects at least one node, and selects the
// annotations that contain a selected node. Compiled queries are
// immutable and safe for concurrent use.
package query
