// Package attr provides the typed attribute values attached to dataset items
// and annotations.
//
// Attribute maps are open (any string key) but their values are a small
// closed variant so that format plugins have a precise contract for what
// they must (de)serialize:
//
//   - Null: attr.Null()
//   - Int: attr.Int(3)
//   - Float: attr.Float(0.25)
//   - String: attr.String("occluded")
//   - Bool: attr.Bool(true)
//   - Array: attr.Array(attr.Int(1), attr.Float(2.5))
//
// Example:
//
//	attrs := attr.Map{
//	    "occluded": attr.Bool(true),
//	    "frame":    attr.Int(42),
//	}
//
// Values compare numerically across Int and Float, so a value written as 2
// and read back as 2.0 is still equal. Maps marshal to plain JSON objects.
//
// # Schemas
//
// A Schema restricts the kinds allowed for named attributes. The category
// registry uses it for per-label attribute vocabularies.
package attr
