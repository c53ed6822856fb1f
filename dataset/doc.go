// Package dataset implements the unified dataset model.
//
// A Dataset maps (id, subset) keys to Items in insertion order and owns one
// category.Registry. Items carry a media descriptor, an ordered list of
// annotations and free-form attributes.
//
// Mutations validate eagerly: Add and Put reject duplicate keys, label
// indices outside the registry and masks that do not match the media size
// with a *ValidationError, leaving the dataset untouched. Replacing the
// registry through SetCategories does not rewrite annotations; the dataset
// reports the resulting dangling references through Consistent and
// Validate until a label remap repairs it.
//
// Every Dataset is also a Source, the lazy interface transforms and the
// merger consume:
//
//	type Source interface {
//	    Categories() *category.Registry
//	    Items() iter.Seq[*Item]
//	}
//
// Views wrap an upstream sequence and compute items on demand; Materialize
// turns any Source back into a Dataset.
//
// Compare and Equal implement dataset equality: same item keys, same media
// sizes and, per item, the same annotation multiset with labels compared by
// name and geometry within a tolerance.
package dataset
