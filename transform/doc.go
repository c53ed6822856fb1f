// Package transform provides lazy dataset transforms and pipelines of
// them.
//
// A Transform maps one dataset.Source to another without mutating its
// input. Most transforms are item-local and wrap the upstream iterator;
// PruneLabels and Split need one full pass, which runs on first use of
// the returned source.
//
// Pipelines can be recorded as a Definition (a list of named steps with
// parameters) and rebuilt from YAML or JSON through a Registry:
//
//	steps:
//	  - name: filter
//	    params: {expr: "/item/annotation[label='cat']", mode: i+a}
//	  - name: remap_labels
//	    params: {mapping: {cat: animal}, default: delete}
package transform
