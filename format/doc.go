// Package format defines the contract between datasets and their on-disk
// representations.
//
// A Format pairs an Extractor, which parses a dataset out of a
// blobstore.Store, with an Exporter, which writes one. Built-in formats
// live in subpackages and register themselves with the Default registry
// when imported:
//
//	import _ "github.com/hupe1980/annoset/format/native"
//
//	f, err := format.Default().Lookup("native")
//	ds, warnings, err := f.Extract(ctx, store, format.Options{})
//
// Extractors never fail on a single malformed record. They skip it and
// report a Warning. Only an unreadable container yields a *FormatError.
// Exporters are deterministic: the same dataset always produces the same
// bytes.
package format
