// Package native implements the lossless annoset format.
//
// A dataset is stored as one JSON document per subset under
// annotations/<subset>.json, optionally compressed with zstd (.json.zst)
// or lz4 (.json.lz4). Every document carries the full category registry
// so that a subset can be read on its own. Saved images go to
// images/<subset>/<id><ext>.
//
// Importing the package registers the format under the name "native".
package native
