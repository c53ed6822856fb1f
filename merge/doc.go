// Package merge reconciles several datasets into one.
//
// Label vocabularies are unified first: names are collected in first-seen
// order across sources (after an optional caller mapping) and every source
// is relabelled into the merged registry. Items are then matched by id and
// subset. Items present in a single source pass through; for shared items
// the annotations of all sources are clustered greedily by similarity
// (IoU for regions, OKS for keypoints, a Gaussian of the pose distance
// for cuboids), highest pair first, with at most one annotation per
// source in a cluster.
//
// Each cluster is emitted according to the Policy and every cluster that
// did not reach full agreement is recorded in the Report. Shared items
// are merged in parallel; the registry is fixed before that phase starts.
package merge
