// Package testutil provides testing utilities for annoset.
//
// This package is intended for use in tests and benchmarks only.
// It provides seeded generators for shapes, annotations and whole
// datasets, and assertions over datasets.
//
// # Random Datasets
//
//	rng := testutil.NewRNG(seed)
//	ds := rng.Dataset(testutil.DatasetConfig{Items: 100, Labels: []string{"car", "person"}})
//
// # Assertions
//
//	testutil.RequireEqualDatasets(t, want, got)
package testutil
