// Package testutil provides deterministic fixtures for writer tests.
//
// This package is intended for use in tests only.
//
//	rng := testutil.NewRNG(seed)
//	batch := rng.Batch([]string{"m1"}, []string{"ref", "alt"}, 32)
//	tbl := testutil.Table([]string{"lo", "hi"}, 3, 1)
package testutil
