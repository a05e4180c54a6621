// Package testutil provides testing utilities for cubego.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating random tables and computing exact
// aggregates by full scan, as ground truth for index-backed queries.
//
// # Random Table Generation
//
//	rng := testutil.NewRNG(seed)
//	table := testutil.GenerateTable(rng, 10000,
//	    testutil.Categorical("channel", 4),
//	    testutil.Categorical("product", 64),
//	)
//
// # Exact Aggregation (Ground Truth)
//
//	want := testutil.ScanSum(table, "sales", preds)
package testutil
