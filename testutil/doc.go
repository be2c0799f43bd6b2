// Package testutil provides testing utilities for senfile.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating deterministic sensor descriptors and
// random readings.
//
// # Random Readings
//
//	rng := testutil.NewRNG(seed)
//	r := rng.Reading(ts, []string{"range", "signal"}, 64)
//
// # Sensor Descriptors
//
//	infos := testutil.Sensors(2)
package testutil
