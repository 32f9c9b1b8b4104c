// Package benchmark contains cross-package benchmarks for the
// leaderboard registry: ranking, snapshot codec and sealing.
//
// Run with:
//
//	go test -bench=. -benchmem ./internal/tests/benchmark/
package benchmark
