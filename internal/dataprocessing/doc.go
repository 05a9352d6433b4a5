// Package dataprocessing implements the survey transform pipeline: reading
// the raw NMG household workbook, cleaning it into household-level records
// with savings estimates, and aggregating those into yearly and decile-level
// summary tables.
//
// The pipeline is a pure function from the raw workbook to the output tables.
// Stages are single-threaded and run in one pass:
//
//	Loader    - reads the workbook, normalizes columns, sums income sources
//	RateTable - year-banded savings-rate proxy lookup, validated at startup
//	Cleaner   - completeness filter, savings estimate, per-year income deciles
//	Aggregator - baseline, yearly summaries, cumulative excess, decile summaries
//
// Re-running on identical input produces byte-identical outputs: record and
// summary ordering is deterministic everywhere, with ties broken by the
// original workbook row order.
package dataprocessing
