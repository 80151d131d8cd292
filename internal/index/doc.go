// Package index implements the news sentiment index construction and
// smoothing engine: filtering classified headline batches, per-day sentiment
// aggregation, calendar resampling with history-aware gap filling, incremental
// append semantics and the smoothed/detrended index transform.
//
// The package owns no I/O. Batches arrive through the BatchSource interface
// and the persisted series moves through the Store interface, so the engine
// stays testable with fixed clocks and in-memory collaborators.
package index
