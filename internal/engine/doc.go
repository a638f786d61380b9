// Package engine is the entry point callers use to drive scans, consistency
// checks, move planning and move execution.
//
// An Engine binds one validated configuration to the core packages:
// scanner for listing and parsing, dataset for consistency, hierarchy for
// planning and mover for execution. ExecuteMove additionally runs preflight
// checks, records the run in the journal when one is attached and prunes
// emptied source directories when configured to.
//
// Every operation stamps its context with a fresh run id so log lines from
// one scan or move can be correlated. The tag set is snapshotted when the
// Engine is built and is read-only for its lifetime.
package engine
