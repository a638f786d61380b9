// Package journal records every executed move run in SQLite.
//
// A run row carries the run id, data set, roots, timestamps and outcome
// counts; one entry row per planned file records its source, destination and
// outcome (moved, failed or cancelled) with the failure reason. The journal is
// an audit trail: nothing reads it back to drive a move.
//
// Schema changes bump schemaVersion in schema.go; users delete journal.db to
// adopt the new schema.
package journal
