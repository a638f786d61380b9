// Package mover executes a move plan entry by entry.
//
// Every entry is independent: a failure is recorded against its own source
// and destination and processing continues with the next entry. Nothing is
// rolled back. Cancellation is checked between entries, never inside one, so
// a file is either fully relocated or untouched; entries not yet attempted
// when the context ends are reported as cancelled.
//
// Destinations are never overwritten. On Linux the rename uses
// renameat2(RENAME_NOREPLACE); elsewhere, and on filesystems that reject the
// flag, an existence check precedes a plain rename. When source and target
// live on different filesystems the file is copied, verified by size and
// SHA-256, and only then removed from the source.
//
// An optional flock on a per-target lock file keeps two movers from writing
// into the same target root at once.
package mover
