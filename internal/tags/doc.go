// Package tags holds the ordered registry of tag definitions that describe
// how acquisition coordinates (channel, time point, z-slice, tile) are encoded
// in file names.
//
// Each definition pairs a unique name with the literal marker that precedes
// the numeric value in a file name. Enabled definitions receive dense levels
// starting at 0 for the outermost folder of the organised hierarchy; levels
// are derived from list order on every read, never stored.
//
// The registry is not safe for concurrent mutation. Callers take a Set
// snapshot before scanning and must not edit the registry while a scan,
// check, or move is in flight.
package tags
