// Package services defines shared utilities consumed by the scan, check and
// move operations.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers, operation names, and data
//     set names for logging and journal correlation.
//   - Structured error markers plus the Wrap helper that classify failures
//     into configuration, parse, fatal I/O, and move categories.
//
// Use these helpers when wiring new operations so error handling and
// observability stay uniform across the engine.
package services
