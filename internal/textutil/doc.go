// Package textutil provides text helpers shared by the parser, the config
// loader and the CLI.
//
// The primary use cases are:
//   - Normalizing file paths and tag markers to Unicode NFC so that names
//     written by different operating systems compare byte-for-byte
//   - Building display labels for tag names
//   - Counting marker occurrences and reading ASCII digit runs
package textutil
