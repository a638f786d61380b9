// Package filerecord parses image file paths into tag coordinates.
//
// A Parser is bound to one scan root and one tags.Set snapshot. For each file
// it resolves the canonical path, strips the root to obtain the comparable
// path, derives the data set name from the text before the outermost marker,
// and reads the digits that follow every enabled marker. A record is only
// produced when every enabled tag resolves; anything else yields a
// *ParseError and the file is left out of aggregation.
package filerecord
