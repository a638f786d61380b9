package filerecord

import (
	"errors"
	"fmt"
)

var (
	// ErrCanonicalPath means resolving a path failed for a reason other than
	// a missing target. Scans treat it as fatal because the storage is
	// assumed unreachable.
	ErrCanonicalPath       = errors.New("canonical path unresolvable")
	// ErrUnresolvedPath means the path or a symlink target does not exist,
	// for example a dangling link or a file removed after listing.
	ErrUnresolvedPath      = errors.New("path does not resolve to an existing file")
	ErrNotUnderRoot        = errors.New("file is not under the scan root")
	ErrNestedFile          = errors.New("file is inside a sub-directory of a non-recursive scan root")
	ErrMissingOutermostTag = errors.New("outermost tag marker not found")
	ErrTagAbsent           = errors.New("tag absent")
	ErrOutOfRange          = errors.New("tag value out of range")
)

// ParseError reports why a file did not produce a record.
type ParseError struct {
	Path string
	Tag  string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Tag != "" {
		return fmt.Sprintf("parse %s: tag %s: %v", e.Path, e.Tag, e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether err means the storage itself is unreachable.
func IsFatal(err error) bool {
	return errors.Is(err, ErrCanonicalPath)
}
