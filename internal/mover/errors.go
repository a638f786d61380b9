package mover

import (
	"errors"
	"fmt"
	"io/fs"
)

var (
	ErrDestinationConflict = errors.New("destination already holds a different file")
	ErrPermission          = errors.New("permission denied")
	ErrFilesystem          = errors.New("filesystem error")
	ErrTargetLocked        = errors.New("target root is locked by another move")
)

// Reason classifies a failed entry.
type Reason string

const (
	ReasonDestinationConflict Reason = "destination_conflict"
	ReasonPermissionDenied    Reason = "permission_denied"
	ReasonFilesystemError     Reason = "filesystem_error"
)

// classify maps a relocation error onto a reason and wraps it with the
// matching sentinel.
func classify(err error) (Reason, error) {
	switch {
	case errors.Is(err, ErrDestinationConflict):
		return ReasonDestinationConflict, err
	case errors.Is(err, fs.ErrExist):
		return ReasonDestinationConflict, fmt.Errorf("%w: %w", ErrDestinationConflict, err)
	case errors.Is(err, fs.ErrPermission):
		return ReasonPermissionDenied, fmt.Errorf("%w: %w", ErrPermission, err)
	default:
		return ReasonFilesystemError, fmt.Errorf("%w: %w", ErrFilesystem, err)
	}
}
