package mover

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"stackwalker/internal/hierarchy"
	"stackwalker/internal/logging"
)

// Failure is an entry that could not be relocated.
type Failure struct {
	Entry  hierarchy.Entry `json:"entry"`
	Reason Reason          `json:"reason"`
	Err    error           `json:"-"`
}

// MarshalJSON renders Err as a string.
func (f Failure) MarshalJSON() ([]byte, error) {
	type alias Failure
	msg := ""
	if f.Err != nil {
		msg = f.Err.Error()
	}
	return json.Marshal(struct {
		alias
		Error string `json:"error"`
	}{alias: alias(f), Error: msg})
}

// Result itemizes the outcome of every planned entry.
type Result struct {
	Moved     []hierarchy.Entry `json:"moved"`
	Failed    []Failure         `json:"failed"`
	Cancelled []hierarchy.Entry `json:"cancelled"`
	// Bytes is the total size of moved files.
	Bytes int64 `json:"bytes"`
}

// Progress is called after each attempted entry with the count of attempted
// entries so far.
type Progress func(done, total int, entry hierarchy.Entry)

// Options controls execution.
type Options struct {
	// LockDir enables the target lock when non-empty.
	LockDir string
	// CrossDevice allows copy+verify+remove when a rename crosses filesystems.
	CrossDevice bool
	Progress    Progress
	Logger      *slog.Logger
}

// Execute relocates every entry of plan in plan order. The returned error is
// reserved for conditions that prevent the run from starting (nil plan,
// target locked); per-entry problems are reported in Result.
func Execute(ctx context.Context, plan *hierarchy.MovePlan, opts Options) (Result, error) {
	result := Result{
		Moved:     []hierarchy.Entry{},
		Failed:    []Failure{},
		Cancelled: []hierarchy.Entry{},
	}
	if plan == nil {
		return result, fmt.Errorf("execute: nil plan")
	}
	logger := logging.WithContext(ctx, logging.NewComponentLogger(opts.Logger, "mover"))

	if opts.LockDir != "" {
		lock, err := acquireTargetLock(opts.LockDir, plan.TargetRoot)
		if err != nil {
			return result, err
		}
		defer func() {
			if err := lock.Unlock(); err != nil {
				logging.WarnWithContext(logger, "failed to release target lock", "target_lock_release_failed",
					logging.String("lock", lock.Path()),
					logging.Error(err),
					logging.String(logging.FieldImpact, "a later move into this target may report it as locked"),
				)
			}
		}()
	}

	total := len(plan.Entries)
	for i, entry := range plan.Entries {
		if ctx.Err() != nil {
			result.Cancelled = append(result.Cancelled, plan.Entries[i:]...)
			logger.Info("move cancelled",
				logging.Int("cancelled", total-i),
				logging.String(logging.FieldEventType, "move_cancelled"),
			)
			break
		}

		size, err := moveEntry(entry, opts.CrossDevice)
		if err != nil {
			reason, wrapped := classify(err)
			result.Failed = append(result.Failed, Failure{Entry: entry, Reason: reason, Err: wrapped})
			logging.WarnWithContext(logger, "entry not moved", "move_entry_failed",
				logging.String("source", entry.Source),
				logging.String("destination", entry.Destination),
				logging.String("reason", string(reason)),
				logging.Error(wrapped),
				logging.String(logging.FieldErrorHint, hintFor(reason)),
				logging.String(logging.FieldImpact, "file left at its source path"),
			)
		} else {
			result.Moved = append(result.Moved, entry)
			result.Bytes += size
			logger.Debug("entry moved",
				logging.String("source", entry.Source),
				logging.String("destination", entry.Destination),
			)
		}
		if opts.Progress != nil {
			opts.Progress(i+1, total, entry)
		}
	}
	return result, nil
}

// moveEntry relocates one entry and returns the size of the moved file.
func moveEntry(entry hierarchy.Entry, crossDevice bool) (int64, error) {
	info, err := os.Lstat(entry.Source)
	if err != nil {
		return 0, err
	}
	if sameFile(entry.Source, entry.Destination) {
		return info.Size(), nil
	}
	if err := os.MkdirAll(filepath.Dir(entry.Destination), 0o755); err != nil {
		return 0, err
	}
	if err := relocate(entry.Source, entry.Destination, crossDevice); err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func hintFor(reason Reason) string {
	switch reason {
	case ReasonDestinationConflict:
		return "remove or rename the existing destination file, then move again"
	case ReasonPermissionDenied:
		return "check write permissions on the source and target directories"
	default:
		return "check that both filesystems are mounted and have free space"
	}
}
