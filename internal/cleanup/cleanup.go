// Package cleanup removes source directories left empty by a move.
package cleanup

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"stackwalker/internal/logging"
)

// PruneResult contains the outcome of a prune operation.
type PruneResult struct {
	Removed []string       `json:"removed"`
	Errors  []CleanupError `json:"errors,omitempty"`
}

// CleanupError pairs a directory path with its cleanup error.
type CleanupError struct {
	Path  string `json:"path"`
	Error error  `json:"-"`
}

// PruneEmpty removes every directory in dirs that is empty, then walks up
// towards root removing ancestors that became empty. root itself and
// directories outside it are never removed.
func PruneEmpty(root string, dirs []string, logger *slog.Logger) PruneResult {
	result := PruneResult{}
	root = strings.TrimSpace(root)
	if root == "" || len(dirs) == 0 {
		return result
	}
	root = filepath.Clean(root)

	// Deepest first so a parent is examined after its children.
	candidates := uniqueUnder(root, dirs)
	sort.Slice(candidates, func(i, j int) bool {
		di, dj := depth(candidates[i]), depth(candidates[j])
		if di != dj {
			return di > dj
		}
		return candidates[i] < candidates[j]
	})

	visited := make(map[string]bool)
	for _, dir := range candidates {
		for current := dir; current != root && within(root, current); current = filepath.Dir(current) {
			if visited[current] {
				break
			}
			visited[current] = true
			empty, err := isEmpty(current)
			if err != nil {
				if !errors.Is(err, os.ErrNotExist) {
					result.Errors = append(result.Errors, CleanupError{Path: current, Error: err})
				}
				break
			}
			if !empty {
				break
			}
			if err := os.Remove(current); err != nil {
				result.Errors = append(result.Errors, CleanupError{Path: current, Error: err})
				if logger != nil {
					logging.WarnWithContext(logger, "failed to remove empty source directory", "prune_failed",
						logging.String("path", current),
						logging.Error(err),
						logging.String(logging.FieldErrorHint, "check permissions on the scan root"),
						logging.String(logging.FieldImpact, "empty directory left behind"),
					)
				}
				break
			}
			result.Removed = append(result.Removed, current)
			if logger != nil {
				logger.Debug("removed empty source directory",
					logging.String("path", current),
					logging.String(logging.FieldEventType, "prune"),
				)
			}
		}
	}
	return result
}

func uniqueUnder(root string, dirs []string) []string {
	seen := make(map[string]struct{}, len(dirs))
	out := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		dir = filepath.Clean(dir)
		if dir == root || !within(root, dir) {
			continue
		}
		if _, ok := seen[dir]; ok {
			continue
		}
		seen[dir] = struct{}{}
		out = append(out, dir)
	}
	return out
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func depth(path string) int {
	return strings.Count(path, string(filepath.Separator))
}

func isEmpty(dir string) (bool, error) {
	f, err := os.Open(dir)
	if err != nil {
		return false, err
	}
	defer f.Close()
	if _, err := f.Readdirnames(1); err != nil {
		if errors.Is(err, io.EOF) {
			return true, nil
		}
		return false, err
	}
	return false, nil
}
