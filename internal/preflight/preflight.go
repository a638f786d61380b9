package preflight

import (
	"errors"
	"strings"
)

// ErrNotReady is returned by Err when at least one check failed.
var ErrNotReady = errors.New("preflight checks failed")

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// Results is an ordered list of check outcomes.
type Results []Result

// Failed returns the checks that did not pass.
func (r Results) Failed() Results {
	var out Results
	for _, res := range r {
		if !res.Passed {
			out = append(out, res)
		}
	}
	return out
}

// Err folds failed checks into one error, or nil when all passed.
func (r Results) Err() error {
	failed := r.Failed()
	if len(failed) == 0 {
		return nil
	}
	parts := make([]string, len(failed))
	for i, res := range failed {
		parts[i] = res.Name + ": " + res.Detail
	}
	return errors.Join(ErrNotReady, errors.New(strings.Join(parts, "; ")))
}

// ForMove checks the scan root and the target root of a planned move.
func ForMove(sourceRoot, targetRoot string) Results {
	return Results{
		CheckDirectoryAccess("Source root", sourceRoot),
		CheckCreatable("Target root", targetRoot),
	}
}
