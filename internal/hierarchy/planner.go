// Package hierarchy computes where each member of a data set lands in the
// nested target layout. Planning is pure: it never touches the filesystem.
package hierarchy

import (
	"fmt"
	"path/filepath"
	"strings"

	"stackwalker/internal/dataset"
	"stackwalker/internal/filerecord"
	"stackwalker/internal/tags"
)

// Entry is one planned relocation.
type Entry struct {
	Source      string           `json:"source"`
	Destination string           `json:"destination"`
	Tuple       filerecord.Tuple `json:"tuple"`
}

// MovePlan lists the relocations for one data set in member order.
type MovePlan struct {
	DataSet    string   `json:"data_set"`
	SourceRoot string   `json:"source_root,omitempty"`
	TargetRoot string   `json:"target_root"`
	Tags       []string `json:"tags"`
	Entries    []Entry  `json:"entries"`
}

// Len returns the number of planned entries.
func (p *MovePlan) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Entries)
}

// Plan builds a destination for every member of ds below targetRoot. Each
// enabled level contributes one folder named marker+value, padded to the
// widest digit run seen for that tag; the file name is kept unchanged.
func Plan(ds *dataset.DataSet, set tags.Set, targetRoot string) (*MovePlan, error) {
	if ds == nil {
		return nil, fmt.Errorf("plan: nil data set")
	}
	if len(set) == 0 {
		return nil, tags.ErrNoEnabledDefinitions
	}
	if strings.TrimSpace(targetRoot) == "" {
		return nil, fmt.Errorf("plan %q: target root is empty", ds.Name)
	}
	root, err := filepath.Abs(targetRoot)
	if err != nil {
		return nil, fmt.Errorf("plan %q: resolve target root: %w", ds.Name, err)
	}

	plan := &MovePlan{
		DataSet:    ds.Name,
		SourceRoot: ds.Root,
		TargetRoot: root,
		Tags:       set.Names(),
		Entries:    make([]Entry, 0, len(ds.Members)),
	}
	for _, rec := range ds.Members {
		segments := make([]string, 0, len(set)+2)
		segments = append(segments, root)
		for _, def := range set {
			value, ok := rec.Value(def.Name)
			if !ok {
				return nil, fmt.Errorf("plan %q: %s has no value for tag %s", ds.Name, rec.Path, def.Name)
			}
			segments = append(segments, FolderName(def.Marker, value, ds.Ranges[def.Name].Width))
		}
		segments = append(segments, rec.Name)
		plan.Entries = append(plan.Entries, Entry{
			Source:      rec.Path,
			Destination: filepath.Join(segments...),
			Tuple:       rec.Tuple(set),
		})
	}
	return plan, nil
}

// FolderName returns marker followed by value zero-padded to width digits.
func FolderName(marker string, value, width int) string {
	return fmt.Sprintf("%s%0*d", marker, max(width, 1), value)
}
