package filerecord

import (
	"sort"

	"stackwalker/internal/tags"
)

// Record is a valid, fully tagged file. Records are immutable once parsed.
type Record struct {
	// Path is the canonical absolute path of the file.
	Path string `json:"path"`
	// Name is the base file name.
	Name string `json:"name"`
	// Comparable is Path relative to the scan root.
	Comparable string `json:"comparable"`
	// DataSet is the text preceding the outermost marker.
	DataSet string `json:"data_set"`
	// Values maps enabled tag names to their parsed values.
	Values map[string]int `json:"values"`
	// Digits maps enabled tag names to the length of the digit run as written.
	Digits map[string]int `json:"digits"`
}

// Value returns the value of the named tag.
func (r *Record) Value(name string) (int, bool) {
	if r == nil {
		return 0, false
	}
	v, ok := r.Values[name]
	return v, ok
}

// Tuple returns the record's values ordered by the levels of set.
func (r *Record) Tuple(set tags.Set) Tuple {
	tuple := make(Tuple, len(set))
	for i, def := range set {
		tuple[i] = r.Values[def.Name]
	}
	return tuple
}

// SortByComparable orders records by comparable path so iteration order does
// not depend on traversal or worker scheduling.
func SortByComparable(records []*Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Comparable < records[j].Comparable
	})
}
