package dataset

import (
	"math"
	"math/bits"
	"sort"

	"stackwalker/internal/filerecord"
	"stackwalker/internal/tags"
)

// DefaultMaxMissing caps how many missing tuples a report enumerates.
const DefaultMaxMissing = 1000

// Duplicate is a tuple carried by more than one member.
type Duplicate struct {
	Tuple filerecord.Tuple `json:"tuple"`
	Paths []string         `json:"paths"`
}

// Report is the outcome of a consistency check. Missing and duplicate
// tuples are reported separately.
type Report struct {
	DataSet    string             `json:"data_set"`
	Tags       []string           `json:"tags"`
	Consistent bool               `json:"consistent"`
	Expected   uint64             `json:"expected"`
	Observed   int                `json:"observed"`
	Missing    []filerecord.Tuple `json:"missing"`
	Duplicates []Duplicate        `json:"duplicates"`
	// Truncated is set when more tuples are missing than Missing lists.
	Truncated bool `json:"truncated"`
}

// MissingCount returns the number of grid cells with no member, which may
// exceed len(Missing) when the report is truncated.
func (r Report) MissingCount() uint64 {
	if r.Expected <= uint64(r.Observed) {
		return 0
	}
	return r.Expected - uint64(r.Observed)
}

// CheckConsistency compares the members of ds against the dense grid spanned
// by the observed range of every tag in set. maxMissing <= 0 selects
// DefaultMaxMissing.
func CheckConsistency(ds *DataSet, set tags.Set, maxMissing int) Report {
	if maxMissing <= 0 {
		maxMissing = DefaultMaxMissing
	}
	report := Report{
		Tags:       set.Names(),
		Missing:    []filerecord.Tuple{},
		Duplicates: []Duplicate{},
	}
	if ds == nil || len(ds.Members) == 0 {
		report.Consistent = true
		return report
	}
	report.DataSet = ds.Name

	seen := make(map[string][]*filerecord.Record, len(ds.Members))
	order := make([]filerecord.Tuple, 0, len(ds.Members))
	for _, rec := range ds.Members {
		tuple := rec.Tuple(set)
		key := tuple.Key()
		if _, ok := seen[key]; !ok {
			order = append(order, tuple)
		}
		seen[key] = append(seen[key], rec)
	}
	report.Observed = len(order)

	sort.Slice(order, func(i, j int) bool { return order[i].Less(order[j]) })
	for _, tuple := range order {
		members := seen[tuple.Key()]
		if len(members) < 2 {
			continue
		}
		paths := make([]string, len(members))
		for i, rec := range members {
			paths[i] = rec.Path
		}
		report.Duplicates = append(report.Duplicates, Duplicate{Tuple: tuple, Paths: paths})
	}

	mins := make([]int, len(set))
	maxs := make([]int, len(set))
	report.Expected = 1
	for i, def := range set {
		r := ds.Ranges[def.Name]
		mins[i], maxs[i] = r.Min, r.Max
		report.Expected = mulSaturating(report.Expected, r.Span())
	}

	missing := report.MissingCount()
	limit := uint64(maxMissing)
	report.Missing = enumerateMissing(mins, maxs, seen, min(missing, limit))
	report.Truncated = missing > uint64(len(report.Missing))
	report.Consistent = missing == 0 && len(report.Duplicates) == 0
	return report
}

// enumerateMissing walks the grid in level order and collects up to want
// cells that have no member. The walk stops as soon as want cells are found,
// so it visits at most len(seen)+want cells.
func enumerateMissing(mins, maxs []int, seen map[string][]*filerecord.Record, want uint64) []filerecord.Tuple {
	out := []filerecord.Tuple{}
	if want == 0 || len(mins) == 0 {
		return out
	}
	cur := make(filerecord.Tuple, len(mins))
	copy(cur, mins)
	for {
		if _, ok := seen[cur.Key()]; !ok {
			cell := make(filerecord.Tuple, len(cur))
			copy(cell, cur)
			out = append(out, cell)
			if uint64(len(out)) == want {
				return out
			}
		}
		i := len(cur) - 1
		for ; i >= 0; i-- {
			if cur[i] < maxs[i] {
				cur[i]++
				break
			}
			cur[i] = mins[i]
		}
		if i < 0 {
			return out
		}
	}
}

func mulSaturating(a, b uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return math.MaxUint64
	}
	return lo
}
