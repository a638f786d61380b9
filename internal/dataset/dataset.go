package dataset

import (
	"sort"

	"stackwalker/internal/filerecord"
)

// Range is the observed span of one tag inside a data set.
type Range struct {
	Min int `json:"min"`
	Max int `json:"max"`
	// Width is the longest digit run written for the tag, used for padding.
	Width int `json:"width"`
}

// Span returns the number of grid cells the range covers.
func (r Range) Span() uint64 {
	return uint64(r.Max-r.Min) + 1
}

// DataSet is the group of records sharing one data-set name.
type DataSet struct {
	Name string `json:"name"`
	// Root is the canonical scan root the members were found under. It is
	// empty when the set was aggregated outside a scan.
	Root    string               `json:"root,omitempty"`
	Members []*filerecord.Record `json:"members"`
	Ranges  map[string]Range     `json:"ranges"`
}

// Len returns the member count.
func (d *DataSet) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Members)
}

func (d *DataSet) add(rec *filerecord.Record) {
	for name, value := range rec.Values {
		width := rec.Digits[name]
		r, ok := d.Ranges[name]
		if !ok {
			d.Ranges[name] = Range{Min: value, Max: value, Width: width}
			continue
		}
		r.Min = min(r.Min, value)
		r.Max = max(r.Max, value)
		r.Width = max(r.Width, width)
		d.Ranges[name] = r
	}
	d.Members = append(d.Members, rec)
}

// Aggregate groups records by data-set name. Member order follows the order
// of records. Nil records are ignored.
func Aggregate(records []*filerecord.Record) map[string]*DataSet {
	sets := make(map[string]*DataSet)
	for _, rec := range records {
		if rec == nil {
			continue
		}
		ds, ok := sets[rec.DataSet]
		if !ok {
			ds = &DataSet{Name: rec.DataSet, Ranges: make(map[string]Range)}
			sets[rec.DataSet] = ds
		}
		ds.add(rec)
	}
	return sets
}

// Names returns the data-set names in sorted order.
func Names(sets map[string]*DataSet) []string {
	names := make([]string, 0, len(sets))
	for name := range sets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Sorted returns the data sets ordered by name.
func Sorted(sets map[string]*DataSet) []*DataSet {
	names := Names(sets)
	out := make([]*DataSet, len(names))
	for i, name := range names {
		out[i] = sets[name]
	}
	return out
}
