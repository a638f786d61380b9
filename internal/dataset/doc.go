// Package dataset groups parsed file records into data sets and checks each
// data set for missing or duplicated tag combinations.
//
// The consistency check assumes a dense grid: every combination inside the
// observed per-tag ranges is expected exactly once. Missing combinations are
// enumerated in level order up to a cap, after which the report is flagged as
// truncated.
package dataset
