// Package scanner walks a scan root, parses every candidate file into a
// record, and groups the valid records into data sets.
//
// Listing happens first; parsing then runs on a bounded worker pool. Results
// are sorted by comparable path before grouping, so data-set membership and
// member order never depend on worker scheduling. A file that fails to parse
// is reported as invalid and the scan goes on; only an unreachable root or an
// unresolvable canonical path aborts the scan.
package scanner
