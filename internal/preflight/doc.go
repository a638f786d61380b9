// Package preflight provides filesystem readiness checks that run before a
// move touches any file.
//
// A move needs write access to the scan root (files leave it) and to the
// target root or its nearest existing ancestor (folders are created there).
// The CLI "config validate" command reuses CheckDirectoryAccess to report on
// the configured state and log directories.
package preflight
