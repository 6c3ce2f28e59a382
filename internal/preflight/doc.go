// Package preflight provides readiness checks for the filesystem paths that
// spritedeck depends on.
//
// The CLI "spritedeck doctor" command runs RunAll and renders each Result.
// Paths that are not configured are skipped rather than reported as failures.
package preflight
