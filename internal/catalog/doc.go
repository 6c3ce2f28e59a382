// Package catalog implements the ordered record store and its unsaved-index
// bookkeeping.
//
// Records live in a flat ordered arena. The "unsaved" relation is a set of
// positions into that arena, and every structural mutation is paired with an
// explicit transform of that set through a single primitive (IndexSet.remap):
// insertion shifts positions at or after the insertion point up, deletion
// drops the removed position and shifts later ones down, and a reorder is a
// deletion followed by an insertion. Invalid positions are rejected as no-ops
// so callers holding a stale selection can simply refresh.
package catalog
