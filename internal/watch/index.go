package watch

import (
	"path/filepath"
	"slices"

	"spritedeck/internal/resolve"
	"spritedeck/internal/sprite"
)

// Index maps every resolver candidate path of a record snapshot back to the
// record positions that would load it.
type Index struct {
	byPath map[string][]int
}

// NewIndex builds the reverse lookup for records under resolver. Records
// without a source ID are left out.
func NewIndex(resolver *resolve.Resolver, records []sprite.Record) *Index {
	idx := &Index{byPath: make(map[string][]int)}
	for i, r := range records {
		src, ok := r.SourceID()
		if !ok {
			continue
		}
		for _, c := range resolver.Candidates(r.Category(), src) {
			key := filepath.Clean(c.Path)
			if list := idx.byPath[key]; len(list) == 0 || list[len(list)-1] != i {
				idx.byPath[key] = append(list, i)
			}
		}
	}
	return idx
}

// Len returns how many distinct candidate paths are indexed.
func (x *Index) Len() int { return len(x.byPath) }

// Affected returns the sorted, de-duplicated record positions touched by
// changes. Paths that are no record's candidate are ignored.
func (x *Index) Affected(changes []Change) []int {
	var out []int
	for _, c := range changes {
		out = append(out, x.byPath[filepath.Clean(c.Path)]...)
	}
	slices.Sort(out)
	return slices.Compact(out)
}
