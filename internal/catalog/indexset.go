package catalog

import "sort"

// none marks an absent removal or insertion position for remap.
const none = -1

// IndexSet is a set of record positions.
type IndexSet map[int]struct{}

// Has reports whether i is in the set.
func (s IndexSet) Has(i int) bool {
	_, ok := s[i]
	return ok
}

// Sorted returns the positions in ascending order.
func (s IndexSet) Sorted() []int {
	out := make([]int, 0, len(s))
	for i := range s {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// remap returns the set as it reads after removing the element at position
// removed and then inserting one element at position inserted. Either may be
// none. The removed position itself is dropped; the inserted position is not
// added, callers mark it explicitly.
//
//	removal:   i > removed   -> i-1
//	insertion: i >= inserted -> i+1
func (s IndexSet) remap(removed, inserted int) IndexSet {
	out := make(IndexSet, len(s)+1)
	for i := range s {
		if removed != none {
			if i == removed {
				continue
			}
			if i > removed {
				i--
			}
		}
		if inserted != none && i >= inserted {
			i++
		}
		out[i] = struct{}{}
	}
	return out
}
