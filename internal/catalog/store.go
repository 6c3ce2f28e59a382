package catalog

import (
	"fmt"
	"strings"

	"spritedeck/internal/sprite"
)

const (
	// CopySuffix is appended to the source ID of a duplicated record.
	CopySuffix = "_copy"
	// CopyTextSuffix is appended to the display text of a duplicated record.
	CopyTextSuffix = " (Copy)"
)

// Store is the ordered record collection. It is not safe for concurrent use;
// the owning document serializes access.
type Store struct {
	records []sprite.Record
	unsaved IndexSet
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{unsaved: IndexSet{}}
}

// Len returns the number of records.
func (s *Store) Len() int { return len(s.records) }

func (s *Store) valid(i int) bool {
	return i >= 0 && i < len(s.records)
}

// Get returns a copy of the record at i. The second result is false when i is
// out of range.
func (s *Store) Get(i int) (sprite.Record, bool) {
	if !s.valid(i) {
		return sprite.Record{}, false
	}
	return s.records[i].Clone(), true
}

// Records returns copies of all records in order.
func (s *Store) Records() []sprite.Record {
	out := make([]sprite.Record, len(s.records))
	for i, r := range s.records {
		out[i] = r.Clone()
	}
	return out
}

// Update replaces the record at i in place.
func (s *Store) Update(i int, r sprite.Record) bool {
	if !s.valid(i) {
		return false
	}
	s.records[i] = r.Clone()
	return true
}

// Append adds r at the end, marks it unsaved and returns its position.
func (s *Store) Append(r sprite.Record) int {
	at, _ := s.Insert(r, len(s.records))
	return at
}

// Insert places r at position at (0 <= at <= Len), shifting later unsaved
// positions up, and marks the new position unsaved.
func (s *Store) Insert(r sprite.Record, at int) (int, bool) {
	if at < 0 || at > len(s.records) {
		return 0, false
	}
	s.records = append(s.records, sprite.Record{})
	copy(s.records[at+1:], s.records[at:])
	s.records[at] = r.Clone()
	s.unsaved = s.unsaved.remap(none, at)
	s.unsaved[at] = struct{}{}
	return at, true
}

// Delete removes the record at i. Its unsaved mark is dropped and later
// unsaved positions shift down.
func (s *Store) Delete(i int) bool {
	if !s.valid(i) {
		return false
	}
	s.records = append(s.records[:i], s.records[i+1:]...)
	s.unsaved = s.unsaved.remap(i, none)
	return true
}

// Duplicate inserts a copy of the record at i directly after it. The copy's
// source ID gets CopySuffix (with a counter when that ID is already taken) and
// its display text, when present, gets CopyTextSuffix.
func (s *Store) Duplicate(i int) (int, bool) {
	if !s.valid(i) {
		return 0, false
	}
	dup := s.records[i].Clone()
	if src, ok := dup.String(sprite.KeySourceID); ok {
		dup.SetString(sprite.KeySourceID, s.uniqueCopyID(src))
	}
	if text, ok := dup.String(sprite.KeyDisplayText); ok {
		dup.SetString(sprite.KeyDisplayText, text+CopyTextSuffix)
	}
	return s.Insert(dup, i+1)
}

func (s *Store) uniqueCopyID(src string) string {
	taken := make(map[string]struct{}, len(s.records))
	for _, id := range s.SourceIDs() {
		taken[id] = struct{}{}
	}
	candidate := src + CopySuffix
	for n := 2; ; n++ {
		if _, exists := taken[candidate]; !exists {
			return candidate
		}
		candidate = fmt.Sprintf("%s%s%d", src, CopySuffix, n)
	}
}

// Reorder moves the record at from so that it ends up at position to, using
// list-move semantics (to counts positions after the removal). Both positions
// must be valid. Reorder(i, i) changes nothing and reports false.
func (s *Store) Reorder(from, to int) bool {
	if !s.valid(from) || !s.valid(to) || from == to {
		return false
	}
	wasUnsaved := s.unsaved.Has(from)
	moved := s.records[from]
	s.records = append(s.records[:from], s.records[from+1:]...)
	s.records = append(s.records, sprite.Record{})
	copy(s.records[to+1:], s.records[to:])
	s.records[to] = moved

	s.unsaved = s.unsaved.remap(from, to)
	if wasUnsaved {
		s.unsaved[to] = struct{}{}
	}
	return true
}

// Unsaved returns the unsaved positions in ascending order.
func (s *Store) Unsaved() []int {
	return s.unsaved.Sorted()
}

// IsUnsaved reports whether the record at i has not been saved yet.
func (s *Store) IsUnsaved(i int) bool {
	return s.unsaved.Has(i)
}

// Reset replaces every record and clears the unsaved set.
func (s *Store) Reset(records []sprite.Record) {
	s.records = make([]sprite.Record, len(records))
	for i, r := range records {
		s.records[i] = r.Clone()
	}
	s.unsaved = IndexSet{}
}

// MarkSaved clears the unsaved set.
func (s *Store) MarkSaved() {
	s.unsaved = IndexSet{}
}

// NormalizeCategories rewrites backslash separators in every category and
// returns the number of records changed.
func (s *Store) NormalizeCategories() int {
	changed := 0
	for i := range s.records {
		if s.records[i].NormalizeCategory() {
			changed++
		}
	}
	return changed
}

// SourceIDs returns the source ID of every record that has one, in order.
func (s *Store) SourceIDs() []string {
	out := make([]string, 0, len(s.records))
	for _, r := range s.records {
		if src, ok := r.SourceID(); ok {
			out = append(out, src)
		}
	}
	return out
}

// FindSourceID returns the first position whose source ID equals src.
func (s *Store) FindSourceID(src string) (int, bool) {
	src = strings.TrimSpace(src)
	for i, r := range s.records {
		if id, ok := r.SourceID(); ok && id == src {
			return i, true
		}
	}
	return 0, false
}
