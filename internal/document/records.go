package document

import (
	"sort"

	"spritedeck/internal/sprite"
	"spritedeck/internal/validate"
)

// Len returns the number of records.
func (d *Document) Len() int { return d.store.Len() }

// Get returns a copy of the record at i.
func (d *Document) Get(i int) (sprite.Record, bool) { return d.store.Get(i) }

// FindSourceID returns the first position whose source ID equals src.
func (d *Document) FindSourceID(src string) (int, bool) { return d.store.FindSourceID(src) }

// Records returns copies of every record in order.
func (d *Document) Records() []sprite.Record { return d.store.Records() }

// Unsaved returns the sorted positions of records never loaded or saved.
func (d *Document) Unsaved() []int { return d.store.Unsaved() }

// IsUnsaved reports whether position i is unsaved.
func (d *Document) IsUnsaved(i int) bool { return d.store.IsUnsaved(i) }

// Update replaces the record at i.
func (d *Document) Update(i int, r sprite.Record) bool {
	old, ok := d.store.Get(i)
	if !ok || !d.store.Update(i, r) {
		return false
	}
	d.forgetPreviews(old)
	d.dirty = true
	return true
}

// Append adds r at the end and returns its position.
func (d *Document) Append(r sprite.Record) int {
	d.dirty = true
	return d.store.Append(r)
}

// Insert places r at position at.
func (d *Document) Insert(r sprite.Record, at int) (int, bool) {
	pos, ok := d.store.Insert(r, at)
	if ok {
		d.dirty = true
	}
	return pos, ok
}

// Delete removes the record at i. The source image and thumbnails stay on disk.
func (d *Document) Delete(i int) bool {
	old, ok := d.store.Get(i)
	if !ok || !d.store.Delete(i) {
		return false
	}
	d.forgetPreviews(old)
	d.dirty = true
	return true
}

// Duplicate inserts a copy of the record at i right after it.
func (d *Document) Duplicate(i int) (int, bool) {
	pos, ok := d.store.Duplicate(i)
	if ok {
		d.dirty = true
	}
	return pos, ok
}

// Reorder moves the record at from to position to. Reorder(i, i) is a no-op
// and leaves the dirty flag alone.
func (d *Document) Reorder(from, to int) bool {
	if !d.store.Reorder(from, to) {
		return false
	}
	d.dirty = true
	return true
}

func (d *Document) forgetPreviews(r sprite.Record) {
	if src, ok := r.SourceID(); ok {
		d.previews.Forget(src)
	}
}

// Validate checks every record, including source image presence when a
// source root is set.
func (d *Document) Validate() []validate.Issue {
	return validate.Validate(d.store.Records(), validate.Options{Resolver: d.resolver})
}

// Categories returns the sorted distinct short categories.
func (d *Document) Categories() []string {
	seen := make(map[string]struct{})
	for _, r := range d.store.Records() {
		if !r.HasCategory() {
			continue
		}
		seen[sprite.ShortCategory(r.Category())] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Entry pairs a record with its position.
type Entry struct {
	Index  int
	Record sprite.Record
}

// SpritesByCategory returns the records whose short category equals category,
// in document order.
func (d *Document) SpritesByCategory(category string) []Entry {
	var out []Entry
	for i, r := range d.store.Records() {
		if r.HasCategory() && sprite.ShortCategory(r.Category()) == category {
			out = append(out, Entry{Index: i, Record: r})
		}
	}
	return out
}
