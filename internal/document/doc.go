// Package document owns an open catalog file: the ordered record store, the
// file identity and dirty flag, and the resolver, thumbnail engine, and
// preview cache bound to the current source root.
//
// A Document has a single writer. Thumbnail batches receive record clones, so
// the document may keep changing while a batch runs.
package document
