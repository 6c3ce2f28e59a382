// Package sprite models a single catalog record and the ordered JSON object
// codec used to read and write the backing document.
//
// Records keep every field in its original key order with its original raw
// JSON value so that unknown fields survive a load/save cycle untouched and
// saved documents produce minimal diffs. Semantic accessors (Category,
// SourceID, DisplayText, ...) interpret the well-known wire keys.
package sprite
