package sprite

import (
	"encoding/json"
	"strings"
)

// Wire keys of the well-known record fields.
const (
	KeyCategory      = "putUnder"
	KeySourceID      = "src"
	KeyDisplayText   = "text"
	KeyWidth         = "width"
	KeyHeight        = "height"
	KeyHidden        = "hidden"
	KeyBackgroundRef = "otherbg"
)

// blocksPrefix is the conventional top-level folder of category paths.
const blocksPrefix = "blocks/"

// Record is one catalog entry. It is an ordered open-schema object; the
// accessors below interpret the well-known keys.
type Record struct {
	Object
}

// New builds a record with the required fields set. An empty displayText is
// left out so the display text falls back to the source ID.
func New(category, sourceID, displayText string) Record {
	var r Record
	r.SetString(KeyCategory, category)
	r.SetString(KeySourceID, sourceID)
	if displayText != "" {
		r.SetString(KeyDisplayText, displayText)
	}
	return r
}

// Clone returns an independent copy of the record.
func (r Record) Clone() Record {
	return Record{Object: r.Object.Clone()}
}

// Equal reports whether both records carry the same fields in the same order.
func (r Record) Equal(other Record) bool {
	return r.Object.Equal(other.Object)
}

// Category returns the category path, or "" when absent or not a string.
func (r Record) Category() string {
	s, _ := r.String(KeyCategory)
	return s
}

// HasCategory reports whether the category key is present.
func (r Record) HasCategory() bool {
	return r.Has(KeyCategory)
}

// SourceID returns the source identifier and whether the key is present. A
// non-string value is reported by its compact JSON text so it still takes part
// in duplicate detection.
func (r Record) SourceID() (string, bool) {
	if s, ok := r.String(KeySourceID); ok {
		return s, true
	}
	raw, ok := r.Raw(KeySourceID)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(string(raw)), true
}

// DisplayText returns the display text, defaulting to the source ID.
func (r Record) DisplayText() string {
	if s, ok := r.String(KeyDisplayText); ok {
		return s
	}
	src, _ := r.SourceID()
	return src
}

// Dimensions returns the cached pixel size when both width and height are set.
func (r Record) Dimensions() (width, height int, ok bool) {
	w, wok := r.Int(KeyWidth)
	h, hok := r.Int(KeyHeight)
	if !wok || !hok {
		return 0, 0, false
	}
	return w, h, true
}

// Hidden reports whether the record is flagged hidden. Non-boolean values
// count as not hidden.
func (r Record) Hidden() bool {
	v, _ := r.Bool(KeyHidden)
	return v
}

// BackgroundRef returns the referenced background source ID when present.
func (r Record) BackgroundRef() (string, bool) {
	if s, ok := r.String(KeyBackgroundRef); ok {
		return s, true
	}
	raw, ok := r.Raw(KeyBackgroundRef)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(string(raw)), true
}

// NormalizeCategory rewrites backslash separators of the category to forward
// slashes and reports whether the value changed.
func (r *Record) NormalizeCategory() bool {
	cat, ok := r.String(KeyCategory)
	if !ok {
		return false
	}
	normalized := NormalizeSeparators(cat)
	if normalized == cat {
		return false
	}
	r.SetString(KeyCategory, normalized)
	return true
}

// MarshalJSON encodes the record as an ordered object.
func (r Record) MarshalJSON() ([]byte, error) {
	return r.Object.MarshalJSON()
}

// UnmarshalJSON decodes an ordered object into the record.
func (r *Record) UnmarshalJSON(data []byte) error {
	return r.Object.UnmarshalJSON(data)
}

var _ json.Marshaler = Record{}

// NormalizeSeparators rewrites backslashes to forward slashes.
func NormalizeSeparators(path string) string {
	return strings.ReplaceAll(path, `\`, "/")
}

// ShortCategory strips the conventional "blocks/" prefix from a category after
// separator normalization. It is the grouping label used for browsing and the
// folder name used below the thumbnail root.
func ShortCategory(category string) string {
	normalized := NormalizeSeparators(strings.TrimSpace(category))
	return strings.TrimPrefix(normalized, blocksPrefix)
}
