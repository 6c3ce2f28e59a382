package thumbnail

import (
	"spritedeck/internal/fileutil"
	"spritedeck/internal/sprite"
)

// State is the derived condition of a record's thumbnail set.
type State int

const (
	StateUnknown State = iota
	StateOK
	StateMissing
	StateOutdated
)

func (s State) String() string {
	switch s {
	case StateOK:
		return "ok"
	case StateMissing:
		return "missing"
	case StateOutdated:
		return "outdated"
	default:
		return "unknown"
	}
}

// MarshalText encodes the state label for JSON/YAML reports.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Status is the per-size breakdown for one record.
type Status struct {
	SourceID string `json:"src" yaml:"src"`
	Source   string `json:"source,omitempty" yaml:"source,omitempty"`
	State    State  `json:"state" yaml:"state"`
	Missing  []int  `json:"missing,omitempty" yaml:"missing,omitempty"`
	Outdated []int  `json:"outdated,omitempty" yaml:"outdated,omitempty"`
}

// Check derives the status of r from disk. Records without a source ID or a
// resolvable source are StateUnknown. A record with both missing and outdated
// sizes reports StateMissing.
func (e *Engine) Check(r sprite.Record) Status {
	src, ok := r.SourceID()
	st := Status{SourceID: src}
	if !ok || src == "" {
		return st
	}
	sourcePath, sourceTime, ok := e.sourceModTime(r)
	if !ok {
		return st
	}
	st.Source = sourcePath
	for _, size := range e.sizes {
		p, _ := e.Path(r, size)
		thumbTime, err := fileutil.ModTime(p)
		switch {
		case err != nil:
			st.Missing = append(st.Missing, size)
		case sourceTime.After(thumbTime):
			st.Outdated = append(st.Outdated, size)
		}
	}
	switch {
	case len(st.Missing) > 0:
		st.State = StateMissing
	case len(st.Outdated) > 0:
		st.State = StateOutdated
	default:
		st.State = StateOK
	}
	return st
}

// SizeList names the sizes of one record that fell into a bucket.
type SizeList struct {
	Index    int    `json:"index" yaml:"index"`
	SourceID string `json:"src" yaml:"src"`
	Sizes    []int  `json:"sizes" yaml:"sizes"`
}

// Report buckets every record with a resolvable source.
type Report struct {
	OK       []string   `json:"ok" yaml:"ok"`
	Missing  []SizeList `json:"missing" yaml:"missing"`
	Outdated []SizeList `json:"outdated" yaml:"outdated"`
}

// Total is the number of distinct records the report covers.
func (r Report) Total() int {
	seen := make(map[int]struct{}, len(r.Missing)+len(r.Outdated))
	for _, l := range r.Missing {
		seen[l.Index] = struct{}{}
	}
	for _, l := range r.Outdated {
		seen[l.Index] = struct{}{}
	}
	return len(r.OK) + len(seen)
}

// ValidateAll checks every record. Records without a source ID or with an
// unresolvable source are skipped silently; a record may appear in both
// Missing and Outdated.
func (e *Engine) ValidateAll(records []sprite.Record) Report {
	var rep Report
	for i, r := range records {
		st := e.Check(r)
		if st.State == StateUnknown {
			continue
		}
		if st.State == StateOK {
			rep.OK = append(rep.OK, st.SourceID)
			continue
		}
		if len(st.Missing) > 0 {
			rep.Missing = append(rep.Missing, SizeList{Index: i, SourceID: st.SourceID, Sizes: st.Missing})
		}
		if len(st.Outdated) > 0 {
			rep.Outdated = append(rep.Outdated, SizeList{Index: i, SourceID: st.SourceID, Sizes: st.Outdated})
		}
	}
	return rep
}
