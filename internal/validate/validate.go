// Package validate scans catalog records for structural and referential
// defects. It never modifies records; issues are informational output for the
// caller to present.
package validate

import (
	"fmt"

	"spritedeck/internal/resolve"
	"spritedeck/internal/sprite"
)

// Severity ranks an issue.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

// String returns the lowercase severity label.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "info"
	}
}

// MarshalText encodes the severity label for JSON/YAML reports.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ParseSeverity maps a label back to a severity.
func ParseSeverity(label string) (Severity, error) {
	switch label {
	case "error":
		return SeverityError, nil
	case "warning", "warn":
		return SeverityWarning, nil
	case "info", "":
		return SeverityInfo, nil
	default:
		return SeverityInfo, fmt.Errorf("unknown severity %q", label)
	}
}

// GlobalIndex marks an issue that is not tied to one record.
const GlobalIndex = -1

// Issue is one validation finding.
type Issue struct {
	Severity Severity `json:"severity" yaml:"severity"`
	Message  string   `json:"message" yaml:"message"`
	Index    int      `json:"index" yaml:"index"`
	Category string   `json:"category,omitempty" yaml:"category,omitempty"`
	SourceID string   `json:"src,omitempty" yaml:"src,omitempty"`
}

// Options configures optional checks.
type Options struct {
	// Resolver enables the source image check when non-nil and rooted.
	Resolver *resolve.Resolver
}

// Validate runs the per-record rules in order, then the global duplicate
// check, and returns every issue found.
func Validate(records []sprite.Record, opts Options) []Issue {
	var issues []Issue
	checkImages := opts.Resolver != nil && opts.Resolver.Root() != ""

	known := make(map[string]struct{}, len(records))
	for _, r := range records {
		if src, ok := r.SourceID(); ok {
			known[src] = struct{}{}
		}
	}

	counts := make(map[string]int)
	var order []string

	for i, r := range records {
		src, hasSrc := r.SourceID()
		label := src
		if !hasSrc {
			label = "?"
		}
		tagged := func(sev Severity, msg string) Issue {
			return Issue{Severity: sev, Message: msg, Index: i, Category: r.Category(), SourceID: src}
		}

		if !hasSrc {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Message:  fmt.Sprintf("Sprite #%d: missing required field '%s'", i, sprite.KeySourceID),
				Index:    i,
			})
		} else {
			if counts[src] == 0 {
				order = append(order, src)
			}
			counts[src]++
			if checkImages {
				if _, err := opts.Resolver.ResolveRecord(r); err != nil {
					issues = append(issues, tagged(SeverityWarning, fmt.Sprintf("Sprite '%s': image file not found", src)))
				}
			}
		}

		if !r.HasCategory() {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Message:  fmt.Sprintf("Sprite #%d: missing required field '%s'", i, sprite.KeyCategory),
				Index:    i,
			})
		}

		if !r.Has(sprite.KeyDisplayText) {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("Sprite #%d: missing '%s' label", i, sprite.KeyDisplayText),
				Index:    i,
			})
		}

		if !r.Has(sprite.KeyWidth) || !r.Has(sprite.KeyHeight) {
			issues = append(issues, tagged(SeverityInfo, fmt.Sprintf("Sprite '%s': missing width/height", label)))
		}

		if ref, ok := r.BackgroundRef(); ok {
			if !referencesOther(records, i, ref, known) {
				issues = append(issues, tagged(SeverityWarning, fmt.Sprintf("Sprite '%s': %s '%s' not found", label, sprite.KeyBackgroundRef, ref)))
			}
		}

		if r.Has(sprite.KeyHidden) && !r.IsBool(sprite.KeyHidden) {
			issues = append(issues, tagged(SeverityWarning, fmt.Sprintf("Sprite '%s': '%s' should be boolean", label, sprite.KeyHidden)))
		}
	}

	for _, src := range order {
		if n := counts[src]; n > 1 {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Message:  fmt.Sprintf("Duplicate %s '%s' appears %d times", sprite.KeySourceID, src, n),
				Index:    GlobalIndex,
				SourceID: src,
			})
		}
	}
	return issues
}

// referencesOther reports whether ref names the source ID of a record other
// than the one at self. A record whose only match is itself is unresolved.
func referencesOther(records []sprite.Record, self int, ref string, known map[string]struct{}) bool {
	if _, ok := known[ref]; !ok {
		return false
	}
	for i, r := range records {
		if i == self {
			continue
		}
		if src, ok := r.SourceID(); ok && src == ref {
			return true
		}
	}
	return false
}

// Counts tallies issues per severity.
type Counts struct {
	Errors   int `json:"errors" yaml:"errors"`
	Warnings int `json:"warnings" yaml:"warnings"`
	Info     int `json:"info" yaml:"info"`
}

// Count tallies issues per severity.
func Count(issues []Issue) Counts {
	var c Counts
	for _, is := range issues {
		switch is.Severity {
		case SeverityError:
			c.Errors++
		case SeverityWarning:
			c.Warnings++
		default:
			c.Info++
		}
	}
	return c
}

// HasErrors reports whether any issue has error severity.
func HasErrors(issues []Issue) bool {
	return Count(issues).Errors > 0
}

// Filter keeps issues at or above floor.
func Filter(issues []Issue, floor Severity) []Issue {
	out := make([]Issue, 0, len(issues))
	for _, is := range issues {
		if is.Severity >= floor {
			out = append(out, is)
		}
	}
	return out
}
