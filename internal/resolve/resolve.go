// Package resolve maps a record's category and source ID to its source PNG.
//
// The catalog accumulated images under two naming schemes: "prefixed" files
// named <category>__<id>.png and "unprefixed" files named <id>.png, both in the
// category folder. The resolver never guesses: it returns only a path that
// exists on disk, or a NotFoundError listing every candidate it tried.
package resolve

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"spritedeck/internal/faults"
	"spritedeck/internal/sprite"
)

// Separator joins a category prefix and an identifier in prefixed file names.
const Separator = "__"

// Convention identifies which candidate rule produced a resolution.
type Convention int

const (
	// Prefixed is <category>/<cat>__<id>.png, or <category>/<id>.png when id already carries the separator.
	Prefixed Convention = iota
	// Unprefixed is <category>/<last __ component of id>.png.
	Unprefixed
	// RootPNG is <root>/<id>.png.
	RootPNG
	// RootVerbatim is <root>/<id> for identifiers that already carry an extension.
	RootVerbatim
)

// String returns the convention label used in logs and CLI output.
func (c Convention) String() string {
	switch c {
	case Prefixed:
		return "prefixed"
	case Unprefixed:
		return "unprefixed"
	case RootPNG:
		return "root"
	case RootVerbatim:
		return "verbatim"
	default:
		return "unknown"
	}
}

// Candidate is one location the resolver checks.
type Candidate struct {
	Path       string
	Convention Convention
}

// Resolution is a successful lookup.
type Resolution struct {
	Path       string
	Convention Convention
}

// ErrNoRoot is returned when no source root is configured.
var ErrNoRoot = errors.New("source root not configured")

// NotFoundError reports the candidates tried for an unresolvable record.
type NotFoundError struct {
	Category string
	SourceID string
	Tried    []string
}

func (e *NotFoundError) Error() string {
	if len(e.Tried) == 0 {
		return fmt.Sprintf("source image for %q not found: no candidates", e.SourceID)
	}
	return fmt.Sprintf("source image for %q not found (tried %s)", e.SourceID, strings.Join(e.Tried, ", "))
}

// Is lets errors.Is match faults.ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == faults.ErrNotFound
}

// Resolver looks up source images below a root directory.
type Resolver struct {
	root string
}

// New returns a resolver rooted at root (the project folder that contains the
// category folders, e.g. the parent of "blocks").
func New(root string) *Resolver {
	return &Resolver{root: strings.TrimSpace(root)}
}

// Root returns the configured root.
func (r *Resolver) Root() string {
	if r == nil {
		return ""
	}
	return r.root
}

// Candidates returns the ordered, de-duplicated candidate list.
func (r *Resolver) Candidates(category, sourceID string) []Candidate {
	if r == nil || r.root == "" {
		return nil
	}
	sourceID = strings.TrimSpace(sourceID)
	if sourceID == "" {
		return nil
	}
	category = strings.Trim(sprite.NormalizeSeparators(strings.TrimSpace(category)), "/")

	var out []Candidate
	seen := make(map[string]struct{}, 5)
	add := func(rel string, conv Convention) {
		p := filepath.Join(r.root, filepath.FromSlash(rel))
		if _, dup := seen[p]; dup {
			return
		}
		seen[p] = struct{}{}
		out = append(out, Candidate{Path: p, Convention: conv})
	}

	if category != "" {
		if strings.Contains(sourceID, Separator) {
			add(path.Join(category, sourceID+".png"), Prefixed)
		} else {
			add(path.Join(category, path.Base(category)+Separator+sourceID+".png"), Prefixed)
		}
		parts := strings.Split(sourceID, Separator)
		add(path.Join(category, parts[len(parts)-1]+".png"), Unprefixed)
	}
	add(sourceID+".png", RootPNG)
	add(sourceID, RootVerbatim)
	return out
}

// Resolve returns the first candidate that exists as a regular file.
func (r *Resolver) Resolve(category, sourceID string) (Resolution, error) {
	if r == nil || r.root == "" {
		return Resolution{}, ErrNoRoot
	}
	candidates := r.Candidates(category, sourceID)
	tried := make([]string, 0, len(candidates))
	for _, c := range candidates {
		tried = append(tried, c.Path)
		info, err := os.Stat(c.Path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		return Resolution{Path: c.Path, Convention: c.Convention}, nil
	}
	return Resolution{}, &NotFoundError{Category: category, SourceID: sourceID, Tried: tried}
}

// ResolveRecord resolves a record by its category and source ID.
func (r *Resolver) ResolveRecord(rec sprite.Record) (Resolution, error) {
	src, ok := rec.SourceID()
	if !ok {
		if r == nil || r.root == "" {
			return Resolution{}, ErrNoRoot
		}
		return Resolution{}, &NotFoundError{Category: rec.Category()}
	}
	return r.Resolve(rec.Category(), src)
}
