package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"spritedeck/internal/document"
	"spritedeck/internal/fileutil"
	"spritedeck/internal/logging"
	"spritedeck/internal/sprite"
	"spritedeck/internal/thumbnail"
	"spritedeck/internal/watch"
)

// watchSession regenerates thumbnails for records whose source image changed.
// The catalog is reloaded when its file changes between batches.
type watchSession struct {
	mu      sync.Mutex
	doc     *document.Document
	opts    thumbnail.BatchOptions
	logger  *slog.Logger
	out     io.Writer
	index   *watch.Index
	docTime time.Time
}

func newWatchSession(doc *document.Document, opts thumbnail.BatchOptions, logger *slog.Logger, out io.Writer) *watchSession {
	s := &watchSession{
		doc:    doc,
		opts:   opts,
		logger: logging.NewComponentLogger(logger, "watch"),
		out:    out,
	}
	s.docTime, _ = fileutil.ModTime(doc.Path())
	s.reindex()
	return s
}

func (s *watchSession) reindex() {
	s.index = watch.NewIndex(s.doc.Resolver(), s.doc.Records())
}

func (s *watchSession) catchUp(ctx context.Context) thumbnail.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	summary := s.doc.Engine().GenerateMissingOrOutdated(ctx, s.doc.Records(), s.opts)
	s.report("catch-up", summary)
	return summary
}

// handle is the watcher callback.
func (s *watchSession) handle(ctx context.Context, changes []watch.Change) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reloadIfChanged()
	affected := s.index.Affected(changes)
	if len(affected) == 0 {
		return
	}

	var records []sprite.Record
	for _, i := range affected {
		r, ok := s.doc.Get(i)
		if !ok {
			continue
		}
		if src, ok := r.SourceID(); ok {
			s.doc.Previews().Forget(src)
		}
		if _, err := s.doc.Resolver().ResolveRecord(r); err != nil {
			s.logger.Debug("changed source no longer resolves", logging.Int(logging.FieldRecordIndex, i), logging.Error(err))
			continue
		}
		if s.doc.Engine().NeedsGeneration(r, s.opts) {
			records = append(records, r)
		}
	}
	if len(records) == 0 {
		return
	}
	summary := s.doc.Engine().GenerateMissingOrOutdated(ctx, records, s.opts)
	s.report("change", summary)
}

func (s *watchSession) reloadIfChanged() {
	mod, err := fileutil.ModTime(s.doc.Path())
	if err != nil || mod.Equal(s.docTime) {
		return
	}
	if err := s.doc.Reload(); err != nil {
		logging.WarnWithContext(s.logger, "catalog reload failed", "catalog_reload_failed",
			logging.String(logging.FieldPath, s.doc.Path()),
			logging.Error(err),
			logging.String(logging.FieldImpact, "watching continues with the previously loaded records"),
			logging.String(logging.FieldErrorHint, "fix the catalog file; it is reloaded on the next change"))
		return
	}
	s.docTime = mod
	s.reindex()
	s.logger.Info("catalog reloaded", logging.String(logging.FieldPath, s.doc.Path()), logging.Int("records", s.doc.Len()))
}

func (s *watchSession) report(trigger string, summary thumbnail.Summary) {
	if summary.Generated == 0 && summary.Failed == 0 {
		return
	}
	fmt.Fprintf(s.out, "[%s] %s: generated %d, failed %d, skipped %d\n",
		time.Now().Format("15:04:05"), trigger, summary.Generated, summary.Failed, summary.Skipped)
}
