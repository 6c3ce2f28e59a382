package thumbnail

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"spritedeck/internal/faults"
	"spritedeck/internal/logging"
	"spritedeck/internal/sprite"
)

// ProgressFunc receives the number of finished records and the batch size.
type ProgressFunc func(done, total int)

// BatchOptions controls which records a batch regenerates.
type BatchOptions struct {
	// ForceAll regenerates every record that has a source ID.
	ForceAll bool
	// MissingOnly ignores stale sizes and only fills in absent ones.
	MissingOnly bool
	// Workers bounds concurrent records; values below 1 mean 1.
	Workers int
	// Progress is called after each record, serialized.
	Progress ProgressFunc
}

// Failure names a record that could not be generated.
type Failure struct {
	Index    int    `json:"index" yaml:"index"`
	SourceID string `json:"src" yaml:"src"`
	Error    string `json:"error" yaml:"error"`
}

// Summary is the final count of a batch.
type Summary struct {
	CorrelationID string        `json:"correlation_id" yaml:"correlation_id"`
	Total         int           `json:"total" yaml:"total"`
	Generated     int           `json:"generated" yaml:"generated"`
	Failed        int           `json:"failed" yaml:"failed"`
	Skipped       int           `json:"skipped" yaml:"skipped"`
	Canceled      bool          `json:"canceled" yaml:"canceled"`
	Duration      time.Duration `json:"duration_ns" yaml:"duration"`
	Failures      []Failure     `json:"failures,omitempty" yaml:"failures,omitempty"`
}

// Processed is the number of records the batch finished.
func (s Summary) Processed() int { return s.Generated + s.Failed + s.Skipped }

type outcome int

const (
	outcomeNone outcome = iota
	outcomeGenerated
	outcomeFailed
	outcomeSkipped
)

func (o outcome) String() string {
	switch o {
	case outcomeGenerated:
		return "generated"
	case outcomeFailed:
		return "failed"
	case outcomeSkipped:
		return "skipped"
	default:
		return "none"
	}
}

// NeedsGeneration reports whether a batch with opts would regenerate r.
// Records without a source ID never need generation.
func (e *Engine) NeedsGeneration(r sprite.Record, opts BatchOptions) bool {
	src, ok := r.SourceID()
	if !ok || src == "" {
		return false
	}
	if opts.ForceAll {
		return true
	}
	for _, size := range e.sizes {
		if !e.Exists(r, size) {
			return true
		}
	}
	if opts.MissingOnly {
		return false
	}
	for _, size := range e.sizes {
		if e.IsStale(r, size) {
			return true
		}
	}
	return false
}

// GenerateMissingOrOutdated runs one batch over records and blocks until it
// finishes or ctx is canceled. Cancellation stops scheduling new records; the
// Summary covers every record that completed.
func (e *Engine) GenerateMissingOrOutdated(ctx context.Context, records []sprite.Record, opts BatchOptions) Summary {
	started := time.Now()
	id, ok := faults.RequestIDFromContext(ctx)
	if !ok {
		id = uuid.NewString()
		ctx = faults.WithRequestID(ctx, id)
	}
	ctx = faults.WithOperation(ctx, "generate_batch")
	logger := logging.WithContext(ctx, e.logger)

	summary := Summary{CorrelationID: id, Total: len(records)}
	workers := max(opts.Workers, 1)
	logger.Info("thumbnail batch started",
		logging.String(logging.FieldEventType, "thumbnail_batch_started"),
		logging.Int("records", len(records)),
		logging.Int("workers", workers),
		logging.Bool("force", opts.ForceAll),
		logging.Bool("missing_only", opts.MissingOnly),
	)

	var (
		mu      sync.Mutex
		done    int
		sampler = logging.NewProgressSampler(10)
	)
	finish := func(index int, src string, o outcome, err error) {
		mu.Lock()
		defer mu.Unlock()
		switch o {
		case outcomeGenerated:
			summary.Generated++
		case outcomeFailed:
			summary.Failed++
			summary.Failures = append(summary.Failures, Failure{Index: index, SourceID: src, Error: err.Error()})
		case outcomeSkipped:
			summary.Skipped++
		default:
			return
		}
		done++
		if opts.Progress != nil {
			opts.Progress(done, len(records))
		}
		if sampler.ShouldLogCount(done, len(records), "generate") {
			logger.Info("thumbnail batch progress",
				logging.String(logging.FieldEventType, "thumbnail_batch_progress"),
				logging.Int("done", done),
				logging.Int("total", len(records)),
			)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, rec := range records {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			src, _ := rec.SourceID()
			o, err := e.processRecord(faults.WithRecordIndex(gctx, i), rec, opts)
			finish(i, src, o, err)
			return nil
		})
	}
	_ = g.Wait()

	summary.Canceled = ctx.Err() != nil
	summary.Duration = time.Since(started)
	slices.SortFunc(summary.Failures, func(a, b Failure) int { return a.Index - b.Index })
	e.metrics.observeBatch(summary)

	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, "thumbnail_batch_finished"),
		logging.Int("generated", summary.Generated),
		logging.Int("failed", summary.Failed),
		logging.Int("skipped", summary.Skipped),
		logging.Int("total", summary.Total),
		logging.Bool("canceled", summary.Canceled),
		logging.Duration("duration", summary.Duration),
	}
	if summary.Failed > 0 || summary.Canceled {
		logging.WarnWithContext(logger, "thumbnail batch finished with problems", "thumbnail_batch_finished", append(attrs,
			logging.String(logging.FieldImpact, "some thumbnails are missing or outdated"),
			logging.String(logging.FieldErrorHint, "run 'spritedeck thumbs status' to list them"),
		)...)
	} else {
		logger.Info("thumbnail batch finished", logging.Args(attrs...)...)
	}
	return summary
}

func (e *Engine) processRecord(ctx context.Context, r sprite.Record, opts BatchOptions) (outcome, error) {
	if ctx.Err() != nil {
		return outcomeNone, nil
	}
	if !e.NeedsGeneration(r, opts) {
		e.metrics.observeRecord(outcomeSkipped, 0)
		return outcomeSkipped, nil
	}
	start := time.Now()
	if _, err := e.Generate(ctx, r, nil); err != nil {
		if ctx.Err() != nil {
			return outcomeNone, nil
		}
		e.metrics.observeRecord(outcomeFailed, time.Since(start))
		logging.WarnWithContext(logging.WithContext(ctx, e.logger), "thumbnail generation failed", "thumbnail_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "record keeps its missing or outdated thumbnails"),
			logging.String(logging.FieldErrorHint, "check the record's source image resolves and decodes"),
		)
		return outcomeFailed, err
	}
	e.metrics.observeRecord(outcomeGenerated, time.Since(start))
	return outcomeGenerated, nil
}

// Batch is a batch running on a background goroutine.
type Batch struct {
	cancel  context.CancelFunc
	done    chan struct{}
	summary Summary
}

// Start runs GenerateMissingOrOutdated over clones of records on a background
// goroutine, so the caller may keep mutating its own copies.
func (e *Engine) Start(ctx context.Context, records []sprite.Record, opts BatchOptions) *Batch {
	snapshot := make([]sprite.Record, len(records))
	for i, r := range records {
		snapshot[i] = r.Clone()
	}
	ctx, cancel := context.WithCancel(ctx)
	b := &Batch{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(b.done)
		defer cancel()
		b.summary = e.GenerateMissingOrOutdated(ctx, snapshot, opts)
	}()
	return b
}

// Cancel stops scheduling further records.
func (b *Batch) Cancel() { b.cancel() }

// Done is closed when the batch has finished.
func (b *Batch) Done() <-chan struct{} { return b.done }

// Wait blocks until the batch finishes and returns its summary.
func (b *Batch) Wait() Summary {
	<-b.done
	return b.summary
}
