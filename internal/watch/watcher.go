// Package watch observes the source image tree and reports debounced batches
// of changed files. Index maps those paths back to catalog records.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"spritedeck/internal/logging"
)

// Op is the kind of change observed for a path.
type Op int

const (
	OpCreate Op = iota
	OpWrite
	OpRemove
	OpRename
)

func (op Op) String() string {
	switch op {
	case OpCreate:
		return "create"
	case OpWrite:
		return "write"
	case OpRemove:
		return "remove"
	case OpRename:
		return "rename"
	default:
		return "unknown"
	}
}

// Change is one file system event after filtering.
type Change struct {
	Path string
	Op   Op
	Time time.Time
}

// Handler receives a de-duplicated batch once the debounce window closes.
// It is always called from a single goroutine.
type Handler func(ctx context.Context, changes []Change)

// Options configures a Watcher.
type Options struct {
	Debounce time.Duration
	// Ignore holds base-name glob patterns. Matching directories are not
	// descended into and matching files produce no events.
	Ignore     []string
	BufferSize int
	Logger     *slog.Logger
}

// DefaultIgnore skips editor droppings and the temp files written by atomic
// thumbnail saves.
var DefaultIgnore = []string{".git", ".*.tmp", "*.tmp", "*.swp", "*~"}

const (
	defaultDebounce   = 500 * time.Millisecond
	defaultBufferSize = 1024
)

// Watcher recursively watches a directory tree.
type Watcher struct {
	root     string
	fsw      *fsnotify.Watcher
	handler  Handler
	debounce time.Duration
	ignore   []string
	logger   *slog.Logger

	changes  chan Change
	done     chan struct{}
	stopOnce sync.Once

	mu      sync.Mutex
	started bool
	dropped int
}

// New creates a watcher for root. Call Start to begin delivering events.
func New(root string, handler Handler, opts Options) (*Watcher, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, &fs.PathError{Op: "watch", Path: root, Err: errors.New("not a directory")}
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if opts.Debounce <= 0 {
		opts.Debounce = defaultDebounce
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = defaultBufferSize
	}
	if opts.Ignore == nil {
		opts.Ignore = DefaultIgnore
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Watcher{
		root:     root,
		fsw:      fsw,
		handler:  handler,
		debounce: opts.Debounce,
		ignore:   append([]string(nil), opts.Ignore...),
		logger:   logging.NewComponentLogger(logger, "watch"),
		changes:  make(chan Change, opts.BufferSize),
		done:     make(chan struct{}),
	}, nil
}

// Root returns the watched directory.
func (w *Watcher) Root() string { return w.root }

// Start registers every directory below root and launches the event and
// debounce goroutines. Both exit on Stop or when ctx is canceled.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return nil
	}
	w.started = true
	w.mu.Unlock()

	if err := w.addRecursive(w.root); err != nil {
		return err
	}
	go w.processEvents(ctx)
	go w.debounceLoop(ctx)
	w.logger.Debug("watching source tree", logging.String(logging.FieldPath, w.root))
	return nil
}

// Stop closes the underlying watcher. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		_ = w.fsw.Close()
	})
}

// Dropped returns how many events were discarded because the buffer was full.
func (w *Watcher) Dropped() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dropped
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.Ignored(path) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

// Ignored reports whether the base name of path matches an ignore pattern.
func (w *Watcher) Ignored(path string) bool {
	base := filepath.Base(path)
	for _, pattern := range w.ignore {
		if base == pattern {
			return true
		}
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
	}
	return false
}

func (w *Watcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if w.Ignored(event.Name) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addRecursive(event.Name); err != nil {
						w.logger.Debug("watch new directory failed",
							logging.String(logging.FieldPath, event.Name),
							logging.Error(err))
					}
					continue
				}
			}
			if event.Op == fsnotify.Chmod {
				continue
			}
			change := Change{Path: event.Name, Op: convertOp(event.Op), Time: time.Now()}
			select {
			case w.changes <- change:
			default:
				w.mu.Lock()
				w.dropped++
				w.mu.Unlock()
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logging.WarnWithContext(w.logger, "file watcher error", "watch_error",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "events may have been lost; run thumbs generate to catch up"),
				logging.String(logging.FieldImpact, "some thumbnails may stay stale"))
		}
	}
}

func convertOp(op fsnotify.Op) Op {
	switch {
	case op.Has(fsnotify.Create):
		return OpCreate
	case op.Has(fsnotify.Write):
		return OpWrite
	case op.Has(fsnotify.Remove):
		return OpRemove
	case op.Has(fsnotify.Rename):
		return OpRename
	default:
		return OpWrite
	}
}

func (w *Watcher) debounceLoop(ctx context.Context) {
	var (
		batch  []Change
		timer  *time.Timer
		timerC <-chan time.Time
	)
	flush := func() {
		if len(batch) > 0 && w.handler != nil {
			w.handler(ctx, Dedupe(batch))
		}
		batch = batch[:0]
		if timer != nil {
			timer.Stop()
			timer = nil
			timerC = nil
		}
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			flush()
			return
		case change := <-w.changes:
			batch = append(batch, change)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}
		case <-timerC:
			flush()
		}
	}
}

// Dedupe keeps the last change per path, in first-seen order.
func Dedupe(changes []Change) []Change {
	seen := make(map[string]int, len(changes))
	out := make([]Change, 0, len(changes))
	for _, c := range changes {
		if idx, ok := seen[c.Path]; ok {
			out[idx] = c
			continue
		}
		seen[c.Path] = len(out)
		out = append(out, c)
	}
	return out
}
