package thumbnail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"spritedeck/internal/faults"
	"spritedeck/internal/fileutil"
	"spritedeck/internal/logging"
	"spritedeck/internal/resolve"
	"spritedeck/internal/sprite"
)

const component = "thumbnail"

// DefaultSizes are the edge lengths generated when Options.Sizes is empty.
var DefaultSizes = []int{32, 64, 128, 256}

// Options configures an Engine.
type Options struct {
	// Root is the thumbnail root. Empty means <resolver root>/blocks.
	Root        string
	Sizes       []int
	Compression png.CompressionLevel
	Logger      *slog.Logger
	Metrics     *Metrics
}

// Engine derives, checks, and writes thumbnails for records.
type Engine struct {
	resolver *resolve.Resolver
	root     string
	sizes    []int
	encoder  *png.Encoder
	logger   *slog.Logger
	metrics  *Metrics
}

// NewEngine builds an engine that locates sources with resolver.
func NewEngine(resolver *resolve.Resolver, opts Options) *Engine {
	root := opts.Root
	if root == "" && resolver.Root() != "" {
		root = filepath.Join(resolver.Root(), "blocks")
	}
	sizes := opts.Sizes
	if len(sizes) == 0 {
		sizes = DefaultSizes
	}
	return &Engine{
		resolver: resolver,
		root:     root,
		sizes:    slices.Clone(sizes),
		encoder:  &png.Encoder{CompressionLevel: opts.Compression},
		logger:   logging.NewComponentLogger(opts.Logger, component),
		metrics:  opts.Metrics,
	}
}

// ParseCompression maps a config compression name to a PNG level.
func ParseCompression(name string) (png.CompressionLevel, error) {
	switch name {
	case "", "default":
		return png.DefaultCompression, nil
	case "none":
		return png.NoCompression, nil
	case "best-speed":
		return png.BestSpeed, nil
	case "best-compression":
		return png.BestCompression, nil
	default:
		return png.DefaultCompression, fmt.Errorf("unknown compression %q", name)
	}
}

// Root returns the thumbnail root directory.
func (e *Engine) Root() string { return e.root }

// Sizes returns the configured sizes in order.
func (e *Engine) Sizes() []int { return slices.Clone(e.sizes) }

// Folder returns <root>/<short category>/<src> for the record.
func (e *Engine) Folder(r sprite.Record) (string, bool) {
	src, ok := r.SourceID()
	if !ok || src == "" || e.root == "" {
		return "", false
	}
	short := sprite.ShortCategory(r.Category())
	return filepath.Join(e.root, filepath.FromSlash(short), src), true
}

// Path returns the thumbnail file for one size.
func (e *Engine) Path(r sprite.Record, size int) (string, bool) {
	folder, ok := e.Folder(r)
	if !ok {
		return "", false
	}
	src, _ := r.SourceID()
	return filepath.Join(folder, src+"_"+strconv.Itoa(size)+".png"), true
}

// Exists reports whether the thumbnail for size is present.
func (e *Engine) Exists(r sprite.Record, size int) bool {
	p, ok := e.Path(r, size)
	return ok && fileutil.IsRegularFile(p)
}

// IsStale is true when the thumbnail is absent, the source cannot be resolved,
// or the source was modified strictly after the thumbnail.
func (e *Engine) IsStale(r sprite.Record, size int) bool {
	p, ok := e.Path(r, size)
	if !ok {
		return true
	}
	res, err := e.resolver.ResolveRecord(r)
	if err != nil {
		return true
	}
	newer, err := fileutil.NewerThan(res.Path, p)
	if err != nil {
		return true
	}
	return newer
}

// Result describes one Generate call.
type Result struct {
	SourceID string
	Source   string
	Written  []int
	Failed   map[int]error
}

// Generate decodes the source once and writes every requested size. It
// succeeds when at least one size was written; per-size failures are logged
// and returned in Result.Failed. Nil sizes means the engine's sizes.
func (e *Engine) Generate(ctx context.Context, r sprite.Record, sizes []int) (Result, error) {
	if sizes == nil {
		sizes = e.sizes
	}
	src, _ := r.SourceID()
	result := Result{SourceID: src, Failed: map[int]error{}}
	logger := logging.WithContext(ctx, e.logger).With(logging.String(logging.FieldSourceID, src))

	if err := ctx.Err(); err != nil {
		return result, err
	}
	folder, ok := e.Folder(r)
	if !ok {
		return result, faults.Wrap(faults.ErrImage, component, "generate", "record has no thumbnail location", nil)
	}
	res, err := e.resolver.ResolveRecord(r)
	if err != nil {
		return result, faults.Wrap(faults.ErrImage, component, "generate", "resolve source", err)
	}
	result.Source = res.Path

	img, err := decodePNG(res.Path)
	if err != nil {
		return result, faults.Wrap(faults.ErrImage, component, "generate", "decode "+res.Path, err)
	}
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return result, faults.Wrap(faults.ErrImage, component, "generate", "create "+folder, err)
	}

	for _, size := range sizes {
		path, _ := e.Path(r, size)
		if err := e.writeSize(img, size, path); err != nil {
			result.Failed[size] = err
			e.metrics.observeSizeFailure()
			logging.WarnWithContext(logger, "thumbnail size failed", "thumbnail_size_failed",
				logging.Int("size", size),
				logging.String(logging.FieldPath, path),
				logging.Error(err),
				logging.String(logging.FieldImpact, "this size stays missing or outdated"),
				logging.String(logging.FieldErrorHint, "check the thumbnail directory is writable"),
			)
			continue
		}
		result.Written = append(result.Written, size)
	}

	if len(result.Written) == 0 {
		return result, faults.Wrap(faults.ErrImage, component, "generate", fmt.Sprintf("no size written for %q", src), errors.Join(mapValues(result.Failed)...))
	}
	logger.Debug("thumbnails written",
		logging.String(logging.FieldEventType, "thumbnail_generated"),
		logging.Any("sizes", result.Written),
	)
	return result, nil
}

func (e *Engine) writeSize(img *image.NRGBA, size int, path string) error {
	if size <= 0 {
		return fmt.Errorf("invalid size %d", size)
	}
	var buf bytes.Buffer
	if err := e.encoder.Encode(&buf, resample(img, size)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return fileutil.WriteFileAtomic(path, buf.Bytes(), 0o644)
}

func decodePNG(path string) (*image.NRGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, err
	}
	return toNRGBA(img), nil
}

func mapValues(m map[int]error) []error {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	out := make([]error, 0, len(keys))
	for _, k := range keys {
		out = append(out, fmt.Errorf("%dpx: %w", k, m[k]))
	}
	return out
}

// sourceModTime resolves the record and returns its source path and mtime.
func (e *Engine) sourceModTime(r sprite.Record) (string, time.Time, bool) {
	res, err := e.resolver.ResolveRecord(r)
	if err != nil {
		return "", time.Time{}, false
	}
	mt, err := fileutil.ModTime(res.Path)
	if err != nil {
		return "", time.Time{}, false
	}
	return res.Path, mt, true
}

// Render decodes the PNG at path and returns it resampled to fit size, for
// in-memory previews.
func Render(path string, size int) (*image.NRGBA, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid preview size %d", size)
	}
	img, err := decodePNG(path)
	if err != nil {
		return nil, err
	}
	return resample(img, size), nil
}
