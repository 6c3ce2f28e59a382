package document

import (
	"fmt"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"spritedeck/internal/catalog"
	"spritedeck/internal/faults"
	"spritedeck/internal/fileutil"
	"spritedeck/internal/logging"
	"spritedeck/internal/preview"
	"spritedeck/internal/resolve"
	"spritedeck/internal/sprite"
	"spritedeck/internal/thumbnail"
)

const component = "document"

// BackupSuffix is appended to the catalog path for the pre-save copy.
const BackupSuffix = ".bak"

// Options configures a Document.
type Options struct {
	SourceRoot string
	// ThumbnailRoot overrides <SourceRoot>/blocks.
	ThumbnailRoot  string
	Sizes          []int
	Compression    png.CompressionLevel
	PreviewEntries int
	// Backup copies the existing file to <path>.bak before each save.
	Backup  bool
	Logger  *slog.Logger
	Metrics *thumbnail.Metrics
}

// Document is an open catalog.
type Document struct {
	opts   Options
	logger *slog.Logger

	store *catalog.Store
	top   sprite.Object
	path  string
	dirty bool

	resolver *resolve.Resolver
	engine   *thumbnail.Engine
	previews *preview.Cache
}

// New returns an empty, unnamed document.
func New(opts Options) *Document {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	d := &Document{
		opts:     opts,
		logger:   logging.NewComponentLogger(logger, component),
		store:    catalog.NewStore(),
		top:      emptyTop(),
		previews: preview.New(opts.PreviewEntries),
	}
	d.bindRoot(opts.SourceRoot)
	return d
}

// Open is New followed by Load.
func Open(path string, opts Options) (*Document, error) {
	d := New(opts)
	if err := d.Load(path); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Document) bindRoot(root string) {
	d.opts.SourceRoot = strings.TrimSpace(root)
	d.resolver = resolve.New(d.opts.SourceRoot)
	thumbRoot := d.opts.ThumbnailRoot
	d.engine = thumbnail.NewEngine(d.resolver, thumbnail.Options{
		Root:        thumbRoot,
		Sizes:       d.opts.Sizes,
		Compression: d.opts.Compression,
		Logger:      d.logger,
		Metrics:     d.opts.Metrics,
	})
}

// Load replaces the document with the contents of path. The file is fully
// parsed before anything changes; on error the document is untouched.
func (d *Document) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return faults.Wrap(faults.ErrIO, component, "load", fmt.Sprintf("read %s", path), err)
	}
	top, records, err := decode(data)
	if err != nil {
		return faults.Wrap(faults.ErrIO, component, "load", fmt.Sprintf("parse %s", path), err)
	}

	d.store.Reset(records)
	d.top = top
	d.path = path
	d.dirty = false
	d.previews.Purge()
	d.logger.Info("catalog loaded",
		logging.String(logging.FieldEventType, "document_loaded"),
		logging.String(logging.FieldPath, path),
		logging.Int("records", len(records)))
	return nil
}

// Reload re-reads the current file, discarding unsaved changes.
func (d *Document) Reload() error {
	if d.path == "" {
		return faults.Wrap(faults.ErrIO, component, "reload", "document has no file path", nil)
	}
	return d.Load(d.path)
}

// Save writes the document to its current path.
func (d *Document) Save() error {
	if d.path == "" {
		return faults.Wrap(faults.ErrIO, component, "save", "document has no file path", nil)
	}
	return d.SaveAs(d.path)
}

// SaveAs normalizes category separators and atomically writes the document to
// path, which becomes the current path. On error the records, the dirty flag
// and the unsaved set are left as they were.
func (d *Document) SaveAs(path string) error {
	if strings.TrimSpace(path) == "" {
		return faults.Wrap(faults.ErrIO, component, "save", "empty file path", nil)
	}
	records := d.store.Records()
	normalized := 0
	for i := range records {
		if records[i].NormalizeCategory() {
			normalized++
		}
	}
	data, err := encode(d.top, records)
	if err != nil {
		return faults.Wrap(faults.ErrIO, component, "save", "encode catalog", err)
	}
	if d.opts.Backup && fileutil.IsRegularFile(path) {
		if err := fileutil.CopyFileVerified(path, path+BackupSuffix); err != nil {
			return faults.Wrap(faults.ErrIO, component, "save", fmt.Sprintf("backup %s", path), err)
		}
	}
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return faults.Wrap(faults.ErrIO, component, "save", fmt.Sprintf("write %s", path), err)
	}

	if normalized > 0 {
		d.store.NormalizeCategories()
		d.logger.Debug("normalized category separators", logging.Int("records", normalized))
	}
	d.path = path
	d.dirty = false
	d.store.MarkSaved()
	d.logger.Info("catalog saved",
		logging.String(logging.FieldEventType, "document_saved"),
		logging.String(logging.FieldPath, path),
		logging.Int("records", d.store.Len()))
	return nil
}

// Path returns the current file path, or "" for an unnamed document.
func (d *Document) Path() string { return d.path }

// Dirty reports whether a mutation happened since the last load or save.
func (d *Document) Dirty() bool { return d.dirty }

// SourceRoot returns the folder images are resolved against.
func (d *Document) SourceRoot() string { return d.opts.SourceRoot }

// SetSourceRoot rebinds the resolver and thumbnail engine to root and drops
// every cached preview. The document itself is not modified.
func (d *Document) SetSourceRoot(root string) {
	d.bindRoot(root)
	d.previews.Purge()
}

// Resolver returns the resolver bound to the current source root.
func (d *Document) Resolver() *resolve.Resolver { return d.resolver }

// Engine returns the thumbnail engine bound to the current source root.
func (d *Document) Engine() *thumbnail.Engine { return d.engine }

// Previews returns the preview cache.
func (d *Document) Previews() *preview.Cache { return d.previews }

// Defaults returns the raw blockDefaults value.
func (d *Document) Defaults() []byte {
	raw, _ := d.top.Raw(KeyBlockDefaults)
	return append([]byte(nil), raw...)
}

// TopLevelKeys returns the top-level keys in file order.
func (d *Document) TopLevelKeys() []string { return d.top.Keys() }

// ImagePath resolves the source image of the record at i.
func (d *Document) ImagePath(i int) (string, error) {
	r, ok := d.store.Get(i)
	if !ok {
		return "", indexError("image_path", i, d.store.Len())
	}
	res, err := d.resolver.ResolveRecord(r)
	if err != nil {
		return "", faults.Wrap(faults.ErrNotFound, component, "image_path", fmt.Sprintf("record %d", i), err)
	}
	return res.Path, nil
}

func indexError(operation string, i, n int) error {
	return faults.Wrap(faults.ErrStructural, component, operation,
		fmt.Sprintf("index %d out of range [0,%d)", i, n), nil)
}

// relSlash returns path relative to base with forward slashes.
func relSlash(base, path string) (string, error) {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}
