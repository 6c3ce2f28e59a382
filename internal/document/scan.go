package document

import (
	"fmt"
	"image/png"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"spritedeck/internal/faults"
	"spritedeck/internal/logging"
	"spritedeck/internal/sprite"
	"spritedeck/internal/textutil"
)

// MiscCategory is assigned to images found directly in the scanned folder.
const MiscCategory = "misc"

// Scan walks folder for PNG files whose stem is not already a source ID and
// that no record resolves to, and returns a proposed record for each, in walk
// order. An empty folder argument
// scans the source root. A missing folder yields no records.
func (d *Document) Scan(folder string) ([]sprite.Record, error) {
	if folder == "" {
		folder = d.opts.SourceRoot
	}
	if folder == "" {
		return nil, faults.Wrap(faults.ErrConfiguration, component, "scan", "no folder and no source root", nil)
	}
	if info, err := os.Stat(folder); err != nil || !info.IsDir() {
		return nil, nil
	}

	known := make(map[string]struct{})
	for _, id := range d.store.SourceIDs() {
		known[id] = struct{}{}
	}
	claimed := make(map[string]struct{})
	for _, r := range d.store.Records() {
		if res, err := d.resolver.ResolveRecord(r); err == nil {
			claimed[filepath.Clean(res.Path)] = struct{}{}
		}
	}

	var found []sprite.Record
	err := filepath.WalkDir(folder, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(p), ".png") {
			return nil
		}
		stem := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		if isThumbnailName(filepath.Base(filepath.Dir(p)), stem) {
			return nil
		}
		if _, exists := known[stem]; exists {
			return nil
		}
		if _, exists := claimed[filepath.Clean(p)]; exists {
			return nil
		}
		known[stem] = struct{}{}

		rel, err := relSlash(folder, p)
		if err != nil {
			return nil
		}
		category := path.Dir(rel)
		if category == "." || category == "" {
			category = MiscCategory
		}
		found = append(found, scannedRecord(p, category, stem))
		return nil
	})
	if err != nil {
		return nil, faults.Wrap(faults.ErrIO, component, "scan", fmt.Sprintf("walk %s", folder), err)
	}
	d.logger.Debug("scan complete",
		logging.String(logging.FieldPath, folder),
		logging.Int("found", len(found)))
	return found, nil
}

// AddScanned appends records and returns their positions.
func (d *Document) AddScanned(records []sprite.Record) []int {
	out := make([]int, 0, len(records))
	for _, r := range records {
		out = append(out, d.Append(r))
	}
	return out
}

func scannedRecord(file, category, stem string) sprite.Record {
	var r sprite.Record
	r.SetString(sprite.KeyCategory, category)
	r.SetString(sprite.KeyDisplayText, textutil.DisplayTextFromStem(stem))
	r.SetString(sprite.KeySourceID, stem)
	if w, h, ok := pngSize(file); ok {
		r.SetInt(sprite.KeyWidth, w)
		r.SetInt(sprite.KeyHeight, h)
	}
	return r
}

func pngSize(file string) (int, int, bool) {
	f, err := os.Open(file)
	if err != nil {
		return 0, 0, false
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil || cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, 0, false
	}
	return cfg.Width, cfg.Height, true
}

// isThumbnailName matches <dir>/<dir>_<size>.png, the layout the thumbnail
// engine writes.
func isThumbnailName(dir, stem string) bool {
	prefix := dir + "_"
	if !strings.HasPrefix(stem, prefix) {
		return false
	}
	n, err := strconv.Atoi(stem[len(prefix):])
	return err == nil && n > 0
}
