package testsupport

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
)

// Sprite is a compact fixture description of one catalog record.
type Sprite struct {
	Category string
	Src      string
	Text     string
	Width    int
	Height   int
}

// WriteCatalog writes an assets document holding the given sprites and
// returns its path. The defaults object is written verbatim.
func WriteCatalog(t testing.TB, dir string, sprites []Sprite, defaults map[string]any) string {
	t.Helper()

	list := make([]map[string]any, 0, len(sprites))
	for _, s := range sprites {
		rec := map[string]any{"putUnder": s.Category, "src": s.Src}
		if s.Text != "" {
			rec["text"] = s.Text
		}
		if s.Width > 0 {
			rec["width"] = s.Width
		}
		if s.Height > 0 {
			rec["height"] = s.Height
		}
		list = append(list, rec)
	}
	if defaults == nil {
		defaults = map[string]any{}
	}
	data, err := json.MarshalIndent(map[string]any{"blockList": list, "blockDefaults": defaults}, "", "  ")
	if err != nil {
		t.Fatalf("marshal catalog: %v", err)
	}
	path := filepath.Join(dir, "assets.json")
	WriteFile(t, path, data)
	return path
}

// WriteSourcePNG writes the prefixed-convention source image for a sprite
// below root and returns its path.
func WriteSourcePNG(t testing.TB, root string, s Sprite, width, height int) string {
	t.Helper()

	category := filepath.FromSlash(s.Category)
	name := filepath.Base(category) + "__" + s.Src + ".png"
	if strings.Contains(s.Src, "__") {
		name = s.Src + ".png"
	}
	path := filepath.Join(root, category, name)
	WritePNG(t, path, width, height)
	return path
}
