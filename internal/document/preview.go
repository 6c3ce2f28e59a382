package document

import (
	"fmt"
	"image"

	"spritedeck/internal/faults"
	"spritedeck/internal/preview"
	"spritedeck/internal/thumbnail"
)

// Preview returns the source image of record i scaled to fit size, using the
// preview cache.
func (d *Document) Preview(i, size int) (*image.NRGBA, error) {
	if size <= 0 {
		return nil, faults.Wrap(faults.ErrImage, component, "preview", fmt.Sprintf("invalid size %d", size), nil)
	}
	r, ok := d.store.Get(i)
	if !ok {
		return nil, indexError("preview", i, d.store.Len())
	}
	src, _ := r.SourceID()
	path, err := d.ImagePath(i)
	if err != nil {
		return nil, err
	}
	return d.previews.Get(preview.Key{SourceID: src, Size: size}, func() (*image.NRGBA, error) {
		return thumbnail.Render(path, size)
	})
}
