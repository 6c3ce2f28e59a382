package thumbnail

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

// toNRGBA converts any decoded image to straight-alpha RGBA so transparency
// survives resampling.
func toNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

// fitWithin returns the largest size with the source aspect ratio whose longest
// side is at most limit. Images already inside the box are returned unchanged.
func fitWithin(width, height, limit int) (int, int) {
	if width <= limit && height <= limit {
		return width, height
	}
	if width >= height {
		h := int(math.Round(float64(height) * float64(limit) / float64(width)))
		return limit, max(h, 1)
	}
	w := int(math.Round(float64(width) * float64(limit) / float64(height)))
	return max(w, 1), limit
}

// resample scales src into the box limit x limit with Catmull-Rom filtering.
func resample(src *image.NRGBA, limit int) *image.NRGBA {
	b := src.Bounds()
	w, h := fitWithin(b.Dx(), b.Dy(), limit)
	if w == b.Dx() && h == b.Dy() {
		return src
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}
