package thumbnail

import (
	"image"
	"image/color"
	"testing"
)

func TestFitWithin(t *testing.T) {
	tests := []struct {
		w, h, limit int
		wantW       int
		wantH       int
	}{
		{16, 16, 32, 16, 16},
		{64, 64, 32, 32, 32},
		{100, 50, 32, 32, 16},
		{50, 100, 32, 16, 32},
		{300, 1, 32, 32, 1},
		{33, 10, 32, 32, 10},
	}
	for _, tt := range tests {
		w, h := fitWithin(tt.w, tt.h, tt.limit)
		if w != tt.wantW || h != tt.wantH {
			t.Errorf("fitWithin(%d, %d, %d) = %dx%d, want %dx%d", tt.w, tt.h, tt.limit, w, h, tt.wantW, tt.wantH)
		}
	}
}

func TestResampleKeepsTransparency(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 64, 64))
	for y := range 64 {
		for x := range 64 {
			src.SetNRGBA(x, y, color.NRGBA{R: 200, A: 0})
		}
	}
	out := resample(src, 16)
	if out.Bounds().Dx() != 16 || out.Bounds().Dy() != 16 {
		t.Fatalf("bounds = %v", out.Bounds())
	}
	if a := out.NRGBAAt(8, 8).A; a != 0 {
		t.Fatalf("alpha = %d, want fully transparent", a)
	}
}

func TestToNRGBAFromPaletted(t *testing.T) {
	pal := image.NewPaletted(image.Rect(2, 2, 6, 6), color.Palette{color.Transparent, color.White})
	pal.SetColorIndex(3, 3, 1)
	got := toNRGBA(pal)
	if got.Bounds() != image.Rect(0, 0, 4, 4) {
		t.Fatalf("bounds = %v", got.Bounds())
	}
	if c := got.NRGBAAt(1, 1); c.A != 0xff || c.R != 0xff {
		t.Fatalf("pixel = %+v", c)
	}
}
