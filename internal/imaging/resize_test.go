package imaging

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"
)

func TestUpscale_NearestNeighbor(t *testing.T) {
	src := createPatternImage(4, 4)

	up := Upscale(src, 3)
	if up.Bounds() != image.Rect(0, 0, 12, 12) {
		t.Fatalf("bounds: got %v, want 12x12", up.Bounds())
	}

	// Every upscaled pixel must equal its source pixel exactly.
	for y := 0; y < 12; y++ {
		for x := 0; x < 12; x++ {
			want := FromColor(src.At(x/3, y/3))
			got := FromColor(up.At(x, y))
			if got != want {
				t.Fatalf("pixel (%d,%d): got %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestUpscale_FactorOneIsIdentity(t *testing.T) {
	src := createPatternImage(5, 3)

	up := Upscale(src, 1)
	if up.Bounds() != image.Rect(0, 0, 5, 3) {
		t.Fatalf("bounds: got %v", up.Bounds())
	}
	for y := 0; y < 3; y++ {
		for x := 0; x < 5; x++ {
			if FromColor(up.At(x, y)) != FromColor(src.At(x, y)) {
				t.Fatalf("pixel (%d,%d) changed", x, y)
			}
		}
	}
}

func TestToNRGBA_ReusesAnchoredNRGBA(t *testing.T) {
	n := image.NewNRGBA(image.Rect(0, 0, 3, 3))
	if ToNRGBA(n) != n {
		t.Error("ToNRGBA should not copy an origin-anchored NRGBA")
	}

	offset := image.NewNRGBA(image.Rect(2, 2, 5, 5))
	got := ToNRGBA(offset)
	if got.Bounds().Min != (image.Point{}) {
		t.Errorf("ToNRGBA should re-anchor at origin, got %v", got.Bounds())
	}
}

func TestResizeArea(t *testing.T) {
	src := createInMemoryImage(100, 50, color.RGBA{30, 60, 90, 255})

	tests := []struct {
		name          string
		width, height int
	}{
		{"downscale", 10, 5},
		{"upscale", 200, 120},
		{"aspect change", 7, 31},
		{"single pixel", 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResizeArea(src, tt.width, tt.height)
			if err != nil {
				t.Fatalf("ResizeArea failed: %v", err)
			}
			if got.Bounds().Dx() != tt.width || got.Bounds().Dy() != tt.height {
				t.Errorf("size: got %dx%d, want %dx%d",
					got.Bounds().Dx(), got.Bounds().Dy(), tt.width, tt.height)
			}
			if c := ImageAverage(got); c != (RGB{30, 60, 90}) {
				t.Errorf("uniform color changed: got %v", c)
			}
		})
	}

	if _, err := ResizeArea(src, 0, 5); err == nil {
		t.Error("ResizeArea should reject zero width")
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	path := writeTestPNG(t, dir, "a.png", 6, 4, color.RGBA{1, 1, 1, 255})

	img, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if img.Bounds().Dx() != 6 || img.Bounds().Dy() != 4 {
		t.Errorf("size: got %v", img.Bounds())
	}

	if _, err := Open(filepath.Join(dir, "missing.png")); err == nil {
		t.Error("Open should fail for a missing file")
	}
}
