package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// writeTestPNG writes a solid-color PNG into dir and returns its path.
func writeTestPNG(t *testing.T, dir, name string, width, height int, c color.Color) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, createInMemoryImage(width, height, c)); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

// writeTruncatedPNG writes a PNG with a valid header whose pixel data is cut
// short, so DecodeConfig succeeds while Decode fails.
func writeTruncatedPNG(t *testing.T, dir, name string) string {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, createPatternImage(64, 64)); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	data := buf.Bytes()
	path := filepath.Join(dir, name)
	// IHDR ends at byte 33; keep a little of the following chunk.
	if err := os.WriteFile(path, data[:40], 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	return path
}

func TestVerify_ValidImage(t *testing.T) {
	dir := t.TempDir()
	path := writeTestPNG(t, dir, "ok.png", 30, 20, color.RGBA{1, 2, 3, 255})

	cfg, err := Verify(path)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if cfg.Width != 30 || cfg.Height != 20 {
		t.Errorf("config: got %dx%d, want 30x20", cfg.Width, cfg.Height)
	}
}

func TestVerify_Corrupt(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content []byte
	}{
		{"empty file", nil},
		{"text file", []byte("this is not an image")},
		{"png signature only", []byte("\x89PNG\r\n\x1a\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".png")
			if err := os.WriteFile(path, tt.content, 0o644); err != nil {
				t.Fatalf("failed to write file: %v", err)
			}
			_, err := Verify(path)
			if !errors.Is(err, ErrCorruptImage) {
				t.Errorf("Verify: got %v, want ErrCorruptImage", err)
			}
		})
	}
}

func TestVerify_MissingFile(t *testing.T) {
	_, err := Verify(filepath.Join(t.TempDir(), "missing.png"))
	if !errors.Is(err, ErrCorruptImage) {
		t.Errorf("Verify: got %v, want ErrCorruptImage", err)
	}
}

func TestDecodeVerified_TruncatedPixelData(t *testing.T) {
	dir := t.TempDir()
	path := writeTruncatedPNG(t, dir, "truncated.png")

	// The header alone is fine...
	if _, err := Verify(path); err != nil {
		t.Fatalf("Verify should accept a valid header: %v", err)
	}
	// ...but the full decode is not.
	_, err := DecodeVerified(path)
	if !errors.Is(err, ErrCorruptImage) {
		t.Errorf("DecodeVerified: got %v, want ErrCorruptImage", err)
	}
}

func TestDecodeVerified_Valid(t *testing.T) {
	dir := t.TempDir()
	path := writeTestPNG(t, dir, "ok.png", 8, 6, color.RGBA{9, 8, 7, 255})

	img, err := DecodeVerified(path)
	if err != nil {
		t.Fatalf("DecodeVerified failed: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 8, 6) {
		t.Errorf("bounds: got %v", img.Bounds())
	}
}
