package imaging

import (
	"bytes"
	"encoding/base64"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"
)

func TestDeliver_Inline(t *testing.T) {
	img := createInMemoryImage(12, 7, color.RGBA{10, 20, 30, 255})

	res, err := Deliver(img, "")
	if err != nil {
		t.Fatalf("Deliver failed: %v", err)
	}
	if res.Width != 12 || res.Height != 7 {
		t.Errorf("size: got %dx%d, want 12x7", res.Width, res.Height)
	}
	if res.MimeType != "image/png" || res.Path != "" {
		t.Errorf("got mime %q path %q", res.MimeType, res.Path)
	}

	data, err := base64.StdEncoding.DecodeString(res.ImageBase64)
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}
	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to decode PNG: %v", err)
	}
	if got := FromColor(decoded.At(3, 3)); got != (RGB{10, 20, 30}) {
		t.Errorf("pixel: got %v", got)
	}
}

func TestDeliver_ToFile(t *testing.T) {
	dir := t.TempDir()
	img := createInMemoryImage(5, 4, color.RGBA{200, 0, 0, 255})

	tests := []struct {
		name string
		mime string
	}{
		{"out.png", "image/png"},
		{"out.jpg", "image/jpeg"},
		{"out.bmp", "image/bmp"},
	}
	for _, tt := range tests {
		path := filepath.Join(dir, tt.name)
		res, err := Deliver(img, path)
		if err != nil {
			t.Fatalf("%s: Deliver failed: %v", tt.name, err)
		}
		if res.Path != path || res.ImageBase64 != "" || res.MimeType != tt.mime {
			t.Errorf("%s: got %+v", tt.name, res)
		}
		info, err := Describe(path)
		if err != nil {
			t.Fatalf("%s: Describe failed: %v", tt.name, err)
		}
		if info.Width != 5 || info.Height != 4 {
			t.Errorf("%s: saved size %dx%d", tt.name, info.Width, info.Height)
		}
	}
}

func TestDeliver_UnknownExtension(t *testing.T) {
	img := createInMemoryImage(2, 2, color.RGBA{A: 255})
	if _, err := Deliver(img, filepath.Join(t.TempDir(), "out.xyz")); err == nil {
		t.Error("expected error for unknown extension")
	}
}

func TestDescribe(t *testing.T) {
	dir := t.TempDir()
	path := writeTestPNG(t, dir, "a.png", 9, 3, color.RGBA{1, 2, 3, 255})

	info, err := Describe(path)
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}
	if info.Width != 9 || info.Height != 3 || info.Format != "png" || info.Size <= 0 {
		t.Errorf("got %+v", info)
	}

	if _, err := Describe(filepath.Join(dir, "missing.png")); err == nil {
		t.Error("expected error for missing file")
	}
}
