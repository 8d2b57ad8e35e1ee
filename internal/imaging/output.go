package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/disintegration/imaging"
)

// ImageResult describes a produced image. Exactly one of Path and
// ImageBase64 is set.
type ImageResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Path        string `json:"path,omitempty"`
	ImageBase64 string `json:"image_base64,omitempty"`
	MimeType    string `json:"mime_type"`
}

// Deliver writes img to outputPath when it is non-empty, with the format
// chosen by extension. Otherwise the image is returned inline as
// base64-encoded PNG.
func Deliver(img image.Image, outputPath string) (*ImageResult, error) {
	b := img.Bounds()
	res := &ImageResult{Width: b.Dx(), Height: b.Dy()}

	if outputPath != "" {
		format, err := imaging.FormatFromFilename(outputPath)
		if err != nil {
			return nil, fmt.Errorf("unsupported output format for %s: %w", outputPath, err)
		}
		if err := imaging.Save(img, outputPath); err != nil {
			return nil, fmt.Errorf("failed to save image: %w", err)
		}
		res.Path = outputPath
		res.MimeType = mimeTypes[format]
		return res, nil
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	res.ImageBase64 = base64.StdEncoding.EncodeToString(buf.Bytes())
	res.MimeType = "image/png"
	return res, nil
}

var mimeTypes = map[imaging.Format]string{
	imaging.JPEG: "image/jpeg",
	imaging.PNG:  "image/png",
	imaging.GIF:  "image/gif",
	imaging.TIFF: "image/tiff",
	imaging.BMP:  "image/bmp",
}

// ImageInfo is the header information of an image file.
type ImageInfo struct {
	Path   string `json:"path"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
	Size   int64  `json:"size_bytes"`
}

// Describe reads the header of the image at path without decoding pixels.
func Describe(path string) (*ImageInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat image: %w", err)
	}
	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image config: %w", err)
	}
	return &ImageInfo{
		Path:   path,
		Width:  cfg.Width,
		Height: cfg.Height,
		Format: format,
		Size:   stat.Size(),
	}, nil
}
