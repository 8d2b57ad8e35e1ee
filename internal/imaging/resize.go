package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// Open decodes an image file.
//
// Supported formats are PNG, JPEG, GIF, BMP, TIFF and WebP. The decoded
// image is returned as-is; use ToNRGBA to normalize the pixel layout.
func Open(path string) (image.Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	return img, nil
}

// ToNRGBA returns img as *image.NRGBA with bounds starting at (0,0).
//
// If img already is an *image.NRGBA anchored at the origin it is returned
// unchanged, otherwise a copy is made.
func ToNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	return imaging.Clone(img)
}

// Upscale enlarges img by an integer factor using nearest-neighbor
// interpolation, so each source pixel becomes a factor×factor square.
//
// A factor of 1 (or less) returns the image normalized to NRGBA without
// resampling.
func Upscale(img image.Image, factor int) *image.NRGBA {
	if factor <= 1 {
		return ToNRGBA(img)
	}
	b := img.Bounds()
	return imaging.Resize(img, b.Dx()*factor, b.Dy()*factor, imaging.NearestNeighbor)
}

// ResizeArea scales img to exactly width×height using area averaging
// (box filter). The aspect ratio of the source is not preserved.
func ResizeArea(img image.Image, width, height int) (*image.NRGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid target size %dx%d", width, height)
	}
	return imaging.Resize(img, width, height, imaging.Box), nil
}
