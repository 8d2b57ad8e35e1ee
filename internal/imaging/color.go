package imaging

import (
	"fmt"
	"image"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// RGB represents a 3-channel color with 8-bit components.
//
// Each component ranges from 0 to 255, where:
//   - 0 represents no intensity (black for all components)
//   - 255 represents full intensity (white for all components)
type RGB struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

// Hex returns the color as a "#RRGGBB" string.
func (c RGB) Hex() string {
	return c.colorful().Hex()
}

// String implements fmt.Stringer.
func (c RGB) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.R, c.G, c.B)
}

// Component returns channel i (0=R, 1=G, 2=B).
func (c RGB) Component(i int) int {
	switch i {
	case 0:
		return int(c.R)
	case 1:
		return int(c.G)
	default:
		return int(c.B)
	}
}

// NRGBA returns the color as an opaque color.NRGBA.
func (c RGB) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

func (c RGB) colorful() colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
}

// ParseHex parses a "#RRGGBB" (or "#RGB") color string.
func ParseHex(s string) (RGB, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return RGB{R: r, G: g, B: b}, nil
}

// FromColor converts any color.Color to RGB, dropping alpha.
//
// The color is first converted to non-premultiplied form so that translucent
// pixels keep their own hue.
func FromColor(c color.Color) RGB {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGB{R: n.R, G: n.G, B: n.B}
}

// AverageColor computes the arithmetic mean of each channel over a region.
//
// Parameters:
//   - img: The source image.
//   - r: The region to average. It is intersected with the image bounds;
//     pass img.Bounds() to average the whole image.
//
// Returns the per-channel mean truncated toward zero. An empty region (or one
// that does not intersect the image) yields black.
//
// # Fast Path
//
// *image.NRGBA sources are read directly from the pixel buffer. Other image
// types go through the generic At() accessor, which is considerably slower;
// callers that average many regions of one image should convert it once with
// ToNRGBA.
func AverageColor(img image.Image, r image.Rectangle) RGB {
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return RGB{}
	}

	var sr, sg, sb uint64
	n := uint64(r.Dx() * r.Dy())

	if src, ok := img.(*image.NRGBA); ok {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			i := src.PixOffset(r.Min.X, y)
			for x := r.Min.X; x < r.Max.X; x++ {
				sr += uint64(src.Pix[i])
				sg += uint64(src.Pix[i+1])
				sb += uint64(src.Pix[i+2])
				i += 4
			}
		}
	} else {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				c := FromColor(img.At(x, y))
				sr += uint64(c.R)
				sg += uint64(c.G)
				sb += uint64(c.B)
			}
		}
	}

	return RGB{R: uint8(sr / n), G: uint8(sg / n), B: uint8(sb / n)}
}

// ImageAverage is shorthand for AverageColor over the whole image.
func ImageAverage(img image.Image) RGB {
	return AverageColor(img, img.Bounds())
}
