package filter

import (
	"context"
	"image"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/photomosaic-mcp/internal/mosaic"
)

// Resize scales an image with bilinear interpolation.
//
// Width and Height, when set, give the exact output size. Otherwise the
// output is PercentX and PercentY of the input size, rounded down and at
// least one pixel.
type Resize struct {
	Width    int `json:"width,omitempty"`
	Height   int `json:"height,omitempty"`
	PercentX int `json:"percent_x,omitempty"`
	PercentY int `json:"percent_y,omitempty"`
}

func (Resize) Kind() Kind { return KindResize }

func (f Resize) validate() error {
	if f.Width < 0 {
		return &mosaic.ValidationError{Field: "width", Value: f.Width}
	}
	if f.Height < 0 {
		return &mosaic.ValidationError{Field: "height", Value: f.Height}
	}
	if f.Width == 0 {
		if err := positive("percent_x", f.PercentX); err != nil {
			return err
		}
	}
	if f.Height == 0 {
		if err := positive("percent_y", f.PercentY); err != nil {
			return err
		}
	}
	return nil
}

// Size returns the output size for an input of the given bounds.
func (f Resize) Size(b image.Rectangle) image.Point {
	w, h := f.Width, f.Height
	if w == 0 {
		w = max(b.Dx()*f.PercentX/100, 1)
	}
	if h == 0 {
		h = max(b.Dy()*f.PercentY/100, 1)
	}
	return image.Pt(w, h)
}

func (f Resize) Apply(ctx context.Context, img image.Image) (image.Image, error) {
	if err := begin(ctx, f, img); err != nil {
		return nil, err
	}
	size := f.Size(img.Bounds())
	return imaging.Resize(img, size.X, size.Y, imaging.Linear), nil
}
