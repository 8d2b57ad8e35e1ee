package filter

import (
	"context"
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/disintegration/imaging"

	mimaging "github.com/ironsheep/photomosaic-mcp/internal/imaging"
	"github.com/ironsheep/photomosaic-mcp/internal/mosaic"
)

// Grayscale replaces every pixel with the mean of its three channels.
type Grayscale struct{}

func (Grayscale) Kind() Kind      { return KindGrayscale }
func (Grayscale) validate() error { return nil }

func (f Grayscale) Apply(ctx context.Context, img image.Image) (image.Image, error) {
	if err := begin(ctx, f, img); err != nil {
		return nil, err
	}
	return adjust.Apply(img, func(c color.RGBA) color.RGBA {
		m := uint8((int(c.R) + int(c.G) + int(c.B)) / 3)
		return color.RGBA{m, m, m, c.A}
	}), nil
}

// WeightedGray converts to luma with the ITU-R 601 weights
// 0.299, 0.587 and 0.114.
type WeightedGray struct{}

func (WeightedGray) Kind() Kind      { return KindWeightedGray }
func (WeightedGray) validate() error { return nil }

func (f WeightedGray) Apply(ctx context.Context, img image.Image) (image.Image, error) {
	if err := begin(ctx, f, img); err != nil {
		return nil, err
	}
	return imaging.Grayscale(img), nil
}

// Mica ANDs every pixel with a color mask, like looking through a tinted
// sheet. A mask of #ffffff leaves the image unchanged.
type Mica struct {
	Mask string `json:"mask"`
}

func (Mica) Kind() Kind { return KindMica }

func (f Mica) validate() error {
	if _, err := mimaging.ParseHex(f.Mask); err != nil {
		return &mosaic.ValidationError{Field: "mask", Reason: err.Error()}
	}
	return nil
}

func (f Mica) Apply(ctx context.Context, img image.Image) (image.Image, error) {
	if err := begin(ctx, f, img); err != nil {
		return nil, err
	}
	mask, _ := mimaging.ParseHex(f.Mask)
	return adjust.Apply(img, func(c color.RGBA) color.RGBA {
		return color.RGBA{c.R & mask.R, c.G & mask.G, c.B & mask.B, c.A}
	}), nil
}
