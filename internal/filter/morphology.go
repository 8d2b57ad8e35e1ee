package filter

import (
	"context"
	"image"

	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
)

// Min converts the image to gray and replaces every pixel with the darkest
// value within Radius (erosion).
type Min struct {
	Radius int `json:"radius"`
}

func (Min) Kind() Kind        { return KindMin }
func (f Min) validate() error { return positive("radius", f.Radius) }

func (f Min) Apply(ctx context.Context, img image.Image) (image.Image, error) {
	if err := begin(ctx, f, img); err != nil {
		return nil, err
	}
	return effect.Erode(imaging.Grayscale(img), float64(f.Radius)), nil
}

// Max converts the image to gray and replaces every pixel with the
// brightest value within Radius (dilation).
type Max struct {
	Radius int `json:"radius"`
}

func (Max) Kind() Kind        { return KindMax }
func (f Max) validate() error { return positive("radius", f.Radius) }

func (f Max) Apply(ctx context.Context, img image.Image) (image.Image, error) {
	if err := begin(ctx, f, img); err != nil {
		return nil, err
	}
	return effect.Dilate(imaging.Grayscale(img), float64(f.Radius)), nil
}
