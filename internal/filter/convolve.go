package filter

import (
	"context"
	"image"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/convolution"
	"github.com/anthonynsimon/bild/effect"
)

// Blur applies a Gaussian blur of the given radius in pixels.
type Blur struct {
	Radius int `json:"radius"`
}

func (Blur) Kind() Kind        { return KindBlur }
func (f Blur) validate() error { return positive("radius", f.Radius) }

func (f Blur) Apply(ctx context.Context, img image.Image) (image.Image, error) {
	if err := begin(ctx, f, img); err != nil {
		return nil, err
	}
	return blur.Gaussian(img, float64(f.Radius)), nil
}

// Sharpen applies a 3×3 sharpening kernel.
type Sharpen struct{}

func (Sharpen) Kind() Kind      { return KindSharpen }
func (Sharpen) validate() error { return nil }

func (f Sharpen) Apply(ctx context.Context, img image.Image) (image.Image, error) {
	if err := begin(ctx, f, img); err != nil {
		return nil, err
	}
	return effect.Sharpen(img), nil
}

// Emboss applies a 3×3 emboss kernel.
type Emboss struct{}

func (Emboss) Kind() Kind      { return KindEmboss }
func (Emboss) validate() error { return nil }

func (f Emboss) Apply(ctx context.Context, img image.Image) (image.Image, error) {
	if err := begin(ctx, f, img); err != nil {
		return nil, err
	}
	return effect.Emboss(img), nil
}

// FindEdges applies a Laplacian-style edge kernel of the given radius.
// Uniform regions become black.
type FindEdges struct {
	Radius int `json:"radius"`
}

func (FindEdges) Kind() Kind        { return KindFindEdges }
func (f FindEdges) validate() error { return positive("radius", f.Radius) }

func (f FindEdges) Apply(ctx context.Context, img image.Image) (image.Image, error) {
	if err := begin(ctx, f, img); err != nil {
		return nil, err
	}
	return effect.EdgeDetection(img, float64(f.Radius)), nil
}

// CustomDiagonal averages each pixel along the main diagonal of a
// (2·Intensity+1)-square window, producing a diagonal motion blur.
type CustomDiagonal struct {
	Intensity int `json:"intensity"`
}

func (CustomDiagonal) Kind() Kind        { return KindCustomDiagonal }
func (f CustomDiagonal) validate() error { return positive("intensity", f.Intensity) }

func (f CustomDiagonal) Apply(ctx context.Context, img image.Image) (image.Image, error) {
	if err := begin(ctx, f, img); err != nil {
		return nil, err
	}
	return convolution.Convolve(img, diagonalKernel(f.Intensity), &convolution.Options{
		Bias:      0,
		Wrap:      false,
		KeepAlpha: true,
	}), nil
}

// diagonalKernel returns an n×n kernel, n = 2r+1, whose diagonal entries
// are 1/n and all others zero.
func diagonalKernel(r int) *convolution.Kernel {
	n := 2*r + 1
	k := convolution.NewKernel(n, n)
	for i := 0; i < n; i++ {
		k.Matrix[i*n+i] = 1 / float64(n)
	}
	return k
}
