package filter

import (
	"context"
	"errors"
	"image"

	"github.com/ironsheep/photomosaic-mcp/internal/mosaic"
)

// Mosaic rebuilds the image from library tiles using a mosaic engine whose
// index is already loaded.
type Mosaic struct {
	Engine        *mosaic.Engine `json:"-"`
	BlockWidth    int            `json:"block_width"`
	BlockHeight   int            `json:"block_height"`
	UpscaleFactor int            `json:"upscale_factor"`
}

func (Mosaic) Kind() Kind { return KindMosaic }

func (f Mosaic) validate() error {
	if f.Engine == nil {
		return errors.New("mosaic filter has no engine")
	}
	if err := positive("block_width", f.BlockWidth); err != nil {
		return err
	}
	if err := positive("block_height", f.BlockHeight); err != nil {
		return err
	}
	return positive("upscale_factor", f.UpscaleFactor)
}

func (f Mosaic) Apply(ctx context.Context, img image.Image) (image.Image, error) {
	if err := begin(ctx, f, img); err != nil {
		return nil, err
	}
	res, err := f.Engine.ComposeMosaic(ctx, mosaic.Job{
		Target:        img,
		BlockWidth:    f.BlockWidth,
		BlockHeight:   f.BlockHeight,
		UpscaleFactor: f.UpscaleFactor,
	})
	if err != nil {
		return nil, err
	}
	return res.Image, nil
}
