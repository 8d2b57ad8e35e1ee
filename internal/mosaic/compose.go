package mosaic

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"runtime"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/photomosaic-mcp/internal/imaging"
	"github.com/ironsheep/photomosaic-mcp/internal/index"
)

// Matcher finds the library tile closest to a color.
type Matcher interface {
	Nearest(c imaging.RGB) (index.TileRecord, error)
}

// TileSource serves library tiles resized to exact block dimensions.
type TileSource interface {
	Get(ctx context.Context, path string, width, height int) (*image.NRGBA, error)
}

// Placement records which tile was pasted into which block.
type Placement struct {
	Block    Block       `json:"block"`
	Average  imaging.RGB `json:"average"`
	TilePath string      `json:"tile_path"`
}

// Result is a composed mosaic.
type Result struct {
	JobID uuid.UUID

	// Image has the dimensions of the upscaled canvas.
	Image image.Image

	// Placements holds one entry per block, in row-major block order.
	Placements []Placement
}

// Compose builds the mosaic described by job.
//
// Parameters:
//   - ctx: Cancels the job. It is checked once per block; cancellation
//     aborts the whole job.
//   - job: Validated first; invalid parameters fail before any work.
//   - m: Answers nearest-color queries for block averages.
//   - tiles: Serves resized tile bitmaps.
//   - workers: Size of the block worker pool; ≤ 0 selects runtime.NumCPU().
//
// # Algorithm
//
//  1. Upscale the target by job.UpscaleFactor with nearest-neighbor
//     interpolation.
//  2. Partition the canvas into blocks, clipping the last row and column.
//  3. For each block, in parallel: average its pixels, find the nearest
//     tile, fetch the tile at the block's exact size and paste it into the
//     block's region of the output canvas. Blocks are disjoint, so workers
//     never write the same pixels.
//  4. Wait for every block.
//
// # Errors
//
// Any block failure (ErrNoTilesAvailable, a tile that cannot be loaded,
// cancellation) fails the job. No partial image is returned.
func Compose(ctx context.Context, job Job, m Matcher, tiles TileSource, workers int) (*Result, error) {
	if err := job.Validate(); err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	src := imaging.Upscale(job.Target, job.UpscaleFactor)
	bounds := src.Bounds()
	blocks := Partition(bounds, job.BlockWidth, job.BlockHeight)

	canvas := image.NewNRGBA(bounds)
	placements := make([]Placement, len(blocks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, blk := range blocks {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			avg := imaging.AverageColor(src, blk.Rect)
			rec, err := m.Nearest(avg)
			if err != nil {
				return err
			}
			size := blk.Size()
			tile, err := tiles.Get(gctx, rec.Path, size.X, size.Y)
			if err != nil {
				return fmt.Errorf("block at %v: %w", blk.Origin(), err)
			}
			draw.Draw(canvas, blk.Rect, tile, tile.Bounds().Min, draw.Src)
			placements[i] = Placement{Block: blk, Average: avg, TilePath: rec.Path}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &Result{
		JobID:      job.ID,
		Image:      matchModel(job.Target, canvas),
		Placements: placements,
	}, nil
}

// matchModel converts the composed canvas to the color model of the target
// for the common gray and RGBA cases. Everything else stays NRGBA.
func matchModel(target image.Image, canvas *image.NRGBA) image.Image {
	switch target.(type) {
	case *image.Gray:
		out := image.NewGray(canvas.Bounds())
		draw.Draw(out, out.Bounds(), canvas, canvas.Bounds().Min, draw.Src)
		return out
	case *image.RGBA:
		out := image.NewRGBA(canvas.Bounds())
		draw.Draw(out, out.Bounds(), canvas, canvas.Bounds().Min, draw.Src)
		return out
	default:
		return canvas
	}
}
