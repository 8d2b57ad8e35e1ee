package mosaic

import (
	"fmt"
	"image"

	"github.com/google/uuid"
)

// DefaultMaxCanvasPixels bounds the upscaled canvas when a job sets no
// limit of its own. At 4 bytes per pixel the canvas and its upscaled source
// together stay under 512 MiB.
const DefaultMaxCanvasPixels = 1 << 26

// Job describes one mosaic composition.
type Job struct {
	// ID identifies the job in logs and results. A zero ID is replaced by a
	// random one when the job is validated.
	ID uuid.UUID

	// Target is the image to reconstruct.
	Target image.Image

	// BlockWidth and BlockHeight are the block size in pixels of the
	// upscaled canvas. Both must be positive.
	BlockWidth  int
	BlockHeight int

	// UpscaleFactor multiplies the target's dimensions before partitioning.
	// Must be positive; 1 keeps the original size.
	UpscaleFactor int

	// MaxCanvasPixels caps the pixel count of the upscaled canvas. Zero
	// selects DefaultMaxCanvasPixels.
	MaxCanvasPixels int
}

// Validate checks every job parameter and assigns an ID if needed.
//
// Returns *ValidationError naming the first offending field.
func (j *Job) Validate() error {
	if j.Target == nil {
		return &ValidationError{Field: "target", Reason: "no image"}
	}
	if j.Target.Bounds().Empty() {
		return &ValidationError{Field: "target", Reason: "image has no pixels"}
	}
	if j.BlockWidth <= 0 {
		return &ValidationError{Field: "block_width", Value: j.BlockWidth}
	}
	if j.BlockHeight <= 0 {
		return &ValidationError{Field: "block_height", Value: j.BlockHeight}
	}
	if j.UpscaleFactor <= 0 {
		return &ValidationError{Field: "upscale_factor", Value: j.UpscaleFactor}
	}
	if err := j.checkCanvas(); err != nil {
		return err
	}
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	return nil
}

// checkCanvas rejects upscale factors whose canvas would exceed the pixel
// limit. Every product is compared by division first, so nothing overflows.
func (j *Job) checkCanvas() error {
	limit := j.MaxCanvasPixels
	if limit <= 0 {
		limit = DefaultMaxCanvasPixels
	}
	b := j.Target.Bounds()
	w, h, f := b.Dx(), b.Dy(), j.UpscaleFactor

	tooLarge := w > limit/f || h > limit/f
	if !tooLarge {
		cw, ch := w*f, h*f
		tooLarge = cw > limit/ch
	}
	if tooLarge {
		return &ValidationError{
			Field:  "upscale_factor",
			Value:  f,
			Reason: fmt.Sprintf("%d on a %dx%d target exceeds the canvas limit of %d pixels", f, w, h, limit),
		}
	}
	return nil
}

// CanvasSize returns the dimensions of the upscaled canvas.
func (j *Job) CanvasSize() image.Point {
	b := j.Target.Bounds()
	return image.Pt(b.Dx()*j.UpscaleFactor, b.Dy()*j.UpscaleFactor)
}
