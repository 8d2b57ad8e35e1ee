package imaging

import (
	"image"
	"image/draw"
)

// DrawGrid returns a copy of img with one-pixel lines on every block
// boundary of a cellWidth×cellHeight grid anchored at the image origin.
//
// It marks the block layout of a mosaic. Lines are drawn on the first row
// and column of each block after the first, so edge blocks keep their
// clipped size. A non-positive cell size returns an unmarked copy.
func DrawGrid(img image.Image, cellWidth, cellHeight int, c RGB) *image.NRGBA {
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	if cellWidth <= 0 || cellHeight <= 0 {
		return out
	}

	line := image.NewUniform(c.NRGBA())
	for x := cellWidth; x < b.Dx(); x += cellWidth {
		draw.Draw(out, image.Rect(x, 0, x+1, b.Dy()), line, image.Point{}, draw.Src)
	}
	for y := cellHeight; y < b.Dy(); y += cellHeight {
		draw.Draw(out, image.Rect(0, y, b.Dx(), y+1), line, image.Point{}, draw.Src)
	}
	return out
}
