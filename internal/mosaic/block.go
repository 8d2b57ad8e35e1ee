package mosaic

import (
	"image"
)

// Block is a rectangular region of the canvas replaced by one tile.
type Block struct {
	Rect image.Rectangle `json:"rect"`
}

// Origin returns the block's top-left corner.
func (b Block) Origin() image.Point {
	return b.Rect.Min
}

// Size returns the block's width and height.
func (b Block) Size() image.Point {
	return b.Rect.Size()
}

// Partition divides bounds into a row-major grid of blockWidth×blockHeight
// blocks.
//
// Blocks in the last column and row are clipped to the remaining pixels
// rather than padded, so the blocks cover bounds exactly, without overlap.
// The grid has ceil(W/blockWidth) × ceil(H/blockHeight) blocks. Empty
// bounds or a non-positive block size yield no blocks.
func Partition(bounds image.Rectangle, blockWidth, blockHeight int) []Block {
	if bounds.Empty() || blockWidth <= 0 || blockHeight <= 0 {
		return nil
	}
	cols := (bounds.Dx() + blockWidth - 1) / blockWidth
	rows := (bounds.Dy() + blockHeight - 1) / blockHeight

	blocks := make([]Block, 0, cols*rows)
	for y := bounds.Min.Y; y < bounds.Max.Y; y += blockHeight {
		for x := bounds.Min.X; x < bounds.Max.X; x += blockWidth {
			r := image.Rect(x, y, x+blockWidth, y+blockHeight).Intersect(bounds)
			blocks = append(blocks, Block{Rect: r})
		}
	}
	return blocks
}
