package mosaic

import (
	"image"
	"testing"
)

func TestPartition_Coverage(t *testing.T) {
	tests := []struct {
		name          string
		bounds        image.Rectangle
		width, height int
		wantCount     int
	}{
		{"exact fit", image.Rect(0, 0, 8, 8), 4, 4, 4},
		{"clipped right and bottom", image.Rect(0, 0, 5, 5), 2, 2, 9},
		{"single pixel blocks", image.Rect(0, 0, 3, 2), 1, 1, 6},
		{"block larger than canvas", image.Rect(0, 0, 3, 3), 10, 10, 1},
		{"non-square blocks", image.Rect(0, 0, 10, 7), 4, 3, 9},
		{"offset bounds", image.Rect(5, 5, 12, 9), 3, 3, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocks := Partition(tt.bounds, tt.width, tt.height)
			if len(blocks) != tt.wantCount {
				t.Fatalf("got %d blocks, want %d", len(blocks), tt.wantCount)
			}

			covered := make(map[image.Point]int)
			for _, b := range blocks {
				if !b.Rect.In(tt.bounds) {
					t.Errorf("block %v extends outside %v", b.Rect, tt.bounds)
				}
				if b.Rect.Empty() {
					t.Errorf("empty block %v", b.Rect)
				}
				for y := b.Rect.Min.Y; y < b.Rect.Max.Y; y++ {
					for x := b.Rect.Min.X; x < b.Rect.Max.X; x++ {
						covered[image.Pt(x, y)]++
					}
				}
			}
			for y := tt.bounds.Min.Y; y < tt.bounds.Max.Y; y++ {
				for x := tt.bounds.Min.X; x < tt.bounds.Max.X; x++ {
					switch n := covered[image.Pt(x, y)]; n {
					case 1:
					case 0:
						t.Errorf("pixel (%d,%d) not covered", x, y)
					default:
						t.Errorf("pixel (%d,%d) covered %d times", x, y, n)
					}
				}
			}
		})
	}
}

func TestPartition_RowMajorOrder(t *testing.T) {
	blocks := Partition(image.Rect(0, 0, 5, 3), 2, 2)
	want := []image.Rectangle{
		image.Rect(0, 0, 2, 2), image.Rect(2, 0, 4, 2), image.Rect(4, 0, 5, 2),
		image.Rect(0, 2, 2, 3), image.Rect(2, 2, 4, 3), image.Rect(4, 2, 5, 3),
	}
	if len(blocks) != len(want) {
		t.Fatalf("got %d blocks, want %d", len(blocks), len(want))
	}
	for i, b := range blocks {
		if b.Rect != want[i] {
			t.Errorf("block %d: got %v, want %v", i, b.Rect, want[i])
		}
	}
}

func TestPartition_Degenerate(t *testing.T) {
	if got := Partition(image.Rectangle{}, 2, 2); got != nil {
		t.Errorf("empty bounds: got %d blocks, want none", len(got))
	}
	if got := Partition(image.Rect(0, 0, 4, 4), 0, 2); got != nil {
		t.Errorf("zero width: got %d blocks, want none", len(got))
	}
	if got := Partition(image.Rect(0, 0, 4, 4), 2, -1); got != nil {
		t.Errorf("negative height: got %d blocks, want none", len(got))
	}
}

func TestBlock_OriginAndSize(t *testing.T) {
	b := Block{Rect: image.Rect(4, 6, 7, 8)}
	if b.Origin() != image.Pt(4, 6) {
		t.Errorf("Origin: got %v", b.Origin())
	}
	if b.Size() != image.Pt(3, 2) {
		t.Errorf("Size: got %v", b.Size())
	}
}
