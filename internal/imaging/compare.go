package imaging

import (
	"fmt"
	"image"
	"math"
)

// Comparison summarizes how closely two equally sized images match.
type Comparison struct {
	// SimilarityScore is the fraction of pixels whose mean channel
	// difference is at most DifferenceThreshold.
	SimilarityScore float64 `json:"similarity_score"`
	PixelsDifferent int     `json:"pixels_different"`
	TotalPixels     int     `json:"total_pixels"`

	// AverageColorDiff is the mean absolute channel difference, 0–255.
	AverageColorDiff float64 `json:"average_color_diff"`

	// MeanDeltaE is the mean CIEDE2000 distance between corresponding
	// pixels, ×100 so that 1.0 is about one just-noticeable difference.
	MeanDeltaE float64 `json:"mean_delta_e"`
}

// DifferenceThreshold is the mean channel difference above which a pixel
// counts as different.
const DifferenceThreshold = 10

// Compare measures the per-pixel difference between a and b, which must
// have the same dimensions. Both are compared from their own bounds' origin.
func Compare(a, b image.Image) (*Comparison, error) {
	ab, bb := a.Bounds(), b.Bounds()
	if ab.Size() != bb.Size() {
		return nil, fmt.Errorf("cannot compare %dx%d image with %dx%d image",
			ab.Dx(), ab.Dy(), bb.Dx(), bb.Dy())
	}
	total := ab.Dx() * ab.Dy()
	if total == 0 {
		return nil, fmt.Errorf("cannot compare empty images")
	}

	var (
		different int
		colorDiff float64
		deltaE    float64
	)
	for dy := 0; dy < ab.Dy(); dy++ {
		for dx := 0; dx < ab.Dx(); dx++ {
			c1 := FromColor(a.At(ab.Min.X+dx, ab.Min.Y+dy))
			c2 := FromColor(b.At(bb.Min.X+dx, bb.Min.Y+dy))

			diff := float64(absDiff(c1.R, c2.R)+absDiff(c1.G, c2.G)+absDiff(c1.B, c2.B)) / 3
			colorDiff += diff
			if diff > DifferenceThreshold {
				different++
			}
			if c1 != c2 {
				deltaE += c1.colorful().DistanceCIEDE2000(c2.colorful())
			}
		}
	}

	return &Comparison{
		SimilarityScore:  math.Round((1-float64(different)/float64(total))*1000) / 1000,
		PixelsDifferent:  different,
		TotalPixels:      total,
		AverageColorDiff: math.Round(colorDiff/float64(total)*100) / 100,
		MeanDeltaE:       math.Round(deltaE/float64(total)*100*100) / 100,
	}, nil
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
