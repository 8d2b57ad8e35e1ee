package matcher

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/ironsheep/photomosaic-mcp/internal/imaging"
	"github.com/ironsheep/photomosaic-mcp/internal/index"
)

func rec(path string, r, g, b uint8) index.TileRecord {
	return index.TileRecord{Path: path, Color: imaging.RGB{R: r, G: g, B: b}}
}

func TestNearest_KnownColors(t *testing.T) {
	m := New([]index.TileRecord{
		rec("black", 0, 0, 0),
		rec("white", 255, 255, 255),
		rec("gray", 128, 128, 128),
	})

	tests := []struct {
		query imaging.RGB
		want  string
	}{
		{imaging.RGB{R: 10, G: 10, B: 10}, "black"},
		{imaging.RGB{R: 130, G: 130, B: 130}, "gray"},
		{imaging.RGB{R: 250, G: 240, B: 255}, "white"},
		{imaging.RGB{R: 0, G: 0, B: 0}, "black"},
	}

	for _, tt := range tests {
		t.Run(tt.query.String(), func(t *testing.T) {
			got, err := m.Nearest(tt.query)
			if err != nil {
				t.Fatalf("Nearest failed: %v", err)
			}
			if got.Path != tt.want {
				t.Errorf("got %s, want %s", got.Path, tt.want)
			}
		})
	}
}

func TestNearest_Empty(t *testing.T) {
	for _, m := range []*Matcher{New(nil), FromIndex(index.New(nil))} {
		_, err := m.Nearest(imaging.RGB{R: 1, G: 2, B: 3})
		if !errors.Is(err, ErrNoTilesAvailable) {
			t.Errorf("Nearest: got %v, want ErrNoTilesAvailable", err)
		}
		if m.Len() != 0 {
			t.Errorf("Len: got %d, want 0", m.Len())
		}
	}
}

func TestNearest_TieBreakFirstInserted(t *testing.T) {
	tests := []struct {
		name    string
		records []index.TileRecord
		query   imaging.RGB
		want    string
	}{
		{
			"identical colors",
			[]index.TileRecord{rec("first", 50, 50, 50), rec("second", 50, 50, 50), rec("third", 50, 50, 50)},
			imaging.RGB{R: 50, G: 50, B: 50},
			"first",
		},
		{
			"equidistant on one axis",
			[]index.TileRecord{rec("hi", 110, 0, 0), rec("lo", 90, 0, 0)},
			imaging.RGB{R: 100, G: 0, B: 0},
			"hi",
		},
		{
			"equidistant, later inserted sorts lower",
			[]index.TileRecord{rec("a", 200, 100, 100), rec("b", 0, 100, 100), rec("c", 100, 0, 100), rec("d", 100, 200, 100)},
			imaging.RGB{R: 100, G: 100, B: 100},
			"a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New(tt.records).Nearest(tt.query)
			if err != nil {
				t.Fatalf("Nearest failed: %v", err)
			}
			if got.Path != tt.want {
				t.Errorf("got %s, want %s", got.Path, tt.want)
			}
		})
	}
}

func TestNearest_MatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for _, n := range []int{1, 2, 7, 64, 500} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			records := make([]index.TileRecord, n)
			for i := range records {
				// A coarse palette forces many exact ties.
				records[i] = rec(fmt.Sprintf("t%03d", i),
					uint8(rng.Intn(8)*32), uint8(rng.Intn(8)*32), uint8(rng.Intn(8)*32))
			}
			m := New(records)

			for q := 0; q < 300; q++ {
				query := imaging.RGB{R: uint8(rng.Intn(256)), G: uint8(rng.Intn(256)), B: uint8(rng.Intn(256))}
				got, err := m.Nearest(query)
				if err != nil {
					t.Fatalf("Nearest failed: %v", err)
				}
				want, _ := BruteForceNearest(records, query)
				if got != want {
					t.Fatalf("query %v: tree %+v, brute force %+v", query, got, want)
				}
			}
		})
	}
}

func TestNew_CopiesInput(t *testing.T) {
	records := []index.TileRecord{rec("a", 0, 0, 0)}
	m := New(records)
	records[0].Path = "mutated"

	got, _ := m.Nearest(imaging.RGB{})
	if got.Path != "a" {
		t.Errorf("matcher should not alias caller slice, got %s", got.Path)
	}
}

func TestBruteForceNearest_Empty(t *testing.T) {
	if _, err := BruteForceNearest(nil, imaging.RGB{}); !errors.Is(err, ErrNoTilesAvailable) {
		t.Errorf("got %v, want ErrNoTilesAvailable", err)
	}
}
