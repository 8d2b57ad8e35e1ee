package index

import (
	"github.com/ironsheep/photomosaic-mcp/internal/imaging"
)

// TileRecord is one indexed library image and its average color.
type TileRecord struct {
	Path  string      `json:"path"`
	Color imaging.RGB `json:"color"`
}

// ColorIndex is an insertion-ordered, immutable collection of tile records.
type ColorIndex struct {
	records []TileRecord
}

// New returns an index holding a copy of records, in the given order.
func New(records []TileRecord) *ColorIndex {
	cp := make([]TileRecord, len(records))
	copy(cp, records)
	return &ColorIndex{records: cp}
}

// Len returns the number of records.
func (ix *ColorIndex) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.records)
}

// At returns the i-th record in insertion order.
func (ix *ColorIndex) At(i int) TileRecord {
	return ix.records[i]
}

// Records returns a copy of all records in insertion order.
func (ix *ColorIndex) Records() []TileRecord {
	if ix == nil {
		return nil
	}
	cp := make([]TileRecord, len(ix.records))
	copy(cp, ix.records)
	return cp
}
