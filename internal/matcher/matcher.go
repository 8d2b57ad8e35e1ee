// Package matcher answers nearest-color queries over a color index.
//
// The Matcher is a balanced 3-dimensional k-d tree over the (R,G,B) average
// colors of the tile records. Queries run in expected O(log n) time instead
// of the O(n) of a linear scan. Distances are squared Euclidean distances on
// integer channels, so comparisons are exact.
//
// When several tiles are equally close, the one that appears first in the
// index wins. Because a persisted index reloads in the same order, tie-breaks
// survive a save/load round trip.
//
// A Matcher is immutable after New returns and is safe for unsynchronized
// concurrent queries.
package matcher

import (
	"errors"
	"sort"

	"github.com/ironsheep/photomosaic-mcp/internal/imaging"
	"github.com/ironsheep/photomosaic-mcp/internal/index"
)

// ErrNoTilesAvailable is returned by queries against an index with no
// usable tiles.
var ErrNoTilesAvailable = errors.New("no tiles available: the color index is empty")

// point is one record in tree order: its color and its position in the index.
type point struct {
	c   [3]int
	seq int
}

// node is a k-d tree node. Children are indices into Matcher.nodes, -1 when
// absent.
type node struct {
	p           point
	axis        int
	left, right int
}

// Matcher is a k-d tree over the colors of a color index.
type Matcher struct {
	records []index.TileRecord
	nodes   []node
	root    int
}

// New builds a balanced k-d tree over records.
//
// The slice is copied; the matcher keeps no reference to the caller's data.
// Construction sorts each subtree along its splitting axis and takes the
// median, cycling axes R, G, B by depth.
func New(records []index.TileRecord) *Matcher {
	m := &Matcher{
		records: make([]index.TileRecord, len(records)),
		root:    -1,
	}
	copy(m.records, records)

	pts := make([]point, len(records))
	for i, r := range records {
		pts[i] = point{c: [3]int{int(r.Color.R), int(r.Color.G), int(r.Color.B)}, seq: i}
	}
	m.nodes = make([]node, 0, len(pts))
	m.root = m.build(pts, 0)
	return m
}

// FromIndex builds a matcher over every record of ix.
func FromIndex(ix *index.ColorIndex) *Matcher {
	return New(ix.Records())
}

func (m *Matcher) build(pts []point, depth int) int {
	if len(pts) == 0 {
		return -1
	}
	axis := depth % 3
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].c[axis] != pts[j].c[axis] {
			return pts[i].c[axis] < pts[j].c[axis]
		}
		return pts[i].seq < pts[j].seq
	})
	mid := len(pts) / 2

	idx := len(m.nodes)
	m.nodes = append(m.nodes, node{p: pts[mid], axis: axis})
	left := m.build(pts[:mid], depth+1)
	right := m.build(pts[mid+1:], depth+1)
	m.nodes[idx].left = left
	m.nodes[idx].right = right
	return idx
}

// Len returns the number of tiles the matcher can answer with.
func (m *Matcher) Len() int {
	return len(m.records)
}

// Nearest returns the tile whose average color is closest to c.
//
// Ties go to the tile with the lowest index position. Returns
// ErrNoTilesAvailable when the matcher holds no tiles.
func (m *Matcher) Nearest(c imaging.RGB) (index.TileRecord, error) {
	if m.root < 0 {
		return index.TileRecord{}, ErrNoTilesAvailable
	}
	q := [3]int{int(c.R), int(c.G), int(c.B)}
	best := searchState{seq: -1}
	m.search(m.root, q, &best)
	return m.records[best.seq], nil
}

type searchState struct {
	dist int
	seq  int
}

// better reports whether a candidate at distance d with index position seq
// beats the current best.
func (s *searchState) better(d, seq int) bool {
	return s.seq < 0 || d < s.dist || (d == s.dist && seq < s.seq)
}

func (m *Matcher) search(ni int, q [3]int, best *searchState) {
	if ni < 0 {
		return
	}
	n := &m.nodes[ni]
	if d := dist2(n.p.c, q); best.better(d, n.p.seq) {
		best.dist, best.seq = d, n.p.seq
	}

	diff := q[n.axis] - n.p.c[n.axis]
	near, far := n.left, n.right
	if diff > 0 {
		near, far = n.right, n.left
	}
	m.search(near, q, best)
	// Equal-distance points across the plane can still win the tie-break,
	// so the far side is pruned only when strictly farther.
	if diff*diff <= best.dist {
		m.search(far, q, best)
	}
}

func dist2(a, b [3]int) int {
	dr, dg, db := a[0]-b[0], a[1]-b[1], a[2]-b[2]
	return dr*dr + dg*dg + db*db
}

// BruteForceNearest answers the same query as Matcher.Nearest with a linear
// scan, using the same distance and tie-break rule.
func BruteForceNearest(records []index.TileRecord, c imaging.RGB) (index.TileRecord, error) {
	if len(records) == 0 {
		return index.TileRecord{}, ErrNoTilesAvailable
	}
	q := [3]int{int(c.R), int(c.G), int(c.B)}
	best := searchState{seq: -1}
	for i, r := range records {
		d := dist2([3]int{int(r.Color.R), int(r.Color.G), int(r.Color.B)}, q)
		if best.better(d, i) {
			best.dist, best.seq = d, i
		}
	}
	return records[best.seq], nil
}
