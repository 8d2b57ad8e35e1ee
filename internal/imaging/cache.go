package imaging

import (
	"context"
	"fmt"
	"image"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// DefaultTileCacheCapacity is the capacity used when a non-positive capacity
// is requested.
const DefaultTileCacheCapacity = 256

// tileKey identifies one resized rendition of a library image.
type tileKey struct {
	path   string
	width  int
	height int
}

func (k tileKey) String() string {
	return fmt.Sprintf("%s@%dx%d", k.path, k.width, k.height)
}

// TileLoader decodes the source image for a tile path.
type TileLoader func(path string) (image.Image, error)

// TileCache provides thread-safe, bounded caching of resized tile bitmaps.
//
// Entries are keyed by (path, width, height): the same library image used at
// two block sizes occupies two entries. When the cache is full, inserting a
// new entry evicts the least recently used one.
//
// TileCache is safe for concurrent use by multiple goroutines. Concurrent
// misses for the same key are collapsed so the source is decoded and resized
// once; the waiting callers share the result.
//
// # Memory Management
//
// Memory use is bounded by capacity × the largest tile rendition. Purge()
// drops every entry, for example after the library index is reset.
//
// # Example Usage
//
//	cache := imaging.NewTileCache(512)
//	tile, err := cache.Get(ctx, "/library/cat.jpg", 16, 16)
//	if err != nil {
//	    return err
//	}
//	draw.Draw(canvas, rect, tile, image.Point{}, draw.Src)
type TileCache struct {
	entries  *lru.Cache[tileKey, *image.NRGBA]
	group    singleflight.Group
	loader   TileLoader
	capacity int

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

// TileCacheOption configures a TileCache.
type TileCacheOption func(*TileCache)

// WithLoader replaces the function used to decode tile sources. The default
// is Open.
func WithLoader(loader TileLoader) TileCacheOption {
	return func(c *TileCache) {
		c.loader = loader
	}
}

// NewTileCache creates an empty tile cache holding at most capacity entries.
//
// A capacity ≤ 0 selects DefaultTileCacheCapacity.
func NewTileCache(capacity int, opts ...TileCacheOption) *TileCache {
	if capacity <= 0 {
		capacity = DefaultTileCacheCapacity
	}
	c := &TileCache{
		loader:   Open,
		capacity: capacity,
	}
	for _, opt := range opts {
		opt(c)
	}
	// lru.NewWithEvict only fails for a non-positive size.
	entries, err := lru.NewWithEvict(capacity, func(tileKey, *image.NRGBA) {
		c.evictions.Add(1)
	})
	if err != nil {
		panic(err)
	}
	c.entries = entries
	return c
}

// Get returns the tile at path resized to exactly width×height.
//
// Parameters:
//   - ctx: Checked before a miss is served; a cancelled context returns
//     ctx.Err() without touching the disk.
//   - path: The library image path, exactly as stored in the color index.
//   - width, height: The block dimensions. Both must be positive.
//
// Returns:
//   - *image.NRGBA: The resized bitmap with bounds (0,0)-(width,height).
//     The bitmap is shared with other callers and must not be modified.
//   - error: Non-nil if the source cannot be decoded.
//
// On a miss the source is decoded, resized with area averaging and inserted,
// possibly evicting the least recently used entry.
func (c *TileCache) Get(ctx context.Context, path string, width, height int) (*image.NRGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid tile size %dx%d", width, height)
	}
	key := tileKey{path: path, width: width, height: height}
	if tile, ok := c.entries.Get(key); ok {
		c.hits.Add(1)
		return tile, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	v, err, _ := c.group.Do(key.String(), func() (interface{}, error) {
		// Another caller may have filled the entry while we waited.
		if tile, ok := c.entries.Get(key); ok {
			c.hits.Add(1)
			return tile, nil
		}
		c.misses.Add(1)
		src, err := c.loader(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load tile: %w", err)
		}
		tile, err := ResizeArea(src, width, height)
		if err != nil {
			return nil, err
		}
		c.entries.Add(key, tile)
		return tile, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*image.NRGBA), nil
}

// Contains reports whether the rendition is cached without touching its
// recency.
func (c *TileCache) Contains(path string, width, height int) bool {
	return c.entries.Contains(tileKey{path: path, width: width, height: height})
}

// Purge removes every entry from the cache. Purged entries are counted as
// evictions.
func (c *TileCache) Purge() {
	c.entries.Purge()
}

// CacheStats is a point-in-time snapshot of cache activity.
type CacheStats struct {
	Capacity  int   `json:"capacity"`
	Len       int   `json:"len"`
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
}

// Stats returns a snapshot of the cache counters.
func (c *TileCache) Stats() CacheStats {
	return CacheStats{
		Capacity:  c.capacity,
		Len:       c.entries.Len(),
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}
