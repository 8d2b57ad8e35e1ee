// Package mosaic composes photomosaics from a library of tile images.
//
// A composition upscales the target image, partitions it into a grid of
// blocks and replaces every block with the library tile whose average color
// is nearest to the block's average color. Blocks are processed on a bounded
// worker pool and written into disjoint regions of a shared canvas.
//
// # Engine
//
// Engine is the service-level entry point. It owns the session color index,
// the nearest-color matcher built from it, the tile cache and the indexing
// status flag:
//
//	eng := mosaic.NewEngine(cfg)
//	if _, err := eng.BuildOrLoadIndex(ctx, cfg.Library.Dir, cfg.Library.IndexPath); err != nil {
//	    return err
//	}
//	res, err := eng.ComposeMosaic(ctx, mosaic.Job{
//	    Target:        img,
//	    BlockWidth:    16,
//	    BlockHeight:   16,
//	    UpscaleFactor: 4,
//	})
//
// # Errors
//
// Invalid job parameters yield *ValidationError before any work starts. A
// job against an empty index yields ErrNoTilesAvailable; a job before any
// index is loaded yields ErrIndexNotLoaded. Any block failure aborts the
// whole job and no partial image is returned.
//
// # Thread Safety
//
// Engine methods are safe for concurrent use. IsIndexing never blocks, even
// while a build is running.
package mosaic
