// Package imaging provides the pixel-level building blocks of the mosaic engine.
//
// This package implements the operations every other component leans on:
// average color computation, structural verification of library images,
// nearest-neighbor upscaling, area-averaging resize and a bounded cache of
// resized tile bitmaps. It also renders results: image delivery as a file or
// inline PNG, block-grid overlays and pixel-level comparison of a mosaic
// against its target. All operations work with standard Go image.Image
// types and use a coordinate system where (0,0) is at the top-left corner,
// X increases rightward, and Y increases downward.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based. Regions are expressed
// as image.Rectangle values: Min is inclusive, Max is exclusive.
//
// # Thread Safety
//
// The TileCache type is safe for concurrent use. Individual image operations
// are stateless and can be called concurrently on different images, or on
// the same image as long as nobody writes to it.
//
// # Color Representation
//
// Colors are 3-channel 8-bit RGB values. Alpha is ignored when averaging:
// pixels are read in non-premultiplied form so a translucent pixel
// contributes its own color, not a darkened one.
//
// # Error Handling
//
// Verify reports structurally broken files by wrapping ErrCorruptImage.
// File I/O and decode failures are returned wrapped with context.
//
// # Performance Considerations
//
// Decoding and resizing dominate mosaic composition. The TileCache keeps the
// most recently used resized tiles in memory, bounded by its capacity, so a
// library tile reused across many blocks is decoded and resized once.
package imaging
