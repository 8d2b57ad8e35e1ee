// Package index builds, persists and loads the color index of a tile library.
//
// A color index maps every admitted library image to its average color. It
// is produced by Indexer.Build, which walks a directory tree, screens every
// candidate with the corruption guard and computes average colors on a
// bounded worker pool. Files that fail verification are quarantined: they
// are logged, optionally moved aside, and listed in the build result, but
// never abort the build.
//
// # Persistence
//
// The index is stored as CSV with the header
//
//	image_path,R,G,B
//
// followed by one row per tile in index order. Loading a saved index
// reproduces the exact record order, so nearest-color tie-breaks are
// identical before and after a round trip.
//
// # Immutability
//
// A ColorIndex never changes after construction and is safe for
// unsynchronized concurrent reads.
package index
