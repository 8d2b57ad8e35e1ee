package index

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/photomosaic-mcp/internal/imaging"
)

// DefaultExtensions is the set of file extensions admitted as library
// candidates when none is configured. Matching is case-insensitive.
var DefaultExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".gif", ".tiff", ".tif"}

// BuildResult is the outcome of one library scan.
type BuildResult struct {
	// Index holds one record per admitted image, in walk order.
	Index *ColorIndex

	// Quarantine lists every entry excluded from the index: first the
	// files and directories the walk could not read, then the candidates
	// rejected by the corruption guard, each group in walk order.
	Quarantine []QuarantineEntry

	// Scanned is the number of candidate files found by the walk.
	Scanned int

	// Elapsed is the wall-clock duration of the build.
	Elapsed time.Duration
}

// Indexer scans a library directory and computes a color index.
//
// An Indexer holds only configuration and may be reused for any number of
// builds, including concurrent ones on different roots.
type Indexer struct {
	workers       int
	extensions    map[string]bool
	quarantineDir string
	log           logrus.FieldLogger
	decode        func(path string) (imaging.RGB, error)
	walk          func(root string, fn fs.WalkDirFunc) error
}

// Option configures an Indexer.
type Option func(*Indexer)

// WithWorkers sets the size of the color computation pool. Values ≤ 0
// select runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(ix *Indexer) {
		ix.workers = n
	}
}

// WithExtensions replaces the accepted extension set. Entries may be given
// with or without the leading dot.
func WithExtensions(exts []string) Option {
	return func(ix *Indexer) {
		if len(exts) == 0 {
			return
		}
		ix.extensions = extensionSet(exts)
	}
}

// WithQuarantineDir moves quarantined files into dir. Without it, quarantined
// files stay where they are and are only logged and recorded.
func WithQuarantineDir(dir string) Option {
	return func(ix *Indexer) {
		ix.quarantineDir = dir
	}
}

// WithLogger sets the logger for build progress and quarantine events.
func WithLogger(log logrus.FieldLogger) Option {
	return func(ix *Indexer) {
		ix.log = log
	}
}

// NewIndexer creates an Indexer with the given options applied.
func NewIndexer(opts ...Option) *Indexer {
	ix := &Indexer{
		extensions: extensionSet(DefaultExtensions),
		log:        logrus.StandardLogger(),
		decode:     averageOf,
		walk:       filepath.WalkDir,
	}
	for _, opt := range opts {
		opt(ix)
	}
	if ix.workers <= 0 {
		ix.workers = runtime.NumCPU()
	}
	return ix
}

func extensionSet(exts []string) map[string]bool {
	set := make(map[string]bool, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		set[e] = true
	}
	return set
}

// averageOf runs the corruption guard and computes the image's average color.
func averageOf(path string) (imaging.RGB, error) {
	img, err := imaging.DecodeVerified(path)
	if err != nil {
		return imaging.RGB{}, err
	}
	return imaging.ImageAverage(img), nil
}

// Build scans root and returns the color index of its images.
//
// Parameters:
//   - ctx: Cancels the build. The context is checked once per file; a
//     cancelled build returns ctx.Err() and no result.
//   - root: The library directory, scanned recursively.
//
// The walk itself is sequential and lexical; per-file verification and
// color computation run on a pool of workers. Records are placed by walk
// position, so the index order never depends on completion order.
//
// # Errors
//
//   - Returns *IOError if root does not exist, is not a directory, or
//     cannot be read.
//   - A corrupt or unreadable file never fails the build: it is quarantined.
//     An unreadable subdirectory is quarantined and skipped.
//   - An empty library is not an error; the index is simply empty.
func (ix *Indexer) Build(ctx context.Context, root string) (*BuildResult, error) {
	start := time.Now()

	paths, skipped, err := ix.scan(root)
	if err != nil {
		return nil, err
	}
	ix.log.WithFields(logrus.Fields{
		"root":       root,
		"candidates": len(paths),
		"workers":    ix.workers,
	}).Info("Indexing tile library")

	type outcome struct {
		color imaging.RGB
		err   error
	}
	outcomes := make([]outcome, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.workers)
	for i, path := range paths {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			c, err := ix.decode(path)
			outcomes[i] = outcome{color: c, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &BuildResult{Scanned: len(paths), Quarantine: skipped}
	records := make([]TileRecord, 0, len(paths))
	for i, path := range paths {
		o := outcomes[i]
		if o.err == nil {
			records = append(records, TileRecord{Path: path, Color: o.color})
			continue
		}
		result.Quarantine = append(result.Quarantine, ix.quarantine(path, o.err))
	}
	result.Index = &ColorIndex{records: records}
	result.Elapsed = time.Since(start)

	ix.log.WithFields(logrus.Fields{
		"root":        root,
		"records":     len(records),
		"quarantined": len(result.Quarantine),
		"elapsed":     result.Elapsed.String(),
	}).Info("Tile library indexed")

	return result, nil
}

// scan walks root and returns every candidate path in lexical walk order,
// plus the entries below root that could not be read.
func (ix *Indexer) scan(root string) ([]string, []QuarantineEntry, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, nil, &IOError{Op: "scan", Path: root, Err: err}
	}
	if !info.IsDir() {
		return nil, nil, &IOError{Op: "scan", Path: root, Err: errors.New("not a directory")}
	}

	var skip string
	if ix.quarantineDir != "" {
		skip, _ = filepath.Abs(ix.quarantineDir)
	}

	var (
		paths   []string
		skipped []QuarantineEntry
	)
	err = ix.walk(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			entry := QuarantineEntry{Path: path, Reason: err.Error()}
			ix.log.WithFields(logrus.Fields{"path": path, "reason": entry.Reason}).Warn("Skipped unreadable library entry")
			skipped = append(skipped, entry)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if skip != "" {
				if abs, _ := filepath.Abs(path); abs == skip {
					return filepath.SkipDir
				}
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if ix.extensions[strings.ToLower(filepath.Ext(path))] {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, nil, &IOError{Op: "scan", Path: root, Err: err}
	}
	return paths, skipped, nil
}

// quarantine logs an excluded file and, when configured, moves it aside.
func (ix *Indexer) quarantine(path string, cause error) QuarantineEntry {
	entry := QuarantineEntry{Path: path, Reason: cause.Error()}
	fields := logrus.Fields{"path": path, "reason": entry.Reason}

	if ix.quarantineDir != "" {
		dest, err := relocate(path, ix.quarantineDir)
		if err != nil {
			fields["move_error"] = err.Error()
		} else {
			entry.MovedTo = dest
			fields["moved_to"] = dest
		}
	}
	ix.log.WithFields(fields).Warn("Quarantined library image")
	return entry
}
