package mosaic

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/photomosaic-mcp/internal/config"
	"github.com/ironsheep/photomosaic-mcp/internal/imaging"
	"github.com/ironsheep/photomosaic-mcp/internal/index"
	"github.com/ironsheep/photomosaic-mcp/internal/matcher"
)

// session is the index loaded for the engine's lifetime (until reset).
type session struct {
	path    string
	index   *index.ColorIndex
	matcher *matcher.Matcher
}

// Engine owns the color index, matcher, tile cache and indexing status of
// one mosaic service.
//
// All methods are safe for concurrent use. Compositions share the loaded
// matcher and the tile cache; an index build can run alongside compositions
// that use the previously loaded index.
type Engine struct {
	cfg    config.Config
	log    logrus.FieldLogger
	status *Status
	tiles  *imaging.TileCache

	mu      sync.RWMutex
	session *session
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the engine's logger. The default is the logrus standard
// logger.
func WithLogger(log logrus.FieldLogger) EngineOption {
	return func(e *Engine) {
		e.log = log
	}
}

// WithTileCache replaces the engine's tile cache.
func WithTileCache(c *imaging.TileCache) EngineOption {
	return func(e *Engine) {
		e.tiles = c
	}
}

// WithStatus makes the engine report indexing state through s, so that a
// collaborator holding s can poll it.
func WithStatus(s *Status) EngineOption {
	return func(e *Engine) {
		e.status = s
	}
}

// NewEngine creates an engine with no index loaded.
func NewEngine(cfg config.Config, opts ...EngineOption) *Engine {
	e := &Engine{
		cfg: cfg,
		log: logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.status == nil {
		e.status = &Status{}
	}
	if e.tiles == nil {
		e.tiles = imaging.NewTileCache(cfg.Cache.Capacity)
	}
	return e
}

// Status returns the engine's shared status object.
func (e *Engine) Status() *Status {
	return e.status
}

// IsIndexing reports whether an index build is running. It never blocks.
func (e *Engine) IsIndexing() bool {
	return e.status.IsIndexing()
}

// Index returns the loaded color index, or nil.
func (e *Engine) Index() *index.ColorIndex {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.session == nil {
		return nil
	}
	return e.session.index
}

// BuildOrLoadIndex makes the index at indexPath the engine's session index.
//
// If a persisted index exists at indexPath it is loaded. Otherwise
// libraryDir is scanned, the resulting index is persisted to indexPath and
// the quarantine record is written next to it. Either way the matcher is
// rebuilt and the tile cache emptied.
//
// # Errors
//
//   - ErrIndexingInProgress if another build or load is running.
//   - *index.IOError if the index cannot be read or written, or the library
//     cannot be scanned.
//   - ctx.Err() if the build is cancelled.
//
// An empty library is not an error here; compositions against it fail with
// ErrNoTilesAvailable.
func (e *Engine) BuildOrLoadIndex(ctx context.Context, libraryDir, indexPath string) (*index.ColorIndex, error) {
	if !e.status.begin() {
		return nil, ErrIndexingInProgress
	}
	defer e.status.end()
	return e.buildOrLoad(ctx, libraryDir, indexPath)
}

// StartBuildOrLoadIndex runs BuildOrLoadIndex in the background.
//
// The indexing flag is claimed before it returns, so a second call made
// while the first is still running fails immediately with
// ErrIndexingInProgress and done is never called for it. Otherwise done
// receives the outcome after the flag has been released.
func (e *Engine) StartBuildOrLoadIndex(ctx context.Context, libraryDir, indexPath string, done func(*index.ColorIndex, error)) error {
	if !e.status.begin() {
		return ErrIndexingInProgress
	}
	go func() {
		ix, err := e.buildOrLoad(ctx, libraryDir, indexPath)
		e.status.end()
		if done != nil {
			done(ix, err)
		}
	}()
	return nil
}

// buildOrLoad does the work of BuildOrLoadIndex. The caller holds the
// indexing flag.
func (e *Engine) buildOrLoad(ctx context.Context, libraryDir, indexPath string) (*index.ColorIndex, error) {
	start := time.Now()
	log := e.log.WithField("index_path", indexPath)

	var (
		ix      *index.ColorIndex
		summary BuildSummary
	)
	if index.Exists(indexPath) {
		loaded, err := index.Load(indexPath)
		if err != nil {
			return nil, err
		}
		quarantine, err := index.LoadQuarantine(index.QuarantinePath(indexPath))
		if err != nil {
			log.WithError(err).Warn("Ignoring unreadable quarantine record")
		}
		ix = loaded
		summary = BuildSummary{Source: "loaded", Quarantined: len(quarantine)}
	} else {
		indexer := index.NewIndexer(
			index.WithWorkers(e.cfg.WorkerCount()),
			index.WithExtensions(e.cfg.Library.Extensions),
			index.WithQuarantineDir(e.cfg.Library.QuarantineDir),
			index.WithLogger(e.log),
		)
		res, err := indexer.Build(ctx, libraryDir)
		if err != nil {
			return nil, err
		}
		if err := index.Save(indexPath, res.Index); err != nil {
			return nil, err
		}
		if err := index.SaveQuarantine(index.QuarantinePath(indexPath), res.Quarantine); err != nil {
			return nil, err
		}
		ix = res.Index
		summary = BuildSummary{Source: "built", Quarantined: len(res.Quarantine)}
	}

	m := matcher.FromIndex(ix)
	e.mu.Lock()
	e.session = &session{path: indexPath, index: ix, matcher: m}
	e.mu.Unlock()
	e.tiles.Purge()

	summary.IndexPath = indexPath
	summary.Records = ix.Len()
	summary.Elapsed = time.Since(start)
	summary.FinishedAt = time.Now()
	e.status.record(summary)

	entry := log.WithFields(logrus.Fields{
		"source":      summary.Source,
		"records":     summary.Records,
		"quarantined": summary.Quarantined,
		"elapsed":     summary.Elapsed.String(),
	})
	if ix.Len() == 0 {
		entry.Warn("Color index is empty; mosaic jobs will fail until tiles are added")
	} else {
		entry.Info("Color index ready")
	}
	return ix, nil
}

// ComposeMosaic runs job against the session index.
//
// The configured job timeout bounds the whole composition, tile I/O
// included.
//
// # Errors
//
//   - *ValidationError for invalid job parameters, before any work.
//   - ErrIndexNotLoaded if BuildOrLoadIndex has not succeeded yet.
//   - ErrNoTilesAvailable if the loaded index is empty.
//   - context.DeadlineExceeded (wrapped) when the job timeout elapses.
func (e *Engine) ComposeMosaic(ctx context.Context, job Job) (*Result, error) {
	if job.MaxCanvasPixels == 0 {
		job.MaxCanvasPixels = e.cfg.MaxCanvasPixels
	}
	if err := job.Validate(); err != nil {
		return nil, err
	}

	e.mu.RLock()
	sess := e.session
	e.mu.RUnlock()
	if sess == nil {
		return nil, ErrIndexNotLoaded
	}
	if sess.matcher.Len() == 0 {
		return nil, ErrNoTilesAvailable
	}

	if e.cfg.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.JobTimeout)
		defer cancel()
	}

	log := e.log.WithFields(logrus.Fields{
		"job_id":  job.ID.String(),
		"block":   fmt.Sprintf("%dx%d", job.BlockWidth, job.BlockHeight),
		"upscale": job.UpscaleFactor,
	})
	start := time.Now()

	res, err := Compose(ctx, job, sess.matcher, e.tiles, e.cfg.WorkerCount())
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("mosaic job %s exceeded timeout %s: %w", job.ID, e.cfg.JobTimeout, err)
		}
		log.WithError(err).Error("Mosaic job failed")
		return nil, err
	}

	stats := e.tiles.Stats()
	log.WithFields(logrus.Fields{
		"blocks":       len(res.Placements),
		"width":        res.Image.Bounds().Dx(),
		"height":       res.Image.Bounds().Dy(),
		"elapsed":      time.Since(start).String(),
		"cache_hits":   stats.Hits,
		"cache_misses": stats.Misses,
	}).Info("Mosaic job complete")
	return res, nil
}

// ResetIndex deletes the persisted index at indexPath and its quarantine
// record. If that index is the session index, it is unloaded and the tile
// cache is emptied.
//
// ResetIndex is idempotent: resetting a missing index succeeds. It refuses
// to run while a build is in progress, since the build would recreate the
// file.
func (e *Engine) ResetIndex(indexPath string) error {
	if !e.status.begin() {
		return ErrIndexingInProgress
	}
	defer e.status.end()

	if err := index.Remove(indexPath); err != nil {
		return err
	}
	if err := index.Remove(index.QuarantinePath(indexPath)); err != nil {
		return err
	}

	e.mu.Lock()
	unloaded := e.session != nil && e.session.path == indexPath
	if unloaded {
		e.session = nil
	}
	e.mu.Unlock()
	if unloaded {
		e.tiles.Purge()
	}

	e.log.WithFields(logrus.Fields{
		"index_path": indexPath,
		"unloaded":   unloaded,
	}).Info("Color index reset")
	return nil
}

// Stats is a snapshot of the engine state.
type Stats struct {
	Indexing  bool               `json:"indexing"`
	Loaded    bool               `json:"loaded"`
	IndexPath string             `json:"index_path,omitempty"`
	Records   int                `json:"records"`
	LastBuild BuildSummary       `json:"last_build"`
	Cache     imaging.CacheStats `json:"cache"`
}

// Stats returns a snapshot of the engine state.
func (e *Engine) Stats() Stats {
	s := Stats{
		Indexing:  e.status.IsIndexing(),
		LastBuild: e.status.LastBuild(),
		Cache:     e.tiles.Stats(),
	}
	e.mu.RLock()
	if e.session != nil {
		s.Loaded = true
		s.IndexPath = e.session.path
		s.Records = e.session.index.Len()
	}
	e.mu.RUnlock()
	return s
}
