package mosaic

import (
	"sync"
	"sync/atomic"
	"time"
)

// Status is the engine's shared indexing state.
//
// The indexing flag is an atomic so that request handlers can poll it
// without blocking behind a running build. The remaining fields describe the
// last completed build and are guarded by a mutex.
type Status struct {
	indexing atomic.Bool

	mu        sync.Mutex
	lastBuild BuildSummary
}

// BuildSummary describes the most recent index build or load.
type BuildSummary struct {
	Source      string        `json:"source"` // "built", "loaded" or empty
	IndexPath   string        `json:"index_path,omitempty"`
	Records     int           `json:"records"`
	Quarantined int           `json:"quarantined"`
	Elapsed     time.Duration `json:"elapsed_ns"`
	FinishedAt  time.Time     `json:"finished_at,omitempty"`
}

// IsIndexing reports whether a build is running. It never blocks.
func (s *Status) IsIndexing() bool {
	return s.indexing.Load()
}

// begin claims the indexing flag. It returns false if a build is already
// running.
func (s *Status) begin() bool {
	return s.indexing.CompareAndSwap(false, true)
}

func (s *Status) end() {
	s.indexing.Store(false)
}

func (s *Status) record(b BuildSummary) {
	s.mu.Lock()
	s.lastBuild = b
	s.mu.Unlock()
}

// LastBuild returns the summary of the most recent build or load.
func (s *Status) LastBuild() BuildSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastBuild
}
