package mosaic

import (
	"errors"
	"fmt"

	"github.com/ironsheep/photomosaic-mcp/internal/matcher"
)

// ErrNoTilesAvailable reports a job run against an index with zero usable
// tiles. It is the same value as matcher.ErrNoTilesAvailable.
var ErrNoTilesAvailable = matcher.ErrNoTilesAvailable

// ErrIndexNotLoaded reports a job submitted before any index was built or
// loaded into the engine.
var ErrIndexNotLoaded = errors.New("no color index loaded")

// ErrIndexingInProgress reports a build request while another build is
// still running on the same engine.
var ErrIndexingInProgress = errors.New("library indexing already in progress")

// ValidationError reports a job parameter that violates its precondition.
// It is returned before any processing starts.
type ValidationError struct {
	Field  string
	Value  int
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s: %d (must be a positive integer)", e.Field, e.Value)
}
