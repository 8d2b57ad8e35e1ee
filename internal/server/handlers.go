package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ironsheep/photomosaic-mcp/internal/filter"
	"github.com/ironsheep/photomosaic-mcp/internal/imaging"
	"github.com/ironsheep/photomosaic-mcp/internal/index"
	"github.com/ironsheep/photomosaic-mcp/internal/mosaic"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "mosaic_compose", "image_filter").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.log.WithError(err).WithField("tool", params.Name).Warn("Tool execution failed")
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Loads input images from disk as needed
//  4. Calls the mosaic engine or a filter
//  5. Returns the result or error
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Library Index
	case "mosaic_build_index":
		return s.handleBuildIndex(ctx, args)
	case "mosaic_reset_index":
		return s.handleResetIndex(args)
	case "mosaic_status":
		return s.handleStatus()

	// Composition and Filters
	case "mosaic_compose":
		return s.handleCompose(ctx, args)
	case "image_filter":
		return s.handleFilter(ctx, args)

	// Basic Image Information
	case "image_dimensions":
		return s.handleImageDimensions(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// decodeArgs unmarshals tool arguments. Missing arguments leave v at its
// zero value.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// === Library Index Handlers ===

type buildIndexArgs struct {
	LibraryDir string `json:"library_dir"`
	IndexPath  string `json:"index_path"`
	Background bool   `json:"background"`
}

type buildIndexResult struct {
	Started     bool   `json:"started,omitempty"`
	Source      string `json:"source,omitempty"`
	LibraryDir  string `json:"library_dir"`
	IndexPath   string `json:"index_path"`
	Records     int    `json:"records"`
	Quarantined int    `json:"quarantined"`
	ElapsedMS   int64  `json:"elapsed_ms"`
}

func (s *Server) handleBuildIndex(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a buildIndexArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.LibraryDir == "" {
		a.LibraryDir = s.cfg.Library.Dir
	}
	if a.IndexPath == "" {
		a.IndexPath = s.cfg.Library.IndexPath
	}

	if a.Background {
		s.builds.Add(1)
		err := s.engine.StartBuildOrLoadIndex(ctx, a.LibraryDir, a.IndexPath, func(_ *index.ColorIndex, err error) {
			defer s.builds.Done()
			if err != nil {
				s.notify("error", map[string]interface{}{
					"event": "index_build_failed",
					"error": err.Error(),
				})
				return
			}
			s.notify("info", map[string]interface{}{
				"event":  "index_build_complete",
				"result": s.lastBuildResult(a),
			})
		})
		if err != nil {
			s.builds.Done()
			return nil, err
		}
		return &buildIndexResult{Started: true, LibraryDir: a.LibraryDir, IndexPath: a.IndexPath}, nil
	}

	if _, err := s.engine.BuildOrLoadIndex(ctx, a.LibraryDir, a.IndexPath); err != nil {
		return nil, err
	}
	return s.lastBuildResult(a), nil
}

// lastBuildResult reports the engine's most recent build or load.
func (s *Server) lastBuildResult(a buildIndexArgs) *buildIndexResult {
	b := s.engine.Status().LastBuild()
	return &buildIndexResult{
		Source:      b.Source,
		LibraryDir:  a.LibraryDir,
		IndexPath:   b.IndexPath,
		Records:     b.Records,
		Quarantined: b.Quarantined,
		ElapsedMS:   b.Elapsed.Milliseconds(),
	}
}

type resetIndexArgs struct {
	IndexPath string `json:"index_path"`
}

func (s *Server) handleResetIndex(args json.RawMessage) (interface{}, error) {
	var a resetIndexArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.IndexPath == "" {
		a.IndexPath = s.cfg.Library.IndexPath
	}
	if err := s.engine.ResetIndex(a.IndexPath); err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"reset":      true,
		"index_path": a.IndexPath,
	}, nil
}

type statusResult struct {
	mosaic.Stats
	Quarantine []index.QuarantineEntry `json:"quarantine,omitempty"`
}

func (s *Server) handleStatus() (interface{}, error) {
	res := statusResult{Stats: s.engine.Stats()}
	if res.IndexPath != "" {
		q, err := index.LoadQuarantine(index.QuarantinePath(res.IndexPath))
		if err != nil {
			return nil, err
		}
		res.Quarantine = q
	}
	return res, nil
}

// === Composition and Filter Handlers ===

type composeArgs struct {
	Path          string `json:"path"`
	BlockWidth    int    `json:"block_width"`
	BlockHeight   int    `json:"block_height"`
	UpscaleFactor *int   `json:"upscale_factor"`
	OutputPath    string `json:"output_path"`
	ShowGrid      bool   `json:"show_grid"`
	GridColor     string `json:"grid_color"`
	Fidelity      bool   `json:"fidelity"`
}

// defaultGridColor marks block boundaries when show_grid is set without a color.
const defaultGridColor = "#ff0000"

type composeResult struct {
	JobID         string               `json:"job_id"`
	Blocks        int                  `json:"blocks"`
	DistinctTiles int                  `json:"distinct_tiles"`
	Fidelity      *imaging.Comparison  `json:"fidelity,omitempty"`
	Image         *imaging.ImageResult `json:"image"`
}

func (s *Server) handleCompose(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a composeArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}
	upscale := 1
	if a.UpscaleFactor != nil {
		upscale = *a.UpscaleFactor
	}
	var gridColor imaging.RGB
	if a.ShowGrid {
		if a.GridColor == "" {
			a.GridColor = defaultGridColor
		}
		c, err := imaging.ParseHex(a.GridColor)
		if err != nil {
			return nil, fmt.Errorf("invalid grid_color: %w", err)
		}
		gridColor = c
	}

	target, err := imaging.Open(a.Path)
	if err != nil {
		return nil, err
	}
	res, err := s.engine.ComposeMosaic(ctx, mosaic.Job{
		Target:        target,
		BlockWidth:    a.BlockWidth,
		BlockHeight:   a.BlockHeight,
		UpscaleFactor: upscale,
	})
	if err != nil {
		return nil, err
	}

	var fidelity *imaging.Comparison
	if a.Fidelity {
		if fidelity, err = imaging.Compare(res.Image, imaging.Upscale(target, upscale)); err != nil {
			return nil, err
		}
	}
	img := res.Image
	if a.ShowGrid {
		img = imaging.DrawGrid(img, a.BlockWidth, a.BlockHeight, gridColor)
	}

	out, err := imaging.Deliver(img, a.OutputPath)
	if err != nil {
		return nil, err
	}
	distinct := make(map[string]struct{})
	for _, p := range res.Placements {
		distinct[p.TilePath] = struct{}{}
	}
	return &composeResult{
		JobID:         res.JobID.String(),
		Blocks:        len(res.Placements),
		DistinctTiles: len(distinct),
		Fidelity:      fidelity,
		Image:         out,
	}, nil
}

type filterArgs struct {
	Path       string          `json:"path"`
	Filter     string          `json:"filter"`
	Params     json.RawMessage `json:"params"`
	OutputPath string          `json:"output_path"`
}

type filterResult struct {
	Filter string               `json:"filter"`
	Image  *imaging.ImageResult `json:"image"`
}

func (s *Server) handleFilter(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a filterArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}

	f, err := filter.Decode(a.Filter, a.Params, filter.WithEngine(s.engine))
	if err != nil {
		return nil, err
	}
	img, err := imaging.Open(a.Path)
	if err != nil {
		return nil, err
	}
	filtered, err := f.Apply(ctx, img)
	if err != nil {
		return nil, err
	}
	out, err := imaging.Deliver(filtered, a.OutputPath)
	if err != nil {
		return nil, err
	}
	return &filterResult{Filter: string(f.Kind()), Image: out}, nil
}

// === Basic Image Information Handlers ===

type imageDimensionsArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageDimensionsArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}
	return imaging.Describe(a.Path)
}
