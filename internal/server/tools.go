package server

import (
	"github.com/ironsheep/photomosaic-mcp/internal/filter"
)

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

func positiveIntProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": description,
		"minimum":     1,
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	kinds := filter.Kinds()
	kindNames := make([]string, len(kinds))
	for i, k := range kinds {
		kindNames[i] = string(k)
	}

	return []Tool{
		// Library Index
		{
			Name:        "mosaic_build_index",
			Description: "Build the color index of the tile library, or load it if it was already persisted. Corrupt library files are quarantined and reported, never fatal. Must succeed before mosaic_compose.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"library_dir": pathProperty("Root directory of the tile library, scanned recursively. Defaults to the configured library.dir"),
					"index_path":  pathProperty("Where the color index is persisted. Defaults to the configured library.index_path"),
					"background": map[string]interface{}{
						"type":        "boolean",
						"description": "Return immediately and build in the background. Poll mosaic_status; a notifications/message is sent on completion. Default false",
						"default":     false,
					},
				},
			},
		},
		{
			Name:        "mosaic_reset_index",
			Description: "Delete the persisted color index and its quarantine record so the next build rescans the library. Succeeds when no index exists.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"index_path": pathProperty("Index to delete. Defaults to the configured library.index_path"),
				},
			},
		},
		{
			Name:        "mosaic_status",
			Description: "Report whether indexing is in progress, the loaded index, the last build summary, quarantined files and tile cache statistics.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},

		// Composition and Filters
		{
			Name:        "mosaic_compose",
			Description: "Rebuild an image as a photomosaic: upscale it, split it into blocks and replace each block with the library tile of nearest average color. Returns the image as base64 PNG unless output_path is given.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":         pathProperty("Absolute path to the target image"),
					"block_width":  positiveIntProperty("Block width in pixels of the upscaled image"),
					"block_height": positiveIntProperty("Block height in pixels of the upscaled image"),
					"upscale_factor": map[string]interface{}{
						"type":        "integer",
						"description": "Integer factor applied to the target's dimensions before partitioning. Default 1",
						"minimum":     1,
						"default":     1,
					},
					"output_path": pathProperty("Optional file to write the result to; format chosen by extension"),
					"show_grid": map[string]interface{}{
						"type":        "boolean",
						"description": "Draw one-pixel lines on block boundaries of the result. Default false",
						"default":     false,
					},
					"grid_color": map[string]interface{}{
						"type":        "string",
						"description": "Hex color of the grid lines (e.g., '#00ff00'). Default '#ff0000'",
					},
					"fidelity": map[string]interface{}{
						"type":        "boolean",
						"description": "Compare the mosaic against the upscaled target and report similarity and mean CIEDE2000 distance. Default false",
						"default":     false,
					},
				},
				"required": []string{"path", "block_width", "block_height"},
			},
		},
		{
			Name:        "image_filter",
			Description: "Apply an image filter. The mosaic filter requires a built index and takes the same parameters as mosaic_compose.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the input image"),
					"filter": map[string]interface{}{
						"type":        "string",
						"description": "Filter to apply",
						"enum":        kindNames,
					},
					"params": map[string]interface{}{
						"type":        "object",
						"description": "Filter parameters, e.g. {\"radius\": 2} for blur, find_edges, min and max; {\"intensity\": 1} for custom_diagonal; {\"mask\": \"#f0f0f0\"} for mica; {\"width\", \"height\"} or {\"percent_x\", \"percent_y\"} for resize",
					},
					"output_path": pathProperty("Optional file to write the result to; format chosen by extension"),
				},
				"required": []string{"path", "filter"},
			},
		},

		// Basic Image Information
		{
			Name:        "image_dimensions",
			Description: "Get the width, height and format of an image file without decoding its pixels.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the image file"),
				},
				"required": []string{"path"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
