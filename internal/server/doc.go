// Package server implements the MCP (Model Context Protocol) server for the
// photomosaic engine.
//
// This package provides a JSON-RPC 2.0 server that exposes library indexing,
// mosaic composition and image filters through the MCP protocol.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses and notifications on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Library Index:
//   - mosaic_build_index: Build or load the tile color index
//   - mosaic_reset_index: Delete the persisted index
//   - mosaic_status: Indexing flag, index summary, quarantine, cache stats
//
// Composition and Filters:
//   - mosaic_compose: Rebuild an image from library tiles, optionally with a
//     block grid overlay and a fidelity report against the target
//   - image_filter: Apply one of the filter kinds
//
// Basic Image Information:
//   - image_dimensions: Get width, height and format
//
// # Background Builds
//
// mosaic_build_index with background=true returns at once. Completion or
// failure is reported with a notifications/message notification, and
// mosaic_status reports indexing=true until then. Serve waits for running
// builds before it returns.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string; validation errors name the offending field
//
// # Usage
//
//	srv := server.New(cfg, server.WithLogger(log))
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
