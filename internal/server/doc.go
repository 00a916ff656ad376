// Package server implements the MCP (Model Context Protocol) server
// exposing the image-manipulation tool catalog.
//
// The server speaks JSON-RPC 2.0, either over stdio (one request per line
// on stdin, one response per line on stdout) or over HTTP (one request per
// POST body). Supported MCP methods:
//
//   - initialize: protocol handshake
//   - tools/list: enumerate available tools
//   - tools/call: execute a tool with arguments
//   - ping: health check
//
// # Dispatch pipeline
//
// Every tools/call runs through a middleware chain before reaching its
// handler: panic recovery, argument validation against the tool's JSON
// Schema, per-call logging, and opt-in telemetry. The validation middleware
// normalizes heterogeneous schema failures into a single client-actionable
// error envelope (JSON-RPC code -32602); handler failures surface as tool
// execution errors (code -32000). See middleware.go and validation.go.
//
// # Tools
//
// The catalog covers region operations (crop, resize, rotate), pixel
// effects (blur, fill, change_color), compositing (overlay), drawing
// primitives (rectangles, circles, lines, arrows, texts), analysis
// (get_metainfo, detect, find, ocr) and management (get_models, config).
package server
