package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/pixelmill/pixelmill-mcp/internal/config"
	"github.com/pixelmill/pixelmill-mcp/internal/detect"
	"github.com/pixelmill/pixelmill-mcp/internal/models"
	"github.com/pixelmill/pixelmill-mcp/internal/telemetry"
)

// protocolVersion is the MCP revision this server speaks.
const protocolVersion = "2024-11-05"

// serverName identifies this server in initialize responses.
const serverName = "pixelmill-mcp"

// maxLineBytes bounds a single stdio request line (16 MiB; tool arguments
// are paths and geometry, never image payloads).
const maxLineBytes = 16 << 20

// Server dispatches MCP requests to the tool catalog. Every tools/call
// passes through the middleware pipeline: recovery, validation, logging
// and (when enabled) telemetry.
type Server struct {
	log      zerolog.Logger
	cfg      *config.Manager
	registry *Registry
	version  string

	pipeline CallFunc

	detMu     sync.Mutex
	detectors map[string]*detect.Detector
}

// New builds a server around a configuration manager, registering the full
// tool catalog and assembling the dispatch pipeline.
func New(cfg *config.Manager, log zerolog.Logger, version string) (*Server, error) {
	s := &Server{
		log:       log,
		cfg:       cfg,
		registry:  NewRegistry(),
		version:   version,
		detectors: map[string]*detect.Detector{},
	}

	for _, tool := range s.toolCatalog() {
		if err := s.registry.Register(tool); err != nil {
			return nil, err
		}
	}

	tel := telemetry.New(cfg.Current().Telemetry.Enabled, log)
	s.pipeline = chain(
		func(ctx context.Context, call *Call) (any, error) {
			return call.Tool.Handler(ctx, call.Args)
		},
		recovery(log),
		validate(log),
		logCalls(log),
		track(tel),
	)
	return s, nil
}

// detector returns a cached detector for a model name, loading it on first
// use. Loaded models stay resident for the life of the server.
func (s *Server) detector(modelName string) (*detect.Detector, error) {
	s.detMu.Lock()
	defer s.detMu.Unlock()

	if det, ok := s.detectors[modelName]; ok {
		return det, nil
	}
	if !models.Exists(modelName) {
		return nil, fmt.Errorf(
			"Model '%s' not found in models directory. Use the download-models command to fetch it.", modelName)
	}
	det, err := detect.New(models.Path(modelName))
	if err != nil {
		return nil, err
	}
	s.detectors[modelName] = det
	return det, nil
}

// Close releases loaded detection models.
func (s *Server) Close() {
	s.detMu.Lock()
	defer s.detMu.Unlock()
	for name, det := range s.detectors {
		det.Close()
		delete(s.detectors, name)
	}
}

// Run serves line-delimited JSON-RPC over stdin/stdout until stdin closes
// or the context is canceled.
func (s *Server) Run(ctx context.Context) error {
	return s.serve(ctx, os.Stdin, os.Stdout)
}

func (s *Server) serve(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	var writeMu sync.Mutex
	encoder := json.NewEncoder(out)

	s.log.Info().Str("version", s.version).Msg("server started on stdio")

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		resp := s.handleMessage(ctx, line)
		if resp == nil {
			continue // notification
		}
		writeMu.Lock()
		err := encoder.Encode(resp)
		writeMu.Unlock()
		if err != nil {
			return fmt.Errorf("failed to write response: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read request: %w", err)
	}
	s.log.Info().Msg("stdin closed, shutting down")
	return nil
}

// handleMessage parses one raw JSON-RPC message and routes it. A nil
// return means no response is due (notifications).
func (s *Server) handleMessage(ctx context.Context, raw []byte) *Response {
	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		s.log.Error().Err(err).Msg("unparseable request")
		return newErrorResponse(nil, CodeParseError, "Parse error", nil)
	}
	return s.handleRequest(ctx, &req)
}

func (s *Server) handleRequest(ctx context.Context, req *Request) *Response {
	switch req.Method {
	case "initialize":
		return newResponse(req.ID, map[string]any{
			"protocolVersion": protocolVersion,
			"capabilities": map[string]any{
				"tools": map[string]any{},
			},
			"serverInfo": map[string]any{
				"name":    serverName,
				"version": s.version,
			},
		})

	case "notifications/initialized", "initialized":
		return nil

	case "tools/list":
		return newResponse(req.ID, map[string]any{"tools": s.registry.Definitions()})

	case "tools/call":
		return s.handleToolsCall(ctx, req)

	case "ping":
		return newResponse(req.ID, map[string]any{})

	default:
		return newErrorResponse(req.ID, CodeMethodNotFound,
			fmt.Sprintf("Method not found: %s", req.Method), nil)
	}
}

func (s *Server) handleToolsCall(ctx context.Context, req *Request) *Response {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return newErrorResponse(req.ID, CodeInvalidParams, "Invalid tools/call parameters", nil)
	}

	tool, ok := s.registry.Get(params.Name)
	if !ok {
		return newErrorResponse(req.ID, CodeInvalidParams,
			fmt.Sprintf("Unknown tool '%s'", params.Name), nil)
	}

	result, err := s.pipeline(ctx, &Call{Tool: tool, Args: params.Arguments})
	if err != nil {
		if rpcErr, ok := err.(*RPCError); ok {
			return &Response{JSONRPC: "2.0", ID: req.ID, Error: rpcErr}
		}
		return newErrorResponse(req.ID, CodeToolError,
			fmt.Sprintf("Tool execution failed: %s", err), map[string]any{"tool": params.Name})
	}

	text, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return newErrorResponse(req.ID, CodeInternalError,
			fmt.Sprintf("Failed to encode result of tool '%s'", params.Name), nil)
	}
	return newResponse(req.ID, map[string]any{
		"content": []map[string]any{
			{"type": "text", "text": string(text)},
		},
	})
}
