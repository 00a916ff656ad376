package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Handler executes a tool with its raw JSON arguments.
type Handler func(ctx context.Context, args json.RawMessage) (any, error)

// Tool is one registered tool: its MCP definition plus its handler and the
// compiled argument schema used by the validation middleware.
type Tool struct {
	Name        string
	Description string
	InputSchema map[string]any
	Handler     Handler

	compiled *jsonschema.Schema
}

// Definition is the wire shape of a tool in tools/list responses.
type Definition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

// Registry holds the tool catalog in registration order.
type Registry struct {
	order []string
	tools map[string]*Tool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: map[string]*Tool{}}
}

// Register adds a tool, compiling its input schema. Duplicate names and
// uncompilable schemas are programming errors and rejected.
func (r *Registry) Register(t *Tool) error {
	if _, exists := r.tools[t.Name]; exists {
		return fmt.Errorf("tool %q registered twice", t.Name)
	}
	compiled, err := compileSchema(t.Name, t.InputSchema)
	if err != nil {
		return fmt.Errorf("tool %q has an invalid input schema: %w", t.Name, err)
	}
	t.compiled = compiled
	r.tools[t.Name] = t
	r.order = append(r.order, t.Name)
	return nil
}

// Get looks a tool up by name.
func (r *Registry) Get(name string) (*Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Definitions lists the catalog for tools/list, in registration order.
func (r *Registry) Definitions() []Definition {
	defs := make([]Definition, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		defs = append(defs, Definition{Name: t.Name, Description: t.Description, InputSchema: t.InputSchema})
	}
	return defs
}
