package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// compileSchema turns a tool's input schema (a plain map, as served in
// tools/list) into a compiled validator.
func compileSchema(toolName string, schema map[string]any) (*jsonschema.Schema, error) {
	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}

	compiler := jsonschema.NewCompiler()
	url := toolName + ".schema.json"
	if err := compiler.AddResource(url, doc); err != nil {
		return nil, err
	}
	return compiler.Compile(url)
}

// validate rejects malformed tool arguments before they reach a handler,
// rewriting every failure mode into one canonical, client-actionable
// message shape on JSON-RPC code -32602.
//
// Missing required parameters and unexpected parameters are reported by
// name; all other schema violations (wrong types, out-of-range values, bad
// enums) are reported per parameter with the schema's own wording. When a
// failure cannot be attributed to specific parameters the client gets a
// generic hint naming the tool.
func validate(log zerolog.Logger) Middleware {
	return func(next CallFunc) CallFunc {
		return func(ctx context.Context, call *Call) (any, error) {
			if rpcErr := checkArguments(call.Tool, call.Args); rpcErr != nil {
				log.Error().Str("tool", call.Tool.Name).Str("detail", rpcErr.Message).Msg("validation error")
				return nil, rpcErr
			}
			return next(ctx, call)
		}
	}
}

func checkArguments(tool *Tool, args json.RawMessage) *RPCError {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	var given map[string]json.RawMessage
	if err := json.Unmarshal(args, &given); err != nil {
		return genericValidationError(tool.Name)
	}

	// Name-level checks first: these produce the most actionable messages
	// and cover the two failure modes clients hit most.
	var problems []string
	for _, name := range requiredParams(tool.InputSchema) {
		if _, ok := given[name]; !ok {
			problems = append(problems, fmt.Sprintf("Missing required parameter '%s'", name))
		}
	}
	known := declaredParams(tool.InputSchema)
	unexpected := make([]string, 0)
	for name := range given {
		if !known[name] {
			unexpected = append(unexpected, name)
		}
	}
	sort.Strings(unexpected)
	for _, name := range unexpected {
		problems = append(problems,
			fmt.Sprintf("Unexpected parameter '%s' - this parameter is not accepted by the tool '%s'", name, tool.Name))
	}
	if len(problems) > 0 {
		return &RPCError{Code: CodeInvalidParams, Message: "Validation error: " + strings.Join(problems, "; ")}
	}

	// Full schema validation for types, ranges and enums.
	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(args))
	if err != nil {
		return genericValidationError(tool.Name)
	}
	if err := tool.compiled.Validate(instance); err != nil {
		return normalizeSchemaError(tool.Name, err)
	}
	return nil
}

func genericValidationError(toolName string) *RPCError {
	return &RPCError{
		Code: CodeInvalidParams,
		Message: fmt.Sprintf(
			"Validation error in tool '%s': check that all parameters are correctly named and have the right types",
			toolName),
	}
}

// normalizeSchemaError flattens a jsonschema validation failure into the
// canonical envelope, one entry per offending parameter.
func normalizeSchemaError(toolName string, err error) *RPCError {
	verr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return genericValidationError(toolName)
	}

	printer := message.NewPrinter(language.English)
	seen := map[string]bool{}
	var problems []string
	collectLeaves(verr, func(leaf *jsonschema.ValidationError) {
		param := strings.Join(leaf.InstanceLocation, ".")
		detail := leaf.ErrorKind.LocalizedString(printer)
		var msg string
		if param == "" {
			msg = fmt.Sprintf("Invalid arguments: %s", detail)
		} else {
			msg = fmt.Sprintf("Parameter '%s': %s", param, detail)
		}
		if !seen[msg] {
			seen[msg] = true
			problems = append(problems, msg)
		}
	})

	if len(problems) == 0 {
		return genericValidationError(toolName)
	}
	return &RPCError{Code: CodeInvalidParams, Message: "Validation error: " + strings.Join(problems, "; ")}
}

func collectLeaves(e *jsonschema.ValidationError, visit func(*jsonschema.ValidationError)) {
	if len(e.Causes) == 0 {
		visit(e)
		return
	}
	for _, cause := range e.Causes {
		collectLeaves(cause, visit)
	}
}

func requiredParams(schema map[string]any) []string {
	switch req := schema["required"].(type) {
	case []string:
		return req
	case []any:
		out := make([]string, 0, len(req))
		for _, v := range req {
			if s, ok := v.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func declaredParams(schema map[string]any) map[string]bool {
	known := map[string]bool{}
	if props, ok := schema["properties"].(map[string]any); ok {
		for name := range props {
			known[name] = true
		}
	}
	return known
}
