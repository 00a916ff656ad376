package server

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compiledTestTool(t *testing.T) *Tool {
	t.Helper()
	tool := &Tool{
		Name:        "crop",
		Description: "test tool",
		InputSchema: schemaObject(map[string]any{
			"input_path": prop("string", "path"),
			"x1":         prop("integer", "left"),
			"palette":    withEnum(prop("string", "palette"), "grayscale", "sepia", "invert"),
			"opacity":    withRange(prop("number", "opacity"), 0, 1),
		}, "input_path", "x1"),
		Handler: func(ctx context.Context, args json.RawMessage) (any, error) { return nil, nil },
	}
	r := NewRegistry()
	require.NoError(t, r.Register(tool))
	return tool
}

func TestCheckArgumentsAcceptsValidInput(t *testing.T) {
	tool := compiledTestTool(t)

	err := checkArguments(tool, json.RawMessage(`{"input_path": "/a/b.png", "x1": 5}`))
	assert.Nil(t, err)
}

func TestCheckArgumentsMissingRequired(t *testing.T) {
	tool := compiledTestTool(t)

	err := checkArguments(tool, json.RawMessage(`{"input_path": "/a/b.png"}`))
	require.NotNil(t, err)
	assert.Equal(t, CodeInvalidParams, err.Code)
	assert.Equal(t, "Validation error: Missing required parameter 'x1'", err.Message)
}

func TestCheckArgumentsEmptyArgsReportAllRequired(t *testing.T) {
	tool := compiledTestTool(t)

	err := checkArguments(tool, nil)
	require.NotNil(t, err)
	assert.Equal(t,
		"Validation error: Missing required parameter 'input_path'; Missing required parameter 'x1'",
		err.Message)
}

func TestCheckArgumentsUnexpectedParameter(t *testing.T) {
	tool := compiledTestTool(t)

	err := checkArguments(tool, json.RawMessage(`{"input_path": "/a/b.png", "x1": 1, "bogus": true}`))
	require.NotNil(t, err)
	assert.Equal(t, CodeInvalidParams, err.Code)
	assert.Equal(t,
		"Validation error: Unexpected parameter 'bogus' - this parameter is not accepted by the tool 'crop'",
		err.Message)
}

func TestCheckArgumentsUnexpectedParametersSorted(t *testing.T) {
	tool := compiledTestTool(t)

	err := checkArguments(tool, json.RawMessage(`{"input_path": "p", "x1": 1, "zz": 1, "aa": 2}`))
	require.NotNil(t, err)
	assert.Equal(t,
		"Validation error: Unexpected parameter 'aa' - this parameter is not accepted by the tool 'crop'; "+
			"Unexpected parameter 'zz' - this parameter is not accepted by the tool 'crop'",
		err.Message)
}

func TestCheckArgumentsCombinesProblems(t *testing.T) {
	tool := compiledTestTool(t)

	err := checkArguments(tool, json.RawMessage(`{"x1": 1, "bogus": true}`))
	require.NotNil(t, err)
	assert.Contains(t, err.Message, "Missing required parameter 'input_path'")
	assert.Contains(t, err.Message, "Unexpected parameter 'bogus'")
}

func TestCheckArgumentsWrongTypeNamesParameter(t *testing.T) {
	tool := compiledTestTool(t)

	err := checkArguments(tool, json.RawMessage(`{"input_path": "p", "x1": "five"}`))
	require.NotNil(t, err)
	assert.Equal(t, CodeInvalidParams, err.Code)
	assert.Contains(t, err.Message, "Validation error:")
	assert.Contains(t, err.Message, "Parameter 'x1'")
}

func TestCheckArgumentsEnumViolation(t *testing.T) {
	tool := compiledTestTool(t)

	err := checkArguments(tool, json.RawMessage(`{"input_path": "p", "x1": 1, "palette": "neon"}`))
	require.NotNil(t, err)
	assert.Contains(t, err.Message, "Parameter 'palette'")
}

func TestCheckArgumentsRangeViolation(t *testing.T) {
	tool := compiledTestTool(t)

	err := checkArguments(tool, json.RawMessage(`{"input_path": "p", "x1": 1, "opacity": 3}`))
	require.NotNil(t, err)
	assert.Contains(t, err.Message, "Parameter 'opacity'")
}

func TestCheckArgumentsNonObjectArgs(t *testing.T) {
	tool := compiledTestTool(t)

	err := checkArguments(tool, json.RawMessage(`[1, 2, 3]`))
	require.NotNil(t, err)
	assert.Equal(t,
		"Validation error in tool 'crop': check that all parameters are correctly named and have the right types",
		err.Message)
}

func TestCheckArgumentsNoRequiredAcceptsEmpty(t *testing.T) {
	tool := &Tool{
		Name:        "get_models",
		InputSchema: schemaObject(map[string]any{}),
		Handler:     func(ctx context.Context, args json.RawMessage) (any, error) { return nil, nil },
	}
	r := NewRegistry()
	require.NoError(t, r.Register(tool))

	assert.Nil(t, checkArguments(tool, nil))
	assert.Nil(t, checkArguments(tool, json.RawMessage(`{}`)))
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	tool := func() *Tool {
		return &Tool{
			Name:        "dup",
			InputSchema: schemaObject(map[string]any{}),
			Handler:     func(ctx context.Context, args json.RawMessage) (any, error) { return nil, nil },
		}
	}
	require.NoError(t, r.Register(tool()))
	assert.Error(t, r.Register(tool()))
}
