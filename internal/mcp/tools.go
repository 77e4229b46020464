package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/varnorm/pkg/localnames"
)

// Tool names.
const (
	ToolNameConvert = "varnorm_convert"
	ToolNamePlan    = "varnorm_plan"
)

// MaxInputBytes is the default limit on base plus source (1 MB).
const MaxInputBytes = 1 << 20

// Sentinel errors for tool input validation.
var (
	// ErrEmptySource indicates the source parameter is empty.
	ErrEmptySource = errors.New("source parameter is required and must not be empty")
	// ErrInputTooLarge indicates base plus source exceeds the size limit.
	ErrInputTooLarge = errors.New("input exceeds maximum size")
)

// ConvertInput is the input schema shared by both tools.
type ConvertInput struct {
	Base   string `json:"base,omitempty" jsonschema:"typedefs, globals and prototypes the function depends on"`
	Source string `json:"source"         jsonschema:"C text holding the function to normalize"`
}

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

type toolset struct {
	converter     *localnames.Converter
	maxInputBytes int
}

func (ts *toolset) handleConvert(
	ctx context.Context, _ *mcpsdk.CallToolRequest, input ConvertInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if err := ts.validate(input); err != nil {
		return errorResult(err)
	}

	output, err := ts.converter.Convert(ctx, input.Base, input.Source)
	if err != nil {
		return errorResult(err)
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: output}},
	}, ToolOutput{Data: output}, nil
}

func (ts *toolset) handlePlan(
	ctx context.Context, _ *mcpsdk.CallToolRequest, input ConvertInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if err := ts.validate(input); err != nil {
		return errorResult(err)
	}

	result, err := ts.converter.Analyze(ctx, input.Base, input.Source)
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(result)
}

func (ts *toolset) validate(input ConvertInput) error {
	if input.Source == "" {
		return ErrEmptySource
	}

	if size := len(input.Base) + len(input.Source); size > ts.maxInputBytes {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, size, ts.maxInputBytes)
	}

	return nil
}

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: "Error: " + err.Error()}},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: string(data)}},
	}, ToolOutput{Data: value}, nil
}
