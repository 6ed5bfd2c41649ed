package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

// ArithmeticInput is the argument shape shared by add and multiply.
type ArithmeticInput struct {
	A int `json:"a" jsonschema_description:"first int"`
	B int `json:"b" jsonschema_description:"second int"`
}

// AddTool adds two integers. Used by the router demo graph.
type AddTool struct{}

func (t *AddTool) Name() string                { return "add" }
func (t *AddTool) Description() string         { return "Adds a and b." }
func (t *AddTool) InputSchema() map[string]any { return GenerateSchema[ArithmeticInput]() }

func (t *AddTool) Execute(_ context.Context, params json.RawMessage) (ToolResult, error) {
	var p ArithmeticInput
	if err := json.Unmarshal(params, &p); err != nil {
		return ToolResult{}, fmt.Errorf("invalid params: %w", err)
	}
	return ToolResult{Content: strconv.Itoa(p.A + p.B)}, nil
}

// MultiplyTool multiplies two integers. Used by the router demo graph.
type MultiplyTool struct{}

func (t *MultiplyTool) Name() string                { return "multiply" }
func (t *MultiplyTool) Description() string         { return "Multiply a and b." }
func (t *MultiplyTool) InputSchema() map[string]any { return GenerateSchema[ArithmeticInput]() }

func (t *MultiplyTool) Execute(_ context.Context, params json.RawMessage) (ToolResult, error) {
	var p ArithmeticInput
	if err := json.Unmarshal(params, &p); err != nil {
		return ToolResult{}, fmt.Errorf("invalid params: %w", err)
	}
	return ToolResult{Content: strconv.Itoa(p.A * p.B)}, nil
}
