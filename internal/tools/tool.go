// Package tools defines the tool interface and shared types, and
// provides the tool registry and executor.
package tools

import (
	"context"
	"encoding/json"
)

// ToolResult is the outcome of one tool invocation, fed back to the
// model as a tool result message.
type ToolResult struct {
	Content string // payload the model sees
	IsError bool   // the model should treat the call as failed
}

// Tool is a single callable function exposed to the model.
type Tool interface {
	// Name returns the function name (snake_case) the model uses to
	// request the tool. Must be unique within a registry.
	Name() string

	// Description tells the model what the tool does and when to use it.
	Description() string

	// InputSchema returns the JSON Schema object for the tool's
	// arguments, including type, properties and required.
	InputSchema() map[string]any

	// Execute runs the tool with the raw JSON arguments from the model.
	Execute(ctx context.Context, params json.RawMessage) (ToolResult, error)
}
