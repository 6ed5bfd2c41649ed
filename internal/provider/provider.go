// Package provider defines the unified interface and shared types for all LLM providers.
// Each provider adapter (openai.go, anthropic.go) implements the Provider interface,
// normalizing vendor-specific chat completions into a unified ChatResponse.
package provider

import (
	"context"
	"encoding/json"
	"strings"
)

// ── Message types ────────────────────────────────────────────────────────────

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type ContentType string

const (
	ContentTypeText       ContentType = "text"
	ContentTypeToolUse    ContentType = "tool_use"
	ContentTypeToolResult ContentType = "tool_result"
)

// Content is a single content block within a message.
type Content struct {
	Type       ContentType
	Text       string
	ToolUseID  string          // tool_use / tool_result
	ToolName   string          // tool_use
	ToolInput  json.RawMessage // tool_use
	ToolResult string          // tool_result
	IsError    bool            // tool_result
}

// Message is a single message in the conversation history.
type Message struct {
	Role    Role
	Content []Content
}

// Text returns the concatenated text blocks of the message.
func (m Message) Text() string {
	var sb strings.Builder
	for _, c := range m.Content {
		if c.Type == ContentTypeText {
			sb.WriteString(c.Text)
		}
	}
	return sb.String()
}

// ToolCalls returns the tool calls requested by the message, in order.
func (m Message) ToolCalls() []ToolCallRequest {
	var calls []ToolCallRequest
	for _, c := range m.Content {
		if c.Type == ContentTypeToolUse {
			calls = append(calls, ToolCallRequest{
				ID:    c.ToolUseID,
				Name:  c.ToolName,
				Input: c.ToolInput,
			})
		}
	}
	return calls
}

// UserMessage builds a plain-text user message.
func UserMessage(text string) Message {
	return Message{
		Role:    RoleUser,
		Content: []Content{{Type: ContentTypeText, Text: text}},
	}
}

// AssistantMessage builds an assistant message from the model's text and
// requested tool calls, ready to append to the history.
func AssistantMessage(text string, calls []ToolCallRequest) Message {
	var content []Content
	if text != "" {
		content = append(content, Content{Type: ContentTypeText, Text: text})
	}
	for _, call := range calls {
		content = append(content, Content{
			Type:      ContentTypeToolUse,
			ToolUseID: call.ID,
			ToolName:  call.Name,
			ToolInput: call.Input,
		})
	}
	return Message{Role: RoleAssistant, Content: content}
}

// ToolResultsMessage wraps tool results into the user-role message the
// next model call expects.
func ToolResultsMessage(results []Content) Message {
	return Message{Role: RoleUser, Content: results}
}

// ── Tool Schema ───────────────────────────────────────────────────────────────

// ToolSchema describes a tool sent to the LLM (JSON Schema format).
type ToolSchema struct {
	Name        string
	Description string
	Parameters  map[string]any // full JSON Schema object
}

// ── Request / response types ─────────────────────────────────────────────────

// ChatRequest is the unified request format sent to a provider.
type ChatRequest struct {
	Model        string
	Messages     []Message
	Tools        []ToolSchema
	SystemPrompt string
	MaxTokens    int64
}

// ChatResponse is the unified result of a single model call.
type ChatResponse struct {
	// Content is the concatenated text of the response.
	Content string

	// ToolCalls lists the tools the model asked to run, in order.
	// Empty means the turn is complete.
	ToolCalls []ToolCallRequest

	// StopReason is the provider-reported finish reason
	// (e.g. "stop", "tool_calls", "end_turn", "tool_use").
	StopReason string

	Usage Usage
}

// ToolCallRequest represents a tool call requested by the LLM.
type ToolCallRequest struct {
	ID    string
	Name  string
	Input json.RawMessage
}

// Usage records token consumption for an API call.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// ── Provider interface ───────────────────────────────────────────────────────

// Provider is the unified interface for all LLM providers.
// Implementors are responsible for:
// 1. Converting the unified ChatRequest into the provider's API request format
// 2. Converting the provider's response into a unified ChatResponse
// 3. Surfacing provider-specific errors unwrapped, so the retry layer can
//    classify them
type Provider interface {
	// Chat performs one blocking, non-streaming model call.
	Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)

	// Name returns the provider identifier, e.g. "anthropic", "openai", "deepseek".
	Name() string

	// DefaultModel returns the model used when the request does not name one.
	DefaultModel() string
}
