package provider

import (
	"encoding/json"
	"testing"
)

// --- Provider metadata tests ---

func TestOpenAIProvider_Metadata(t *testing.T) {
	p := &OpenAIProvider{model: "gpt-4o-mini", name: "openai"}
	if p.Name() != "openai" {
		t.Errorf("expected name 'openai', got %q", p.Name())
	}
	if p.DefaultModel() != "gpt-4o-mini" {
		t.Errorf("expected model 'gpt-4o-mini', got %q", p.DefaultModel())
	}
}

func TestAnthropicProvider_Metadata(t *testing.T) {
	p := &AnthropicProvider{model: "claude-sonnet-4-20250514"}
	if p.Name() != "anthropic" {
		t.Errorf("expected name 'anthropic', got %q", p.Name())
	}
	if p.DefaultModel() != "claude-sonnet-4-20250514" {
		t.Errorf("expected model 'claude-sonnet-4-20250514', got %q", p.DefaultModel())
	}
}

// --- OpenAI provider name detection ---

func TestOpenAIProvider_NameDetection(t *testing.T) {
	tests := []struct {
		baseURL  string
		expected string
	}{
		{"", "openai"},
		{"https://api.deepseek.com/v1", "deepseek"},
		{"https://api.moonshot.cn/v1", "kimi"},
		{"https://dashscope.aliyuncs.com/v1", "qwen"},
		{"https://custom.api.com/v1", "openai"},
	}
	for _, tt := range tests {
		p := NewOpenAIProvider("test-key", tt.baseURL, "test-model")
		if p.Name() != tt.expected {
			t.Errorf("baseURL=%q: expected name %q, got %q", tt.baseURL, tt.expected, p.Name())
		}
	}
}

// --- Message helpers ---

func TestUserMessage(t *testing.T) {
	m := UserMessage("hi there")
	if m.Role != RoleUser {
		t.Errorf("expected user role, got %q", m.Role)
	}
	if m.Text() != "hi there" {
		t.Errorf("expected text 'hi there', got %q", m.Text())
	}
	if len(m.ToolCalls()) != 0 {
		t.Error("user text message should carry no tool calls")
	}
}

func TestAssistantMessage_WithToolCalls(t *testing.T) {
	calls := []ToolCallRequest{
		{ID: "call_1", Name: "record_user_details", Input: json.RawMessage(`{"email":"a@b.c"}`)},
		{ID: "call_2", Name: "record_unknown_question", Input: json.RawMessage(`{"question":"favorite color?"}`)},
	}
	m := AssistantMessage("let me record that", calls)
	if m.Role != RoleAssistant {
		t.Errorf("expected assistant role, got %q", m.Role)
	}
	if m.Text() != "let me record that" {
		t.Errorf("unexpected text %q", m.Text())
	}
	got := m.ToolCalls()
	if len(got) != 2 {
		t.Fatalf("expected 2 tool calls, got %d", len(got))
	}
	if got[0].ID != "call_1" || got[0].Name != "record_user_details" {
		t.Errorf("unexpected first call %+v", got[0])
	}
	if got[1].ID != "call_2" || got[1].Name != "record_unknown_question" {
		t.Errorf("unexpected second call %+v", got[1])
	}
}

func TestAssistantMessage_EmptyTextOmitted(t *testing.T) {
	m := AssistantMessage("", []ToolCallRequest{{ID: "c", Name: "add", Input: json.RawMessage(`{}`)}})
	for _, c := range m.Content {
		if c.Type == ContentTypeText {
			t.Error("empty text should not produce a text block")
		}
	}
}

func TestToolResultsMessage(t *testing.T) {
	m := ToolResultsMessage([]Content{
		{Type: ContentTypeToolResult, ToolUseID: "call_1", ToolResult: `{"recorded": "ok"}`},
	})
	if m.Role != RoleUser {
		t.Errorf("tool results ride on a user-role message, got %q", m.Role)
	}
	if len(m.Content) != 1 || m.Content[0].ToolUseID != "call_1" {
		t.Errorf("unexpected content %+v", m.Content)
	}
}

// --- OpenAI conversion ---

func TestOpenAI_BuildMessages(t *testing.T) {
	p := &OpenAIProvider{model: "gpt-4o-mini", name: "openai"}
	req := &ChatRequest{
		SystemPrompt: "You are acting as Jane.",
		Messages: []Message{
			UserMessage("who are you?"),
			AssistantMessage("checking", []ToolCallRequest{
				{ID: "call_9", Name: "record_unknown_question", Input: json.RawMessage(`{"question":"who?"}`)},
			}),
			ToolResultsMessage([]Content{
				{Type: ContentTypeToolResult, ToolUseID: "call_9", ToolResult: `{"recorded": "ok"}`},
			}),
		},
	}
	params := p.buildMessages(req)
	// system + user + assistant + tool result
	if len(params) != 4 {
		t.Fatalf("expected 4 params, got %d", len(params))
	}
	if params[0].OfSystem == nil {
		t.Error("first message must be the system prompt")
	}
	if params[1].OfUser == nil {
		t.Error("second message must be the user text")
	}
	assistant := params[2].OfAssistant
	if assistant == nil {
		t.Fatal("third message must be the assistant turn")
	}
	if len(assistant.ToolCalls) != 1 || assistant.ToolCalls[0].ID != "call_9" {
		t.Errorf("assistant tool calls not preserved: %+v", assistant.ToolCalls)
	}
	tool := params[3].OfTool
	if tool == nil {
		t.Fatal("fourth message must be the tool result")
	}
	if tool.ToolCallID != "call_9" {
		t.Errorf("tool result must reference its call id, got %q", tool.ToolCallID)
	}
}

func TestOpenAI_BuildTools_FullSchemaPreserved(t *testing.T) {
	p := &OpenAIProvider{model: "gpt-4o-mini", name: "openai"}
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"email": map[string]any{"type": "string"},
		},
		"required":             []any{"email"},
		"additionalProperties": false,
	}
	tools := p.buildTools([]ToolSchema{{Name: "record_user_details", Description: "records interest", Parameters: schema}})
	if len(tools) != 1 {
		t.Fatalf("expected 1 tool, got %d", len(tools))
	}
	fn := tools[0].Function
	if fn.Name != "record_user_details" {
		t.Errorf("unexpected tool name %q", fn.Name)
	}
	if fn.Parameters["required"] == nil {
		t.Error("required fields must survive conversion")
	}
	if fn.Parameters["additionalProperties"] != false {
		t.Error("additionalProperties must survive conversion")
	}
}

// --- Anthropic conversion ---

func TestAnthropic_BuildTools_RequiredLifted(t *testing.T) {
	p := &AnthropicProvider{model: "claude-sonnet-4-20250514"}
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question": map[string]any{"type": "string"},
		},
		"required": []any{"question"},
	}
	tools := p.buildTools([]ToolSchema{{Name: "record_unknown_question", Description: "records a question", Parameters: schema}})
	if len(tools) != 1 {
		t.Fatalf("expected 1 tool, got %d", len(tools))
	}
	in := tools[0].OfTool.InputSchema
	if in.Properties == nil {
		t.Error("properties must be lifted into the input schema")
	}
	if len(in.Required) != 1 || in.Required[0] != "question" {
		t.Errorf("required must be lifted, got %v", in.Required)
	}
}

func TestAnthropic_BuildTools_RequiredStringSlice(t *testing.T) {
	p := &AnthropicProvider{model: "claude-sonnet-4-20250514"}
	schema := map[string]any{
		"type":       "object",
		"properties": map[string]any{"a": map[string]any{"type": "integer"}},
		"required":   []string{"a"},
	}
	tools := p.buildTools([]ToolSchema{{Name: "add", Parameters: schema}})
	in := tools[0].OfTool.InputSchema
	if len(in.Required) != 1 || in.Required[0] != "a" {
		t.Errorf("required []string must be lifted, got %v", in.Required)
	}
}

func TestAnthropic_BuildMessages_Roundtrip(t *testing.T) {
	p := &AnthropicProvider{model: "claude-sonnet-4-20250514"}
	msgs := p.buildMessages([]Message{
		UserMessage("hello"),
		AssistantMessage("hi", nil),
		ToolResultsMessage([]Content{
			{Type: ContentTypeToolResult, ToolUseID: "toolu_1", ToolResult: "{}", IsError: false},
		}),
	})
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	if string(msgs[0].Role) != "user" {
		t.Errorf("expected user role, got %q", msgs[0].Role)
	}
	if string(msgs[1].Role) != "assistant" {
		t.Errorf("expected assistant role, got %q", msgs[1].Role)
	}
	if string(msgs[2].Role) != "user" {
		t.Errorf("tool results must ride on a user message, got %q", msgs[2].Role)
	}
}

// --- Shared types ---

func TestContentTypes(t *testing.T) {
	if ContentTypeText != "text" {
		t.Errorf("expected 'text', got %q", ContentTypeText)
	}
	if ContentTypeToolUse != "tool_use" {
		t.Errorf("expected 'tool_use', got %q", ContentTypeToolUse)
	}
	if ContentTypeToolResult != "tool_result" {
		t.Errorf("expected 'tool_result', got %q", ContentTypeToolResult)
	}
}

func TestUsage(t *testing.T) {
	u := Usage{InputTokens: 1000, OutputTokens: 500}
	if u.InputTokens != 1000 || u.OutputTokens != 500 {
		t.Error("usage fields mismatch")
	}
}
