package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/personabot-ai/personabot/internal/notify"
)

// Values substituted when the model omits an optional field.
const (
	nameFallback  = "Name not provided"
	notesFallback = "Not provided"
)

// recordedOK is returned to the model after a successful recording.
// Push delivery is fire and forget: a failed POST is logged, never
// surfaced to the model.
const recordedOK = `{"recorded": "ok"}`

// UserDetailsInput holds the arguments of record_user_details.
type UserDetailsInput struct {
	Email string `json:"email" jsonschema_description:"The email address of this user"`
	Name  string `json:"name,omitempty" jsonschema_description:"The name of this user"`
	Notes string `json:"notes,omitempty" jsonschema_description:"Any additional information that is worth recording"`
}

// RecordUserDetailsTool records a visitor who wants to get in touch,
// pushing their contact details to the persona's owner.
type RecordUserDetailsTool struct {
	notifier notify.Notifier
	logger   *log.Logger
}

// NewRecordUserDetailsTool creates the record_user_details tool.
func NewRecordUserDetailsTool(n notify.Notifier, logger *log.Logger) *RecordUserDetailsTool {
	if logger == nil {
		logger = log.Default()
	}
	return &RecordUserDetailsTool{notifier: n, logger: logger}
}

func (t *RecordUserDetailsTool) Name() string { return "record_user_details" }

func (t *RecordUserDetailsTool) Description() string {
	return "Use this tool to record that a user is interested in being in touch and provided an email address"
}

func (t *RecordUserDetailsTool) InputSchema() map[string]any {
	return GenerateSchema[UserDetailsInput]()
}

func (t *RecordUserDetailsTool) Execute(ctx context.Context, params json.RawMessage) (ToolResult, error) {
	var p UserDetailsInput
	if err := json.Unmarshal(params, &p); err != nil {
		return ToolResult{}, fmt.Errorf("invalid params: %w", err)
	}
	if p.Email == "" {
		return ToolResult{}, fmt.Errorf("email is required")
	}
	name := p.Name
	if name == "" {
		name = nameFallback
	}
	notes := p.Notes
	if notes == "" {
		notes = notesFallback
	}

	msg := fmt.Sprintf("Recording interest from %s with email %s and notes: %s", name, p.Email, notes)
	if err := t.notifier.Push(ctx, msg); err != nil {
		t.logger.Warn("push failed", "tool", t.Name(), "err", err)
	}
	return ToolResult{Content: recordedOK}, nil
}

// UnknownQuestionInput holds the arguments of record_unknown_question.
type UnknownQuestionInput struct {
	Question string `json:"question" jsonschema_description:"The question that couldn't be answered"`
}

// RecordUnknownQuestionTool records a question the persona could not
// answer so the owner can follow up.
type RecordUnknownQuestionTool struct {
	notifier notify.Notifier
	logger   *log.Logger
}

// NewRecordUnknownQuestionTool creates the record_unknown_question tool.
func NewRecordUnknownQuestionTool(n notify.Notifier, logger *log.Logger) *RecordUnknownQuestionTool {
	if logger == nil {
		logger = log.Default()
	}
	return &RecordUnknownQuestionTool{notifier: n, logger: logger}
}

func (t *RecordUnknownQuestionTool) Name() string { return "record_unknown_question" }

func (t *RecordUnknownQuestionTool) Description() string {
	return "Always use this tool to record any question that couldn't be answered or you didn't know the answer to"
}

func (t *RecordUnknownQuestionTool) InputSchema() map[string]any {
	return GenerateSchema[UnknownQuestionInput]()
}

func (t *RecordUnknownQuestionTool) Execute(ctx context.Context, params json.RawMessage) (ToolResult, error) {
	var p UnknownQuestionInput
	if err := json.Unmarshal(params, &p); err != nil {
		return ToolResult{}, fmt.Errorf("invalid params: %w", err)
	}
	if p.Question == "" {
		return ToolResult{}, fmt.Errorf("question is required")
	}

	msg := fmt.Sprintf("Recording %s asked that I couldn't answer", p.Question)
	if err := t.notifier.Push(ctx, msg); err != nil {
		t.logger.Warn("push failed", "tool", t.Name(), "err", err)
	}
	return ToolResult{Content: recordedOK}, nil
}
