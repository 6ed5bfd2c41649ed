// Package agent drives the tool-calling loop: send the conversation to
// the model, execute any requested tools, feed the results back, and
// repeat until the model answers in plain text.
package agent

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/personabot-ai/personabot/internal/provider"
	"github.com/personabot-ai/personabot/internal/tools"
)

// defaultMaxIterations bounds the number of model calls in one turn so
// a model that keeps requesting tools cannot spin forever.
const defaultMaxIterations = 10

// fallbackReply is returned when the turn hits the iteration cap
// without the model ever producing text.
const fallbackReply = "I wasn't able to finish processing that request. Could you rephrase it?"

// Agent runs chat turns against one provider with one tool set.
type Agent struct {
	provider      provider.Provider
	executor      *tools.Executor
	schemas       []provider.ToolSchema
	model         string
	systemPrompt  string
	maxTokens     int64
	maxIterations int
	logger        *log.Logger
}

// Options configures an Agent beyond its provider and executor.
type Options struct {
	Model         string // empty selects the provider's default model
	SystemPrompt  string
	MaxTokens     int64 // <= 0 selects 1024
	MaxIterations int   // <= 0 selects 10
	Logger        *log.Logger
}

// New creates an Agent. Tool schemas are derived from the executor's
// registry once, up front.
func New(p provider.Provider, exec *tools.Executor, opts Options) *Agent {
	model := opts.Model
	if model == "" {
		model = p.DefaultModel()
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	maxIterations := opts.MaxIterations
	if maxIterations <= 0 {
		maxIterations = defaultMaxIterations
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Agent{
		provider:      p,
		executor:      exec,
		schemas:       exec.Registry().Schemas(),
		model:         model,
		systemPrompt:  opts.SystemPrompt,
		maxTokens:     maxTokens,
		maxIterations: maxIterations,
		logger:        logger,
	}
}

// Model returns the model name the agent sends requests with.
func (a *Agent) Model() string { return a.model }

// ChatTurn runs one user turn to completion: append the user message,
// call the model, execute requested tools, and call again until the
// model replies without tool calls. The input history is never
// modified; the returned slice is the extended conversation.
func (a *Agent) ChatTurn(ctx context.Context, history []provider.Message, userMessage string) (string, []provider.Message, error) {
	messages := make([]provider.Message, 0, len(history)+2)
	messages = append(messages, history...)
	messages = append(messages, provider.UserMessage(userMessage))

	var lastText string
	for iteration := 0; iteration < a.maxIterations; iteration++ {
		resp, err := provider.ChatWithRetry(ctx, a.provider, &provider.ChatRequest{
			Model:        a.model,
			Messages:     messages,
			Tools:        a.schemas,
			SystemPrompt: a.systemPrompt,
			MaxTokens:    a.maxTokens,
		}, a.logger)
		if err != nil {
			return "", history, fmt.Errorf("model call: %w", err)
		}

		messages = append(messages, provider.AssistantMessage(resp.Content, resp.ToolCalls))
		if resp.Content != "" {
			lastText = resp.Content
		}

		if len(resp.ToolCalls) == 0 {
			a.logger.Debug("turn complete",
				"iterations", iteration+1,
				"input_tokens", resp.Usage.InputTokens,
				"output_tokens", resp.Usage.OutputTokens)
			return resp.Content, messages, nil
		}

		results := make([]provider.Content, 0, len(resp.ToolCalls))
		for _, call := range resp.ToolCalls {
			a.logger.Info("tool called", "tool", call.Name)
			result := a.executor.Execute(ctx, call.Name, call.Input)
			results = append(results, provider.Content{
				Type:       provider.ContentTypeToolResult,
				ToolUseID:  call.ID,
				ToolResult: result.Content,
				IsError:    result.IsError,
			})
		}
		messages = append(messages, provider.ToolResultsMessage(results))
	}

	a.logger.Warn("turn reached max iterations, stopping", "max", a.maxIterations)
	if lastText == "" {
		lastText = fallbackReply
	}
	return lastText, messages, nil
}
