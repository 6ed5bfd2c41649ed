package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

const (
	defaultToolTimeout = 30 * time.Second
	defaultMaxOutput   = 16 * 1024
)

// Executor runs tool calls requested by the model, applying a per-call
// timeout and an output size limit.
type Executor struct {
	registry  *Registry
	timeout   time.Duration
	maxOutput int
	logger    *log.Logger
}

// NewExecutor creates a tool executor over the given registry. Zero
// timeout or maxOutput select the defaults; a nil logger uses the
// global one.
func NewExecutor(registry *Registry, timeout time.Duration, maxOutput int, logger *log.Logger) *Executor {
	if timeout <= 0 {
		timeout = defaultToolTimeout
	}
	if maxOutput <= 0 {
		maxOutput = defaultMaxOutput
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Executor{
		registry:  registry,
		timeout:   timeout,
		maxOutput: maxOutput,
		logger:    logger,
	}
}

// Registry returns the underlying tool registry.
func (e *Executor) Registry() *Registry {
	return e.registry
}

// Execute runs a single tool call. A name with no registered tool yields
// an empty JSON object result, not an error: the model sees "{}" and the
// conversation carries on.
func (e *Executor) Execute(ctx context.Context, name string, params json.RawMessage) ToolResult {
	tool, ok := e.registry.Get(name)
	if !ok {
		e.logger.Warn("model requested unknown tool", "tool", name)
		return ToolResult{Content: "{}"}
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	e.logger.Debug("executing tool", "tool", name, "params", string(params))

	result, err := e.invoke(ctx, tool, params)
	if err != nil {
		e.logger.Warn("tool failed", "tool", name, "err", err)
		return ToolResult{Content: fmt.Sprintf("error: %v", err), IsError: true}
	}

	if len(result.Content) > e.maxOutput {
		result.Content = truncateHeadTail(result.Content, e.maxOutput)
	}
	return result
}

// invoke calls the tool, converting a panic into an error.
func (e *Executor) invoke(ctx context.Context, tool Tool, params json.RawMessage) (result ToolResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tool %s panicked: %v", tool.Name(), r)
		}
	}()
	return tool.Execute(ctx, params)
}

// truncateHeadTail keeps the head (60%) and tail (40%) of a string,
// omitting the middle. Tail content (errors, final results) is often
// more important.
func truncateHeadTail(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	head := maxLen * 3 / 5
	tail := maxLen * 2 / 5
	omitted := len(s) - head - tail
	return s[:head] + fmt.Sprintf("\n\n[...%d chars omitted...]\n\n", omitted) + s[len(s)-tail:]
}
