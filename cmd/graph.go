package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/personabot-ai/personabot/internal/graph"
	"github.com/personabot-ai/personabot/internal/logging"
	"github.com/personabot-ai/personabot/internal/provider"
	"github.com/personabot-ai/personabot/internal/tools"
	"github.com/personabot-ai/personabot/internal/tui"
)

func newGraphCmd() *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Chat with the tool-routing graph demo",
		Long: "Runs the add/multiply calculator graph: a model node routes to a tool\n" +
			"node when the model requests arithmetic, then the pass ends.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(plain)
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "plain REPL output instead of the TUI")
	return cmd
}

func runGraph(plain bool) error {
	cfg := initConfig()
	logger := logging.Logger

	// The demo defaults to its own model unless one was picked explicitly.
	if cfg.Model == "" {
		cfg.Model = cfg.Graph.Model
	}

	p, err := buildProvider(cfg)
	if err != nil {
		return err
	}

	model := cfg.Model
	if model == "" {
		model = p.DefaultModel()
	}

	registry := tools.RouterRegistry()
	executor := tools.NewExecutor(registry,
		time.Duration(cfg.Tools.TimeoutSec)*time.Second,
		cfg.Tools.MaxOutputBytes,
		logger,
	)

	compiled, err := graph.BuildRouter(p, model, executor, cfg.MaxTokens)
	if err != nil {
		return err
	}
	logger.Debug("router graph compiled", "model", model, "tools", registry.Names())

	// History carries across turns for the lifetime of the command.
	var history []provider.Message

	step := func(ctx context.Context, input string) (tui.Turn, error) {
		messages := make([]provider.Message, 0, len(history)+1)
		messages = append(messages, history...)
		messages = append(messages, provider.UserMessage(input))

		out, err := compiled.Invoke(ctx, graph.State{Messages: messages})
		if err != nil {
			return tui.Turn{}, err
		}
		history = out.Messages
		return summarizeTurn(out), nil
	}

	title := fmt.Sprintf("graph demo · %s", model)
	if plain || !term.IsTerminal(int(os.Stdout.Fd())) {
		return tui.RunPlain(title, step, os.Stdin, os.Stdout)
	}
	return tui.Run(title, step)
}

// summarizeTurn reports the assistant reply and tool-call lines of the
// final graph state.
func summarizeTurn(state graph.State) tui.Turn {
	var turn tui.Turn

	// Locate the last assistant message; anything after it is tool results.
	idx := -1
	for i := len(state.Messages) - 1; i >= 0; i-- {
		if state.Messages[i].Role == provider.RoleAssistant {
			idx = i
			break
		}
	}
	if idx == -1 {
		return turn
	}

	assistant := state.Messages[idx]
	turn.Reply = assistant.Text()

	calls := assistant.ToolCalls()
	if len(calls) == 0 {
		return turn
	}

	results := make(map[string]string, len(calls))
	for _, msg := range state.Messages[idx+1:] {
		for _, c := range msg.Content {
			if c.Type == provider.ContentTypeToolResult {
				results[c.ToolUseID] = c.ToolResult
			}
		}
	}

	values := make([]string, 0, len(calls))
	for _, call := range calls {
		result := results[call.ID]
		turn.ToolLines = append(turn.ToolLines, fmt.Sprintf("%s(%s) = %s", call.Name, call.Input, result))
		values = append(values, result)
	}

	// The demo graph ends after the tool pass, so the results become the
	// reply when the model sent no text alongside the calls.
	if turn.Reply == "" {
		turn.Reply = strings.Join(values, ", ")
	}
	return turn
}
