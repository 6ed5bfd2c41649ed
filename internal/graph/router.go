package graph

import (
	"context"

	"github.com/personabot-ai/personabot/internal/provider"
	"github.com/personabot-ai/personabot/internal/tools"
)

// Node names of the router demo graph.
const (
	NodeLLM   = "tool_calling_llm"
	NodeTools = "tools"
)

// appendMessages copies before appending so node inputs stay intact.
func appendMessages(msgs []provider.Message, more ...provider.Message) []provider.Message {
	out := make([]provider.Message, len(msgs), len(msgs)+len(more))
	copy(out, msgs)
	return append(out, more...)
}

// ChatNode returns a node that sends the state's messages to the model
// and appends the assistant reply, tool calls included.
func ChatNode(p provider.Provider, model string, schemas []provider.ToolSchema, maxTokens int64) NodeFunc {
	return func(ctx context.Context, state State) (State, error) {
		resp, err := provider.ChatWithRetry(ctx, p, &provider.ChatRequest{
			Model:     model,
			Messages:  state.Messages,
			Tools:     schemas,
			MaxTokens: maxTokens,
		}, nil)
		if err != nil {
			return state, err
		}
		state.Messages = appendMessages(state.Messages, provider.AssistantMessage(resp.Content, resp.ToolCalls))
		return state, nil
	}
}

// ToolNode returns a node that executes every tool call in the last
// message and appends one message of tool results.
func ToolNode(executor *tools.Executor) NodeFunc {
	return func(ctx context.Context, state State) (State, error) {
		calls := state.LastMessage().ToolCalls()
		if len(calls) == 0 {
			return state, nil
		}
		results := make([]provider.Content, 0, len(calls))
		for _, call := range calls {
			result := executor.Execute(ctx, call.Name, call.Input)
			results = append(results, provider.Content{
				Type:       provider.ContentTypeToolResult,
				ToolUseID:  call.ID,
				ToolResult: result.Content,
				IsError:    result.IsError,
			})
		}
		state.Messages = appendMessages(state.Messages, provider.ToolResultsMessage(results))
		return state, nil
	}
}

// ToolsCondition routes to the tools node when the newest message
// requests tool calls, otherwise to END.
func ToolsCondition(state State) string {
	if len(state.LastMessage().ToolCalls()) > 0 {
		return NodeTools
	}
	return END
}

// BuildRouter assembles the arithmetic router demo: an LLM node bound
// to the add and multiply tools, and a tool-execution node.
//
//	START -> tool_calling_llm -(ToolsCondition)-> tools -> END
//
// The tools edge goes straight to END: results are not fed back to the
// model in this demo.
func BuildRouter(p provider.Provider, model string, executor *tools.Executor, maxTokens int64) (*Compiled, error) {
	g := New()
	g.AddNode(NodeLLM, ChatNode(p, model, executor.Registry().Schemas(), maxTokens))
	g.AddNode(NodeTools, ToolNode(executor))
	g.AddEdge(START, NodeLLM)
	g.AddConditionalEdges(NodeLLM, ToolsCondition)
	g.AddEdge(NodeTools, END)
	return g.Compile()
}
