// Package graph implements a small state-machine runner for wiring
// model and tool nodes into fixed flows: named nodes transforming a
// shared state, plain edges, and conditional edges that pick the next
// node by inspecting the state.
package graph

import (
	"context"
	"fmt"

	"github.com/personabot-ai/personabot/internal/provider"
)

// Reserved node names marking the graph's entry and exit.
const (
	START = "__start__"
	END   = "__end__"
)

// maxSteps caps one invocation so a miswired graph cannot run forever.
const maxSteps = 25

// State is the conversation snapshot threaded through the nodes.
type State struct {
	Messages []provider.Message
}

// LastMessage returns the most recent message, or a zero Message when
// the state is empty.
func (s State) LastMessage() provider.Message {
	if len(s.Messages) == 0 {
		return provider.Message{}
	}
	return s.Messages[len(s.Messages)-1]
}

// NodeFunc transforms the state and returns its replacement.
type NodeFunc func(ctx context.Context, state State) (State, error)

// ConditionFunc inspects the state and names the next node.
type ConditionFunc func(state State) string

// Graph is a mutable graph under construction. Compile freezes it.
type Graph struct {
	nodes      map[string]NodeFunc
	edges      map[string]string
	conditions map[string]ConditionFunc
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:      make(map[string]NodeFunc),
		edges:      make(map[string]string),
		conditions: make(map[string]ConditionFunc),
	}
}

// AddNode registers a named node.
func (g *Graph) AddNode(name string, fn NodeFunc) *Graph {
	g.nodes[name] = fn
	return g
}

// AddEdge wires from -> to unconditionally. An edge from START marks
// the entry node.
func (g *Graph) AddEdge(from, to string) *Graph {
	g.edges[from] = to
	return g
}

// AddConditionalEdges wires from -> cond(state), evaluated after the
// node runs. A conditional edge takes precedence over a plain one.
func (g *Graph) AddConditionalEdges(from string, cond ConditionFunc) *Graph {
	g.conditions[from] = cond
	return g
}

// Compile validates the wiring and returns a runnable graph.
func (g *Graph) Compile() (*Compiled, error) {
	if _, ok := g.edges[START]; !ok {
		return nil, fmt.Errorf("graph has no entry edge from START")
	}
	for name, fn := range g.nodes {
		if fn == nil {
			return nil, fmt.Errorf("node %q has no function", name)
		}
	}
	for from, to := range g.edges {
		if from != START {
			if _, ok := g.nodes[from]; !ok {
				return nil, fmt.Errorf("edge from unknown node %q", from)
			}
		}
		if to != END {
			if _, ok := g.nodes[to]; !ok {
				return nil, fmt.Errorf("edge to unknown node %q", to)
			}
		}
	}
	for from := range g.conditions {
		if _, ok := g.nodes[from]; !ok {
			return nil, fmt.Errorf("conditional edge from unknown node %q", from)
		}
	}
	return &Compiled{graph: g}, nil
}

// Compiled is an immutable, runnable graph.
type Compiled struct {
	graph *Graph
}

// Invoke runs the graph from START until it reaches END, threading the
// state through each visited node.
func (c *Compiled) Invoke(ctx context.Context, state State) (State, error) {
	current := c.graph.edges[START]
	for step := 0; step < maxSteps; step++ {
		if current == END {
			return state, nil
		}
		if err := ctx.Err(); err != nil {
			return state, err
		}

		fn, ok := c.graph.nodes[current]
		if !ok {
			return state, fmt.Errorf("route to unknown node %q", current)
		}
		next, err := fn(ctx, state)
		if err != nil {
			return state, fmt.Errorf("node %s: %w", current, err)
		}
		state = next

		if cond, ok := c.graph.conditions[current]; ok {
			current = cond(state)
		} else if to, ok := c.graph.edges[current]; ok {
			current = to
		} else {
			return state, fmt.Errorf("node %q has no outgoing edge", current)
		}
	}
	return state, fmt.Errorf("graph exceeded %d steps without reaching END", maxSteps)
}
