package tools

import (
	"sort"

	"github.com/charmbracelet/log"

	"github.com/personabot-ai/personabot/internal/notify"
	"github.com/personabot-ai/personabot/internal/provider"
)

// Registry manages all registered tools.
type Registry struct {
	tools map[string]Tool
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool to the registry, replacing any existing tool
// with the same name.
func (r *Registry) Register(t Tool) {
	r.tools[t.Name()] = t
}

// Get retrieves a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// All returns all registered tools sorted by name.
func (r *Registry) All() []Tool {
	result := make([]Tool, 0, len(r.tools))
	for _, t := range r.tools {
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name() < result[j].Name()
	})
	return result
}

// Names returns the registered tool names sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Schemas renders all registered tools as provider tool schemas,
// sorted by name.
func (r *Registry) Schemas() []provider.ToolSchema {
	all := r.All()
	schemas := make([]provider.ToolSchema, 0, len(all))
	for _, t := range all {
		schemas = append(schemas, provider.ToolSchema{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.InputSchema(),
		})
	}
	return schemas
}

// PersonaRegistry creates the registry for persona chat turns: the two
// recording callbacks backed by the push notifier.
func PersonaRegistry(n notify.Notifier, logger *log.Logger) *Registry {
	r := NewRegistry()
	r.Register(NewRecordUserDetailsTool(n, logger))
	r.Register(NewRecordUnknownQuestionTool(n, logger))
	return r
}

// RouterRegistry creates the registry for the arithmetic router demo.
func RouterRegistry() *Registry {
	r := NewRegistry()
	r.Register(&AddTool{})
	r.Register(&MultiplyTool{})
	return r
}
