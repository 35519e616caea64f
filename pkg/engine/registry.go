package engine

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Handler executes one tool invocation. Arguments arrive as decoded JSON;
// handlers that only cause side effects return nil.
type Handler func(ctx context.Context, args map[string]any) error

// Tool describes one function the engine may invoke during a conversation.
type Tool struct {
	// Name is the identifier the engine dispatches on
	Name string

	// Description tells the model when to invoke the tool
	Description string

	// Schema is the JSON schema of the tool's arguments
	Schema map[string]any

	// Handler runs when the engine invokes the tool
	Handler Handler
}

// Registry maps tool names to typed handlers. It is the engine's entire
// dispatch surface: engines enumerate Tools() to declare functions to their
// provider and call Dispatch for each invocation that comes back.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

// Register adds a tool to the registry. Registering a second tool under an
// existing name is an error.
func (r *Registry) Register(tool Tool) error {
	if tool.Name == "" {
		return fmt.Errorf("tool name is required")
	}
	if tool.Handler == nil {
		return fmt.Errorf("tool %s: handler is required", tool.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[tool.Name]; exists {
		return fmt.Errorf("tool %s is already registered", tool.Name)
	}

	r.tools[tool.Name] = tool
	return nil
}

// Dispatch invokes the named tool with the given arguments.
func (r *Registry) Dispatch(ctx context.Context, name string, args map[string]any) error {
	r.mu.RLock()
	tool, exists := r.tools[name]
	r.mu.RUnlock()

	if !exists {
		return fmt.Errorf("unknown tool: %s", name)
	}

	return tool.Handler(ctx, args)
}

// Tools returns all registered tools sorted by name.
func (r *Registry) Tools() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		tools = append(tools, tool)
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name < tools[j].Name })
	return tools
}
