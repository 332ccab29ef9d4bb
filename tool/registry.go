package tool

import (
	"fmt"
	"sync"

	"github.com/hupe1980/agentpipe/core"
)

// Registry is the explicit dispatch table mapping tool names to tools.
// Agents resolve the tool they call by name instead of letting a model pick
// one from free text. Registry is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string
}

// NewRegistry builds a registry from the given tools. Duplicate names are rejected.
func NewRegistry(tools ...Tool) (*Registry, error) {
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a tool.
func (r *Registry) Register(t Tool) error {
	if t == nil {
		return fmt.Errorf("tool registry: nil tool")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[t.Name()]; exists {
		return fmt.Errorf("tool registry: duplicate tool name %q", t.Name())
	}

	r.tools[t.Name()] = t
	r.order = append(r.order, t.Name())

	return nil
}

// Lookup returns the tool registered under name.
func (r *Registry) Lookup(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Names returns registered tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Dispatch calls the named tool. An unknown name yields an UNKNOWN_TOOL error result.
func (r *Registry) Dispatch(rc *core.RunContext, name string, args map[string]any) core.ToolResult {
	t, ok := r.Lookup(name)
	if !ok {
		rc.Logger().Warn("tool.dispatch.unknown", "tool", name, "args", summarizeArgs(args))
		return NewToolError(name, fmt.Sprintf("no tool named %q is registered (available: %v)", name, r.Names()), CodeUnknownTool).Result()
	}
	return t.Call(rc, args)
}
