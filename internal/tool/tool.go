package tool

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Definition describes a callable tool.
type Definition struct {
	Name        string
	Description string
}

// Func executes a tool against its raw input and returns the result text.
type Func func(ctx context.Context, input string) (string, error)

// Registry manages available tools and their execution.
// It provides a centralized way to register, discover, and execute tools.
type Registry struct {
	mu        sync.RWMutex
	tools     map[string]Definition
	executors map[string]Func
}

// NewRegistry creates a new tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools:     make(map[string]Definition),
		executors: make(map[string]Func),
	}
}

// Register adds a tool to the registry.
func (r *Registry) Register(def Definition, fn Func) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[def.Name]; exists {
		return fmt.Errorf("tool %q already registered", def.Name)
	}

	r.tools[def.Name] = def
	r.executors[def.Name] = fn
	return nil
}

// Unregister removes a tool from the registry.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.tools, name)
	delete(r.executors, name)
}

// Get returns a tool definition by name.
func (r *Registry) Get(name string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.tools[name]
	return def, ok
}

// List returns all registered tool definitions sorted by name.
func (r *Registry) List() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]Definition, 0, len(r.tools))
	for _, def := range r.tools {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// Execute runs a tool and returns its result.
func (r *Registry) Execute(ctx context.Context, name, input string) (string, error) {
	r.mu.RLock()
	fn, ok := r.executors[name]
	r.mu.RUnlock()

	if !ok {
		return "", fmt.Errorf("unknown tool: %s", name)
	}

	return fn(ctx, input)
}

// Has checks if a tool is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.tools[name]
	return ok
}

// Count returns the number of registered tools.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.tools)
}
