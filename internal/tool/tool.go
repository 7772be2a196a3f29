// Package tool defines the capability contract the model can invoke during a
// conversation, plus the concrete business tools.
package tool

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Tool is one named, side-effecting operation the model may request. Input is
// a JSON object string; the result is plain text folded back into the
// conversation. Execution failures return a descriptive error and must never
// panic the process.
type Tool interface {
	Name() string
	Description() string
	// InputSchema describes the expected JSON input for the model prompt.
	InputSchema() string
	Execute(ctx context.Context, input string) (string, error)
}

// Registry resolves tool names by exact match. It is populated at
// construction and read-only afterwards, so it is safe to share.
type Registry struct {
	tools map[string]Tool
	names []string
}

// NewRegistry builds a registry from the given tools. Duplicate names are a
// programming error.
func NewRegistry(tools ...Tool) (*Registry, error) {
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		if _, exists := r.tools[t.Name()]; exists {
			return nil, fmt.Errorf("duplicate tool name: %s", t.Name())
		}
		r.tools[t.Name()] = t
		r.names = append(r.names, t.Name())
	}
	sort.Strings(r.names)
	return r, nil
}

// Get returns the tool registered under name.
func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Names returns the registered tool names, sorted.
func (r *Registry) Names() []string {
	return r.names
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	return len(r.tools)
}

// Describe renders the tool catalog for the model prompt.
func (r *Registry) Describe() string {
	var b strings.Builder
	for _, name := range r.names {
		t := r.tools[name]
		fmt.Fprintf(&b, "- %s: %s Input: %s\n", t.Name(), t.Description(), t.InputSchema())
	}
	return b.String()
}
