// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package tools provides the callable tool registry consumed by the task
// dispatcher, plus the built-in supply-chain tools.
package tools

import (
	"sync"

	"github.com/go-a2a/coord"
)

// Definition describes one registered tool.
type Definition struct {
	Name        string                     `json:"name"`
	Description string                     `json:"description,omitempty"`
	Parameters  map[string]coord.ParamType `json:"parameters,omitempty"`
	Category    string                     `json:"category,omitempty"`
}

// Registry maps tool names to handlers. It implements
// [coord.HandlerRegistry] so it can back a dispatcher directly. All
// operations are safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	defs     map[string]Definition
	handlers map[string]coord.HandlerFunc
	order    []string
}

var _ coord.HandlerRegistry = (*Registry)(nil)

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		defs:     make(map[string]Definition),
		handlers: make(map[string]coord.HandlerFunc),
	}
}

// Register adds a tool with its handler. Registering an existing name
// overwrites it.
func (r *Registry) Register(def Definition, handler coord.HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.defs[def.Name]; !exists {
		r.order = append(r.order, def.Name)
	}
	r.defs[def.Name] = def
	r.handlers[def.Name] = handler
}

// Lookup implements [coord.HandlerRegistry].
func (r *Registry) Lookup(taskType string) (coord.HandlerFunc, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handler, ok := r.handlers[taskType]
	if !ok {
		return nil, &coord.HandlerNotFoundError{TaskType: taskType}
	}
	return handler, nil
}

// List returns tool definitions in registration order, optionally
// filtered by category.
func (r *Registry) List(category string) []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Definition, 0, len(r.order))
	for _, name := range r.order {
		def := r.defs[name]
		if category != "" && def.Category != category {
			continue
		}
		out = append(out, def)
	}
	return out
}

// Capabilities renders the registered tools as agent capabilities, for
// inclusion in an agent card.
func (r *Registry) Capabilities() []coord.Capability {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]coord.Capability, 0, len(r.order))
	for _, name := range r.order {
		def := r.defs[name]
		out = append(out, coord.Capability{
			Name:        def.Name,
			Description: def.Description,
			Parameters:  def.Parameters,
		})
	}
	return out
}
