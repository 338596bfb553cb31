// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package coord

import (
	"sync"
)

// AgentRegistry is the process-wide store of known agent descriptors,
// keyed by agent id.
//
// Registration is an upsert: re-registering an id overwrites the previous
// descriptor in place (last write wins) while keeping the entry's original
// position in insertion order. All operations are safe for concurrent use.
type AgentRegistry struct {
	mu     sync.RWMutex
	agents map[string]*AgentInfo
	// order tracks insertion order of agent ids so List never leaks Go
	// map iteration order to callers.
	order []string
}

// AgentFilter narrows a List call. Zero-valued fields match everything;
// set fields are combined conjunctively.
type AgentFilter struct {
	// AgentType matches agents of exactly this type.
	AgentType AgentType
	// Capability matches agents with any capability of this name.
	Capability string
}

// NewAgentRegistry creates an empty AgentRegistry.
func NewAgentRegistry() *AgentRegistry {
	return &AgentRegistry{
		agents: make(map[string]*AgentInfo),
	}
}

// Register upserts the descriptor by agent id. It never fails: same-key
// writes resolve to last caller wins.
func (r *AgentRegistry) Register(info *AgentInfo) error {
	if err := info.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.agents[info.AgentID]; !exists {
		r.order = append(r.order, info.AgentID)
	}
	r.agents[info.AgentID] = info.clone()
	return nil
}

// Lookup returns a copy of the descriptor for the given agent id, or an
// [AgentNotFoundError].
func (r *AgentRegistry) Lookup(agentID string) (*AgentInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	info, ok := r.agents[agentID]
	if !ok {
		return nil, &AgentNotFoundError{AgentID: agentID}
	}
	return info.clone(), nil
}

// List returns copies of all descriptors matching the filter, in
// insertion order. A zero filter matches everything. The result order is
// not a ranking; callers must not depend on it beyond stability.
func (r *AgentRegistry) List(filter AgentFilter) []*AgentInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*AgentInfo, 0, len(r.order))
	for _, id := range r.order {
		info := r.agents[id]
		if filter.AgentType != "" && info.AgentType != filter.AgentType {
			continue
		}
		if filter.Capability != "" && !info.HasCapability(filter.Capability) {
			continue
		}
		out = append(out, info.clone())
	}
	return out
}

// Remove deletes the descriptor for the given agent id. Removing an
// unknown id is a no-op, not an error.
func (r *AgentRegistry) Remove(agentID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.agents[agentID]; !ok {
		return
	}
	delete(r.agents, agentID)
	for i, id := range r.order {
		if id == agentID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of registered agents.
func (r *AgentRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.agents)
}
