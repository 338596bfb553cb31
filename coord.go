// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package coord implements the Agent-to-Agent (A2A) coordination runtime:
// agent registration and capability-based discovery, handshake sessions,
// task dispatch with correlation tracking, and real-time event fan-out to
// observers. The wire protocol is JSON-RPC 2.0 over HTTP.
package coord

import (
	"fmt"
	"time"
)

// ProtocolVersion is the A2A protocol version spoken by this runtime.
const ProtocolVersion = "1.0"

// DefaultRPCPath is the default URL path for the A2A JSON-RPC endpoint.
// Agent endpoints advertise a base URL; protocol calls are POSTed to
// base + DefaultRPCPath.
const DefaultRPCPath = "/a2a"

// AgentType classifies the role an agent plays in the coordination mesh.
// The set is open: unknown values round-trip untouched.
type AgentType string

const (
	// AgentTypeOrchestrator coordinates work across other agents.
	AgentTypeOrchestrator AgentType = "orchestrator"
	// AgentTypeLogistics handles shipping and routing tasks.
	AgentTypeLogistics AgentType = "logistics"
	// AgentTypeCompliance handles regulatory and documentation tasks.
	AgentTypeCompliance AgentType = "compliance"
	// AgentTypeKnowledge answers retrieval and enrichment queries.
	AgentTypeKnowledge AgentType = "knowledge"
	// AgentTypeToolProvider exposes a registry of callable tools.
	AgentTypeToolProvider AgentType = "tool_provider"
)

// AgentStatus represents the reported liveness of an agent.
type AgentStatus string

const (
	// AgentStatusActive indicates the agent is serving requests.
	AgentStatusActive AgentStatus = "active"
	// AgentStatusInactive indicates the agent is registered but not serving.
	AgentStatusInactive AgentStatus = "inactive"
	// AgentStatusError indicates the agent reported a fault.
	AgentStatusError AgentStatus = "error"
)

// ParamType is the type tag for a capability parameter.
type ParamType string

const (
	// ParamTypeString is a JSON string parameter.
	ParamTypeString ParamType = "string"
	// ParamTypeNumber is a JSON number parameter.
	ParamTypeNumber ParamType = "number"
	// ParamTypeBoolean is a JSON boolean parameter.
	ParamTypeBoolean ParamType = "boolean"
	// ParamTypeArray is a JSON array parameter.
	ParamTypeArray ParamType = "array"
	// ParamTypeObject is a JSON object parameter.
	ParamTypeObject ParamType = "object"
)

// Capability represents a named operation an agent claims to support.
type Capability struct {
	Name         string               `json:"name"`
	Description  string               `json:"description,omitempty"`
	Parameters   map[string]ParamType `json:"parameters,omitempty"`
	RequiresAuth bool                 `json:"requires_auth,omitempty"`
}

// AgentInfo is the descriptor an agent publishes for discovery.
type AgentInfo struct {
	// AgentID is globally unique and immutable after creation.
	AgentID string `json:"agent_id"`
	// AgentType classifies the agent's role.
	AgentType AgentType `json:"agent_type"`
	// Name is a human-readable service name.
	Name string `json:"name,omitempty"`
	// Version is the agent's own version string.
	Version string `json:"version,omitempty"`
	// Capabilities lists the operations the agent supports, in the
	// order the agent declares them.
	Capabilities []Capability `json:"capabilities"`
	// Endpoint is the base URL at which the agent accepts protocol calls.
	Endpoint string `json:"endpoint"`
	// Status is the agent's reported liveness.
	Status AgentStatus `json:"status,omitempty"`
}

// Validate checks that the descriptor carries the fields every protocol
// operation depends on.
func (a *AgentInfo) Validate() error {
	if a == nil {
		return fmt.Errorf("agent info cannot be nil")
	}
	if a.AgentID == "" {
		return fmt.Errorf("agent_id cannot be empty")
	}
	if a.AgentType == "" {
		return fmt.Errorf("agent_type cannot be empty")
	}
	return nil
}

// HasCapability reports whether any of the agent's capabilities has the
// given name.
func (a *AgentInfo) HasCapability(name string) bool {
	for _, c := range a.Capabilities {
		if c.Name == name {
			return true
		}
	}
	return false
}

// clone returns a deep copy of the descriptor so registry callers cannot
// mutate owned state through shared slices or maps.
func (a *AgentInfo) clone() *AgentInfo {
	if a == nil {
		return nil
	}
	cp := *a
	if a.Capabilities != nil {
		cp.Capabilities = make([]Capability, len(a.Capabilities))
		for i, c := range a.Capabilities {
			cc := c
			if c.Parameters != nil {
				cc.Parameters = make(map[string]ParamType, len(c.Parameters))
				for k, v := range c.Parameters {
					cc.Parameters[k] = v
				}
			}
			cp.Capabilities[i] = cc
		}
	}
	return &cp
}

// Session is an established A2A session between two agents.
//
// Initiator and Responder are snapshots taken at handshake time; later
// mutation of the registry entries does not flow into existing sessions.
type Session struct {
	SessionID     string     `json:"session_id"`
	Initiator     *AgentInfo `json:"initiator"`
	Responder     *AgentInfo `json:"responder"`
	EstablishedAt time.Time  `json:"established_at"`
	LastActivity  time.Time  `json:"last_activity"`
}

// Expired reports whether the session has seen no activity for longer
// than the given inactivity TTL, relative to now.
func (s *Session) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(s.LastActivity) > ttl
}

func (s *Session) clone() *Session {
	if s == nil {
		return nil
	}
	cp := *s
	cp.Initiator = s.Initiator.clone()
	cp.Responder = s.Responder.clone()
	return &cp
}

// TaskStatus is the domain-level outcome of a dispatched task.
type TaskStatus string

const (
	// TaskStatusCompleted indicates the handler returned a result.
	TaskStatusCompleted TaskStatus = "completed"
	// TaskStatusFailed indicates the handler failed or was not found.
	TaskStatusFailed TaskStatus = "failed"
)

// TaskRequest is a typed task call carried in the "task" method params.
type TaskRequest struct {
	TaskType string         `json:"task_type"`
	Payload  map[string]any `json:"payload"`
	// CorrelationID is an opaque caller-supplied tracing id. It is
	// propagated verbatim and never interpreted by the runtime.
	CorrelationID *string `json:"correlation_id,omitempty"`
}

// TaskResponse is the result of a dispatched TaskRequest.
//
// A handler failure is represented as Status == TaskStatusFailed inside a
// successful JSON-RPC result; it is never a JSON-RPC error.
type TaskResponse struct {
	TaskType      string         `json:"task_type"`
	Result        map[string]any `json:"result"`
	Status        TaskStatus     `json:"status"`
	CorrelationID *string        `json:"correlation_id,omitempty"`
}
