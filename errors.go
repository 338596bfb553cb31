// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package coord

import (
	"fmt"
	"time"
)

// AgentNotFoundError is returned when an agent id is not in the registry.
type AgentNotFoundError struct {
	AgentID string
}

// Error implements the error interface.
func (e *AgentNotFoundError) Error() string {
	return fmt.Sprintf("agent not found: %s", e.AgentID)
}

// SessionNotFoundError is returned when a session id is unknown.
type SessionNotFoundError struct {
	SessionID string
}

// Error implements the error interface.
func (e *SessionNotFoundError) Error() string {
	return fmt.Sprintf("session not found: %s", e.SessionID)
}

// SessionExpiredError is returned when a session exists but has seen no
// activity for longer than the inactivity TTL. The stale session is still
// returned alongside the error for diagnostic use.
type SessionExpiredError struct {
	SessionID    string
	LastActivity time.Time
}

// Error implements the error interface.
func (e *SessionExpiredError) Error() string {
	return fmt.Sprintf("session expired: %s (last activity %s)", e.SessionID, e.LastActivity.Format(time.RFC3339))
}

// HandshakeRejectedError is returned when the remote agent explicitly
// declines a handshake. The runtime never retries; retry policy belongs
// to the caller.
type HandshakeRejectedError struct {
	Endpoint string
	Message  string
}

// Error implements the error interface.
func (e *HandshakeRejectedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("handshake rejected by %s", e.Endpoint)
	}
	return fmt.Sprintf("handshake rejected by %s: %s", e.Endpoint, e.Message)
}

// HandshakeUnreachableError is returned when the handshake call cannot be
// completed at the transport level.
type HandshakeUnreachableError struct {
	Endpoint string
	Err      error
}

// Error implements the error interface.
func (e *HandshakeUnreachableError) Error() string {
	return fmt.Sprintf("handshake target unreachable: %s: %v", e.Endpoint, e.Err)
}

// Unwrap returns the underlying transport error.
func (e *HandshakeUnreachableError) Unwrap() error {
	return e.Err
}

// HandlerNotFoundError is returned by a handler registry when no handler
// is registered for a task type.
type HandlerNotFoundError struct {
	TaskType string
}

// Error implements the error interface.
func (e *HandlerNotFoundError) Error() string {
	return fmt.Sprintf("no handler registered for task type: %s", e.TaskType)
}
