// Copyright 2025 The Go A2A Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package event provides best-effort fan-out of coordination events to
// dynamically connected observers. There is no durable queue and no
// replay: events published while no observer is connected are lost.
package event

import (
	"time"
)

// Coordination event types published by the runtime.
const (
	// TypeAgentConnected is published when a handshake is accepted from
	// a remote agent.
	TypeAgentConnected = "agent_connected"
	// TypeHandshakeCompleted is published when an initiated handshake
	// establishes a session.
	TypeHandshakeCompleted = "handshake_completed"
	// TypeTaskStarted is published when task dispatch begins.
	TypeTaskStarted = "agent_task_started"
	// TypeTaskCompleted is published when a task handler succeeds.
	TypeTaskCompleted = "agent_task_completed"
	// TypeTaskFailed is published when a task handler fails or is missing.
	TypeTaskFailed = "agent_task_failed"
)

// Event is one observed coordination event.
type Event struct {
	// Type names the event, e.g. "agent_connected".
	Type string `json:"type"`
	// Data carries event-specific fields.
	Data map[string]any `json:"data"`
	// Timestamp is the publication time in UTC.
	Timestamp time.Time `json:"timestamp"`
}

// Publisher is the write side of the broadcaster, consumed by the
// coordination runtime. A nil Publisher is treated as a no-op by all
// runtime components.
type Publisher interface {
	// Publish delivers the event to all currently connected observers.
	// Delivery is fire-and-forget; Publish never blocks on a slow
	// observer and never fails.
	Publish(eventType string, data map[string]any)
}
