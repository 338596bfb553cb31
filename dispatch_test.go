// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package coord_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	gocmp "github.com/google/go-cmp/cmp"

	"github.com/go-a2a/coord"
	"github.com/go-a2a/coord/event"
)

// handlerMap is a minimal HandlerRegistry for tests.
type handlerMap map[string]coord.HandlerFunc

func (m handlerMap) Lookup(taskType string) (coord.HandlerFunc, error) {
	h, ok := m[taskType]
	if !ok {
		return nil, &coord.HandlerNotFoundError{TaskType: taskType}
	}
	return h, nil
}

// capturePublisher records published events in order.
type capturePublisher struct {
	mu     sync.Mutex
	events []event.Event
}

var _ event.Publisher = (*capturePublisher)(nil)

func (p *capturePublisher) Publish(eventType string, data map[string]any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event.Event{Type: eventType, Data: data})
}

func (p *capturePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

// captureRecorder keeps every dispatch record it is handed.
type captureRecorder struct {
	mu      sync.Mutex
	records []*coord.DispatchRecord
}

func (r *captureRecorder) RecordDispatch(_ context.Context, rec *coord.DispatchRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	return nil
}

func echoHandler(_ context.Context, payload map[string]any) (map[string]any, error) {
	return map[string]any{"echo": payload["value"]}, nil
}

func TestDispatcher_Dispatch(t *testing.T) {
	t.Parallel()

	handlers := handlerMap{
		"echo": echoHandler,
		"boom": func(context.Context, map[string]any) (map[string]any, error) {
			return nil, fmt.Errorf("downstream unavailable")
		},
	}

	tests := map[string]struct {
		req        *coord.TaskRequest
		wantStatus coord.TaskStatus
		wantResult map[string]any
		wantEvents []string
	}{
		"success": {
			req: &coord.TaskRequest{
				TaskType: "echo",
				Payload:  map[string]any{"value": "hi"},
			},
			wantStatus: coord.TaskStatusCompleted,
			wantResult: map[string]any{"echo": "hi"},
			wantEvents: []string{event.TypeTaskStarted, event.TypeTaskCompleted},
		},
		"handler error": {
			req: &coord.TaskRequest{
				TaskType: "boom",
			},
			wantStatus: coord.TaskStatusFailed,
			wantResult: map[string]any{"error": "downstream unavailable"},
			wantEvents: []string{event.TypeTaskStarted, event.TypeTaskFailed},
		},
		"unknown task type": {
			req: &coord.TaskRequest{
				TaskType: "teleport",
			},
			wantStatus: coord.TaskStatusFailed,
			wantResult: map[string]any{"error": "no handler registered for task type: teleport"},
			wantEvents: []string{event.TypeTaskStarted, event.TypeTaskFailed},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			pub := &capturePublisher{}
			d := coord.NewDispatcher(handlers, coord.NewSessionStore()).WithPublisher(pub)

			resp, err := d.Dispatch(context.Background(), tt.req, "")
			if err != nil {
				t.Fatalf("Dispatch() error = %v", err)
			}
			if resp.Status != tt.wantStatus {
				t.Errorf("Status = %s, want %s", resp.Status, tt.wantStatus)
			}
			if resp.TaskType != tt.req.TaskType {
				t.Errorf("TaskType = %s, want %s", resp.TaskType, tt.req.TaskType)
			}
			if diff := gocmp.Diff(tt.wantResult, resp.Result); diff != "" {
				t.Errorf("Result mismatch (-want +got):\n%s", diff)
			}
			if diff := gocmp.Diff(tt.wantEvents, pub.types()); diff != "" {
				t.Errorf("events mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDispatcher_CorrelationPassthrough(t *testing.T) {
	t.Parallel()

	special := `corr/with spaces & символы 🚚`
	empty := ""
	plain := "corr-123"

	tests := map[string]struct {
		correlationID *string
	}{
		"absent":             {correlationID: nil},
		"empty string":       {correlationID: &empty},
		"plain":              {correlationID: &plain},
		"special characters": {correlationID: &special},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			d := coord.NewDispatcher(handlerMap{"echo": echoHandler}, coord.NewSessionStore())
			resp, err := d.Dispatch(context.Background(), &coord.TaskRequest{
				TaskType:      "echo",
				CorrelationID: tt.correlationID,
			}, "")
			if err != nil {
				t.Fatalf("Dispatch() error = %v", err)
			}

			// Absent stays absent, present is echoed byte for byte.
			if tt.correlationID == nil {
				if resp.CorrelationID != nil {
					t.Errorf("CorrelationID = %q, want nil", *resp.CorrelationID)
				}
				return
			}
			if resp.CorrelationID == nil {
				t.Fatal("CorrelationID = nil, want value")
			}
			if *resp.CorrelationID != *tt.correlationID {
				t.Errorf("CorrelationID = %q, want %q", *resp.CorrelationID, *tt.correlationID)
			}
		})
	}
}

func TestDispatcher_SessionTracking(t *testing.T) {
	t.Parallel()

	sessions := coord.NewSessionStore()
	initiator := &coord.AgentInfo{AgentID: "orchestrator-001", AgentType: coord.AgentTypeOrchestrator}
	responder := &coord.AgentInfo{AgentID: "logistics-001", AgentType: coord.AgentTypeLogistics}
	sess := sessions.Create(initiator, responder)

	d := coord.NewDispatcher(handlerMap{"echo": echoHandler}, sessions)

	// Known session: dispatch succeeds and the session stays retrievable.
	resp, err := d.Dispatch(context.Background(), &coord.TaskRequest{TaskType: "echo"}, sess.SessionID)
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if resp.Status != coord.TaskStatusCompleted {
		t.Errorf("Status = %s, want %s", resp.Status, coord.TaskStatusCompleted)
	}

	// Unknown session: tracked as a condition, dispatch proceeds anyway.
	resp, err = d.Dispatch(context.Background(), &coord.TaskRequest{TaskType: "echo"}, "no-such-session")
	if err != nil {
		t.Fatalf("Dispatch() with unknown session error = %v", err)
	}
	if resp.Status != coord.TaskStatusCompleted {
		t.Errorf("Status = %s, want %s", resp.Status, coord.TaskStatusCompleted)
	}
}

func TestDispatcher_Timeout(t *testing.T) {
	t.Parallel()

	handlers := handlerMap{
		"slow": func(ctx context.Context, _ map[string]any) (map[string]any, error) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(5 * time.Second):
				return map[string]any{}, nil
			}
		},
	}
	d := coord.NewDispatcher(handlers, coord.NewSessionStore()).WithTimeout(50 * time.Millisecond)

	resp, err := d.Dispatch(context.Background(), &coord.TaskRequest{TaskType: "slow"}, "")
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if resp.Status != coord.TaskStatusFailed {
		t.Errorf("Status = %s, want %s", resp.Status, coord.TaskStatusFailed)
	}
	errMsg, _ := resp.Result["error"].(string)
	if !strings.Contains(errMsg, "timed out") {
		t.Errorf("Result error = %q, want timeout message", errMsg)
	}
}

func TestDispatcher_HandlerPanic(t *testing.T) {
	t.Parallel()

	handlers := handlerMap{
		"panicky": func(context.Context, map[string]any) (map[string]any, error) {
			panic("payload assertion failed")
		},
	}
	d := coord.NewDispatcher(handlers, coord.NewSessionStore())

	resp, err := d.Dispatch(context.Background(), &coord.TaskRequest{TaskType: "panicky"}, "")
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if resp.Status != coord.TaskStatusFailed {
		t.Errorf("Status = %s, want %s", resp.Status, coord.TaskStatusFailed)
	}
	errMsg, _ := resp.Result["error"].(string)
	if !strings.Contains(errMsg, "handler panic") {
		t.Errorf("Result error = %q, want handler panic message", errMsg)
	}
}

func TestDispatcher_Recorder(t *testing.T) {
	t.Parallel()

	rec := &captureRecorder{}
	corr := "corr-7"
	d := coord.NewDispatcher(handlerMap{"echo": echoHandler}, coord.NewSessionStore()).WithRecorder(rec)

	if _, err := d.Dispatch(context.Background(), &coord.TaskRequest{
		TaskType:      "echo",
		CorrelationID: &corr,
	}, "sess-1"); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}

	if len(rec.records) != 1 {
		t.Fatalf("got %d records, want 1", len(rec.records))
	}
	got := rec.records[0]
	if got.TaskType != "echo" {
		t.Errorf("TaskType = %s, want echo", got.TaskType)
	}
	if got.Status != coord.TaskStatusCompleted {
		t.Errorf("Status = %s, want %s", got.Status, coord.TaskStatusCompleted)
	}
	if got.CorrelationID == nil || *got.CorrelationID != corr {
		t.Errorf("CorrelationID = %v, want %s", got.CorrelationID, corr)
	}
	if got.SessionID != "sess-1" {
		t.Errorf("SessionID = %s, want sess-1", got.SessionID)
	}
	if got.Error != "" {
		t.Errorf("Error = %q, want empty", got.Error)
	}
	if got.FinishedAt.Before(got.StartedAt) {
		t.Errorf("FinishedAt %v before StartedAt %v", got.FinishedAt, got.StartedAt)
	}
}
