// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package coord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-a2a/coord/event"
)

// DefaultTaskTimeout bounds a single handler invocation.
const DefaultTaskTimeout = 30 * time.Second

// HandlerFunc executes one task. The payload is the request's parameter
// map; the returned map becomes the TaskResponse result. Any error marks
// the task failed at the domain level, never at the transport level.
type HandlerFunc func(ctx context.Context, payload map[string]any) (map[string]any, error)

// HandlerRegistry resolves task types to handlers. Lookup returns a
// [*HandlerNotFoundError] when no handler is registered.
type HandlerRegistry interface {
	Lookup(taskType string) (HandlerFunc, error)
}

// DispatchRecord is the after-the-fact record of one dispatched task,
// handed to an optional [Recorder].
type DispatchRecord struct {
	TaskType      string
	Status        TaskStatus
	CorrelationID *string
	SessionID     string
	StartedAt     time.Time
	FinishedAt    time.Time
	// Error is the handler failure description, empty on success.
	Error string
}

// Recorder persists dispatch records for diagnostics. Implementations
// live outside the dispatcher; a recording failure is logged and never
// affects the task outcome.
type Recorder interface {
	RecordDispatch(ctx context.Context, rec *DispatchRecord) error
}

// Dispatcher routes task requests to handlers and wraps the outcome in a
// [TaskResponse].
//
// Sessions are for tracking, not authorization: an unknown or expired
// session id is logged as a condition and dispatch proceeds.
type Dispatcher struct {
	handlers  HandlerRegistry
	sessions  *SessionStore
	publisher event.Publisher
	recorder  Recorder

	timeout time.Duration
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewDispatcher creates a Dispatcher resolving handlers from the given
// registry.
func NewDispatcher(handlers HandlerRegistry, sessions *SessionStore) *Dispatcher {
	return &Dispatcher{
		handlers: handlers,
		sessions: sessions,
		timeout:  DefaultTaskTimeout,
		logger:   slog.Default(),
		tracer:   otel.GetTracerProvider().Tracer("github.com/go-a2a/coord"),
	}
}

// WithPublisher sets the event publisher. A nil publisher disables
// event emission.
func (d *Dispatcher) WithPublisher(p event.Publisher) *Dispatcher {
	d.publisher = p
	return d
}

// WithRecorder sets the dispatch recorder.
func (d *Dispatcher) WithRecorder(r Recorder) *Dispatcher {
	d.recorder = r
	return d
}

// WithTimeout sets the per-handler timeout.
func (d *Dispatcher) WithTimeout(timeout time.Duration) *Dispatcher {
	if timeout > 0 {
		d.timeout = timeout
	}
	return d
}

// WithLogger sets the logger for the Dispatcher.
func (d *Dispatcher) WithLogger(logger *slog.Logger) *Dispatcher {
	d.logger = logger
	return d
}

// WithTracer sets the tracer for the Dispatcher.
func (d *Dispatcher) WithTracer(tracer trace.Tracer) *Dispatcher {
	d.tracer = tracer
	return d
}

// Dispatch routes the request to its handler and returns the wrapped
// outcome. The correlation id is copied verbatim from request to
// response, absent included. Handler failures, missing handlers and
// timeouts all produce TaskStatusFailed responses; Dispatch returns a
// non-nil error only for faults in the dispatch machinery itself.
func (d *Dispatcher) Dispatch(ctx context.Context, req *TaskRequest, sessionID string) (*TaskResponse, error) {
	ctx, span := d.tracer.Start(ctx, "coord.dispatch.Dispatch",
		trace.WithAttributes(
			attribute.String("a2a.task_type", req.TaskType),
			attribute.String("a2a.session_id", sessionID),
		))
	defer span.End()

	logger := d.logger.With("task_type", req.TaskType)
	if req.CorrelationID != nil {
		logger = logger.With("correlation_id", *req.CorrelationID)
	}

	d.touchSession(ctx, logger, sessionID)

	startedAt := time.Now().UTC()
	d.publish(event.TypeTaskStarted, map[string]any{
		"task_type":      req.TaskType,
		"session_id":     sessionID,
		"correlation_id": correlationValue(req.CorrelationID),
	})

	result, handlerErr := d.invoke(ctx, req)

	resp := &TaskResponse{
		TaskType:      req.TaskType,
		CorrelationID: req.CorrelationID,
	}
	if handlerErr != nil {
		resp.Status = TaskStatusFailed
		resp.Result = map[string]any{"error": handlerErr.Error()}
		logger.ErrorContext(ctx, "task failed", "session_id", sessionID, "error", handlerErr)
		d.publish(event.TypeTaskFailed, map[string]any{
			"task_type":      req.TaskType,
			"session_id":     sessionID,
			"correlation_id": correlationValue(req.CorrelationID),
			"error":          handlerErr.Error(),
		})
	} else {
		resp.Status = TaskStatusCompleted
		resp.Result = result
		logger.InfoContext(ctx, "task completed", "session_id", sessionID)
		d.publish(event.TypeTaskCompleted, map[string]any{
			"task_type":      req.TaskType,
			"session_id":     sessionID,
			"correlation_id": correlationValue(req.CorrelationID),
		})
	}

	d.record(ctx, logger, &DispatchRecord{
		TaskType:      req.TaskType,
		Status:        resp.Status,
		CorrelationID: req.CorrelationID,
		SessionID:     sessionID,
		StartedAt:     startedAt,
		FinishedAt:    time.Now().UTC(),
		Error:         errorString(handlerErr),
	})

	return resp, nil
}

// invoke resolves and runs the handler under the configured timeout.
// The handler runs in its own goroutine so a handler that ignores its
// context cannot hang dispatch; once started it is not interrupted, the
// dispatcher just stops waiting for it.
func (d *Dispatcher) invoke(ctx context.Context, req *TaskRequest) (map[string]any, error) {
	handler, err := d.handlers.Lookup(req.TaskType)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	type outcome struct {
		result map[string]any
		err    error
	}
	ch := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- outcome{err: fmt.Errorf("handler panic: %v", r)}
			}
		}()
		result, err := handler(ctx, req.Payload)
		ch <- outcome{result: result, err: err}
	}()

	select {
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("handler timed out after %s", d.timeout)
		}
		return nil, ctx.Err()
	case out := <-ch:
		if out.err != nil {
			return nil, out.err
		}
		return out.result, nil
	}
}

// touchSession refreshes the session's activity window. Misses and
// expiry are non-fatal conditions.
func (d *Dispatcher) touchSession(ctx context.Context, logger *slog.Logger, sessionID string) {
	if sessionID == "" || d.sessions == nil {
		return
	}
	if err := d.sessions.Touch(sessionID); err != nil {
		logger.WarnContext(ctx, "dispatch without valid session", "session_id", sessionID, "error", err)
	}
}

func (d *Dispatcher) record(ctx context.Context, logger *slog.Logger, rec *DispatchRecord) {
	if d.recorder == nil {
		return
	}
	if err := d.recorder.RecordDispatch(ctx, rec); err != nil {
		logger.ErrorContext(ctx, "failed to record dispatch", "error", err)
	}
}

func (d *Dispatcher) publish(eventType string, data map[string]any) {
	if d.publisher == nil {
		return
	}
	d.publisher.Publish(eventType, data)
}

// correlationValue renders an optional correlation id for event payloads
// without collapsing absent and empty.
func correlationValue(id *string) any {
	if id == nil {
		return nil
	}
	return *id
}

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
