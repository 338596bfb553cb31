// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package task persists records of dispatched tasks for diagnostics.
// Stores implement the runtime's Recorder hook; recording is best-effort
// and never affects task outcomes.
package task

import (
	"context"
	"time"

	"github.com/go-a2a/coord"
)

// Record is the stored snapshot of one dispatched task.
type Record struct {
	// ID is the record's own identity, assigned by the store.
	ID string `json:"id" gorm:"primaryKey"`
	// TaskType is the dispatched task type.
	TaskType string `json:"task_type" gorm:"index"`
	// Status is the domain-level outcome.
	Status coord.TaskStatus `json:"status"`
	// CorrelationID is the caller-supplied tracing id, if any.
	CorrelationID *string `json:"correlation_id,omitempty" gorm:"index"`
	// SessionID is the session the task was exchanged under, if any.
	SessionID string `json:"session_id,omitempty" gorm:"index"`
	// StartedAt and FinishedAt bound the handler invocation.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	// Error is the handler failure description, empty on success.
	Error string `json:"error,omitempty"`
}

// TableName implements GORM's schema.Tabler for the database-backed
// store's default table.
func (Record) TableName() string {
	return "dispatch_records"
}

// Store defines the interface for dispatch-record persistence. It
// abstracts the storage mechanism so in-memory and database backends are
// interchangeable.
type Store interface {
	coord.Recorder

	// Get retrieves a record by its id.
	// Returns a [*RecordNotFoundError] if the record doesn't exist.
	Get(ctx context.Context, id string) (*Record, error)

	// List retrieves records, newest first. The sessionID parameter
	// filters by session; empty matches all. limit <= 0 means no limit.
	List(ctx context.Context, sessionID string, limit, offset int) ([]*Record, error)

	// Count returns the number of stored records, filtered by session
	// when sessionID is non-empty.
	Count(ctx context.Context, sessionID string) (int64, error)

	// Initialize prepares the storage backend for use.
	Initialize(ctx context.Context) error

	// Close cleanly shuts down the storage backend.
	Close(ctx context.Context) error
}
