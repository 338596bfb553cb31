// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package task

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/go-a2a/coord"
)

// MemoryStore is an in-memory implementation of [Store]. Records are
// lost when the process stops. All operations are safe for concurrent
// use.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
	// order tracks insertion so List can return newest first without
	// sorting.
	order []string
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a new MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*Record),
	}
}

// RecordDispatch implements [coord.Recorder].
func (s *MemoryStore) RecordDispatch(ctx context.Context, rec *coord.DispatchRecord) error {
	r := &Record{
		ID:            uuid.NewString(),
		TaskType:      rec.TaskType,
		Status:        rec.Status,
		CorrelationID: rec.CorrelationID,
		SessionID:     rec.SessionID,
		StartedAt:     rec.StartedAt,
		FinishedAt:    rec.FinishedAt,
		Error:         rec.Error,
	}

	s.mu.Lock()
	s.records[r.ID] = r
	s.order = append(s.order, r.ID)
	s.mu.Unlock()

	return nil
}

// Get retrieves a record by its id.
func (s *MemoryStore) Get(ctx context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, &RecordNotFoundError{ID: id}
	}
	cp := *rec
	return &cp, nil
}

// List retrieves records newest first, optionally filtered by session.
func (s *MemoryStore) List(ctx context.Context, sessionID string, limit, offset int) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*Record, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		rec := s.records[s.order[i]]
		if sessionID != "" && rec.SessionID != sessionID {
			continue
		}
		cp := *rec
		matched = append(matched, &cp)
	}

	if offset > 0 {
		if offset >= len(matched) {
			return []*Record{}, nil
		}
		matched = matched[offset:]
	}
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

// Count returns the number of stored records, optionally filtered by
// session.
func (s *MemoryStore) Count(ctx context.Context, sessionID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if sessionID == "" {
		return int64(len(s.records)), nil
	}
	var n int64
	for _, rec := range s.records {
		if rec.SessionID == sessionID {
			n++
		}
	}
	return n, nil
}

// Initialize implements [Store]; it is a no-op for the in-memory store.
func (s *MemoryStore) Initialize(ctx context.Context) error {
	return nil
}

// Close implements [Store]; it is a no-op for the in-memory store.
func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}
