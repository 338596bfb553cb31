// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package task

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/go-a2a/coord"
)

// DatabaseStore is a database implementation of [Store] using GORM. The
// dialector (and therefore the driver) is chosen by the caller; the
// store only requires an open *gorm.DB.
type DatabaseStore struct {
	db          *gorm.DB
	tableName   string
	createTable bool
}

var _ Store = (*DatabaseStore)(nil)

// DatabaseStoreConfig holds configuration for DatabaseStore.
type DatabaseStoreConfig struct {
	DB          *gorm.DB
	TableName   string // Optional, defaults to "dispatch_records"
	CreateTable bool   // Whether to create the table if it doesn't exist
}

// NewDatabaseStore creates a new DatabaseStore.
func NewDatabaseStore(config DatabaseStoreConfig) (*DatabaseStore, error) {
	if config.DB == nil {
		return nil, fmt.Errorf("database connection cannot be nil")
	}

	tableName := config.TableName
	if tableName == "" {
		tableName = "dispatch_records"
	}

	return &DatabaseStore{
		db:          config.DB,
		tableName:   tableName,
		createTable: config.CreateTable,
	}, nil
}

// Initialize migrates the record table when configured to do so.
func (s *DatabaseStore) Initialize(ctx context.Context) error {
	if !s.createTable {
		return nil
	}
	if err := s.session(ctx).AutoMigrate(&Record{}); err != nil {
		return &StoreError{Op: "initialize", Err: err}
	}
	return nil
}

// RecordDispatch implements [coord.Recorder].
func (s *DatabaseStore) RecordDispatch(ctx context.Context, rec *coord.DispatchRecord) error {
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

	if err := s.session(ctx).Create(r).Error; err != nil {
		return &StoreError{Op: "record", ID: r.ID, Err: err}
	}
	return nil
}

// Get retrieves a record by its id.
func (s *DatabaseStore) Get(ctx context.Context, id string) (*Record, error) {
	var rec Record
	err := s.session(ctx).First(&rec, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &RecordNotFoundError{ID: id}
		}
		return nil, &StoreError{Op: "get", ID: id, Err: err}
	}
	return &rec, nil
}

// List retrieves records newest first, optionally filtered by session.
func (s *DatabaseStore) List(ctx context.Context, sessionID string, limit, offset int) ([]*Record, error) {
	db := s.session(ctx).Order("started_at DESC")
	if sessionID != "" {
		db = db.Where("session_id = ?", sessionID)
	}
	if limit > 0 {
		db = db.Limit(limit)
	}
	if offset > 0 {
		db = db.Offset(offset)
	}

	var recs []*Record
	if err := db.Find(&recs).Error; err != nil {
		return nil, &StoreError{Op: "list", Err: err}
	}
	return recs, nil
}

// Count returns the number of stored records, optionally filtered by
// session.
func (s *DatabaseStore) Count(ctx context.Context, sessionID string) (int64, error) {
	db := s.session(ctx).Model(&Record{})
	if sessionID != "" {
		db = db.Where("session_id = ?", sessionID)
	}

	var n int64
	if err := db.Count(&n).Error; err != nil {
		return 0, &StoreError{Op: "count", Err: err}
	}
	return n, nil
}

// Close implements [Store]. GORM connection pools are owned by the
// caller who opened them, so this is a no-op.
func (s *DatabaseStore) Close(ctx context.Context) error {
	return nil
}

// session returns a context-bound handle on the configured table.
func (s *DatabaseStore) session(ctx context.Context) *gorm.DB {
	db := s.db.WithContext(ctx)
	if s.tableName != "dispatch_records" {
		db = db.Table(s.tableName)
	}
	return db
}
