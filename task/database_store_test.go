// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package task_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/go-a2a/coord"
	"github.com/go-a2a/coord/task"
)

func newDatabaseStore(t *testing.T) *task.DatabaseStore {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "dispatch.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("gorm.Open() error = %v", err)
	}

	store, err := task.NewDatabaseStore(task.DatabaseStoreConfig{
		DB:          db,
		CreateTable: true,
	})
	if err != nil {
		t.Fatalf("NewDatabaseStore() error = %v", err)
	}
	if err := store.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	return store
}

func TestDatabaseStore_RecordAndGet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newDatabaseStore(t)

	corr := "corr-1"
	rec := recordFixture("calculate_shipping_cost", "sess-1", coord.TaskStatusCompleted)
	rec.CorrelationID = &corr
	if err := store.RecordDispatch(ctx, rec); err != nil {
		t.Fatalf("RecordDispatch() error = %v", err)
	}

	list, err := store.List(ctx, "", 0, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("List() returned %d records, want 1", len(list))
	}

	got, err := store.Get(ctx, list[0].ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.TaskType != "calculate_shipping_cost" {
		t.Errorf("TaskType = %s, want calculate_shipping_cost", got.TaskType)
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
}

func TestDatabaseStore_Get_NotFound(t *testing.T) {
	t.Parallel()

	store := newDatabaseStore(t)
	_, err := store.Get(context.Background(), "ghost")
	var notFound *task.RecordNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("Get() error = %v, want *RecordNotFoundError", err)
	}
}

func TestDatabaseStore_ListAndCount(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newDatabaseStore(t)

	base := recordFixture("task-old", "sess-a", coord.TaskStatusCompleted)
	if err := store.RecordDispatch(ctx, base); err != nil {
		t.Fatalf("RecordDispatch() error = %v", err)
	}
	later := recordFixture("task-new", "sess-b", coord.TaskStatusFailed)
	later.StartedAt = base.StartedAt.Add(time.Minute)
	later.FinishedAt = later.StartedAt.Add(time.Second)
	if err := store.RecordDispatch(ctx, later); err != nil {
		t.Fatalf("RecordDispatch() error = %v", err)
	}

	// Newest first.
	list, err := store.List(ctx, "", 0, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 2 || list[0].TaskType != "task-new" || list[1].TaskType != "task-old" {
		t.Errorf("List() order = %v, want [task-new, task-old]", list)
	}

	scoped, err := store.List(ctx, "sess-a", 0, 0)
	if err != nil {
		t.Fatalf("List(sess-a) error = %v", err)
	}
	if len(scoped) != 1 || scoped[0].TaskType != "task-old" {
		t.Errorf("List(sess-a) = %v, want [task-old]", scoped)
	}

	limited, err := store.List(ctx, "", 1, 1)
	if err != nil {
		t.Fatalf("List(limit, offset) error = %v", err)
	}
	if len(limited) != 1 || limited[0].TaskType != "task-old" {
		t.Errorf("List(limit=1, offset=1) = %v, want [task-old]", limited)
	}

	total, err := store.Count(ctx, "")
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if total != 2 {
		t.Errorf("Count() = %d, want 2", total)
	}
	perSession, err := store.Count(ctx, "sess-b")
	if err != nil {
		t.Fatalf("Count(sess-b) error = %v", err)
	}
	if perSession != 1 {
		t.Errorf("Count(sess-b) = %d, want 1", perSession)
	}
}

func TestDatabaseStore_CustomTableName(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "dispatch.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("gorm.Open() error = %v", err)
	}

	store, err := task.NewDatabaseStore(task.DatabaseStoreConfig{
		DB:          db,
		TableName:   "audit_log",
		CreateTable: true,
	})
	if err != nil {
		t.Fatalf("NewDatabaseStore() error = %v", err)
	}
	if err := store.Initialize(ctx); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	if err := store.RecordDispatch(ctx, recordFixture("echo", "sess-1", coord.TaskStatusCompleted)); err != nil {
		t.Fatalf("RecordDispatch() error = %v", err)
	}
	n, err := store.Count(ctx, "")
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Count() = %d, want 1", n)
	}
	if !db.Migrator().HasTable("audit_log") {
		t.Error("HasTable(audit_log) = false, want true")
	}
}

func TestDatabaseStore_NilDB(t *testing.T) {
	t.Parallel()

	if _, err := task.NewDatabaseStore(task.DatabaseStoreConfig{}); err == nil {
		t.Error("NewDatabaseStore() error = nil, want error")
	}
}
