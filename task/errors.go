// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package task

import (
	"fmt"
)

// RecordNotFoundError is returned when a record id is not in the store.
type RecordNotFoundError struct {
	ID string
}

// Error implements the error interface.
func (e *RecordNotFoundError) Error() string {
	return fmt.Sprintf("dispatch record not found: %s", e.ID)
}

// StoreError wraps a storage-backend failure with the operation that
// caused it.
type StoreError struct {
	Op  string
	ID  string
	Err error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("task store %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("task store %s %s: %v", e.Op, e.ID, e.Err)
}

// Unwrap returns the underlying storage error.
func (e *StoreError) Unwrap() error {
	return e.Err
}
