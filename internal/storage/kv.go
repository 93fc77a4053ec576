// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"fmt"
	"path/filepath"
)

// Well-known slot names.
const (
	SlotSessions = "chatSessions"
	SlotToken    = "token"
	SlotUser     = "user"
)

// Backend names accepted by OpenKV.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// DefaultSQLiteFile is the database file name used when none is configured.
const DefaultSQLiteFile = "catty.db"

// =============================================================================
// KV INTERFACE
// =============================================================================

// KV stores opaque values under named slots.
// Implementations are safe for concurrent use.
type KV interface {
	// Get returns the slot value, or ErrSlotEmpty if the slot was never set.
	Get(key string) ([]byte, error)

	// Set replaces the slot value.
	Set(key string, value []byte) error

	// Delete removes the slot. Deleting an empty slot is not an error.
	Delete(key string) error

	Close() error
}

// OpenKV opens the slot backend named by backend rooted at dir.
// sqliteFile is relative to dir unless absolute; empty means DefaultSQLiteFile.
func OpenKV(backend, dir, sqliteFile string) (KV, error) {
	switch backend {
	case "", BackendFile:
		return NewFileKV(dir)
	case BackendSQLite:
		if sqliteFile == "" {
			sqliteFile = DefaultSQLiteFile
		}
		if !filepath.IsAbs(sqliteFile) {
			sqliteFile = filepath.Join(dir, sqliteFile)
		}
		return NewSQLiteKV(sqliteFile)
	default:
		return nil, fmt.Errorf("unknown storage backend %q (want %q or %q)", backend, BackendFile, BackendSQLite)
	}
}

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrSlotEmpty is returned by Get when the slot has no value.
	ErrSlotEmpty = errors.New("slot is empty")

	// ErrInvalidSlot is returned for slot names that cannot be stored.
	ErrInvalidSlot = errors.New("invalid slot name")
)

// SlotError records the slot and operation that failed.
type SlotError struct {
	Op   string
	Slot string
	Err  error
}

// Error implements the error interface.
func (e *SlotError) Error() string {
	return fmt.Sprintf("%s slot %q: %v", e.Op, e.Slot, e.Err)
}

// Unwrap returns the underlying error.
func (e *SlotError) Unwrap() error {
	return e.Err
}

// validSlot reports whether key is usable as a slot name. Slot names become
// file names for FileKV, so only a conservative character set is accepted.
func validSlot(key string) bool {
	if key == "" || len(key) > 128 || key[0] == '.' {
		return false
	}
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_' || r == '-' || r == '.':
		default:
			return false
		}
	}
	return true
}

func checkSlot(op, key string) error {
	if !validSlot(key) {
		return &SlotError{Op: op, Slot: key, Err: ErrInvalidSlot}
	}
	return nil
}
