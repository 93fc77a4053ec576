// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO required)

	"github.com/jeranaias/catty-tui/internal/util"
)

const slotSchema = `
CREATE TABLE IF NOT EXISTS slots (
    key TEXT PRIMARY KEY,
    value BLOB NOT NULL,
    updated_at INTEGER NOT NULL -- Unix milliseconds
) WITHOUT ROWID;
`

// =============================================================================
// SQLITE KV
// =============================================================================

// SQLiteKV stores slots as rows of a single SQLite table.
type SQLiteKV struct {
	db   *sql.DB
	path string
}

// NewSQLiteKV opens (or creates) the database at path.
func NewSQLiteKV(path string) (*SQLiteKV, error) {
	if err := os.MkdirAll(filepath.Dir(path), util.StateDirPerm); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(slotSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteKV{db: db, path: path}, nil
}

// Path returns the database file path.
func (kv *SQLiteKV) Path() string {
	return kv.path
}

// Get reads a slot row.
func (kv *SQLiteKV) Get(key string) ([]byte, error) {
	if err := checkSlot("get", key); err != nil {
		return nil, err
	}

	var value []byte
	err := kv.db.QueryRow(`SELECT value FROM slots WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &SlotError{Op: "get", Slot: key, Err: ErrSlotEmpty}
	}
	if err != nil {
		return nil, &SlotError{Op: "get", Slot: key, Err: err}
	}
	return value, nil
}

// Set upserts a slot row.
func (kv *SQLiteKV) Set(key string, value []byte) error {
	if err := checkSlot("set", key); err != nil {
		return err
	}
	if value == nil {
		value = []byte{}
	}

	_, err := kv.db.Exec(`
		INSERT INTO slots (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UnixMilli())
	if err != nil {
		return &SlotError{Op: "set", Slot: key, Err: err}
	}
	return nil
}

// Delete removes a slot row.
func (kv *SQLiteKV) Delete(key string) error {
	if err := checkSlot("delete", key); err != nil {
		return err
	}
	if _, err := kv.db.Exec(`DELETE FROM slots WHERE key = ?`, key); err != nil {
		return &SlotError{Op: "delete", Slot: key, Err: err}
	}
	return nil
}

// Close closes the database.
func (kv *SQLiteKV) Close() error {
	return kv.db.Close()
}
