// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/jeranaias/catty-tui/internal/util"
)

// slotFilePerm keeps slot files private; the token slot is a credential.
const slotFilePerm os.FileMode = 0600

// slotExt is appended to slot names to form file names.
const slotExt = ".slot"

// =============================================================================
// FILE KV
// =============================================================================

// FileKV stores each slot as a file in a directory.
type FileKV struct {
	dir string
	mu  sync.RWMutex
}

// NewFileKV creates the directory if needed and returns a FileKV rooted at it.
func NewFileKV(dir string) (*FileKV, error) {
	if dir == "" {
		return nil, errors.New("state directory is empty")
	}
	if err := os.MkdirAll(dir, util.StateDirPerm); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	return &FileKV{dir: dir}, nil
}

// Dir returns the directory holding the slot files.
func (kv *FileKV) Dir() string {
	return kv.dir
}

// Get reads a slot file.
func (kv *FileKV) Get(key string) ([]byte, error) {
	if err := checkSlot("get", key); err != nil {
		return nil, err
	}

	kv.mu.RLock()
	defer kv.mu.RUnlock()

	data, err := os.ReadFile(kv.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &SlotError{Op: "get", Slot: key, Err: ErrSlotEmpty}
	}
	if err != nil {
		return nil, &SlotError{Op: "get", Slot: key, Err: err}
	}
	return data, nil
}

// Set atomically replaces a slot file.
func (kv *FileKV) Set(key string, value []byte) error {
	if err := checkSlot("set", key); err != nil {
		return err
	}

	kv.mu.Lock()
	defer kv.mu.Unlock()

	if err := util.AtomicWriteFile(kv.path(key), value, slotFilePerm); err != nil {
		return &SlotError{Op: "set", Slot: key, Err: err}
	}
	return nil
}

// Delete removes a slot file.
func (kv *FileKV) Delete(key string) error {
	if err := checkSlot("delete", key); err != nil {
		return err
	}

	kv.mu.Lock()
	defer kv.mu.Unlock()

	err := os.Remove(kv.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &SlotError{Op: "delete", Slot: key, Err: err}
	}
	return nil
}

// Close is a no-op; FileKV holds no open handles.
func (kv *FileKV) Close() error {
	return nil
}

func (kv *FileKV) path(key string) string {
	return filepath.Join(kv.dir, key+slotExt)
}
