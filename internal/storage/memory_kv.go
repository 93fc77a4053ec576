// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import "sync"

// MemoryKV keeps slots in memory. Used by tests and by commands that run
// with --ephemeral.
type MemoryKV struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

// NewMemoryKV returns an empty MemoryKV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{slots: make(map[string][]byte)}
}

// Get returns a copy of the slot value.
func (kv *MemoryKV) Get(key string) ([]byte, error) {
	if err := checkSlot("get", key); err != nil {
		return nil, err
	}
	kv.mu.RLock()
	defer kv.mu.RUnlock()

	v, ok := kv.slots[key]
	if !ok {
		return nil, &SlotError{Op: "get", Slot: key, Err: ErrSlotEmpty}
	}
	return append([]byte(nil), v...), nil
}

// Set stores a copy of value.
func (kv *MemoryKV) Set(key string, value []byte) error {
	if err := checkSlot("set", key); err != nil {
		return err
	}
	kv.mu.Lock()
	defer kv.mu.Unlock()

	kv.slots[key] = append([]byte(nil), value...)
	return nil
}

// Delete removes the slot.
func (kv *MemoryKV) Delete(key string) error {
	if err := checkSlot("delete", key); err != nil {
		return err
	}
	kv.mu.Lock()
	defer kv.mu.Unlock()

	delete(kv.slots, key)
	return nil
}

// Close is a no-op.
func (kv *MemoryKV) Close() error {
	return nil
}
