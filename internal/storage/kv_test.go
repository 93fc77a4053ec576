// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// =============================================================================
// KV CONFORMANCE TESTS
// =============================================================================

func kvBackends(t *testing.T) map[string]KV {
	t.Helper()

	fileKV, err := NewFileKV(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileKV failed: %v", err)
	}
	sqliteKV, err := NewSQLiteKV(filepath.Join(t.TempDir(), "slots.db"))
	if err != nil {
		t.Fatalf("NewSQLiteKV failed: %v", err)
	}
	t.Cleanup(func() { sqliteKV.Close() })

	return map[string]KV{
		"file":   fileKV,
		"sqlite": sqliteKV,
		"memory": NewMemoryKV(),
	}
}

func TestKV_GetEmptySlot(t *testing.T) {
	for name, kv := range kvBackends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := kv.Get(SlotSessions)
			if !errors.Is(err, ErrSlotEmpty) {
				t.Errorf("Get on empty slot = %v, want ErrSlotEmpty", err)
			}

			var slotErr *SlotError
			if !errors.As(err, &slotErr) {
				t.Fatalf("error should be a *SlotError, got %T", err)
			}
			if slotErr.Slot != SlotSessions || slotErr.Op != "get" {
				t.Errorf("SlotError = %+v", slotErr)
			}
		})
	}
}

func TestKV_SetGetOverwrite(t *testing.T) {
	for name, kv := range kvBackends(t) {
		t.Run(name, func(t *testing.T) {
			if err := kv.Set(SlotToken, []byte("first")); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
			if err := kv.Set(SlotToken, []byte("second")); err != nil {
				t.Fatalf("Set failed: %v", err)
			}

			got, err := kv.Get(SlotToken)
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if string(got) != "second" {
				t.Errorf("Get = %q, want %q", got, "second")
			}
		})
	}
}

func TestKV_Delete(t *testing.T) {
	for name, kv := range kvBackends(t) {
		t.Run(name, func(t *testing.T) {
			if err := kv.Set(SlotUser, []byte(`{"id":1}`)); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
			if err := kv.Delete(SlotUser); err != nil {
				t.Fatalf("Delete failed: %v", err)
			}
			if _, err := kv.Get(SlotUser); !errors.Is(err, ErrSlotEmpty) {
				t.Errorf("Get after Delete = %v, want ErrSlotEmpty", err)
			}

			// Deleting again is fine
			if err := kv.Delete(SlotUser); err != nil {
				t.Errorf("second Delete failed: %v", err)
			}
		})
	}
}

func TestKV_InvalidSlot(t *testing.T) {
	bad := []string{"", "../escape", "a/b", ".hidden", "with space"}

	for name, kv := range kvBackends(t) {
		t.Run(name, func(t *testing.T) {
			for _, key := range bad {
				if err := kv.Set(key, []byte("x")); !errors.Is(err, ErrInvalidSlot) {
					t.Errorf("Set(%q) = %v, want ErrInvalidSlot", key, err)
				}
				if _, err := kv.Get(key); !errors.Is(err, ErrInvalidSlot) {
					t.Errorf("Get(%q) = %v, want ErrInvalidSlot", key, err)
				}
			}
		})
	}
}

func TestMemoryKV_CopiesValues(t *testing.T) {
	kv := NewMemoryKV()
	value := []byte("abc")
	if err := kv.Set("k", value); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	value[0] = 'X'

	got, _ := kv.Get("k")
	if string(got) != "abc" {
		t.Errorf("stored value changed through caller slice: %q", got)
	}
}

// =============================================================================
// FILE KV TESTS
// =============================================================================

func TestFileKV_FileLayoutAndPermissions(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")
	kv, err := NewFileKV(dir)
	if err != nil {
		t.Fatalf("NewFileKV failed: %v", err)
	}
	if kv.Dir() != dir {
		t.Errorf("Dir = %q, want %q", kv.Dir(), dir)
	}

	if err := kv.Set(SlotToken, []byte("secret")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	info, err := os.Stat(filepath.Join(dir, SlotToken+slotExt))
	if err != nil {
		t.Fatalf("slot file missing: %v", err)
	}
	if perm := info.Mode().Perm(); perm != slotFilePerm && os.PathSeparator == '/' {
		t.Errorf("slot file perm = %o, want %o", perm, slotFilePerm)
	}
}

func TestNewFileKV_EmptyDir(t *testing.T) {
	if _, err := NewFileKV(""); err == nil {
		t.Error("expected error for empty directory")
	}
}

// =============================================================================
// SQLITE KV TESTS
// =============================================================================

func TestSQLiteKV_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "catty.db")

	kv, err := NewSQLiteKV(path)
	if err != nil {
		t.Fatalf("NewSQLiteKV failed: %v", err)
	}
	if err := kv.Set(SlotSessions, []byte("[]")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := kv.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := NewSQLiteKV(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Get(SlotSessions)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != "[]" {
		t.Errorf("Get = %q, want %q", got, "[]")
	}
}

// =============================================================================
// OPEN KV TESTS
// =============================================================================

func TestOpenKV(t *testing.T) {
	dir := t.TempDir()

	kv, err := OpenKV("", dir, "")
	if err != nil {
		t.Fatalf("OpenKV default failed: %v", err)
	}
	if _, ok := kv.(*FileKV); !ok {
		t.Errorf("default backend = %T, want *FileKV", kv)
	}

	kv, err = OpenKV(BackendSQLite, dir, "")
	if err != nil {
		t.Fatalf("OpenKV sqlite failed: %v", err)
	}
	defer kv.Close()
	sq, ok := kv.(*SQLiteKV)
	if !ok {
		t.Fatalf("sqlite backend = %T, want *SQLiteKV", kv)
	}
	if want := filepath.Join(dir, DefaultSQLiteFile); sq.Path() != want {
		t.Errorf("Path = %q, want %q", sq.Path(), want)
	}

	if _, err := OpenKV("redis", dir, ""); err == nil {
		t.Error("expected error for unknown backend")
	}
}
