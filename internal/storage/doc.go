// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists chat sessions and the auth snapshot for catty.
//
// Everything durable lives in named slots behind the KV interface: the
// session collection in "chatSessions", the auth token in "token" and the
// signed-in user record in "user".
//
// # Key Types
//
//   - KV: named slot storage (FileKV, SQLiteKV, MemoryKV)
//   - SessionStore: the session collection and the active-session pointer
//   - StoredSession, StoredMessage: the persisted JSON schema
//
// # Usage
//
// Open the slot backend and the session store:
//
//	kv, err := storage.OpenKV(storage.BackendFile, stateDir, "")
//	store := storage.Open(kv, storage.Options{Logger: logger})
//
// Append to the active session:
//
//	active := store.Active()
//	err := store.AppendMessage(active.ID, model.NewUserMessage("hello"))
//
// # Storage Location
//
// Slots are stored in ~/.catty/ as one file per slot, or as rows of a
// single SQLite database when the sqlite backend is configured.
package storage
