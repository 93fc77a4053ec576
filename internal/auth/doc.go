// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth reads and writes the signed-in user's credentials.
//
// Credentials live in two slots: "token" holds the bearer token issued by
// the content backend and "user" holds the user record, including the role.
// A Snapshot is loaded once at startup and passed to the components that
// need it; nothing in the core reads the slots directly.
//
// # Key Types
//
//   - Snapshot: token plus user record, or nothing
//   - User, Role, UserID: the backend's user record
//   - Client: signs in against the content backend
//
// # Usage
//
//	snap := auth.Load(kv, logger)
//	state := snap.State() // access.AuthState
//
// Loading fails soft: a missing or unparsable slot means "not signed in".
package auth
