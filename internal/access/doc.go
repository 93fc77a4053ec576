// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package access decides which assistant modes a caller may use.
//
// The assistant answers in one of two modes. General mode is open to
// visitors; student mode serves campus-specific information and needs a
// signed-in account with a student or admin role. Students are confined to
// student mode.
//
// # Key Types
//
//   - Mode: the answer scope (general, student)
//   - AuthState: the caller's authentication snapshot
//   - Verdict: allow/deny plus a reason for the user
//
// # Usage
//
//	state := access.AuthState{Authenticated: true, RoleName: access.RoleStudent}
//	v := access.Decide(state, access.ModeGeneral)
//	if !v.Allowed {
//	    fmt.Println(v.Reason)
//	}
//
// Decide is pure and total: every input combination yields a verdict and
// the same inputs always yield the same verdict.
package access
