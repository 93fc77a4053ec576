// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package access

import (
	"fmt"
	"strings"
)

// =============================================================================
// MODES AND ROLES
// =============================================================================

// Mode is the scope under which answer requests are issued.
type Mode string

const (
	// ModeGeneral answers public questions for every visitor.
	ModeGeneral Mode = "general"

	// ModeStudent answers with student-only information.
	ModeStudent Mode = "student"
)

// Modes lists the known modes in display order.
var Modes = []Mode{ModeGeneral, ModeStudent}

// String returns the wire value of the mode.
func (m Mode) String() string {
	return string(m)
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeGeneral || m == ModeStudent
}

// Label returns the name shown in the UI.
func (m Mode) Label() string {
	switch m {
	case ModeGeneral:
		return "General"
	case ModeStudent:
		return "Student"
	default:
		return string(m)
	}
}

// ParseMode parses a mode name case-insensitively. "mahasiswa" is accepted
// as an alias for student mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "general", "umum":
		return ModeGeneral, nil
	case "student", "mahasiswa":
		return ModeStudent, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want %q or %q)", s, ModeGeneral, ModeStudent)
	}
}

// Role names issued by the content backend.
const (
	RoleStudent = "Mahasiswa IT"
	RoleAdmin   = "Admin IT"
)

// AuthState is the caller's authentication snapshot.
type AuthState struct {
	Authenticated bool
	RoleName      string // empty when the account has no role
}

// Anonymous is the state of a caller who has not signed in.
var Anonymous = AuthState{}

// IsStudent reports whether the caller is a signed-in student.
func (a AuthState) IsStudent() bool {
	return a.Authenticated && a.RoleName == RoleStudent
}

// IsAdmin reports whether the caller is a signed-in admin.
func (a AuthState) IsAdmin() bool {
	return a.Authenticated && a.RoleName == RoleAdmin
}

// =============================================================================
// DECISION
// =============================================================================

// Verdict is the outcome of Decide. Reason is always set.
type Verdict struct {
	Allowed bool
	Reason  string
}

// Denial reasons.
const (
	ReasonStudentNeedsLogin = "Student mode is only available to signed-in students"
	ReasonStudentOnly       = "Students can only use student mode"
	ReasonUnknownMode       = "Unknown mode"
)

// Decide maps an auth snapshot and a requested mode to a verdict.
//
//   - student mode: signed in with role RoleStudent or RoleAdmin
//   - general mode: everyone except a signed-in RoleStudent
//   - RoleAdmin may use either mode
func Decide(state AuthState, requested Mode) Verdict {
	switch requested {
	case ModeStudent:
		if state.IsStudent() || state.IsAdmin() {
			return Verdict{Allowed: true, Reason: "Student mode active with access to student information"}
		}
		return Verdict{Reason: ReasonStudentNeedsLogin}

	case ModeGeneral:
		if state.IsStudent() {
			return Verdict{Reason: ReasonStudentOnly}
		}
		return Verdict{Allowed: true, Reason: "General mode active"}

	default:
		return Verdict{Reason: fmt.Sprintf("%s %q", ReasonUnknownMode, string(requested))}
	}
}

// DefaultMode is the mode a session starts in: student for signed-in
// students, general for everyone else (admins included).
func DefaultMode(state AuthState) Mode {
	if state.IsStudent() {
		return ModeStudent
	}
	return ModeGeneral
}

// Allowed returns the modes Decide permits for state, in display order.
func Allowed(state AuthState) []Mode {
	var modes []Mode
	for _, m := range Modes {
		if Decide(state, m).Allowed {
			modes = append(modes, m)
		}
	}
	return modes
}
