// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/jeranaias/catty-tui/internal/access"
	"github.com/jeranaias/catty-tui/internal/storage"
)

// =============================================================================
// USER RECORD
// =============================================================================

// UserID is the backend's user ID. The backend sends numbers; IDs are kept
// as text so string IDs survive too.
type UserID string

// UnmarshalJSON accepts a JSON number or string.
func (id *UserID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = UserID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("user id: %w", err)
	}
	*id = UserID(n.String())
	return nil
}

// MarshalJSON writes numeric IDs as numbers and everything else as strings.
func (id UserID) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// Role is the user's role as issued by the backend.
type Role struct {
	Name string `json:"name"`
}

// User is the persisted user record.
type User struct {
	ID       UserID `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Role     *Role  `json:"role,omitempty"`
}

// RoleName returns the role name, or "" when the user has none.
func (u *User) RoleName() string {
	if u == nil || u.Role == nil {
		return ""
	}
	return u.Role.Name
}

// =============================================================================
// SNAPSHOT
// =============================================================================

// Snapshot is the authentication state read at startup.
type Snapshot struct {
	Token string
	User  *User
}

// Authenticated reports whether both a token and a user record are present.
func (s Snapshot) Authenticated() bool {
	return s.Token != "" && s.User != nil
}

// State converts the snapshot for access decisions.
func (s Snapshot) State() access.AuthState {
	if !s.Authenticated() {
		return access.Anonymous
	}
	return access.AuthState{Authenticated: true, RoleName: s.User.RoleName()}
}

// DisplayName returns the username, or "guest" when signed out.
func (s Snapshot) DisplayName() string {
	if !s.Authenticated() || s.User.Username == "" {
		return "guest"
	}
	return s.User.Username
}

// Load reads the token and user slots. A missing slot or a user record that
// does not parse yields an anonymous snapshot; the slots are left as they are.
func Load(kv storage.KV, logger *slog.Logger) Snapshot {
	if logger == nil {
		logger = slog.Default()
	}

	token, err := kv.Get(storage.SlotToken)
	if err != nil {
		if !errors.Is(err, storage.ErrSlotEmpty) {
			logger.Warn("could not read token slot", "error", err)
		}
		return Snapshot{}
	}

	raw, err := kv.Get(storage.SlotUser)
	if err != nil {
		if !errors.Is(err, storage.ErrSlotEmpty) {
			logger.Warn("could not read user slot", "error", err)
		}
		return Snapshot{}
	}

	user, err := ParseUser(raw)
	if err != nil {
		logger.Warn("stored user record is unreadable, continuing signed out", "error", err)
		return Snapshot{}
	}

	tok := strings.TrimSpace(string(token))
	if tok == "" {
		return Snapshot{}
	}
	return Snapshot{Token: tok, User: user}
}

// ParseUser decodes a user record. The record must carry an ID.
func ParseUser(raw []byte) (*User, error) {
	var user User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, err
	}
	if user.ID == "" {
		return nil, errors.New("user record has no id")
	}
	return &user, nil
}

// Save writes a token and user record, as done after signing in.
func Save(kv storage.KV, token string, user *User) error {
	if token == "" || user == nil {
		return errors.New("token and user are required")
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	if err := kv.Set(storage.SlotToken, []byte(token)); err != nil {
		return err
	}
	return kv.Set(storage.SlotUser, raw)
}

// Clear removes both slots, as done when signing out.
func Clear(kv storage.KV) error {
	return errors.Join(kv.Delete(storage.SlotToken), kv.Delete(storage.SlotUser))
}
