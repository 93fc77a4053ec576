// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/jeranaias/catty-tui/internal/model"
)

// =============================================================================
// ERRORS
// =============================================================================

// ErrSessionNotFound is returned when a session ID is not in the collection.
// Use errors.Is(err, ErrSessionNotFound) to check for this error.
var ErrSessionNotFound = &SessionError{Message: "session not found"}

// ErrDuplicateMessage is returned when a message ID already exists in the session.
var ErrDuplicateMessage = &SessionError{Message: "duplicate message id"}

// ErrPersist marks a mutation that was applied in memory but could not be
// written to the slot.
var ErrPersist = errors.New("failed to persist sessions")

// SessionError represents a session-related error.
// It implements the error interface and can be compared using errors.Is.
type SessionError struct {
	Message string
}

// Error implements the error interface.
func (e *SessionError) Error() string {
	return e.Message
}

// Is implements errors.Is support for comparing session errors.
func (e *SessionError) Is(target error) bool {
	t, ok := target.(*SessionError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

// =============================================================================
// SESSION STORE
// =============================================================================

// Options configures a SessionStore.
type Options struct {
	// Slot holding the collection. Default: SlotSessions.
	Slot string

	// Logger receives load and save diagnostics. Default: slog.Default().
	Logger *slog.Logger

	// Now is the clock. Default: time.Now.
	Now func() time.Time
}

// SessionStore owns the session collection and the active-session pointer.
//
// Every mutation writes the full collection back to the slot. The collection
// is never empty and the active ID always names an existing session.
// Callers receive clones; stored sessions are only changed through the store.
type SessionStore struct {
	mu       sync.Mutex
	kv       KV
	slot     string
	logger   *slog.Logger
	now      func() time.Time
	sessions []*model.ChatSession // insertion order
	activeID string
}

// Open loads the collection from kv. When nothing usable is persisted a
// fresh default session is created. The most recently updated session
// becomes active.
func Open(kv KV, opts Options) *SessionStore {
	if opts.Slot == "" {
		opts.Slot = SlotSessions
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &SessionStore{
		kv:     kv,
		slot:   opts.Slot,
		logger: opts.Logger,
		now:    opts.Now,
	}
	s.sessions = loadAll(kv, s.slot, s.logger)

	if len(s.sessions) == 0 {
		created := model.NewChatSession(s.now())
		s.sessions = append(s.sessions, created)
		s.activeID = created.ID
		if err := s.saveLocked(); err != nil {
			s.logger.Warn("could not persist default session", "error", err)
		}
		return s
	}

	s.activeID = MostRecentlyUpdated(s.sessions).ID
	s.logger.Debug("sessions loaded", "count", len(s.sessions), "active", s.activeID)
	return s
}

// LoadAll reads the collection persisted in slot. It never fails: an absent
// or unparsable slot yields an empty collection.
func LoadAll(kv KV, slot string) []*model.ChatSession {
	return loadAll(kv, slot, slog.Default())
}

func loadAll(kv KV, slot string, logger *slog.Logger) []*model.ChatSession {
	data, err := kv.Get(slot)
	if err != nil {
		if !errors.Is(err, ErrSlotEmpty) {
			logger.Warn("could not read sessions, starting fresh", "slot", slot, "error", err)
		}
		return []*model.ChatSession{}
	}

	sessions, err := DecodeSessions(data)
	if err != nil {
		logger.Warn("persisted sessions are unreadable, starting fresh", "slot", slot, "error", err)
		return []*model.ChatSession{}
	}
	return sessions
}

// MostRecentlyUpdated returns the session with the latest UpdatedAt. Ties go
// to the earliest entry in sessions. Returns nil for an empty slice.
func MostRecentlyUpdated(sessions []*model.ChatSession) *model.ChatSession {
	var best *model.ChatSession
	for _, s := range sessions {
		if best == nil || s.UpdatedAt.After(best.UpdatedAt) {
			best = s
		}
	}
	return best
}

// =============================================================================
// SAVE OPERATIONS
// =============================================================================

// Save writes the full collection to the slot.
func (s *SessionStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

func (s *SessionStore) saveLocked() error {
	data, err := EncodeSessions(s.sessions)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	if err := s.kv.Set(s.slot, data); err != nil {
		s.logger.Error("session save failed", "slot", s.slot, "error", err)
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}

// =============================================================================
// MUTATIONS
// =============================================================================

// CreateSession adds a new empty session without changing the active one.
// The returned session is valid even when the error reports a failed save.
func (s *SessionStore) CreateSession() (*model.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := model.NewChatSession(s.now())
	s.sessions = append(s.sessions, created)
	return created.Clone(), s.saveLocked()
}

// NewChat creates a session and makes it active.
func (s *SessionStore) NewChat() (*model.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := model.NewChatSession(s.now())
	s.sessions = append(s.sessions, created)
	s.activeID = created.ID
	return created.Clone(), s.saveLocked()
}

// AppendMessage appends msg to the session and refreshes its UpdatedAt.
// The first user message of an untitled session fixes the title.
//
// An unknown session ID is a caller bug; the collection is left untouched
// and ErrSessionNotFound is returned.
func (s *SessionStore) AppendMessage(sessionID string, msg *model.Message) error {
	if msg == nil {
		return errors.New("message is nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session := s.findLocked(sessionID)
	if session == nil {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	if session.HasMessage(msg.ID) {
		return fmt.Errorf("%w: %s", ErrDuplicateMessage, msg.ID)
	}

	stored := *msg
	session.Append(&stored, s.now())
	return s.saveLocked()
}

// DeleteSession removes a session. Deleting the active session activates the
// most recently updated remaining one, or a fresh default session when none
// remain.
func (s *SessionStore) DeleteSession(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(sessionID)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	s.sessions = append(s.sessions[:idx], s.sessions[idx+1:]...)

	if len(s.sessions) == 0 {
		created := model.NewChatSession(s.now())
		s.sessions = append(s.sessions, created)
		s.activeID = created.ID
	} else if s.activeID == sessionID {
		s.activeID = MostRecentlyUpdated(s.sessions).ID
	}
	return s.saveLocked()
}

// Select makes sessionID the active session. Selection is not persisted.
func (s *SessionStore) Select(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findLocked(sessionID) == nil {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	s.activeID = sessionID
	return nil
}

// =============================================================================
// QUERIES
// =============================================================================

// Active returns a copy of the active session.
func (s *SessionStore) Active() *model.ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findLocked(s.activeID).Clone()
}

// ActiveID returns the ID of the active session.
func (s *SessionStore) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// Get returns a copy of a session.
func (s *SessionStore) Get(sessionID string) (*model.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := s.findLocked(sessionID)
	if session == nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return session.Clone(), nil
}

// List returns copies of all sessions, most recently updated first.
func (s *SessionStore) List() []*model.ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := make([]*model.ChatSession, len(s.sessions))
	for i, session := range s.sessions {
		list[i] = session.Clone()
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].UpdatedAt.After(list[j].UpdatedAt)
	})
	return list
}

// Len returns the number of sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Resolve finds a session by full ID or by a unique ID prefix, as typed on
// the command line.
func (s *SessionStore) Resolve(ref string) (*model.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session := s.findLocked(ref); session != nil {
		return session.Clone(), nil
	}

	var match *model.ChatSession
	for _, session := range s.sessions {
		if ref != "" && len(ref) < len(session.ID) && session.ID[:len(ref)] == ref {
			if match != nil {
				return nil, fmt.Errorf("session prefix %q is ambiguous", ref)
			}
			match = session
		}
	}
	if match == nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, ref)
	}
	return match.Clone(), nil
}

func (s *SessionStore) findLocked(id string) *model.ChatSession {
	if i := s.indexLocked(id); i >= 0 {
		return s.sessions[i]
	}
	return nil
}

func (s *SessionStore) indexLocked(id string) int {
	for i, session := range s.sessions {
		if session.ID == id {
			return i
		}
	}
	return -1
}
