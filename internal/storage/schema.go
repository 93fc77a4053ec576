// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"time"

	"github.com/jeranaias/catty-tui/internal/model"
)

// =============================================================================
// PERSISTED SCHEMA
// =============================================================================

// StoredSession is the persisted form of a chat session.
type StoredSession struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Messages  []StoredMessage `json:"messages"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// StoredMessage is the persisted form of a message.
type StoredMessage struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"` // "user" or "bot"
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`

	// ResponseTime in milliseconds, bot messages only.
	ResponseTime *int64 `json:"responseTime,omitempty"`
}

// ToStored converts a session to its persisted form.
func ToStored(s *model.ChatSession) StoredSession {
	stored := StoredSession{
		ID:        s.ID,
		Title:     s.Title,
		Messages:  make([]StoredMessage, 0, len(s.Messages)),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
	for _, m := range s.Messages {
		sm := StoredMessage{
			ID:        m.ID,
			Sender:    m.Sender.String(),
			Text:      m.Text,
			Timestamp: m.Timestamp,
		}
		if m.IsBot() {
			ms := m.ResponseTime.Milliseconds()
			sm.ResponseTime = &ms
		}
		stored.Messages = append(stored.Messages, sm)
	}
	return stored
}

// ToModel converts a persisted session back to a model session, repairing
// what can be repaired: a missing title becomes model.DefaultTitle, an
// UpdatedAt before CreatedAt is raised to CreatedAt, and messages with an
// unknown sender, empty ID or a duplicate ID are dropped.
func (s StoredSession) ToModel() *model.ChatSession {
	session := &model.ChatSession{
		ID:        s.ID,
		Title:     s.Title,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
		Messages:  make([]*model.Message, 0, len(s.Messages)),
	}
	if session.Title == "" {
		session.Title = model.DefaultTitle
	}
	if session.UpdatedAt.Before(session.CreatedAt) {
		session.UpdatedAt = session.CreatedAt
	}

	seen := make(map[string]bool, len(s.Messages))
	for _, sm := range s.Messages {
		sender := model.Sender(sm.Sender)
		if !sender.Valid() || sm.ID == "" || seen[sm.ID] {
			continue
		}
		seen[sm.ID] = true

		msg := &model.Message{
			ID:        sm.ID,
			Sender:    sender,
			Text:      sm.Text,
			Timestamp: sm.Timestamp,
		}
		if sender == model.SenderBot && sm.ResponseTime != nil && *sm.ResponseTime > 0 {
			msg.ResponseTime = time.Duration(*sm.ResponseTime) * time.Millisecond
		}
		session.Messages = append(session.Messages, msg)
	}
	return session
}

// EncodeSessions serializes sessions in the persisted schema.
func EncodeSessions(sessions []*model.ChatSession) ([]byte, error) {
	stored := make([]StoredSession, 0, len(sessions))
	for _, s := range sessions {
		stored = append(stored, ToStored(s))
	}
	return json.Marshal(stored)
}

// DecodeSessions parses the persisted schema. Sessions without an ID and
// repeated IDs are dropped; the first occurrence wins.
func DecodeSessions(data []byte) ([]*model.ChatSession, error) {
	var stored []StoredSession
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, err
	}

	sessions := make([]*model.ChatSession, 0, len(stored))
	seen := make(map[string]bool, len(stored))
	for _, s := range stored {
		if s.ID == "" || seen[s.ID] {
			continue
		}
		seen[s.ID] = true
		sessions = append(sessions, s.ToModel())
	}
	return sessions, nil
}
