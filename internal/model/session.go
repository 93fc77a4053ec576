// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions and messages.
package model

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/catty-tui/internal/util"
)

const (
	// DefaultTitle is the title of a session without user messages.
	DefaultTitle = "New Chat"

	// TitleMaxRunes is how much of the first user message becomes the title.
	TitleMaxRunes = 30
)

// =============================================================================
// CHAT SESSION TYPE
// =============================================================================

// ChatSession is one conversation thread.
type ChatSession struct {
	ID        string
	Title     string
	Messages  []*Message
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewChatSession creates an empty session titled DefaultTitle.
func NewChatSession(now time.Time) *ChatSession {
	return &ChatSession{
		ID:        uuid.NewString(),
		Title:     DefaultTitle,
		Messages:  make([]*Message, 0),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// Append adds msg to the end of the session and refreshes UpdatedAt.
//
// UpdatedAt always moves strictly forward, even when now does not (coarse
// clocks, two appends within one tick). The first user message of a session
// still titled DefaultTitle fixes the title.
func (s *ChatSession) Append(msg *Message, now time.Time) {
	firstUser := msg.IsUser() && !s.HasUserMessage()

	s.Messages = append(s.Messages, msg)
	s.touch(now)

	if firstUser && s.Title == DefaultTitle {
		s.Title = DeriveTitle(msg.Text)
	}
}

func (s *ChatSession) touch(now time.Time) {
	if !now.After(s.UpdatedAt) {
		now = s.UpdatedAt.Add(time.Nanosecond)
	}
	s.UpdatedAt = now
}

// HasUserMessage reports whether any message was sent by the user.
func (s *ChatSession) HasUserMessage() bool {
	for _, m := range s.Messages {
		if m.IsUser() {
			return true
		}
	}
	return false
}

// HasMessage reports whether a message with id is already in the session.
func (s *ChatSession) HasMessage(id string) bool {
	for _, m := range s.Messages {
		if m.ID == id {
			return true
		}
	}
	return false
}

// LastMessage returns the most recent message, or nil if empty.
func (s *ChatSession) LastMessage() *Message {
	if len(s.Messages) == 0 {
		return nil
	}
	return s.Messages[len(s.Messages)-1]
}

// LastBotMessage returns the most recent assistant message.
func (s *ChatSession) LastBotMessage() *Message {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].IsBot() {
			return s.Messages[i]
		}
	}
	return nil
}

// MessageCount returns the number of messages.
func (s *ChatSession) MessageCount() int {
	return len(s.Messages)
}

// IsEmpty returns true if there are no messages.
func (s *ChatSession) IsEmpty() bool {
	return len(s.Messages) == 0
}

// Clone returns a deep copy; callers outside the store get clones so they
// cannot mutate stored history.
func (s *ChatSession) Clone() *ChatSession {
	clone := &ChatSession{
		ID:        s.ID,
		Title:     s.Title,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
		Messages:  make([]*Message, len(s.Messages)),
	}
	for i, msg := range s.Messages {
		msgCopy := *msg
		clone.Messages[i] = &msgCopy
	}
	return clone
}

// =============================================================================
// TITLE MANAGEMENT
// =============================================================================

// DeriveTitle builds a session title from the first user message: the first
// TitleMaxRunes runes plus "..." when longer. Text is NFC-normalized first so
// a combining accent is never split from its base letter.
func DeriveTitle(text string) string {
	return util.Ellipsize(norm.NFC.String(text), TitleMaxRunes)
}

// FormatRelativeDate formats a session date for the history list the way the
// web client did: Today, Yesterday, "Jan 2", or "Jan 2, 2006" for other years.
func FormatRelativeDate(t, now time.Time) string {
	const day = 24 * time.Hour
	diff := now.Sub(t)
	switch {
	case diff < day:
		return "Today"
	case diff < 2*day:
		return "Yesterday"
	case t.Year() != now.Year():
		return t.Format("Jan 2, 2006")
	default:
		return t.Format("Jan 2")
	}
}
