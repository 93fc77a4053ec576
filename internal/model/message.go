// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions and messages.
package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// SENDER TYPE
// =============================================================================

// Sender identifies who wrote a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// String returns the string representation of the sender.
func (s Sender) String() string {
	return string(s)
}

// Valid reports whether s is one of the known senders.
func (s Sender) Valid() bool {
	return s == SenderUser || s == SenderBot
}

// DisplayName returns a human-readable name for the sender.
func (s Sender) DisplayName() string {
	switch s {
	case SenderUser:
		return "You"
	case SenderBot:
		return "Catty"
	default:
		return string(s)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is a single entry in a chat session.
// Text is the raw source; assistant text is rendered at display time only.
type Message struct {
	ID        string
	Sender    Sender
	Text      string
	Timestamp time.Time

	// ResponseTime is the answer-service round trip. Bot messages only.
	ResponseTime time.Duration
}

// NewMessage creates a message with a fresh ID stamped with the current time.
func NewMessage(sender Sender, text string) *Message {
	return &Message{
		ID:        uuid.NewString(),
		Sender:    sender,
		Text:      text,
		Timestamp: time.Now(),
	}
}

// NewUserMessage creates a user message.
func NewUserMessage(text string) *Message {
	return NewMessage(SenderUser, text)
}

// NewBotMessage creates a bot message carrying the measured response time.
// Negative durations (clock steps) are clamped to zero.
func NewBotMessage(text string, responseTime time.Duration) *Message {
	msg := NewMessage(SenderBot, text)
	if responseTime < 0 {
		responseTime = 0
	}
	msg.ResponseTime = responseTime
	return msg
}

// IsUser reports whether the message was written by the user.
func (m *Message) IsUser() bool {
	return m.Sender == SenderUser
}

// IsBot reports whether the message was written by the assistant.
func (m *Message) IsBot() bool {
	return m.Sender == SenderBot
}

// FormatResponseTime returns the response time as shown under bot messages,
// e.g. "850ms" or "1.2s". Empty for user messages.
func (m *Message) FormatResponseTime() string {
	if !m.IsBot() {
		return ""
	}
	if m.ResponseTime < time.Second {
		return fmt.Sprintf("%dms", m.ResponseTime.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", m.ResponseTime.Seconds())
}

// Preview returns the first line of the text, cut to maxLen runes.
func (m *Message) Preview(maxLen int) string {
	line := m.Text
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	runes := []rune(strings.TrimSpace(line))
	if len(runes) <= maxLen {
		return string(runes)
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
