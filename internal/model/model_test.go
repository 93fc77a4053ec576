// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"testing"
	"time"
)

// =============================================================================
// SESSION TESTS
// =============================================================================

func TestNewChatSession(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	s := NewChatSession(now)

	if s.ID == "" {
		t.Error("expected generated ID")
	}
	if s.Title != DefaultTitle {
		t.Errorf("Title = %q, want %q", s.Title, DefaultTitle)
	}
	if !s.CreatedAt.Equal(now) || !s.UpdatedAt.Equal(now) {
		t.Errorf("timestamps = %v/%v, want %v", s.CreatedAt, s.UpdatedAt, now)
	}
	if !s.IsEmpty() {
		t.Error("new session should have no messages")
	}
}

func TestChatSession_AppendDerivesTitleOnce(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	s := NewChatSession(now)

	s.Append(NewUserMessage("Explain the curriculum structure in detail please"), now.Add(time.Second))
	want := "Explain the curriculum structu..."
	if s.Title != want {
		t.Fatalf("Title = %q, want %q", s.Title, want)
	}

	s.Append(NewBotMessage("Sure.", time.Second), now.Add(2*time.Second))
	s.Append(NewUserMessage("Something else entirely"), now.Add(3*time.Second))
	if s.Title != want {
		t.Errorf("Title changed to %q after later messages", s.Title)
	}
}

func TestChatSession_BotFirstDoesNotSetTitle(t *testing.T) {
	now := time.Now()
	s := NewChatSession(now)
	s.Append(NewBotMessage("Halo!", 0), now)
	if s.Title != DefaultTitle {
		t.Errorf("Title = %q, want %q", s.Title, DefaultTitle)
	}
	s.Append(NewUserMessage("Short"), now)
	if s.Title != "Short" {
		t.Errorf("Title = %q, want %q", s.Title, "Short")
	}
}

func TestChatSession_UpdatedAtMovesForward(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	s := NewChatSession(now)

	// Same instant as creation: still strictly later afterwards.
	s.Append(NewUserMessage("hi"), now)
	if !s.UpdatedAt.After(s.CreatedAt) {
		t.Fatalf("UpdatedAt %v not after CreatedAt %v", s.UpdatedAt, s.CreatedAt)
	}

	prev := s.UpdatedAt
	s.Append(NewBotMessage("hello", 0), now.Add(-time.Hour))
	if !s.UpdatedAt.After(prev) {
		t.Errorf("UpdatedAt went backwards: %v -> %v", prev, s.UpdatedAt)
	}
}

func TestChatSession_AppendKeepsOrder(t *testing.T) {
	s := NewChatSession(time.Now())
	texts := []string{"one", "two", "three"}
	for _, txt := range texts {
		s.Append(NewUserMessage(txt), time.Now())
	}
	for i, msg := range s.Messages {
		if msg.Text != texts[i] {
			t.Errorf("Messages[%d] = %q, want %q", i, msg.Text, texts[i])
		}
	}
	if s.LastMessage().Text != "three" {
		t.Errorf("LastMessage = %q", s.LastMessage().Text)
	}
}

func TestChatSession_Clone(t *testing.T) {
	s := NewChatSession(time.Now())
	s.Append(NewUserMessage("original"), time.Now())

	clone := s.Clone()
	clone.Messages[0].Text = "mutated"
	clone.Title = "other"

	if s.Messages[0].Text != "original" {
		t.Error("clone shares message storage with original")
	}
	if s.Title == "other" {
		t.Error("clone shares title with original")
	}
}

func TestDeriveTitle(t *testing.T) {
	if got := DeriveTitle("Jadwal kuliah"); got != "Jadwal kuliah" {
		t.Errorf("short title = %q", got)
	}
	long := strings.Repeat("x", 31)
	if got := DeriveTitle(long); got != strings.Repeat("x", 30)+"..." {
		t.Errorf("long title = %q", got)
	}
	// "e" + combining acute is one rune after NFC.
	decomposed := strings.Repeat("e\u0301", 30)
	if got := DeriveTitle(decomposed); got != strings.Repeat("\u00e9", 30) {
		t.Errorf("normalized title = %q", got)
	}
}

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestNewBotMessage_ClampsNegativeDuration(t *testing.T) {
	msg := NewBotMessage("x", -5*time.Millisecond)
	if msg.ResponseTime != 0 {
		t.Errorf("ResponseTime = %v, want 0", msg.ResponseTime)
	}
	if !msg.IsBot() || msg.IsUser() {
		t.Error("sender flags wrong")
	}
}

func TestMessage_FormatResponseTime(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{850 * time.Millisecond, "850ms"},
		{1250 * time.Millisecond, "1.2s"},
		{12 * time.Second, "12.0s"},
	}
	for _, tt := range tests {
		if got := NewBotMessage("x", tt.d).FormatResponseTime(); got != tt.want {
			t.Errorf("FormatResponseTime(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
	if got := NewUserMessage("x").FormatResponseTime(); got != "" {
		t.Errorf("user message response time = %q", got)
	}
}

func TestMessage_Preview(t *testing.T) {
	msg := NewUserMessage("first line\nsecond line")
	if got := msg.Preview(50); got != "first line" {
		t.Errorf("Preview = %q", got)
	}
	msg = NewUserMessage("abcdefghij")
	if got := msg.Preview(6); got != "abc..." {
		t.Errorf("Preview = %q", got)
	}
}

func TestSender(t *testing.T) {
	if !SenderUser.Valid() || !SenderBot.Valid() || Sender("system").Valid() {
		t.Error("Valid() wrong")
	}
	if SenderBot.DisplayName() != "Catty" {
		t.Errorf("DisplayName = %q", SenderBot.DisplayName())
	}
}

func TestFormatRelativeDate(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		t    time.Time
		want string
	}{
		{now.Add(-time.Hour), "Today"},
		{now.Add(-30 * time.Hour), "Yesterday"},
		{time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC), "Mar 2"},
		{time.Date(2024, 12, 31, 9, 0, 0, 0, time.UTC), "Dec 31, 2024"},
	}
	for _, tt := range tests {
		if got := FormatRelativeDate(tt.t, now); got != tt.want {
			t.Errorf("FormatRelativeDate(%v) = %q, want %q", tt.t, got, tt.want)
		}
	}
}
