// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	tea "github.com/charmbracelet/bubbletea"

	conv "github.com/jeranaias/catty-tui/internal/chat"
	"github.com/jeranaias/catty-tui/internal/ui/components"
)

const noticeBuffer = 32

// NoticeQueue is a conv.Notifier feeding the update loop. Notify never
// blocks; when the buffer is full the notice is dropped.
type NoticeQueue struct {
	ch chan conv.Notice
}

// NewNoticeQueue creates an empty queue.
func NewNoticeQueue() *NoticeQueue {
	return &NoticeQueue{ch: make(chan conv.Notice, noticeBuffer)}
}

// Notify enqueues n.
func (q *NoticeQueue) Notify(n conv.Notice) {
	select {
	case q.ch <- n:
	default:
	}
}

// noticeMsg delivers one notice to Update.
type noticeMsg struct {
	notice conv.Notice
}

// wait returns a command that blocks until the next notice arrives.
func (q *NoticeQueue) wait() tea.Cmd {
	return func() tea.Msg {
		return noticeMsg{notice: <-q.ch}
	}
}

func toastKind(k conv.NoticeKind) components.ToastKind {
	switch k {
	case conv.NoticeSuccess:
		return components.ToastKindSuccess
	case conv.NoticeWarning:
		return components.ToastKindWarning
	case conv.NoticeError:
		return components.ToastKindError
	default:
		return components.ToastKindStatus
	}
}
