// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

// NoticeKind is the severity of a Notice.
type NoticeKind int

const (
	NoticeStatus NoticeKind = iota
	NoticeSuccess
	NoticeWarning
	NoticeError
)

// String returns the kind name.
func (k NoticeKind) String() string {
	switch k {
	case NoticeStatus:
		return "status"
	case NoticeSuccess:
		return "success"
	case NoticeWarning:
		return "warning"
	case NoticeError:
		return "error"
	default:
		return "unknown"
	}
}

// Notice is a user-facing notification.
type Notice struct {
	Kind  NoticeKind
	Title string
	Body  string
}

// Notifier surfaces notices to the user. Implementations must be safe for
// concurrent use; history failures are reported from background goroutines.
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

// Notify calls f.
func (f NotifierFunc) Notify(n Notice) {
	f(n)
}

type discardNotifier struct{}

func (discardNotifier) Notify(Notice) {}

// Notice texts.
const (
	titleAnswerFailed   = "Something went wrong"
	bodyAnswerFailed    = "Could not reach the Catty assistant. Make sure the answer service is running."
	titleHistoryFailed  = "History not saved"
	titleHistoryNetwork = "Network error (history)"
	bodyHistoryNetwork  = "Could not reach the server to save chat history."
	titleNotSaved       = "Chat not saved"
	titleSaved          = "Chat saved"
	bodySaved           = "Your conversation was saved automatically"
	titleModeChanged    = "Mode changed"
	titleAccessDenied   = "Access restricted"
	titleNewChat        = "New chat created"
	bodyNewChat         = "You can start a new conversation with Catty"
	titleChatDeleted    = "Chat deleted"
	bodyChatDeleted     = "The conversation was deleted"
)
