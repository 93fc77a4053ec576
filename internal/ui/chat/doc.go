// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the full-screen chat view for the catty TUI.

The view is a Bubble Tea model on top of the conversation controller. Sends
run as tea.Cmd goroutines; the controller appends the user message right
away, so the next repaint shows it while the spinner runs.

# Key Components

## Model (model.go)

Holds the controller, the text input, the viewport, the spinner, the toast
manager and the glamour renderer used for assistant answers.

## Update Loop (update.go)

Keyboard handling, send completion, notices, topics and export results.

## View Rendering (view.go)

Header with session title, user and mode badge; message bubbles; the
suggested topics of an empty session; the session panel; the status bar.

## Notices (notices.go)

NoticeQueue carries controller notices, including those raised by background
history posts, into the update loop where they become toasts.

# Keys

	enter    send, or fill the input with the highlighted topic
	tab      open the session panel
	ctrl+n   new chat
	ctrl+d   delete the active chat
	ctrl+t   switch mode
	ctrl+y   copy the last answer
	ctrl+e   export the chat to HTML
	f1       help
	ctrl+c   quit
*/
package chat
