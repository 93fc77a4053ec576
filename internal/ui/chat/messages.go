// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	conv "github.com/jeranaias/catty-tui/internal/chat"
	"github.com/jeranaias/catty-tui/internal/export"
	"github.com/jeranaias/catty-tui/internal/model"
	"github.com/jeranaias/catty-tui/internal/topics"
)

// =============================================================================
// MESSAGES
// =============================================================================

// sendDoneMsg reports a finished Send.
type sendDoneMsg struct {
	sessionID string
	outcome   conv.Outcome
	err       error
}

// topicsMsg carries the suggested topics.
type topicsMsg struct {
	topics []string
	err    error
}

// exportDoneMsg reports a finished export.
type exportDoneMsg struct {
	path string
	err  error
}

// =============================================================================
// COMMAND CREATORS
// =============================================================================

// sendCmd runs one exchange. Send has no cancellation path, so the answer
// call uses a background context.
func sendCmd(ctrl *conv.Controller, sessionID, text string) tea.Cmd {
	return func() tea.Msg {
		out, err := ctrl.Send(context.Background(), sessionID, text)
		return sendDoneMsg{sessionID: sessionID, outcome: out, err: err}
	}
}

// TopicSource lists suggested topics.
type TopicSource interface {
	List(ctx context.Context) ([]topics.Topic, error)
}

const topicsTimeout = 10 * time.Second

func loadTopicsCmd(src TopicSource) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), topicsTimeout)
		defer cancel()
		list, err := src.List(ctx)
		return topicsMsg{topics: topics.Texts(list), err: err}
	}
}

func exportCmd(session *model.ChatSession, dir string) tea.Cmd {
	return func() tea.Msg {
		opts := export.DefaultOptions()
		opts.OutputDir = dir
		path, err := export.ExportToFile(session, export.NewHTMLExporter(opts), opts)
		return exportDoneMsg{path: path, err: err}
	}
}
