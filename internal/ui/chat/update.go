// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/catty-tui/internal/access"
	conv "github.com/jeranaias/catty-tui/internal/chat"
	"github.com/jeranaias/catty-tui/internal/ui/components"
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if !m.spinning {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refresh(true)
		return m, cmd

	case sendDoneMsg:
		return m.handleSendDone(msg)

	case noticeMsg:
		cmd := m.toast(toastKind(msg.notice.Kind), msg.notice.Title, msg.notice.Body)
		// A new chat or a deletion changes what is on screen
		m.refresh(true)
		return m, tea.Batch(cmd, m.notices.wait())

	case topicsMsg:
		if msg.err != nil {
			return m, m.toast(components.ToastKindError, "Failed to load suggested topics", msg.err.Error())
		}
		m.topics = msg.topics
		m.refresh(false)
		return m, nil

	case exportDoneMsg:
		if msg.err != nil {
			return m, m.toast(components.ToastKindError, "Export failed", msg.err.Error())
		}
		return m, m.toast(components.ToastKindSuccess, "Chat exported", msg.path)

	case components.ToastTickMsg:
		if m.toasts.Tick(msg.Time) {
			return m, components.ToastTickCmd()
		}
		m.toastTicking = false
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	// header 1, input 2, status bar 1
	vpHeight := msg.Height - 4
	if vpHeight < 3 {
		vpHeight = 3
	}
	m.viewport.Width = msg.Width
	m.viewport.Height = vpHeight
	m.input.Width = msg.Width - 4

	m.resetRenderer()
	m.refresh(true)
	return m, nil
}

func (m Model) handleSendDone(msg sendDoneMsg) (tea.Model, tea.Cmd) {
	if !m.busy() {
		m.spinning = false
	}
	m.refresh(msg.sessionID == m.store.ActiveID())

	switch {
	case msg.err == nil, errors.Is(msg.err, conv.ErrAnswerFailed):
		// The controller already raised a notice
		return m, nil
	case errors.Is(msg.err, conv.ErrBusy):
		return m, m.toast(components.ToastKindWarning, "Still waiting", "Catty is still answering your previous message.")
	default:
		return m, m.toast(components.ToastKindError, "Message not sent", msg.err.Error())
	}
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}
	if m.panelOpen {
		return m.handlePanelKey(msg)
	}
	if m.showHelp {
		if key.Matches(msg, m.keys.Help, m.keys.Close) {
			m.showHelp = false
			m.refresh(false)
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Submit):
		return m.submit()

	case key.Matches(msg, m.keys.Sessions):
		m.panelOpen = true
		m.panelCursor = 0
		for i, s := range m.store.List() {
			if s.ID == m.store.ActiveID() {
				m.panelCursor = i
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.NewChat):
		// Errors surface as notices
		_, _ = m.ctrl.NewChat()
		m.topicCursor = -1
		return m, nil

	case key.Matches(msg, m.keys.Delete):
		_ = m.ctrl.DeleteSession(m.store.ActiveID())
		return m, nil

	case key.Matches(msg, m.keys.Mode):
		next := access.ModeStudent
		if m.ctrl.Mode() == access.ModeStudent {
			next = access.ModeGeneral
		}
		m.ctrl.SwitchMode(next)
		return m, nil

	case key.Matches(msg, m.keys.Copy):
		return m.copyLastAnswer()

	case key.Matches(msg, m.keys.Export):
		return m, exportCmd(m.store.Active(), m.exportDir)

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		m.refresh(false)
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.showTopics() {
			m.moveTopic(-1)
			return m, nil
		}
		m.viewport.LineUp(1)
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.showTopics() {
			m.moveTopic(1)
			return m, nil
		}
		m.viewport.LineDown(1)
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.ViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.ViewDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handlePanelKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	sessions := m.store.List()
	switch {
	case key.Matches(msg, m.keys.Close, m.keys.Sessions):
		m.panelOpen = false
	case key.Matches(msg, m.keys.Up):
		if m.panelCursor > 0 {
			m.panelCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.panelCursor < len(sessions)-1 {
			m.panelCursor++
		}
	case key.Matches(msg, m.keys.Submit):
		if m.panelCursor < len(sessions) {
			if err := m.store.Select(sessions[m.panelCursor].ID); err != nil {
				return m, m.toast(components.ToastKindError, "Could not open chat", err.Error())
			}
		}
		m.panelOpen = false
		m.topicCursor = -1
		m.refresh(true)
		if m.busy() && !m.spinning {
			m.spinning = true
			return m, m.spinner.Tick
		}
	case key.Matches(msg, m.keys.Delete):
		if m.panelCursor < len(sessions) {
			_ = m.ctrl.DeleteSession(sessions[m.panelCursor].ID)
			if m.panelCursor >= m.store.Len() {
				m.panelCursor = m.store.Len() - 1
			}
		}
	case key.Matches(msg, m.keys.NewChat):
		_, _ = m.ctrl.NewChat()
		m.panelOpen = false
	}
	return m, nil
}

// submit sends the input, or fills it with the highlighted topic when empty.
func (m Model) submit() (tea.Model, tea.Cmd) {
	text := m.input.Value()
	if text == "" {
		if m.showTopics() && m.topicCursor >= 0 {
			m.input.SetValue(m.topics[m.topicCursor])
			m.input.CursorEnd()
			m.topicCursor = -1
			m.refresh(false)
		}
		return m, nil
	}
	if m.busy() {
		return m, m.toast(components.ToastKindWarning, "Still waiting", "Catty is still answering your previous message.")
	}

	m.input.Reset()
	m.topicCursor = -1

	cmds := []tea.Cmd{sendCmd(m.ctrl, m.store.ActiveID(), text)}
	if !m.spinning {
		m.spinning = true
		cmds = append(cmds, m.spinner.Tick)
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) moveTopic(delta int) {
	n := len(m.topics)
	if n == 0 {
		return
	}
	switch {
	case m.topicCursor < 0 && delta > 0:
		m.topicCursor = 0
	case m.topicCursor < 0:
		m.topicCursor = n - 1
	default:
		m.topicCursor = (m.topicCursor + delta + n) % n
	}
	m.refresh(false)
}

func (m Model) copyLastAnswer() (tea.Model, tea.Cmd) {
	active := m.store.Active()
	if active == nil || active.LastBotMessage() == nil {
		return m, m.toast(components.ToastKindWarning, "Nothing to copy", "Catty has not answered in this chat yet.")
	}
	text := active.LastBotMessage().Text
	if err := m.clipboard(text); err != nil {
		return m, m.toast(components.ToastKindError, "Copy failed", err.Error())
	}
	return m, m.toast(components.ToastKindSuccess, "Answer copied", fmt.Sprintf("%d characters", len([]rune(text))))
}
