// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/catty-tui/internal/model"
	"github.com/jeranaias/catty-tui/internal/storage"
	"github.com/jeranaias/catty-tui/internal/ui/components"
	"github.com/jeranaias/catty-tui/internal/util"
)

const welcomeText = "Hi, I'm Catty! Ask me anything, or pick one of the suggested topics below."

// View renders the chat.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var body string
	switch {
	case m.panelOpen:
		body = m.renderSessionPanel()
	case m.showHelp:
		body = m.renderHelp()
	default:
		body = m.viewport.View()
	}

	if toasts := m.toasts.Toasts(); len(toasts) > 0 {
		body = overlayBottom(body, components.RenderToastStack(toasts, m.width))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		body,
		m.theme.Input.Width(m.width).Render(m.input.View()),
		m.renderStatusBar(),
	)
}

// refresh rebuilds the viewport content from the active session.
func (m *Model) refresh(gotoBottom bool) {
	m.viewport.SetContent(m.renderConversation())
	if gotoBottom {
		m.viewport.GotoBottom()
	}
}

// =============================================================================
// CONVERSATION
// =============================================================================

func (m *Model) renderConversation() string {
	active := m.store.Active()
	if active == nil {
		return ""
	}
	if active.IsEmpty() {
		return m.renderWelcome()
	}

	var sb strings.Builder
	for _, msg := range active.Messages {
		if msg.IsUser() {
			sb.WriteString(m.renderUserMessage(msg))
		} else {
			sb.WriteString(m.renderBotMessage(msg))
		}
		sb.WriteString("\n")
	}
	if m.busy() {
		sb.WriteString(m.theme.Meta.Render(m.spinner.View() + " Catty is typing..."))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m *Model) renderUserMessage(msg *model.Message) string {
	maxWidth := m.bubbleWidth()
	label := m.theme.UserLabel.Render(msg.Sender.DisplayName())
	bubble := m.theme.UserBubble.MaxWidth(maxWidth).Render(msg.Text)
	block := lipgloss.JoinVertical(lipgloss.Right, label, bubble)
	return lipgloss.PlaceHorizontal(m.viewport.Width, lipgloss.Right, block)
}

func (m *Model) renderBotMessage(msg *model.Message) string {
	label := m.theme.BotLabel.Render(msg.Sender.DisplayName())

	body, ok := m.rendered[msg.ID]
	if !ok {
		body = msg.Text
		if m.renderer != nil {
			if out, err := m.renderer.Render(msg.Text); err == nil {
				body = strings.Trim(out, "\n")
			}
		}
		m.rendered[msg.ID] = body
	}

	parts := []string{label, m.theme.BotBubble.Render(body)}
	if m.showResponseTime {
		if rt := msg.FormatResponseTime(); rt != "" {
			parts = append(parts, m.theme.Meta.Render("Response time: "+rt))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *Model) renderWelcome() string {
	var sb strings.Builder
	sb.WriteString(m.theme.Welcome.Width(m.bubbleWidth()).Render(welcomeText))
	sb.WriteString("\n\n")

	if len(m.topics) > 0 && m.input.Value() == "" {
		sb.WriteString(m.theme.Meta.Render("Suggested topics (up/down, enter to use):"))
		sb.WriteString("\n")
		for i, topic := range m.topics {
			text := util.TruncateWidth(util.SingleLine(topic), m.bubbleWidth())
			if i == m.topicCursor {
				sb.WriteString(m.theme.TopicSelected.Render("> " + text))
			} else {
				sb.WriteString(m.theme.Topic.Render("  " + text))
			}
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func (m *Model) bubbleWidth() int {
	w := m.viewport.Width * 3 / 4
	if w < 20 {
		w = 20
	}
	return w
}

// =============================================================================
// CHROME
// =============================================================================

func (m Model) renderHeader() string {
	title := "Catty"
	if active := m.store.Active(); active != nil {
		title += " · " + util.TruncateWidth(util.SingleLine(active.Title), 40)
	}

	meta := m.ctrl.Auth().DisplayName() + " " + m.theme.ModeBadge(m.ctrl.Mode())
	left := m.theme.HeaderTitle.Render(title)
	right := m.theme.HeaderMeta.Render(meta)

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return m.theme.Header.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) renderStatusBar() string {
	var parts []string
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	status := strings.Join(parts, " • ")
	if m.busy() {
		status = "waiting for answer • " + status
	}
	return m.theme.StatusBar.Width(m.width).Render(util.TruncateWidth(status, m.width-2))
}

func (m Model) renderSessionPanel() string {
	sessions := m.store.List()
	activeID := m.store.ActiveID()
	now := m.now()

	var sb strings.Builder
	sb.WriteString(m.theme.HeaderTitle.Render("Chats"))
	sb.WriteString("\n\n")
	for i, s := range sessions {
		line := util.PadRight(util.TruncateWidth(util.SingleLine(s.Title), 36), 36) + " " +
			util.PadRight(model.FormatRelativeDate(s.UpdatedAt, now), 12) + " " +
			strconv.Itoa(s.MessageCount()) + " msgs  " + storage.ShortID(s.ID)
		prefix := "  "
		if s.ID == activeID {
			prefix = "* "
		}
		style := m.theme.SessionItem
		if i == m.panelCursor {
			style = m.theme.SessionActive
		}
		sb.WriteString(style.Render(prefix + line))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(m.theme.Help.Render("enter open • ctrl+d delete • ctrl+n new • esc close"))

	return m.theme.SessionPanel.
		Width(m.width - 4).
		Height(m.viewport.Height - 2).
		Render(sb.String())
}

func (m Model) renderHelp() string {
	var sb strings.Builder
	sb.WriteString(m.theme.HeaderTitle.Render("Keys"))
	sb.WriteString("\n\n")
	for _, b := range m.keys.FullHelp() {
		h := b.Help()
		sb.WriteString(util.PadRight(h.Key, 12) + h.Desc + "\n")
	}
	sb.WriteString("\n")
	sb.WriteString(m.theme.Help.Render("f1/esc to close"))
	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.viewport.Height).
		Padding(0, 2).
		Render(sb.String())
}

// overlayBottom replaces the last lines of base with overlay.
func overlayBottom(base, overlay string) string {
	baseLines := strings.Split(base, "\n")
	overLines := strings.Split(overlay, "\n")
	if len(overLines) >= len(baseLines) {
		return overlay
	}
	start := len(baseLines) - len(overLines)
	copy(baseLines[start:], overLines)
	return strings.Join(baseLines, "\n")
}
