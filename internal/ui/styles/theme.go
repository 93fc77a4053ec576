// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/catty-tui/internal/access"
)

// Theme holds the lipgloss styles used by the views.
type Theme struct {
	Header      lipgloss.Style
	HeaderTitle lipgloss.Style
	HeaderMeta  lipgloss.Style

	UserLabel  lipgloss.Style
	BotLabel   lipgloss.Style
	UserBubble lipgloss.Style
	BotBubble  lipgloss.Style
	Meta       lipgloss.Style

	Topic         lipgloss.Style
	TopicSelected lipgloss.Style
	Welcome       lipgloss.Style

	SessionItem   lipgloss.Style
	SessionActive lipgloss.Style
	SessionPanel  lipgloss.Style

	StatusBar lipgloss.Style
	Help      lipgloss.Style
	Input     lipgloss.Style

	Error   lipgloss.Style
	Warning lipgloss.Style
	Success lipgloss.Style
}

// NewTheme creates the default theme.
func NewTheme() *Theme {
	return &Theme{
		Header: lipgloss.NewStyle().
			Background(SurfaceDim).
			Padding(0, 1),
		HeaderTitle: lipgloss.NewStyle().
			Foreground(Cyan).
			Bold(true),
		HeaderMeta: lipgloss.NewStyle().
			Foreground(TextSecondary),

		UserLabel: lipgloss.NewStyle().
			Foreground(UserBubbleFg).
			Bold(true),
		BotLabel: lipgloss.NewStyle().
			Foreground(Purple).
			Bold(true),
		UserBubble: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(UserBubbleBorder).
			Padding(0, 1),
		BotBubble: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			BorderTop(false).
			BorderRight(false).
			BorderBottom(false).
			BorderForeground(BotBubbleBorder),
		Meta: lipgloss.NewStyle().
			Foreground(TextMuted).
			Italic(true),

		Topic: lipgloss.NewStyle().
			Foreground(TextSecondary).
			PaddingLeft(2),
		TopicSelected: lipgloss.NewStyle().
			Foreground(Purple).
			Bold(true).
			PaddingLeft(1),
		Welcome: lipgloss.NewStyle().
			Foreground(TextPrimary).
			Bold(true).
			MarginBottom(1),

		SessionItem: lipgloss.NewStyle().
			Foreground(TextSecondary).
			PaddingLeft(2),
		SessionActive: lipgloss.NewStyle().
			Foreground(TextInverse).
			Background(Purple).
			PaddingLeft(1).
			PaddingRight(1),
		SessionPanel: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(Overlay).
			Padding(0, 1),

		StatusBar: lipgloss.NewStyle().
			Foreground(TextSecondary).
			Background(SurfaceDim).
			Padding(0, 1),
		Help: lipgloss.NewStyle().
			Foreground(TextMuted),
		Input: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderBottom(false).
			BorderLeft(false).
			BorderRight(false).
			BorderForeground(Overlay),

		Error:   lipgloss.NewStyle().Foreground(Rose).Bold(true),
		Warning: lipgloss.NewStyle().Foreground(Amber).Bold(true),
		Success: lipgloss.NewStyle().Foreground(Emerald).Bold(true),
	}
}

// ModeBadge renders the mode as a colored badge.
func (t *Theme) ModeBadge(mode access.Mode) string {
	color := Cyan
	if mode == access.ModeStudent {
		color = Emerald
	}
	return lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(color).
		Bold(true).
		Padding(0, 1).
		Render(mode.Label())
}
