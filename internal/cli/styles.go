// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"github.com/charmbracelet/lipgloss"

	conv "github.com/jeranaias/catty-tui/internal/chat"
	"github.com/jeranaias/catty-tui/internal/ui/styles"
)

func init() {
	lipgloss.SetColorProfile(ColorProfile())
}

// =============================================================================
// SHARED STYLES
// =============================================================================

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.Purple)

	LabelStyle = lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Width(16)

	ValueStyle = lipgloss.NewStyle().
			Foreground(styles.TextPrimary)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(styles.Emerald).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(styles.Rose).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(styles.Amber).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(styles.TextMuted)

	PromptStyle = lipgloss.NewStyle().
			Foreground(styles.Cyan).
			Bold(true)

	UserStyle = lipgloss.NewStyle().
			Foreground(styles.Cyan).
			Bold(true)

	BotStyle = lipgloss.NewStyle().
			Foreground(styles.Purple).
			Bold(true)
)

// noticeStyle picks the style and tag for a notice kind.
func noticeStyle(kind conv.NoticeKind) (lipgloss.Style, string) {
	switch kind {
	case conv.NoticeSuccess:
		return SuccessStyle, "[OK]"
	case conv.NoticeWarning:
		return WarningStyle, "[!]"
	case conv.NoticeError:
		return ErrorStyle, "[X]"
	default:
		return DimStyle, "[i]"
	}
}
