// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"strconv"
	"strings"
	"time"

	"github.com/jeranaias/catty-tui/internal/model"
	"github.com/jeranaias/catty-tui/internal/util"
)

// Column widths for FormatSessionList.
const (
	listIDWidth    = 8
	listTitleWidth = 34
	listDateWidth  = 13
)

// =============================================================================
// SESSION LIST FORMATTING
// =============================================================================

// FormatSessionList formats sessions as a table for the terminal: short ID,
// title, relative date and message count. The active session is starred.
func FormatSessionList(sessions []*model.ChatSession, activeID string, now time.Time) string {
	if len(sessions) == 0 {
		return "No sessions found."
	}

	var sb strings.Builder
	sb.WriteString("  " + util.PadRight("ID", listIDWidth) + " " +
		util.PadRight("Title", listTitleWidth) + " " +
		util.PadRight("Updated", listDateWidth) + " Messages\n")

	for _, s := range sessions {
		marker := "  "
		if s.ID == activeID {
			marker = "* "
		}
		sb.WriteString(marker +
			util.PadRight(ShortID(s.ID), listIDWidth) + " " +
			util.PadRight(util.TruncateWidth(util.SingleLine(s.Title), listTitleWidth), listTitleWidth) + " " +
			util.PadRight(model.FormatRelativeDate(s.UpdatedAt, now), listDateWidth) + " " +
			strconv.Itoa(s.MessageCount()) + "\n")
	}
	return sb.String()
}

// ShortID returns the prefix of a session ID shown in lists. Resolve accepts it.
func ShortID(id string) string {
	if len(id) <= listIDWidth {
		return id
	}
	return id[:listIDWidth]
}
