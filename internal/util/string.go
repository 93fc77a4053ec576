// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by the catty packages.
package util

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// EllipsisMarker is appended to text that was cut short.
const EllipsisMarker = "..."

// Ellipsize keeps the first maxRunes runes of s and appends EllipsisMarker
// when anything was dropped. Unlike TruncateWidth the marker does not count
// against the limit: a 31-rune string becomes 30 runes plus "...".
func Ellipsize(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes]) + EllipsisMarker
}

// TruncateWidth truncates s to at most maxWidth terminal columns, marker
// included. Double-width characters (CJK) count as two columns.
func TruncateWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= len(EllipsisMarker) {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, EllipsisMarker)
}

// PadRight pads s with spaces to width terminal columns.
func PadRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}

// SingleLine collapses line breaks so text fits one table row.
func SingleLine(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	return strings.ReplaceAll(s, "\n", " ")
}
