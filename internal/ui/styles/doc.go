// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling for the catty TUI.
// All colors use Lip Gloss AdaptiveColor for automatic light/dark detection.
//
// # Key Types
//
//   - Theme: Styles for the header, message bubbles, topics, session panel
//     and status bar
//
// # Usage
//
//	theme := styles.NewTheme()
//	header := theme.HeaderTitle.Render("Catty")
//	badge := theme.ModeBadge(access.ModeStudent)
package styles
