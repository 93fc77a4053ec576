// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the catty command line.
//
// Running catty without a subcommand opens the full-screen chat. The
// subcommands cover the same operations for scripts and plain terminals.
//
// # Commands
//
//   - chat: line-editing chat with slash commands
//   - ask: one question, one answer
//   - sessions: list, show, new and delete stored chats
//   - export: write a chat as html, md or json
//   - login, logout, whoami: manage the stored sign-in
//   - mode: show or set the starting mode
//   - topics: list the suggested topics
//   - render: show the HTML for assistant Markdown
//   - config: show, init and get configuration values
//
// # Global Flags
//
//	--config PATH   load configuration from PATH
//	--ephemeral     keep chats in memory only
//	--verbose       log to stderr
package cli
