// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render converts assistant replies from Markdown to styled HTML.
//
// The renderer is a fixed, ordered list of rewriting stages. Each stage is a
// pure string-to-string function over the output of the previous one:
//
//	normalize -> fences -> inline-code -> tables -> headers ->
//	lists -> emphasis -> links -> breaks
//
// Order matters. Code is replaced by placeholders as soon as it is found so
// later stages cannot touch it, tables are emitted on a single line so the
// final newline-to-<br> stage cannot split them, and bold is matched before
// italic so "**x**" is never half consumed.
//
// The output uses Tailwind utility classes, matching the web client that
// displays the same replies.
//
// # Usage
//
//	html := render.Render(reply)
//
// Render is deterministic and performs no I/O. Whitespace-only input
// renders to the empty string.
package render
