// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes a chat session to a file.
//
// # Key Types
//
//   - Exporter: Format-specific converter
//   - Options: Output directory, metadata and theme settings
//
// # Supported Formats
//
//   - html: Standalone page, assistant text rendered by package render
//   - md: Markdown transcript
//   - json: The persisted session schema
//
// # Usage
//
//	exporter, err := export.ForFormat("html", opts)
//	if err != nil {
//	    return err
//	}
//	path, err := export.ExportToFile(session, exporter, opts)
package export
