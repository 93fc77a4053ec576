// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"

	"github.com/jeranaias/catty-tui/internal/model"
	"github.com/jeranaias/catty-tui/internal/storage"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// JSONExporter writes the session in the persisted schema, so an export can
// be read back with storage.DecodeSessions after wrapping it in an array.
type JSONExporter struct {
	options *Options
}

// NewJSONExporter creates a new JSON exporter. Options do not filter JSON
// output.
func NewJSONExporter(opts *Options) *JSONExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &JSONExporter{options: opts}
}

// Export converts a session to JSON.
func (e *JSONExporter) Export(session *model.ChatSession) ([]byte, error) {
	if err := checkSession(session); err != nil {
		return nil, err
	}
	return json.MarshalIndent(storage.ToStored(session), "", "  ")
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}

// MimeType returns the MIME type for JSON.
func (e *JSONExporter) MimeType() string {
	return "application/json"
}
