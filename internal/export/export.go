// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/jeranaias/catty-tui/internal/model"
	"github.com/jeranaias/catty-tui/internal/util"
)

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter converts a session to one output format.
type Exporter interface {
	// Export converts a session to the target format and returns the content.
	Export(session *model.ChatSession) ([]byte, error)

	// FileExtension returns the file extension, e.g. ".md".
	FileExtension() string

	// MimeType returns the MIME type of the output.
	MimeType() string
}

var (
	// ErrNilSession is returned when there is nothing to export.
	ErrNilSession = errors.New("session is nil")

	// ErrEmptySession is returned for sessions without messages.
	ErrEmptySession = errors.New("session has no messages")
)

// Formats lists the accepted format names.
var Formats = []string{"html", "md", "json"}

// =============================================================================
// EXPORT OPTIONS
// =============================================================================

// Options configures export behavior.
type Options struct {
	// OutputDir is the directory where files will be saved.
	OutputDir string

	// OpenAfterExport opens the file in the default application.
	OpenAfterExport bool

	// IncludeMetadata includes the session header (dates, counts).
	IncludeMetadata bool

	// IncludeTimestamps includes per-message timestamps.
	IncludeTimestamps bool

	// Theme for HTML export ("light" or "dark").
	Theme string

	// Now stamps file names and footers. Default: time.Now.
	Now func() time.Time
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		OutputDir:         ".",
		IncludeMetadata:   true,
		IncludeTimestamps: true,
		Theme:             "light",
		Now:               time.Now,
	}
}

func (o *Options) now() time.Time {
	if o.Now == nil {
		return time.Now()
	}
	return o.Now()
}

// =============================================================================
// EXPORT FUNCTIONS
// =============================================================================

// ForFormat returns the exporter for a format name (html, md, json).
func ForFormat(format string, opts *Options) (Exporter, error) {
	switch strings.ToLower(format) {
	case "html", "htm":
		return NewHTMLExporter(opts), nil
	case "md", "markdown":
		return NewMarkdownExporter(opts), nil
	case "json":
		return NewJSONExporter(opts), nil
	default:
		return nil, fmt.Errorf("unsupported export format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
}

// FileName returns chat_<title>_<timestamp><ext> for a session.
func FileName(session *model.ChatSession, ext string, at time.Time) string {
	return fmt.Sprintf("chat_%s_%s%s", sanitizeFilename(session.Title), at.Format("20060102_150405"), ext)
}

// ExportToFile exports a session with exporter and returns the written path.
func ExportToFile(session *model.ChatSession, exporter Exporter, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if session == nil {
		return "", ErrNilSession
	}

	content, err := exporter.Export(session)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	dir := opts.OutputDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	outputPath := filepath.Join(dir, FileName(session, exporter.FileExtension(), opts.now()))
	if err := util.AtomicWriteFile(outputPath, content, 0644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}

	if opts.OpenAfterExport {
		// The file exists either way
		_ = openFile(outputPath)
	}
	return outputPath, nil
}

func checkSession(session *model.ChatSession) error {
	if session == nil {
		return ErrNilSession
	}
	if len(session.Messages) == 0 {
		return ErrEmptySession
	}
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

var filenameReplacer = map[rune]rune{
	'/': '-', '\\': '-', ':': '-', '*': '-', '?': '-', '"': '-',
	'<': '-', '>': '-', '|': '-', ' ': '_', '\t': '_', '\n': '_', '\r': '_',
}

// sanitizeFilename replaces characters that are invalid in file names.
func sanitizeFilename(s string) string {
	s = util.Ellipsize(strings.TrimSpace(s), 50)
	s = strings.TrimRight(s, ".")

	var b strings.Builder
	for _, r := range s {
		if repl, ok := filenameReplacer[r]; ok {
			b.WriteRune(repl)
		} else if r < 32 || r == 127 {
			b.WriteRune('-')
		} else {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "chat"
	}
	return b.String()
}

// openFile opens a file in the default application for the OS.
func openFile(path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", `""`, path)
	case "darwin":
		cmd = exec.Command("open", path)
	case "linux":
		cmd = exec.Command("xdg-open", path)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	return cmd.Start()
}

func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

func formatShortTimestamp(t time.Time) string {
	return t.Format("15:04:05")
}
