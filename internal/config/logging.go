// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	slogmulti "github.com/samber/slog-multi"
)

// ParseLevel parses debug, info, warn or error (case-insensitive).
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid level '%s', must be one of: debug, info, warn, error", s)
	}
}

// SetupLogger creates a dual-output logger: text to console, JSON to the
// configured log file. The TUI passes io.Discard as console so log lines do
// not tear the screen. The returned cleanup closes the file.
func (c *Config) SetupLogger(console io.Writer) (*slog.Logger, func() error) {
	level, err := ParseLevel(c.Logging.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	consoleHandler := slog.NewTextHandler(console, &slog.HandlerOptions{Level: level})
	noop := func() error { return nil }

	path, err := c.LogFile()
	if err != nil {
		return slog.New(consoleHandler), noop
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return slog.New(consoleHandler), noop
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		logger := slog.New(consoleHandler)
		logger.Warn("failed to open log file, using console only", "error", err, "file", path)
		return logger, noop
	}

	return SetupLoggerWithWriters(console, file, level), file.Close
}

// SetupLoggerWithWriters creates a logger with custom writers.
func SetupLoggerWithWriters(console, file io.Writer, level slog.Level) *slog.Logger {
	consoleHandler := slog.NewTextHandler(console, &slog.HandlerOptions{Level: level})
	fileHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level})
	return slog.New(slogmulti.Fanout(consoleHandler, fileHandler))
}
