// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/jeranaias/catty-tui/internal/access"
	"github.com/jeranaias/catty-tui/internal/answer"
	"github.com/jeranaias/catty-tui/internal/auth"
	conv "github.com/jeranaias/catty-tui/internal/chat"
	"github.com/jeranaias/catty-tui/internal/config"
	"github.com/jeranaias/catty-tui/internal/history"
	"github.com/jeranaias/catty-tui/internal/httpclient"
	"github.com/jeranaias/catty-tui/internal/storage"
	"github.com/jeranaias/catty-tui/internal/topics"
)

// =============================================================================
// APPLICATION WIRING
// =============================================================================

// app holds what every command needs: configuration, logging, storage and
// the sign-in snapshot. It is built once per command.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	closeLog func() error
	kv       storage.KV
	store    *storage.SessionStore
	auth     auth.Snapshot
	http     *http.Client
}

// loadConfig honors --config.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromPath(configPath)
	}
	return config.Load()
}

// openApp loads configuration and opens storage. console receives log lines
// when --verbose is set; the full-screen chat passes io.Discard.
func openApp(console io.Writer) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if !verbose {
		console = io.Discard
	}
	logger, closeLog := cfg.SetupLogger(console)

	kv, err := openKV(cfg)
	if err != nil {
		_ = closeLog()
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		logger:   logger,
		closeLog: closeLog,
		kv:       kv,
		store:    storage.Open(kv, storage.Options{Logger: logger}),
		auth:     auth.Load(kv, logger),
		http:     httpclient.New(httpclient.Config{Logger: logger}),
	}
	return a, nil
}

func openKV(cfg *config.Config) (storage.KV, error) {
	if ephemeral {
		return storage.NewMemoryKV(), nil
	}
	dir, err := cfg.StateDir()
	if err != nil {
		return nil, err
	}
	kv, err := storage.OpenKV(cfg.Storage.Backend, dir, cfg.Storage.SQLiteFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	return kv, nil
}

// Close releases storage and the log file.
func (a *app) Close() error {
	return errors.Join(a.kv.Close(), a.closeLog())
}

// startMode is the configured starting mode, or empty for the default.
func (a *app) startMode() access.Mode {
	if a.cfg.UI.DefaultMode == "" {
		return ""
	}
	mode, err := access.ParseMode(a.cfg.UI.DefaultMode)
	if err != nil {
		return ""
	}
	return mode
}

// controller builds the conversation controller with the configured services.
func (a *app) controller(notifier conv.Notifier) (*conv.Controller, error) {
	svc := a.cfg.Services
	return conv.New(conv.Options{
		Store:          a.store,
		Answers:        answer.NewClient(a.http, svc.AnswerURL, svc.AnswerPath),
		History:        history.NewClient(a.http, svc.ContentURL, svc.HistoryPath),
		Auth:           a.auth,
		Mode:           a.startMode(),
		Notifier:       notifier,
		Logger:         a.logger,
		AnswerTimeout:  svc.AnswerTimeout(),
		HistoryTimeout: svc.HistoryTimeout(),
	})
}

func (a *app) topics() *topics.Client {
	return topics.NewClient(a.http, a.cfg.Services.ContentURL, a.cfg.Services.TopicsPath)
}

func (a *app) authClient() *auth.Client {
	svc := a.cfg.Services
	return auth.NewClient(a.http, svc.ContentURL, svc.LoginPath, svc.MePath)
}

// =============================================================================
// CONSOLE NOTICES
// =============================================================================

// consoleNotifier prints notices as single lines.
type consoleNotifier struct {
	w io.Writer
}

func (n consoleNotifier) Notify(notice conv.Notice) {
	fmt.Fprintln(n.w, formatNotice(notice))
}

func formatNotice(notice conv.Notice) string {
	style, tag := noticeStyle(notice.Kind)
	line := style.Render(tag) + " " + notice.Title
	if notice.Body != "" {
		line += ": " + notice.Body
	}
	return line
}

// stderrNotifier is used by commands whose stdout may be piped.
func stderrNotifier() conv.Notifier {
	return consoleNotifier{w: os.Stderr}
}
