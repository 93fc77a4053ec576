// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeranaias/catty-tui/internal/config"
	"github.com/jeranaias/catty-tui/internal/ui/chat"
)

// drainTimeout bounds how long exit waits for history posts.
const drainTimeout = 5 * time.Second

func runTUI(cmd *cobra.Command, args []string) error {
	if !IsTTY() || !IsStdoutTTY() {
		return errors.New("the full-screen chat needs a terminal; use 'catty chat' or 'catty ask'")
	}

	a, err := openApp(io.Discard)
	if err != nil {
		return err
	}
	defer a.Close()

	notices := chat.NewNoticeQueue()
	ctrl, err := a.controller(notices)
	if err != nil {
		return err
	}

	exportDir, err := config.ConfigDir()
	if err != nil {
		exportDir = "."
	} else {
		exportDir = filepath.Join(exportDir, "exports")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := chat.Run(ctx, chat.Options{
		Controller:       ctrl,
		Notices:          notices,
		Topics:           a.topics(),
		GlamourStyle:     GlamourStyle(a.cfg.UI.GlamourStyle),
		WordWrap:         a.cfg.UI.WordWrap,
		ShowResponseTime: a.cfg.UI.ShowResponseTime,
		ExportDir:        exportDir,
	})

	drainCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	if err := ctrl.Drain(drainCtx); err != nil {
		a.logger.Warn("history posts still pending at exit", "error", err)
	}
	return runErr
}
