// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/catty-tui/internal/access"
)

var (
	askSession string
	askNewChat bool
	askMode    string
	askRaw     bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask one question and print the answer",
	Long: `Ask Catty one question. The exchange is stored like any other chat.

The question is read from stdin when no arguments are given.

Examples:
  catty ask "When does registration open?"
  echo "What is KRS?" | catty ask --raw
  catty ask --new --mode student "Show my schedule"`,
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askSession, "session", "s", "", "chat to continue (ID prefix)")
	askCmd.Flags().BoolVarP(&askNewChat, "new", "n", false, "start a new chat")
	askCmd.Flags().StringVarP(&askMode, "mode", "m", "", "mode for this question (general, student)")
	askCmd.Flags().BoolVar(&askRaw, "raw", false, "print the answer without formatting")
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")
	if question == "" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read question: %w", err)
		}
		question = string(data)
	}
	if strings.TrimSpace(question) == "" {
		return errors.New("no question given")
	}

	a, err := openApp(os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	ctrl, err := a.controller(stderrNotifier())
	if err != nil {
		return err
	}

	if askMode != "" {
		mode, err := access.ParseMode(askMode)
		if err != nil {
			return err
		}
		if v := ctrl.SwitchMode(mode); !v.Allowed {
			return errors.New(v.Reason)
		}
	}

	sessionID := a.store.ActiveID()
	switch {
	case askNewChat:
		session, err := a.store.NewChat()
		if err != nil {
			return err
		}
		sessionID = session.ID
	case askSession != "":
		session, err := a.store.Resolve(askSession)
		if err != nil {
			return err
		}
		sessionID = session.ID
	}

	out, sendErr := ctrl.Send(cmd.Context(), sessionID, question)

	// Give the history post a chance to finish before exit
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	drainErr := ctrl.Drain(ctx)

	if sendErr != nil {
		return sendErr
	}
	if out.BotMessage == nil {
		return nil
	}

	w := cmd.OutOrStdout()
	if askRaw || !IsStdoutTTY() {
		fmt.Fprintln(w, out.BotMessage.Text)
	} else {
		r := newRenderer(GlamourStyle(a.cfg.UI.GlamourStyle), min(a.cfg.UI.WordWrap, TerminalWidth()-2))
		fmt.Fprintln(w, renderMarkdown(r, out.BotMessage.Text))
		if a.cfg.UI.ShowResponseTime {
			fmt.Fprintln(w, DimStyle.Render("Response time: "+out.BotMessage.FormatResponseTime()))
		}
	}
	return drainErr
}
