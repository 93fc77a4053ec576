// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/glamour"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/jeranaias/catty-tui/internal/access"
	conv "github.com/jeranaias/catty-tui/internal/chat"
	"github.com/jeranaias/catty-tui/internal/config"
	"github.com/jeranaias/catty-tui/internal/export"
	"github.com/jeranaias/catty-tui/internal/model"
	"github.com/jeranaias/catty-tui/internal/storage"
	"github.com/jeranaias/catty-tui/internal/topics"
)

// chatHelp is the chat command help, also printed by /help.
const chatHelp = `Chat with Catty one line at a time. Up and down recall earlier input.

Slash commands:
  /new              start a new chat
  /sessions         list chats
  /switch <id>      open a chat by ID prefix or list number
  /delete [id]      delete a chat (default: the current one)
  /mode [name]      show or switch the mode (general, student)
  /topics           list suggested topics
  /topic <n>        put topic n on the next prompt
  /copy             copy the last answer to the clipboard
  /export [format]  export the chat (html, md, json)
  /help             show this help
  /quit             leave`

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat in the terminal with line editing",
	Long:  chatHelp,
	RunE:  runChat,
}

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatInput reads lines with editing and persistent history.
type ChatInput struct {
	line        *liner.State
	historyFile string
}

// NewChatInput creates a line reader. History lives in the config directory.
func NewChatInput() *ChatInput {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	dir, err := config.ConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	in := &ChatInput{line: line, historyFile: filepath.Join(dir, "chat_history")}
	if f, err := os.Open(in.historyFile); err == nil {
		_, _ = in.line.ReadHistory(f)
		f.Close()
	}
	return in
}

// ReadLine prompts for input. A non-empty suggestion is pre-filled.
func (c *ChatInput) ReadLine(prompt, suggestion string) (string, error) {
	var (
		input string
		err   error
	)
	if suggestion != "" {
		input, err = c.line.PromptWithSuggestion(prompt, suggestion, -1)
	} else {
		input, err = c.line.Prompt(prompt)
	}
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// Close saves history with owner-only permissions and restores the terminal.
func (c *ChatInput) Close() {
	if err := config.EnsureConfigDir(); err == nil {
		if f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
			_, _ = c.line.WriteHistory(f)
			f.Close()
		}
	}
	c.line.Close()
}

// =============================================================================
// REPL
// =============================================================================

// repl is the state of one interactive chat.
type repl struct {
	ctrl      *conv.Controller
	store     *storage.SessionStore
	topics    topicLister
	out       io.Writer
	renderer  *glamour.TermRenderer
	clipboard func(string) error
	exportDir string
	now       func() time.Time

	suggested  []string
	suggestion string
}

// topicLister lists suggested topics.
type topicLister interface {
	List(ctx context.Context) ([]topics.Topic, error)
}

func runChat(cmd *cobra.Command, args []string) error {
	a, err := openApp(os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	ctrl, err := a.controller(consoleNotifier{w: out})
	if err != nil {
		return err
	}

	r := &repl{
		ctrl:      ctrl,
		store:     a.store,
		topics:    a.topics(),
		out:       out,
		renderer:  newRenderer(GlamourStyle(a.cfg.UI.GlamourStyle), min(a.cfg.UI.WordWrap, TerminalWidth()-2)),
		clipboard: clipboard.WriteAll,
		exportDir: ".",
		now:       time.Now,
	}

	input := NewChatInput()
	defer input.Close()

	r.printBanner(a)
	for {
		line, err := input.ReadLine(PromptStyle.Render("catty> "), r.suggestion)
		r.suggestion = ""
		if err != nil {
			// ctrl+c, ctrl+d and closed input all end the chat
			fmt.Fprintln(out)
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			keepGoing, err := r.handleSlash(cmd.Context(), line)
			if err != nil {
				fmt.Fprintln(out, ErrorStyle.Render("[Error]")+" "+err.Error())
			}
			if !keepGoing {
				break
			}
			continue
		}
		r.send(cmd.Context(), line)
	}

	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	return ctrl.Drain(ctx)
}

// newRenderer returns a glamour renderer, or nil when the style is unknown.
func newRenderer(style string, wrap int) *glamour.TermRenderer {
	if wrap < 20 {
		wrap = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return nil
	}
	return r
}

func (r *repl) printBanner(a *app) {
	fmt.Fprintln(r.out, TitleStyle.Render("Catty"))
	fmt.Fprintf(r.out, "Signed in as %s, %s mode. Type /help for commands.\n\n",
		a.auth.DisplayName(), r.ctrl.Mode().Label())
}

// send runs one exchange on the active session and prints the answer.
func (r *repl) send(ctx context.Context, text string) {
	fmt.Fprintln(r.out, DimStyle.Render("Catty is typing..."))
	out, err := r.ctrl.Send(ctx, r.store.ActiveID(), text)
	if err != nil {
		if !errors.Is(err, conv.ErrAnswerFailed) {
			fmt.Fprintln(r.out, ErrorStyle.Render("[Error]")+" "+err.Error())
		}
		return
	}
	if out.BotMessage != nil {
		r.printMessage(out.BotMessage)
	}
}

func (r *repl) printMessage(msg *model.Message) {
	if msg.IsUser() {
		fmt.Fprintln(r.out, UserStyle.Render(msg.Sender.DisplayName()+":")+" "+msg.Text)
		return
	}
	fmt.Fprintln(r.out, BotStyle.Render(msg.Sender.DisplayName()+":"))
	fmt.Fprintln(r.out, renderMarkdown(r.renderer, msg.Text))
	if rt := msg.FormatResponseTime(); rt != "" {
		fmt.Fprintln(r.out, DimStyle.Render("Response time: "+rt))
	}
}

func renderMarkdown(renderer *glamour.TermRenderer, text string) string {
	if renderer == nil {
		return text
	}
	out, err := renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.Trim(out, "\n")
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleSlash runs a slash command. It returns false when the chat should end.
func (r *repl) handleSlash(ctx context.Context, line string) (bool, error) {
	fields := strings.Fields(line)
	name := strings.ToLower(fields[0])
	arg := ""
	if len(fields) > 1 {
		arg = strings.Join(fields[1:], " ")
	}

	switch name {
	case "/quit", "/exit", "/q":
		return false, nil

	case "/help", "/?":
		fmt.Fprintln(r.out, chatHelp)

	case "/new":
		// The controller announces the new chat
		_, err := r.ctrl.NewChat()
		return true, err

	case "/sessions", "/ls":
		r.printSessions()

	case "/switch":
		if arg == "" {
			return true, errors.New("usage: /switch <id or number>")
		}
		session, err := r.resolve(arg)
		if err != nil {
			return true, err
		}
		if err := r.store.Select(session.ID); err != nil {
			return true, err
		}
		fmt.Fprintf(r.out, "Switched to %q\n", session.Title)
		for _, msg := range session.Messages {
			r.printMessage(msg)
		}

	case "/delete":
		id := r.store.ActiveID()
		if arg != "" {
			session, err := r.resolve(arg)
			if err != nil {
				return true, err
			}
			id = session.ID
		}
		return true, r.ctrl.DeleteSession(id)

	case "/mode":
		if arg == "" {
			fmt.Fprintf(r.out, "Mode: %s\n", r.ctrl.Mode().Label())
			return true, nil
		}
		mode, err := access.ParseMode(arg)
		if err != nil {
			return true, err
		}
		// Denials arrive as a notice
		r.ctrl.SwitchMode(mode)

	case "/topics":
		list, err := r.topics.List(ctx)
		if err != nil {
			return true, fmt.Errorf("failed to load suggested topics: %w", err)
		}
		r.suggested = topics.Texts(list)
		if len(r.suggested) == 0 {
			fmt.Fprintln(r.out, "No suggested topics.")
		}
		for i, t := range r.suggested {
			fmt.Fprintf(r.out, "%2d. %s\n", i+1, t)
		}

	case "/topic":
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 || n > len(r.suggested) {
			return true, errors.New("usage: /topic <n> (run /topics first)")
		}
		r.suggestion = r.suggested[n-1]

	case "/copy":
		active := r.store.Active()
		last := active.LastBotMessage()
		if last == nil {
			return true, errors.New("no answer to copy yet")
		}
		if err := r.clipboard(last.Text); err != nil {
			return true, fmt.Errorf("copy failed: %w", err)
		}
		fmt.Fprintln(r.out, SuccessStyle.Render("[OK]")+" Answer copied")

	case "/export":
		format := arg
		if format == "" {
			format = "md"
		}
		opts := export.DefaultOptions()
		opts.OutputDir = r.exportDir
		opts.Now = r.now
		exporter, err := export.ForFormat(format, opts)
		if err != nil {
			return true, err
		}
		path, err := export.ExportToFile(r.store.Active(), exporter, opts)
		if err != nil {
			return true, err
		}
		fmt.Fprintln(r.out, SuccessStyle.Render("[OK]")+" Exported to "+path)

	default:
		return true, fmt.Errorf("unknown command %s (try /help)", name)
	}
	return true, nil
}

// maxListNumber is the longest ref treated as a list number; longer refs are
// ID prefixes, which may be all digits.
const maxListNumber = 3

// resolve accepts a list number or an ID prefix.
func (r *repl) resolve(ref string) (*model.ChatSession, error) {
	if n, err := strconv.Atoi(ref); err == nil && len(ref) <= maxListNumber {
		list := r.store.List()
		if n < 1 || n > len(list) {
			return nil, fmt.Errorf("no chat number %d", n)
		}
		return list[n-1], nil
	}
	return r.store.Resolve(ref)
}

func (r *repl) printSessions() {
	activeID := r.store.ActiveID()
	now := r.now()
	for i, s := range r.store.List() {
		marker := " "
		if s.ID == activeID {
			marker = "*"
		}
		fmt.Fprintf(r.out, "%s %2d. %-8s %s %s\n", marker, i+1, storage.ShortID(s.ID), s.Title,
			DimStyle.Render("("+model.FormatRelativeDate(s.UpdatedAt, now)+", "+strconv.Itoa(s.MessageCount())+" messages)"))
	}
}
