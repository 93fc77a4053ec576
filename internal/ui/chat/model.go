// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	conv "github.com/jeranaias/catty-tui/internal/chat"
	"github.com/jeranaias/catty-tui/internal/storage"
	"github.com/jeranaias/catty-tui/internal/ui/components"
	"github.com/jeranaias/catty-tui/internal/ui/styles"
)

// Options configures the chat view.
type Options struct {
	Controller *conv.Controller

	// Notices must be the notifier the controller was built with.
	Notices *NoticeQueue

	// Topics lists suggested topics. Nil hides them.
	Topics TopicSource

	Theme *styles.Theme

	// GlamourStyle is a glamour standard style name (dark, light, notty).
	GlamourStyle string
	WordWrap     int

	ShowResponseTime bool

	// ExportDir receives ctrl+e exports. Default: current directory.
	ExportDir string

	// Clipboard writes copied answers. Default: the system clipboard.
	Clipboard func(string) error

	Now func() time.Time
}

// Model is the Bubble Tea model for the chat view.
type Model struct {
	ctrl    *conv.Controller
	store   *storage.SessionStore
	notices *NoticeQueue
	source  TopicSource
	theme   *styles.Theme
	keys    KeyMap

	clipboard func(string) error
	now       func() time.Time

	// Dimensions
	width  int
	height int

	// UI components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	toasts   *components.ToastManager

	// Rendering
	renderer         *glamour.TermRenderer
	glamourStyle     string
	wordWrap         int
	showResponseTime bool
	rendered         map[string]string // bot message ID -> glamour output

	// Suggested topics, shown for empty sessions
	topics      []string
	topicCursor int

	// Session panel
	panelOpen   bool
	panelCursor int

	showHelp     bool
	spinning     bool
	toastTicking bool
	exportDir    string
}

// New creates the chat view.
func New(opts Options) Model {
	if opts.Theme == nil {
		opts.Theme = styles.NewTheme()
	}
	if opts.Notices == nil {
		opts.Notices = NewNoticeQueue()
	}
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.WriteAll
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.GlamourStyle == "" {
		opts.GlamourStyle = "dark"
	}
	if opts.WordWrap <= 0 {
		opts.WordWrap = 80
	}
	if opts.ExportDir == "" {
		opts.ExportDir = "."
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask Catty anything..."
	ti.CharLimit = 4096
	ti.Focus()

	vp := viewport.New(80, 20)

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}

	return Model{
		ctrl:             opts.Controller,
		store:            opts.Controller.Store(),
		notices:          opts.Notices,
		source:           opts.Topics,
		theme:            opts.Theme,
		keys:             DefaultKeyMap(),
		clipboard:        opts.Clipboard,
		now:              opts.Now,
		viewport:         vp,
		input:            ti,
		spinner:          sp,
		toasts:           components.NewToastManager(),
		glamourStyle:     opts.GlamourStyle,
		wordWrap:         opts.WordWrap,
		showResponseTime: opts.ShowResponseTime,
		rendered:         make(map[string]string),
		topicCursor:      -1,
		exportDir:        opts.ExportDir,
	}
}

// Run starts the full-screen chat and blocks until the user quits.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Init starts the cursor blink, the notice listener and the topic load.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.notices.wait()}
	if m.source != nil {
		cmds = append(cmds, loadTopicsCmd(m.source))
	}
	return tea.Batch(cmds...)
}

// =============================================================================
// HELPERS
// =============================================================================

// busy reports whether the active session has a request in flight.
func (m Model) busy() bool {
	return m.ctrl.State(m.store.ActiveID()).Busy()
}

// showTopics reports whether the topic list is on screen.
func (m Model) showTopics() bool {
	active := m.store.Active()
	return len(m.topics) > 0 && active != nil && active.IsEmpty() && m.input.Value() == ""
}

func (m *Model) toast(kind components.ToastKind, title, message string) tea.Cmd {
	m.toasts.Add(components.NewToast(kind, title, message, m.now()))
	if m.toastTicking {
		return nil
	}
	m.toastTicking = true
	return components.ToastTickCmd()
}

// resetRenderer rebuilds the glamour renderer for the current width.
func (m *Model) resetRenderer() {
	wrap := m.wordWrap
	if m.width > 0 && m.width-6 < wrap {
		wrap = m.width - 6
	}
	if wrap < 20 {
		wrap = 20
	}
	m.rendered = make(map[string]string)
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(m.glamourStyle),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		// Answers fall back to raw text
		m.renderer = nil
		return
	}
	m.renderer = r
}
