// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jeranaias/catty-tui/internal/access"
	"github.com/jeranaias/catty-tui/internal/answer"
	"github.com/jeranaias/catty-tui/internal/auth"
	"github.com/jeranaias/catty-tui/internal/history"
	"github.com/jeranaias/catty-tui/internal/model"
	"github.com/jeranaias/catty-tui/internal/storage"
)

// DefaultHistoryTimeout bounds one history post.
const DefaultHistoryTimeout = 30 * time.Second

var (
	// ErrBusy is returned when the session already has a request in flight.
	ErrBusy = errors.New("a request is already in flight for this session")

	// ErrAnswerFailed wraps answer-service failures returned by Send.
	ErrAnswerFailed = errors.New("the assistant could not answer")
)

// =============================================================================
// STATES
// =============================================================================

// State is where a session is in the send lifecycle.
type State int

const (
	StateIdle State = iota
	StateSending
	StateAwaitingAnswer
	StateRendering
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	case StateAwaitingAnswer:
		return "awaiting-answer"
	case StateRendering:
		return "rendering"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Busy reports whether a request is in flight.
func (s State) Busy() bool {
	return s != StateIdle
}

// Status is the result of a Send.
type Status int

const (
	StatusSkipped Status = iota
	StatusAnswered
	StatusFailed
)

// Outcome describes a completed Send.
type Outcome struct {
	Status Status

	// UserMessage is set unless the send was skipped.
	UserMessage *model.Message

	// BotMessage is set when the assistant answered.
	BotMessage *model.Message

	// Forward tracks the history post; nil when nothing was forwarded.
	Forward *ForwardTask
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Options configures a Controller.
type Options struct {
	Store   *storage.SessionStore
	Answers answer.Service

	// History records exchanges for signed-in users. Nil disables it.
	History history.Recorder

	// Auth is the snapshot loaded at startup.
	Auth auth.Snapshot

	// Mode is the starting mode. Default: access.DefaultMode(Auth.State()).
	Mode access.Mode

	Notifier Notifier
	Logger   *slog.Logger

	// Now is the clock used for response times. Default: time.Now.
	Now func() time.Time

	// AnswerTimeout bounds the answer call. Zero means no timeout.
	AnswerTimeout time.Duration

	// HistoryTimeout bounds each history post. Default: DefaultHistoryTimeout.
	HistoryTimeout time.Duration
}

// Controller orchestrates sends for all sessions of a SessionStore.
type Controller struct {
	store    *storage.SessionStore
	answers  answer.Service
	history  history.Recorder
	auth     auth.Snapshot
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time

	answerTimeout  time.Duration
	historyTimeout time.Duration

	mu        sync.Mutex
	mode      access.Mode
	states    map[string]State
	listeners []func(sessionID string, state State)

	forwards sync.WaitGroup
}

// New creates a controller.
func New(opts Options) (*Controller, error) {
	if opts.Store == nil {
		return nil, errors.New("chat: session store is required")
	}
	if opts.Answers == nil {
		return nil, errors.New("chat: answer service is required")
	}
	if opts.Notifier == nil {
		opts.Notifier = discardNotifier{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.HistoryTimeout <= 0 {
		opts.HistoryTimeout = DefaultHistoryTimeout
	}

	mode := opts.Mode
	if mode == "" {
		mode = access.DefaultMode(opts.Auth.State())
	}
	if v := access.Decide(opts.Auth.State(), mode); !v.Allowed {
		opts.Logger.Info("starting mode not allowed, using default", "mode", mode, "reason", v.Reason)
		mode = access.DefaultMode(opts.Auth.State())
	}

	return &Controller{
		store:          opts.Store,
		answers:        opts.Answers,
		history:        opts.History,
		auth:           opts.Auth,
		notifier:       opts.Notifier,
		logger:         opts.Logger,
		now:            opts.Now,
		answerTimeout:  opts.AnswerTimeout,
		historyTimeout: opts.HistoryTimeout,
		mode:           mode,
		states:         make(map[string]State),
	}, nil
}

// Store returns the session store.
func (c *Controller) Store() *storage.SessionStore {
	return c.store
}

// Auth returns the auth snapshot.
func (c *Controller) Auth() auth.Snapshot {
	return c.auth
}

// =============================================================================
// SEND
// =============================================================================

// Send runs one exchange on sessionID. See the package documentation for
// the failure rules.
func (c *Controller) Send(ctx context.Context, sessionID, text string) (Outcome, error) {
	if strings.TrimSpace(text) == "" {
		return Outcome{Status: StatusSkipped}, nil
	}
	if err := c.begin(sessionID); err != nil {
		return Outcome{Status: StatusSkipped}, err
	}

	userMsg := model.NewUserMessage(text)
	userMsg.Timestamp = c.now()
	if err := c.store.AppendMessage(sessionID, userMsg); err != nil {
		if !errors.Is(err, storage.ErrPersist) {
			c.setState(sessionID, StateIdle)
			return Outcome{Status: StatusSkipped}, err
		}
		c.warnNotSaved(err)
	}
	out := Outcome{Status: StatusFailed, UserMessage: userMsg}

	mode := c.Mode()
	c.setState(sessionID, StateAwaitingAnswer)
	resp, elapsed, err := c.ask(ctx, answer.Request{Message: text, Mode: mode})
	if err != nil {
		c.setState(sessionID, StateFailed)
		c.logger.Error("answer request failed", "session", sessionID, "mode", mode, "elapsed", elapsed, "error", err)
		c.notifier.Notify(Notice{Kind: NoticeError, Title: titleAnswerFailed, Body: bodyAnswerFailed})
		c.setState(sessionID, StateIdle)
		return out, fmt.Errorf("%w: %w", ErrAnswerFailed, err)
	}

	c.setState(sessionID, StateRendering)
	botMsg := model.NewBotMessage(resp.Answer, elapsed)
	botMsg.Timestamp = c.now()
	if err := c.store.AppendMessage(sessionID, botMsg); err != nil {
		if !errors.Is(err, storage.ErrPersist) {
			// Session deleted while the answer was in flight
			c.logger.Warn("dropping answer for missing session", "session", sessionID, "error", err)
			c.setState(sessionID, StateIdle)
			return out, err
		}
		c.warnNotSaved(err)
	} else {
		c.notifier.Notify(Notice{Kind: NoticeStatus, Title: titleSaved, Body: bodySaved})
	}

	out.Status = StatusAnswered
	out.BotMessage = botMsg
	c.logger.Info("answer received", "session", sessionID, "mode", mode, "response_time", elapsed)

	if c.history != nil && c.auth.Authenticated() {
		out.Forward = c.forward(ctx, history.Exchange{
			Message:      userMsg.Text,
			Response:     botMsg.Text,
			Mode:         mode,
			SessionID:    sessionID,
			ResponseTime: elapsed,
			Timestamp:    botMsg.Timestamp,
		})
	}

	c.setState(sessionID, StateIdle)
	return out, nil
}

// begin moves an idle, existing session to Sending.
func (c *Controller) begin(sessionID string) error {
	if _, err := c.store.Get(sessionID); err != nil {
		return err
	}

	c.mu.Lock()
	if c.states[sessionID].Busy() {
		c.mu.Unlock()
		return ErrBusy
	}
	c.states[sessionID] = StateSending
	listeners := c.listeners
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(sessionID, StateSending)
	}
	return nil
}

// ask calls the answer service exactly once and measures the round trip.
func (c *Controller) ask(ctx context.Context, req answer.Request) (answer.Response, time.Duration, error) {
	if c.answerTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.answerTimeout)
		defer cancel()
	}
	start := c.now()
	resp, err := c.answers.Ask(ctx, req)
	elapsed := c.now().Sub(start)
	if elapsed < 0 {
		elapsed = 0
	}
	return resp, elapsed, err
}

func (c *Controller) warnNotSaved(err error) {
	c.notifier.Notify(Notice{Kind: NoticeWarning, Title: titleNotSaved, Body: err.Error()})
}

// =============================================================================
// STATE TRACKING
// =============================================================================

// State returns the lifecycle state of a session.
func (c *Controller) State(sessionID string) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.states[sessionID]
}

// OnStateChange registers fn to be called on every state transition. fn runs
// on the goroutine that called Send and must not call Send itself.
func (c *Controller) OnStateChange(fn func(sessionID string, state State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

func (c *Controller) setState(sessionID string, state State) {
	c.mu.Lock()
	if state == StateIdle {
		delete(c.states, sessionID)
	} else {
		c.states[sessionID] = state
	}
	listeners := c.listeners
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(sessionID, state)
	}
}

// =============================================================================
// MODE
// =============================================================================

// Mode returns the current mode.
func (c *Controller) Mode() access.Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// SwitchMode changes the mode if the access gate allows it. The verdict is
// returned either way and surfaced as a notice.
func (c *Controller) SwitchMode(requested access.Mode) access.Verdict {
	v := access.Decide(c.auth.State(), requested)
	if !v.Allowed {
		c.logger.Info("mode switch denied", "requested", requested, "reason", v.Reason)
		c.notifier.Notify(Notice{Kind: NoticeWarning, Title: titleAccessDenied, Body: v.Reason})
		return v
	}

	c.mu.Lock()
	c.mode = requested
	c.mu.Unlock()

	c.logger.Info("mode changed", "mode", requested)
	c.notifier.Notify(Notice{Kind: NoticeSuccess, Title: titleModeChanged, Body: v.Reason})
	return v
}

// =============================================================================
// SESSION COMMANDS
// =============================================================================

// NewChat creates and activates a session and announces it.
func (c *Controller) NewChat() (*model.ChatSession, error) {
	session, err := c.store.NewChat()
	if err != nil {
		c.warnNotSaved(err)
	}
	c.notifier.Notify(Notice{Kind: NoticeSuccess, Title: titleNewChat, Body: bodyNewChat})
	return session, err
}

// DeleteSession deletes a session and announces it.
func (c *Controller) DeleteSession(sessionID string) error {
	err := c.store.DeleteSession(sessionID)
	if errors.Is(err, storage.ErrSessionNotFound) {
		return err
	}
	if err != nil {
		c.warnNotSaved(err)
	}
	c.notifier.Notify(Notice{Kind: NoticeWarning, Title: titleChatDeleted, Body: bodyChatDeleted})
	return err
}
