// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/catty-tui/internal/access"
	"github.com/jeranaias/catty-tui/internal/answer"
	conv "github.com/jeranaias/catty-tui/internal/chat"
	"github.com/jeranaias/catty-tui/internal/storage"
	"github.com/jeranaias/catty-tui/internal/topics"
)

// =============================================================================
// COMMAND HARNESS
// =============================================================================

// isolate points the config directory at a temp dir and resets global flags.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("CATTY_HOME", home)
	t.Setenv("NO_COLOR", "1")

	configPath, ephemeral, verbose = "", false, false
	configForce, renderTrace = false, false
	exportFormat, exportOutput, exportOpen = "html", ".", false
	askSession, askNewChat, askMode, askRaw = "", false, "", false
	t.Cleanup(func() { rootCmd.SetIn(nil) })
	return home
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetIn(strings.NewReader(stdin))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestRenderCommand(t *testing.T) {
	isolate(t)

	out, err := run(t, "**hello**", "render")
	require.NoError(t, err)
	assert.Contains(t, out, "<strong>hello</strong>")
}

func TestRenderCommandTrace(t *testing.T) {
	isolate(t)

	out, err := run(t, "**hello**", "render", "--trace")
	require.NoError(t, err)
	assert.Contains(t, out, "== emphasis")
}

func TestConfigGet(t *testing.T) {
	isolate(t)

	out, err := run(t, "", "config", "get", "services.answer_url")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5000\n", out)

	_, err = run(t, "", "config", "get", "services.nope")
	assert.Error(t, err)
}

func TestConfigGetListsKeys(t *testing.T) {
	isolate(t)

	out, err := run(t, "", "config", "get")
	require.NoError(t, err)
	assert.Contains(t, out, "storage.backend\n")
	assert.Contains(t, out, "ui.word_wrap\n")
}

func TestConfigInit(t *testing.T) {
	home := isolate(t)

	_, err := run(t, "", "config", "init")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(home, "config.toml"))

	_, err = run(t, "", "config", "init")
	assert.ErrorContains(t, err, "already exists")

	_, err = run(t, "", "config", "init", "--force")
	assert.NoError(t, err)
}

func TestConfigShowHonorsEnv(t *testing.T) {
	isolate(t)
	t.Setenv("CATTY_ANSWER_URL", "http://answers.test:9000")

	out, err := run(t, "", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "http://answers.test:9000")
}

func TestSessionsCommands(t *testing.T) {
	isolate(t)

	out, err := run(t, "", "sessions", "new")
	require.NoError(t, err)
	id := strings.TrimSpace(out)
	require.NotEmpty(t, id)

	out, err = run(t, "", "sessions", "list")
	require.NoError(t, err)
	assert.Contains(t, out, storage.ShortID(id))
	// default session plus the new one, after the header
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 3)

	_, err = run(t, "", "sessions", "delete", storage.ShortID(id))
	require.NoError(t, err)

	out, err = run(t, "", "sessions", "list")
	require.NoError(t, err)
	assert.NotContains(t, out, storage.ShortID(id))
}

func TestSessionsShowUnknown(t *testing.T) {
	isolate(t)

	_, err := run(t, "", "sessions", "show", "does-not-exist")
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)
}

func TestExportCommand(t *testing.T) {
	isolate(t)
	dir := t.TempDir()

	// An empty chat cannot be exported
	_, err := run(t, "", "export", "--format", "md", "-o", dir)
	assert.Error(t, err)
}

func TestWhoamiAnonymous(t *testing.T) {
	isolate(t)

	out, err := run(t, "", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "not signed in")
	assert.Contains(t, out, "General")
	assert.NotContains(t, out, "Student")
}

func TestModeCommand(t *testing.T) {
	isolate(t)

	out, err := run(t, "", "mode")
	require.NoError(t, err)
	assert.Equal(t, "General\n", out)

	_, err = run(t, "", "mode", "student")
	assert.ErrorContains(t, err, access.ReasonStudentNeedsLogin)

	_, err = run(t, "", "mode", "bogus")
	assert.Error(t, err)
}

func TestAskRequiresQuestion(t *testing.T) {
	isolate(t)

	_, err := run(t, "   ", "ask")
	assert.ErrorContains(t, err, "no question")
}

// =============================================================================
// HELPERS
// =============================================================================

func TestFormatNotice(t *testing.T) {
	got := formatNotice(conv.Notice{Kind: conv.NoticeWarning, Title: "Access denied", Body: "sign in first"})
	assert.Contains(t, got, "[!]")
	assert.Contains(t, got, "Access denied: sign in first")

	got = formatNotice(conv.Notice{Kind: conv.NoticeSuccess, Title: "Chat saved"})
	assert.Contains(t, got, "[OK]")
	assert.True(t, strings.HasSuffix(got, "Chat saved"))
}

func TestGlamourStyle(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	assert.Equal(t, "light", GlamourStyle("Light"))
	assert.Equal(t, "dracula", GlamourStyle("dracula"))
	assert.Equal(t, "notty", GlamourStyle("auto"))
	assert.Equal(t, "notty", GlamourStyle(""))
}

func TestColorsEnabled(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	t.Setenv("FORCE_COLOR", "1")
	assert.True(t, ColorsEnabled())

	t.Setenv("NO_COLOR", "1")
	assert.False(t, ColorsEnabled())
}

// =============================================================================
// REPL
// =============================================================================

type stubTopics []topics.Topic

func (s stubTopics) List(ctx context.Context) ([]topics.Topic, error) {
	return s, nil
}

type replEnv struct {
	repl   *repl
	out    *bytes.Buffer
	copied []string
}

func newReplEnv(t *testing.T) *replEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := storage.Open(storage.NewMemoryKV(), storage.Options{Logger: logger})
	out := &bytes.Buffer{}

	ctrl, err := conv.New(conv.Options{
		Store: store,
		Answers: answer.Func(func(ctx context.Context, req answer.Request) (answer.Response, error) {
			if req.Message == "fail" {
				return answer.Response{}, errors.New("connection refused")
			}
			return answer.Response{Answer: "echo: " + req.Message}, nil
		}),
		Notifier: consoleNotifier{w: out},
		Logger:   logger,
	})
	require.NoError(t, err)

	env := &replEnv{out: out}
	env.repl = &repl{
		ctrl:   ctrl,
		store:  store,
		topics: stubTopics{{ID: 1, Text: "When is registration?"}, {ID: 2, Text: "Where is the lab?"}},
		out:    out,
		clipboard: func(s string) error {
			env.copied = append(env.copied, s)
			return nil
		},
		exportDir: t.TempDir(),
		now:       func() time.Time { return time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC) },
	}
	return env
}

func (e *replEnv) slash(t *testing.T, line string) error {
	t.Helper()
	keep, err := e.repl.handleSlash(context.Background(), line)
	require.True(t, keep)
	return err
}

func TestReplSendPrintsAnswer(t *testing.T) {
	env := newReplEnv(t)

	env.repl.send(context.Background(), "hello")
	assert.Contains(t, env.out.String(), "echo: hello")
	assert.Contains(t, env.out.String(), "Response time:")
	assert.Len(t, env.repl.store.Active().Messages, 2)
}

func TestReplSendFailurePrintsNotice(t *testing.T) {
	env := newReplEnv(t)

	env.repl.send(context.Background(), "fail")
	assert.Contains(t, env.out.String(), "[X]")
	assert.Len(t, env.repl.store.Active().Messages, 1)
}

func TestReplQuit(t *testing.T) {
	env := newReplEnv(t)

	keep, err := env.repl.handleSlash(context.Background(), "/quit")
	assert.NoError(t, err)
	assert.False(t, keep)
}

func TestReplNewAndSwitch(t *testing.T) {
	env := newReplEnv(t)
	first := env.repl.store.ActiveID()

	require.NoError(t, env.slash(t, "/new"))
	assert.NotEqual(t, first, env.repl.store.ActiveID())
	assert.Contains(t, env.out.String(), "[OK]")

	env.out.Reset()
	require.NoError(t, env.slash(t, "/sessions"))
	assert.Contains(t, env.out.String(), " 2. ")

	require.NoError(t, env.slash(t, "/switch "+storage.ShortID(first)))
	assert.Equal(t, first, env.repl.store.ActiveID())

	assert.Error(t, env.slash(t, "/switch 9"))
	assert.Error(t, env.slash(t, "/switch"))
}

func TestReplDelete(t *testing.T) {
	env := newReplEnv(t)
	require.NoError(t, env.slash(t, "/new"))
	require.Equal(t, 2, env.repl.store.Len())

	require.NoError(t, env.slash(t, "/delete"))
	assert.Equal(t, 1, env.repl.store.Len())
}

func TestReplModeDenied(t *testing.T) {
	env := newReplEnv(t)

	require.NoError(t, env.slash(t, "/mode student"))
	assert.Equal(t, access.ModeGeneral, env.repl.ctrl.Mode())
	assert.Contains(t, env.out.String(), access.ReasonStudentNeedsLogin)

	env.out.Reset()
	require.NoError(t, env.slash(t, "/mode"))
	assert.Contains(t, env.out.String(), "General")

	assert.Error(t, env.slash(t, "/mode wizard"))
}

func TestReplTopics(t *testing.T) {
	env := newReplEnv(t)

	assert.Error(t, env.slash(t, "/topic 1"))

	require.NoError(t, env.slash(t, "/topics"))
	assert.Contains(t, env.out.String(), " 2. Where is the lab?")

	require.NoError(t, env.slash(t, "/topic 2"))
	assert.Equal(t, "Where is the lab?", env.repl.suggestion)
	assert.Error(t, env.slash(t, "/topic 3"))
}

func TestReplCopy(t *testing.T) {
	env := newReplEnv(t)

	assert.Error(t, env.slash(t, "/copy"))

	env.repl.send(context.Background(), "question")
	require.NoError(t, env.slash(t, "/copy"))
	assert.Equal(t, []string{"echo: question"}, env.copied)
}

func TestReplExport(t *testing.T) {
	env := newReplEnv(t)
	env.repl.send(context.Background(), "question")

	require.NoError(t, env.slash(t, "/export md"))
	entries, err := os.ReadDir(env.repl.exportDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ".md", filepath.Ext(entries[0].Name()))

	assert.Error(t, env.slash(t, "/export pdf"))
}

func TestReplUnknownCommand(t *testing.T) {
	env := newReplEnv(t)
	assert.ErrorContains(t, env.slash(t, "/dance"), "unknown command")
}
