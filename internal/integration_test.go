// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package internal provides end-to-end tests for catty.
//
// These tests wire the real storage backends, HTTP clients and controller
// against httptest servers:
// - a full exchange persisted to disk and recorded to history
// - anonymous users never reaching the history service
// - history failures leaving the exchange intact
// - sign-in snapshots driving the starting mode
// - exporting a stored chat
package internal

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jeranaias/catty-tui/internal/access"
	"github.com/jeranaias/catty-tui/internal/answer"
	"github.com/jeranaias/catty-tui/internal/auth"
	"github.com/jeranaias/catty-tui/internal/chat"
	"github.com/jeranaias/catty-tui/internal/export"
	"github.com/jeranaias/catty-tui/internal/history"
	"github.com/jeranaias/catty-tui/internal/httpclient"
	"github.com/jeranaias/catty-tui/internal/storage"
)

// =============================================================================
// TEST UTILITIES
// =============================================================================

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// backend fakes the answer and content services.
type backend struct {
	answers *httptest.Server
	content *httptest.Server

	mu          sync.Mutex
	questions   []map[string]string
	histories   []map[string]json.RawMessage
	authHeaders []string
	historyCode int
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{historyCode: http.StatusOK}

	b.answers = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != answer.DefaultPath || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		b.mu.Lock()
		b.questions = append(b.questions, req)
		b.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"answer": "**" + req["mode"] + "**: " + req["message"],
		})
	}))
	t.Cleanup(b.answers.Close)

	b.content = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != history.DefaultPath {
			http.NotFound(w, r)
			return
		}
		var body struct {
			Data map[string]json.RawMessage `json:"data"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)

		b.mu.Lock()
		b.histories = append(b.histories, body.Data)
		b.authHeaders = append(b.authHeaders, r.Header.Get("Authorization"))
		code := b.historyCode
		b.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		if code >= 300 {
			_, _ = w.Write([]byte(`{"error":{"message":"Forbidden"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"data":{"id":1}}`))
	}))
	t.Cleanup(b.content.Close)

	return b
}

func (b *backend) historyCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.histories)
}

func (b *backend) question(i int) map[string]string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.questions[i]
}

func (b *backend) history(i int) (map[string]json.RawMessage, string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.histories[i], b.authHeaders[i]
}

type noticeSink struct {
	mu      sync.Mutex
	notices []chat.Notice
}

func (s *noticeSink) Notify(n chat.Notice) {
	s.mu.Lock()
	s.notices = append(s.notices, n)
	s.mu.Unlock()
}

func (s *noticeSink) count(kind chat.NoticeKind) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, notice := range s.notices {
		if notice.Kind == kind {
			n++
		}
	}
	return n
}

// newController wires a controller the way the command line does.
func newController(t *testing.T, b *backend, kv storage.KV, sink chat.Notifier) (*chat.Controller, *storage.SessionStore) {
	t.Helper()
	logger := quietLogger()
	client := httpclient.New(httpclient.Config{Logger: logger})
	store := storage.Open(kv, storage.Options{Logger: logger})

	ctrl, err := chat.New(chat.Options{
		Store:    store,
		Answers:  answer.NewClient(client, b.answers.URL, ""),
		History:  history.NewClient(client, b.content.URL, ""),
		Auth:     auth.Load(kv, logger),
		Notifier: sink,
		Logger:   logger,
	})
	if err != nil {
		t.Fatalf("failed to create controller: %v", err)
	}
	return ctrl, store
}

func signInStudent(t *testing.T, kv storage.KV) {
	t.Helper()
	user := &auth.User{ID: "7", Username: "budi", Role: &auth.Role{Name: access.RoleStudent}}
	if err := auth.Save(kv, "jwt-token", user); err != nil {
		t.Fatalf("failed to save sign-in: %v", err)
	}
}

func drain(t *testing.T, ctrl *chat.Controller) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := ctrl.Drain(ctx); err != nil {
		t.Fatalf("drain: %v", err)
	}
}

// =============================================================================
// END-TO-END EXCHANGE
// =============================================================================

// TestStudentExchangePersistsAndRecords runs a full exchange for a signed-in
// student against the file backend, then reopens the store from disk.
func TestStudentExchangePersistsAndRecords(t *testing.T) {
	for _, backendName := range []string{storage.BackendFile, storage.BackendSQLite} {
		t.Run(backendName, func(t *testing.T) {
			dir := t.TempDir()
			b := newBackend(t)

			kv, err := storage.OpenKV(backendName, dir, "")
			if err != nil {
				t.Fatalf("open kv: %v", err)
			}
			signInStudent(t, kv)

			sink := &noticeSink{}
			ctrl, store := newController(t, b, kv, sink)
			if ctrl.Mode() != access.ModeStudent {
				t.Fatalf("expected student mode for a student, got %s", ctrl.Mode())
			}

			sessionID := store.ActiveID()
			out, err := ctrl.Send(context.Background(), sessionID, "When is registration?")
			if err != nil {
				t.Fatalf("send: %v", err)
			}
			if out.Status != chat.StatusAnswered {
				t.Fatalf("expected answered, got %v", out.Status)
			}
			if err := out.Forward.Wait(); err != nil {
				t.Fatalf("forward: %v", err)
			}
			drain(t, ctrl)

			if got := b.question(0)["mode"]; got != "student" {
				t.Errorf("answer request mode = %q, want student", got)
			}
			if b.historyCount() != 1 {
				t.Fatalf("expected 1 history post, got %d", b.historyCount())
			}
			entry, authHeader := b.history(0)
			if authHeader != "Bearer jwt-token" {
				t.Errorf("unexpected Authorization header %q", authHeader)
			}
			if string(entry["users_permissions_user"]) != "7" {
				t.Errorf("users_permissions_user = %s, want 7", entry["users_permissions_user"])
			}
			if string(entry["sessionId"]) != `"`+sessionID+`"` {
				t.Errorf("sessionId = %s, want %q", entry["sessionId"], sessionID)
			}
			if string(entry["response"]) != `"**student**: When is registration?"` {
				t.Errorf("response = %s", entry["response"])
			}

			if err := kv.Close(); err != nil {
				t.Fatalf("close kv: %v", err)
			}

			// Reopen from disk
			kv2, err := storage.OpenKV(backendName, dir, "")
			if err != nil {
				t.Fatalf("reopen kv: %v", err)
			}
			defer kv2.Close()

			reopened := storage.Open(kv2, storage.Options{Logger: quietLogger()})
			session, err := reopened.Get(sessionID)
			if err != nil {
				t.Fatalf("session not persisted: %v", err)
			}
			if len(session.Messages) != 2 {
				t.Fatalf("expected 2 persisted messages, got %d", len(session.Messages))
			}
			if session.Title != "When is registration?" {
				t.Errorf("title = %q", session.Title)
			}
			if !session.Messages[1].IsBot() {
				t.Errorf("second message should be the answer")
			}
		})
	}
}

// TestAnonymousNeverRecordsHistory verifies the history service is only
// contacted for signed-in users.
func TestAnonymousNeverRecordsHistory(t *testing.T) {
	b := newBackend(t)
	ctrl, store := newController(t, b, storage.NewMemoryKV(), &noticeSink{})

	out, err := ctrl.Send(context.Background(), store.ActiveID(), "hello")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	drain(t, ctrl)

	if out.Forward != nil {
		t.Error("anonymous exchange should not be forwarded")
	}
	if b.historyCount() != 0 {
		t.Errorf("expected no history posts, got %d", b.historyCount())
	}
	if got := b.question(0)["mode"]; got != "general" {
		t.Errorf("anonymous mode = %q, want general", got)
	}
}

// TestHistoryFailureKeepsExchange verifies a rejected history post raises an
// error notice and leaves both messages stored.
func TestHistoryFailureKeepsExchange(t *testing.T) {
	b := newBackend(t)
	b.historyCode = http.StatusForbidden

	kv := storage.NewMemoryKV()
	signInStudent(t, kv)
	sink := &noticeSink{}
	ctrl, store := newController(t, b, kv, sink)

	out, err := ctrl.Send(context.Background(), store.ActiveID(), "hello")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := out.Forward.Wait(); err == nil {
		t.Fatal("expected the forward to fail")
	}
	drain(t, ctrl)

	if sink.count(chat.NoticeError) != 1 {
		t.Errorf("expected 1 error notice, got %d", sink.count(chat.NoticeError))
	}
	if n := len(store.Active().Messages); n != 2 {
		t.Errorf("expected 2 messages after a history failure, got %d", n)
	}
}

// TestAnswerServiceDown verifies a dead answer service leaves only the user
// message and returns ErrAnswerFailed.
func TestAnswerServiceDown(t *testing.T) {
	b := newBackend(t)
	b.answers.Close()

	sink := &noticeSink{}
	ctrl, store := newController(t, b, storage.NewMemoryKV(), sink)

	_, err := ctrl.Send(context.Background(), store.ActiveID(), "anyone there?")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), chat.ErrAnswerFailed.Error()) {
		t.Errorf("unexpected error %v", err)
	}
	if n := len(store.Active().Messages); n != 1 {
		t.Errorf("expected only the user message, got %d", n)
	}
	if ctrl.State(store.ActiveID()) != chat.StateIdle {
		t.Errorf("state should return to idle")
	}
}

// =============================================================================
// EXPORT
// =============================================================================

func TestExportStoredChat(t *testing.T) {
	b := newBackend(t)
	ctrl, store := newController(t, b, storage.NewMemoryKV(), &noticeSink{})

	if _, err := ctrl.Send(context.Background(), store.ActiveID(), "<b>hi</b>"); err != nil {
		t.Fatalf("send: %v", err)
	}

	opts := export.DefaultOptions()
	opts.OutputDir = t.TempDir()
	path, err := export.ExportToFile(store.Active(), export.NewHTMLExporter(opts), opts)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	html := string(data)
	if !strings.Contains(html, "&lt;b&gt;hi&lt;/b&gt;") {
		t.Error("user text should be escaped in the export")
	}
	if !strings.Contains(html, "<strong>general</strong>") {
		t.Error("assistant Markdown should be rendered in the export")
	}
}
