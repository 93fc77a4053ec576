// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package answer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jeranaias/catty-tui/internal/access"
)

func TestClient_Ask(t *testing.T) {
	var got Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/api/chat" {
			t.Errorf("path = %s, want /api/chat", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		if xr := r.Header.Get("X-Requested-With"); xr != "XMLHttpRequest" {
			t.Errorf("X-Requested-With = %q", xr)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"answer":"**Halo!** Ada yang bisa dibantu?"}`))
	}))
	defer server.Close()

	c := NewClient(nil, server.URL, "")
	resp, err := c.Ask(context.Background(), Request{Message: "Halo", Mode: access.ModeStudent})
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	if resp.Answer != "**Halo!** Ada yang bisa dibantu?" {
		t.Errorf("Answer = %q", resp.Answer)
	}
	if got.Message != "Halo" || got.Mode != access.ModeStudent {
		t.Errorf("request body = %+v", got)
	}
}

func TestClient_AskWireFormat(t *testing.T) {
	var raw map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&raw)
		w.Write([]byte(`{"answer":"x"}`))
	}))
	defer server.Close()

	if _, err := NewClient(nil, server.URL, "/custom").Ask(context.Background(), Request{Message: "m", Mode: access.ModeGeneral}); err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	if raw["message"] != "m" || raw["mode"] != "general" || len(raw) != 2 {
		t.Errorf("wire body = %v", raw)
	}
}

func TestClient_AskNon2xxIsHTTPError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "model offline", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := NewClient(nil, server.URL, "").Ask(context.Background(), Request{Message: "Halo", Mode: access.ModeGeneral})

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("error = %v, want *HTTPError", err)
	}
	if httpErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("StatusCode = %d", httpErr.StatusCode)
	}
	if calls.Load() != 1 {
		t.Errorf("server called %d times, want exactly 1 (no retries)", calls.Load())
	}
}

func TestClient_AskTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	if _, err := NewClient(nil, url, "").Ask(context.Background(), Request{Message: "Halo"}); err == nil {
		t.Fatal("expected error from closed server")
	}
}

func TestClient_AskMalformedAndEmpty(t *testing.T) {
	tests := []struct {
		name string
		body string
		want error
	}{
		{"malformed", `not json`, nil},
		{"empty answer", `{"answer":""}`, ErrEmptyAnswer},
		{"missing answer", `{}`, ErrEmptyAnswer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewClient(nil, server.URL, "").Ask(context.Background(), Request{Message: "x"})
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestClient_AskHonorsContext(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewClient(nil, server.URL, "").Ask(ctx, Request{Message: "x"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want context.DeadlineExceeded", err)
	}
}

func TestFunc(t *testing.T) {
	var svc Service = Func(func(ctx context.Context, req Request) (Response, error) {
		return Response{Answer: "echo " + req.Message}, nil
	})
	resp, _ := svc.Ask(context.Background(), Request{Message: "hi"})
	if resp.Answer != "echo hi" {
		t.Errorf("Answer = %q", resp.Answer)
	}
}
