// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package internal

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jeranaias/catty-tui/internal/answer"
	"github.com/jeranaias/catty-tui/internal/chat"
	"github.com/jeranaias/catty-tui/internal/model"
	"github.com/jeranaias/catty-tui/internal/storage"
)

// Race tests for the shared session store and controller. Run with:
//
//	go test -race ./internal/...

const (
	// Number of concurrent goroutines for race tests
	raceConcurrency = 20
	// Number of iterations per goroutine
	raceIterations = 25
	// Timeout for race tests
	raceTimeout = 30 * time.Second
)

// =============================================================================
// SESSION STORE
// =============================================================================

// TestConcurrency_StoreReadersAndWriters appends to many sessions while
// other goroutines list, read and switch sessions.
func TestConcurrency_StoreReadersAndWriters(t *testing.T) {
	store := storage.Open(storage.NewMemoryKV(), storage.Options{Logger: quietLogger()})

	ids := make([]string, raceConcurrency)
	for i := range ids {
		s, err := store.CreateSession()
		if err != nil {
			t.Fatalf("create session: %v", err)
		}
		ids[i] = s.ID
	}

	ctx, cancel := context.WithTimeout(context.Background(), raceTimeout)
	defer cancel()

	var wg sync.WaitGroup
	errChan := make(chan error, raceConcurrency*raceIterations)

	for i := 0; i < raceConcurrency; i++ {
		wg.Add(2)
		go func(id string) {
			defer wg.Done()
			for j := 0; j < raceIterations; j++ {
				if ctx.Err() != nil {
					return
				}
				if err := store.AppendMessage(id, model.NewUserMessage(fmt.Sprintf("q%d", j))); err != nil {
					errChan <- err
				}
			}
		}(ids[i])

		go func(id string) {
			defer wg.Done()
			for j := 0; j < raceIterations; j++ {
				if ctx.Err() != nil {
					return
				}
				_ = store.List()
				_ = store.Active()
				if err := store.Select(id); err != nil {
					errChan <- err
				}
			}
		}(ids[i])
	}

	wg.Wait()
	close(errChan)
	for err := range errChan {
		t.Errorf("concurrent store operation failed: %v", err)
	}

	for _, id := range ids {
		s, err := store.Get(id)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if len(s.Messages) != raceIterations {
			t.Errorf("session %s has %d messages, want %d", id, len(s.Messages), raceIterations)
		}
	}
}

// TestConcurrency_DeleteWhileAppending deletes sessions while messages are
// appended to them. Every append either lands or reports ErrSessionNotFound,
// and the store always keeps at least one session.
func TestConcurrency_DeleteWhileAppending(t *testing.T) {
	store := storage.Open(storage.NewMemoryKV(), storage.Options{Logger: quietLogger()})

	var ids []string
	for i := 0; i < raceConcurrency; i++ {
		s, _ := store.CreateSession()
		ids = append(ids, s.ID)
	}

	var wg sync.WaitGroup
	var unexpected atomic.Int32
	for _, id := range ids {
		wg.Add(2)
		go func(id string) {
			defer wg.Done()
			for j := 0; j < raceIterations; j++ {
				err := store.AppendMessage(id, model.NewUserMessage("x"))
				if err != nil && !errors.Is(err, storage.ErrSessionNotFound) {
					unexpected.Add(1)
				}
			}
		}(id)
		go func(id string) {
			defer wg.Done()
			err := store.DeleteSession(id)
			if err != nil && !errors.Is(err, storage.ErrSessionNotFound) {
				unexpected.Add(1)
			}
		}(id)
	}
	wg.Wait()

	if unexpected.Load() != 0 {
		t.Errorf("%d unexpected errors", unexpected.Load())
	}
	if store.Len() < 1 {
		t.Error("store must never be empty")
	}
	if _, err := store.Get(store.ActiveID()); err != nil {
		t.Errorf("active session must exist: %v", err)
	}
}

// =============================================================================
// CONTROLLER
// =============================================================================

// TestConcurrency_SendAcrossSessions sends on many sessions at once. Each
// session allows one request in flight; the rest get ErrBusy.
func TestConcurrency_SendAcrossSessions(t *testing.T) {
	store := storage.Open(storage.NewMemoryKV(), storage.Options{Logger: quietLogger()})

	release := make(chan struct{})
	var inFlight, peak atomic.Int32
	ctrl, err := chat.New(chat.Options{
		Store: store,
		Answers: answer.Func(func(ctx context.Context, req answer.Request) (answer.Response, error) {
			n := inFlight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			<-release
			inFlight.Add(-1)
			return answer.Response{Answer: "ok"}, nil
		}),
		Logger: quietLogger(),
	})
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}

	const sessions = 8
	ids := make([]string, sessions)
	for i := range ids {
		s, _ := store.CreateSession()
		ids[i] = s.ID
	}

	var wg sync.WaitGroup
	var answered, busy atomic.Int32
	started := make(chan struct{}, sessions)
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			started <- struct{}{}
			out, err := ctrl.Send(context.Background(), id, "first")
			if err == nil && out.Status == chat.StatusAnswered {
				answered.Add(1)
			}
		}(id)
	}
	for i := 0; i < sessions; i++ {
		<-started
	}

	// Wait until every session is sending, then try again on each
	deadline := time.Now().Add(5 * time.Second)
	for inFlight.Load() < sessions && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	for _, id := range ids {
		if _, err := ctrl.Send(context.Background(), id, "second"); errors.Is(err, chat.ErrBusy) {
			busy.Add(1)
		}
	}

	close(release)
	wg.Wait()

	if answered.Load() != sessions {
		t.Errorf("answered = %d, want %d", answered.Load(), sessions)
	}
	if busy.Load() != sessions {
		t.Errorf("busy = %d, want %d", busy.Load(), sessions)
	}
	if peak.Load() != sessions {
		t.Errorf("sessions should send in parallel, peak = %d", peak.Load())
	}
	for _, id := range ids {
		if ctrl.State(id) != chat.StateIdle {
			t.Errorf("session %s not idle after send", id)
		}
		s, _ := store.Get(id)
		if len(s.Messages) != 2 {
			t.Errorf("session %s has %d messages, want 2", id, len(s.Messages))
		}
	}
}
