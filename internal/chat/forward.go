// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"

	"github.com/jeranaias/catty-tui/internal/history"
	"github.com/jeranaias/catty-tui/internal/httpclient"
)

// =============================================================================
// FORWARD TASK
// =============================================================================

// ForwardTask is a history post running in the background. Its result is
// independent of the Send that started it.
type ForwardTask struct {
	done chan struct{}
	err  error
}

// Done is closed when the post has finished.
func (t *ForwardTask) Done() <-chan struct{} {
	return t.done
}

// Err returns the post's error once Done is closed, and nil before.
func (t *ForwardTask) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// Wait blocks until the post has finished and returns its error.
func (t *ForwardTask) Wait() error {
	<-t.done
	return t.err
}

// forward posts ex on its own goroutine. The post outlives ctx: the exchange
// is complete and should be recorded even if the caller has moved on.
func (c *Controller) forward(ctx context.Context, ex history.Exchange) *ForwardTask {
	task := &ForwardTask{done: make(chan struct{})}

	fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.historyTimeout)
	c.forwards.Add(1)
	go func() {
		defer c.forwards.Done()
		defer close(task.done)
		defer cancel()

		task.err = c.history.Record(fctx, c.auth, ex)
		if task.err == nil {
			c.logger.Debug("exchange recorded", "session", ex.SessionID)
			return
		}

		c.logger.Warn("failed to record exchange", "session", ex.SessionID, "error", task.err)
		var httpErr *httpclient.HTTPError
		if errors.As(task.err, &httpErr) {
			c.notifier.Notify(Notice{
				Kind:  NoticeError,
				Title: titleHistoryFailed,
				Body:  "Could not save chat history to the server: " + httpErr.Detail(),
			})
			return
		}
		c.notifier.Notify(Notice{Kind: NoticeError, Title: titleHistoryNetwork, Body: bodyHistoryNetwork})
	}()
	return task
}

// Drain waits for background history posts to finish or ctx to end.
func (c *Controller) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.forwards.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
