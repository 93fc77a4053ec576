// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history records completed exchanges on the content backend.
//
// Recording is best effort: callers log and surface failures but never undo
// the local exchange because of them, and nothing is retried or queued.
package history

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jeranaias/catty-tui/internal/access"
	"github.com/jeranaias/catty-tui/internal/auth"
	"github.com/jeranaias/catty-tui/internal/httpclient"
)

// DefaultPath is the history collection endpoint.
const DefaultPath = "/api/histories"

const serviceName = "history service"

// ErrNotAuthenticated is returned when Record is called without credentials.
var ErrNotAuthenticated = errors.New("history requires a signed-in user")

// HTTPError is a non-2xx response from the history service.
type HTTPError = httpclient.HTTPError

// Exchange is one completed question and answer.
type Exchange struct {
	Message      string
	Response     string
	Mode         access.Mode
	SessionID    string
	ResponseTime time.Duration
	Timestamp    time.Time
}

// Recorder stores exchanges for a signed-in user.
type Recorder interface {
	Record(ctx context.Context, creds auth.Snapshot, ex Exchange) error
}

// entry is the body of the "data" envelope the backend expects.
type entry struct {
	Message      string      `json:"message"`
	Response     string      `json:"response"`
	Mode         access.Mode `json:"mode"`
	SessionID    string      `json:"sessionId"`
	ResponseTime int64       `json:"responseTime"` // milliseconds
	Timestamp    string      `json:"timestamp"`    // RFC 3339, UTC
	User         auth.UserID `json:"users_permissions_user"`
}

// =============================================================================
// CLIENT
// =============================================================================

// Client posts exchanges to the history collection.
type Client struct {
	base *httpclient.BaseClient
	path string
}

// NewClient returns a client for the backend at baseURL. An empty path uses
// DefaultPath.
func NewClient(httpClient *http.Client, baseURL, path string) *Client {
	if path == "" {
		path = DefaultPath
	}
	return &Client{base: httpclient.NewBaseClient(httpClient, baseURL), path: path}
}

// Record posts ex on behalf of the signed-in user in creds.
func (c *Client) Record(ctx context.Context, creds auth.Snapshot, ex Exchange) error {
	if !creds.Authenticated() {
		return ErrNotAuthenticated
	}

	payload := struct {
		Data entry `json:"data"`
	}{
		Data: entry{
			Message:      ex.Message,
			Response:     ex.Response,
			Mode:         ex.Mode,
			SessionID:    ex.SessionID,
			ResponseTime: ex.ResponseTime.Milliseconds(),
			Timestamp:    ex.Timestamp.UTC().Format(time.RFC3339Nano),
			User:         creds.User.ID,
		},
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal history entry: %w", err)
	}

	req, err := c.base.NewRequest(ctx, http.MethodPost, c.path, nil, bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+creds.Token)

	_, err = c.base.Do(req, serviceName)
	return err
}
