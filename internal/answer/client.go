// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package answer is the client for the assistant's answer service.
//
// One request carries the user's message and the active mode; the response
// carries the answer text in Markdown. Any transport error or non-2xx status
// is a failed exchange. The client never retries.
package answer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/jeranaias/catty-tui/internal/access"
	"github.com/jeranaias/catty-tui/internal/httpclient"
)

// DefaultPath is the answer endpoint under the service base URL.
const DefaultPath = "/api/chat"

const serviceName = "answer service"

// ErrEmptyAnswer is returned when the service answers 2xx without text.
var ErrEmptyAnswer = errors.New("answer service returned an empty answer")

// HTTPError is a non-2xx response from the answer service.
type HTTPError = httpclient.HTTPError

// Request is the body sent to the answer service.
type Request struct {
	Message string      `json:"message"`
	Mode    access.Mode `json:"mode"`
}

// Response is the body returned by the answer service.
type Response struct {
	Answer string `json:"answer"`
}

// Service produces an answer for one message.
type Service interface {
	Ask(ctx context.Context, req Request) (Response, error)
}

// =============================================================================
// CLIENT
// =============================================================================

// Client calls the answer service over HTTP.
type Client struct {
	base *httpclient.BaseClient
	path string
}

// NewClient returns a client for the service at baseURL. An empty path uses
// DefaultPath. A nil httpClient gets a client without a timeout.
func NewClient(httpClient *http.Client, baseURL, path string) *Client {
	if path == "" {
		path = DefaultPath
	}
	return &Client{base: httpclient.NewBaseClient(httpClient, baseURL), path: path}
}

// Ask sends req and returns the answer.
func (c *Client) Ask(ctx context.Context, req Request) (Response, error) {
	buf, err := json.Marshal(req)
	if err != nil {
		return Response{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := c.base.NewRequest(ctx, http.MethodPost, c.path, nil, bytes.NewReader(buf))
	if err != nil {
		return Response{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Requested-With", "XMLHttpRequest")

	var out Response
	if err := c.base.DoJSON(httpReq, serviceName, &out); err != nil {
		return Response{}, err
	}
	if out.Answer == "" {
		return Response{}, ErrEmptyAnswer
	}
	return out, nil
}

// Func adapts a function to the Service interface.
type Func func(ctx context.Context, req Request) (Response, error)

// Ask calls f.
func (f Func) Ask(ctx context.Context, req Request) (Response, error) {
	return f(ctx, req)
}
