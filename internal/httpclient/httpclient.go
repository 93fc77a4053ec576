// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package httpclient holds the HTTP plumbing shared by the service clients:
// a logging transport, base-URL request construction, capped body reads and
// a typed error for non-2xx responses.
package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

const (
	// MaxResponseSize caps how much of a response body is read.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB limit

	// maxErrorBody is how much of an error body is kept on HTTPError.
	maxErrorBody = 512

	// UserAgent is sent with every request.
	UserAgent = "catty/0.3.0"
)

// ErrResponseTooLarge is returned when a body exceeds MaxResponseSize.
var ErrResponseTooLarge = errors.New("response exceeded maximum size")

// =============================================================================
// CLIENT CONSTRUCTION
// =============================================================================

// Config configures New.
type Config struct {
	// Timeout bounds a whole request. Zero means no timeout; callers bound
	// requests with their context instead.
	Timeout time.Duration

	// Logger receives one record per request. Default: slog.Default().
	Logger *slog.Logger

	// Transport is the underlying round tripper. Default: http.DefaultTransport.
	Transport http.RoundTripper
}

// New returns an http.Client whose transport logs every request.
func New(cfg Config) *http.Client {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Transport == nil {
		cfg.Transport = http.DefaultTransport
	}
	return &http.Client{
		Timeout:   cfg.Timeout,
		Transport: &loggingRoundTripper{inner: cfg.Transport, logger: cfg.Logger},
	}
}

// loggingRoundTripper logs method, URL, status and duration. Request bodies
// and headers are never logged; they carry messages and bearer tokens.
type loggingRoundTripper struct {
	inner  http.RoundTripper
	logger *slog.Logger
}

func (l *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := l.inner.RoundTrip(req)
	duration := time.Since(start)

	target := redactURL(req.URL)
	if err != nil {
		l.logger.Warn("http request failed",
			"method", req.Method, "url", target, "duration", duration, "error", err)
		return nil, err
	}
	l.logger.Debug("http request",
		"method", req.Method, "url", target, "status", resp.StatusCode, "duration", duration)
	return resp, nil
}

func redactURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	clean := *u
	clean.User = nil
	clean.RawQuery = ""
	return clean.String()
}

// =============================================================================
// BASE CLIENT
// =============================================================================

// BaseClient binds an http.Client to a base URL.
type BaseClient struct {
	HTTPClient *http.Client
	BaseURL    string
}

// NewBaseClient returns a BaseClient. A nil httpClient gets New(Config{}).
func NewBaseClient(httpClient *http.Client, baseURL string) *BaseClient {
	if httpClient == nil {
		httpClient = New(Config{})
	}
	return &BaseClient{HTTPClient: httpClient, BaseURL: baseURL}
}

// NewRequest builds a request for relPath under BaseURL. Query parameters go
// in query; a relPath containing "?" is rejected because path.Join would
// mangle it.
func (c *BaseClient) NewRequest(ctx context.Context, method, relPath string, query url.Values, body io.Reader) (*http.Request, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.Contains(relPath, "?") {
		return nil, fmt.Errorf("httpclient: relPath must not contain a query string: %s", relPath)
	}
	if c.BaseURL == "" {
		return nil, errors.New("httpclient: base URL is not configured")
	}
	base, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("httpclient: invalid base URL: %w", err)
	}
	if relPath != "" {
		base.Path = path.Join("/", base.Path, relPath)
	}
	if query != nil {
		base.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, base.String(), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// Do executes req and reads the capped body. Non-2xx responses become
// *HTTPError tagged with service.
func (c *BaseClient) Do(req *http.Request, service string) ([]byte, error) {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", service, err)
	}
	defer resp.Body.Close()

	body, err := ReadBody(resp)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", service, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, NewHTTPError(service, resp, body)
	}
	return body, nil
}

// DoJSON executes req and decodes a 2xx JSON body into out.
func (c *BaseClient) DoJSON(req *http.Request, service string, out any) error {
	body, err := c.Do(req, service)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: failed to parse response: %w", service, err)
	}
	return nil
}

// ReadBody reads at most MaxResponseSize bytes of the response body.
func ReadBody(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) > MaxResponseSize {
		return nil, fmt.Errorf("%w of %d bytes", ErrResponseTooLarge, MaxResponseSize)
	}
	return body, nil
}

// =============================================================================
// ERRORS
// =============================================================================

// HTTPError is a non-2xx response from a backend service.
type HTTPError struct {
	Service    string
	StatusCode int
	Status     string

	// Message is the backend's own error message when the body carried one
	// in the {"error":{"message":...}} envelope.
	Message string

	// Body is the start of the response body.
	Body string
}

// NewHTTPError builds an HTTPError from a response and its body.
func NewHTTPError(service string, resp *http.Response, body []byte) *HTTPError {
	e := &HTTPError{
		Service:    service,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Message:    backendMessage(body),
	}
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	e.Body = strings.TrimSpace(string(body))
	return e
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s request failed (HTTP %d): %s", e.Service, e.StatusCode, e.Message)
	}
	if e.Body != "" {
		return fmt.Sprintf("%s request failed (HTTP %d): %s", e.Service, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s request failed (HTTP %d)", e.Service, e.StatusCode)
}

// Detail is the text shown to the user: the backend's message when it sent
// one, otherwise the HTTP status text.
func (e *HTTPError) Detail() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Status != "" {
		return e.Status
	}
	return http.StatusText(e.StatusCode)
}

// backendMessage extracts error.message (or a top-level message) from a
// JSON error body.
func backendMessage(body []byte) string {
	var envelope struct {
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	if envelope.Error != nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}
	return envelope.Message
}
