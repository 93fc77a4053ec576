// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jeranaias/catty-tui/internal/httpclient"
)

// Default endpoints on the content backend.
const (
	DefaultLoginPath = "/api/auth/local"
	DefaultMePath    = "/api/users/me"
)

const serviceName = "auth service"

// ErrNoToken is returned when sign-in succeeds without issuing a token.
var ErrNoToken = errors.New("sign-in response carried no token")

// Client signs in against the content backend.
type Client struct {
	base      *httpclient.BaseClient
	loginPath string
	mePath    string
}

// NewClient returns a client for the backend at baseURL. Empty paths use
// the defaults.
func NewClient(httpClient *http.Client, baseURL, loginPath, mePath string) *Client {
	if loginPath == "" {
		loginPath = DefaultLoginPath
	}
	if mePath == "" {
		mePath = DefaultMePath
	}
	return &Client{
		base:      httpclient.NewBaseClient(httpClient, baseURL),
		loginPath: loginPath,
		mePath:    mePath,
	}
}

// Login exchanges credentials for a token, then fetches the user record with
// its role. The result is ready for Save.
func (c *Client) Login(ctx context.Context, identifier, password string) (Snapshot, error) {
	buf, err := json.Marshal(map[string]string{"identifier": identifier, "password": password})
	if err != nil {
		return Snapshot{}, err
	}
	req, err := c.base.NewRequest(ctx, http.MethodPost, c.loginPath, nil, bytes.NewReader(buf))
	if err != nil {
		return Snapshot{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	var login struct {
		JWT string `json:"jwt"`
	}
	if err := c.base.DoJSON(req, serviceName, &login); err != nil {
		return Snapshot{}, err
	}
	if login.JWT == "" {
		return Snapshot{}, ErrNoToken
	}

	user, err := c.Me(ctx, login.JWT)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to load user details: %w", err)
	}
	return Snapshot{Token: login.JWT, User: user}, nil
}

// Me fetches the user record (with role) for token.
func (c *Client) Me(ctx context.Context, token string) (*User, error) {
	req, err := c.base.NewRequest(ctx, http.MethodGet, c.mePath, url.Values{"populate": {"role"}}, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	body, err := c.base.Do(req, serviceName)
	if err != nil {
		return nil, err
	}
	return ParseUser(body)
}
