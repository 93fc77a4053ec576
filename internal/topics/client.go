// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package topics fetches the suggested questions shown in an empty chat.
package topics

import (
	"context"
	"net/http"
	"sort"
	"strings"

	"github.com/jeranaias/catty-tui/internal/httpclient"
)

// DefaultPath is the suggested-question collection endpoint.
const DefaultPath = "/api/pertanyaan-chatbots"

const serviceName = "topics service"

// Topic is one suggested question.
type Topic struct {
	ID    int
	Text  string
	Order int
}

// record is the backend's row shape.
type record struct {
	ID    int    `json:"id"`
	Text  string `json:"teksPertanyaan"`
	Order *int   `json:"urutan"`
}

// Client lists suggested questions.
type Client struct {
	base *httpclient.BaseClient
	path string
}

// NewClient returns a client for the backend at baseURL.
func NewClient(httpClient *http.Client, baseURL, path string) *Client {
	if path == "" {
		path = DefaultPath
	}
	return &Client{base: httpclient.NewBaseClient(httpClient, baseURL), path: path}
}

// List returns the suggested questions sorted by their order field; a
// missing order counts as 0 and ties keep backend order. Blank questions
// are skipped.
func (c *Client) List(ctx context.Context) ([]Topic, error) {
	req, err := c.base.NewRequest(ctx, http.MethodGet, c.path, nil, nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data []record `json:"data"`
	}
	if err := c.base.DoJSON(req, serviceName, &resp); err != nil {
		return nil, err
	}

	topics := make([]Topic, 0, len(resp.Data))
	for _, r := range resp.Data {
		text := strings.TrimSpace(r.Text)
		if text == "" {
			continue
		}
		t := Topic{ID: r.ID, Text: text}
		if r.Order != nil {
			t.Order = *r.Order
		}
		topics = append(topics, t)
	}
	sort.SliceStable(topics, func(i, j int) bool {
		return topics[i].Order < topics[j].Order
	})
	return topics, nil
}

// Texts returns just the question texts.
func Texts(topics []Topic) []string {
	out := make([]string, len(topics))
	for i, t := range topics {
		out[i] = t.Text
	}
	return out
}
