// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jeranaias/catty-tui/internal/model"
	"github.com/jeranaias/catty-tui/internal/storage"
)

var fixedNow = time.Date(2025, 3, 1, 14, 30, 0, 0, time.UTC)

func testOptions(dir string) *Options {
	opts := DefaultOptions()
	opts.OutputDir = dir
	opts.Now = func() time.Time { return fixedNow }
	return opts
}

func testSession() *model.ChatSession {
	s := model.NewChatSession(fixedNow)
	s.Append(&model.Message{ID: "u1", Sender: model.SenderUser, Text: "Apa itu <b>IT</b>?\nTolong jelaskan", Timestamp: fixedNow}, fixedNow)
	s.Append(&model.Message{
		ID:           "b1",
		Sender:       model.SenderBot,
		Text:         "**IT** adalah teknologi informasi.\n```<script>alert('x')</script>\ncode\n```",
		Timestamp:    fixedNow.Add(2 * time.Second),
		ResponseTime: 1200 * time.Millisecond,
	}, fixedNow.Add(2*time.Second))
	return s
}

func TestHTMLExporter(t *testing.T) {
	out, err := NewHTMLExporter(testOptions("")).Export(testSession())
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	page := string(out)

	checks := []struct {
		name string
		want string
	}{
		{"doctype", "<!DOCTYPE html>"},
		{"rendered bold", "<strong>IT</strong> adalah"},
		{"escaped user text", "Apa itu &lt;b&gt;IT&lt;/b&gt;?<br>Tolong jelaskan"},
		{"response time", "Response time: 1.2s"},
		{"footer", "March 1, 2025 at 2:30 PM"},
		{"bot class", "bot-message"},
	}
	for _, c := range checks {
		if !strings.Contains(page, c.want) {
			t.Errorf("%s: missing %q", c.name, c.want)
		}
	}
	if strings.Contains(page, "<script>alert") {
		t.Error("script tag from message text must be escaped")
	}
}

func TestMarkdownExporter(t *testing.T) {
	session := testSession()
	session.Title = "Jadwal: semester #2"

	out, err := NewMarkdownExporter(testOptions("")).Export(session)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	md := string(out)

	if !strings.HasPrefix(md, "---\n") {
		t.Fatalf("front matter missing:\n%s", md)
	}
	header := strings.SplitN(strings.TrimPrefix(md, "---\n"), "---\n", 2)[0]
	var fm frontMatter
	if err := yaml.Unmarshal([]byte(header), &fm); err != nil {
		t.Fatalf("front matter does not parse: %v\n%s", err, header)
	}
	if fm.Title != session.Title || fm.Messages != len(session.Messages) || fm.Generator != "catty" {
		t.Errorf("front matter = %+v", fm)
	}
	if !strings.Contains(md, "# Jadwal: semester \\#2") {
		t.Errorf("heading not escaped:\n%s", md)
	}
	if !strings.Contains(md, "### You <sub>14:30:00</sub>") {
		t.Errorf("user label missing:\n%s", md)
	}
	if !strings.Contains(md, "**IT** adalah teknologi informasi.") {
		t.Error("bot text should be written unchanged")
	}
}

func TestMarkdownExporter_NoMetadata(t *testing.T) {
	opts := testOptions("")
	opts.IncludeMetadata = false
	opts.IncludeTimestamps = false

	out, err := NewMarkdownExporter(opts).Export(testSession())
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	md := string(out)
	if strings.HasPrefix(md, "---") || strings.Contains(md, "Response time") {
		t.Errorf("metadata present:\n%s", md)
	}
	if !strings.Contains(md, "### Catty\n") {
		t.Errorf("bot label missing:\n%s", md)
	}
}

func TestJSONExporter_PersistedSchema(t *testing.T) {
	session := testSession()
	out, err := NewJSONExporter(nil).Export(session)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	var stored storage.StoredSession
	if err := json.Unmarshal(out, &stored); err != nil {
		t.Fatalf("output is not a stored session: %v", err)
	}
	if stored.ID != session.ID || len(stored.Messages) != 2 {
		t.Errorf("stored = %+v", stored)
	}
	if stored.Messages[1].ResponseTime == nil || *stored.Messages[1].ResponseTime != 1200 {
		t.Errorf("responseTime = %v, want 1200", stored.Messages[1].ResponseTime)
	}
}

func TestExport_EmptySession(t *testing.T) {
	empty := model.NewChatSession(fixedNow)
	for _, format := range Formats {
		exporter, err := ForFormat(format, nil)
		if err != nil {
			t.Fatalf("ForFormat(%q) error = %v", format, err)
		}
		if _, err := exporter.Export(empty); !errors.Is(err, ErrEmptySession) {
			t.Errorf("%s: Export(empty) error = %v, want ErrEmptySession", format, err)
		}
		if _, err := exporter.Export(nil); !errors.Is(err, ErrNilSession) {
			t.Errorf("%s: Export(nil) error = %v, want ErrNilSession", format, err)
		}
	}
}

func TestForFormat(t *testing.T) {
	tests := map[string]string{"html": ".html", "HTM": ".html", "md": ".md", "markdown": ".md", "json": ".json"}
	for format, ext := range tests {
		exporter, err := ForFormat(format, nil)
		if err != nil {
			t.Errorf("ForFormat(%q) error = %v", format, err)
			continue
		}
		if exporter.FileExtension() != ext {
			t.Errorf("ForFormat(%q).FileExtension() = %q, want %q", format, exporter.FileExtension(), ext)
		}
	}
	if _, err := ForFormat("pdf", nil); err == nil {
		t.Error("ForFormat(pdf) should fail")
	}
}

func TestExportToFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	opts := testOptions(dir)
	session := testSession()
	session.Title = "Apa itu IT? / jurusan"

	path, err := ExportToFile(session, NewMarkdownExporter(opts), opts)
	if err != nil {
		t.Fatalf("ExportToFile() error = %v", err)
	}

	want := filepath.Join(dir, "chat_Apa_itu_IT-_-_jurusan_20250301_143000.md")
	if path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("file not written: %v", err)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"New Chat", "New_Chat"},
		{"a/b\\c:d", "a-b-c-d"},
		{"", "chat"},
		{"   ", "chat"},
		{"Bagaimana...", "Bagaimana"},
		{"tab\there", "tab_here"},
	}
	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
