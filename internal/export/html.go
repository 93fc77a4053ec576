// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/jeranaias/catty-tui/internal/model"
	"github.com/jeranaias/catty-tui/internal/render"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter writes a standalone page. Assistant messages go through
// render.Render; user messages are escaped and keep their line breaks.
type HTMLExporter struct {
	options *Options
}

// NewHTMLExporter creates a new HTML exporter.
func NewHTMLExporter(opts *Options) *HTMLExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &HTMLExporter{options: opts}
}

// Export converts a session to HTML.
func (e *HTMLExporter) Export(session *model.ChatSession) ([]byte, error) {
	if err := checkSession(session); err != nil {
		return nil, err
	}

	theme := e.options.Theme
	if theme != "dark" {
		theme = "light"
	}

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n")
	sb.WriteString("<html lang=\"id\">\n")
	sb.WriteString("<head>\n")
	sb.WriteString("    <meta charset=\"UTF-8\">\n")
	sb.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	sb.WriteString(fmt.Sprintf("    <title>%s</title>\n", html.EscapeString(session.Title)))
	sb.WriteString("    <meta name=\"generator\" content=\"catty\">\n")
	sb.WriteString(fmt.Sprintf("    <meta name=\"date\" content=\"%s\">\n", session.CreatedAt.Format(time.RFC3339)))
	sb.WriteString(css)
	sb.WriteString("</head>\n")
	sb.WriteString(fmt.Sprintf("<body class=\"%s-theme\">\n", theme))
	sb.WriteString("    <div class=\"container\">\n")

	if e.options.IncludeMetadata {
		sb.WriteString(e.renderHeader(session))
	}

	sb.WriteString("        <main class=\"conversation\">\n")
	for _, msg := range session.Messages {
		sb.WriteString(e.renderMessage(msg))
	}
	sb.WriteString("        </main>\n")

	sb.WriteString("        <footer class=\"footer\">\n")
	sb.WriteString(fmt.Sprintf("            <p>Exported from <strong>Catty</strong> on %s</p>\n",
		e.options.now().Format("January 2, 2006 at 3:04 PM")))
	sb.WriteString("        </footer>\n")
	sb.WriteString("    </div>\n")
	sb.WriteString("</body>\n")
	sb.WriteString("</html>\n")

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for HTML.
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// MimeType returns the MIME type for HTML.
func (e *HTMLExporter) MimeType() string {
	return "text/html"
}

// =============================================================================
// RENDERING FUNCTIONS
// =============================================================================

func (e *HTMLExporter) renderHeader(session *model.ChatSession) string {
	var sb strings.Builder
	sb.WriteString("        <header class=\"header\">\n")
	sb.WriteString(fmt.Sprintf("            <h1>%s</h1>\n", html.EscapeString(session.Title)))
	sb.WriteString("            <div class=\"metadata\">\n")
	sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Created:</strong> %s</span>\n", formatTimestamp(session.CreatedAt)))
	sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Updated:</strong> %s</span>\n", formatTimestamp(session.UpdatedAt)))
	sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Messages:</strong> %d</span>\n", len(session.Messages)))
	sb.WriteString("            </div>\n")
	sb.WriteString("        </header>\n")
	return sb.String()
}

func (e *HTMLExporter) renderMessage(msg *model.Message) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("            <div class=\"message %s-message\">\n", msg.Sender))
	sb.WriteString("                <div class=\"message-header\">\n")
	sb.WriteString(fmt.Sprintf("                    <span class=\"role-label\">%s</span>\n", html.EscapeString(msg.Sender.DisplayName())))
	if e.options.IncludeTimestamps {
		sb.WriteString(fmt.Sprintf("                    <span class=\"timestamp\">%s</span>\n", formatShortTimestamp(msg.Timestamp)))
	}
	sb.WriteString("                </div>\n")

	sb.WriteString("                <div class=\"message-content\">")
	if msg.IsBot() {
		sb.WriteString(render.Render(msg.Text))
	} else {
		sb.WriteString(strings.ReplaceAll(html.EscapeString(msg.Text), "\n", "<br>"))
	}
	sb.WriteString("</div>\n")

	if msg.IsBot() && e.options.IncludeMetadata {
		if rt := msg.FormatResponseTime(); rt != "" {
			sb.WriteString(fmt.Sprintf("                <div class=\"message-stats\">Response time: %s</div>\n", rt))
		}
	}
	sb.WriteString("            </div>\n")
	return sb.String()
}

const css = `    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        :root {
            --font-sans: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Arial, sans-serif;
            --font-mono: "SF Mono", Monaco, "Fira Code", monospace;
        }
        .light-theme {
            --bg-primary: #f8fafc; --bg-secondary: #ffffff; --text-primary: #1e293b;
            --text-muted: #64748b; --border-color: #e2e8f0; --user-bg: #e0e7ff;
            --bot-bg: #ffffff; --code-bg: #f1f5f9; --accent: #4f46e5;
        }
        .dark-theme {
            --bg-primary: #1a1b26; --bg-secondary: #24283b; --text-primary: #c0caf5;
            --text-muted: #565f89; --border-color: #414868; --user-bg: #1f2335;
            --bot-bg: #24283b; --code-bg: #1a1b26; --accent: #7aa2f7;
        }
        body { font-family: var(--font-sans); background: var(--bg-primary); color: var(--text-primary); line-height: 1.6; }
        .container { max-width: 860px; margin: 0 auto; padding: 2rem 1rem; }
        .header { border-bottom: 1px solid var(--border-color); margin-bottom: 1.5rem; padding-bottom: 1rem; }
        .metadata { display: flex; gap: 1rem; flex-wrap: wrap; color: var(--text-muted); font-size: 0.875rem; }
        .message { border: 1px solid var(--border-color); border-radius: 0.75rem; padding: 1rem; margin-bottom: 1rem; }
        .user-message { background: var(--user-bg); margin-left: 15%; }
        .bot-message { background: var(--bot-bg); margin-right: 15%; }
        .message-header { display: flex; justify-content: space-between; font-size: 0.8rem; color: var(--text-muted); margin-bottom: 0.5rem; }
        .role-label { font-weight: 600; color: var(--accent); }
        .message-content pre { background: var(--code-bg); padding: 0.75rem; border-radius: 0.5rem; overflow-x: auto; }
        .message-content code { font-family: var(--font-mono); font-size: 0.875em; }
        .message-content table { border-collapse: collapse; width: 100%; }
        .message-content th, .message-content td { border: 1px solid var(--border-color); padding: 0.25rem 0.5rem; }
        .text-left { text-align: left; } .text-center { text-align: center; } .text-right { text-align: right; }
        .message-content a { color: var(--accent); }
        .message-stats { font-size: 0.75rem; color: var(--text-muted); margin-top: 0.5rem; }
        .footer { text-align: center; color: var(--text-muted); font-size: 0.8rem; margin-top: 2rem; }
    </style>
`
