// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"html"
	"strings"

	"github.com/jeranaias/fitchat-tui/internal/model"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter exports sessions to one HTML page with embedded CSS.
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

// Export converts the store to HTML.
func (e *HTMLExporter) Export(store *model.SessionStore) ([]byte, error) {
	if store == nil {
		return nil, ErrNilStore
	}

	theme := e.options.Theme
	if theme != "light" {
		theme = "dark"
	}

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n")
	sb.WriteString("<html lang=\"en\">\n<head>\n")
	sb.WriteString("  <meta charset=\"UTF-8\">\n")
	sb.WriteString("  <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	sb.WriteString("  <meta name=\"generator\" content=\"fitchat\">\n")
	sb.WriteString("  <title>Fitness chat sessions</title>\n")
	sb.WriteString(css)
	sb.WriteString("</head>\n")
	fmt.Fprintf(&sb, "<body class=\"%s\">\n", theme)

	sb.WriteString("<header>\n  <h1>Fitness chat sessions</h1>\n")
	if e.options.IncludeMetadata {
		fmt.Fprintf(&sb, "  <p class=\"meta\">%d sessions · %d messages · exported %s</p>\n",
			store.Len(), messageTotal(store), html.EscapeString(formatTimestamp(e.options.now())))
	}
	sb.WriteString("</header>\n")

	for _, en := range entries(store, e.options.IncludeEmpty) {
		sb.WriteString(e.renderSession(en))
	}

	sb.WriteString("</body>\n</html>\n")
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

func (e *HTMLExporter) renderSession(en entry) string {
	var sb strings.Builder

	class := "session"
	if en.Current {
		class += " current"
	}
	fmt.Fprintf(&sb, "<section class=\"%s\" id=\"s-%s\">\n", class, html.EscapeString(en.ID))
	fmt.Fprintf(&sb, "  <h2>%s <small>%s</small></h2>\n", html.EscapeString(en.Session.Title), html.EscapeString(en.ID))

	if en.Session.IsEmpty() {
		sb.WriteString("  <p class=\"empty\">No messages.</p>\n")
	}
	for _, msg := range en.Session.Messages {
		sb.WriteString(renderMessage(msg))
	}
	sb.WriteString("</section>\n")
	return sb.String()
}

// renderMessage writes one message, one <p> per line of text.
func renderMessage(msg model.Message) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "  <div class=\"msg %s\">\n", html.EscapeString(msg.Role.String()))
	fmt.Fprintf(&sb, "    <span class=\"role\">%s</span>\n", html.EscapeString(msg.Role.DisplayName()))
	for _, line := range msg.Lines() {
		fmt.Fprintf(&sb, "    <p>%s</p>\n", html.EscapeString(line))
	}
	sb.WriteString("  </div>\n")
	return sb.String()
}

const css = `  <style>
    * { box-sizing: border-box; margin: 0; padding: 0; }
    .dark  { --bg: #14161b; --panel: #1d2027; --text: #e4e7ec; --muted: #7c8494; --user: #38bdf8; --bot: #a3e635; --warn: #f59e0b; }
    .light { --bg: #f6f7f9; --panel: #ffffff; --text: #1f2430; --muted: #6b7280; --user: #0369a1; --bot: #4d7c0f; --warn: #b45309; }
    body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; background: var(--bg); color: var(--text); padding: 24px; line-height: 1.5; }
    header, section { max-width: 820px; margin: 0 auto 20px; }
    h1 { font-size: 26px; margin-bottom: 6px; }
    .meta, h2 small, .empty { color: var(--muted); font-size: 13px; }
    section { background: var(--panel); border-radius: 10px; padding: 18px 22px; }
    section.current { outline: 2px solid var(--bot); }
    h2 { font-size: 18px; margin-bottom: 12px; }
    .msg { margin: 10px 0; }
    .role { font-weight: 700; font-size: 13px; }
    .user .role { color: var(--user); }
    .bot .role { color: var(--bot); }
    .msg p { margin-left: 12px; white-space: pre-wrap; }
  </style>
`
