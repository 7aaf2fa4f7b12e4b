// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jeranaias/fitchat-tui/internal/model"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports sessions to Markdown, one "##" section each.
type MarkdownExporter struct {
	options *Options
}

// frontmatter is the YAML header of a Markdown export.
type frontmatter struct {
	Title     string `yaml:"title"`
	Sessions  int    `yaml:"sessions"`
	Messages  int    `yaml:"messages"`
	Current   string `yaml:"current"`
	Exported  string `yaml:"exported"`
	Generator string `yaml:"generator"`
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// Export converts the store to Markdown.
func (e *MarkdownExporter) Export(store *model.SessionStore) ([]byte, error) {
	if store == nil {
		return nil, ErrNilStore
	}

	var sb strings.Builder

	if e.options.IncludeMetadata {
		fm, err := yaml.Marshal(frontmatter{
			Title:     "Fitness chat sessions",
			Sessions:  store.Len(),
			Messages:  messageTotal(store),
			Current:   store.CurrentID,
			Exported:  e.options.now().Format(time.RFC3339),
			Generator: "fitchat",
		})
		if err != nil {
			return nil, fmt.Errorf("encode frontmatter: %w", err)
		}
		sb.WriteString("---\n")
		sb.Write(fm)
		sb.WriteString("---\n\n")
	}

	sb.WriteString("# Fitness chat sessions\n")

	for _, en := range entries(store, e.options.IncludeEmpty) {
		sb.WriteString("\n")
		title := escapeMarkdown(en.Session.Title)
		if en.Current {
			title += " _(current)_"
		}
		fmt.Fprintf(&sb, "## %s\n\n", title)
		fmt.Fprintf(&sb, "<sub>id: `%s`</sub>\n\n", en.ID)

		if en.Session.IsEmpty() {
			sb.WriteString("_No messages._\n")
			continue
		}
		for _, msg := range en.Session.Messages {
			fmt.Fprintf(&sb, "**%s:**  \n", msg.Role.DisplayName())
			sb.WriteString(formatMessageContent(msg.Text))
			sb.WriteString("\n\n")
		}
	}

	return []byte(strings.TrimRight(sb.String(), "\n") + "\n"), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// MimeType returns the MIME type for Markdown.
func (e *MarkdownExporter) MimeType() string {
	return "text/markdown"
}

// formatMessageContent keeps every line of a message on its own row.
func formatMessageContent(text string) string {
	lines := strings.Split(text, "\n")
	return strings.Join(lines, "  \n")
}

// =============================================================================
// ESCAPING HELPERS
// =============================================================================

// escapeMarkdown escapes characters that would break a heading.
func escapeMarkdown(s string) string {
	r := strings.NewReplacer(
		"#", "\\#",
		"*", "\\*",
		"_", "\\_",
		"[", "\\[",
		"]", "\\]",
	)
	return r.Replace(s)
}
