// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"

	"github.com/jeranaias/fitchat-tui/internal/model"
)

// TextExporter writes one "# Title (id)" section per session followed by
// "Role: text" lines.
type TextExporter struct {
	options *Options
}

// NewTextExporter creates a new plain text exporter.
func NewTextExporter(opts *Options) *TextExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &TextExporter{options: opts}
}

// Export converts the store to plain text.
func (e *TextExporter) Export(store *model.SessionStore) ([]byte, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	var sb strings.Builder
	for i, en := range entries(store, e.options.IncludeEmpty) {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "# %s (%s)\n", en.Session.Title, en.ID)
		for _, msg := range en.Session.Messages {
			fmt.Fprintf(&sb, "%s: %s\n", msg.Role.DisplayName(), msg.Text)
		}
	}
	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for plain text.
func (e *TextExporter) FileExtension() string {
	return ".txt"
}

// MimeType returns the MIME type for plain text.
func (e *TextExporter) MimeType() string {
	return "text/plain"
}
