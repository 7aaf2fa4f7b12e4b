// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/fitchat-tui/internal/model"
	"github.com/jeranaias/fitchat-tui/internal/util"
)

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter converts a session store to one output format.
type Exporter interface {
	// Export renders store. It never modifies it.
	Export(store *model.SessionStore) ([]byte, error)

	// FileExtension returns the file extension including the dot.
	FileExtension() string

	// MimeType returns the MIME type of the output.
	MimeType() string
}

// ErrNilStore is returned when exporting a nil store.
var ErrNilStore = errors.New("session store is nil")

// =============================================================================
// EXPORT OPTIONS
// =============================================================================

// Options configures export behavior.
type Options struct {
	// IncludeMetadata adds export time and session counts where the format
	// has room for them.
	IncludeMetadata bool

	// IncludeEmpty keeps sessions without messages in human-readable formats.
	// JSON always contains every session.
	IncludeEmpty bool

	// Theme for HTML export ("light" or "dark").
	Theme string

	// Now is the export timestamp. Zero selects time.Now.
	Now time.Time
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		IncludeMetadata: true,
		IncludeEmpty:    true,
		Theme:           "dark",
	}
}

func (o *Options) now() time.Time {
	if o.Now.IsZero() {
		return time.Now()
	}
	return o.Now
}

// Formats lists the names accepted by ForFormat.
var Formats = []string{"json", "text", "markdown", "html"}

// ForFormat returns the exporter for a format name. "md" and "htm" are
// accepted as aliases.
func ForFormat(format string, opts *Options) (Exporter, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	switch strings.ToLower(format) {
	case "json":
		return NewJSONExporter(opts), nil
	case "text", "txt":
		return NewTextExporter(opts), nil
	case "markdown", "md":
		return NewMarkdownExporter(opts), nil
	case "html", "htm":
		return NewHTMLExporter(opts), nil
	default:
		return nil, fmt.Errorf("unsupported export format %q (one of %s)", format, strings.Join(Formats, ", "))
	}
}

// WriteFile exports store to path, replacing the file atomically.
func WriteFile(store *model.SessionStore, exporter Exporter, path string) error {
	data, err := exporter.Export(store)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// entry is one session in store order.
type entry struct {
	ID      string
	Session *model.Session
	Current bool
}

// entries returns the sessions of store in order, dropping empty ones
// unless includeEmpty is set.
func entries(store *model.SessionStore, includeEmpty bool) []entry {
	var out []entry
	store.Each(func(id string, sess *model.Session) bool {
		if includeEmpty || !sess.IsEmpty() {
			out = append(out, entry{ID: id, Session: sess, Current: id == store.CurrentID})
		}
		return true
	})
	return out
}

// messageTotal counts the messages of every session.
func messageTotal(store *model.SessionStore) int {
	total := 0
	store.Each(func(_ string, sess *model.Session) bool {
		total += len(sess.Messages)
		return true
	})
	return total
}

// formatTimestamp formats a timestamp for display.
func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}
