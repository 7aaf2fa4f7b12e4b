// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/fitchat-tui/internal/ui/styles"
	"github.com/jeranaias/fitchat-tui/internal/util"
)

// =============================================================================
// HEADER COMPONENT
// =============================================================================

// BackendStatus is the last known reachability of the backend.
type BackendStatus int

const (
	StatusUnknown BackendStatus = iota
	StatusOnline
	StatusOffline
)

// String returns the label shown in the header.
func (s BackendStatus) String() string {
	switch s {
	case StatusOnline:
		return "● online"
	case StatusOffline:
		return "○ offline"
	default:
		return "◌ checking"
	}
}

// Header shows the current session title, the clear shortcut and the backend
// status.
type Header struct {
	Title  string
	Status BackendStatus
	Width  int
	theme  *styles.Theme
}

// NewHeader creates a header.
func NewHeader(theme *styles.Theme) *Header {
	return &Header{Width: 80, theme: theme}
}

// SetWidth updates the header width.
func (h *Header) SetWidth(width int) {
	h.Width = width
}

// View renders the header. It is always two lines tall including the border.
func (h *Header) View() string {
	t := h.theme
	inner := h.Width - 2
	if inner < 10 {
		inner = 10
	}

	var status lipgloss.Style
	switch h.Status {
	case StatusOnline:
		status = t.StatusOnline
	case StatusOffline:
		status = t.StatusOffline
	default:
		status = t.StatusUnknown
	}
	right := t.FooterKey.Render("ctrl+l") + t.Footer.Render(" clear  ") + status.Render(h.Status.String())

	titleWidth := inner - lipgloss.Width(right) - 1
	title := t.HeaderTitle.Render(util.TruncateWidth(h.Title, titleWidth))

	gap := inner - lipgloss.Width(title) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return t.Header.Width(h.Width).Render(title + strings.Repeat(" ", gap) + right)
}
