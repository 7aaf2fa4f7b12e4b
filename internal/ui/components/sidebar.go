// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/jeranaias/fitchat-tui/internal/session"
	"github.com/jeranaias/fitchat-tui/internal/ui/styles"
	"github.com/jeranaias/fitchat-tui/internal/util"
)

// =============================================================================
// SIDEBAR COMPONENT
// =============================================================================

// sidebarChrome is the number of lines the sidebar spends on its title and
// key hints.
const sidebarChrome = 5

// sidebarHeaderRows is the number of lines above the first session row.
const sidebarHeaderRows = 2

// Sidebar lists the sessions in insertion order. The active session is
// highlighted; the cursor marks the row ↑/↓ move over.
type Sidebar struct {
	Entries []session.Entry
	Cursor  int
	Focused bool

	// EditingID is the session being renamed; EditView is the rendered rename
	// input drawn in place of its title.
	EditingID string
	EditView  string

	Width  int
	Height int
	theme  *styles.Theme
}

// NewSidebar creates a sidebar.
func NewSidebar(theme *styles.Theme, width int) *Sidebar {
	return &Sidebar{Width: width, Height: 20, theme: theme}
}

// SetEntries replaces the rows, keeping the cursor in range.
func (s *Sidebar) SetEntries(entries []session.Entry) {
	s.Entries = entries
	s.clampCursor()
}

// MoveCursor moves the cursor by delta rows.
func (s *Sidebar) MoveCursor(delta int) {
	s.Cursor += delta
	s.clampCursor()
}

// CursorToActive puts the cursor on the active session.
func (s *Sidebar) CursorToActive() {
	for i, e := range s.Entries {
		if e.Current {
			s.Cursor = i
			return
		}
	}
}

// Selected returns the id under the cursor.
func (s *Sidebar) Selected() (string, bool) {
	if s.Cursor < 0 || s.Cursor >= len(s.Entries) {
		return "", false
	}
	return s.Entries[s.Cursor].ID, true
}

// RowAt returns the session drawn on screen line y of the sidebar.
func (s *Sidebar) RowAt(y int) (string, bool) {
	start, end := s.visibleRange()
	i := start + y - sidebarHeaderRows
	if y < sidebarHeaderRows || i >= end {
		return "", false
	}
	return s.Entries[i].ID, true
}

func (s *Sidebar) clampCursor() {
	if s.Cursor >= len(s.Entries) {
		s.Cursor = len(s.Entries) - 1
	}
	if s.Cursor < 0 {
		s.Cursor = 0
	}
}

// visibleRange returns the window of rows that fits, keeping the cursor in
// view.
func (s *Sidebar) visibleRange() (start, end int) {
	rows := s.Height - sidebarChrome
	if rows < 1 {
		rows = 1
	}
	if len(s.Entries) <= rows {
		return 0, len(s.Entries)
	}
	start = s.Cursor - rows/2
	if start < 0 {
		start = 0
	}
	if start+rows > len(s.Entries) {
		start = len(s.Entries) - rows
	}
	return start, start + rows
}

// View renders the sidebar at exactly Width cells wide.
func (s *Sidebar) View() string {
	t := s.theme
	inner := s.Width - 3 // border + padding
	if inner < 4 {
		inner = 4
	}

	var b strings.Builder
	b.WriteString(t.SidebarTitle.Render(util.TruncateWidth("Sessions", inner)))
	b.WriteString("\n")

	start, end := s.visibleRange()
	for i := start; i < end; i++ {
		b.WriteString(s.row(i, inner))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(t.SidebarHelpText.Render(util.TruncateWidth("^n new  ^r rename", inner)))
	b.WriteString("\n")
	b.WriteString(t.SidebarHelpText.Render(util.TruncateWidth("^d delete  tab focus", inner)))

	height := s.Height
	if height < 1 {
		height = 1
	}
	return t.Sidebar.Width(s.Width - 1).Height(height).Render(b.String())
}

func (s *Sidebar) row(i, width int) string {
	t := s.theme
	e := s.Entries[i]

	marker := "  "
	if s.Focused && i == s.Cursor {
		marker = t.SidebarCursor.Render("› ")
	}

	if e.ID == s.EditingID && s.EditView != "" {
		return marker + s.EditView
	}

	count := ""
	if e.Count > 0 {
		count = fmt.Sprintf(" %d", e.Count)
	}
	label := util.PadWidth(e.Title, width-2-len(count))

	style := t.SidebarItem
	if e.Current {
		style = t.SidebarActive
	}
	return marker + style.Render(label) + t.SidebarCount.Render(count)
}
