// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/fitchat-tui/internal/backend"
	"github.com/jeranaias/fitchat-tui/internal/model"
	"github.com/jeranaias/fitchat-tui/internal/session"
	"github.com/jeranaias/fitchat-tui/internal/ui/styles"
)

func testTheme() *styles.Theme {
	return styles.NewThemeFor(&bytes.Buffer{}, styles.ThemeDark)
}

func entries(n, current int) []session.Entry {
	out := make([]session.Entry, n)
	for i := range out {
		out[i] = session.Entry{
			ID:      string(rune('a' + i)),
			Title:   model.DefaultTitle(i + 1),
			Current: i == current,
		}
	}
	return out
}

// =============================================================================
// HEADER TESTS
// =============================================================================

func TestBackendStatusString(t *testing.T) {
	tests := []struct {
		status BackendStatus
		want   string
	}{
		{StatusOnline, "online"},
		{StatusOffline, "offline"},
		{StatusUnknown, "checking"},
		{BackendStatus(99), "checking"},
	}
	for _, tc := range tests {
		if got := tc.status.String(); !strings.Contains(got, tc.want) {
			t.Errorf("BackendStatus(%d).String() = %q, want it to contain %q", tc.status, got, tc.want)
		}
	}
}

func TestHeaderView(t *testing.T) {
	h := NewHeader(testTheme())
	h.Title = "Leg day recovery"
	h.Status = StatusOnline
	h.SetWidth(60)

	view := h.View()
	if !strings.Contains(view, "Leg day recovery") {
		t.Errorf("header missing title: %q", view)
	}
	if !strings.Contains(view, "online") {
		t.Errorf("header missing status: %q", view)
	}
	if w := lipgloss.Width(view); w != 60 {
		t.Errorf("header width = %d, want 60", w)
	}
}

func TestHeaderView_LongTitleTruncated(t *testing.T) {
	h := NewHeader(testTheme())
	h.Title = strings.Repeat("x", 200)
	h.SetWidth(50)

	if w := lipgloss.Width(h.View()); w != 50 {
		t.Errorf("header width = %d, want 50", w)
	}
}

// =============================================================================
// SIDEBAR TESTS
// =============================================================================

func TestSidebar_ActiveAndOrder(t *testing.T) {
	s := NewSidebar(testTheme(), 24)
	s.Height = 20
	s.SetEntries(entries(3, 1))

	view := s.View()
	i1 := strings.Index(view, "Chat 1")
	i2 := strings.Index(view, "Chat 2")
	i3 := strings.Index(view, "Chat 3")
	if i1 < 0 || i2 < 0 || i3 < 0 || !(i1 < i2 && i2 < i3) {
		t.Fatalf("sidebar rows out of order: %q", view)
	}
	if w := lipgloss.Width(view); w != 24 {
		t.Errorf("sidebar width = %d, want 24", w)
	}
}

func TestSidebar_Cursor(t *testing.T) {
	s := NewSidebar(testTheme(), 24)
	s.SetEntries(entries(3, 2))
	s.CursorToActive()

	if id, _ := s.Selected(); id != "c" {
		t.Errorf("Selected() = %q, want %q", id, "c")
	}
	s.MoveCursor(5)
	if s.Cursor != 2 {
		t.Errorf("Cursor = %d, want clamp to 2", s.Cursor)
	}
	s.MoveCursor(-10)
	if s.Cursor != 0 {
		t.Errorf("Cursor = %d, want clamp to 0", s.Cursor)
	}

	s.SetEntries(entries(0, 0))
	if _, ok := s.Selected(); ok {
		t.Error("Selected() on empty sidebar should report false")
	}
}

func TestSidebar_CursorMarkerOnlyWhenFocused(t *testing.T) {
	s := NewSidebar(testTheme(), 24)
	s.SetEntries(entries(2, 0))

	if strings.Contains(s.View(), "›") {
		t.Error("unfocused sidebar should not draw a cursor")
	}
	s.Focused = true
	if !strings.Contains(s.View(), "›") {
		t.Error("focused sidebar should draw a cursor")
	}
}

func TestSidebar_EditView(t *testing.T) {
	s := NewSidebar(testTheme(), 30)
	s.SetEntries(entries(2, 0))
	s.EditingID = "b"
	s.EditView = "RENAME-FIELD"

	view := s.View()
	if !strings.Contains(view, "RENAME-FIELD") {
		t.Errorf("rename field not drawn: %q", view)
	}
	if strings.Contains(view, "Chat 2") {
		t.Errorf("title of the edited row should be replaced: %q", view)
	}
}

func TestSidebar_TruncatesWideTitles(t *testing.T) {
	s := NewSidebar(testTheme(), 16)
	s.SetEntries([]session.Entry{{ID: "a", Title: "高蛋白饮食计划和恢复建议", Current: true}})

	for _, line := range strings.Split(s.View(), "\n") {
		if w := lipgloss.Width(line); w > 16 {
			t.Errorf("line %q is %d cells, want <= 16", line, w)
		}
	}
}

func TestSidebar_ScrollsToCursor(t *testing.T) {
	s := NewSidebar(testTheme(), 24)
	s.Height = sidebarChrome + 3
	s.SetEntries(entries(10, 0))
	s.Cursor = 9

	view := s.View()
	if !strings.Contains(view, "Chat 10") {
		t.Errorf("cursor row not visible: %q", view)
	}
	if strings.Contains(view, "Chat 1\n") || strings.Contains(view, "Chat 1 ") {
		t.Errorf("first row should be scrolled out: %q", view)
	}
}

// =============================================================================
// MESSAGE LIST TESTS
// =============================================================================

func TestMessageList_Empty(t *testing.T) {
	l := NewMessageList(testTheme())
	if got := l.Render(nil); !strings.Contains(got, EmptyText) {
		t.Errorf("Render(nil) = %q, want empty text", got)
	}
}

func TestMessageList_LinesPerMessage(t *testing.T) {
	l := NewMessageList(testTheme())
	l.Width = 40

	out := l.Render([]model.Message{
		model.NewUserMessage("cutting diet"),
		model.NewBotMessage("Cutting Diet:\nline one\n\nline three"),
	})

	lines := strings.Split(out, "\n")
	// You, text, blank separator, Coach, four text lines
	if len(lines) != 8 {
		t.Fatalf("got %d lines, want 8: %q", len(lines), out)
	}
	if !strings.Contains(lines[0], "You") || !strings.Contains(lines[3], "Coach") {
		t.Errorf("role labels misplaced: %q", out)
	}
	if !strings.Contains(lines[7], "line three") {
		t.Errorf("last line = %q", lines[7])
	}
}

func TestMessageList_Warning(t *testing.T) {
	l := NewMessageList(testTheme())
	out := l.Render([]model.Message{model.NewBotMessage(backend.UnreachableText)})
	if !strings.Contains(out, "Backend not reachable") {
		t.Errorf("warning text missing: %q", out)
	}
}

func TestSidebar_RowAt(t *testing.T) {
	s := NewSidebar(testTheme(), 24)
	s.Height = 20
	s.SetEntries(entries(3, 0))

	lines := strings.Split(s.View(), "\n")
	for y := 0; y < 6; y++ {
		id, ok := s.RowAt(y)
		if y < sidebarHeaderRows || y >= sidebarHeaderRows+3 {
			if ok {
				t.Errorf("RowAt(%d) = %q, want no row", y, id)
			}
			continue
		}
		want := model.DefaultTitle(y - sidebarHeaderRows + 1)
		if !ok || !strings.Contains(lines[y], want) {
			t.Errorf("RowAt(%d) = %q, %v; line %q should hold %q", y, id, ok, lines[y], want)
		}
	}
}
