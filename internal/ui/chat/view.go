// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/fitchat-tui/internal/util"
)

// View renders the whole screen.
func (m Model) View() string {
	main := lipgloss.JoinVertical(lipgloss.Left,
		m.header.View(),
		m.viewport.View(),
		m.thinkingView(),
		m.inputView(),
		m.footerView(),
	)
	return lipgloss.JoinHorizontal(lipgloss.Top, m.sidebar.View(), main)
}

// thinkingView is the typing indicator row; blank while idle so the layout
// does not jump.
func (m Model) thinkingView() string {
	if !m.ex.Loading() {
		return ""
	}
	return " " + m.spinner.View() + " " + m.theme.Thinking.Render(ThinkingText)
}

func (m Model) inputView() string {
	width := m.width - m.sidebar.Width - 2
	if width < 4 {
		width = 4
	}
	return m.theme.InputBox.Width(width).Render(m.input.View())
}

func (m Model) footerView() string {
	width := m.width - m.sidebar.Width
	if m.notice != "" {
		return m.theme.Notice.Render(" " + util.TruncateWidth(m.notice, width-1))
	}

	var parts []string
	for _, b := range m.keys.FooterHelp() {
		h := b.Help()
		parts = append(parts, m.theme.FooterKey.Render(h.Key)+" "+m.theme.Footer.Render(h.Desc))
	}
	line := " " + strings.Join(parts, m.theme.Footer.Render(" · "))
	if lipgloss.Width(line) > width {
		return m.theme.Footer.Render(" " + util.TruncateWidth("tab sidebar · ^c quit", width-1))
	}
	return line
}
