// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/jeranaias/fitchat-tui/internal/backend"
	"github.com/jeranaias/fitchat-tui/internal/model"
	"github.com/jeranaias/fitchat-tui/internal/ui/styles"
)

// EmptyText is shown for a session with no messages.
const EmptyText = "No messages yet. Ask about diet, recovery or injuries."

// =============================================================================
// MESSAGE LIST COMPONENT
// =============================================================================

// MessageList renders a session's messages, one block per line of text.
type MessageList struct {
	Width int
	theme *styles.Theme
}

// NewMessageList creates a message list.
func NewMessageList(theme *styles.Theme) *MessageList {
	return &MessageList{Width: 80, theme: theme}
}

// Render returns the content for the message viewport.
func (l *MessageList) Render(messages []model.Message) string {
	t := l.theme
	if len(messages) == 0 {
		return t.Empty.Render(EmptyText)
	}

	width := l.Width - 2
	if width < 10 {
		width = 10
	}

	blocks := make([]string, 0, len(messages))
	for _, msg := range messages {
		blocks = append(blocks, l.renderMessage(msg, width))
	}
	return strings.Join(blocks, "\n\n")
}

func (l *MessageList) renderMessage(msg model.Message, width int) string {
	t := l.theme

	label, line := t.BotLabel, t.BotLine
	if msg.Role == model.RoleUser {
		label, line = t.UserLabel, t.UserLine
	}
	if msg.Role == model.RoleBot && msg.Text == backend.UnreachableText {
		line = t.Warning
	}

	var b strings.Builder
	b.WriteString(label.Render(msg.Role.DisplayName()))
	for _, text := range msg.Lines() {
		b.WriteString("\n")
		// An empty line still takes a row.
		if text == "" {
			text = " "
		}
		b.WriteString(line.Width(width).Render(text))
	}
	return b.String()
}
