// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "github.com/jeranaias/fitchat-tui/internal/util"

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleBot:
		return "Coach"
	default:
		return string(r)
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleBot
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is a single chat line. Messages are values and are never edited
// after they have been appended to a session.
type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// NewUserMessage creates a message sent by the user.
func NewUserMessage(text string) Message {
	return Message{Role: RoleUser, Text: text}
}

// NewBotMessage creates a message received from the backend.
func NewBotMessage(text string) Message {
	return Message{Role: RoleBot, Text: text}
}

// Lines returns the text split into the blocks the message pane stacks
// vertically, one per embedded newline.
func (m Message) Lines() []string {
	return util.SplitLines(m.Text)
}
