// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"fmt"

	"github.com/jeranaias/fitchat-tui/internal/util"
)

// AutoTitleLength is how many characters of the first user message become the
// session title.
const AutoTitleLength = 28

// Session is one chat: a title and its messages in append order.
type Session struct {
	Title    string    `json:"title"`
	Messages []Message `json:"messages"`
}

// NewSession creates an empty session with the given title.
func NewSession(title string) *Session {
	return &Session{Title: title, Messages: []Message{}}
}

// DefaultTitle returns the generated title for the n-th chat.
func DefaultTitle(n int) string {
	return fmt.Sprintf("Chat %d", n)
}

// AutoTitle derives a session title from a first message: its first
// AutoTitleLength characters, untrimmed.
func AutoTitle(text string) string {
	return util.TruncateRunes(text, AutoTitleLength)
}

// IsEmpty reports whether the session has no messages.
func (s *Session) IsEmpty() bool {
	return len(s.Messages) == 0
}

// Append adds msg at the end of the session.
func (s *Session) Append(msg Message) {
	s.Messages = append(s.Messages, msg)
}

// Clear removes every message and keeps the title.
func (s *Session) Clear() {
	s.Messages = []Message{}
}

// LastBotMessage returns the most recent bot message, if any.
func (s *Session) LastBotMessage() (Message, bool) {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == RoleBot {
			return s.Messages[i], true
		}
	}
	return Message{}, false
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	msgs := make([]Message, len(s.Messages))
	copy(msgs, s.Messages)
	return &Session{Title: s.Title, Messages: msgs}
}
