// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions and messages.
//
// # Key Types
//
//   - Message: one chat line, role "user" or "bot", immutable once appended
//   - Session: a titled, ordered list of messages
//   - SessionStore: the persisted root, an insertion-ordered id -> Session
//     mapping plus the id of the selected session
//
// # Usage
//
//	store := model.NewDefaultStore(util.NewID())
//	s := store.Current()
//	s.Messages = append(s.Messages, model.NewUserMessage("hi"))
//	data, err := json.Marshal(store)
//
// The JSON form is the one written under the "fitness-chat-sessions" key:
//
//	{"currentId":"k3j9x0qa","sessions":{"k3j9x0qa":{"title":"Chat 1","messages":[]}}}
package model
