// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session owns the chat session store and every transition on it.
//
// A Manager wraps a model.SessionStore and a storage.Storage. Each mutating
// operation (new chat, delete, clear, rename, append) updates the store and
// then writes the whole store, serialized as JSON, under one storage key.
// The invariant that CurrentID names an existing session holds after every
// operation.
//
// # Usage
//
//	mgr, err := session.Load(session.Config{Storage: st, Key: "fitness-chat-sessions"})
//	if errors.Is(err, session.ErrCorruptStore) {
//	    // refuse to start; `fitchat sessions reset` clears the key
//	}
//	id, _ := mgr.NewChat()
//	mgr.AppendUser(id, "best diet for muscle gain")
//
// The Manager is safe for concurrent use.
package session
