// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"errors"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// =============================================================================
// SESSION STORE
// =============================================================================

// SessionStore is the persisted root object: every session keyed by id in
// insertion order, plus the id of the selected one.
//
// The invariant CurrentID ∈ Sessions is maintained by the session manager;
// EnsureCurrent restores it after decoding untrusted data.
type SessionStore struct {
	CurrentID string
	sessions  *orderedmap.OrderedMap[string, *Session]
}

// NewSessionStore creates a store with no sessions.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: orderedmap.New[string, *Session]()}
}

// NewDefaultStore creates the first-launch store: a single empty "Chat 1"
// session under id, selected.
func NewDefaultStore(id string) *SessionStore {
	s := NewSessionStore()
	s.Put(id, NewSession(DefaultTitle(1)))
	s.CurrentID = id
	return s
}

// Len returns the number of sessions.
func (s *SessionStore) Len() int {
	return s.sessions.Len()
}

// Get returns the session stored under id.
func (s *SessionStore) Get(id string) (*Session, bool) {
	return s.sessions.Get(id)
}

// Has reports whether id keys a session.
func (s *SessionStore) Has(id string) bool {
	_, ok := s.sessions.Get(id)
	return ok
}

// Put stores sess under id. A new id goes to the end of the order; an
// existing id keeps its position.
func (s *SessionStore) Put(id string, sess *Session) {
	s.sessions.Set(id, sess)
}

// Remove deletes the session stored under id and reports whether it existed.
func (s *SessionStore) Remove(id string) bool {
	_, ok := s.sessions.Delete(id)
	return ok
}

// Current returns the selected session, or nil if CurrentID is dangling.
func (s *SessionStore) Current() *Session {
	sess, _ := s.sessions.Get(s.CurrentID)
	return sess
}

// Keys returns the session ids in insertion order.
func (s *SessionStore) Keys() []string {
	keys := make([]string, 0, s.sessions.Len())
	for pair := s.sessions.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// First returns the oldest session id.
func (s *SessionStore) First() (string, bool) {
	pair := s.sessions.Oldest()
	if pair == nil {
		return "", false
	}
	return pair.Key, true
}

// Each calls fn for every session in insertion order until fn returns false.
func (s *SessionStore) Each(fn func(id string, sess *Session) bool) {
	for pair := s.sessions.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value) {
			return
		}
	}
}

// EnsureCurrent restores the CurrentID invariant: a dangling CurrentID moves
// to the first session, and an empty store gets a fresh default session under
// newID. It reports whether anything changed.
func (s *SessionStore) EnsureCurrent(newID func() string) bool {
	if s.Has(s.CurrentID) {
		return false
	}
	if first, ok := s.First(); ok {
		s.CurrentID = first
		return true
	}
	id := newID()
	s.Put(id, NewSession(DefaultTitle(1)))
	s.CurrentID = id
	return true
}

// Clone returns a deep copy with the same key order.
func (s *SessionStore) Clone() *SessionStore {
	out := NewSessionStore()
	out.CurrentID = s.CurrentID
	s.Each(func(id string, sess *Session) bool {
		out.Put(id, sess.Clone())
		return true
	})
	return out
}

// =============================================================================
// JSON ENCODING
// =============================================================================

// storeJSON is the wire shape. The ordered map encodes as a JSON object whose
// keys keep insertion order.
type storeJSON struct {
	CurrentID string                                   `json:"currentId"`
	Sessions  *orderedmap.OrderedMap[string, *Session] `json:"sessions"`
}

// ErrNoSessions is returned when decoding a store without a sessions object.
var ErrNoSessions = errors.New("session store has no sessions object")

// MarshalJSON implements json.Marshaler.
func (s *SessionStore) MarshalJSON() ([]byte, error) {
	return json.Marshal(storeJSON{CurrentID: s.CurrentID, Sessions: s.sessions})
}

// UnmarshalJSON implements json.Unmarshaler. Key order in the input becomes
// the insertion order of the store.
func (s *SessionStore) UnmarshalJSON(data []byte) error {
	aux := storeJSON{Sessions: orderedmap.New[string, *Session]()}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Sessions == nil {
		return ErrNoSessions
	}
	for pair := aux.Sessions.Oldest(); pair != nil; pair = pair.Next() {
		switch {
		case pair.Value == nil:
			aux.Sessions.Set(pair.Key, NewSession(""))
		case pair.Value.Messages == nil:
			pair.Value.Messages = []Message{}
		}
	}
	s.CurrentID = aux.CurrentID
	s.sessions = aux.Sessions
	return nil
}
