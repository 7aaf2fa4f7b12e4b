// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/jeranaias/fitchat-tui/internal/model"
	"github.com/jeranaias/fitchat-tui/internal/storage"
	"github.com/jeranaias/fitchat-tui/internal/util"
)

// DefaultKey is the storage key the store is persisted under.
const DefaultKey = "fitness-chat-sessions"

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrCorruptStore is returned when the stored value cannot be decoded.
	// The stored value is left untouched.
	ErrCorruptStore = errors.New("stored session data is corrupt")

	// ErrUnknownSession is returned when an id names no session.
	ErrUnknownSession = errors.New("unknown session")

	// ErrAmbiguousSession is returned when an id prefix matches several sessions.
	ErrAmbiguousSession = errors.New("ambiguous session id")
)

// =============================================================================
// SESSION MANAGER
// =============================================================================

// Manager owns the session store and persists it after every change.
type Manager struct {
	mu sync.Mutex

	store   *model.SessionStore
	storage storage.Storage
	key     string
	newID   func() string

	// Rename mode
	editingID string
	editValue string

	// lastSaved is the last value written or read, used by Reload to tell
	// external changes from our own writes.
	lastSaved string
}

// Config holds configuration for the session manager.
type Config struct {
	// Storage is where the store is persisted.
	Storage storage.Storage

	// Key is the storage key (default: DefaultKey).
	Key string

	// NewID generates session ids (default: util.NewID).
	NewID func() string
}

// Entry is one row of the session list.
type Entry struct {
	ID      string
	Title   string
	Count   int
	Current bool
}

// Load reads the store from cfg.Storage, creating the default "Chat 1" store
// when nothing is stored yet. A stored value that cannot be decoded yields
// ErrCorruptStore. A store whose current id is dangling is repaired.
func Load(cfg Config) (*Manager, error) {
	if cfg.Storage == nil {
		return nil, errors.New("session: storage is required")
	}
	if cfg.Key == "" {
		cfg.Key = DefaultKey
	}
	if cfg.NewID == nil {
		cfg.NewID = util.NewID
	}

	m := &Manager{
		storage: cfg.Storage,
		key:     cfg.Key,
		newID:   cfg.NewID,
	}

	raw, err := cfg.Storage.GetItem(cfg.Key)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		m.store = model.NewDefaultStore(m.newID())
		zap.L().Info("created default session store", zap.String("key", cfg.Key))
	case err != nil:
		return nil, fmt.Errorf("failed to read session store: %w", err)
	default:
		store, err := decode(raw)
		if err != nil {
			return nil, err
		}
		m.store = store
		m.lastSaved = raw
		if m.store.EnsureCurrent(m.newID) {
			zap.L().Warn("repaired session store current id", zap.String("current_id", m.store.CurrentID))
		}
	}

	if err := m.persistLocked(); err != nil {
		return nil, err
	}
	return m, nil
}

// Reset removes the stored value under key. The next Load starts fresh.
func Reset(st storage.Storage, key string) error {
	if key == "" {
		key = DefaultKey
	}
	if err := st.RemoveItem(key); err != nil {
		return fmt.Errorf("failed to reset session store: %w", err)
	}
	return nil
}

func decode(raw string) (*model.SessionStore, error) {
	store := model.NewSessionStore()
	if err := json.Unmarshal([]byte(raw), store); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptStore, err)
	}
	return store, nil
}

// persistLocked writes the whole store. Caller must hold m.mu.
func (m *Manager) persistLocked() error {
	data, err := json.Marshal(m.store)
	if err != nil {
		return fmt.Errorf("failed to encode session store: %w", err)
	}
	value := string(data)
	if err := m.storage.SetItem(m.key, value); err != nil {
		return fmt.Errorf("failed to persist session store: %w", err)
	}
	m.lastSaved = value
	return nil
}

// =============================================================================
// QUERIES
// =============================================================================

// CurrentID returns the id of the selected session.
func (m *Manager) CurrentID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.CurrentID
}

// Current returns a copy of the selected session.
func (m *Manager) Current() *model.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.Current().Clone()
}

// Get returns a copy of the session stored under id.
func (m *Manager) Get(id string) (*model.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.store.Get(id)
	if !ok {
		return nil, false
	}
	return sess.Clone(), true
}

// Has reports whether id names a session.
func (m *Manager) Has(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.Has(id)
}

// Len returns the number of sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.Len()
}

// List returns the sessions in insertion order.
func (m *Manager) List() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := make([]Entry, 0, m.store.Len())
	m.store.Each(func(id string, sess *model.Session) bool {
		entries = append(entries, Entry{
			ID:      id,
			Title:   sess.Title,
			Count:   len(sess.Messages),
			Current: id == m.store.CurrentID,
		})
		return true
	})
	return entries
}

// Snapshot returns a deep copy of the whole store.
func (m *Manager) Snapshot() *model.SessionStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.Clone()
}

// Resolve maps an id or unique id prefix to a session id.
func (m *Manager) Resolve(prefix string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.store.Has(prefix) {
		return prefix, nil
	}
	if prefix == "" {
		return "", ErrUnknownSession
	}
	var match string
	for _, id := range m.store.Keys() {
		if strings.HasPrefix(id, prefix) {
			if match != "" {
				return "", fmt.Errorf("%w: %s", ErrAmbiguousSession, prefix)
			}
			match = id
		}
	}
	if match == "" {
		return "", fmt.Errorf("%w: %s", ErrUnknownSession, prefix)
	}
	return match, nil
}

// =============================================================================
// TRANSITIONS
// =============================================================================

// NewChat adds an empty session titled "Chat {n}", n being the session count
// after the add, selects it and returns its id. Titles are never renumbered,
// so duplicates can appear after deletions.
func (m *Manager) NewChat() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.newID()
	m.store.Put(id, model.NewSession(model.DefaultTitle(m.store.Len()+1)))
	m.store.CurrentID = id
	return id, m.persistLocked()
}

// Select makes id the current session.
func (m *Manager) Select(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.store.Has(id) {
		return fmt.Errorf("%w: %s", ErrUnknownSession, id)
	}
	if m.store.CurrentID == id {
		return nil
	}
	m.store.CurrentID = id
	return m.persistLocked()
}

// DeleteChat removes id. If it was current, the first remaining session is
// selected, or a fresh "Chat 1" is created when none remain. Deleting an
// unknown id does nothing.
func (m *Manager) DeleteChat(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.store.Remove(id) {
		return nil
	}
	if m.editingID == id {
		m.editingID, m.editValue = "", ""
	}
	if id == m.store.CurrentID {
		m.store.CurrentID = ""
		m.store.EnsureCurrent(m.newID)
	}
	return m.persistLocked()
}

// ClearChat empties the current session's messages and keeps its title.
func (m *Manager) ClearChat() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.store.Current().Clear()
	return m.persistLocked()
}

// ClearSession empties the messages of id.
func (m *Manager) ClearSession(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.store.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSession, id)
	}
	sess.Clear()
	return m.persistLocked()
}

// Append adds msg to the session id. It reports false, without error, when
// the session no longer exists.
func (m *Manager) Append(id string, msg model.Message) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.store.Get(id)
	if !ok {
		return false, nil
	}
	sess.Append(msg)
	return true, m.persistLocked()
}

// AppendUser adds a user message to id, first retitling the session from
// the text when it has no messages yet. It reports whether the session was
// renamed.
func (m *Manager) AppendUser(id, text string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.store.Get(id)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownSession, id)
	}
	renamed := sess.IsEmpty()
	sess.Append(model.NewUserMessage(text))
	if renamed {
		sess.Title = model.AutoTitle(text)
	}
	return renamed, m.persistLocked()
}

// AutoRename titles id with the first runes of text.
func (m *Manager) AutoRename(id, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.store.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSession, id)
	}
	sess.Title = model.AutoTitle(text)
	return m.persistLocked()
}

// Rename sets the title of id. An empty title keeps the current one.
func (m *Manager) Rename(id, title string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.store.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSession, id)
	}
	if title != "" {
		sess.Title = title
	}
	return m.persistLocked()
}

// =============================================================================
// RENAME MODE
// =============================================================================

// StartEdit enters rename mode for id, seeding the edit value with its title.
func (m *Manager) StartEdit(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.store.Get(id)
	if !ok {
		return false
	}
	m.editingID = id
	m.editValue = sess.Title
	return true
}

// SetEditValue updates the pending title.
func (m *Manager) SetEditValue(v string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.editValue = v
}

// Editing returns the session being renamed and the pending title.
func (m *Manager) Editing() (id, value string, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.editingID, m.editValue, m.editingID != ""
}

// SaveEdit applies the pending title and leaves rename mode. An empty value
// keeps the prior title.
func (m *Manager) SaveEdit() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, value := m.editingID, m.editValue
	m.editingID, m.editValue = "", ""
	if id == "" {
		return nil
	}
	sess, ok := m.store.Get(id)
	if !ok {
		return nil
	}
	if value != "" {
		sess.Title = value
	}
	return m.persistLocked()
}

// CancelEdit leaves rename mode without changing anything.
func (m *Manager) CancelEdit() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.editingID, m.editValue = "", ""
}

// =============================================================================
// EXTERNAL CHANGES
// =============================================================================

// Reload re-reads the store from storage and reports whether it differed
// from what this Manager last wrote. A corrupt value returns ErrCorruptStore
// and leaves the in-memory store as it was; a removed value is treated as
// no change.
func (m *Manager) Reload() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	raw, err := m.storage.GetItem(m.key)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read session store: %w", err)
	}
	if raw == m.lastSaved {
		return false, nil
	}

	store, err := decode(raw)
	if err != nil {
		return false, err
	}
	m.store = store
	m.lastSaved = raw
	if m.editingID != "" && !m.store.Has(m.editingID) {
		m.editingID, m.editValue = "", ""
	}
	if m.store.EnsureCurrent(m.newID) {
		if err := m.persistLocked(); err != nil {
			return true, err
		}
	}
	return true, nil
}

// Key returns the storage key.
func (m *Manager) Key() string {
	return m.key
}

// Storage returns the storage backend.
func (m *Manager) Storage() storage.Storage {
	return m.storage
}
