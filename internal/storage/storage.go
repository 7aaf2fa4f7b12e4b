// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"fmt"
	"regexp"
)

// =============================================================================
// STORAGE INTERFACE
// =============================================================================

// Storage is a synchronous string key/value store.
type Storage interface {
	// GetItem returns the value stored under key, or ErrNotFound.
	GetItem(key string) (string, error)

	// SetItem stores value under key, replacing any previous value.
	SetItem(key, value string) error

	// RemoveItem deletes key. Removing a missing key is not an error.
	RemoveItem(key string) error

	// Close releases any resources held by the backend.
	Close() error
}

// Watcher is implemented by backends that can report changes made by other
// processes. The returned channel receives a value after each change to key
// and is closed when ctx is done.
type Watcher interface {
	Watch(ctx context.Context, key string) (<-chan struct{}, error)
}

// =============================================================================
// BACKENDS
// =============================================================================

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Backends lists every accepted backend name.
var Backends = []string{BackendFile, BackendSQLite, BackendMemory}

// Open creates the backend named by backend. For "file" path is a directory,
// for "sqlite" it is the database file, and for "memory" it is ignored.
func Open(backend, path string) (Storage, error) {
	switch backend {
	case BackendFile:
		return NewFileStorage(path)
	case BackendSQLite:
		return NewSQLiteStorage(path)
	case BackendMemory:
		return NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

// keyPattern restricts keys to characters that are safe as file names.
var keyPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// validateKey rejects keys that could escape the storage directory.
func validateKey(key string) error {
	if !keyPattern.MatchString(key) || key == "." || key == ".." {
		return &StorageError{Message: "invalid key", Key: key}
	}
	return nil
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrNotFound is returned by GetItem when no value is stored under the key.
// Use errors.Is(err, ErrNotFound) to check for this error.
var ErrNotFound = &StorageError{Message: "item not found"}

// StorageError represents a storage-related error.
type StorageError struct {
	Message string
	Key     string
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	if e.Key != "" {
		return e.Message + ": " + e.Key
	}
	return e.Message
}

// Is compares storage errors by message, so a keyed ErrNotFound still
// matches the sentinel.
func (e *StorageError) Is(target error) bool {
	t, ok := target.(*StorageError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

func notFound(key string) error {
	return &StorageError{Message: ErrNotFound.Message, Key: key}
}
