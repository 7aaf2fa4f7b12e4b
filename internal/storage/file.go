// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/jeranaias/fitchat-tui/internal/util"
)

// =============================================================================
// FILE STORAGE
// =============================================================================

// FileStorage stores each key as <BaseDir>/<key>.json.
type FileStorage struct {
	// BaseDir is the directory holding one file per key.
	// Default: ~/.fitchat/
	BaseDir string

	// Debounce coalesces bursts of file events into one notification.
	Debounce time.Duration
}

// NewFileStorage creates a file store rooted at dir, creating it if needed.
// A leading "~" is expanded to the user's home directory.
func NewFileStorage(dir string) (*FileStorage, error) {
	dir, err := ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &FileStorage{BaseDir: dir, Debounce: 100 * time.Millisecond}, nil
}

// GetItem implements Storage.
func (s *FileStorage) GetItem(key string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	data, err := os.ReadFile(s.filePath(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", notFound(key)
		}
		return "", err
	}
	return string(data), nil
}

// SetItem implements Storage. The write is atomic: a crash leaves either the
// previous value or the new one.
func (s *FileStorage) SetItem(key, value string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := util.AtomicWriteFile(s.filePath(key), []byte(value), 0600); err != nil {
		return err
	}
	zap.L().Debug("storage item written",
		zap.String("backend", BackendFile),
		zap.String("key", key),
		zap.Int("bytes", len(value)),
	)
	return nil
}

// RemoveItem implements Storage.
func (s *FileStorage) RemoveItem(key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := os.Remove(s.filePath(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Close implements Storage.
func (s *FileStorage) Close() error {
	return nil
}

// Path returns the file backing key.
func (s *FileStorage) Path(key string) string {
	return s.filePath(key)
}

// filePath returns the file path for a key.
func (s *FileStorage) filePath(key string) string {
	return filepath.Join(s.BaseDir, key+".json")
}

// =============================================================================
// WATCHING
// =============================================================================

// Watch implements Watcher. The directory is watched rather than the file
// because atomic writes replace the file, which would drop a file watch.
func (s *FileStorage) Watch(ctx context.Context, key string) (<-chan struct{}, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Add(s.BaseDir); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", s.BaseDir, err)
	}

	target := filepath.Clean(s.filePath(key))
	out := make(chan struct{}, 1)

	go func() {
		defer close(out)
		defer w.Close()

		var timer *time.Timer
		var fire <-chan time.Time

		for {
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return

			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) &&
					!ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
					continue
				}
				if timer == nil {
					timer = time.NewTimer(s.Debounce)
				} else {
					timer.Reset(s.Debounce)
				}
				fire = timer.C

			case <-fire:
				fire = nil
				select {
				case out <- struct{}{}:
				default:
					// A notification is already pending.
				}

			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				zap.L().Warn("storage watcher error", zap.Error(err))
			}
		}
	}()

	return out, nil
}

// ExpandHome replaces a leading "~" in path with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path == "~" || len(path) > 1 && path[0] == '~' && (path[1] == '/' || path[1] == filepath.Separator) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("could not determine home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}
