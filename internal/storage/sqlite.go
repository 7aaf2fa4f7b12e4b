// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // sqlite driver
)

// SQLiteStorage keeps every key as a row of a single table.
type SQLiteStorage struct {
	db *sqlx.DB
}

// NewSQLiteStorage opens (creating if needed) the database at file.
func NewSQLiteStorage(file string) (*SQLiteStorage, error) {
	file, err := ExpandHome(file)
	if err != nil {
		return nil, err
	}
	if file != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sqlx.Connect("sqlite", file)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// One connection keeps ":memory:" databases coherent and serialises writers.
	db.SetMaxOpenConns(1)

	createTable := `
	CREATE TABLE IF NOT EXISTS local_storage (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)
	`
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create local_storage table: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// GetItem implements Storage.
func (s *SQLiteStorage) GetItem(key string) (string, error) {
	var value string
	err := s.db.Get(&value, "SELECT value FROM local_storage WHERE key = ?", key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", notFound(key)
		}
		return "", fmt.Errorf("failed to get item %s: %w", key, err)
	}
	return value, nil
}

// SetItem implements Storage.
func (s *SQLiteStorage) SetItem(key, value string) error {
	upsert := `
	INSERT INTO local_storage (key, value, updated_at) VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := s.db.Exec(upsert, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to set item %s: %w", key, err)
	}

	zap.L().Debug("storage item written",
		zap.String("backend", BackendSQLite),
		zap.String("key", key),
		zap.Int("bytes", len(value)),
	)
	return nil
}

// RemoveItem implements Storage.
func (s *SQLiteStorage) RemoveItem(key string) error {
	if _, err := s.db.Exec("DELETE FROM local_storage WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to remove item %s: %w", key, err)
	}
	return nil
}

// Close implements Storage.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
