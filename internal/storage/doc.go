// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the key/value persistence behind fitchat's
// session store.
//
// The Storage interface mirrors browser local storage: string values under
// string keys, read and written synchronously. Three backends implement it:
//
//   - FileStorage: one JSON file per key in a directory, written atomically;
//     also implements Watcher via fsnotify
//   - SQLiteStorage: a single-table key/value database (modernc.org/sqlite)
//   - MemoryStorage: in-process map, used by tests and `--storage memory`
//
// # Usage
//
//	st, err := storage.Open(storage.BackendFile, "~/.fitchat")
//	if err != nil {
//	    return err
//	}
//	defer st.Close()
//
//	value, err := st.GetItem("fitness-chat-sessions")
//	if errors.Is(err, storage.ErrNotFound) {
//	    // first launch
//	}
package storage
