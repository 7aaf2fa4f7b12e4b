// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across fitchat.
//
// # Key Functions
//
//   - AtomicWriteFile: crash-safe file writes (temp file, fsync, rename)
//   - NewID: random base-36 identifiers for chat sessions
//   - TruncateRunes, TruncateWidth: Unicode-safe truncation for titles and
//     sidebar labels
package util
