// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import "github.com/jeranaias/fitchat-tui/internal/exchange"

// =============================================================================
// BUBBLE TEA MESSAGES
// =============================================================================

// ReplyMsg carries the finished HTTP round trip of an exchange.
type ReplyMsg struct {
	Response exchange.Response
}

// HealthMsg reports the result of a backend health probe.
type HealthMsg struct {
	Err error
}

// healthTickMsg schedules the next health probe.
type healthTickMsg struct{}

// StoreChangedMsg reports that the stored sessions changed on disk.
type StoreChangedMsg struct{}
