// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package exchange runs the send-message cycle of a chat widget.
//
// The cycle is a small state machine: Idle, then Sending while one request
// is in flight, then back to Idle once the reply (or the failure warning)
// has been appended. It is split into three steps so a Bubble Tea program
// can run the blocking part inside a tea.Cmd:
//
//	req, err := ex.Begin(ctx, input)   // guard, optimistic append, loading on
//	out := ex.Do(req)                  // HTTP round trip, may block
//	res, err := ex.Complete(out)       // append reply, loading off
//
// Cancel abandons the in-flight request: loading clears immediately and the
// late reply, if any, is discarded.
package exchange
