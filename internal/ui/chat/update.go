// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/fitchat-tui/internal/exchange"
)

const (
	// healthTimeout bounds one health probe.
	healthTimeout = 3 * time.Second

	// healthInterval is the time between health probes.
	healthInterval = 30 * time.Second
)

// =============================================================================
// COMMAND CREATORS
// =============================================================================

// HealthChecker probes the backend. *backend.Client implements it.
type HealthChecker interface {
	CheckHealth(ctx context.Context) error
}

// SendCmd performs the round trip of req off the update loop.
func SendCmd(ex *exchange.Exchange, req *exchange.Request) tea.Cmd {
	return func() tea.Msg {
		return ReplyMsg{Response: ex.Do(req)}
	}
}

// CheckHealthCmd probes the backend once.
func CheckHealthCmd(checker HealthChecker) tea.Cmd {
	if checker == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), healthTimeout)
		defer cancel()
		return HealthMsg{Err: checker.CheckHealth(ctx)}
	}
}

// healthTickCmd waits for the next probe.
func healthTickCmd() tea.Cmd {
	return tea.Tick(healthInterval, func(time.Time) tea.Msg {
		return healthTickMsg{}
	})
}

// WatchCmd waits for the next storage change event. It returns nil once the
// channel is closed.
func WatchCmd(changes <-chan struct{}) tea.Cmd {
	if changes == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return StoreChangedMsg{}
	}
}
