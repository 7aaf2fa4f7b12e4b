// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/fitchat-tui/internal/exchange"
	"github.com/jeranaias/fitchat-tui/internal/storage"
	"github.com/jeranaias/fitchat-tui/internal/ui/chat"
	"github.com/jeranaias/fitchat-tui/internal/ui/styles"
)

// runTUI opens the full-screen chat.
func (a *app) runTUI(cmd *cobra.Command) error {
	mgr, st, err := a.openManager()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	client := a.newClient()
	ex := exchange.New(mgr, client)

	var changes <-chan struct{}
	if a.cfg.Storage.Watch {
		if w, ok := st.(storage.Watcher); ok {
			ch, err := w.Watch(ctx, mgr.Key())
			if err != nil {
				zap.L().Warn("storage watch unavailable", zap.Error(err))
			} else {
				changes = ch
			}
		}
	}

	m := chat.New(chat.Options{
		Manager:      mgr,
		Exchange:     ex,
		Health:       client,
		Theme:        styles.NewTheme(a.cfg.UI.Theme),
		SidebarWidth: a.cfg.UI.SidebarWidth,
		Placeholder:  a.cfg.UI.Placeholder,
		Changes:      changes,
	})

	zap.L().Info("tui started",
		zap.String("backend", client.ChatURL()),
		zap.String("storage", a.cfg.Storage.Backend),
		zap.Int("sessions", mgr.Len()))

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	final, err := p.Run()
	if fm, ok := final.(chat.Model); ok {
		fm.Close()
	} else {
		m.Close()
	}
	if err != nil {
		return fmt.Errorf("chat UI failed: %w", err)
	}
	return nil
}
