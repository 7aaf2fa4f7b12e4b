// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// serve_cmd.go - Local coach backend.

package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jeranaias/fitchat-tui/internal/coach"
	"github.com/jeranaias/fitchat-tui/internal/server"
)

// shutdownTimeout bounds the graceful drain on SIGINT/SIGTERM.
const shutdownTimeout = 5 * time.Second

func (a *app) serveCmd() *cobra.Command {
	var (
		addr      string
		knowledge string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local fitness coach backend",
		Long: `Run the rule-based fitness coach as a local backend.

The server answers POST /chat with {"intent", "reply"} and GET /health,
on the address the chat client uses by default (127.0.0.1:8000).`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{logAnnotation: "stderr"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			if knowledge == "" {
				knowledge = a.cfg.Server.KnowledgePath
			}
			return a.runServe(cmd.Context(), addr, knowledge)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().StringVar(&knowledge, "knowledge", "", "YAML file replacing the built-in knowledge base")
	return cmd
}

func (a *app) runServe(ctx context.Context, addr, knowledgePath string) error {
	var (
		kb  *coach.Knowledge
		err error
	)
	if knowledgePath != "" {
		kb, err = coach.LoadKnowledge(knowledgePath)
	} else {
		kb, err = coach.DefaultKnowledge()
	}
	if err != nil {
		return err
	}

	cors := server.DefaultCORSConfig()
	if len(a.cfg.Server.AllowedOrigins) > 0 {
		cors.AllowedOrigins = a.cfg.Server.AllowedOrigins
	}
	srv := server.New(coach.New(kb), server.Options{
		Addr:         addr,
		RateLimitRPS: a.cfg.Server.RateLimitRPS,
		CORS:         cors,
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.ListenAndServe)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		zap.L().Error("coach backend stopped", zap.Error(err))
		return err
	}
	return nil
}
