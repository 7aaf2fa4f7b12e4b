// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides the fitchat command tree.
//
// Running fitchat without a subcommand opens the full-screen chat. The
// subcommands cover terminals and scripts that cannot use it:
//
//	fitchat ask "what should I eat to bulk?"
//	fitchat chat
//	fitchat sessions list
//	fitchat serve
//	fitchat config show
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/fitchat-tui/internal/backend"
	"github.com/jeranaias/fitchat-tui/internal/config"
	"github.com/jeranaias/fitchat-tui/internal/logging"
	"github.com/jeranaias/fitchat-tui/internal/session"
	"github.com/jeranaias/fitchat-tui/internal/storage"
)

// Version information, set at build time via -ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// logAnnotation marks commands that log to stderr instead of the log file.
const logAnnotation = "fitchat/log"

// app carries the state shared by every command of one invocation.
type app struct {
	configPath  string
	storageKind string
	storagePath string
	backendURL  string
	logLevel    string

	cfg         *config.Config
	stopLogging func()
}

// Execute runs the command tree against os.Args.
func Execute() error {
	return run(os.Args[1:], os.Stdout, os.Stderr)
}

// run builds a fresh command tree, executes args and releases the logger.
func run(args []string, stdout, stderr io.Writer) error {
	a := &app{}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	defer a.close()
	return root.Execute()
}

// NewRootCmd returns the root command with every subcommand attached.
func NewRootCmd() *cobra.Command {
	return (&app{}).rootCmd()
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "fitchat",
		Short: "Terminal chat client for a fitness coaching backend",
		Long: `fitchat keeps multiple chat sessions with a fitness coaching backend.

Each message is sent as one POST /chat request; sessions are stored
locally and survive restarts. Run without arguments for the full-screen
chat, or use the subcommands below.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default ~/.fitchat/config.toml)")
	flags.StringVar(&a.storageKind, "storage", "", "storage backend: file, sqlite or memory")
	flags.StringVar(&a.storagePath, "storage-path", "", "storage directory (file) or database file (sqlite)")
	flags.StringVar(&a.backendURL, "backend-url", "", "chat backend base URL")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error")

	root.AddCommand(
		a.askCmd(),
		a.chatCmd(),
		a.sessionsCmd(),
		a.serveCmd(),
		a.configCmd(),
	)
	return root
}

// setup loads the config, applies flag overrides and starts logging.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	a.cfg = cfg

	opts := logging.Options{Level: cfg.Log.Level, Path: cfg.LogPath()}
	if cmd.Annotations[logAnnotation] == "stderr" {
		opts.Stderr = true
	}
	stop, err := logging.Setup(opts)
	if err != nil {
		return err
	}
	a.stopLogging = stop
	zap.L().Debug("command started", zap.String("command", cmd.CommandPath()))
	return nil
}

// loadConfig reads the config file named by --config (or the default
// location) and applies the global flag overrides.
func (a *app) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if a.configPath != "" {
		cfg, err = config.LoadFromPath(a.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if a.storageKind != "" {
		cfg.Storage.Backend = a.storageKind
	}
	if a.storagePath != "" {
		cfg.Storage.Path = a.storagePath
	}
	if a.backendURL != "" {
		cfg.Backend.URL = a.backendURL
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

func (a *app) close() {
	if a.stopLogging != nil {
		a.stopLogging()
		a.stopLogging = nil
	}
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// openStorage opens the configured storage adapter.
func (a *app) openStorage() (storage.Storage, error) {
	st, err := storage.Open(a.cfg.Storage.Backend, a.cfg.StoragePath())
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", a.cfg.Storage.Backend, err)
	}
	return st, nil
}

// openManager opens storage and rehydrates the session store. The caller
// closes the returned storage.
func (a *app) openManager() (*session.Manager, storage.Storage, error) {
	st, err := a.openStorage()
	if err != nil {
		return nil, nil, err
	}
	mgr, err := session.Load(session.Config{Storage: st, Key: a.cfg.Storage.Key})
	if err != nil {
		st.Close()
		if errors.Is(err, session.ErrCorruptStore) {
			return nil, nil, fmt.Errorf("%w (run `fitchat sessions reset --yes` to start over)", err)
		}
		return nil, nil, err
	}
	return mgr, st, nil
}

// newClient builds the backend client from the config.
func (a *app) newClient() *backend.Client {
	return backend.NewClientWithConfig(&backend.ClientConfig{
		BaseURL: a.cfg.Backend.URL,
		Timeout: a.cfg.Timeout(),
	})
}
