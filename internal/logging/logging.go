// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging configures the process-wide zap logger.
//
// The TUI owns the terminal, so by default logs go to a file. The serve
// command logs to stderr instead. Setup installs the logger with
// zap.ReplaceGlobals; packages log through zap.L().
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options controls logger construction.
type Options struct {
	// Level is debug, info, warn or error.
	Level string
	// Path is the log file. Ignored when Stderr is set.
	Path string
	// Stderr sends logs to standard error in console format.
	Stderr bool
}

// ParseLevel maps a level name to a zapcore.Level. Unknown names map to info.
func ParseLevel(level string) zapcore.Level {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		return zapcore.InfoLevel
	}
	return l
}

// New builds a logger from opts without installing it.
func New(opts Options) (*zap.Logger, error) {
	var config zap.Config
	if opts.Stderr {
		config = zap.NewDevelopmentConfig()
		config.OutputPaths = []string{"stderr"}
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		if opts.Path == "" {
			return nil, fmt.Errorf("log path is required")
		}
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		config = zap.NewProductionConfig()
		config.OutputPaths = []string{opts.Path}
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		config.Sampling = nil
	}
	config.ErrorOutputPaths = []string{"stderr"}
	config.Level = zap.NewAtomicLevelAt(ParseLevel(opts.Level))
	config.DisableStacktrace = true

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// Setup builds a logger from opts and installs it as the global logger.
// The returned function syncs the logger and restores the previous globals.
func Setup(opts Options) (func(), error) {
	logger, err := New(opts)
	if err != nil {
		return nil, err
	}
	restore := zap.ReplaceGlobals(logger.With(zap.Int("pid", os.Getpid())))
	return func() {
		_ = logger.Sync()
		restore()
	}, nil
}
