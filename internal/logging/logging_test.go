// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"INFO", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
		{"loud", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSetup_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "fitchat.log")

	done, err := Setup(Options{Level: "info", Path: path})
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	zap.L().Debug("hidden")
	zap.L().Info("exchange completed", zap.String("session_id", "abc12345"))
	done()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "exchange completed") || !strings.Contains(out, "abc12345") {
		t.Errorf("log file = %q, want the info entry", out)
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("log file = %q, debug entry should be filtered", out)
	}
}

func TestNew_RequiresPath(t *testing.T) {
	if _, err := New(Options{Level: "info"}); err == nil {
		t.Error("New() error = nil, want error for empty path")
	}
}
