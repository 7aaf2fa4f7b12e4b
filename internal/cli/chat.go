// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Line-oriented chat for terminals without full-screen support.
//
// Lines starting with / are commands (see /help); everything else is sent
// to the backend. Tab completes command names and session ids.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/fitchat-tui/internal/commands"
	"github.com/jeranaias/fitchat-tui/internal/config"
	"github.com/jeranaias/fitchat-tui/internal/exchange"
	"github.com/jeranaias/fitchat-tui/internal/session"
)

// lineReader reads one line of input after printing prompt.
type lineReader interface {
	Prompt(prompt string) (string, error)
}

// lineEditor provides input history and line editing for the REPL.
type lineEditor struct {
	line        *liner.State
	historyFile string
}

func newLineEditor(completer *commands.Completer) *lineEditor {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	if completer != nil {
		line.SetCompleter(completer.Complete)
	}

	e := &lineEditor{line: line}
	if dir, err := config.ConfigDir(); err == nil {
		e.historyFile = filepath.Join(dir, "chat_history")
		if f, err := os.Open(e.historyFile); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
	}
	return e
}

// Prompt reads a line and records non-blank input in the history.
func (e *lineEditor) Prompt(prompt string) (string, error) {
	input, err := e.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		e.line.AppendHistory(input)
	}
	return input, nil
}

// Close saves the history and restores the terminal.
func (e *lineEditor) Close() {
	if e.historyFile != "" {
		if err := config.EnsureConfigDir(); err == nil {
			if f, err := os.OpenFile(e.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
				e.line.WriteHistory(f)
				f.Close()
			}
		}
	}
	e.line.Close()
}

func (a *app) chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Chat line by line without the full-screen UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, st, err := a.openManager()
			if err != nil {
				return err
			}
			defer st.Close()

			r := newREPL(mgr, exchange.New(mgr, a.newClient()), cmd.OutOrStdout())
			completer := commands.NewCompleter(r.registry)
			completer.SessionsFn = func() []string {
				var ids []string
				for _, e := range mgr.List() {
					ids = append(ids, e.ID)
				}
				return ids
			}
			editor := newLineEditor(completer)
			defer editor.Close()
			r.in = editor
			return r.run(cmd.Context())
		},
	}
}

// =============================================================================
// REPL
// =============================================================================

type repl struct {
	mgr      *session.Manager
	ex       *exchange.Exchange
	in       lineReader
	out      *printer
	registry *commands.Registry
	parser   *commands.Parser
	cmdCtx   *commands.Context
}

func newREPL(mgr *session.Manager, ex *exchange.Exchange, w io.Writer) *repl {
	reg := commands.NewRegistry()
	return &repl{
		mgr:      mgr,
		ex:       ex,
		out:      newPrinter(w),
		registry: reg,
		parser:   commands.NewParser(reg),
		cmdCtx:   &commands.Context{Manager: mgr, Clipboard: clipboard.WriteAll, Registry: reg},
	}
}

func (r *repl) run(ctx context.Context) error {
	r.banner()
	for {
		input, err := r.in.Prompt("you › ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		parsed := r.parser.Parse(input)
		if !parsed.IsCommand {
			r.send(ctx, input)
			continue
		}
		res, err := r.registry.Execute(r.cmdCtx, parsed)
		if err != nil {
			zap.L().Debug("chat command failed", zap.String("command", parsed.CommandName), zap.Error(err))
			r.out.line(r.out.warning.Render(err.Error()))
			continue
		}
		if res.Quit {
			return nil
		}
		if res.Output != "" {
			r.out.line(res.Output)
		}
		if res.SessionChanged {
			r.banner()
		}
	}
}

func (r *repl) banner() {
	if sess := r.mgr.Current(); sess != nil {
		r.out.line(r.out.title.Render(sess.Title) + r.out.muted.Render(fmt.Sprintf("  (%d messages, /help for commands)", len(sess.Messages))))
	}
}

// send runs one exchange. Ctrl+C while waiting cancels only this request.
func (r *repl) send(ctx context.Context, text string) {
	reqCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	res, err := r.ex.Send(reqCtx, text)
	if err != nil {
		if !errors.Is(err, exchange.ErrEmpty) {
			r.out.line(r.out.warning.Render(err.Error()))
		}
		return
	}
	switch res.Outcome {
	case exchange.Delivered:
		r.out.block(r.out.bot.Render("coach › "), res.Message.Text)
	case exchange.Failed:
		r.out.line(r.out.warning.Render(res.Message.Text))
	case exchange.Dropped:
		r.out.line(r.out.muted.Render("Request cancelled"))
	}
}
