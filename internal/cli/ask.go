// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - One-shot question against the current session.

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/jeranaias/fitchat-tui/internal/exchange"
)

type askOptions struct {
	newChat bool
	session string
	json    bool
	plain   bool
}

// askOutput is the --json shape of one exchange.
type askOutput struct {
	SessionID string `json:"session_id"`
	Title     string `json:"title"`
	Outcome   string `json:"outcome"`
	Reply     string `json:"reply"`
}

func (a *app) askCmd() *cobra.Command {
	var opts askOptions
	cmd := &cobra.Command{
		Use:   "ask <message>",
		Short: "Send one message and print the reply",
		Long: `Send one message to the backend and print the reply.

The message and reply are appended to the current session (or the one
chosen with --session / --new) exactly as in the full-screen chat.`,
		Example: `  fitchat ask "beginner muscle gain diet"
  fitchat ask --new "I have sore legs after squats"
  echo "rest day recovery" | fitchat ask -`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if text == "-" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
				text = strings.TrimRight(string(data), "\n")
			}
			return a.runAsk(cmd, text, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.newChat, "new", false, "start a new session first")
	cmd.Flags().StringVarP(&opts.session, "session", "s", "", "session id or unique prefix to ask in")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the result as JSON")
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "never render markdown")
	return cmd
}

var errEmptyMessage = errors.New("message is empty")

func (a *app) runAsk(cmd *cobra.Command, text string, opts askOptions) error {
	if strings.TrimSpace(text) == "" {
		return errEmptyMessage
	}

	mgr, st, err := a.openManager()
	if err != nil {
		return err
	}
	defer st.Close()

	switch {
	case opts.newChat:
		if _, err := mgr.NewChat(); err != nil {
			return err
		}
	case opts.session != "":
		id, err := mgr.Resolve(opts.session)
		if err != nil {
			return err
		}
		if err := mgr.Select(id); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	res, err := exchange.New(mgr, a.newClient()).Send(ctx, text)
	if err != nil {
		if errors.Is(err, exchange.ErrEmpty) {
			return errEmptyMessage
		}
		return err
	}
	if res.Outcome == exchange.Dropped {
		return errors.New("request cancelled")
	}

	out := cmd.OutOrStdout()
	if opts.json {
		title := ""
		if sess, ok := mgr.Get(res.SessionID); ok {
			title = sess.Title
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(askOutput{
			SessionID: res.SessionID,
			Title:     title,
			Outcome:   res.Outcome.String(),
			Reply:     res.Message.Text,
		})
	}

	p := newPrinter(out)
	if res.Outcome == exchange.Failed {
		p.line(p.warning.Render(res.Message.Text))
		return nil
	}
	if !opts.plain && isTerminal(out) {
		if rendered, err := renderMarkdown(res.Message.Text, terminalWidth(out)); err == nil {
			io.WriteString(out, rendered)
			return nil
		}
	}
	p.line(res.Message.Text)
	return nil
}

// renderMarkdown renders a reply with glamour, keeping each line of the
// reply on its own row.
func renderMarkdown(text string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
		glamour.WithPreservedNewLines(),
	)
	if err != nil {
		return "", err
	}
	return r.Render(text)
}
