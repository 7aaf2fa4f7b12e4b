// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// session_cmd.go - Session administration commands.
//
// Every mutation goes through the session manager, so a command leaves the
// store in the same shape the chat UI would.

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromastyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/fitchat-tui/internal/export"
	"github.com/jeranaias/fitchat-tui/internal/model"
	"github.com/jeranaias/fitchat-tui/internal/session"
	"github.com/jeranaias/fitchat-tui/internal/util"
)

// sessionRow is the --json shape of one session list entry.
type sessionRow struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Messages int    `json:"messages"`
	Current  bool   `json:"current"`
}

func (a *app) sessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sessions",
		Aliases: []string{"session", "s"},
		Short:   "Manage stored chat sessions",
		Long: `Manage stored chat sessions.

Session ids may be abbreviated to any unique prefix.`,
	}
	cmd.AddCommand(
		a.sessionsListCmd(),
		a.sessionsShowCmd(),
		a.sessionsNewCmd(),
		a.sessionsRenameCmd(),
		a.sessionsSelectCmd(),
		a.sessionsDeleteCmd(),
		a.sessionsClearCmd(),
		a.sessionsResetCmd(),
		a.sessionsExportCmd(),
	)
	return cmd
}

// withManager opens the session manager for the duration of fn.
func (a *app) withManager(fn func(mgr *session.Manager) error) error {
	mgr, st, err := a.openManager()
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(mgr)
}

// resolveOr returns the session named by args[0], or the current session.
func resolveOr(mgr *session.Manager, args []string) (string, error) {
	if len(args) == 0 {
		return mgr.CurrentID(), nil
	}
	return mgr.Resolve(args[0])
}

func (a *app) sessionsListCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List sessions in sidebar order",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withManager(func(mgr *session.Manager) error {
				entries := mgr.List()
				if asJSON {
					rows := make([]sessionRow, 0, len(entries))
					for _, e := range entries {
						rows = append(rows, sessionRow{ID: e.ID, Title: e.Title, Messages: e.Count, Current: e.Current})
					}
					return writeJSON(cmd.OutOrStdout(), rows)
				}
				printSessionList(newPrinter(cmd.OutOrStdout()), entries)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

// printSessionList writes one row per session, marking the current one.
func printSessionList(p *printer, entries []session.Entry) {
	for _, e := range entries {
		marker := "  "
		title := util.PadWidth(util.TruncateWidth(e.Title, 32), 32)
		if e.Current {
			marker = "* "
			title = p.active.Render(title)
		}
		p.line(fmt.Sprintf("%s%s  %s  %s", marker, p.muted.Render(e.ID), title, p.label.Render(messageCount(e.Count))))
	}
}

func messageCount(n int) string {
	if n == 1 {
		return "1 message"
	}
	return fmt.Sprintf("%d messages", n)
}

func (a *app) sessionsShowCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Print the messages of a session (default: current)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withManager(func(mgr *session.Manager) error {
				id, err := resolveOr(mgr, args)
				if err != nil {
					return err
				}
				sess, _ := mgr.Get(id)
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), sess)
				}
				p := newPrinter(cmd.OutOrStdout())
				p.line(p.title.Render(sess.Title) + "  " + p.muted.Render(id))
				if sess.IsEmpty() {
					p.line(p.muted.Render("(no messages)"))
					return nil
				}
				for _, msg := range sess.Messages {
					style := p.bot
					if msg.Role == model.RoleUser {
						style = p.user
					}
					p.block(style.Render(msg.Role.DisplayName()+": "), msg.Text)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

func (a *app) sessionsNewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new [title]",
		Short: "Create a session and make it current",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withManager(func(mgr *session.Manager) error {
				id, err := mgr.NewChat()
				if err != nil {
					return err
				}
				if title := strings.TrimSpace(strings.Join(args, " ")); title != "" {
					if err := mgr.Rename(id, title); err != nil {
						return err
					}
				}
				fmt.Fprintln(cmd.OutOrStdout(), id)
				return nil
			})
		},
	}
}

func (a *app) sessionsRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <title>",
		Short: "Rename a session",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.TrimSpace(strings.Join(args[1:], " "))
			if title == "" {
				return errors.New("title is empty")
			}
			return a.withManager(func(mgr *session.Manager) error {
				id, err := mgr.Resolve(args[0])
				if err != nil {
					return err
				}
				return mgr.Rename(id, title)
			})
		},
	}
}

func (a *app) sessionsSelectCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "select <id>",
		Aliases: []string{"switch"},
		Short:   "Make a session current",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withManager(func(mgr *session.Manager) error {
				id, err := mgr.Resolve(args[0])
				if err != nil {
					return err
				}
				return mgr.Select(id)
			})
		},
	}
}

func (a *app) sessionsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a session",
		Long: `Delete a session.

Deleting the last remaining session replaces it with an empty one.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withManager(func(mgr *session.Manager) error {
				id, err := mgr.Resolve(args[0])
				if err != nil {
					return err
				}
				if err := mgr.DeleteChat(id); err != nil {
					return err
				}
				zap.L().Info("session deleted", zap.String("session", id))
				return nil
			})
		},
	}
}

func (a *app) sessionsClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear [id]",
		Short: "Remove every message of a session (default: current)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withManager(func(mgr *session.Manager) error {
				id, err := resolveOr(mgr, args)
				if err != nil {
					return err
				}
				return mgr.ClearSession(id)
			})
		},
	}
}

func (a *app) sessionsResetCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every stored session",
		Long: `Delete every stored session, including a store that can no longer
be read. The next start begins with a single empty "Chat 1".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to delete all sessions without --yes")
			}
			st, err := a.openStorage()
			if err != nil {
				return err
			}
			defer st.Close()
			if err := session.Reset(st, a.cfg.Storage.Key); err != nil {
				return err
			}
			zap.L().Info("session store reset", zap.String("key", a.cfg.Storage.Key))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm the reset")
	return cmd
}

func (a *app) sessionsExportCmd() *cobra.Command {
	var (
		format    string
		output    string
		theme     string
		skipEmpty bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the whole session store",
		Long: `Export the whole session store as json, text, markdown or html.

JSON keeps the stored shape and is highlighted when written to a terminal.`,
		Example: `  fitchat sessions export > backup.json
  fitchat sessions export -f markdown -o sessions.md
  fitchat sessions export -f html --theme light -o sessions.html`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := export.DefaultOptions()
			opts.Theme = theme
			opts.IncludeEmpty = !skipEmpty
			exp, err := export.ForFormat(format, opts)
			if err != nil {
				return err
			}

			return a.withManager(func(mgr *session.Manager) error {
				store := mgr.Snapshot()
				if output != "" {
					if err := export.WriteFile(store, exp, output); err != nil {
						return err
					}
					zap.L().Info("sessions exported", zap.String("path", output), zap.String("format", format))
					return nil
				}

				data, err := exp.Export(store)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if exp.FileExtension() == ".json" && colorEnabled(out) {
					if err := highlight(out, "json", string(data)); err == nil {
						return nil
					}
				}
				_, err = out.Write(data)
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "export format: json, text, markdown or html")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	cmd.Flags().StringVar(&theme, "theme", "dark", "html theme: dark or light")
	cmd.Flags().BoolVar(&skipEmpty, "skip-empty", false, "leave out sessions without messages (text, markdown, html)")
	return cmd
}

// highlight writes src with terminal syntax highlighting.
func highlight(w io.Writer, language, src string) error {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromastyles.Get("monokai")
	if style == nil {
		style = chromastyles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, src)
	if err != nil {
		return err
	}
	return formatter.Format(w, style, iterator)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
