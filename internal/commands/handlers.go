// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jeranaias/fitchat-tui/internal/util"
)

// sessionTitleWidth is the title column of /sessions.
const sessionTitleWidth = 32

func handleHelp(ctx *Context, _ []string, _ string) (Result, error) {
	var b strings.Builder
	ctx.Registry.WriteHelp(&b)
	return Result{Output: strings.TrimRight(b.String(), "\n")}, nil
}

func handleQuit(*Context, []string, string) (Result, error) {
	return Result{Quit: true}, nil
}

func handleNew(ctx *Context, _ []string, _ string) (Result, error) {
	if _, err := ctx.Manager.NewChat(); err != nil {
		return Result{}, err
	}
	return Result{SessionChanged: true}, nil
}

func handleClear(ctx *Context, _ []string, _ string) (Result, error) {
	if err := ctx.Manager.ClearChat(); err != nil {
		return Result{}, err
	}
	return Result{Output: "Session cleared"}, nil
}

func handleSessions(ctx *Context, _ []string, _ string) (Result, error) {
	var b strings.Builder
	for i, e := range ctx.Manager.List() {
		if i > 0 {
			b.WriteString("\n")
		}
		marker := "  "
		if e.Current {
			marker = "* "
		}
		title := util.PadWidth(util.TruncateWidth(e.Title, sessionTitleWidth), sessionTitleWidth)
		fmt.Fprintf(&b, "%s%s  %s  %d", marker, e.ID, title, e.Count)
	}
	return Result{Output: b.String()}, nil
}

func handleSwitch(ctx *Context, args []string, _ string) (Result, error) {
	id, err := ctx.Manager.Resolve(args[0])
	if err != nil {
		return Result{}, err
	}
	if err := ctx.Manager.Select(id); err != nil {
		return Result{}, err
	}
	return Result{SessionChanged: true}, nil
}

// handleRename uses the raw argument text so titles need no quoting.
func handleRename(ctx *Context, _ []string, raw string) (Result, error) {
	title := strings.Trim(raw, `"'`)
	if strings.TrimSpace(title) == "" {
		return Result{}, fmt.Errorf("%w: /rename <title>", ErrUsage)
	}
	if err := ctx.Manager.Rename(ctx.Manager.CurrentID(), title); err != nil {
		return Result{}, err
	}
	return Result{SessionChanged: true}, nil
}

func handleDelete(ctx *Context, args []string, _ string) (Result, error) {
	id := ctx.Manager.CurrentID()
	if len(args) > 0 {
		var err error
		if id, err = ctx.Manager.Resolve(args[0]); err != nil {
			return Result{}, err
		}
	}
	current := id == ctx.Manager.CurrentID()
	if err := ctx.Manager.DeleteChat(id); err != nil {
		return Result{}, err
	}
	return Result{Output: "Deleted " + id, SessionChanged: current}, nil
}

func handleCopy(ctx *Context, _ []string, _ string) (Result, error) {
	sess := ctx.Manager.Current()
	if sess == nil {
		return Result{}, errors.New("no current session")
	}
	msg, ok := sess.LastBotMessage()
	if !ok {
		return Result{Output: "Nothing to copy yet"}, nil
	}
	if ctx.Clipboard == nil {
		return Result{}, errors.New("clipboard unavailable")
	}
	if err := ctx.Clipboard(msg.Text); err != nil {
		return Result{}, fmt.Errorf("clipboard unavailable: %w", err)
	}
	return Result{Output: "Copied last reply"}, nil
}
