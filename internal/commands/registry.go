// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jeranaias/fitchat-tui/internal/session"
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// Command is a slash command that can be executed.
type Command struct {
	// Name is the primary command name (e.g., "/help")
	Name string

	// Aliases are alternative names (e.g., "/h", "/?")
	Aliases []string

	// Description is shown in help
	Description string

	// Usage shows argument syntax (e.g., "/switch <id>")
	Usage string

	// MinArgs is the number of required arguments.
	MinArgs int

	// CompleteSessions completes the first argument with session ids.
	CompleteSessions bool

	// Handler runs the command.
	Handler func(ctx *Context, args []string, raw string) (Result, error)
}

// Context is what a handler operates on.
type Context struct {
	Manager *session.Manager

	// Clipboard writes text to the system clipboard.
	Clipboard func(string) error

	// Registry is the registry the command was found in, for /help.
	Registry *Registry
}

// Result reports what a handler did.
type Result struct {
	// Output is printed as-is when not empty.
	Output string

	// SessionChanged is set when the current session changed.
	SessionChanged bool

	// Quit ends the chat.
	Quit bool
}

var (
	// ErrUnknownCommand is returned for an unregistered command name.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrUsage is returned when required arguments are missing.
	ErrUsage = errors.New("usage")
)

// =============================================================================
// COMMAND REGISTRY
// =============================================================================

// Registry holds all registered commands.
type Registry struct {
	commands map[string]*Command
	aliases  map[string]*Command
}

// NewRegistry creates a registry with all built-in commands.
func NewRegistry() *Registry {
	r := &Registry{
		commands: make(map[string]*Command),
		aliases:  make(map[string]*Command),
	}
	r.registerBuiltins()
	return r
}

// Register adds a command, replacing any command of the same name.
func (r *Registry) Register(cmd *Command) {
	r.commands[cmd.Name] = cmd
	for _, alias := range cmd.Aliases {
		r.aliases[alias] = cmd
	}
}

// Get retrieves a command by name or alias. Lookup ignores case.
func (r *Registry) Get(name string) *Command {
	name = strings.ToLower(name)
	if cmd, ok := r.commands[name]; ok {
		return cmd
	}
	return r.aliases[name]
}

// All returns every command sorted by name.
func (r *Registry) All() []*Command {
	cmds := make([]*Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		cmds = append(cmds, cmd)
	}
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name < cmds[j].Name })
	return cmds
}

// Names returns every name and alias, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.commands)+len(r.aliases))
	for name := range r.commands {
		names = append(names, name)
	}
	for alias := range r.aliases {
		names = append(names, alias)
	}
	sort.Strings(names)
	return names
}

// Execute runs a parsed command.
func (r *Registry) Execute(ctx *Context, res ParseResult) (Result, error) {
	cmd := res.Command
	if cmd == nil {
		return Result{}, fmt.Errorf("%w %s (try /help)", ErrUnknownCommand, res.CommandName)
	}
	if len(res.Args) < cmd.MinArgs {
		return Result{}, fmt.Errorf("%w: %s", ErrUsage, cmd.Usage)
	}
	if ctx.Registry == nil {
		ctx.Registry = r
	}
	return cmd.Handler(ctx, res.Args, res.RawArgs)
}

// WriteHelp writes one line per command.
func (r *Registry) WriteHelp(w io.Writer) {
	fmt.Fprintln(w, "Commands:")
	for _, cmd := range r.All() {
		usage := cmd.Usage
		if usage == "" {
			usage = cmd.Name
		}
		fmt.Fprintf(w, "  %-18s %s\n", usage, cmd.Description)
	}
}

// =============================================================================
// BUILT-IN COMMANDS
// =============================================================================

func (r *Registry) registerBuiltins() {
	r.Register(&Command{
		Name:        "/help",
		Aliases:     []string{"/h", "/?"},
		Description: "show this help",
		Handler:     handleHelp,
	})
	r.Register(&Command{
		Name:        "/quit",
		Aliases:     []string{"/q", "/exit"},
		Description: "leave the chat",
		Handler:     handleQuit,
	})
	r.Register(&Command{
		Name:        "/new",
		Aliases:     []string{"/n"},
		Description: "start a new session",
		Handler:     handleNew,
	})
	r.Register(&Command{
		Name:        "/clear",
		Aliases:     []string{"/c"},
		Description: "clear the current session",
		Handler:     handleClear,
	})
	r.Register(&Command{
		Name:        "/sessions",
		Aliases:     []string{"/ls"},
		Description: "list sessions",
		Handler:     handleSessions,
	})
	r.Register(&Command{
		Name:             "/switch",
		Aliases:          []string{"/load", "/s"},
		Description:      "switch session (id or unique prefix)",
		Usage:            "/switch <id>",
		MinArgs:          1,
		CompleteSessions: true,
		Handler:          handleSwitch,
	})
	r.Register(&Command{
		Name:        "/rename",
		Description: "rename the current session",
		Usage:       "/rename <title>",
		MinArgs:     1,
		Handler:     handleRename,
	})
	r.Register(&Command{
		Name:             "/delete",
		Aliases:          []string{"/rm"},
		Description:      "delete a session (default: current)",
		Usage:            "/delete [id]",
		CompleteSessions: true,
		Handler:          handleDelete,
	})
	r.Register(&Command{
		Name:        "/copy",
		Description: "copy the last reply to the clipboard",
		Handler:     handleCopy,
	})
}
