// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash commands of the line chat.
//
// # Key Types
//
//   - Command: a slash command with aliases, usage and handler
//   - Registry: lookup by name or alias plus the built-in session commands
//   - Parser: splits "/cmd arg 'quoted arg'" input into a ParseResult
//   - Completer: tab completion for command names and session ids
//
// # Usage
//
//	reg := commands.NewRegistry()
//	res := commands.NewParser(reg).Parse(line)
//	if res.IsCommand {
//	    out, err := reg.Execute(ctx, res)
//	}
package commands
