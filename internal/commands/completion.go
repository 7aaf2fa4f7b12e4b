// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"sort"
	"strings"
)

// =============================================================================
// COMPLETER
// =============================================================================

// Completer handles tab completion for commands and arguments.
type Completer struct {
	registry *Registry

	// SessionsFn returns the session ids to complete, in display order.
	SessionsFn func() []string
}

// NewCompleter creates a new completer with the given registry.
func NewCompleter(registry *Registry) *Completer {
	return &Completer{registry: registry}
}

// Complete returns full-line candidates for line, in the form a line editor
// substitutes for the current input.
func (c *Completer) Complete(line string) []string {
	if !strings.HasPrefix(line, "/") {
		return nil
	}

	name, arg, hasArg := strings.Cut(line, " ")
	if !hasArg {
		var out []string
		for _, n := range c.registry.Names() {
			if strings.HasPrefix(n, strings.ToLower(name)) {
				out = append(out, n+" ")
			}
		}
		return out
	}

	cmd := c.registry.Get(name)
	if cmd == nil || !cmd.CompleteSessions || c.SessionsFn == nil || strings.Contains(strings.TrimLeft(arg, " "), " ") {
		return nil
	}
	arg = strings.TrimLeft(arg, " ")
	var out []string
	for _, id := range c.SessionsFn() {
		if strings.HasPrefix(id, arg) {
			out = append(out, name+" "+id)
		}
	}
	sort.Strings(out)
	return out
}
