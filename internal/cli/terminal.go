// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// terminal.go - Terminal detection and shared output styles.

package cli

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/jeranaias/fitchat-tui/internal/ui/styles"
)

// defaultWrapWidth is used when the terminal width is unknown.
const defaultWrapWidth = 80

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// terminalWidth returns the width of w, or defaultWrapWidth.
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return defaultWrapWidth
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return defaultWrapWidth
	}
	return width
}

// colorEnabled reports whether styled output should be written to w.
// NO_COLOR always wins.
func colorEnabled(w io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return isTerminal(w)
}

// =============================================================================
// STYLES
// =============================================================================

// printer writes styled lines to one writer. Styles collapse to plain text
// when the writer is not a color terminal.
type printer struct {
	w        io.Writer
	renderer *lipgloss.Renderer

	title   lipgloss.Style
	label   lipgloss.Style
	muted   lipgloss.Style
	active  lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	user    lipgloss.Style
	bot     lipgloss.Style
}

func newPrinter(w io.Writer) *printer {
	r := lipgloss.NewRenderer(w)
	if !colorEnabled(w) {
		r.SetColorProfile(termenv.Ascii)
	}
	return &printer{
		w:        w,
		renderer: r,
		title:    r.NewStyle().Bold(true).Foreground(styles.Teal),
		label:    r.NewStyle().Foreground(styles.TextSecondary),
		muted:    r.NewStyle().Foreground(styles.TextMuted),
		active:   r.NewStyle().Bold(true).Foreground(styles.Lime),
		success:  r.NewStyle().Foreground(styles.Lime),
		warning:  r.NewStyle().Foreground(styles.Amber),
		user:     r.NewStyle().Bold(true).Foreground(styles.Sky),
		bot:      r.NewStyle().Bold(true).Foreground(styles.Lime),
	}
}

// line writes s followed by a newline.
func (p *printer) line(s string) {
	io.WriteString(p.w, s+"\n")
}

// block writes each line of s with the given prefix.
func (p *printer) block(prefix, s string) {
	for _, l := range strings.Split(s, "\n") {
		p.line(prefix + l)
	}
}
