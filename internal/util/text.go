// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// UNICODE: all truncation counts runes or display cells, never bytes, so a
// multi-byte character is never split.

// TruncateRunes returns at most maxRunes runes of s. Nothing is appended and
// no whitespace is trimmed.
func TruncateRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes])
}

// TruncateWidth shortens s to fit maxWidth terminal cells, ending with "…"
// when anything was cut. Wide (CJK, emoji) characters count as two cells.
func TruncateWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	return runewidth.Truncate(s, maxWidth, "…")
}

// PadWidth right-pads s with spaces to exactly width cells, truncating first
// if it is too long.
func PadWidth(s string, width int) string {
	s = TruncateWidth(s, width)
	if gap := width - runewidth.StringWidth(s); gap > 0 {
		s += strings.Repeat(" ", gap)
	}
	return s
}

// SplitLines splits text on "\n" the way the message pane renders it: every
// embedded newline starts a new block, and empty lines are kept.
func SplitLines(text string) []string {
	return strings.Split(text, "\n")
}
