// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"io"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme names accepted by NewTheme.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
	ThemeAuto  = "auto"
)

// ThinkingSpinner animates the typing indicator.
var ThinkingSpinner = spinner.MiniDot

// Theme holds all the styled components for the application.
type Theme struct {
	Name         string
	IsDark       bool
	ColorProfile termenv.Profile

	renderer *lipgloss.Renderer

	// ==========================================================================
	// SIDEBAR STYLES
	// ==========================================================================

	Sidebar         lipgloss.Style
	SidebarTitle    lipgloss.Style
	SidebarItem     lipgloss.Style
	SidebarActive   lipgloss.Style
	SidebarCursor   lipgloss.Style
	SidebarCount    lipgloss.Style
	RenameField     lipgloss.Style
	SidebarHelpText lipgloss.Style

	// ==========================================================================
	// HEADER STYLES
	// ==========================================================================

	Header        lipgloss.Style
	HeaderTitle   lipgloss.Style
	StatusOnline  lipgloss.Style
	StatusOffline lipgloss.Style
	StatusUnknown lipgloss.Style

	// ==========================================================================
	// MESSAGE STYLES
	// ==========================================================================

	UserLabel lipgloss.Style
	UserLine  lipgloss.Style
	BotLabel  lipgloss.Style
	BotLine   lipgloss.Style
	Warning   lipgloss.Style
	Empty     lipgloss.Style

	// ==========================================================================
	// INPUT AND FOOTER STYLES
	// ==========================================================================

	Thinking    lipgloss.Style
	InputBox    lipgloss.Style
	InputPrompt lipgloss.Style
	Placeholder lipgloss.Style
	Footer      lipgloss.Style
	FooterKey   lipgloss.Style
	Notice      lipgloss.Style
}

// NewTheme creates the named theme rendering to stdout. "auto" asks the
// terminal for its background.
func NewTheme(name string) *Theme {
	return NewThemeFor(os.Stdout, name)
}

// NewThemeFor creates the named theme rendering to w.
func NewThemeFor(w io.Writer, name string) *Theme {
	r := lipgloss.NewRenderer(w)

	var isDark bool
	switch name {
	case ThemeLight:
		isDark = false
	case ThemeAuto:
		isDark = termenv.HasDarkBackground()
	default:
		name = ThemeDark
		isDark = true
	}
	r.SetHasDarkBackground(isDark)

	t := &Theme{
		Name:         name,
		IsDark:       isDark,
		ColorProfile: r.ColorProfile(),
		renderer:     r,
	}
	t.initStyles()
	return t
}

// Renderer returns the lipgloss renderer the styles were built on.
func (t *Theme) Renderer() *lipgloss.Renderer {
	return t.renderer
}

// NewStyle returns a blank style bound to the theme's renderer.
func (t *Theme) NewStyle() lipgloss.Style {
	return t.renderer.NewStyle()
}

func (t *Theme) initStyles() {
	s := t.renderer.NewStyle

	// Sidebar
	t.Sidebar = s().
		Background(SurfaceDim).
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.SidebarTitle = s().
		Bold(true).
		Foreground(Lime).
		MarginBottom(1)

	t.SidebarItem = s().
		Foreground(TextSecondary)

	t.SidebarActive = s().
		Bold(true).
		Foreground(Lime).
		Background(SurfaceBright)

	t.SidebarCursor = s().
		Foreground(Amber)

	t.SidebarCount = s().
		Foreground(TextMuted)

	t.RenameField = s().
		Foreground(Amber).
		Underline(true)

	t.SidebarHelpText = s().
		Foreground(TextMuted).
		Italic(true)

	// Header
	t.Header = s().
		Background(SurfaceDim).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.HeaderTitle = s().
		Bold(true).
		Foreground(TextPrimary)

	t.StatusOnline = s().Foreground(Teal)
	t.StatusOffline = s().Foreground(Rose)
	t.StatusUnknown = s().Foreground(TextMuted)

	// Messages
	t.UserLabel = s().Bold(true).Foreground(Sky)
	t.UserLine = s().Foreground(TextPrimary)
	t.BotLabel = s().Bold(true).Foreground(Teal)
	t.BotLine = s().Foreground(TextPrimary)
	t.Warning = s().Foreground(Rose)
	t.Empty = s().Foreground(TextMuted).Italic(true)

	// Input and footer
	t.Thinking = s().Foreground(Teal).Italic(true)

	t.InputBox = s().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.InputPrompt = s().Foreground(Lime).Bold(true)
	t.Placeholder = s().Foreground(TextMuted).Italic(true)
	t.Footer = s().Foreground(TextMuted)
	t.FooterKey = s().Foreground(TextSecondary).Bold(true)
	t.Notice = s().Foreground(Amber)
}
