// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the fitchat TUI.

Colors (colors.go) are lipgloss AdaptiveColor values; the Theme (theme.go)
binds them to a renderer whose background is forced dark or light from
ui.theme, or detected with termenv when the theme is "auto".

	theme := styles.NewTheme(cfg.UI.Theme)
	title := theme.HeaderTitle.Render(session.Title)
*/
package styles
