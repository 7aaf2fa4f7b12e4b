// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides the visual pieces of the fitchat TUI.

  - Header (header.go) - session title, clear shortcut, backend status.
  - Sidebar (sidebar.go) - session list with active highlight, cursor and
    inline rename field.
  - MessageList (message.go) - message pane content, one block per line.

Components hold no session state of their own; the chat model copies what
they need from the session manager before each render.
*/
package components
