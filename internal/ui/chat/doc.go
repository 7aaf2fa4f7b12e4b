// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat is the root Bubble Tea model of the fitchat TUI.

The screen has a sessions sidebar on the left and, on the right, a header,
the message viewport, the typing indicator, the text input and a footer.
Every session mutation goes through the session manager, which persists the
whole store on each change; the model re-reads the manager after every
update, so rendering is a function of manager state plus focus.

Sending a message runs as a tea.Cmd: the exchange appends the user message
at once, the command performs the HTTP round trip in the background and a
ReplyMsg completes the exchange on the update loop.

# Keys

	enter      send (input) / select (sidebar) / save (rename)
	tab        switch focus between input and sidebar; saves a rename
	up/down    move the sidebar cursor
	ctrl+n     new chat
	ctrl+r     rename
	ctrl+d     delete
	ctrl+l     clear the current chat
	ctrl+y     copy the last reply
	esc        cancel a rename or the in-flight request
	ctrl+c     quit
*/
package chat
