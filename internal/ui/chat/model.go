// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/fitchat-tui/internal/exchange"
	"github.com/jeranaias/fitchat-tui/internal/session"
	"github.com/jeranaias/fitchat-tui/internal/ui/components"
	"github.com/jeranaias/fitchat-tui/internal/ui/styles"
)

// ThinkingText is the typing indicator label.
const ThinkingText = "AI is thinking…"

// DefaultSidebarWidth is used when Options.SidebarWidth is zero.
const DefaultSidebarWidth = 28

// Layout rows outside the message viewport: header (2), typing indicator (1),
// input box (3), footer (1).
const chromeRows = 7

// =============================================================================
// FOCUS
// =============================================================================

// Focus is the part of the screen receiving keys.
type Focus int

const (
	FocusInput Focus = iota
	FocusSidebar
	FocusRename
)

// String returns the focus name.
func (f Focus) String() string {
	switch f {
	case FocusInput:
		return "input"
	case FocusSidebar:
		return "sidebar"
	case FocusRename:
		return "rename"
	default:
		return "unknown"
	}
}

// =============================================================================
// CHAT MODEL
// =============================================================================

// Options configures a Model.
type Options struct {
	Manager  *session.Manager
	Exchange *exchange.Exchange
	// Health probes the backend for the header status. Optional.
	Health HealthChecker
	Theme  *styles.Theme

	SidebarWidth int
	Placeholder  string

	// Changes delivers storage change events. Optional.
	Changes <-chan struct{}

	// Clipboard writes text to the system clipboard. Nil selects
	// clipboard.WriteAll.
	Clipboard func(string) error
}

// Model is the Bubble Tea model for the chat screen.
type Model struct {
	mgr    *session.Manager
	ex     *exchange.Exchange
	health HealthChecker
	theme  *styles.Theme
	keys   KeyMap

	// Components
	header   *components.Header
	sidebar  *components.Sidebar
	messages *components.MessageList
	viewport viewport.Model
	input    textinput.Model
	rename   textinput.Model
	spinner  spinner.Model

	focus        Focus
	width        int
	height       int
	sidebarWidth int
	notice       string

	// scrollKey changes whenever the message list or loading state does;
	// the viewport jumps to the bottom when it changes.
	scrollKey string

	changes   <-chan struct{}
	clipboard func(string) error

	// ctx parents every exchange; cancelled on quit.
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates the chat model.
func New(opts Options) Model {
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme(styles.ThemeDark)
	}
	width := opts.SidebarWidth
	if width <= 0 {
		width = DefaultSidebarWidth
	}
	clip := opts.Clipboard
	if clip == nil {
		clip = clipboard.WriteAll
	}

	ti := textinput.New()
	ti.Prompt = "› "
	ti.Placeholder = opts.Placeholder
	ti.CharLimit = 0
	ti.PromptStyle = theme.InputPrompt
	ti.PlaceholderStyle = theme.Placeholder
	ti.Focus()

	rn := textinput.New()
	rn.Prompt = ""
	rn.CharLimit = 200
	rn.TextStyle = theme.RenameField

	sp := spinner.New()
	sp.Spinner = styles.ThinkingSpinner
	sp.Style = theme.Thinking

	ctx, cancel := context.WithCancel(context.Background())

	m := Model{
		mgr:          opts.Manager,
		ex:           opts.Exchange,
		health:       opts.Health,
		theme:        theme,
		keys:         DefaultKeyMap(),
		header:       components.NewHeader(theme),
		sidebar:      components.NewSidebar(theme, width),
		messages:     components.NewMessageList(theme),
		viewport:     viewport.New(80, 20),
		input:        ti,
		rename:       rn,
		spinner:      sp,
		focus:        FocusInput,
		sidebarWidth: width,
		changes:      opts.Changes,
		clipboard:    clip,
		ctx:          ctx,
		cancel:       cancel,
	}
	m.layout(80, 24)
	m.refresh()
	m.sidebar.CursorToActive()
	return m
}

// Init starts the cursor blink, the first health probe and the storage watch.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		CheckHealthCmd(m.health),
		WatchCmd(m.changes),
	)
}

// Update handles one message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout(msg.Width, msg.Height)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case ReplyMsg:
		return m.handleReply(msg)

	case HealthMsg:
		if msg.Err != nil {
			m.header.Status = components.StatusOffline
		} else {
			m.header.Status = components.StatusOnline
		}
		return m, healthTickCmd()

	case healthTickMsg:
		return m, CheckHealthCmd(m.health)

	case StoreChangedMsg:
		return m.handleStoreChanged()

	case spinner.TickMsg:
		if !m.ex.Loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	switch m.focus {
	case FocusRename:
		m.rename, cmd = m.rename.Update(msg)
	default:
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.ex.Cancel()
		m.cancel()
		return m, tea.Quit
	}

	m.notice = ""

	if m.focus == FocusRename {
		return m.handleRenameKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Cancel):
		if m.ex.Cancel() {
			m.notice = "Request cancelled"
		}
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.NewChat):
		if _, err := m.mgr.NewChat(); err != nil {
			m.fail("new chat", err)
		}
		m.refresh()
		m.sidebar.CursorToActive()
		return m, nil

	case key.Matches(msg, m.keys.Rename):
		return m.startRename()

	case key.Matches(msg, m.keys.Delete):
		m.deleteChat(m.targetID())
		return m, nil

	case key.Matches(msg, m.keys.Clear):
		if err := m.mgr.ClearChat(); err != nil {
			m.fail("clear chat", err)
		}
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.Copy):
		m.copyLastReply()
		return m, nil

	case key.Matches(msg, m.keys.Focus):
		return m.toggleFocus()

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		return m, nil
	}

	if m.focus == FocusSidebar {
		return m.handleSidebarKey(msg)
	}

	if key.Matches(msg, m.keys.Submit) {
		return m.send()
	}
	if key.Matches(msg, m.keys.Up, m.keys.Down) {
		m = m.setFocus(FocusSidebar)
		return m.handleSidebarKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.sidebar.MoveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.sidebar.MoveCursor(1)
	case key.Matches(msg, m.keys.Submit):
		if id, ok := m.sidebar.Selected(); ok {
			m.selectChat(id)
		}
		m = m.setFocus(FocusInput)
		return m, textinput.Blink
	case msg.Type == tea.KeyRunes:
		// Typing goes back to the input.
		m = m.setFocus(FocusInput)
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleRenameKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit), key.Matches(msg, m.keys.Focus):
		// Enter and blur both save.
		m.mgr.SetEditValue(m.rename.Value())
		if err := m.mgr.SaveEdit(); err != nil {
			m.fail("rename", err)
		}
		m = m.setFocus(FocusInput)
		m.refresh()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Cancel):
		m.mgr.CancelEdit()
		m = m.setFocus(FocusInput)
		m.refresh()
		return m, textinput.Blink
	}

	var cmd tea.Cmd
	m.rename, cmd = m.rename.Update(msg)
	m.mgr.SetEditValue(m.rename.Value())
	m.refresh()
	return m, cmd
}

// =============================================================================
// MOUSE HANDLING
// =============================================================================

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.MouseLeft && msg.X < m.sidebar.Width {
		if id, ok := m.sidebar.RowAt(msg.Y); ok {
			if m.focus == FocusRename {
				m.mgr.SetEditValue(m.rename.Value())
				if err := m.mgr.SaveEdit(); err != nil {
					m.fail("rename", err)
				}
				m = m.setFocus(FocusInput)
			}
			m.selectChat(id)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// =============================================================================
// ACTIONS
// =============================================================================

// send starts an exchange for the input text. Blank input and a request in
// flight are no-ops and leave the input as typed.
func (m Model) send() (tea.Model, tea.Cmd) {
	req, err := m.ex.Begin(m.ctx, m.input.Value())
	switch {
	case errors.Is(err, exchange.ErrEmpty), errors.Is(err, exchange.ErrBusy):
		return m, nil
	case err != nil:
		m.fail("send", err)
		m.refresh()
		return m, nil
	}

	m.input.Reset()
	m.refresh()
	return m, tea.Batch(SendCmd(m.ex, req), m.spinner.Tick)
}

func (m Model) handleReply(msg ReplyMsg) (tea.Model, tea.Cmd) {
	res, err := m.ex.Complete(msg.Response)
	if err != nil {
		m.fail("save reply", err)
	}
	switch res.Outcome {
	case exchange.Delivered:
		m.header.Status = components.StatusOnline
	case exchange.Failed:
		m.header.Status = components.StatusOffline
	}
	m.refresh()
	return m, nil
}

func (m Model) handleStoreChanged() (tea.Model, tea.Cmd) {
	changed, err := m.mgr.Reload()
	if err != nil {
		m.fail("reload sessions", err)
	}
	if changed {
		if id, ok := m.ex.PendingSession(); ok && !m.mgr.Has(id) {
			m.ex.Cancel()
		}
		if m.focus == FocusRename {
			if _, _, ok := m.mgr.Editing(); !ok {
				m = m.setFocus(FocusInput)
			}
		}
		m.refresh()
	}
	return m, WatchCmd(m.changes)
}

func (m Model) startRename() (tea.Model, tea.Cmd) {
	id := m.targetID()
	if !m.mgr.StartEdit(id) {
		return m, nil
	}
	sess, _ := m.mgr.Get(id)
	m.rename.SetValue(sess.Title)
	m.rename.CursorEnd()
	m = m.setFocus(FocusRename)
	m.refresh()
	return m, textinput.Blink
}

func (m *Model) deleteChat(id string) {
	if id == "" {
		return
	}
	// A reply for a deleted session has nowhere to go.
	m.ex.CancelSession(id)
	if err := m.mgr.DeleteChat(id); err != nil {
		m.fail("delete chat", err)
	}
	m.refresh()
	if m.focus != FocusSidebar {
		m.sidebar.CursorToActive()
	}
}

func (m *Model) selectChat(id string) {
	if err := m.mgr.Select(id); err != nil {
		m.fail("select chat", err)
	}
	m.refresh()
	m.sidebar.CursorToActive()
}

func (m *Model) copyLastReply() {
	msg, ok := m.mgr.Current().LastBotMessage()
	if !ok {
		m.notice = "Nothing to copy yet"
		return
	}
	if err := m.clipboard(msg.Text); err != nil {
		m.notice = "Clipboard unavailable"
		zap.L().Warn("clipboard write failed", zap.Error(err))
		return
	}
	m.notice = "Copied last reply"
}

// targetID is the sidebar row under the cursor when the sidebar has focus,
// the current session otherwise.
func (m Model) targetID() string {
	if m.focus == FocusSidebar {
		if id, ok := m.sidebar.Selected(); ok {
			return id
		}
	}
	return m.mgr.CurrentID()
}

func (m Model) toggleFocus() (tea.Model, tea.Cmd) {
	if m.focus == FocusSidebar {
		m = m.setFocus(FocusInput)
		return m, textinput.Blink
	}
	m = m.setFocus(FocusSidebar)
	return m, nil
}

func (m Model) setFocus(f Focus) Model {
	m.focus = f
	m.sidebar.Focused = f == FocusSidebar
	switch f {
	case FocusInput:
		m.rename.Blur()
		m.input.Focus()
	case FocusSidebar:
		m.rename.Blur()
		m.input.Blur()
		m.sidebar.CursorToActive()
	case FocusRename:
		m.input.Blur()
		m.rename.Focus()
	}
	return m
}

func (m *Model) fail(op string, err error) {
	m.notice = fmt.Sprintf("Could not %s: %v", op, err)
	zap.L().Error("session operation failed", zap.String("op", op), zap.Error(err))
}

// =============================================================================
// STATE SYNC
// =============================================================================

// refresh copies manager state into the components and keeps the viewport
// pinned to the bottom when messages or loading change.
func (m *Model) refresh() {
	current := m.mgr.Current()
	m.header.Title = current.Title

	m.sidebar.SetEntries(m.mgr.List())
	m.sidebar.EditingID = ""
	m.sidebar.EditView = ""
	if id, _, ok := m.mgr.Editing(); ok && m.focus == FocusRename {
		m.sidebar.EditingID = id
		m.sidebar.EditView = m.rename.View()
	}

	m.viewport.SetContent(m.messages.Render(current.Messages))

	sk := fmt.Sprintf("%s/%d/%t", m.mgr.CurrentID(), len(current.Messages), m.ex.Loading())
	if sk != m.scrollKey {
		m.scrollKey = sk
		m.viewport.GotoBottom()
	}
}

// layout sizes every component for a width × height terminal.
func (m *Model) layout(width, height int) {
	m.width, m.height = width, height

	sw := m.sidebarWidth
	if sw > width/2 {
		sw = width / 2
	}
	m.sidebar.Width = sw
	m.sidebar.Height = height

	main := width - sw
	m.header.SetWidth(main)
	m.messages.Width = main

	m.viewport.Width = main
	m.viewport.Height = height - chromeRows
	if m.viewport.Height < 1 {
		m.viewport.Height = 1
	}

	// Box border and padding take four columns, the prompt two.
	m.input.Width = main - 6
	if m.input.Width < 1 {
		m.input.Width = 1
	}
	m.rename.Width = sw - 6
	if m.rename.Width < 1 {
		m.rename.Width = 1
	}
	m.scrollKey = ""
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Focus returns the focused area.
func (m Model) Focus() Focus {
	return m.focus
}

// Input returns the current input text.
func (m Model) Input() string {
	return m.input.Value()
}

// Notice returns the transient footer message.
func (m Model) Notice() string {
	return m.notice
}

// Loading reports whether a request is in flight.
func (m Model) Loading() bool {
	return m.ex.Loading()
}

// BackendStatus returns the header status.
func (m Model) BackendStatus() components.BackendStatus {
	return m.header.Status
}

// Close cancels any in-flight request.
func (m Model) Close() {
	m.ex.Cancel()
	m.cancel()
}
