// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/fitchat-tui/internal/backend"
	"github.com/jeranaias/fitchat-tui/internal/exchange"
	"github.com/jeranaias/fitchat-tui/internal/model"
	"github.com/jeranaias/fitchat-tui/internal/session"
	"github.com/jeranaias/fitchat-tui/internal/storage"
	"github.com/jeranaias/fitchat-tui/internal/ui/components"
	"github.com/jeranaias/fitchat-tui/internal/ui/styles"
)

// =============================================================================
// TEST HARNESS
// =============================================================================

// fakeBackend answers every message with reply, or with err when set. A
// cancelled context yields backend.ErrCanceled.
type fakeBackend struct {
	mu     sync.Mutex
	reply  string
	err    error
	health error
	sent   []string
}

func (f *fakeBackend) Chat(ctx context.Context, text string) (*backend.ChatResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, text)
	if ctx.Err() != nil {
		return nil, backend.ErrCanceled
	}
	if f.err != nil {
		return nil, f.err
	}
	return &backend.ChatResult{Text: f.reply, StatusCode: 200}, nil
}

func (f *fakeBackend) CheckHealth(ctx context.Context) error {
	return f.health
}

type harness struct {
	t       *testing.T
	m       Model
	mgr     *session.Manager
	store   *storage.MemoryStorage
	backend *fakeBackend
	copied  []string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	st := storage.NewMemoryStorage()
	mgr, err := session.Load(session.Config{Storage: st})
	require.NoError(t, err)

	h := &harness{t: t, mgr: mgr, store: st, backend: &fakeBackend{reply: "Cutting Diet:\nEat less"}}
	h.m = New(Options{
		Manager:     mgr,
		Exchange:    exchange.New(mgr, h.backend),
		Health:      h.backend,
		Theme:       styles.NewThemeFor(&bytes.Buffer{}, styles.ThemeDark),
		Placeholder: "Ask about diet, recovery, injury...",
		Clipboard: func(s string) error {
			h.copied = append(h.copied, s)
			return nil
		},
	})
	h.send(tea.WindowSizeMsg{Width: 100, Height: 30})
	return h
}

// send feeds msg to the model and returns the command it produced.
func (h *harness) send(msg tea.Msg) tea.Cmd {
	h.t.Helper()
	next, cmd := h.m.Update(msg)
	h.m = next.(Model)
	return cmd
}

func (h *harness) key(t tea.KeyType) tea.Cmd {
	return h.send(tea.KeyMsg{Type: t})
}

func (h *harness) typeText(s string) {
	h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

// reply runs the commands returned by a submit and feeds back the ReplyMsg.
func (h *harness) reply(cmd tea.Cmd) {
	h.t.Helper()
	msg := findReply(h.t, cmd)
	h.send(msg)
}

func findReply(t *testing.T, cmd tea.Cmd) ReplyMsg {
	t.Helper()
	require.NotNil(t, cmd, "expected a command")
	switch msg := cmd().(type) {
	case ReplyMsg:
		return msg
	case tea.BatchMsg:
		for _, c := range msg {
			if c == nil {
				continue
			}
			if r, ok := c().(ReplyMsg); ok {
				return r
			}
		}
	}
	t.Fatal("no ReplyMsg in command")
	return ReplyMsg{}
}

func (h *harness) messages() []model.Message {
	return h.mgr.Current().Messages
}

// =============================================================================
// SEND TESTS
// =============================================================================

func TestSend_AppendsOptimisticallyThenReply(t *testing.T) {
	h := newHarness(t)

	h.typeText("cutting diet")
	cmd := h.key(tea.KeyEnter)

	require.Len(t, h.messages(), 1)
	assert.Equal(t, model.NewUserMessage("cutting diet"), h.messages()[0])
	assert.Equal(t, "cutting diet", h.mgr.Current().Title)
	assert.Empty(t, h.m.Input())
	assert.True(t, h.m.Loading())
	assert.Contains(t, h.m.View(), ThinkingText)

	h.reply(cmd)

	require.Len(t, h.messages(), 2)
	assert.Equal(t, model.NewBotMessage("Cutting Diet:\nEat less"), h.messages()[1])
	assert.False(t, h.m.Loading())
	assert.NotContains(t, h.m.View(), ThinkingText)
	assert.Equal(t, components.StatusOnline, h.m.BackendStatus())
	assert.Equal(t, []string{"cutting diet"}, h.backend.sent)
}

func TestSend_LongInputIsNotTruncated(t *testing.T) {
	h := newHarness(t)
	long := strings.Repeat("protein ", 1000)

	h.typeText(long)
	h.reply(h.key(tea.KeyEnter))

	require.Equal(t, []string{long}, h.backend.sent)
	assert.Equal(t, model.NewUserMessage(long), h.messages()[0])
}

func TestSend_BlankInputIsNoop(t *testing.T) {
	h := newHarness(t)
	writes := h.store.Writes()

	h.typeText("   ")
	cmd := h.key(tea.KeyEnter)

	assert.Nil(t, cmd)
	assert.Empty(t, h.messages())
	assert.False(t, h.m.Loading())
	assert.Equal(t, writes, h.store.Writes())
}

func TestSend_WhileLoadingIsNoop(t *testing.T) {
	h := newHarness(t)

	h.typeText("first")
	first := h.key(tea.KeyEnter)

	// The input stays editable while loading.
	h.typeText("second")
	assert.Equal(t, "second", h.m.Input())
	assert.Nil(t, h.key(tea.KeyEnter))
	assert.Equal(t, "second", h.m.Input())
	assert.Len(t, h.messages(), 1)

	h.reply(first)
	assert.Len(t, h.messages(), 2)
}

func TestSend_FailureAppendsWarning(t *testing.T) {
	h := newHarness(t)
	h.backend.err = backend.ErrNotReachable

	h.typeText("hello")
	h.reply(h.key(tea.KeyEnter))

	require.Len(t, h.messages(), 2)
	assert.Equal(t, backend.UnreachableText, h.messages()[1].Text)
	assert.False(t, h.m.Loading())
	assert.Equal(t, components.StatusOffline, h.m.BackendStatus())
}

func TestSend_EscCancelsWithoutReply(t *testing.T) {
	h := newHarness(t)

	h.typeText("hello")
	cmd := h.key(tea.KeyEnter)
	h.key(tea.KeyEsc)

	assert.False(t, h.m.Loading())
	assert.Equal(t, "Request cancelled", h.m.Notice())

	h.reply(cmd)
	assert.Len(t, h.messages(), 1, "cancelled request must not append a reply")
}

func TestSend_ReplyGoesToOriginatingSession(t *testing.T) {
	h := newHarness(t)
	origin := h.mgr.CurrentID()

	h.typeText("diet")
	cmd := h.key(tea.KeyEnter)
	h.key(tea.KeyCtrlN)
	require.NotEqual(t, origin, h.mgr.CurrentID())

	h.reply(cmd)

	assert.Empty(t, h.messages())
	sess, _ := h.mgr.Get(origin)
	assert.Len(t, sess.Messages, 2)
}

func TestDelete_CancelsPendingRequest(t *testing.T) {
	h := newHarness(t)

	h.typeText("diet")
	cmd := h.key(tea.KeyEnter)
	h.key(tea.KeyCtrlD)

	assert.False(t, h.m.Loading())
	assert.Equal(t, 1, h.mgr.Len())
	assert.Equal(t, "Chat 1", h.mgr.Current().Title)

	h.reply(cmd)
	assert.Empty(t, h.messages())
}

// =============================================================================
// SESSION KEY TESTS
// =============================================================================

func TestNewChatAndClear(t *testing.T) {
	h := newHarness(t)

	h.typeText("hi")
	h.reply(h.key(tea.KeyEnter))
	h.key(tea.KeyCtrlL)
	assert.Empty(t, h.messages())
	assert.Equal(t, "hi", h.mgr.Current().Title, "clear keeps the title")

	h.key(tea.KeyCtrlN)
	assert.Equal(t, 2, h.mgr.Len())
	assert.Equal(t, "Chat 2", h.mgr.Current().Title)
	assert.Contains(t, h.m.View(), "Chat 2")
}

func TestRename_EnterSaves(t *testing.T) {
	h := newHarness(t)

	h.key(tea.KeyCtrlR)
	require.Equal(t, FocusRename, h.m.Focus())
	h.send(tea.KeyMsg{Type: tea.KeyCtrlU}) // delete to start of line
	h.typeText("Leg day")
	h.key(tea.KeyEnter)

	assert.Equal(t, FocusInput, h.m.Focus())
	assert.Equal(t, "Leg day", h.mgr.Current().Title)
}

func TestRename_BlurSaves(t *testing.T) {
	h := newHarness(t)

	h.key(tea.KeyCtrlR)
	h.typeText("!")
	h.key(tea.KeyTab)

	assert.Equal(t, "Chat 1!", h.mgr.Current().Title)
	assert.Equal(t, FocusInput, h.m.Focus())
}

func TestRename_EmptyKeepsTitle(t *testing.T) {
	h := newHarness(t)

	h.key(tea.KeyCtrlR)
	h.send(tea.KeyMsg{Type: tea.KeyCtrlU})
	h.key(tea.KeyEnter)

	assert.Equal(t, "Chat 1", h.mgr.Current().Title)
}

func TestRename_EscCancels(t *testing.T) {
	h := newHarness(t)

	h.key(tea.KeyCtrlR)
	h.typeText("zzz")
	h.key(tea.KeyEsc)

	assert.Equal(t, "Chat 1", h.mgr.Current().Title)
	_, _, editing := h.mgr.Editing()
	assert.False(t, editing)
}

func TestSidebar_NavigateAndSelect(t *testing.T) {
	h := newHarness(t)
	first := h.mgr.CurrentID()
	h.key(tea.KeyCtrlN)
	second := h.mgr.CurrentID()

	h.key(tea.KeyTab)
	require.Equal(t, FocusSidebar, h.m.Focus())
	h.key(tea.KeyUp)
	h.key(tea.KeyEnter)

	assert.Equal(t, first, h.mgr.CurrentID())
	assert.Equal(t, FocusInput, h.m.Focus())

	// Arrow keys from the input jump into the sidebar.
	h.key(tea.KeyDown)
	assert.Equal(t, FocusSidebar, h.m.Focus())
	h.key(tea.KeyEnter)
	assert.Equal(t, second, h.mgr.CurrentID())
}

func TestSidebar_DeleteRowUnderCursor(t *testing.T) {
	h := newHarness(t)
	first := h.mgr.CurrentID()
	h.key(tea.KeyCtrlN)
	second := h.mgr.CurrentID()

	h.key(tea.KeyTab)
	h.key(tea.KeyUp)
	h.key(tea.KeyCtrlD)

	assert.False(t, h.mgr.Has(first))
	assert.Equal(t, second, h.mgr.CurrentID())
}

func TestMouse_ClickSelects(t *testing.T) {
	h := newHarness(t)
	first := h.mgr.CurrentID()
	h.key(tea.KeyCtrlN)

	h.send(tea.MouseMsg{X: 2, Y: 2, Type: tea.MouseLeft})
	assert.Equal(t, first, h.mgr.CurrentID())
}

func TestCopyLastReply(t *testing.T) {
	h := newHarness(t)

	h.key(tea.KeyCtrlY)
	assert.Equal(t, "Nothing to copy yet", h.m.Notice())

	h.typeText("cut")
	h.reply(h.key(tea.KeyEnter))
	h.key(tea.KeyCtrlY)

	assert.Equal(t, []string{"Cutting Diet:\nEat less"}, h.copied)
	assert.Equal(t, "Copied last reply", h.m.Notice())
}

func TestCopyLastReply_ClipboardError(t *testing.T) {
	h := newHarness(t)
	h.m.clipboard = func(string) error { return errors.New("no display") }

	h.typeText("cut")
	h.reply(h.key(tea.KeyEnter))
	h.key(tea.KeyCtrlY)

	assert.Equal(t, "Clipboard unavailable", h.m.Notice())
}

func TestQuit(t *testing.T) {
	h := newHarness(t)
	h.typeText("diet")
	h.key(tea.KeyEnter)

	cmd := h.key(tea.KeyCtrlC)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.False(t, h.m.Loading())
}

// =============================================================================
// BACKGROUND MESSAGE TESTS
// =============================================================================

func TestHealthMsg(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, components.StatusUnknown, h.m.BackendStatus())

	assert.NotNil(t, h.send(HealthMsg{}))
	assert.Equal(t, components.StatusOnline, h.m.BackendStatus())

	h.send(HealthMsg{Err: backend.ErrNotReachable})
	assert.Equal(t, components.StatusOffline, h.m.BackendStatus())
	assert.Contains(t, h.m.View(), "offline")
}

func TestCheckHealthCmd(t *testing.T) {
	fb := &fakeBackend{health: backend.ErrNotReachable}
	msg := CheckHealthCmd(fb)()
	assert.Equal(t, HealthMsg{Err: backend.ErrNotReachable}, msg)
	assert.Nil(t, CheckHealthCmd(nil))
}

func TestStoreChanged_ReloadsExternalEdits(t *testing.T) {
	h := newHarness(t)

	other, err := session.Load(session.Config{Storage: h.store})
	require.NoError(t, err)
	_, err = other.NewChat()
	require.NoError(t, err)
	require.NoError(t, other.Rename(other.CurrentID(), "From the CLI"))

	h.send(StoreChangedMsg{})

	assert.Equal(t, 2, h.mgr.Len())
	assert.Contains(t, h.m.View(), "From the CLI")
}

func TestWatchCmd(t *testing.T) {
	assert.Nil(t, WatchCmd(nil))

	ch := make(chan struct{}, 1)
	ch <- struct{}{}
	assert.Equal(t, StoreChangedMsg{}, WatchCmd(ch)())

	close(ch)
	assert.Nil(t, WatchCmd(ch)())
}

func TestView_Layout(t *testing.T) {
	h := newHarness(t)
	view := h.m.View()

	lines := strings.Split(view, "\n")
	assert.Len(t, lines, 30)
	assert.Contains(t, view, "Sessions")
	assert.Contains(t, view, components.EmptyText)
	assert.Contains(t, view, "Ask about diet")
}
