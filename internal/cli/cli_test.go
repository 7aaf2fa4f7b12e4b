// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/fitchat-tui/internal/backend"
	"github.com/jeranaias/fitchat-tui/internal/coach"
	"github.com/jeranaias/fitchat-tui/internal/exchange"
	"github.com/jeranaias/fitchat-tui/internal/server"
	"github.com/jeranaias/fitchat-tui/internal/session"
	"github.com/jeranaias/fitchat-tui/internal/storage"
)

// =============================================================================
// HARNESS
// =============================================================================

// isolate points HOME at a temp dir and clears FITCHAT_* overrides.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("NO_COLOR", "1")
	for _, k := range []string{"FITCHAT_BACKEND_URL", "FITCHAT_STORAGE", "FITCHAT_STORAGE_PATH", "FITCHAT_LOG_LEVEL", "FITCHAT_SERVER_ADDR"} {
		t.Setenv(k, "")
	}
	return home
}

// coachServer starts the local coach backend on a random port.
func coachServer(t *testing.T) string {
	t.Helper()
	kb, err := coach.DefaultKnowledge()
	require.NoError(t, err)
	srv := httptest.NewServer(server.NewRouter(server.NewHandler(coach.New(kb)), server.Options{}))
	t.Cleanup(srv.Close)
	return srv.URL
}

// deadURL returns a URL nothing listens on.
func deadURL(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(nil)
	url := srv.URL
	srv.Close()
	return url
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := run(args, &out, &errOut)
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runCLI(t, args...)
	require.NoError(t, err, "fitchat %s", strings.Join(args, " "))
	return out
}

func listSessions(t *testing.T) []sessionRow {
	t.Helper()
	var rows []sessionRow
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, "sessions", "list", "--json")), &rows))
	return rows
}

func currentRow(t *testing.T, rows []sessionRow) sessionRow {
	t.Helper()
	for _, r := range rows {
		if r.Current {
			return r
		}
	}
	t.Fatal("no current session")
	return sessionRow{}
}

// =============================================================================
// ASK
// =============================================================================

func TestAsk_AppendsExchangeToCurrentSession(t *testing.T) {
	isolate(t)
	url := coachServer(t)

	out := mustRun(t, "--backend-url", url, "ask", "--plain", "beginner muscle gain diet")
	assert.Contains(t, out, "Beginner Muscle Gain Diet:")

	rows := listSessions(t)
	require.Len(t, rows, 1)
	assert.Equal(t, "beginner muscle gain diet", rows[0].Title)
	assert.Equal(t, 2, rows[0].Messages)
	assert.Len(t, rows[0].ID, 8)
}

func TestAsk_JSON(t *testing.T) {
	isolate(t)
	url := coachServer(t)

	out := mustRun(t, "--backend-url", url, "ask", "--json", "I", "have", "severe", "pain")

	var got askOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "delivered", got.Outcome)
	assert.Equal(t, "I have severe pain", got.Title)
	assert.NotEmpty(t, got.Reply)
	assert.Len(t, got.SessionID, 8)
}

func TestAsk_BackendUnreachablePrintsWarning(t *testing.T) {
	isolate(t)

	out := mustRun(t, "--backend-url", deadURL(t), "ask", "hello")
	assert.Contains(t, out, backend.UnreachableText)

	rows := listSessions(t)
	require.Len(t, rows, 1)
	assert.Equal(t, 2, rows[0].Messages, "user message and warning are both kept")
}

func TestAsk_NewSession(t *testing.T) {
	isolate(t)
	url := coachServer(t)

	mustRun(t, "--backend-url", url, "ask", "rest day recovery")
	mustRun(t, "--backend-url", url, "ask", "--new", "cutting diet")

	rows := listSessions(t)
	require.Len(t, rows, 2)
	cur := currentRow(t, rows)
	assert.Equal(t, rows[1].ID, cur.ID, "new session is appended and current")
	assert.Equal(t, "cutting diet", cur.Title)
}

func TestAsk_SessionPrefix(t *testing.T) {
	isolate(t)
	url := coachServer(t)

	first := currentRow(t, listSessions(t)).ID
	mustRun(t, "sessions", "new")

	mustRun(t, "--backend-url", url, "ask", "-s", first[:5], "doms recovery")
	rows := listSessions(t)
	assert.Equal(t, first, currentRow(t, rows).ID)
	assert.Equal(t, 2, rows[0].Messages)
	assert.Equal(t, 0, rows[1].Messages)
}

func TestAsk_EmptyMessage(t *testing.T) {
	isolate(t)

	_, err := runCLI(t, "--backend-url", deadURL(t), "ask", "   ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
	assert.Equal(t, 0, listSessions(t)[0].Messages)
}

func TestAsk_EmptyMessageWithNewKeepsSessions(t *testing.T) {
	isolate(t)
	require.Len(t, listSessions(t), 1)

	_, err := runCLI(t, "--backend-url", deadURL(t), "ask", "--new", " \t ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
	assert.Len(t, listSessions(t), 1, "blank input must not create a session")
}

// =============================================================================
// SESSIONS
// =============================================================================

func TestSessions_FirstRunCreatesChat1(t *testing.T) {
	isolate(t)

	rows := listSessions(t)
	require.Len(t, rows, 1)
	assert.Equal(t, "Chat 1", rows[0].Title)
	assert.True(t, rows[0].Current)
}

func TestSessions_NewRenameSelectDelete(t *testing.T) {
	isolate(t)

	first := currentRow(t, listSessions(t)).ID
	second := strings.TrimSpace(mustRun(t, "sessions", "new", "Leg", "day"))
	require.Len(t, second, 8)

	rows := listSessions(t)
	require.Len(t, rows, 2)
	assert.Equal(t, "Leg day", rows[1].Title)
	assert.Equal(t, second, currentRow(t, rows).ID)

	mustRun(t, "sessions", "rename", first, "Meal", "prep")
	mustRun(t, "sessions", "select", first)
	rows = listSessions(t)
	assert.Equal(t, "Meal prep", rows[0].Title)
	assert.Equal(t, first, currentRow(t, rows).ID)

	mustRun(t, "sessions", "delete", first)
	rows = listSessions(t)
	require.Len(t, rows, 1)
	assert.Equal(t, second, rows[0].ID)
	assert.True(t, rows[0].Current, "current falls back to the first remaining session")
}

func TestSessions_DeleteLastCreatesFresh(t *testing.T) {
	isolate(t)

	only := currentRow(t, listSessions(t)).ID
	mustRun(t, "sessions", "delete", only)

	rows := listSessions(t)
	require.Len(t, rows, 1)
	assert.NotEqual(t, only, rows[0].ID)
	assert.Equal(t, "Chat 1", rows[0].Title)
}

func TestSessions_UnknownID(t *testing.T) {
	isolate(t)

	_, err := runCLI(t, "sessions", "select", "zzzzzzzz")
	require.Error(t, err)
	assert.True(t, errors.Is(err, session.ErrUnknownSession), "got %v", err)
}

func TestSessions_ClearAndShow(t *testing.T) {
	isolate(t)
	url := coachServer(t)

	mustRun(t, "--backend-url", url, "ask", "bulking diet")
	out := mustRun(t, "sessions", "show")
	assert.Contains(t, out, "You: bulking diet")
	assert.Contains(t, out, "Coach: ")

	mustRun(t, "sessions", "clear")
	out = mustRun(t, "sessions", "show")
	assert.Contains(t, out, "(no messages)")
	assert.Equal(t, "bulking diet", listSessions(t)[0].Title, "clear keeps the title")
}

func TestSessions_ResetRecoversCorruptStore(t *testing.T) {
	home := isolate(t)

	dir := filepath.Join(home, ".fitchat")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, session.DefaultKey+".json"), []byte("{not json"), 0600))

	_, err := runCLI(t, "sessions", "list")
	require.Error(t, err)
	assert.True(t, errors.Is(err, session.ErrCorruptStore))

	_, err = runCLI(t, "sessions", "reset")
	require.Error(t, err, "reset needs --yes")

	mustRun(t, "sessions", "reset", "--yes")
	rows := listSessions(t)
	require.Len(t, rows, 1)
	assert.Equal(t, "Chat 1", rows[0].Title)
}

func TestSessions_ExportFormats(t *testing.T) {
	home := isolate(t)
	url := coachServer(t)
	mustRun(t, "--backend-url", url, "ask", "shoulder recovery")

	out := mustRun(t, "sessions", "export")
	var doc struct {
		CurrentID string                     `json:"currentId"`
		Sessions  map[string]json.RawMessage `json:"sessions"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Len(t, doc.Sessions, 1)
	assert.Contains(t, doc.Sessions, doc.CurrentID)

	text := mustRun(t, "sessions", "export", "--format", "text")
	assert.True(t, strings.HasPrefix(text, "# shoulder recovery ("))
	assert.Contains(t, text, "You: shoulder recovery\n")

	file := filepath.Join(home, "export.json")
	mustRun(t, "sessions", "export", "-o", file)
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.JSONEq(t, out, string(data))

	md := mustRun(t, "sessions", "export", "-f", "markdown", "--skip-empty")
	assert.Contains(t, md, "## shoulder recovery _(current)_")

	_, err = runCLI(t, "sessions", "export", "--format", "yaml")
	assert.Error(t, err)
}

func TestSessions_SQLiteBackend(t *testing.T) {
	home := isolate(t)
	db := filepath.Join(home, "chat.db")

	mustRun(t, "--storage", "sqlite", "--storage-path", db, "sessions", "new", "Stored in sqlite")

	var rows []sessionRow
	out := mustRun(t, "--storage", "sqlite", "--storage-path", db, "sessions", "list", "--json")
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "Stored in sqlite", rows[1].Title)

	// The file backend is untouched.
	assert.Len(t, listSessions(t), 1)
}

// =============================================================================
// CONFIG
// =============================================================================

func TestConfig_SetGet(t *testing.T) {
	isolate(t)

	mustRun(t, "config", "set", "ui.theme", "light")
	mustRun(t, "config", "set", "server.allowed_origins", "http://a.test, http://b.test")

	assert.Equal(t, "light\n", mustRun(t, "config", "get", "ui.theme"))
	assert.Equal(t, "http://a.test,http://b.test\n", mustRun(t, "config", "get", "server.allowed_origins"))

	_, err := runCLI(t, "config", "set", "ui.sidebar_width", "5")
	assert.Error(t, err)
	_, err = runCLI(t, "config", "get", "ui.nope")
	assert.Error(t, err)
}

func TestConfig_SetIgnoresEnvironment(t *testing.T) {
	home := isolate(t)
	t.Setenv("FITCHAT_BACKEND_URL", "http://env.test:1")

	mustRun(t, "config", "set", "log.level", "debug")

	data, err := os.ReadFile(filepath.Join(home, ".fitchat", "config.toml"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "env.test")
	assert.Equal(t, "http://env.test:1\n", mustRun(t, "config", "get", "backend.url"))
}

func TestConfig_InitRefusesOverwrite(t *testing.T) {
	home := isolate(t)

	out := mustRun(t, "config", "init")
	assert.Equal(t, filepath.Join(home, ".fitchat", "config.toml")+"\n", out)

	_, err := runCLI(t, "config", "init")
	assert.Error(t, err)
	mustRun(t, "config", "init", "--force")
}

func TestConfig_InvalidFlag(t *testing.T) {
	isolate(t)

	_, err := runCLI(t, "--storage", "postgres", "sessions", "list")
	assert.Error(t, err)
}

// =============================================================================
// REPL
// =============================================================================

// scriptReader feeds fixed lines to the REPL, then io.EOF.
type scriptReader struct {
	lines []string
}

func (s *scriptReader) Prompt(string) (string, error) {
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func newTestREPL(t *testing.T, url string, lines ...string) (*repl, *bytes.Buffer) {
	t.Helper()
	mgr, err := session.Load(session.Config{Storage: storage.NewMemoryStorage()})
	require.NoError(t, err)
	var out bytes.Buffer
	client := backend.NewClientWithConfig(&backend.ClientConfig{BaseURL: url})
	r := newREPL(mgr, exchange.New(mgr, client), &out)
	r.in = &scriptReader{lines: lines}
	r.cmdCtx.Clipboard = func(string) error { return errors.New("no clipboard in tests") }
	return r, &out
}

func TestREPL_ExchangeAndCommands(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	url := coachServer(t)

	r, out := newTestREPL(t, url,
		"advanced muscle gain diet",
		"",
		"/new",
		"/rename Legs",
		"/sessions",
		"/bogus",
		"/quit",
		"never sent",
	)
	require.NoError(t, r.run(t.Context()))

	text := out.String()
	assert.Contains(t, text, "coach › Advanced Muscle Gain Diet:")
	assert.Contains(t, text, "unknown command /bogus")
	assert.Contains(t, text, "Legs")

	entries := r.mgr.List()
	require.Len(t, entries, 2)
	assert.Equal(t, "advanced muscle gain diet", entries[0].Title)
	assert.Equal(t, 2, entries[0].Count)
	assert.Equal(t, "Legs", entries[1].Title)
	assert.Equal(t, 0, entries[1].Count, "input after /quit is not sent")
}

func TestREPL_SwitchAndClear(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	url := coachServer(t)

	r, _ := newTestREPL(t, url)
	first := r.mgr.CurrentID()
	r.in = &scriptReader{lines: []string{
		"chest recovery",
		"/new",
		"/switch " + first[:6],
		"/clear",
	}}
	require.NoError(t, r.run(t.Context()))

	assert.Equal(t, first, r.mgr.CurrentID())
	sess, ok := r.mgr.Get(first)
	require.True(t, ok)
	assert.True(t, sess.IsEmpty())
	assert.Equal(t, "chest recovery", sess.Title)
}

func TestREPL_BackendDown(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	r, out := newTestREPL(t, deadURL(t), "hi")
	require.NoError(t, r.run(t.Context()))
	assert.Contains(t, out.String(), backend.UnreachableText)
}

// =============================================================================
// OUTPUT HELPERS
// =============================================================================

func TestRenderMarkdown_KeepsLines(t *testing.T) {
	out, err := renderMarkdown("Cutting Diet:\n• Eat protein\n• Sleep", 80)
	require.NoError(t, err)

	var lines []string
	for _, l := range strings.Split(out, "\n") {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, strings.TrimSpace(l))
		}
	}
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "Eat protein")
}

func TestMessageCount(t *testing.T) {
	assert.Equal(t, "0 messages", messageCount(0))
	assert.Equal(t, "1 message", messageCount(1))
	assert.Equal(t, "7 messages", messageCount(7))
}
