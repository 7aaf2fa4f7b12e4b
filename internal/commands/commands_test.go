// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jeranaias/fitchat-tui/internal/model"
	"github.com/jeranaias/fitchat-tui/internal/session"
	"github.com/jeranaias/fitchat-tui/internal/storage"
	"github.com/jeranaias/fitchat-tui/internal/util"
)

func newTestContext(t *testing.T) *Context {
	t.Helper()
	ids := []string{"aaaa1111", "bbbb2222", "cccc3333", "dddd4444"}
	mgr, err := session.Load(session.Config{
		Storage: storage.NewMemoryStorage(),
		NewID: func() string {
			id := ids[0]
			ids = ids[1:]
			return id
		},
	})
	if err != nil {
		t.Fatalf("session.Load() error: %v", err)
	}
	return &Context{Manager: mgr}
}

func run(t *testing.T, reg *Registry, ctx *Context, line string) (Result, error) {
	t.Helper()
	res := NewParser(reg).Parse(line)
	if !res.IsCommand {
		t.Fatalf("Parse(%q) is not a command", line)
	}
	return reg.Execute(ctx, res)
}

// =============================================================================
// PARSER
// =============================================================================

func TestParse(t *testing.T) {
	reg := NewRegistry()
	p := NewParser(reg)

	tests := []struct {
		input   string
		isCmd   bool
		name    string
		args    []string
		raw     string
		matched bool
	}{
		{"hello there", false, "", nil, "", false},
		{"/help", true, "/help", nil, "", true},
		{"  /H  ", true, "/H", nil, "", true},
		{"/switch ab12", true, "/switch", []string{"ab12"}, "ab12", true},
		{`/rename "Leg day" plan`, true, "/rename", []string{"Leg day", "plan"}, `"Leg day" plan`, true},
		{"/nope x", true, "/nope", []string{"x"}, "x", false},
	}
	for _, tt := range tests {
		got := p.Parse(tt.input)
		if got.IsCommand != tt.isCmd {
			t.Errorf("Parse(%q).IsCommand = %v, want %v", tt.input, got.IsCommand, tt.isCmd)
			continue
		}
		if got.CommandName != tt.name {
			t.Errorf("Parse(%q).CommandName = %q, want %q", tt.input, got.CommandName, tt.name)
		}
		if diff := cmp.Diff(tt.args, got.Args); diff != "" {
			t.Errorf("Parse(%q).Args mismatch (-want +got):\n%s", tt.input, diff)
		}
		if got.RawArgs != tt.raw {
			t.Errorf("Parse(%q).RawArgs = %q, want %q", tt.input, got.RawArgs, tt.raw)
		}
		if (got.Command != nil) != tt.matched {
			t.Errorf("Parse(%q).Command matched = %v, want %v", tt.input, got.Command != nil, tt.matched)
		}
	}
}

func TestSplitCommandLine(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", nil},
		{"a b  c", []string{"a", "b", "c"}},
		{`'single quoted' x`, []string{"single quoted", "x"}},
		{`"say \"hi\""`, []string{`say "hi"`}},
		{`""`, []string{""}},
		{"héllo wörld", []string{"héllo", "wörld"}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, splitCommandLine(tt.input)); diff != "" {
			t.Errorf("splitCommandLine(%q) mismatch (-want +got):\n%s", tt.input, diff)
		}
	}
}

// =============================================================================
// REGISTRY
// =============================================================================

func TestRegistry_Aliases(t *testing.T) {
	reg := NewRegistry()
	for alias, name := range map[string]string{
		"/q":    "/quit",
		"/exit": "/quit",
		"/?":    "/help",
		"/load": "/switch",
		"/rm":   "/delete",
	} {
		cmd := reg.Get(alias)
		if cmd == nil || cmd.Name != name {
			t.Errorf("Get(%q) = %v, want %s", alias, cmd, name)
		}
	}
}

func TestExecute_UnknownAndUsage(t *testing.T) {
	reg := NewRegistry()
	ctx := newTestContext(t)

	if _, err := run(t, reg, ctx, "/bogus"); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("unknown command error = %v", err)
	}
	if _, err := run(t, reg, ctx, "/switch"); !errors.Is(err, ErrUsage) {
		t.Errorf("missing argument error = %v", err)
	}
	if _, err := run(t, reg, ctx, `/rename ""`); !errors.Is(err, ErrUsage) {
		t.Errorf("blank title error = %v", err)
	}
}

func TestHelpListsEveryCommand(t *testing.T) {
	reg := NewRegistry()
	res, err := run(t, reg, newTestContext(t), "/help")
	if err != nil {
		t.Fatal(err)
	}
	for _, cmd := range reg.All() {
		if !strings.Contains(res.Output, cmd.Description) {
			t.Errorf("help is missing %s", cmd.Name)
		}
	}
}

// =============================================================================
// HANDLERS
// =============================================================================

func TestSessionCommands(t *testing.T) {
	reg := NewRegistry()
	ctx := newTestContext(t)
	mgr := ctx.Manager

	res, err := run(t, reg, ctx, "/new")
	if err != nil || !res.SessionChanged {
		t.Fatalf("/new = %+v, %v", res, err)
	}
	if got := mgr.CurrentID(); got != "bbbb2222" {
		t.Fatalf("current after /new = %q", got)
	}

	if _, err := run(t, reg, ctx, "/rename Leg day"); err != nil {
		t.Fatal(err)
	}
	if sess := mgr.Current(); sess.Title != "Leg day" {
		t.Errorf("title = %q, want %q", sess.Title, "Leg day")
	}

	if _, err := run(t, reg, ctx, "/switch aaaa"); err != nil {
		t.Fatal(err)
	}
	if got := mgr.CurrentID(); got != "aaaa1111" {
		t.Errorf("current after /switch = %q", got)
	}

	res, _ = run(t, reg, ctx, "/sessions")
	want := "* aaaa1111  " + util.PadWidth("Chat 1", sessionTitleWidth) + "  0\n" +
		"  bbbb2222  " + util.PadWidth("Leg day", sessionTitleWidth) + "  0"
	if res.Output != want {
		t.Errorf("/sessions =\n%s\nwant\n%s", res.Output, want)
	}

	res, err = run(t, reg, ctx, "/delete bbbb")
	if err != nil {
		t.Fatal(err)
	}
	if res.SessionChanged {
		t.Error("deleting another session should not report a session change")
	}
	if mgr.Len() != 1 {
		t.Errorf("Len() = %d, want 1", mgr.Len())
	}

	res, _ = run(t, reg, ctx, "/delete")
	if !res.SessionChanged || mgr.CurrentID() != "cccc3333" {
		t.Errorf("deleting the last session should create a fresh one, current = %q", mgr.CurrentID())
	}
}

func TestClearKeepsTitle(t *testing.T) {
	reg := NewRegistry()
	ctx := newTestContext(t)
	if _, err := ctx.Manager.AppendUser(ctx.Manager.CurrentID(), "bulking diet"); err != nil {
		t.Fatal(err)
	}

	if _, err := run(t, reg, ctx, "/clear"); err != nil {
		t.Fatal(err)
	}
	sess := ctx.Manager.Current()
	if !sess.IsEmpty() || sess.Title != "bulking diet" {
		t.Errorf("after /clear: %+v", sess)
	}
}

func TestCopy(t *testing.T) {
	reg := NewRegistry()
	ctx := newTestContext(t)
	var copied string
	ctx.Clipboard = func(s string) error { copied = s; return nil }

	res, _ := run(t, reg, ctx, "/copy")
	if res.Output != "Nothing to copy yet" {
		t.Errorf("/copy on empty session = %q", res.Output)
	}

	id := ctx.Manager.CurrentID()
	ctx.Manager.Append(id, model.NewBotMessage("first"))
	ctx.Manager.Append(id, model.NewBotMessage("Cutting Diet:\n• Protein"))
	if _, err := run(t, reg, ctx, "/copy"); err != nil {
		t.Fatal(err)
	}
	if copied != "Cutting Diet:\n• Protein" {
		t.Errorf("copied = %q", copied)
	}

	ctx.Clipboard = func(string) error { return errors.New("no display") }
	if _, err := run(t, reg, ctx, "/copy"); err == nil {
		t.Error("clipboard failure should be reported")
	}
}

func TestQuit(t *testing.T) {
	reg := NewRegistry()
	res, err := run(t, reg, newTestContext(t), "/exit")
	if err != nil || !res.Quit {
		t.Errorf("/exit = %+v, %v", res, err)
	}
}

// =============================================================================
// COMPLETION
// =============================================================================

func TestComplete(t *testing.T) {
	c := NewCompleter(NewRegistry())
	c.SessionsFn = func() []string { return []string{"abc12345", "abd67890", "zzz00000"} }

	tests := []struct {
		line string
		want []string
	}{
		{"hello", nil},
		{"/sw", []string{"/switch "}},
		{"/re", []string{"/rename "}},
		{"/switch ab", []string{"/switch abc12345", "/switch abd67890"}},
		{"/rm z", []string{"/rm zzz00000"}},
		{"/rename ab", nil},
		{"/switch abc12345 extra", nil},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, c.Complete(tt.line)); diff != "" {
			t.Errorf("Complete(%q) mismatch (-want +got):\n%s", tt.line, diff)
		}
	}
}
