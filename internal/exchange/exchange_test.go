// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package exchange

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/jeranaias/fitchat-tui/internal/backend"
	"github.com/jeranaias/fitchat-tui/internal/model"
	"github.com/jeranaias/fitchat-tui/internal/session"
	"github.com/jeranaias/fitchat-tui/internal/storage"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeSender answers with a fixed result or error.
type fakeSender struct {
	text  string
	err   error
	calls []string
}

func (f *fakeSender) Chat(ctx context.Context, text string) (*backend.ChatResult, error) {
	f.calls = append(f.calls, text)
	if f.err != nil {
		return nil, f.err
	}
	return &backend.ChatResult{Text: f.text, StatusCode: http.StatusOK}, nil
}

func newManager(t *testing.T) *session.Manager {
	t.Helper()
	m, err := session.Load(session.Config{Storage: storage.NewMemoryStorage()})
	require.NoError(t, err)
	return m
}

func messages(t *testing.T, m *session.Manager, id string) []model.Message {
	t.Helper()
	sess, ok := m.Get(id)
	require.True(t, ok)
	return sess.Messages
}

// =============================================================================
// GUARD TESTS
// =============================================================================

func TestBegin_BlankInputIsNoop(t *testing.T) {
	mgr := newManager(t)
	sender := &fakeSender{text: "hi"}
	ex := New(mgr, sender)

	for _, text := range []string{"", " ", "\t\n  "} {
		_, err := ex.Begin(context.Background(), text)
		assert.ErrorIs(t, err, ErrEmpty)
	}
	assert.Empty(t, messages(t, mgr, mgr.CurrentID()))
	assert.False(t, ex.Loading())
	assert.Empty(t, sender.calls)
}

func TestBegin_WhileLoadingIsNoop(t *testing.T) {
	mgr := newManager(t)
	ex := New(mgr, &fakeSender{text: "ok"})

	req, err := ex.Begin(context.Background(), "first")
	require.NoError(t, err)
	assert.True(t, ex.Loading())

	_, err = ex.Begin(context.Background(), "second")
	assert.ErrorIs(t, err, ErrBusy)
	assert.Len(t, messages(t, mgr, mgr.CurrentID()), 1)

	_, err = ex.Complete(ex.Do(req))
	require.NoError(t, err)
	assert.False(t, ex.Loading())
}

// =============================================================================
// OUTCOME TESTS
// =============================================================================

func TestSend_Delivered(t *testing.T) {
	mgr := newManager(t)
	sender := &fakeSender{text: "Beginner Muscle Gain Diet:\nEat more"}
	ex := New(mgr, sender)
	id := mgr.CurrentID()

	res, err := ex.Send(context.Background(), " best diet for muscle gain ")
	require.NoError(t, err)

	assert.Equal(t, Delivered, res.Outcome)
	assert.Equal(t, []string{" best diet for muscle gain "}, sender.calls)
	assert.Equal(t, []model.Message{
		model.NewUserMessage(" best diet for muscle gain "),
		model.NewBotMessage("Beginner Muscle Gain Diet:\nEat more"),
	}, messages(t, mgr, id))
	assert.Equal(t, " best diet for muscle gain ", mgr.Current().Title)
	assert.False(t, ex.Loading())
}

func TestSend_FailureAppendsWarning(t *testing.T) {
	mgr := newManager(t)
	ex := New(mgr, &fakeSender{err: backend.ErrNotReachable})

	res, err := ex.Send(context.Background(), "legs are sore")
	require.NoError(t, err)

	assert.Equal(t, Failed, res.Outcome)
	msgs := messages(t, mgr, mgr.CurrentID())
	require.Len(t, msgs, 2)
	assert.Equal(t, model.NewBotMessage("⚠ Backend not reachable."), msgs[1])
	assert.False(t, ex.Loading())
}

func TestComplete_ReplyGoesToOriginatingSession(t *testing.T) {
	mgr := newManager(t)
	ex := New(mgr, &fakeSender{text: "Rest day advice"})
	origin := mgr.CurrentID()

	req, err := ex.Begin(context.Background(), "rest day tips")
	require.NoError(t, err)

	other, err := mgr.NewChat()
	require.NoError(t, err)

	res, err := ex.Complete(ex.Do(req))
	require.NoError(t, err)
	assert.Equal(t, Delivered, res.Outcome)
	assert.Len(t, messages(t, mgr, origin), 2)
	assert.Empty(t, messages(t, mgr, other))
}

func TestCancel_DropsReply(t *testing.T) {
	mgr := newManager(t)
	ex := New(mgr, &fakeSender{text: "late"})

	req, err := ex.Begin(context.Background(), "hello")
	require.NoError(t, err)
	assert.True(t, ex.Cancel())
	assert.False(t, ex.Loading())
	assert.False(t, ex.Cancel())

	res, err := ex.Complete(ex.Do(req))
	require.NoError(t, err)
	assert.Equal(t, Dropped, res.Outcome)
	assert.Len(t, messages(t, mgr, mgr.CurrentID()), 1)
}

func TestCancel_StaleReplyDoesNotFinishNewRequest(t *testing.T) {
	mgr := newManager(t)
	ex := New(mgr, &fakeSender{text: "reply"})

	old, err := ex.Begin(context.Background(), "one")
	require.NoError(t, err)
	ex.Cancel()

	_, err = ex.Begin(context.Background(), "two")
	require.NoError(t, err)

	res, err := ex.Complete(ex.Do(old))
	require.NoError(t, err)
	assert.Equal(t, Dropped, res.Outcome)
	assert.True(t, ex.Loading(), "stale reply must not clear the newer request")
	ex.Cancel()
}

func TestCancelSession(t *testing.T) {
	mgr := newManager(t)
	ex := New(mgr, &fakeSender{text: "reply"})
	origin := mgr.CurrentID()

	req, err := ex.Begin(context.Background(), "hello")
	require.NoError(t, err)

	assert.False(t, ex.CancelSession("other"))
	assert.True(t, ex.Loading())

	assert.True(t, ex.CancelSession(origin))
	require.NoError(t, mgr.DeleteChat(origin))

	res, err := ex.Complete(ex.Do(req))
	require.NoError(t, err)
	assert.Equal(t, Dropped, res.Outcome)
}

func TestComplete_DeletedSessionDropped(t *testing.T) {
	mgr := newManager(t)
	ex := New(mgr, &fakeSender{text: "reply"})
	origin := mgr.CurrentID()

	req, err := ex.Begin(context.Background(), "hello")
	require.NoError(t, err)
	require.NoError(t, mgr.DeleteChat(origin))

	res, err := ex.Complete(ex.Do(req))
	require.NoError(t, err)
	assert.Equal(t, Dropped, res.Outcome)
	assert.False(t, ex.Loading())
	assert.Empty(t, messages(t, mgr, mgr.CurrentID()))
}

func TestComplete_CanceledErrorDropped(t *testing.T) {
	mgr := newManager(t)
	ex := New(mgr, &fakeSender{err: &backend.ClientError{Type: backend.ErrTypeCanceled, Message: "request canceled", Cause: context.Canceled}})

	res, err := ex.Send(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, Dropped, res.Outcome)
	assert.Len(t, messages(t, mgr, mgr.CurrentID()), 1)
	assert.False(t, ex.Loading())
}

// =============================================================================
// HTTP TESTS
// =============================================================================

func TestCancel_AbortsHTTPRequestWithoutLeaks(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	started := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		close(started)
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer func() {
		close(release)
		srv.Close()
	}()

	mgr := newManager(t)
	client := backend.NewClientWithConfig(&backend.ClientConfig{
		BaseURL:    srv.URL,
		HTTPClient: &http.Client{Transport: &http.Transport{DisableKeepAlives: true}},
	})
	ex := New(mgr, client)

	req, err := ex.Begin(context.Background(), "hello")
	require.NoError(t, err)

	done := make(chan Response, 1)
	go func() { done <- ex.Do(req) }()

	<-started
	ex.Cancel()

	var resp Response
	select {
	case resp = <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Do did not return after Cancel")
	}
	assert.True(t, backend.IsCanceled(resp.Err))

	res, err := ex.Complete(resp)
	require.NoError(t, err)
	assert.Equal(t, Dropped, res.Outcome)
}

func TestSend_RealBackendPlan(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"plan":["a","b"]}`))
	}))
	defer srv.Close()

	mgr := newManager(t)
	ex := New(mgr, backend.NewClientWithConfig(&backend.ClientConfig{
		BaseURL:    srv.URL,
		HTTPClient: &http.Client{Transport: &http.Transport{DisableKeepAlives: true}},
	}))

	res, err := ex.Send(context.Background(), "plan please")
	require.NoError(t, err)
	assert.Equal(t, Delivered, res.Outcome)
	assert.Equal(t, "a\nb", res.Message.Text)
}

func TestStrings(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "sending", StateSending.String())
	assert.Equal(t, "delivered", Delivered.String())
	assert.Equal(t, "failed", Failed.String())
	assert.Equal(t, "dropped", Dropped.String())
	assert.False(t, errors.Is(ErrBusy, ErrEmpty))
}
