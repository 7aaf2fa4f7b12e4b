// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package exchange

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/fitchat-tui/internal/backend"
	"github.com/jeranaias/fitchat-tui/internal/model"
	"github.com/jeranaias/fitchat-tui/internal/session"
)

// =============================================================================
// TYPES
// =============================================================================

// Sender posts one message to the backend. *backend.Client implements it.
type Sender interface {
	Chat(ctx context.Context, text string) (*backend.ChatResult, error)
}

// State is the exchange state.
type State int

const (
	// StateIdle accepts a new message.
	StateIdle State = iota
	// StateSending has one request in flight.
	StateSending
)

// String returns the state name.
func (s State) String() string {
	if s == StateSending {
		return "sending"
	}
	return "idle"
}

// Outcome classifies how an exchange ended.
type Outcome int

const (
	// Delivered means the backend reply was appended.
	Delivered Outcome = iota
	// Failed means the warning message was appended.
	Failed
	// Dropped means nothing was appended: the request was cancelled or its
	// session no longer exists.
	Dropped
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case Delivered:
		return "delivered"
	case Failed:
		return "failed"
	default:
		return "dropped"
	}
}

var (
	// ErrBusy is returned by Begin while a request is in flight.
	ErrBusy = errors.New("a message is already being sent")

	// ErrEmpty is returned by Begin for blank input.
	ErrEmpty = errors.New("message is empty")
)

// Request is an in-flight exchange returned by Begin.
type Request struct {
	// Seq identifies the request; a reply whose Seq is stale is dropped.
	Seq uint64
	// SessionID is the session the message was sent from.
	SessionID string
	// Text is the message exactly as typed.
	Text string
	// Renamed reports that the message retitled its session.
	Renamed bool

	ctx     context.Context
	started time.Time
}

// Response is the result of Do, handed to Complete.
type Response struct {
	Seq       uint64
	SessionID string
	Result    *backend.ChatResult
	Err       error
	Elapsed   time.Duration
}

// Result reports what Complete did.
type Result struct {
	Outcome   Outcome
	SessionID string
	// Message is the appended bot message, zero when Dropped.
	Message model.Message
}

// =============================================================================
// EXCHANGE
// =============================================================================

// Exchange owns the loading flag and the cancel func of the single
// in-flight request. It is safe for concurrent use.
type Exchange struct {
	mgr    *session.Manager
	sender Sender

	mu      sync.Mutex
	seq     uint64
	pending *Request
	cancel  context.CancelFunc
}

// New creates an exchange appending to mgr and sending through sender.
func New(mgr *session.Manager, sender Sender) *Exchange {
	return &Exchange{mgr: mgr, sender: sender}
}

// State returns the current state.
func (e *Exchange) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pending != nil {
		return StateSending
	}
	return StateIdle
}

// Loading reports whether a request is in flight.
func (e *Exchange) Loading() bool {
	return e.State() == StateSending
}

// PendingSession returns the session of the in-flight request.
func (e *Exchange) PendingSession() (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pending == nil {
		return "", false
	}
	return e.pending.SessionID, true
}

// Begin starts an exchange for text in the current session. Blank text
// returns ErrEmpty and a request already in flight returns ErrBusy; neither
// changes any state. Otherwise the user message is appended, the session is
// retitled if it was empty, and loading is set.
func (e *Exchange) Begin(ctx context.Context, text string) (*Request, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmpty
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.pending != nil {
		return nil, ErrBusy
	}

	id := e.mgr.CurrentID()
	renamed, err := e.mgr.AppendUser(id, text)
	if err != nil {
		return nil, err
	}

	reqCtx, cancel := context.WithCancel(ctx)
	e.seq++
	req := &Request{
		Seq:       e.seq,
		SessionID: id,
		Text:      text,
		Renamed:   renamed,
		ctx:       reqCtx,
		started:   time.Now(),
	}
	e.pending = req
	e.cancel = cancel

	zap.L().Debug("exchange started",
		zap.Uint64("seq", req.Seq),
		zap.String("session_id", id),
		zap.Int("chars", len(text)),
	)
	return req, nil
}

// Do performs the HTTP round trip for req. It blocks until the backend
// answers, fails, or the request is cancelled. It does not touch state.
func (e *Exchange) Do(req *Request) Response {
	result, err := e.sender.Chat(req.ctx, req.Text)
	return Response{
		Seq:       req.Seq,
		SessionID: req.SessionID,
		Result:    result,
		Err:       err,
		Elapsed:   time.Since(req.started),
	}
}

// Complete applies resp: the reply (or the warning on failure) is appended to
// the originating session and loading clears. A cancelled or superseded
// request, or one whose session was deleted, is dropped.
func (e *Exchange) Complete(resp Response) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	res := Result{Outcome: Dropped, SessionID: resp.SessionID}

	if e.pending == nil || e.pending.Seq != resp.Seq {
		e.log(resp, res.Outcome)
		return res, nil
	}
	e.finishLocked()

	if backend.IsCanceled(resp.Err) {
		e.log(resp, res.Outcome)
		return res, nil
	}

	var msg model.Message
	if resp.Err != nil {
		msg = model.NewBotMessage(backend.UnreachableText)
		res.Outcome = Failed
	} else {
		msg = model.NewBotMessage(resp.Result.Text)
		res.Outcome = Delivered
	}

	ok, err := e.mgr.Append(resp.SessionID, msg)
	if err != nil {
		return res, err
	}
	if !ok {
		res.Outcome = Dropped
	} else {
		res.Message = msg
	}
	e.log(resp, res.Outcome)
	return res, nil
}

// Send runs Begin, Do and Complete in sequence.
func (e *Exchange) Send(ctx context.Context, text string) (Result, error) {
	req, err := e.Begin(ctx, text)
	if err != nil {
		return Result{}, err
	}
	return e.Complete(e.Do(req))
}

// Cancel abandons the in-flight request, if any. Loading clears at once and
// no message is appended for it. It reports whether a request was cancelled.
func (e *Exchange) Cancel() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.pending == nil {
		return false
	}
	zap.L().Info("exchange cancelled",
		zap.Uint64("seq", e.pending.Seq),
		zap.String("session_id", e.pending.SessionID),
	)
	e.finishLocked()
	return true
}

// CancelSession cancels the in-flight request if it was sent from id.
func (e *Exchange) CancelSession(id string) bool {
	e.mu.Lock()
	pending := e.pending != nil && e.pending.SessionID == id
	e.mu.Unlock()

	if !pending {
		return false
	}
	return e.Cancel()
}

// finishLocked clears the pending request and releases its context.
// Caller must hold e.mu.
func (e *Exchange) finishLocked() {
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.pending = nil
}

func (e *Exchange) log(resp Response, outcome Outcome) {
	fields := []zap.Field{
		zap.Uint64("seq", resp.Seq),
		zap.String("session_id", resp.SessionID),
		zap.Duration("latency", resp.Elapsed),
		zap.Stringer("outcome", outcome),
	}
	if resp.Result != nil {
		fields = append(fields,
			zap.String("request_id", resp.Result.RequestID),
			zap.Int("status", resp.Result.StatusCode),
		)
	}
	if resp.Err != nil {
		fields = append(fields, zap.Error(resp.Err))
	}
	zap.L().Info("exchange completed", fields...)
}
