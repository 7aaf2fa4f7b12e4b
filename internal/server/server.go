// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/jeranaias/fitchat-tui/internal/backend"
	"github.com/jeranaias/fitchat-tui/internal/coach"
)

// ============================================================================
// CONSTANTS
// ============================================================================

const (
	// DefaultAddr is where the chat client expects the backend.
	DefaultAddr = "127.0.0.1:8000"

	// MaxRequestBodySize bounds a POST /chat body (64KB).
	MaxRequestBodySize = 64 * 1024

	// DefaultBurst is the token bucket size per client.
	DefaultBurst = 20
)

// ============================================================================
// HANDLER
// ============================================================================

// Responder answers one chat message.
type Responder interface {
	Respond(message string) coach.Reply
}

// Handler serves the chat API.
type Handler struct {
	responder Responder
}

// NewHandler creates a handler answering with r.
func NewHandler(r Responder) *Handler {
	return &Handler{responder: r}
}

// RegisterRoutes mounts the chat endpoints on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Get("/health", h.handleHealth)
}

// handleChat handles POST /chat.
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)

	var req backend.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		respondError(w, http.StatusBadRequest, "message is required")
		return
	}

	reply := h.responder.Respond(req.Message)
	zap.L().Debug("coach reply",
		zap.String("intent", string(reply.Intent)),
		zap.String("request_id", middleware.GetReqID(r.Context())))

	respondJSON(w, http.StatusOK, reply)
}

// handleHealth handles GET /health.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, backend.HealthResponse{Status: "ok"})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Debug("failed to write response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, backend.ErrorResponse{Error: message})
}

// ============================================================================
// SERVER
// ============================================================================

// Options configures a Server.
type Options struct {
	// Addr is the listen address. Empty selects DefaultAddr.
	Addr string
	// RateLimitRPS is the per-client request rate. 0 disables limiting.
	RateLimitRPS float64
	// CORS is the cross-origin policy. Nil selects DefaultCORSConfig.
	CORS *CORSConfig
	// Logger receives request logs. Nil selects zap.L().
	Logger *zap.Logger
}

// Server is the local coach backend.
type Server struct {
	addr    string
	handler http.Handler
	server  *http.Server
}

func (o Options) withDefaults() Options {
	if o.Addr == "" {
		o.Addr = DefaultAddr
	}
	if o.CORS == nil {
		o.CORS = DefaultCORSConfig()
	}
	if o.Logger == nil {
		o.Logger = zap.L()
	}
	return o
}

// New builds a server answering with responder.
func New(responder Responder, opts Options) *Server {
	opts = opts.withDefaults()
	handler := NewRouter(NewHandler(responder), opts)
	return &Server{
		addr:    opts.Addr,
		handler: handler,
		server: &http.Server{
			Addr:              opts.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
	}
}

// NewRouter wires the middleware stack and routes.
func NewRouter(h *Handler, opts Options) http.Handler {
	opts = opts.withDefaults()
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware(opts.Logger))
	r.Use(middleware.Recoverer)
	r.Use(SecurityHeadersMiddleware())
	r.Use(CORSMiddleware(opts.CORS))
	if opts.RateLimitRPS > 0 {
		r.Use(RateLimitMiddleware(NewRateLimiter(opts.RateLimitRPS, DefaultBurst)))
	}

	h.RegisterRoutes(r)
	return r
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.addr
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Serve accepts connections on ln until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	zap.L().Info("coach backend listening", zap.String("addr", ln.Addr().String()))
	err := s.server.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// ListenAndServe listens on the configured address and serves until Shutdown.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	zap.L().Info("coach backend shutting down")
	return s.server.Shutdown(ctx)
}
