// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// Fixed reply texts.
const (
	// NoResponseText is used when the response carries neither reply nor plan.
	NoResponseText = "No response"

	// UnreachableText is shown when the request or its decoding fails.
	UnreachableText = "⚠ Backend not reachable."
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// =============================================================================
// WIRE TYPES
// =============================================================================

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the body the backend answers with. Either field may be
// absent or of an unexpected type; ReplyText decides what is shown.
type ChatResponse struct {
	Reply json.RawMessage `json:"reply,omitempty"`
	Plan  json.RawMessage `json:"plan,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the body of a rejected request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ChatResult is a decoded reply plus request metadata.
type ChatResult struct {
	// Text is the reply text to append as a bot message.
	Text string
	// RequestID is the X-Request-ID sent with the request.
	RequestID string
	// StatusCode is the HTTP status of the response.
	StatusCode int
	// Duration is the time from send to decoded response.
	Duration time.Duration
}

// =============================================================================
// REPLY EXTRACTION
// =============================================================================

// ReplyText picks the text to display: reply if it is a string, else plan
// joined by "\n" if it is an array, else NoResponseText.
func (r *ChatResponse) ReplyText() string {
	var reply string
	if isJSONString(r.Reply) && json.Unmarshal(r.Reply, &reply) == nil {
		return reply
	}

	var plan []json.RawMessage
	if isJSONArray(r.Plan) && json.Unmarshal(r.Plan, &plan) == nil {
		lines := make([]string, len(plan))
		for i, item := range plan {
			lines[i] = planItemText(item)
		}
		return strings.Join(lines, "\n")
	}

	return NoResponseText
}

// planItemText renders one plan element. Strings are used as-is, null
// becomes empty, and anything else keeps its JSON text.
func planItemText(item json.RawMessage) string {
	trimmed := bytes.TrimSpace(item)
	switch {
	case isJSONString(trimmed):
		var s string
		if json.Unmarshal(trimmed, &s) == nil {
			return s
		}
	case string(trimmed) == "null":
		return ""
	}
	return string(trimmed)
}

func isJSONString(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '"'
}

func isJSONArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}
