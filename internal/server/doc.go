// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server is the local coach backend behind `fitchat serve`.
//
// Endpoints:
//   - POST /chat   - answer one message: {"message": "..."} -> {"reply": "..."}
//   - GET  /health - liveness probe
//
// Requests pass through request id, real IP, panic recovery, zap request
// logging, CORS and a per-client token bucket.
package server
