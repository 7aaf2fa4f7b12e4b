// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides the HTTP client for the fitness coach backend.
//
// One request is made per user message: POST {base}/chat with body
// {"message": text}. The reply text is taken from the response's "reply"
// field when it is a string, otherwise from "plan" joined with newlines when
// it is an array, otherwise it is "No response".
//
// # Key Types
//
//   - Client: HTTP client for the backend
//   - ChatResult: reply text plus request metadata
//   - ClientError: typed error with sentinel values and Is* helpers
//
// # Usage
//
//	client := backend.NewClient()
//	result, err := client.Chat(ctx, "best diet for muscle gain")
//	if backend.IsCanceled(err) {
//	    return // user gave up on the request
//	}
//	if err != nil {
//	    // show backend.UnreachableText
//	}
//	fmt.Println(result.Text)
package backend
