// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"crypto/rand"
	"math/big"
)

// IDLength is the number of characters in a generated session id.
const IDLength = 8

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewID returns a random base-36 string of IDLength characters.
func NewID() string {
	buf := make([]byte, IDLength)
	max := big.NewInt(int64(len(base36)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the OS entropy source is broken.
			panic("util: crypto/rand unavailable: " + err.Error())
		}
		buf[i] = base36[n.Int64()]
	}
	return string(buf)
}

// IsBase36 reports whether s consists only of lowercase base-36 digits.
func IsBase36(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(r >= '0' && r <= '9') && !(r >= 'a' && r <= 'z') {
			return false
		}
	}
	return true
}
