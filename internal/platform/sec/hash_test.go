// Copyright (c) 2026 Identra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/identra/internal/platform/sec"
)

/*
TestHashPassword_SaltedPerCall verifies that hashing the same plaintext twice
produces different digests (random per-call salt).
*/
func TestHashPassword_SaltedPerCall(t *testing.T) {
	first, err := sec.HashPassword("hunter2hunter2")
	require.NoError(t, err)

	second, err := sec.HashPassword("hunter2hunter2")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

/*
TestCheckPasswordHash covers the verify outcomes, including malformed digests.
*/
func TestCheckPasswordHash(t *testing.T) {
	digest, err := sec.HashPassword("correct-horse")
	require.NoError(t, err)

	tests := []struct {
		name     string
		plain    string
		digest   string
		expected bool
	}{
		{"matching_password", "correct-horse", digest, true},
		{"wrong_password", "battery-staple", digest, false},
		{"malformed_digest", "correct-horse", "not-a-bcrypt-digest", false},
		{"empty_digest", "correct-horse", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, sec.CheckPasswordHash(tt.plain, tt.digest))
		})
	}
}
