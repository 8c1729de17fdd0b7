// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SkillBridge Contributors

package auth_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillbridge/authd/internal/auth"
)

func TestHashPassword(t *testing.T) {
	hasher := auth.NewPBKDF2Hasher()

	t.Run("produces salt:key format", func(t *testing.T) {
		hash, err := hasher.Hash("password123")
		require.NoError(t, err)

		salt, key, found := strings.Cut(hash, ":")
		require.True(t, found)
		assert.Len(t, salt, 32) // 16 salt bytes hex-encoded
		assert.Len(t, key, 64)  // 32 key bytes hex-encoded
	})

	t.Run("different passwords produce different hashes", func(t *testing.T) {
		hash1, err := hasher.Hash("password1")
		require.NoError(t, err)
		hash2, err := hasher.Hash("password2")
		require.NoError(t, err)
		assert.NotEqual(t, hash1, hash2)
	})

	t.Run("same password produces different hashes (salt)", func(t *testing.T) {
		hash1, err := hasher.Hash("samepassword")
		require.NoError(t, err)
		hash2, err := hasher.Hash("samepassword")
		require.NoError(t, err)
		assert.NotEqual(t, hash1, hash2)

		// Both still verify.
		ok, err := hasher.Verify("samepassword", hash1)
		require.NoError(t, err)
		assert.True(t, ok)
		ok, err = hasher.Verify("samepassword", hash2)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("rejects empty password", func(t *testing.T) {
		_, err := hasher.Hash("")
		assert.Error(t, err)
	})
}

func TestVerifyPassword(t *testing.T) {
	hasher := auth.NewPBKDF2Hasher()

	t.Run("correct password verifies", func(t *testing.T) {
		hash, err := hasher.Hash("correctpassword")
		require.NoError(t, err)

		ok, err := hasher.Verify("correctpassword", hash)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("incorrect password fails", func(t *testing.T) {
		hash, err := hasher.Hash("correctpassword")
		require.NoError(t, err)

		ok, err := hasher.Verify("wrongpassword", hash)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("missing separator returns error", func(t *testing.T) {
		_, err := hasher.Verify("password", "not-a-valid-hash")
		assert.Error(t, err)
	})

	t.Run("invalid salt hex returns error", func(t *testing.T) {
		_, err := hasher.Verify("password", "zzzz:00000000000000000000000000000000")
		assert.Error(t, err)
	})

	t.Run("invalid key hex returns error", func(t *testing.T) {
		_, err := hasher.Verify("password", "00000000000000000000000000000000:zzzz")
		assert.Error(t, err)
	})

	t.Run("empty derived key returns error", func(t *testing.T) {
		_, err := hasher.Verify("password", "00000000000000000000000000000000:")
		assert.Error(t, err)
	})
}
