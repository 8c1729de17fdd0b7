// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SkillBridge Contributors

package auth_test

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillbridge/authd/internal/auth"
)

func TestNewSessionToken(t *testing.T) {
	t.Run("meets minimum length", func(t *testing.T) {
		token, err := auth.NewSessionToken()
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(token), auth.MinSessionTokenLen)
	})

	t.Run("uses URL-safe alphabet", func(t *testing.T) {
		token, err := auth.NewSessionToken()
		require.NoError(t, err)
		assert.NotContains(t, token, "+")
		assert.NotContains(t, token, "/")
		assert.NotContains(t, token, "=")
	})

	t.Run("tokens are unique", func(t *testing.T) {
		seen := make(map[string]struct{})
		for i := 0; i < 100; i++ {
			token, err := auth.NewSessionToken()
			require.NoError(t, err)
			_, dup := seen[token]
			require.False(t, dup, "duplicate token generated")
			seen[token] = struct{}{}
		}
	})
}

func TestExpiryFromNow(t *testing.T) {
	before := time.Now().Add(30 * 24 * time.Hour)
	expiry := auth.ExpiryFromNow(auth.SessionTTLDays)
	after := time.Now().Add(30 * 24 * time.Hour)

	assert.False(t, expiry.Before(before))
	assert.False(t, expiry.After(after))
}

func TestNewSession(t *testing.T) {
	accountID := ulid.Make()
	token, err := auth.NewSessionToken()
	require.NoError(t, err)

	t.Run("creates valid session", func(t *testing.T) {
		expiresAt := auth.ExpiryFromNow(auth.SessionTTLDays)
		session, err := auth.NewSession(accountID, token, expiresAt)
		require.NoError(t, err)
		assert.Equal(t, accountID, session.AccountID)
		assert.Equal(t, token, session.Token)
		assert.Equal(t, expiresAt, session.ExpiresAt)
		assert.False(t, session.CreatedAt.IsZero())
	})

	t.Run("rejects zero account ID", func(t *testing.T) {
		_, err := auth.NewSession(ulid.ULID{}, token, auth.ExpiryFromNow(auth.SessionTTLDays))
		assert.Error(t, err)
	})

	t.Run("rejects short token", func(t *testing.T) {
		_, err := auth.NewSession(accountID, "short", auth.ExpiryFromNow(auth.SessionTTLDays))
		assert.Error(t, err)
	})

	t.Run("rejects zero expiry", func(t *testing.T) {
		_, err := auth.NewSession(accountID, token, time.Time{})
		assert.Error(t, err)
	})
}

func TestSessionIsExpiredAt(t *testing.T) {
	accountID := ulid.Make()
	token, err := auth.NewSessionToken()
	require.NoError(t, err)

	expiresAt := time.Now().Add(time.Hour)
	session, err := auth.NewSession(accountID, token, expiresAt)
	require.NoError(t, err)

	assert.False(t, session.IsExpiredAt(expiresAt.Add(-time.Minute)))
	assert.True(t, session.IsExpiredAt(expiresAt))
	assert.True(t, session.IsExpiredAt(expiresAt.Add(time.Minute)))
}
