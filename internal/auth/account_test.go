// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SkillBridge Contributors

package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillbridge/authd/internal/auth"
)

func TestParseUserType(t *testing.T) {
	t.Run("accepts client", func(t *testing.T) {
		ut, err := auth.ParseUserType("client")
		require.NoError(t, err)
		assert.Equal(t, auth.UserTypeClient, ut)
	})

	t.Run("accepts freelancer", func(t *testing.T) {
		ut, err := auth.ParseUserType("freelancer")
		require.NoError(t, err)
		assert.Equal(t, auth.UserTypeFreelancer, ut)
	})

	t.Run("rejects unknown variants", func(t *testing.T) {
		for _, s := range []string{"", "admin", "Client", "CLIENT", "freelancer "} {
			_, err := auth.ParseUserType(s)
			assert.Error(t, err, "expected error for %q", s)
		}
	})
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "a@x.com", auth.NormalizeEmail("  A@X.Com "))
	assert.Equal(t, "a@x.com", auth.NormalizeEmail("a@x.com"))
	assert.Equal(t, "", auth.NormalizeEmail("   "))
}

func TestNewAccount(t *testing.T) {
	t.Run("creates active account with fresh ID", func(t *testing.T) {
		account, err := auth.NewAccount("a@x.com", "salt:hash", auth.UserTypeClient, " A ", " B ")
		require.NoError(t, err)
		assert.Equal(t, "a@x.com", account.Email)
		assert.Equal(t, auth.UserTypeClient, account.Type)
		assert.Equal(t, "A", account.FirstName)
		assert.Equal(t, "B", account.LastName)
		assert.True(t, account.Active)
		assert.False(t, account.CreatedAt.IsZero())

		other, err := auth.NewAccount("b@x.com", "salt:hash", auth.UserTypeClient, "A", "B")
		require.NoError(t, err)
		assert.NotEqual(t, account.ID, other.ID)
	})

	t.Run("rejects empty email", func(t *testing.T) {
		_, err := auth.NewAccount("", "salt:hash", auth.UserTypeClient, "A", "B")
		assert.Error(t, err)
	})

	t.Run("rejects empty password hash", func(t *testing.T) {
		_, err := auth.NewAccount("a@x.com", "", auth.UserTypeClient, "A", "B")
		assert.Error(t, err)
	})

	t.Run("rejects invalid user type", func(t *testing.T) {
		_, err := auth.NewAccount("a@x.com", "salt:hash", auth.UserType("admin"), "A", "B")
		assert.Error(t, err)
	})
}
