// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SkillBridge Contributors

//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillbridge/authd/internal/auth"
	authpg "github.com/skillbridge/authd/internal/auth/postgres"
)

func TestSessionRepository_CreateAndFindActiveByToken(t *testing.T) {
	truncateTables(t)
	ctx := context.Background()
	repo := authpg.NewSessionRepository(testPool)

	account := createTestAccount(t, "ada@example.com", auth.UserTypeClient)
	session := createTestSession(t, account, time.Now().Add(time.Hour))

	foundAccount, foundSession, err := repo.FindActiveByToken(ctx, session.Token)
	require.NoError(t, err)

	assert.Equal(t, account.ID, foundAccount.ID)
	assert.Equal(t, account.Email, foundAccount.Email)
	assert.Equal(t, session.ID, foundSession.ID)
	assert.Equal(t, session.Token, foundSession.Token)
	assert.Equal(t, account.ID, foundSession.AccountID)
}

func TestSessionRepository_FindActiveByToken_Unknown(t *testing.T) {
	truncateTables(t)
	repo := authpg.NewSessionRepository(testPool)

	_, _, err := repo.FindActiveByToken(context.Background(), "no-such-token")
	require.Error(t, err)
	assert.ErrorIs(t, err, auth.ErrNotFound)
}

func TestSessionRepository_FindActiveByToken_Expired(t *testing.T) {
	truncateTables(t)
	ctx := context.Background()
	repo := authpg.NewSessionRepository(testPool)

	account := createTestAccount(t, "ada@example.com", auth.UserTypeClient)
	session := createTestSession(t, account, time.Now().Add(-time.Minute))

	_, _, err := repo.FindActiveByToken(ctx, session.Token)
	require.Error(t, err)
	assert.ErrorIs(t, err, auth.ErrNotFound)
}

func TestSessionRepository_FindActiveByToken_DisabledAccount(t *testing.T) {
	truncateTables(t)
	ctx := context.Background()
	repo := authpg.NewSessionRepository(testPool)

	account := createTestAccount(t, "ada@example.com", auth.UserTypeClient)
	session := createTestSession(t, account, time.Now().Add(time.Hour))

	_, err := testPool.Exec(ctx, `UPDATE users SET is_active = FALSE WHERE id = $1`, account.ID.String())
	require.NoError(t, err)

	_, _, err = repo.FindActiveByToken(ctx, session.Token)
	require.Error(t, err)
	assert.ErrorIs(t, err, auth.ErrNotFound)
}

func TestSessionRepository_Invalidate(t *testing.T) {
	truncateTables(t)
	ctx := context.Background()
	repo := authpg.NewSessionRepository(testPool)

	account := createTestAccount(t, "ada@example.com", auth.UserTypeClient)
	session := createTestSession(t, account, time.Now().Add(time.Hour))

	require.NoError(t, repo.Invalidate(ctx, session.Token))

	_, _, err := repo.FindActiveByToken(ctx, session.Token)
	require.Error(t, err)
	assert.ErrorIs(t, err, auth.ErrNotFound)

	// Invalidating again, or invalidating an unknown token, is not an error.
	assert.NoError(t, repo.Invalidate(ctx, session.Token))
	assert.NoError(t, repo.Invalidate(ctx, "never-issued"))
}

func TestSessionRepository_Invalidate_LeavesOtherSessionsAlone(t *testing.T) {
	truncateTables(t)
	ctx := context.Background()
	repo := authpg.NewSessionRepository(testPool)

	account := createTestAccount(t, "ada@example.com", auth.UserTypeClient)
	first := createTestSession(t, account, time.Now().Add(time.Hour))
	second := createTestSession(t, account, time.Now().Add(time.Hour))

	require.NoError(t, repo.Invalidate(ctx, first.Token))

	_, _, err := repo.FindActiveByToken(ctx, second.Token)
	assert.NoError(t, err)
}
