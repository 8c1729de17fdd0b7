// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SkillBridge Contributors

// Package mocks provides testify mocks for the auth package interfaces.
package mocks

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/mock"

	"github.com/skillbridge/authd/internal/auth"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

// MockAccountRepository is a mock implementation of auth.AccountRepository.
type MockAccountRepository struct {
	mock.Mock
}

// NewMockAccountRepository creates a mock whose expectations are asserted
// when the test finishes.
func NewMockAccountRepository(t testingT) *MockAccountRepository {
	m := &MockAccountRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockAccountRepository) Create(ctx context.Context, account *auth.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) FindByEmail(ctx context.Context, email string) (*auth.Account, error) {
	args := m.Called(ctx, email)
	var account *auth.Account
	if v := args.Get(0); v != nil {
		account = v.(*auth.Account)
	}
	return account, args.Error(1)
}

func (m *MockAccountRepository) CreateProfile(ctx context.Context, accountID ulid.ULID, userType auth.UserType, title string) (ulid.ULID, error) {
	args := m.Called(ctx, accountID, userType, title)
	var id ulid.ULID
	if v := args.Get(0); v != nil {
		id = v.(ulid.ULID)
	}
	return id, args.Error(1)
}

func (m *MockAccountRepository) FindProfileID(ctx context.Context, accountID ulid.ULID, userType auth.UserType) (*ulid.ULID, error) {
	args := m.Called(ctx, accountID, userType)
	var id *ulid.ULID
	if v := args.Get(0); v != nil {
		id = v.(*ulid.ULID)
	}
	return id, args.Error(1)
}

// MockSessionRepository is a mock implementation of auth.SessionRepository.
type MockSessionRepository struct {
	mock.Mock
}

// NewMockSessionRepository creates a mock whose expectations are asserted
// when the test finishes.
func NewMockSessionRepository(t testingT) *MockSessionRepository {
	m := &MockSessionRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockSessionRepository) Create(ctx context.Context, session *auth.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) Invalidate(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockSessionRepository) FindActiveByToken(ctx context.Context, token string) (*auth.Account, *auth.Session, error) {
	args := m.Called(ctx, token)
	var account *auth.Account
	if v := args.Get(0); v != nil {
		account = v.(*auth.Account)
	}
	var session *auth.Session
	if v := args.Get(1); v != nil {
		session = v.(*auth.Session)
	}
	return account, session, args.Error(2)
}

// MockPasswordHasher is a mock implementation of auth.PasswordHasher.
type MockPasswordHasher struct {
	mock.Mock
}

// NewMockPasswordHasher creates a mock whose expectations are asserted when
// the test finishes.
func NewMockPasswordHasher(t testingT) *MockPasswordHasher {
	m := &MockPasswordHasher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockPasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *MockPasswordHasher) Verify(password, stored string) (bool, error) {
	args := m.Called(password, stored)
	return args.Bool(0), args.Error(1)
}

// Compile-time interface checks.
var (
	_ auth.AccountRepository = (*MockAccountRepository)(nil)
	_ auth.SessionRepository = (*MockSessionRepository)(nil)
	_ auth.PasswordHasher    = (*MockPasswordHasher)(nil)
)
