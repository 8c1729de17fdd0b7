// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SkillBridge Contributors

package auth

import (
	"context"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// UserType distinguishes the two marketplace account variants.
type UserType string

// Valid user types.
const (
	UserTypeClient     UserType = "client"
	UserTypeFreelancer UserType = "freelancer"
)

// DefaultFreelancerTitle is used when a freelancer registers without a title.
const DefaultFreelancerTitle = "Freelancer"

// ParseUserType validates and converts a raw user type string.
func ParseUserType(s string) (UserType, error) {
	switch UserType(s) {
	case UserTypeClient:
		return UserTypeClient, nil
	case UserTypeFreelancer:
		return UserTypeFreelancer, nil
	}
	return "", oops.Code("AUTH_INVALID_USER_TYPE").
		With("user_type", s).
		Errorf("user type must be %q or %q", UserTypeClient, UserTypeFreelancer)
}

// Account represents a registered marketplace user.
type Account struct {
	ID           ulid.ULID
	Email        string
	PasswordHash string
	Type         UserType
	FirstName    string
	LastName     string
	Active       bool
	CreatedAt    time.Time
}

// NormalizeEmail lowercases and trims an email address. All repository
// lookups expect the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NewAccount creates a validated Account with a fresh identifier.
// The email must already be normalized and the password already hashed.
func NewAccount(email, passwordHash string, userType UserType, firstName, lastName string) (*Account, error) {
	if email == "" {
		return nil, oops.Code("AUTH_MISSING_FIELD").With("field", "email").Errorf("email cannot be empty")
	}
	if passwordHash == "" {
		return nil, oops.Code("AUTH_MISSING_FIELD").With("field", "password").Errorf("password hash cannot be empty")
	}
	if _, err := ParseUserType(string(userType)); err != nil {
		return nil, err
	}

	return &Account{
		ID:           ulid.Make(),
		Email:        email,
		PasswordHash: passwordHash,
		Type:         userType,
		FirstName:    strings.TrimSpace(firstName),
		LastName:     strings.TrimSpace(lastName),
		Active:       true,
		CreatedAt:    time.Now(),
	}, nil
}

// AccountRepository manages account and profile persistence.
type AccountRepository interface {
	// Create stores a new account. Returns an error wrapping ErrEmailExists
	// if the email uniqueness constraint is violated.
	Create(ctx context.Context, account *Account) error

	// FindByEmail retrieves an account by normalized email.
	// Returns ErrNotFound if no account has the given email.
	FindByEmail(ctx context.Context, email string) (*Account, error)

	// CreateProfile inserts the variant profile for an account and returns
	// the profile ID. For freelancers, title must already be defaulted.
	CreateProfile(ctx context.Context, accountID ulid.ULID, userType UserType, title string) (ulid.ULID, error)

	// FindProfileID retrieves the profile ID for an account, or nil if the
	// account has no profile of its variant.
	FindProfileID(ctx context.Context, accountID ulid.ULID, userType UserType) (*ulid.ULID, error)
}

// Transactor runs a function inside a single storage transaction.
// Repository calls made with the context passed to fn join that transaction.
type Transactor interface {
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
