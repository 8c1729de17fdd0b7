// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SkillBridge Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/samber/oops"
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 6

// dummyCredentialHash is verified against when a login targets an unknown or
// disabled account, so that response time does not reveal whether the email
// is registered. It is a well-formed hash that matches no password.
//
//nolint:gosec // G101: intentionally fake hash for timing consistency, not a credential.
const dummyCredentialHash = "00000000000000000000000000000000:0000000000000000000000000000000000000000000000000000000000000000"

// RegisterInput carries the fields of a registration request. Title is
// optional and only meaningful for freelancers.
type RegisterInput struct {
	Email     string
	Password  string
	UserType  string
	FirstName string
	LastName  string
	Title     string
}

// Credentials carries a login request.
type Credentials struct {
	Email    string
	Password string
}

// AccountSummary is the account view returned to callers. ProfileID is nil
// when the account has no profile record of its variant.
type AccountSummary struct {
	ID        string
	Email     string
	UserType  UserType
	FirstName string
	LastName  string
	ProfileID *string
}

// SessionResult is returned by Register and Login: a fresh session token
// plus the owning account.
type SessionResult struct {
	Token     string
	ExpiresAt time.Time
	Account   AccountSummary
}

// Service orchestrates Register, Login, Logout, and CheckSession.
type Service struct {
	accounts AccountRepository
	sessions SessionRepository
	hasher   PasswordHasher
	tx       Transactor
	logger   *slog.Logger
}

// NewService creates a new Service with the default logger.
func NewService(accounts AccountRepository, sessions SessionRepository, hasher PasswordHasher, tx Transactor) (*Service, error) {
	return NewServiceWithLogger(accounts, sessions, hasher, tx, slog.Default())
}

// NewServiceWithLogger creates a new Service with an explicit logger.
func NewServiceWithLogger(accounts AccountRepository, sessions SessionRepository, hasher PasswordHasher, tx Transactor, logger *slog.Logger) (*Service, error) {
	if accounts == nil {
		return nil, oops.Errorf("accounts repository is required")
	}
	if sessions == nil {
		return nil, oops.Errorf("sessions repository is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if tx == nil {
		return nil, oops.Errorf("transactor is required")
	}
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	return &Service{
		accounts: accounts,
		sessions: sessions,
		hasher:   hasher,
		tx:       tx,
		logger:   logger,
	}, nil
}

// Register creates an account, its variant profile, and an initial session
// inside one transaction. No partial state survives a failure: if the
// profile or session insert fails, the account insert rolls back too.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*SessionResult, error) {
	required := []struct {
		name  string
		value string
	}{
		{"email", in.Email},
		{"password", in.Password},
		{"userType", in.UserType},
		{"firstName", in.FirstName},
		{"lastName", in.LastName},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return nil, oops.Code("AUTH_MISSING_FIELD").
				With("field", f.name).
				Errorf("missing required field: %s", f.name)
		}
	}

	userType, err := ParseUserType(in.UserType)
	if err != nil {
		return nil, err
	}

	if utf8.RuneCountInString(in.Password) < MinPasswordLength {
		return nil, oops.Code("AUTH_WEAK_PASSWORD").
			With("min_length", MinPasswordLength).
			Errorf("password must be at least %d characters", MinPasswordLength)
	}

	email := NormalizeEmail(in.Email)

	// Fast-path duplicate check. The unique constraint on users.email is the
	// final authority; a concurrent insert still surfaces as AUTH_EMAIL_EXISTS.
	if _, lookupErr := s.accounts.FindByEmail(ctx, email); lookupErr == nil {
		return nil, oops.Code("AUTH_EMAIL_EXISTS").
			Wrap(ErrEmailExists)
	} else if !errors.Is(lookupErr, ErrNotFound) {
		return nil, oops.Code("STORAGE_FAILED").
			With("operation", "find account by email").
			Wrap(lookupErr)
	}

	passwordHash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, oops.Code("STORAGE_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	account, err := NewAccount(email, passwordHash, userType, in.FirstName, in.LastName)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	if userType == UserTypeFreelancer && title == "" {
		title = DefaultFreelancerTitle
	}

	token, err := NewSessionToken()
	if err != nil {
		return nil, err
	}

	var (
		profileID string
		session   *Session
	)
	err = s.tx.InTransaction(ctx, func(ctx context.Context) error {
		if createErr := s.accounts.Create(ctx, account); createErr != nil {
			if errors.Is(createErr, ErrEmailExists) {
				return oops.Code("AUTH_EMAIL_EXISTS").Wrap(createErr)
			}
			return oops.Code("STORAGE_FAILED").
				With("operation", "insert account").
				Wrap(createErr)
		}

		pid, profileErr := s.accounts.CreateProfile(ctx, account.ID, userType, title)
		if profileErr != nil {
			return oops.Code("STORAGE_FAILED").
				With("operation", "insert profile").
				Wrap(profileErr)
		}
		profileID = pid.String()

		var sessionErr error
		session, sessionErr = NewSession(account.ID, token, ExpiryFromNow(SessionTTLDays))
		if sessionErr != nil {
			return sessionErr
		}
		if createErr := s.sessions.Create(ctx, session); createErr != nil {
			return oops.Code("STORAGE_FAILED").
				With("operation", "insert session").
				Wrap(createErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("account registered",
		"account_id", account.ID.String(),
		"user_type", string(userType),
	)

	return &SessionResult{
		Token:     token,
		ExpiresAt: session.ExpiresAt,
		Account:   summarize(account, &profileID),
	}, nil
}

// Login authenticates credentials and issues a fresh session. Prior sessions
// are left untouched. The error is identical whether the email is unknown,
// the account is disabled, or the password is wrong.
func (s *Service) Login(ctx context.Context, creds Credentials) (*SessionResult, error) {
	email := NormalizeEmail(creds.Email)
	if email == "" || creds.Password == "" {
		return nil, oops.Code("AUTH_MISSING_CREDENTIALS").Errorf("email and password are required")
	}

	account, lookupErr := s.accounts.FindByEmail(ctx, email)

	// Verify against a dummy hash when the account is unknown or disabled so
	// that response time stays consistent.
	targetHash := dummyCredentialHash
	usable := false
	if lookupErr != nil {
		if !errors.Is(lookupErr, ErrNotFound) {
			return nil, oops.Code("STORAGE_FAILED").
				With("operation", "find account by email").
				Wrap(lookupErr)
		}
	} else if account.Active {
		targetHash = account.PasswordHash
		usable = true
	}

	valid, verifyErr := s.hasher.Verify(creds.Password, targetHash)
	if verifyErr != nil || !usable || !valid {
		return nil, oops.Code("AUTH_INVALID_CREDENTIALS").Errorf("invalid credentials")
	}

	profileID, err := s.profileIDString(ctx, account)
	if err != nil {
		return nil, err
	}

	token, err := NewSessionToken()
	if err != nil {
		return nil, err
	}
	session, err := NewSession(account.ID, token, ExpiryFromNow(SessionTTLDays))
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, oops.Code("STORAGE_FAILED").
			With("operation", "insert session").
			Wrap(err)
	}

	s.logger.Info("login succeeded", "account_id", account.ID.String())

	return &SessionResult{
		Token:     token,
		ExpiresAt: session.ExpiresAt,
		Account:   summarize(account, profileID),
	}, nil
}

// Logout expires the session with the given token. It is idempotent and does
// not reveal whether the token existed.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return oops.Code("AUTH_MISSING_TOKEN").Errorf("session token required")
	}

	if err := s.sessions.Invalidate(ctx, token); err != nil {
		return oops.Code("STORAGE_FAILED").
			With("operation", "invalidate session").
			Wrap(err)
	}

	s.logger.Info("session invalidated")
	return nil
}

// CheckSession validates a session token and returns the owning account.
// Unknown, expired, and logged-out tokens are indistinguishable.
func (s *Service) CheckSession(ctx context.Context, token string) (*AccountSummary, error) {
	if token == "" {
		return nil, oops.Code("AUTH_MISSING_TOKEN").Errorf("session token required")
	}

	account, _, err := s.sessions.FindActiveByToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("AUTH_SESSION_INVALID").Errorf("invalid or expired session")
		}
		return nil, oops.Code("STORAGE_FAILED").
			With("operation", "find active session").
			Wrap(err)
	}

	profileID, err := s.profileIDString(ctx, account)
	if err != nil {
		return nil, err
	}

	summary := summarize(account, profileID)
	return &summary, nil
}

// profileIDString resolves the optional profile ID for an account. A missing
// profile is tolerated and returned as nil.
func (s *Service) profileIDString(ctx context.Context, account *Account) (*string, error) {
	pid, err := s.accounts.FindProfileID(ctx, account.ID, account.Type)
	if err != nil {
		return nil, oops.Code("STORAGE_FAILED").
			With("operation", "find profile id").
			Wrap(err)
	}
	if pid == nil {
		return nil, nil
	}
	str := pid.String()
	return &str, nil
}

func summarize(account *Account, profileID *string) AccountSummary {
	return AccountSummary{
		ID:        account.ID.String(),
		Email:     account.Email,
		UserType:  account.Type,
		FirstName: account.FirstName,
		LastName:  account.LastName,
		ProfileID: profileID,
	}
}
