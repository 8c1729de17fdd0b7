// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SkillBridge Contributors

package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Session token configuration.
const (
	SessionTokenBytes  = 48 // 48 bytes = 64 base64url chars, 384 bits entropy
	SessionTTLDays     = 30 // fixed policy
	MinSessionTokenLen = 43 // 256 bits base64url-encoded
)

// Session is a bearer-token-backed authorization grant tied to one account.
// Logout sets ExpiresAt to the current time rather than deleting the row;
// sessions are retained as an audit trail.
type Session struct {
	ID        ulid.ULID
	AccountID ulid.ULID
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// NewSession creates a validated Session instance.
func NewSession(accountID ulid.ULID, token string, expiresAt time.Time) (*Session, error) {
	if accountID.Compare(ulid.ULID{}) == 0 {
		return nil, oops.Code("SESSION_INVALID_ACCOUNT").Errorf("account ID cannot be zero")
	}
	if len(token) < MinSessionTokenLen {
		return nil, oops.Code("SESSION_INVALID_TOKEN").
			With("min_length", MinSessionTokenLen).
			Errorf("session token is too short")
	}
	if expiresAt.IsZero() {
		return nil, oops.Code("SESSION_INVALID_EXPIRY").Errorf("expiry time cannot be zero")
	}

	return &Session{
		ID:        ulid.Make(),
		AccountID: accountID,
		Token:     token,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}, nil
}

// IsExpiredAt returns true if the session would be expired at the given time.
func (s *Session) IsExpiredAt(t time.Time) bool {
	return !s.ExpiresAt.After(t)
}

// NewSessionToken creates a cryptographically secure, URL-safe session token.
func NewSessionToken() (string, error) {
	buf := make([]byte, SessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", oops.Code("SESSION_TOKEN_GENERATE_FAILED").
			With("operation", "crypto/rand.Read").
			With("requested_bytes", SessionTokenBytes).
			Wrap(err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// ExpiryFromNow returns the expiry timestamp for a session issued now.
func ExpiryFromNow(days int) time.Time {
	return time.Now().Add(time.Duration(days) * 24 * time.Hour)
}

// SessionRepository manages session persistence.
type SessionRepository interface {
	// Create stores a new session.
	Create(ctx context.Context, session *Session) error

	// Invalidate expires the session with the given token immediately.
	// Unknown tokens are a no-op, not an error; logout is idempotent.
	Invalidate(ctx context.Context, token string) error

	// FindActiveByToken retrieves a non-expired session and its owning
	// active account in a single query. Returns ErrNotFound when the token
	// is unknown, the session has expired, or the account is disabled.
	FindActiveByToken(ctx context.Context, token string) (*Account, *Session, error)
}
