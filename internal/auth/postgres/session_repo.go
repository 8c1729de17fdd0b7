// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SkillBridge Contributors

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/skillbridge/authd/internal/auth"
)

// SessionRepository implements auth.SessionRepository using PostgreSQL.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// Create stores a new session.
func (r *SessionRepository) Create(ctx context.Context, session *auth.Session) error {
	_, err := engine(ctx, r.pool).Exec(ctx, `
		INSERT INTO user_sessions (id, user_id, session_token, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`,
		session.ID.String(),
		session.AccountID.String(),
		session.Token,
		session.ExpiresAt,
		session.CreatedAt,
	)
	if err != nil {
		return oops.Code("SESSION_CREATE_FAILED").
			With("operation", "insert user_session").
			With("user_id", session.AccountID.String()).
			Wrap(err)
	}
	return nil
}

// Invalidate expires the session with the given token immediately.
// Unknown tokens are not an error; logout is idempotent and the response
// never reveals whether the token existed.
func (r *SessionRepository) Invalidate(ctx context.Context, token string) error {
	_, err := engine(ctx, r.pool).Exec(ctx, `
		UPDATE user_sessions SET expires_at = now()
		WHERE session_token = $1
	`, token)
	if err != nil {
		return oops.Code("SESSION_INVALIDATE_FAILED").
			With("operation", "expire user_session").
			Wrap(err)
	}
	return nil
}

// FindActiveByToken retrieves a non-expired session joined with its owning
// active account. Expired sessions, unknown tokens, and disabled accounts
// all surface as auth.ErrNotFound.
func (r *SessionRepository) FindActiveByToken(ctx context.Context, token string) (*auth.Account, *auth.Session, error) {
	row := engine(ctx, r.pool).QueryRow(ctx, `
		SELECT s.id, s.user_id, s.session_token, s.expires_at, s.created_at,
		       u.email, u.password_hash, u.user_type,
		       u.first_name, u.last_name, u.is_active, u.created_at
		FROM user_sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.session_token = $1
		  AND s.expires_at > now()
		  AND u.is_active = TRUE
	`, token)

	var (
		sessionIDStr string
		accountIDStr string
		tokenStored  string
		expiresAt    time.Time
		sessionAt    time.Time
		email        string
		passwordHash string
		userType     string
		firstName    string
		lastName     string
		isActive     bool
		accountAt    time.Time
	)

	err := row.Scan(
		&sessionIDStr, &accountIDStr, &tokenStored, &expiresAt, &sessionAt,
		&email, &passwordHash, &userType,
		&firstName, &lastName, &isActive, &accountAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, oops.Code("SESSION_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, nil, oops.Code("SESSION_GET_BY_TOKEN_FAILED").
			With("operation", "get active session by token").
			Wrap(err)
	}

	sessionID, err := ulid.Parse(sessionIDStr)
	if err != nil {
		return nil, nil, oops.Code("SESSION_INVALID_ID").
			With("operation", "parse session id").
			With("id", sessionIDStr).
			Wrap(err)
	}
	accountID, err := ulid.Parse(accountIDStr)
	if err != nil {
		return nil, nil, oops.Code("SESSION_INVALID_ACCOUNT_ID").
			With("operation", "parse user id").
			With("user_id", accountIDStr).
			Wrap(err)
	}

	account := &auth.Account{
		ID:           accountID,
		Email:        email,
		PasswordHash: passwordHash,
		Type:         auth.UserType(userType),
		FirstName:    firstName,
		LastName:     lastName,
		Active:       isActive,
		CreatedAt:    accountAt,
	}
	session := &auth.Session{
		ID:        sessionID,
		AccountID: accountID,
		Token:     tokenStored,
		ExpiresAt: expiresAt,
		CreatedAt: sessionAt,
	}
	return account, session, nil
}

// Compile-time interface check.
var _ auth.SessionRepository = (*SessionRepository)(nil)
