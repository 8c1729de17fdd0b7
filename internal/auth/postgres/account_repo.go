// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SkillBridge Contributors

// Package postgres implements the auth repositories over PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/skillbridge/authd/internal/auth"
)

// AccountRepository implements auth.AccountRepository using PostgreSQL.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

// Create stores a new account. A unique violation on users.email is
// translated to auth.ErrEmailExists so concurrent registrations race safely.
func (r *AccountRepository) Create(ctx context.Context, account *auth.Account) error {
	_, err := engine(ctx, r.pool).Exec(ctx, `
		INSERT INTO users (
			id, email, password_hash, user_type,
			first_name, last_name, is_active, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		account.ID.String(),
		account.Email,
		account.PasswordHash,
		string(account.Type),
		account.FirstName,
		account.LastName,
		account.Active,
		account.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return oops.Code("ACCOUNT_DUPLICATE_EMAIL").
				With("constraint", pgErr.ConstraintName).
				Wrap(auth.ErrEmailExists)
		}
		return oops.Code("ACCOUNT_CREATE_FAILED").
			With("operation", "insert user").
			Wrap(err)
	}
	return nil
}

// FindByEmail retrieves an account by normalized email.
func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*auth.Account, error) {
	row := engine(ctx, r.pool).QueryRow(ctx, `
		SELECT id, email, password_hash, user_type,
		       first_name, last_name, is_active, created_at
		FROM users
		WHERE email = $1
	`, email)

	account, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("ACCOUNT_NOT_FOUND").
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("ACCOUNT_GET_BY_EMAIL_FAILED").
			With("operation", "get user by email").
			Wrap(err)
	}
	return account, nil
}

// CreateProfile inserts the variant profile record for an account and
// returns its ID. The title argument is only used for freelancers.
func (r *AccountRepository) CreateProfile(ctx context.Context, accountID ulid.ULID, userType auth.UserType, title string) (ulid.ULID, error) {
	profileID := ulid.Make()

	var err error
	switch userType {
	case auth.UserTypeClient:
		_, err = engine(ctx, r.pool).Exec(ctx, `
			INSERT INTO client_profiles (id, user_id)
			VALUES ($1, $2)
		`, profileID.String(), accountID.String())
	case auth.UserTypeFreelancer:
		_, err = engine(ctx, r.pool).Exec(ctx, `
			INSERT INTO freelancer_profiles (id, user_id, title)
			VALUES ($1, $2, $3)
		`, profileID.String(), accountID.String(), title)
	default:
		return ulid.ULID{}, oops.Code("PROFILE_INVALID_TYPE").
			With("user_type", string(userType)).
			Errorf("unknown user type")
	}
	if err != nil {
		return ulid.ULID{}, oops.Code("PROFILE_CREATE_FAILED").
			With("operation", "insert profile").
			With("user_id", accountID.String()).
			With("user_type", string(userType)).
			Wrap(err)
	}
	return profileID, nil
}

// FindProfileID retrieves the profile ID for an account, or nil if the
// account has no profile of its variant.
func (r *AccountRepository) FindProfileID(ctx context.Context, accountID ulid.ULID, userType auth.UserType) (*ulid.ULID, error) {
	var table string
	switch userType {
	case auth.UserTypeClient:
		table = "client_profiles"
	case auth.UserTypeFreelancer:
		table = "freelancer_profiles"
	default:
		return nil, oops.Code("PROFILE_INVALID_TYPE").
			With("user_type", string(userType)).
			Errorf("unknown user type")
	}

	var idStr string
	err := engine(ctx, r.pool).QueryRow(ctx,
		`SELECT id FROM `+table+` WHERE user_id = $1`,
		accountID.String(),
	).Scan(&idStr)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, oops.Code("PROFILE_GET_FAILED").
			With("operation", "get profile id").
			With("user_id", accountID.String()).
			Wrap(err)
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("PROFILE_INVALID_ID").
			With("operation", "parse profile id").
			With("id", idStr).
			Wrap(err)
	}
	return &id, nil
}

// scanAccount scans a single row into an Account.
// Callers are responsible for handling pgx.ErrNoRows.
func scanAccount(row pgx.Row) (*auth.Account, error) {
	var (
		idStr        string
		email        string
		passwordHash string
		userType     string
		firstName    string
		lastName     string
		isActive     bool
		createdAt    time.Time
	)

	err := row.Scan(&idStr, &email, &passwordHash, &userType, &firstName, &lastName, &isActive, &createdAt)
	if err != nil {
		// Propagate pgx.ErrNoRows unchanged for callers to handle with context.
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // Callers wrap with context-specific info
		}
		return nil, oops.Code("ACCOUNT_SCAN_FAILED").
			With("operation", "scan user").
			Wrap(err)
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("ACCOUNT_INVALID_ID").
			With("operation", "parse user id").
			With("id", idStr).
			Wrap(err)
	}

	return &auth.Account{
		ID:           id,
		Email:        email,
		PasswordHash: passwordHash,
		Type:         auth.UserType(userType),
		FirstName:    firstName,
		LastName:     lastName,
		Active:       isActive,
		CreatedAt:    createdAt,
	}, nil
}

// Compile-time interface check.
var _ auth.AccountRepository = (*AccountRepository)(nil)
