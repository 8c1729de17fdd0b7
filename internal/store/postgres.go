// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SkillBridge Contributors

// Package store provides database connectivity and schema management.
package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// Connection probe parameters for process start. The request path itself
// performs no retries; transient storage errors propagate to the caller.
const (
	pingMaxRetries  = 5
	pingBaseBackoff = 500 * time.Millisecond
)

// NewPool creates a connection pool and waits for the database to become
// reachable, retrying the initial ping with exponential backoff.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, oops.Code("DB_CONFIG_INVALID").
			With("operation", "parse connection string").
			Wrap(err)
	}

	backoff := retry.WithMaxRetries(pingMaxRetries, retry.NewExponential(pingBaseBackoff))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if pingErr := pool.Ping(ctx); pingErr != nil {
			return retry.RetryableError(pingErr)
		}
		return nil
	})
	if err != nil {
		pool.Close()
		return nil, oops.Code("DB_CONNECT_FAILED").
			With("operation", "ping database").
			Wrap(err)
	}

	return pool, nil
}
