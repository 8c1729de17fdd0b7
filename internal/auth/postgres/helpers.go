// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SkillBridge Contributors

package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier abstracts query execution over *pgxpool.Pool and pgx.Tx so that
// repository methods transparently join an active transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// txKey is the context key under which the Transactor stores the active
// transaction.
type txKey struct{}

// engine returns the active transaction from ctx if present, otherwise the
// pool.
func engine(ctx context.Context, pool *pgxpool.Pool) querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return pool
}
