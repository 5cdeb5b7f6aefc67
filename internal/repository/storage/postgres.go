package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	apperrors "github.com/Taichi-iskw/idcable/internal/errors"
)

// Pool interface for abstracting pgx connection pool
type Pool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// postgresRepository implements Repository on the kv_entries table
type postgresRepository struct {
	pool Pool
}

// NewPostgresRepository creates a Repository using PostgreSQL.
// The kv_entries table is created by the embedded migrations.
func NewPostgresRepository(pool Pool) Repository {
	return &postgresRepository{
		pool: pool,
	}
}

// Get retrieves the value stored under key
func (r *postgresRepository) Get(ctx context.Context, key string) (string, error) {
	sql := "SELECT value FROM kv_entries WHERE key = $1"
	row := r.pool.QueryRow(ctx, sql, key)

	var value string
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.Wrap(err, apperrors.CodeNotFound, fmt.Sprintf("key %q not found", key))
		}
		return "", handlePostgreSQLError(err, "failed to get kv entry")
	}
	return value, nil
}

// Put stores value under key, replacing any previous value
func (r *postgresRepository) Put(ctx context.Context, key, value string) error {
	sql := `INSERT INTO kv_entries (key, value, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`
	_, err := r.pool.Exec(ctx, sql, key, value)
	if err != nil {
		return handlePostgreSQLError(err, "failed to put kv entry")
	}
	return nil
}

// Close closes the pool
func (r *postgresRepository) Close() error {
	r.pool.Close()
	return nil
}
