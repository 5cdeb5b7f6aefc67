package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	apperrors "github.com/Taichi-iskw/idcable/internal/errors"
)

// sqliteRepository stores entries in a single-table SQLite database
type sqliteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens (or creates) the SQLite database at path
func NewSQLiteRepository(ctx context.Context, path string) (Repository, error) {
	if path == "" {
		return nil, apperrors.New(apperrors.CodeInvalidArg, "storage path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to create storage directory")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to open SQLite database")
	}
	// A single connection keeps writers serialized
	db.SetMaxOpenConns(1)

	_, err = db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS kv (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to create kv table")
	}

	return &sqliteRepository{db: db}, nil
}

// Get retrieves the value stored under key
func (r *sqliteRepository) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", apperrors.Wrap(err, apperrors.CodeNotFound, fmt.Sprintf("key %q not found", key))
		}
		return "", apperrors.Wrap(err, apperrors.CodeInternal, "failed to get kv entry")
	}
	return value, nil
}

// Put stores value under key, replacing any previous value
func (r *sqliteRepository) Put(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to put kv entry")
	}
	return nil
}

// Close closes the database handle
func (r *sqliteRepository) Close() error {
	return r.db.Close()
}
