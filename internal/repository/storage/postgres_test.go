package storage

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Taichi-iskw/idcable/internal/errors"
)

func TestPostgresRepository_Get(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		setup    func(mock pgxmock.PgxPoolIface)
		want     string
		wantCode string
	}{
		{
			name: "entry found",
			key:  "favorites",
			setup: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows([]string{"value"}).AddRow(`["cnn.us"]`)
				mock.ExpectQuery("SELECT value FROM kv_entries WHERE key = \\$1").
					WithArgs("favorites").
					WillReturnRows(rows)
			},
			want: `["cnn.us"]`,
		},
		{
			name: "entry not found",
			key:  "favorites",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("SELECT value FROM kv_entries WHERE key = \\$1").
					WithArgs("favorites").
					WillReturnError(pgx.ErrNoRows)
			},
			wantCode: apperrors.CodeNotFound,
		},
		{
			name: "missing table",
			key:  "favorites",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("SELECT value FROM kv_entries WHERE key = \\$1").
					WithArgs("favorites").
					WillReturnError(&pgconn.PgError{Code: "42P01"})
			},
			wantCode: apperrors.CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup pgxmock
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.setup(mock)
			repo := NewPostgresRepository(mock)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			got, err := repo.Get(ctx, tt.key)

			if tt.wantCode != "" {
				require.Error(t, err)
				assert.True(t, apperrors.HasCode(err, tt.wantCode), "unexpected error: %v", err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}

			// Verify all expectations were met
			assert.NoError(t, mock.ExpectationsWereMet(), "pgxmock expectations were not met")
		})
	}
}

func TestPostgresRepository_Put(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(mock pgxmock.PgxPoolIface)
		wantCode string
	}{
		{
			name: "upsert succeeds",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec("INSERT INTO kv_entries").
					WithArgs("favorites", `["cnn.us","bbc.uk"]`).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
			},
		},
		{
			name: "connection failure",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec("INSERT INTO kv_entries").
					WithArgs("favorites", `["cnn.us","bbc.uk"]`).
					WillReturnError(&pgconn.PgError{Code: "08006"})
			},
			wantCode: apperrors.CodeExternal,
		},
		{
			name: "non postgres error",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec("INSERT INTO kv_entries").
					WithArgs("favorites", `["cnn.us","bbc.uk"]`).
					WillReturnError(assert.AnError)
			},
			wantCode: apperrors.CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.setup(mock)
			repo := NewPostgresRepository(mock)

			err = repo.Put(context.Background(), "favorites", `["cnn.us","bbc.uk"]`)

			if tt.wantCode != "" {
				require.Error(t, err)
				assert.True(t, apperrors.HasCode(err, tt.wantCode), "unexpected error: %v", err)
			} else {
				assert.NoError(t, err)
			}

			assert.NoError(t, mock.ExpectationsWereMet(), "pgxmock expectations were not met")
		})
	}
}

func TestHandlePostgreSQLError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{name: "unique violation", err: &pgconn.PgError{Code: "23505"}, wantCode: apperrors.CodeConflict},
		{name: "not null violation", err: &pgconn.PgError{Code: "23502"}, wantCode: apperrors.CodeInvalidArg},
		{name: "foreign key violation", err: &pgconn.PgError{Code: "23503"}, wantCode: apperrors.CodeDependency},
		{name: "connection failure", err: &pgconn.PgError{Code: "08006"}, wantCode: apperrors.CodeDependency},
		{name: "too many connections", err: &pgconn.PgError{Code: "53300"}, wantCode: apperrors.CodeDependency},
		{name: "unknown code", err: &pgconn.PgError{Code: "XX000"}, wantCode: apperrors.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := handlePostgreSQLError(tt.err, "operation")
			require.NotNil(t, appErr)
			assert.Equal(t, tt.wantCode, appErr.Code)
		})
	}

	assert.Nil(t, handlePostgreSQLError(nil, "operation"))
}
