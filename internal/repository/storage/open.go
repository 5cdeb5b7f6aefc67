package storage

import (
	"context"
	"fmt"

	"github.com/Taichi-iskw/idcable/internal/config"
	apperrors "github.com/Taichi-iskw/idcable/internal/errors"
)

// Open returns the Repository selected by cfg.Storage.Backend
func Open(ctx context.Context, cfg *config.Config) (Repository, error) {
	switch cfg.Storage.Backend {
	case config.StorageFile, "":
		path, err := cfg.StoragePath()
		if err != nil {
			return nil, err
		}
		return NewFileRepository(path)

	case config.StorageSQLite:
		path, err := cfg.StoragePath()
		if err != nil {
			return nil, err
		}
		return NewSQLiteRepository(ctx, path)

	case config.StoragePostgres:
		pool, err := config.NewDatabasePool(ctx, cfg)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeDependency, "failed to connect to database")
		}
		return NewPostgresRepository(pool), nil

	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.Storage.Backend)
	}
}
