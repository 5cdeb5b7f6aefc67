package storage

import (
	"context"
)

// Repository is a durable string key-value store.
// Get returns a NOT_FOUND AppError when the key has never been written.
type Repository interface {
	// Get retrieves the value stored under key
	Get(ctx context.Context, key string) (string, error)

	// Put stores value under key, replacing any previous value
	Put(ctx context.Context, key, value string) error

	// Close releases the underlying resources
	Close() error
}
