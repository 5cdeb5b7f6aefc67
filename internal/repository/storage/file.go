package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	apperrors "github.com/Taichi-iskw/idcable/internal/errors"
)

// fileRepository keeps all entries in a single JSON object on disk
type fileRepository struct {
	path string
	mu   sync.Mutex
}

// NewFileRepository creates a Repository backed by the JSON file at path
func NewFileRepository(path string) (Repository, error) {
	if path == "" {
		return nil, apperrors.New(apperrors.CodeInvalidArg, "storage path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to create storage directory")
	}
	return &fileRepository{path: path}, nil
}

// Get retrieves the value stored under key
func (r *fileRepository) Get(ctx context.Context, key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.read()
	if err != nil {
		return "", err
	}

	value, ok := entries[key]
	if !ok {
		return "", apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("key %q not found", key))
	}
	return value, nil
}

// Put stores value under key, replacing any previous value
func (r *fileRepository) Put(ctx context.Context, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.read()
	if err != nil {
		return err
	}
	entries[key] = value

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to encode storage file")
	}

	// Write to a sibling file first so a crash never leaves a truncated store
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to write storage file")
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to replace storage file")
	}
	return nil
}

// Close is a no-op; the file is not held open between calls
func (r *fileRepository) Close() error {
	return nil
}

func (r *fileRepository) read() (map[string]string, error) {
	entries := make(map[string]string)

	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return entries, nil
		}
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to read storage file")
	}

	if len(data) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDecode, "failed to parse storage file")
	}
	return entries, nil
}
