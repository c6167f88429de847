// Package storage persists store snapshots under a fixed key.
//
// A Backend is a small key/value contract implemented for the local filesystem,
// Redis and process memory. The Adapter binds one Backend to one key and fails
// soft: persistence problems are logged and never reach the stores.
package storage

import (
	"context"
	"fmt"
	"regexp"

	scouterrors "github.com/mrz1836/scout/internal/errors"
)

// Backend defines the key/value operations a snapshot store needs.
type Backend interface {
	// Get returns the raw payload stored under key.
	// Returns ErrSnapshotNotFound if nothing is stored.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set replaces the payload stored under key.
	Set(ctx context.Context, key string, data []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// validKeyRegex restricts keys to a single safe path segment.
var validKeyRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateKey checks that key is non-empty and cannot escape a directory.
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("storage key %w", scouterrors.ErrEmptyValue)
	}
	if !validKeyRegex.MatchString(key) || key == "." || key == ".." {
		return fmt.Errorf("storage key %q: %w", key, scouterrors.ErrPathTraversal)
	}
	return nil
}

func checkCtx(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
