package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mrz1836/scout/internal/constants"
	scouterrors "github.com/mrz1836/scout/internal/errors"
	"github.com/mrz1836/scout/internal/flock"
)

// Directory and file permission constants.
const (
	dirPerm  = 0o750
	filePerm = 0o600
)

// FileBackend stores each key as <dir>/<key>.json, guarded by an exclusive
// <key>.json.lock so a CLI invocation and a running server never interleave.
type FileBackend struct {
	dir string
}

// NewFileBackend creates a FileBackend rooted at dir.
// If dir is empty, uses ~/.scout/state.
func NewFileBackend(dir string) (*FileBackend, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		dir = filepath.Join(home, constants.ScoutHome, constants.StateDir)
	}
	return &FileBackend{dir: dir}, nil
}

// Dir returns the directory snapshots are written to.
func (b *FileBackend) Dir() string {
	return b.dir
}

// Path returns the snapshot file path for key.
func (b *FileBackend) Path(key string) string {
	return filepath.Join(b.dir, key+constants.SnapshotExt)
}

// Get reads the snapshot for key under the key's lock.
func (b *FileBackend) Get(ctx context.Context, key string) ([]byte, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	if err := ValidateKey(key); err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	path := b.Path(key)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to get snapshot '%s': %w", key, scouterrors.ErrSnapshotNotFound)
	}

	lock, err := flock.Acquire(ctx, path+constants.LockExt, constants.LockTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot '%s': %w", key, err)
	}
	defer func() { _ = flock.Release(lock) }()

	data, err := os.ReadFile(path) //#nosec G304 -- key is validated and path is constructed from trusted base
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to get snapshot '%s': %w", key, scouterrors.ErrSnapshotNotFound)
		}
		return nil, fmt.Errorf("failed to read snapshot '%s': %w", key, err)
	}
	return data, nil
}

// Set atomically replaces the snapshot for key.
func (b *FileBackend) Set(ctx context.Context, key string, data []byte) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	if err := ValidateKey(key); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	if err := os.MkdirAll(b.dir, dirPerm); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	path := b.Path(key)
	lock, err := flock.Acquire(ctx, path+constants.LockExt, constants.LockTimeout)
	if err != nil {
		return fmt.Errorf("failed to save snapshot '%s': %w", key, err)
	}
	defer func() { _ = flock.Release(lock) }()

	if err := atomicWrite(path, data); err != nil {
		return fmt.Errorf("failed to save snapshot '%s': %w", key, err)
	}
	return nil
}

// Delete removes the snapshot for key.
func (b *FileBackend) Delete(ctx context.Context, key string) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	if err := ValidateKey(key); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}

	path := b.Path(key)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	lock, err := flock.Acquire(ctx, path+constants.LockExt, constants.LockTimeout)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot '%s': %w", key, err)
	}
	defer func() { _ = flock.Release(lock) }()

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete snapshot '%s': %w", key, err)
	}
	return nil
}

// atomicWrite writes data to a temp file and renames it over path.
func atomicWrite(path string, data []byte) error {
	tmpPath := path + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePerm) //#nosec G304 -- path is constructed internally
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write data: %w", err)
	}

	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to sync file: %w", err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename file: %w", err)
	}
	return nil
}

var _ Backend = (*FileBackend)(nil)
