package storage

import (
	"context"
	"fmt"
	"sync"

	scouterrors "github.com/mrz1836/scout/internal/errors"
)

// MemoryBackend keeps snapshots in process memory. Nothing survives a restart.
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryBackend creates an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string][]byte)}
}

// Get returns a copy of the payload stored under key.
func (b *MemoryBackend) Get(ctx context.Context, key string) ([]byte, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	v, ok := b.data[key]
	if !ok {
		return nil, fmt.Errorf("failed to get snapshot '%s': %w", key, scouterrors.ErrSnapshotNotFound)
	}
	return append([]byte(nil), v...), nil
}

// Set stores a copy of data under key.
func (b *MemoryBackend) Set(ctx context.Context, key string, data []byte) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	if key == "" {
		return fmt.Errorf("failed to save snapshot: key %w", scouterrors.ErrEmptyValue)
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	b.data[key] = append([]byte(nil), data...)
	return nil
}

// Delete removes key.
func (b *MemoryBackend) Delete(ctx context.Context, key string) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.data, key)
	return nil
}

var _ Backend = (*MemoryBackend)(nil)
