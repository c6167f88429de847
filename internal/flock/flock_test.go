//go:build unix

package flock_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	scouterrors "github.com/mrz1836/scout/internal/errors"
	"github.com/mrz1836/scout/internal/flock"
)

func TestRelease_FreesLock(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "activeTask.json.lock")

	first, err := flock.Acquire(context.Background(), path, time.Second)
	require.NoError(t, err)

	_, err = flock.Acquire(context.Background(), path, 60*time.Millisecond)
	require.ErrorIs(t, err, scouterrors.ErrLockTimeout, "second holder must wait")

	require.NoError(t, flock.Release(first))

	second, err := flock.Acquire(context.Background(), path, time.Second)
	require.NoError(t, err, "lock is free after release")
	require.NoError(t, flock.Release(second))
}

func TestAcquire(t *testing.T) {
	t.Parallel()

	t.Run("creates parent directory and lock file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "nested", "state", "activeTask.json.lock")

		f, err := flock.Acquire(context.Background(), path, time.Second)
		require.NoError(t, err)
		assert.FileExists(t, path)
		require.NoError(t, flock.Release(f))
	})

	t.Run("times out when held elsewhere", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "held.lock")

		held, err := flock.Acquire(context.Background(), path, time.Second)
		require.NoError(t, err)
		defer func() { _ = flock.Release(held) }()

		start := time.Now()
		_, err = flock.Acquire(context.Background(), path, 120*time.Millisecond)
		require.ErrorIs(t, err, scouterrors.ErrLockTimeout)
		assert.GreaterOrEqual(t, time.Since(start), 120*time.Millisecond)
	})

	t.Run("honors canceled context", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "ctx.lock")

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := flock.Acquire(ctx, path, time.Second)
		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("release of nil is a no-op", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, flock.Release(nil))
	})
}
