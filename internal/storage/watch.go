package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// watchDebounce coalesces the burst of events an atomic rename produces.
const watchDebounce = 100 * time.Millisecond

// Watch calls fn whenever the snapshot file for key in the backend's directory is
// created, written, renamed or removed. It blocks until ctx is canceled.
func (b *FileBackend) Watch(ctx context.Context, key string, logger zerolog.Logger, fn func()) error {
	if err := ValidateKey(key); err != nil {
		return fmt.Errorf("failed to watch snapshot: %w", err)
	}
	if err := os.MkdirAll(b.dir, dirPerm); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory, not the file: atomic writes replace the inode.
	if err := watcher.Add(b.dir); err != nil {
		return fmt.Errorf("watch %s: %w", b.dir, err)
	}

	target := filepath.Base(b.Path(key))
	log := logger.With().Str("component", "storage_watch").Str("key", key).Logger()

	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			log.Debug().Str("op", event.Op.String()).Msg("snapshot changed on disk")

			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, fn)
			mu.Unlock()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("watch error")

		case <-ctx.Done():
			return nil
		}
	}
}
