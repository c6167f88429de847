package storage

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"

	scouterrors "github.com/mrz1836/scout/internal/errors"
)

// Adapter persists one JSON-encoded value under one fixed key.
//
// Every failure is absorbed here. A nil backend means persistence is disabled;
// Load then reports "nothing stored" and Save/Clear do nothing.
type Adapter struct {
	backend Backend
	key     string
	logger  zerolog.Logger
}

// NewAdapter binds backend to key.
func NewAdapter(backend Backend, key string, logger zerolog.Logger) *Adapter {
	return &Adapter{
		backend: backend,
		key:     key,
		logger:  logger.With().Str("component", "storage").Str("key", key).Logger(),
	}
}

// Key returns the storage key the adapter is bound to.
func (a *Adapter) Key() string {
	return a.key
}

// Enabled reports whether a backend is configured.
func (a *Adapter) Enabled() bool {
	return a.backend != nil
}

// Load decodes the stored value into v. It returns false when nothing usable is
// stored: missing key, disabled storage, backend failure or malformed payload.
// Callers should decode into a fresh value and adopt it only on true.
func (a *Adapter) Load(ctx context.Context, v any) bool {
	if a.backend == nil {
		return false
	}

	data, err := a.backend.Get(ctx, a.key)
	if err != nil {
		if !errors.Is(err, scouterrors.ErrSnapshotNotFound) {
			a.logger.Warn().Err(err).Msg("failed to read snapshot")
		}
		return false
	}

	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		a.logger.Warn().Err(err).Msg("ignoring malformed snapshot")
		return false
	}
	if string(raw) == "null" {
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		a.logger.Warn().Err(err).Msg("ignoring malformed snapshot")
		return false
	}
	return true
}

// Save encodes v and writes it under the key. Failures are logged and dropped.
func (a *Adapter) Save(ctx context.Context, v any) {
	if a.backend == nil {
		return
	}

	data, err := json.Marshal(v)
	if err != nil {
		a.logger.Warn().Err(err).Msg("failed to encode snapshot")
		return
	}
	if err := a.backend.Set(ctx, a.key, data); err != nil {
		a.logger.Warn().Err(err).Msg("failed to write snapshot")
		return
	}
	a.logger.Debug().Int("bytes", len(data)).Msg("snapshot saved")
}

// Clear deletes the stored value. Failures are logged and dropped.
func (a *Adapter) Clear(ctx context.Context) {
	if a.backend == nil {
		return
	}
	if err := a.backend.Delete(ctx, a.key); err != nil {
		a.logger.Warn().Err(err).Msg("failed to delete snapshot")
	}
}
