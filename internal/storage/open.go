package storage

import (
	"fmt"
	"io"

	scouterrors "github.com/mrz1836/scout/internal/errors"
)

// Backend names accepted by Open.
const (
	KindFile   = "file"
	KindRedis  = "redis"
	KindMemory = "memory"
	KindNone   = "none"
)

// Options selects and configures a backend.
type Options struct {
	Kind  string
	Dir   string
	Redis RedisOptions
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open builds the backend named by opts.Kind. The returned closer releases any
// connections the backend holds. KindNone returns a nil Backend, which an
// Adapter treats as disabled storage.
func Open(opts Options) (Backend, io.Closer, error) {
	switch opts.Kind {
	case KindFile, "":
		b, err := NewFileBackend(opts.Dir)
		if err != nil {
			return nil, nil, err
		}
		return b, nopCloser{}, nil
	case KindRedis:
		b, err := NewRedisBackend(opts.Redis)
		if err != nil {
			return nil, nil, err
		}
		return b, b, nil
	case KindMemory:
		return NewMemoryBackend(), nopCloser{}, nil
	case KindNone:
		return nil, nopCloser{}, nil
	default:
		return nil, nil, fmt.Errorf("backend %q: %w", opts.Kind, scouterrors.ErrUnknownBackend)
	}
}
