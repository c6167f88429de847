package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gomodule/redigo/redis"

	scouterrors "github.com/mrz1836/scout/internal/errors"
)

// Redis pool tuning.
const (
	redisMaxIdle        = 3
	redisIdleTimeout    = 4 * time.Minute
	redisConnectTimeout = 5 * time.Second
)

// RedisOptions configures a RedisBackend.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	// Prefix is prepended to every key, e.g. "scout:".
	Prefix string
	// TTL expires snapshots after the given duration. Zero keeps them forever.
	TTL time.Duration
}

// RedisBackend stores snapshots as plain string values in Redis.
// Useful when the view server and CLI run on different hosts.
type RedisBackend struct {
	pool   *redis.Pool
	prefix string
	ttl    time.Duration
}

// NewRedisBackend creates a RedisBackend with a lazily dialed connection pool.
func NewRedisBackend(opts RedisOptions) (*RedisBackend, error) {
	if opts.Addr == "" {
		return nil, fmt.Errorf("redis address %w", scouterrors.ErrEmptyValue)
	}

	dialOpts := []redis.DialOption{
		redis.DialConnectTimeout(redisConnectTimeout),
		redis.DialDatabase(opts.DB),
	}
	if opts.Password != "" {
		dialOpts = append(dialOpts, redis.DialPassword(opts.Password))
	}

	pool := &redis.Pool{
		MaxIdle:     redisMaxIdle,
		IdleTimeout: redisIdleTimeout,
		DialContext: func(ctx context.Context) (redis.Conn, error) {
			return redis.DialContext(ctx, "tcp", opts.Addr, dialOpts...)
		},
	}

	return &RedisBackend{pool: pool, prefix: opts.Prefix, ttl: opts.TTL}, nil
}

func (b *RedisBackend) key(key string) string {
	return b.prefix + key
}

// Get returns the value stored under the prefixed key.
func (b *RedisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, fmt.Errorf("failed to get snapshot: key %w", scouterrors.ErrEmptyValue)
	}

	conn, err := b.pool.GetContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer func() { _ = conn.Close() }()

	data, err := redis.Bytes(redis.DoContext(conn, ctx, "GET", b.key(key)))
	if err != nil {
		if errors.Is(err, redis.ErrNil) {
			return nil, fmt.Errorf("failed to get snapshot '%s': %w", key, scouterrors.ErrSnapshotNotFound)
		}
		return nil, fmt.Errorf("failed to get snapshot '%s': %w", key, err)
	}
	return data, nil
}

// Set writes data under the prefixed key, with an expiry when a TTL is configured.
func (b *RedisBackend) Set(ctx context.Context, key string, data []byte) error {
	if key == "" {
		return fmt.Errorf("failed to save snapshot: key %w", scouterrors.ErrEmptyValue)
	}

	conn, err := b.pool.GetContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer func() { _ = conn.Close() }()

	args := []any{b.key(key), data}
	if secs := int64(b.ttl / time.Second); secs > 0 {
		args = append(args, "EX", secs)
	}
	if _, err := redis.DoContext(conn, ctx, "SET", args...); err != nil {
		return fmt.Errorf("failed to save snapshot '%s': %w", key, err)
	}
	return nil
}

// Delete removes the prefixed key.
func (b *RedisBackend) Delete(ctx context.Context, key string) error {
	conn, err := b.pool.GetContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer func() { _ = conn.Close() }()

	if _, err := redis.DoContext(conn, ctx, "DEL", b.key(key)); err != nil {
		return fmt.Errorf("failed to delete snapshot '%s': %w", key, err)
	}
	return nil
}

// Close releases the pool's connections.
func (b *RedisBackend) Close() error {
	return b.pool.Close()
}

var _ Backend = (*RedisBackend)(nil)
