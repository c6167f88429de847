package config

import (
	"github.com/spf13/viper"

	"github.com/mrz1836/scout/internal/constants"
)

// Default values that have no better home in internal/constants.
const (
	DefaultServerAddr  = "127.0.0.1:8787"
	DefaultBackendURL  = "http://localhost:8000"
	DefaultRedisAddr   = "localhost:6379"
	DefaultRedisPrefix = "scout:"
)

// DefaultConfig returns a new Config with sensible default values.
// These defaults are used as the base layer that can be overridden by
// config files, environment variables, and CLI flags.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend: BackendFile,
			Key:     constants.ActiveTaskKey,
			Redis: RedisConfig{
				Addr:   DefaultRedisAddr,
				Prefix: DefaultRedisPrefix,
			},
		},
		Server: ServerConfig{
			Addr:        DefaultServerAddr,
			ReadTimeout: constants.DefaultReadTimeout,
		},
		Backend: BackendConfig{
			URL:     DefaultBackendURL,
			Timeout: constants.DefaultBackendTimeout,
		},
		Tick: TickConfig{
			Interval: constants.DefaultTickInterval,
		},
	}
}

// setDefaults configures all default values on the Viper instance.
// These defaults match the values from DefaultConfig().
// IMPORTANT: Keys must match the YAML tag names exactly for proper mapping.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("storage.backend", d.Storage.Backend)
	v.SetDefault("storage.dir", d.Storage.Dir)
	v.SetDefault("storage.key", d.Storage.Key)
	v.SetDefault("storage.redis.addr", d.Storage.Redis.Addr)
	v.SetDefault("storage.redis.password", "")
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.prefix", d.Storage.Redis.Prefix)
	v.SetDefault("storage.redis.ttl", "0s")

	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout.String())

	v.SetDefault("backend.url", d.Backend.URL)
	v.SetDefault("backend.timeout", d.Backend.Timeout.String())

	v.SetDefault("tick.interval", d.Tick.Interval.String())

	v.SetDefault("history.path", "")
}
