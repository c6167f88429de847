// Package config provides configuration management for scout with layered precedence.
//
// Configuration sources are loaded in the following order (highest precedence first):
//  1. CLI flags (passed via LoadWithOverrides)
//  2. Environment variables (SCOUT_* prefix, optionally from a .env file)
//  3. Project config (.scout/config.yaml)
//  4. Global config (~/.scout/config.yaml)
//  5. Built-in defaults
//
// Each higher level completely overrides the lower level for the same key.
//
// IMPORTANT: This package may import internal/constants and internal/errors,
// but MUST NOT import other internal packages.
package config

import "time"

// Storage backend names accepted by storage.backend.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
	BackendNone   = "none"
)

// Config is the root configuration structure for scout.
type Config struct {
	// Storage controls where the active-task snapshot is persisted.
	Storage StorageConfig `yaml:"storage" mapstructure:"storage"`

	// Server contains settings for the local HTTP API used by 'scout serve'.
	Server ServerConfig `yaml:"server" mapstructure:"server"`

	// Backend points at the research service that streams task events.
	Backend BackendConfig `yaml:"backend" mapstructure:"backend"`

	// Tick controls the refresh cadence of live elapsed-time views.
	Tick TickConfig `yaml:"tick" mapstructure:"tick"`

	// History controls the SQLite report archive.
	History HistoryConfig `yaml:"history" mapstructure:"history"`
}

// StorageConfig selects and configures the snapshot backend.
type StorageConfig struct {
	// Backend is one of file, redis, memory or none.
	// Default: "file"
	Backend string `yaml:"backend" mapstructure:"backend" validate:"required,oneof=file redis memory none"`

	// Dir is the snapshot directory for the file backend.
	// Empty means ~/.scout/state.
	Dir string `yaml:"dir" mapstructure:"dir"`

	// Key is the storage key of the active-task snapshot.
	// Default: "activeTask"
	Key string `yaml:"key" mapstructure:"key" validate:"required"`

	// Redis configures the redis backend.
	Redis RedisConfig `yaml:"redis" mapstructure:"redis"`
}

// RedisConfig contains connection settings for the redis backend.
type RedisConfig struct {
	Addr     string `yaml:"addr" mapstructure:"addr" validate:"omitempty,hostname_port"`
	Password string `yaml:"password" mapstructure:"password"`
	DB       int    `yaml:"db" mapstructure:"db" validate:"gte=0"`

	// Prefix is prepended to every key written to redis.
	Prefix string `yaml:"prefix" mapstructure:"prefix"`

	// TTL expires snapshots after inactivity. Zero keeps them forever.
	TTL time.Duration `yaml:"ttl" mapstructure:"ttl" validate:"gte=0"`
}

// ServerConfig contains settings for the local HTTP server.
type ServerConfig struct {
	// Addr is the listen address.
	// Default: "127.0.0.1:8787"
	Addr string `yaml:"addr" mapstructure:"addr" validate:"required"`

	// ReadTimeout bounds reading a request including its body.
	// Responses are not bounded since the clock stream is long-lived.
	ReadTimeout time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
}

// BackendConfig contains settings for the research backend client.
type BackendConfig struct {
	// URL is the base URL of the research service.
	// Default: "http://localhost:8000"
	URL string `yaml:"url" mapstructure:"url" validate:"required,url"`

	// Timeout bounds waiting for the stream response headers.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// TickConfig contains settings for the elapsed-time ticker.
type TickConfig struct {
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
}

// HistoryConfig contains settings for the report archive.
type HistoryConfig struct {
	// Path is the SQLite database file. Empty means ~/.scout/history.db.
	Path string `yaml:"path" mapstructure:"path"`
}
