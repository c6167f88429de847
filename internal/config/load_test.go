package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/scout/internal/errors"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

// isolate points HOME and the working directory at empty temp dirs.
func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv(HomeEnvVar, "")
	wd := t.TempDir()
	t.Chdir(wd)
	return wd
}

func TestLoad_ReturnsDefaultsWhenNoConfigFile(t *testing.T) {
	isolate(t)

	cfg, err := Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, BackendFile, cfg.Storage.Backend)
	assert.Equal(t, DefaultServerAddr, cfg.Server.Addr)
	assert.Equal(t, time.Second, cfg.Tick.Interval)
}

func TestLoad_ProjectConfigInWorkingDir(t *testing.T) {
	wd := isolate(t)
	require.NoError(t, os.MkdirAll(filepath.Join(wd, ".scout"), 0o750))
	writeConfig(t, filepath.Join(wd, ".scout"), "server:\n  addr: 127.0.0.1:9999\n")

	cfg, err := Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9999", cfg.Server.Addr)
}

func TestLoad_DotEnvFile(t *testing.T) {
	wd := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(wd, ".env"),
		[]byte("SCOUT_STORAGE_BACKEND=memory\n"), 0o600))
	// t.Setenv registers cleanup so the variable godotenv sets is restored.
	t.Setenv("SCOUT_STORAGE_BACKEND", "")
	require.NoError(t, os.Unsetenv("SCOUT_STORAGE_BACKEND"))

	cfg, err := Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, cfg.Storage.Backend)
}

func TestLoadFromPaths_ProjectConfigOverridesGlobal(t *testing.T) {
	ctx := context.Background()

	global := writeConfig(t, t.TempDir(), `
storage:
  backend: redis
  redis:
    addr: cache:6379
    ttl: 2h
backend:
  url: http://global:8000
`)
	project := writeConfig(t, t.TempDir(), `
backend:
  url: http://project:8000
  timeout: 5s
`)

	cfg, err := LoadFromPaths(ctx, project, global)
	require.NoError(t, err)

	assert.Equal(t, BackendRedis, cfg.Storage.Backend)
	assert.Equal(t, "cache:6379", cfg.Storage.Redis.Addr)
	assert.Equal(t, 2*time.Hour, cfg.Storage.Redis.TTL)
	assert.Equal(t, "http://project:8000", cfg.Backend.URL)
	assert.Equal(t, 5*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, DefaultServerAddr, cfg.Server.Addr, "untouched keys keep defaults")
}

func TestLoadFromPaths_EnvOverridesFiles(t *testing.T) {
	project := writeConfig(t, t.TempDir(), "tick:\n  interval: 2s\n")
	t.Setenv("SCOUT_TICK_INTERVAL", "500ms")
	t.Setenv("SCOUT_SERVER_ADDR", "0.0.0.0:1234")

	cfg, err := LoadFromPaths(context.Background(), project, "")
	require.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, cfg.Tick.Interval)
	assert.Equal(t, "0.0.0.0:1234", cfg.Server.Addr)
}

func TestLoadFromPaths_MissingFilesUseDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadFromPaths(context.Background(),
		filepath.Join(dir, "nope.yaml"), filepath.Join(dir, "also-nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Backend, cfg.Backend)
}

func TestLoadFromPaths_InvalidValue(t *testing.T) {
	project := writeConfig(t, t.TempDir(), "storage:\n  backend: dynamo\n")

	_, err := LoadFromPaths(context.Background(), project, "")
	require.Error(t, err)
	require.ErrorIs(t, err, errors.ErrConfigInvalidStorage)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestLoadFromPaths_BadDuration(t *testing.T) {
	project := writeConfig(t, t.TempDir(), "tick:\n  interval: soon\n")

	_, err := LoadFromPaths(context.Background(), project, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal config")
}

func TestLoadWithOverrides(t *testing.T) {
	isolate(t)

	cfg, err := LoadWithOverrides(context.Background(), &Config{
		Server:  ServerConfig{Addr: ":7000"},
		Backend: BackendConfig{URL: "https://research.example.com"},
		Storage: StorageConfig{Backend: BackendNone},
	})
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, "https://research.example.com", cfg.Backend.URL)
	assert.Equal(t, BackendNone, cfg.Storage.Backend)
	assert.Equal(t, DefaultConfig().Tick, cfg.Tick, "zero overrides are ignored")
}

func TestLoadWithOverrides_RevalidatesResult(t *testing.T) {
	isolate(t)

	_, err := LoadWithOverrides(context.Background(), &Config{Backend: BackendConfig{URL: "nope"}})
	require.ErrorIs(t, err, errors.ErrConfigInvalidBackend)
}
