package app

import (
	"context"
	"net"
	"path/filepath"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/scout/internal/config"
	"github.com/mrz1836/scout/internal/constants"
	scouterrors "github.com/mrz1836/scout/internal/errors"
)

func memoryConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Storage.Backend = config.BackendMemory
	cfg.History.Path = ":memory:"
	return cfg
}

func fileConfig(dir string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Storage.Backend = config.BackendFile
	cfg.Storage.Dir = dir
	cfg.History.Path = ":memory:"
	return cfg
}

func TestNew_MemoryBackend(t *testing.T) {
	a, err := New(context.Background(), memoryConfig(), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, a.Close()) })

	require.NotNil(t, a.Tasks)
	require.NotNil(t, a.Research)
	require.NotNil(t, a.History)
	require.NotNil(t, a.Web)
	assert.False(t, a.Tasks.HasActiveTask())
}

func TestNew_UnknownBackend(t *testing.T) {
	cfg := memoryConfig()
	cfg.Storage.Backend = "dynamo"

	_, err := New(context.Background(), cfg, zerolog.Nop())
	require.ErrorIs(t, err, scouterrors.ErrUnknownBackend)
}

func TestNew_WithoutHistory(t *testing.T) {
	a, err := New(context.Background(), memoryConfig(), zerolog.Nop(), WithoutHistory())
	require.NoError(t, err)
	defer func() { _ = a.Close() }()
	assert.Nil(t, a.History)
}

func TestNew_FileBackendRestoresTask(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first, err := New(ctx, fileConfig(dir), zerolog.Nop(), WithoutHistory())
	require.NoError(t, err)
	first.Tasks.StartTask(ctx, "quantum sensors")
	first.Tasks.SetStage(ctx, constants.StageSearching)
	require.NoError(t, first.Close())

	second, err := New(ctx, fileConfig(dir), zerolog.Nop(), WithoutHistory())
	require.NoError(t, err)
	defer func() { _ = second.Close() }()

	state := second.Tasks.State()
	assert.Equal(t, "quantum sensors", state.Topic)
	assert.Equal(t, constants.StageSearching, state.Stage)
	assert.True(t, second.Tasks.HasActiveTask())
}

func TestNew_RedisBackend(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	cfg := memoryConfig()
	cfg.Storage.Backend = config.BackendRedis
	cfg.Storage.Redis.Addr = mr.Addr()

	a, err := New(ctx, cfg, zerolog.Nop(), WithoutHistory())
	require.NoError(t, err)
	defer func() { _ = a.Close() }()

	a.Tasks.StartTask(ctx, "redis topic")
	assert.True(t, mr.Exists(config.DefaultRedisPrefix+constants.ActiveTaskKey))
}

func TestServe_HealthAndShutdown(t *testing.T) {
	a, err := New(context.Background(), memoryConfig(), zerolog.Nop())
	require.NoError(t, err)
	defer func() { _ = a.Close() }()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/health")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop after cancel")
	}
}

func TestServe_PicksUpExternalChanges(t *testing.T) {
	dir := t.TempDir()
	a, err := New(context.Background(), fileConfig(dir), zerolog.Nop(), WithoutHistory())
	require.NoError(t, err)
	defer func() { _ = a.Close() }()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx, ln) }()

	// give the watcher a moment to register the directory
	time.Sleep(100 * time.Millisecond)

	other, err := New(context.Background(), fileConfig(dir), zerolog.Nop(), WithoutHistory())
	require.NoError(t, err)
	defer func() { _ = other.Close() }()
	other.Tasks.StartTask(context.Background(), "from another process")

	require.Eventually(t, func() bool {
		return a.Tasks.State().Topic == "from another process"
	}, 3*time.Second, 20*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestNew_DefaultPathsFollowScoutHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv(config.HomeEnvVar, home)

	cfg := config.DefaultConfig()
	a, err := New(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	a.Tasks.StartTask(context.Background(), "tidal power")

	assert.FileExists(t, filepath.Join(home, "state", constants.ActiveTaskKey+constants.SnapshotExt))
	assert.FileExists(t, filepath.Join(home, constants.HistoryDBFileName))
	assert.Empty(t, cfg.Storage.Dir, "caller's config is not modified")
}
