package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mrz1836/scout/internal/config"
)

func TestConfigShow_MasksPassword(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.Redis.Password = "hunter2"

	out, err := runCmd(t, cfg, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "# project:")
	assert.Contains(t, out, maskedValue)
	assert.NotContains(t, out, "hunter2")
	assert.Contains(t, out, "127.0.0.1:8787")

	out, err = runCmd(t, cfg, "config", "show", "-o", "json")
	require.NoError(t, err)
	assert.NotContains(t, out, "hunter2")
	var shown config.Config
	require.NoError(t, json.Unmarshal([]byte(out), &shown))
	assert.Equal(t, cfg.Storage.Dir, shown.Storage.Dir)
}

func TestConfigShow_LeavesEmptyPassword(t *testing.T) {
	assert.Empty(t, maskConfig(*config.DefaultConfig()).Storage.Redis.Password)
}

func TestConfigInit(t *testing.T) {
	home := t.TempDir()
	t.Setenv(config.HomeEnvVar, home)
	cfg := testConfig(t)

	_, err := runCmd(t, cfg, "config", "init")
	require.NoError(t, err)

	path := filepath.Join(home, "config.yaml")
	data, err := os.ReadFile(path) //nolint:gosec // test path
	require.NoError(t, err)

	var written config.Config
	require.NoError(t, yaml.Unmarshal(data, &written))
	assert.Equal(t, config.DefaultServerAddr, written.Server.Addr)
	assert.Equal(t, config.BackendFile, written.Storage.Backend)

	loaded, err := config.LoadFromPaths(t.Context(), "", path)
	require.NoError(t, err)
	assert.Equal(t, *config.DefaultConfig(), *loaded)

	_, err = runCmd(t, cfg, "config", "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--force")

	_, err = runCmd(t, cfg, "config", "init", "--force")
	require.NoError(t, err)
}
