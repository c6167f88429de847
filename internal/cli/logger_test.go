package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/scout/internal/config"
)

func TestSelectLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, selectLevel(true, false))
	assert.Equal(t, zerolog.WarnLevel, selectLevel(false, true))
	assert.Equal(t, zerolog.InfoLevel, selectLevel(false, false))
}

func TestInitLoggerWithWriter(t *testing.T) {
	var buf bytes.Buffer
	logger := InitLoggerWithWriter(false, false, &buf)

	logger.Debug().Msg("hidden")
	logger.Info().Str("addr", "redis://:hunter2@localhost:6379").Msg("connected")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "connected", entry["event"])
	assert.Contains(t, entry, "ts")
	assert.NotContains(t, buf.String(), "hidden")
}

func TestLogFilePath(t *testing.T) {
	t.Run("SCOUT_HOME wins", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv(config.HomeEnvVar, home)
		p, err := LogFilePath()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, "logs", "scout.log"), p)
	})

	t.Run("defaults under home", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv(config.HomeEnvVar, "")
		t.Setenv("HOME", home)
		p, err := LogFilePath()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, ".scout", "logs", "scout.log"), p)
	})
}

func TestInitLogger_WritesRedactedFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv(config.HomeEnvVar, home)

	logger := InitLogger(false, false)
	logger.Info().Msg("AUTH hunter2")
	CloseLogFile()

	data, err := os.ReadFile(filepath.Join(home, "logs", "scout.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "AUTH")
	assert.NotContains(t, string(data), "hunter2")
}
