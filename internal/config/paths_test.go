package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHomeDir(t *testing.T) {
	t.Run("defaults to ~/.scout", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)
		t.Setenv(HomeEnvVar, "")

		dir, err := HomeDir()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, ".scout"), dir)
	})

	t.Run("SCOUT_HOME wins", func(t *testing.T) {
		custom := t.TempDir()
		t.Setenv(HomeEnvVar, custom)

		dir, err := HomeDir()
		require.NoError(t, err)
		assert.Equal(t, custom, dir)
	})
}

func TestPathsUnderHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv(HomeEnvVar, home)

	tests := []struct {
		name string
		fn   func() (string, error)
		want string
	}{
		{"global config", GlobalConfigPath, filepath.Join(home, "config.yaml")},
		{"state", StateDir, filepath.Join(home, "state")},
		{"history", HistoryPath, filepath.Join(home, "history.db")},
		{"log", LogFilePath, filepath.Join(home, "logs", "scout.log")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.fn()
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestProjectConfigPath(t *testing.T) {
	assert.Equal(t, filepath.Join(".scout", "config.yaml"), ProjectConfigPath())
	assert.False(t, filepath.IsAbs(ProjectConfigPath()))
}
