package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/mrz1836/scout/internal/config"
)

// testConfig returns a config whose snapshot and history live under a temp dir.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Storage.Dir = filepath.Join(dir, "state")
	cfg.History.Path = filepath.Join(dir, "history.db")
	return cfg
}

// runCmd executes the root command with args against cfg and returns stdout.
// Every call builds a fresh environment, like a separate scout process.
func runCmd(t *testing.T, cfg *config.Config, args ...string) (string, error) {
	t.Helper()
	return runCmdContext(context.Background(), t, cfg, args...)
}

func runCmdContext(ctx context.Context, t *testing.T, cfg *config.Config, args ...string) (string, error) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")
	if os.Getenv(config.HomeEnvVar) == "" {
		t.Setenv(config.HomeEnvVar, t.TempDir())
	}

	var stdout, stderr bytes.Buffer
	env := &environment{
		flags:  &GlobalFlags{},
		stdout: &stdout,
		stderr: &stderr,
		loadConfig: func(_ context.Context, o *config.Config) (*config.Config, error) {
			c := *cfg
			if o.Server.Addr != "" {
				c.Server.Addr = o.Server.Addr
			}
			if o.Backend.URL != "" {
				c.Backend.URL = o.Backend.URL
			}
			if o.History.Path != "" {
				c.History.Path = o.History.Path
			}
			return &c, nil
		},
		initLogger: func(verbose, quiet bool) zerolog.Logger {
			return InitLoggerWithWriter(verbose, quiet, io.Discard)
		},
	}

	cmd := newRootCmd(env, BuildInfo{Version: "test"})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return stdout.String(), err
}
