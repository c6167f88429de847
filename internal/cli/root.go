// Package cli provides the command-line interface for scout.
package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mrz1836/scout/internal/app"
	"github.com/mrz1836/scout/internal/config"
	"github.com/mrz1836/scout/internal/errors"
	"github.com/mrz1836/scout/internal/tui"
)

// BuildInfo contains version information set at build time via ldflags.
type BuildInfo struct {
	// Version is the semantic version (e.g., "1.0.0").
	Version string
	// Commit is the git commit hash.
	Commit string
	// Date is the build date.
	Date string
}

// globalLogger stores the initialized logger for use by subcommands.
// This is set during PersistentPreRunE and should be accessed via GetLogger.
var (
	globalLogger   zerolog.Logger //nolint:gochecknoglobals // CLI logger requires global access
	globalLoggerMu sync.RWMutex   //nolint:gochecknoglobals // Protects globalLogger
)

// GetLogger returns the initialized logger for use by subcommands.
//
// It MUST only be called after the root command's PersistentPreRunE has
// executed; before that it returns a zero-value logger that discards output.
func GetLogger() zerolog.Logger {
	globalLoggerMu.RLock()
	defer globalLoggerMu.RUnlock()
	return globalLogger
}

// environment carries what every subcommand needs. Tests swap loadConfig and
// the writers to run commands against temp directories.
type environment struct {
	flags      *GlobalFlags
	overrides  config.Config
	stdout     io.Writer
	stderr     io.Writer
	loadConfig func(ctx context.Context, overrides *config.Config) (*config.Config, error)
	initLogger func(verbose, quiet bool) zerolog.Logger
}

func defaultEnvironment() *environment {
	return &environment{
		flags:      &GlobalFlags{},
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		loadConfig: config.LoadWithOverrides,
		initLogger: InitLogger,
	}
}

// output returns the formatter selected by --output.
func (e *environment) output() tui.Output {
	return tui.NewOutput(e.stdout, e.flags.Output)
}

// jsonOutput reports whether --output json was requested.
func (e *environment) jsonOutput() bool {
	return e.flags.Output == OutputJSON
}

// config loads the layered configuration with flag overrides applied.
func (e *environment) config(ctx context.Context) (*config.Config, error) {
	cfg, err := e.loadConfig(ctx, &e.overrides)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// openApp loads config and wires the application. Callers must Close it.
func (e *environment) openApp(ctx context.Context, opts ...app.Option) (*app.App, error) {
	cfg, err := e.config(ctx)
	if err != nil {
		return nil, err
	}
	logger := GetLogger()
	return app.New(logger.WithContext(ctx), cfg, logger, opts...)
}

// reportError prints err in the selected format and marks it as already shown
// when the output is JSON so the caller does not print it twice.
func (e *environment) reportError(err error) error {
	if err == nil {
		return nil
	}
	if e.jsonOutput() {
		e.output().Error(err)
		return fmt.Errorf("%w: %w", errors.ErrJSONErrorOutput, err)
	}
	return err
}

// newRootCmd creates and returns the root command for the scout CLI.
func newRootCmd(env *environment, info BuildInfo) *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "scout",
		Short: "scout - live research task monitor",
		Long: `scout follows a research task streamed from a backend service and keeps
its state on disk so every terminal and browser sees the same progress.

Features:
  • Live stage, progress and log tracking with elapsed-time clock
  • Snapshot persistence to a file, redis or memory
  • Local HTTP views for the task, the report and the archive
  • SQLite history of finished reports with search and export`,
		Version: formatVersion(info),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := BindGlobalFlags(v, cmd, env.flags); err != nil {
				return fmt.Errorf("failed to bind flags: %w", err)
			}

			if !IsValidOutputFormat(env.flags.Output) {
				return fmt.Errorf("%w: %q must be one of %v", errors.ErrInvalidOutputFormat, env.flags.Output, ValidOutputFormats())
			}

			globalLoggerMu.Lock()
			globalLogger = env.initLogger(env.flags.Verbose, env.flags.Quiet)
			globalLoggerMu.Unlock()

			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			CloseLogFile()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(env.stdout)
	cmd.SetErr(env.stderr)

	AddGlobalFlags(cmd, env.flags)

	AddServeCommand(cmd, env)
	AddWatchCommand(cmd, env)
	AddTaskCommand(cmd, env)
	AddReportCommand(cmd, env)
	AddHistoryCommand(cmd, env)
	AddRoutesCommand(cmd, env)
	AddConfigCommand(cmd, env)

	return cmd
}

// formatVersion creates the version string from build info.
func formatVersion(info BuildInfo) string {
	if info.Version == "" {
		info.Version = "dev"
	}
	if info.Commit == "" {
		info.Commit = "none"
	}
	if info.Date == "" {
		info.Date = "unknown"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", info.Version, info.Commit, info.Date)
}

// Execute runs the root command with the provided context and build info.
// Errors are printed to stderr here unless they were already rendered as JSON.
func Execute(ctx context.Context, info BuildInfo) error {
	env := defaultEnvironment()
	//nolint:contextcheck // Cobra command pattern uses cmd.Context() internally
	cmd := newRootCmd(env, info)
	err := cmd.ExecuteContext(ctx)
	if err != nil && !stderrors.Is(err, errors.ErrJSONErrorOutput) {
		tui.NewOutput(env.stderr, tui.FormatText).Error(err)
	}
	return err
}
