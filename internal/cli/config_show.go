package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mrz1836/scout/internal/config"
	"github.com/mrz1836/scout/internal/tui"
)

const maskedValue = "********"

// AddConfigCommand adds the config command group to the root command.
func AddConfigCommand(root *cobra.Command, env *environment) {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and create scout configuration",
	}
	cmd.AddCommand(newConfigShowCmd(env), newConfigInitCmd(env))
	root.AddCommand(cmd)
}

func newConfigShowCmd(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display the effective configuration",
		Long: `Display the effective configuration after merging defaults, the global
file (~/.scout/config.yaml), the project file (.scout/config.yaml) and
SCOUT_* environment variables. The redis password is masked.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return env.reportError(runConfigShow(cmd.Context(), env))
		},
	}
}

func runConfigShow(ctx context.Context, env *environment) error {
	cfg, err := env.config(ctx)
	if err != nil {
		return err
	}
	masked := maskConfig(*cfg)

	if env.jsonOutput() {
		return env.output().JSON(masked)
	}

	styles := tui.NewOutputStyles()
	if global, err := config.GlobalConfigPath(); err == nil {
		_, _ = fmt.Fprintln(env.stdout, styles.Dim.Render("# global:  "+global+fileState(global)))
	}
	project := config.ProjectConfigPath()
	_, _ = fmt.Fprintln(env.stdout, styles.Dim.Render("# project: "+project+fileState(project)))

	out, err := yaml.Marshal(masked)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	_, err = env.stdout.Write(out)
	return err
}

// maskConfig returns a copy of cfg safe to print.
func maskConfig(cfg config.Config) config.Config {
	if cfg.Storage.Redis.Password != "" {
		cfg.Storage.Redis.Password = maskedValue
	}
	return cfg
}

func fileState(path string) string {
	if _, err := os.Stat(path); err != nil {
		return " (not found)"
	}
	return ""
}

func newConfigInitCmd(env *environment) *cobra.Command {
	var project, force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file populated with the defaults",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			path := config.ProjectConfigPath()
			if !project {
				p, err := config.GlobalConfigPath()
				if err != nil {
					return env.reportError(err)
				}
				path = p
			}
			return env.reportError(writeDefaultConfig(env, path, force))
		},
	}
	cmd.Flags().BoolVar(&project, "project", false, "write .scout/config.yaml in the current directory")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func writeDefaultConfig(env *environment, path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists; pass --force to overwrite", path)
	}

	data, err := yaml.Marshal(config.DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	env.output().Success("Wrote " + path)
	return nil
}
