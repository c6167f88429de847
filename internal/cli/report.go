package cli

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/mrz1836/scout/internal/clock"
	"github.com/mrz1836/scout/internal/errors"
	"github.com/mrz1836/scout/internal/history"
	"github.com/mrz1836/scout/internal/research"
	"github.com/mrz1836/scout/internal/tui"
)

// Export formats.
const (
	exportMarkdown = "md"
	exportJSON     = "json"
)

// AddReportCommand adds the report command group to the root command.
func AddReportCommand(root *cobra.Command, env *environment) {
	fs := afero.NewOsFs()
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Read, import and export research reports",
	}
	cmd.PersistentFlags().StringVar(&env.overrides.History.Path, "db", "", "history database path (default from history.path)")

	cmd.AddCommand(
		newReportShowCmd(env, fs),
		newReportLoadCmd(env, fs),
		newReportExportCmd(env, fs),
	)
	root.AddCommand(cmd)
}

// loadReportFile merges a report JSON file into a fresh research store.
func loadReportFile(fs afero.Fs, path string, legacy bool) (*research.Store, error) {
	rs := research.New(clock.RealClock{})
	if !legacy {
		if err := rs.LoadFile(fs, path); err != nil {
			return nil, err
		}
		return rs, nil
	}
	data, err := research.ReadReportFile(fs, path)
	if err != nil {
		return nil, err
	}
	if err := rs.LoadFromJSONLegacy(data); err != nil {
		return nil, err
	}
	return rs, nil
}

// printReport renders r as Markdown in the terminal.
func printReport(env *environment, r research.Report) error {
	out, err := tui.RenderMarkdown(research.Markdown(r), tui.DefaultWrapWidth)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(env.stdout, out)
	return err
}

func newReportShowCmd(env *environment, fs afero.Fs) *cobra.Command {
	var legacy bool
	cmd := &cobra.Command{
		Use:   "show <file>",
		Short: "Render a report JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			rs, err := loadReportFile(fs, args[0], legacy)
			if err != nil {
				return env.reportError(err)
			}
			if env.jsonOutput() {
				return env.output().JSON(rs.State())
			}
			return env.reportError(printReport(env, rs.Report()))
		},
	}
	cmd.Flags().BoolVar(&legacy, "legacy", false, "use the lenient loader that skips empty values")
	return cmd
}

func newReportLoadCmd(env *environment, fs afero.Fs) *cobra.Command {
	var legacy bool
	cmd := &cobra.Command{
		Use:   "load <file>",
		Short: "Import a report JSON file into history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rs, err := loadReportFile(fs, args[0], legacy)
			if err != nil {
				return env.reportError(err)
			}
			return withHistory(cmd.Context(), env, func(h *history.Store) error {
				rec, err := h.Save(cmd.Context(), rs.Report(), rs.State().IsCompleted)
				if err != nil {
					return err
				}
				if env.jsonOutput() {
					return env.output().JSON(rec)
				}
				env.output().Success(fmt.Sprintf("Imported %q as %s", rec.Topic, rec.ID))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&legacy, "legacy", false, "use the lenient loader that skips empty values")
	return cmd
}

func newReportExportCmd(env *environment, fs afero.Fs) *cobra.Command {
	var format, out string
	cmd := &cobra.Command{
		Use:   "export <history-id>",
		Short: "Export an archived report as Markdown or JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != exportMarkdown && format != exportJSON {
				return fmt.Errorf("%w: format %q must be md or json", errors.ErrValueOutOfRange, format)
			}
			return withHistory(cmd.Context(), env, func(h *history.Store) error {
				rec, err := h.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if out == "" {
					return exportTo(env, format, rec.Report)
				}
				if format == exportMarkdown {
					err = research.WriteMarkdownFile(fs, out, rec.Report)
				} else {
					err = research.WriteReportFile(fs, out, rec.Report)
				}
				if err != nil {
					return err
				}
				env.output().Success("Wrote " + out)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", exportMarkdown, "export format (md|json)")
	cmd.Flags().StringVar(&out, "out", "", "write to this file instead of stdout")
	return cmd
}

// exportTo writes the raw export to stdout.
func exportTo(env *environment, format string, r research.Report) error {
	if format == exportJSON {
		return tui.NewJSONOutput(env.stdout).JSON(r)
	}
	_, err := fmt.Fprint(env.stdout, research.Markdown(r))
	return err
}
