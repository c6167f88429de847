package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrz1836/scout/internal/history"
	"github.com/mrz1836/scout/internal/tui"
)

// AddHistoryCommand adds the history command group to the root command.
func AddHistoryCommand(root *cobra.Command, env *environment) {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse archived research reports",
	}
	cmd.PersistentFlags().StringVar(&env.overrides.History.Path, "db", "", "history database path (default from history.path)")

	cmd.AddCommand(
		newHistoryListCmd(env),
		newHistoryShowCmd(env),
		newHistoryDeleteCmd(env),
	)
	root.AddCommand(cmd)
}

// withHistory opens only the archive, so history commands work even when the
// snapshot backend is unreachable.
func withHistory(ctx context.Context, env *environment, fn func(h *history.Store) error) error {
	cfg, err := env.config(ctx)
	if err != nil {
		return env.reportError(err)
	}
	h, err := history.Open(cfg.History.Path, nil, GetLogger())
	if err != nil {
		return env.reportError(fmt.Errorf("failed to open history: %w", err))
	}
	defer func() { _ = h.Close() }()
	return env.reportError(fn(h))
}

func newHistoryListCmd(env *environment) *cobra.Command {
	var (
		limit  int
		search string
	)
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List archived reports, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withHistory(cmd.Context(), env, func(h *history.Store) error {
				var (
					records []history.Record
					err     error
				)
				if search != "" {
					records, err = h.Search(cmd.Context(), search, limit)
				} else {
					records, err = h.List(cmd.Context(), limit)
				}
				if err != nil {
					return err
				}
				return printRecords(env, records)
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", history.DefaultListLimit, "maximum number of records")
	cmd.Flags().StringVarP(&search, "search", "s", "", "only topics containing this text")
	return cmd
}

func printRecords(env *environment, records []history.Record) error {
	if env.jsonOutput() {
		if records == nil {
			records = []history.Record{}
		}
		return env.output().JSON(records)
	}
	if len(records) == 0 {
		env.output().Info("No archived reports.")
		return nil
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.ID,
			truncate(r.Topic, 48),
			r.Status,
			strconv.Itoa(r.SectionsCount),
			strconv.Itoa(r.NotesCount),
			tui.RelativeTime(r.CreatedAt),
		})
	}
	env.output().Table([]string{"ID", "TOPIC", "STATUS", "SECTIONS", "NOTES", "CREATED"}, rows)
	return nil
}

func newHistoryShowCmd(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show an archived report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(cmd.Context(), env, func(h *history.Store) error {
				rec, err := h.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if env.jsonOutput() {
					return env.output().JSON(rec)
				}
				return printReport(env, rec.Report)
			})
		},
	}
}

func newHistoryDeleteCmd(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete an archived report",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(cmd.Context(), env, func(h *history.Store) error {
				if err := h.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				env.output().Success("Deleted " + args[0])
				return nil
			})
		},
	}
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
