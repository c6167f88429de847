package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrz1836/scout/internal/activetask"
	"github.com/mrz1836/scout/internal/app"
	"github.com/mrz1836/scout/internal/constants"
	"github.com/mrz1836/scout/internal/errors"
	"github.com/mrz1836/scout/internal/tui"
)

// AddTaskCommand adds the task command group to the root command.
func AddTaskCommand(root *cobra.Command, env *environment) {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Inspect or drive the active research task",
		Long: `Read and change the persisted active task. Every change is written to
the configured storage backend, so a running 'scout serve' picks it up.`,
	}

	cmd.AddCommand(
		newTaskStatusCmd(env),
		newTaskStartCmd(env),
		newTaskStageCmd(env),
		newTaskLogCmd(env),
		newTaskProgressCmd(env),
		newTaskStatsCmd(env),
		newTaskCompleteCmd(env),
		newTaskClearCmd(env),
	)
	root.AddCommand(cmd)
}

// withTasks opens the app without the history archive and runs fn.
func withTasks(ctx context.Context, env *environment, fn func(a *app.App) error) error {
	a, err := env.openApp(ctx, app.WithoutHistory())
	if err != nil {
		return env.reportError(err)
	}
	defer func() { _ = a.Close() }()
	return env.reportError(fn(a))
}

// requireActive fails with ErrNoActiveTask unless a task is running.
func requireActive(a *app.App) error {
	if !a.Tasks.HasActiveTask() {
		return errors.ErrNoActiveTask
	}
	return nil
}

func newTaskStatusCmd(env *environment) *cobra.Command {
	var logLines int
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the active task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withTasks(cmd.Context(), env, func(a *app.App) error {
				return printStatus(env, a.Tasks.Status(), logLines)
			})
		},
	}
	cmd.Flags().IntVar(&logLines, "logs", tui.DefaultLogLines, "number of recent log lines to show")
	return cmd
}

// printStatus renders the task panel, or the full status object for JSON.
func printStatus(env *environment, st activetask.Status, logLines int) error {
	if env.jsonOutput() {
		return env.output().JSON(st)
	}
	if st.Topic == "" {
		env.output().Info("No research task. Start one with 'scout watch <topic>'.")
		return nil
	}
	_, err := fmt.Fprintln(env.stdout, tui.RenderTask(st, logLines))
	return err
}

func newTaskStartCmd(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "start <topic>",
		Short: "Start a new task without connecting to the backend",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			topic := strings.TrimSpace(strings.Join(args, " "))
			if topic == "" {
				return fmt.Errorf("%w: topic", errors.ErrEmptyValue)
			}
			return withTasks(cmd.Context(), env, func(a *app.App) error {
				a.Tasks.StartTask(cmd.Context(), topic)
				env.output().Success(fmt.Sprintf("Started task %q", topic))
				return nil
			})
		},
	}
}

func newTaskStageCmd(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "stage <stage>",
		Short: "Move the active task to a stage",
		Long: fmt.Sprintf(`Move the active task to a stage. The known stages (%s)
also set progress; any other name is tracked without changing it.`, strings.Join(constants.KnownStages(), ", ")),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stage := strings.TrimSpace(args[0])
			if stage == "" {
				return fmt.Errorf("%w: stage", errors.ErrEmptyValue)
			}
			return withTasks(cmd.Context(), env, func(a *app.App) error {
				if err := requireActive(a); err != nil {
					return err
				}
				a.Tasks.SetStage(cmd.Context(), stage)
				env.output().Success("Stage: " + tui.StageLabel(stage))
				return nil
			})
		},
	}
}

func newTaskLogCmd(env *environment) *cobra.Command {
	var level string
	cmd := &cobra.Command{
		Use:   "log <message>",
		Short: "Append a line to the active task's log",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lvl := constants.LogLevel(strings.ToLower(level))
			if !lvl.IsValid() {
				return fmt.Errorf("%w: log level %q must be info, success, warning or error", errors.ErrValueOutOfRange, level)
			}
			msg := strings.Join(args, " ")
			return withTasks(cmd.Context(), env, func(a *app.App) error {
				if err := requireActive(a); err != nil {
					return err
				}
				a.Tasks.AddLog(cmd.Context(), lvl, msg)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&level, "level", string(constants.LogInfo), "log level (info|success|warning|error)")
	return cmd
}

func newTaskProgressCmd(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "progress <percent>",
		Short: "Set the active task's progress (clamped to 0-100)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("%w: progress %q is not a number", errors.ErrValueOutOfRange, args[0])
			}
			return withTasks(cmd.Context(), env, func(a *app.App) error {
				if err := requireActive(a); err != nil {
					return err
				}
				a.Tasks.SetProgress(cmd.Context(), value)
				env.output().Success(fmt.Sprintf("Progress: %d%%", a.Tasks.State().Progress))
				return nil
			})
		},
	}
}

func newTaskStatsCmd(env *environment) *cobra.Command {
	var notes, contents, insights int
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Update the active task's counters",
		Long:  "Update the counters given as flags. Counters not given are left unchanged.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var u activetask.StatsUpdate
			if cmd.Flags().Changed("notes") {
				u.NotesFound = &notes
			}
			if cmd.Flags().Changed("contents") {
				u.ContentsAnalyzed = &contents
			}
			if cmd.Flags().Changed("insights") {
				u.InsightsExtracted = &insights
			}
			return withTasks(cmd.Context(), env, func(a *app.App) error {
				if err := requireActive(a); err != nil {
					return err
				}
				a.Tasks.UpdateStats(cmd.Context(), u)
				if env.jsonOutput() {
					return env.output().JSON(a.Tasks.State().Stats)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&notes, "notes", 0, "notes found")
	cmd.Flags().IntVar(&contents, "contents", 0, "contents analyzed")
	cmd.Flags().IntVar(&insights, "insights", 0, "insights extracted")
	return cmd
}

func newTaskCompleteCmd(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "complete",
		Short: "Mark the active task completed and freeze its clock",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withTasks(cmd.Context(), env, func(a *app.App) error {
				if err := requireActive(a); err != nil {
					return err
				}
				a.Tasks.MarkCompleted(cmd.Context())
				env.output().Success("Task completed in " + tui.FormatElapsed(a.Tasks.ElapsedTime()))
				return nil
			})
		},
	}
}

func newTaskClearCmd(env *environment) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Reset the task and delete its snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withTasks(cmd.Context(), env, func(a *app.App) error {
				if a.Tasks.HasActiveTask() && !yes {
					ok, err := confirmFunc("A task is still running. Clear it?", false)
					if stderrors.Is(err, tui.ErrNotInteractive) {
						return fmt.Errorf("%w; pass --yes to clear a running task", err)
					}
					if err != nil {
						return err
					}
					if !ok {
						return errors.ErrUserCanceled
					}
				}
				a.Tasks.ClearTask(cmd.Context())
				env.output().Success("Task cleared")
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

// confirmFunc is replaced in tests.
//
//nolint:gochecknoglobals // test seam
var confirmFunc = tui.Confirm
