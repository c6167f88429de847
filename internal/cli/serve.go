package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrz1836/scout/internal/signal"
)

// AddServeCommand adds the serve command to the root command.
func AddServeCommand(root *cobra.Command, env *environment) {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the task, report and history views over HTTP",
		Long: `Start the local view server. It exposes the active task, the live
elapsed-time clock, the report editor API and the history archive.

With the file storage backend, changes written by other scout processes
(for example 'scout watch' in another terminal) show up immediately.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), env)
		},
	}
	cmd.Flags().StringVar(&env.overrides.Server.Addr, "addr", "", "listen address (default from server.addr)")
	root.AddCommand(cmd)
}

func runServe(ctx context.Context, env *environment) error {
	h := signal.NewHandler(ctx)
	defer h.Stop()
	ctx = h.Context()

	a, err := env.openApp(ctx)
	if err != nil {
		return env.reportError(err)
	}
	defer func() { _ = a.Close() }()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-h.Forced():
			logger := GetLogger()
			logger.Warn().Msg("second interrupt, exiting without waiting for shutdown")
			CloseLogFile()
			os.Exit(ExitError)
		case <-done:
		}
	}()

	if err := a.ListenAndServe(ctx); err != nil {
		return env.reportError(err)
	}
	return nil
}
