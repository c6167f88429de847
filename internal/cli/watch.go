package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/mrz1836/scout/internal/activetask"
	"github.com/mrz1836/scout/internal/app"
	"github.com/mrz1836/scout/internal/errors"
	"github.com/mrz1836/scout/internal/research"
	"github.com/mrz1836/scout/internal/signal"
	"github.com/mrz1836/scout/internal/ticker"
	"github.com/mrz1836/scout/internal/tui"
)

type watchOptions struct {
	noArchive bool
	save      string
}

// watchResult is the JSON summary printed when a watch ends.
type watchResult struct {
	Topic     string            `json:"topic"`
	Completed bool              `json:"completed"`
	RecordID  string            `json:"recordId,omitempty"`
	HistoryID string            `json:"historyId,omitempty"`
	Saved     string            `json:"saved,omitempty"`
	Error     string            `json:"error,omitempty"`
	Status    activetask.Status `json:"status"`
}

// AddWatchCommand adds the watch command to the root command.
func AddWatchCommand(root *cobra.Command, env *environment) {
	var opts watchOptions
	cmd := &cobra.Command{
		Use:   "watch <topic>",
		Short: "Run a research task on the backend and follow it live",
		Long: `Ask the research backend to run a task on <topic> and follow its event
stream: stages, progress, stats and log lines are applied to the active task
as they arrive and printed here.

When the backend reports completion the report is archived to history.`,
		Example: `  scout watch "electric bikes in cold climates"
  scout watch --save report.md "home espresso"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), env, strings.Join(args, " "), opts)
		},
	}
	cmd.Flags().BoolVar(&opts.noArchive, "no-archive", false, "do not save the finished report to history")
	cmd.Flags().StringVar(&opts.save, "save", "", "write the finished report to a file (.md for Markdown, otherwise JSON)")
	cmd.Flags().StringVar(&env.overrides.Backend.URL, "backend", "", "research backend URL (default from backend.url)")
	root.AddCommand(cmd)
}

func runWatch(ctx context.Context, env *environment, topic string, opts watchOptions) error {
	h := signal.NewHandler(ctx)
	defer h.Stop()
	ctx = h.Context()

	a, err := env.openApp(ctx)
	if err != nil {
		return env.reportError(err)
	}
	defer func() { _ = a.Close() }()

	d := a.Dispatcher()
	runErr := followStream(ctx, env, a, func(ctx context.Context) error {
		return a.StreamClient().Run(ctx, topic, d)
	})

	if runErr != nil && h.Signal() != nil {
		runErr = errors.ErrUserCanceled
	}

	res := watchResult{
		Topic:     topic,
		Completed: d.Completed(),
		RecordID:  d.RecordID(),
	}
	if res.Completed {
		res.HistoryID, res.Saved, err = finishWatch(ctx, env, a, opts)
		if err != nil {
			return env.reportError(err)
		}
	}
	res.Status = a.Tasks.Status()
	if runErr != nil {
		res.Error = runErr.Error()
	}

	if env.jsonOutput() {
		if err := env.output().JSON(res); err != nil {
			return err
		}
		if runErr != nil {
			return fmt.Errorf("%w: %w", errors.ErrJSONErrorOutput, runErr)
		}
		return nil
	}

	_, _ = fmt.Fprintln(env.stdout, tui.RenderTask(res.Status, tui.DefaultLogLines))
	if res.HistoryID != "" {
		env.output().Success("Archived as " + res.HistoryID)
	}
	if res.Saved != "" {
		env.output().Success("Saved report to " + res.Saved)
	}
	return runErr
}

// finishWatch archives and saves the completed report.
func finishWatch(ctx context.Context, env *environment, a *app.App, opts watchOptions) (historyID, saved string, err error) {
	report := a.Research.Report()
	completed := a.Research.State().IsCompleted

	if !opts.noArchive {
		if a.History == nil {
			env.output().Warning("History archive unavailable; report not archived")
		} else {
			rec, err := a.History.Save(ctx, report, completed)
			if err != nil {
				return "", "", err
			}
			historyID = rec.ID
		}
	}

	if opts.save != "" {
		if err := writeReport(afero.NewOsFs(), opts.save, report); err != nil {
			return historyID, "", err
		}
		saved = opts.save
	}
	return historyID, saved, nil
}

// writeReport writes Markdown for .md paths and JSON otherwise.
func writeReport(fs afero.Fs, path string, r research.Report) error {
	if strings.EqualFold(filepath.Ext(path), ".md") {
		return research.WriteMarkdownFile(fs, path, r)
	}
	return research.WriteReportFile(fs, path, r)
}

// followStream runs produce while printing task changes as they happen. In
// JSON mode nothing is printed until the end.
func followStream(ctx context.Context, env *environment, a *app.App, produce func(context.Context) error) error {
	g, gctx := errgroup.WithContext(ctx)
	streamDone := make(chan struct{})

	g.Go(func() error {
		defer close(streamDone)
		return produce(gctx)
	})

	if !env.jsonOutput() {
		g.Go(func() error {
			renderLive(gctx, env.stdout, a, streamDone)
			return nil
		})
	}

	return g.Wait()
}

// renderLive prints each new log line as the task changes. On a terminal it
// also keeps a one-line stage/progress/clock footer that the ticker refreshes.
func renderLive(ctx context.Context, w io.Writer, a *app.App, done <-chan struct{}) {
	changed := make(chan struct{}, 1)
	unsubscribe := a.Tasks.Subscribe(func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	tk := ticker.Start(ctx, a.Config.Tick.Interval, a.Tasks.UpdateTick)
	defer tk.Stop()

	p := &livePrinter{w: w, footer: isTerminal(w)}
	defer p.clearFooter()

	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			p.update(a.Tasks.Status())
			return
		case <-changed:
			p.update(a.Tasks.Status())
		}
	}
}

// livePrinter tracks what has already been printed.
type livePrinter struct {
	w          io.Writer
	footer     bool
	footerShow bool
	printed    int
	topic      string
	startTime  int64
}

func (p *livePrinter) update(st activetask.Status) {
	// a new run (or a clear) restarts the log
	if st.Topic != p.topic || st.StartTime != p.startTime || len(st.Logs) < p.printed {
		p.topic = st.Topic
		p.startTime = st.StartTime
		p.printed = 0
	}

	if len(st.Logs) > p.printed {
		p.clearFooter()
		for _, e := range st.Logs[p.printed:] {
			_, _ = fmt.Fprintln(p.w, tui.RenderLogEntry(e))
		}
		p.printed = len(st.Logs)
	}

	if p.footer && st.Topic != "" {
		line := fmt.Sprintf("%s %s %s", tui.StageLabel(st.Stage), tui.ProgressBar(st.Progress, 20), tui.FormatElapsed(st.ElapsedTime))
		_, _ = fmt.Fprintf(p.w, "\r\033[K%s", line)
		p.footerShow = true
	}
}

func (p *livePrinter) clearFooter() {
	if p.footerShow {
		_, _ = fmt.Fprint(p.w, "\r\033[K")
		p.footerShow = false
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
