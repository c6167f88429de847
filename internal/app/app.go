// Package app wires configuration into running components: the storage
// backend, the active-task and research stores, the history archive and the
// HTTP view server.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/mrz1836/scout/internal/activetask"
	"github.com/mrz1836/scout/internal/clock"
	"github.com/mrz1836/scout/internal/config"
	"github.com/mrz1836/scout/internal/constants"
	"github.com/mrz1836/scout/internal/history"
	"github.com/mrz1836/scout/internal/logging"
	"github.com/mrz1836/scout/internal/research"
	"github.com/mrz1836/scout/internal/storage"
	"github.com/mrz1836/scout/internal/stream"
	"github.com/mrz1836/scout/internal/web"
)

// App holds the wired components. Build it with New and release it with Close.
type App struct {
	Config   *config.Config
	Tasks    *activetask.Store
	Research *research.Store
	// History is nil when the archive could not be opened.
	History *history.Store
	Web     *web.Server

	backend storage.Backend
	closer  io.Closer
	logger  zerolog.Logger
}

// Option customizes New.
type Option func(*options)

type options struct {
	clock       clock.Clock
	skipHistory bool
}

// WithClock replaces the system clock.
func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithoutHistory skips opening the SQLite archive. Commands that never touch
// history use it to avoid creating the database file.
func WithoutHistory() Option {
	return func(o *options) { o.skipHistory = true }
}

// New builds the application from cfg. Storage failures are fatal; a history
// archive that cannot be opened is logged and left nil.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger, opts ...Option) (*App, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	o := options{clock: clock.RealClock{}}
	for _, opt := range opts {
		opt(&o)
	}

	log := logger.With().Str("component", "app").Logger()

	storeOpts, historyPath, err := resolvePaths(cfg)
	if err != nil {
		return nil, err
	}

	backend, closer, err := storage.Open(storeOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Backend, err)
	}
	log.Debug().
		Str("backend", cfg.Storage.Backend).
		Str("redis", logging.SafeValue("addr", cfg.Storage.Redis.Addr)).
		Msg("storage ready")

	adapter := storage.NewAdapter(backend, cfg.Storage.Key, logger)

	a := &App{
		Config:   cfg,
		Tasks:    activetask.New(ctx, adapter, o.clock, logger),
		Research: research.New(o.clock),
		backend:  backend,
		closer:   closer,
		logger:   log,
	}

	if !o.skipHistory {
		a.History, err = history.Open(historyPath, o.clock, logger)
		if err != nil {
			log.Warn().Err(err).Msg("history archive unavailable")
			a.History = nil
		}
	}

	a.Web = web.New(web.Options{
		Tasks:        a.Tasks,
		Research:     a.Research,
		History:      a.History,
		Logger:       logger,
		TickInterval: cfg.Tick.Interval,
	})

	return a, nil
}

// resolvePaths fills the per-user defaults for an empty storage.dir and
// history.path so SCOUT_HOME relocates them.
func resolvePaths(cfg *config.Config) (storage.Options, string, error) {
	opts := storageOptions(cfg)
	if (opts.Kind == config.BackendFile || opts.Kind == "") && opts.Dir == "" {
		dir, err := config.StateDir()
		if err != nil {
			return opts, "", err
		}
		opts.Dir = dir
	}

	historyPath := cfg.History.Path
	if historyPath == "" {
		p, err := config.HistoryPath()
		if err != nil {
			return opts, "", err
		}
		historyPath = p
	}
	return opts, historyPath, nil
}

func storageOptions(cfg *config.Config) storage.Options {
	return storage.Options{
		Kind: cfg.Storage.Backend,
		Dir:  cfg.Storage.Dir,
		Redis: storage.RedisOptions{
			Addr:     cfg.Storage.Redis.Addr,
			Password: cfg.Storage.Redis.Password,
			DB:       cfg.Storage.Redis.DB,
			Prefix:   cfg.Storage.Redis.Prefix,
			TTL:      cfg.Storage.Redis.TTL,
		},
	}
}

// StreamClient returns a client for the configured research backend.
func (a *App) StreamClient() *stream.Client {
	return stream.NewClient(a.Config.Backend.URL, a.Config.Backend.Timeout, a.logger)
}

// Dispatcher returns a dispatcher feeding backend events into the app's stores.
func (a *App) Dispatcher() *stream.Dispatcher {
	return stream.NewDispatcher(a.Tasks, a.Research, a.logger)
}

// Close releases the history database and storage connections.
func (a *App) Close() error {
	var errs []error
	if a.History != nil {
		if err := a.History.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close history: %w", err))
		}
	}
	if a.closer != nil {
		if err := a.closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close storage: %w", err))
		}
	}
	return errors.Join(errs...)
}

// ListenAndServe listens on the configured address and calls Serve.
func (a *App) ListenAndServe(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", a.Config.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Config.Server.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve runs the view server on ln until ctx is canceled, then shuts it down
// gracefully. With the file backend it also watches the snapshot so changes
// made by other scout processes show up in the served state.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Handler:           a.Web,
		ReadTimeout:       a.Config.Server.ReadTimeout,
		ReadHeaderTimeout: a.Config.Server.ReadTimeout,
		// request contexts end with the server so clock streams unblock Shutdown
		BaseContext: func(net.Listener) context.Context { return gctx },
	}

	a.logger.Info().Str("addr", ln.Addr().String()).Msg("view server listening")

	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("view server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), constants.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown view server: %w", err)
		}
		a.logger.Info().Msg("view server stopped")
		return nil
	})

	if fb, ok := a.backend.(*storage.FileBackend); ok {
		g.Go(func() error {
			return fb.Watch(gctx, a.Config.Storage.Key, a.logger, func() {
				if gctx.Err() != nil {
					return
				}
				if a.Tasks.Sync(gctx) {
					a.logger.Debug().Msg("picked up external task change")
				}
			})
		})
	}

	return g.Wait()
}
