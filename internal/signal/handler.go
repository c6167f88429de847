// Package signal turns SIGINT and SIGTERM into context cancellation for the
// long-running scout commands (serve, watch).
//
// Import rules:
//   - CAN import: std lib only
//   - MUST NOT import: internal packages
package signal

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Handler cancels its context on the first SIGINT or SIGTERM. A second signal
// closes Forced so callers can abandon a graceful shutdown that hangs.
type Handler struct {
	ctx     context.Context //nolint:containedctx // handler owns the context lifecycle
	cancel  context.CancelFunc
	sigChan chan os.Signal
	done    chan struct{}

	interrupted chan struct{}
	forced      chan struct{}

	mu       sync.Mutex
	received os.Signal
	count    int
	stopOnce sync.Once
}

// NewHandler creates a handler listening for SIGINT and SIGTERM.
//
//	h := signal.NewHandler(ctx)
//	defer h.Stop()
//	ctx = h.Context()
func NewHandler(parent context.Context) *Handler {
	ctx, cancel := context.WithCancel(parent)
	h := &Handler{
		ctx:         ctx,
		cancel:      cancel,
		sigChan:     make(chan os.Signal, 1),
		done:        make(chan struct{}),
		interrupted: make(chan struct{}),
		forced:      make(chan struct{}),
	}

	signal.Notify(h.sigChan, syscall.SIGINT, syscall.SIGTERM)
	go h.listen()

	return h
}

// Context returns the context canceled by the first signal.
func (h *Handler) Context() context.Context {
	return h.ctx
}

// Interrupted closes when the first signal arrives.
func (h *Handler) Interrupted() <-chan struct{} {
	return h.interrupted
}

// Forced closes when a second signal arrives.
func (h *Handler) Forced() <-chan struct{} {
	return h.forced
}

// Signal returns the first signal received, or nil.
func (h *Handler) Signal() os.Signal {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.received
}

// Stop stops listening and cancels the context. It is safe to call more than once.
func (h *Handler) Stop() {
	h.stopOnce.Do(func() {
		signal.Stop(h.sigChan)
		close(h.done)
		h.cancel()
	})
}

func (h *Handler) handleSignal(sig os.Signal) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.count++
	switch h.count {
	case 1:
		h.received = sig
		h.cancel()
		close(h.interrupted)
	case 2:
		close(h.forced)
	}
}

// listen keeps draining signals after the first so delivery never blocks.
func (h *Handler) listen() {
	for {
		select {
		case <-h.done:
			return
		case sig := <-h.sigChan:
			h.handleSignal(sig)
		}
	}
}
