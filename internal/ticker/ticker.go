// Package ticker runs a callback on a fixed interval until stopped. Each live
// view that shows a running clock owns exactly one Ticker and stops it on exit.
package ticker

import (
	"context"
	"sync"
	"time"
)

// Ticker calls a function periodically on its own goroutine.
type Ticker struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Start begins calling fn every interval until Stop is called or ctx is
// canceled. A non-positive interval is treated as one second.
func Start(ctx context.Context, interval time.Duration, fn func()) *Ticker {
	if interval <= 0 {
		interval = time.Second
	}

	ctx, cancel := context.WithCancel(ctx)
	t := &Ticker{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(t.done)

		tk := time.NewTicker(interval)
		defer tk.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-tk.C:
				// ctx may have been canceled while the tick was pending
				if ctx.Err() != nil {
					return
				}
				fn()
			}
		}
	}()
	return t
}

// Stop ends the loop and waits for it to exit. After Stop returns fn will not
// be called again. Stop is safe to call more than once. It must not be called
// from fn, which runs on the loop goroutine; use Cancel there.
func (t *Ticker) Stop() {
	t.Cancel()
	<-t.done
}

// Cancel ends the loop without waiting for it to exit. fn is not called again
// once Cancel returns, apart from a call already in progress.
func (t *Ticker) Cancel() {
	t.once.Do(t.cancel)
}

// Done is closed once the loop has exited.
func (t *Ticker) Done() <-chan struct{} {
	return t.done
}
