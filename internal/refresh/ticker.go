package refresh

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultInterval is the refresh period used when none is configured.
const DefaultInterval = 5 * time.Second

// Ticker runs a task periodically until stopped. Ticks run synchronously on
// the ticker goroutine, so a slow task delays the next tick instead of
// overlapping it. Stop waits for an in-flight tick to finish.
type Ticker struct {
	interval time.Duration
	fn       func(context.Context)
	log      *slog.Logger

	ctl    sync.Mutex // serializes Start and Stop
	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	ticks  uint64
}

// New returns a stopped ticker. A non-positive interval means DefaultInterval.
func New(interval time.Duration, fn func(context.Context), log *slog.Logger) *Ticker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if log == nil {
		log = slog.Default()
	}
	return &Ticker{interval: interval, fn: fn, log: log.With("component", "refresh")}
}

// Interval returns the tick period.
func (t *Ticker) Interval() time.Duration { return t.interval }

// Start begins ticking. Calling Start on a running ticker restarts it with a
// fresh timer. The ticker also stops when ctx is cancelled.
func (t *Ticker) Start(ctx context.Context) {
	t.ctl.Lock()
	defer t.ctl.Unlock()
	t.stop()

	t.mu.Lock()
	defer t.mu.Unlock()
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	t.cancel, t.done = cancel, done
	go t.loop(ctx, done)
	t.log.Debug("refresh started", "interval", t.interval)
}

func (t *Ticker) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	tk := time.NewTicker(t.interval)
	defer tk.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tk.C:
			// Stop may have raced with the tick.
			if ctx.Err() != nil {
				return
			}
			t.fn(ctx)
			t.mu.Lock()
			t.ticks++
			t.mu.Unlock()
		}
	}
}

// Stop prevents further ticks and waits for the loop to exit. It is a no-op
// on a stopped ticker. It must not be called from the task itself.
func (t *Ticker) Stop() {
	t.ctl.Lock()
	defer t.ctl.Unlock()
	t.stop()
}

func (t *Ticker) stop() {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.cancel, t.done = nil, nil
	t.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
	t.log.Debug("refresh stopped")
}

// Running reports whether the loop is active. A ticker whose parent context
// was cancelled reports false once its loop has exited.
func (t *Ticker) Running() bool {
	t.mu.Lock()
	done := t.done
	t.mu.Unlock()
	if done == nil {
		return false
	}
	select {
	case <-done:
		return false
	default:
		return true
	}
}

// Ticks is the number of completed ticks since creation.
func (t *Ticker) Ticks() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ticks
}
