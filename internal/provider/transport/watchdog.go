package transport

import (
	"context"
	"sync/atomic"
	"time"
)

// Watchdog cancels a stream when no event arrives within the idle window.
// A zero window disables it.
type Watchdog struct {
	idle  time.Duration
	timer *time.Timer
	fired atomic.Bool
}

// NewWatchdog arms a watchdog that calls cancel after idle without a Kick.
func NewWatchdog(idle time.Duration, cancel context.CancelFunc) *Watchdog {
	w := &Watchdog{idle: idle}
	if idle <= 0 {
		return w
	}

	w.timer = time.AfterFunc(idle, func() {
		w.fired.Store(true)
		cancel()
	})
	return w
}

// Kick restarts the idle window.
func (w *Watchdog) Kick() {
	if w.timer == nil || w.fired.Load() {
		return
	}
	w.timer.Reset(w.idle)
}

// Stop disarms the watchdog.
func (w *Watchdog) Stop() {
	if w.timer != nil {
		w.timer.Stop()
	}
}

// TimedOut reports whether the watchdog cancelled the stream.
func (w *Watchdog) TimedOut() bool {
	return w.fired.Load()
}
