package counter

import (
	"context"
	"time"
)

// Ticker delivers periodic ticks until stopped.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Clock creates tickers. The counter never reads wall time directly.
type Clock interface {
	NewTicker(d time.Duration) Ticker
}

// SystemClock returns a Clock backed by time.Ticker.
func SystemClock() Clock { return systemClock{} }

type systemClock struct{}

func (systemClock) NewTicker(d time.Duration) Ticker {
	return systemTicker{t: time.NewTicker(d)}
}

type systemTicker struct{ t *time.Ticker }

func (s systemTicker) C() <-chan time.Time { return s.t.C }
func (s systemTicker) Stop()               { s.t.Stop() }

// ManualClock hands out tickers that only fire when Advance is called.
// Ticks are unbuffered: Advance returns once the running counter has received
// each tick, so any command sent afterwards observes them.
type ManualClock struct {
	ch chan time.Time
}

// NewManualClock creates a clock for deterministic tests and simulations.
func NewManualClock() *ManualClock {
	return &ManualClock{ch: make(chan time.Time)}
}

// NewTicker implements Clock. The interval is ignored.
func (m *ManualClock) NewTicker(time.Duration) Ticker {
	return manualTicker{ch: m.ch}
}

// Advance delivers n ticks. It blocks while no counter is running, so callers
// bound it with ctx.
func (m *ManualClock) Advance(ctx context.Context, n int) error {
	for i := 0; i < n; i++ {
		select {
		case m.ch <- time.Time{}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

type manualTicker struct{ ch chan time.Time }

func (m manualTicker) C() <-chan time.Time { return m.ch }
func (manualTicker) Stop()                 {}
