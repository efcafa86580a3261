// Package counter implements the live timing dial a party must stop close to
// an objective.
//
// A Counter is an actor: one goroutine owns the dial value and miss count and
// serialises ticks and commands. Stop is handled by that same goroutine, so
// the returned snapshot reflects every tick applied before it and none after.
package counter

import (
	"sync"
	"time"

	apperrors "github.com/xtding233/duel-engine/internal/platform/errors"
)

const (
	// TickInterval is the period between increments while running.
	TickInterval = 30 * time.Millisecond
	// Max is the highest dial value. Values wrap modulo Max+1.
	Max = 100

	modulus      = Max + 1
	speedPerStep = 25
)

// Snapshot is the frozen dial state read at stop time.
type Snapshot struct {
	Value int
	Miss  int
}

// Step returns the per-tick increment for the given speed (at least 1).
func Step(speed int) int {
	if s := speed / speedPerStep; s > 1 {
		return s
	}
	return 1
}

// advance moves the dial by step, counting one miss per wrap past Max.
func advance(s Snapshot, step int) Snapshot {
	v := s.Value + step
	s.Miss += v / modulus
	s.Value = v % modulus
	return s
}

type state int

const (
	stateIdle state = iota
	stateRunning
	stateStopped
)

func (s state) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateRunning:
		return "running"
	case stateStopped:
		return "stopped"
	}
	return "unknown"
}

type resetCmd struct{ reply chan<- error }

type startCmd struct {
	speed int
	reply chan<- error
}

type stopCmd struct{ reply chan<- stopResult }

type stopResult struct {
	snap Snapshot
	err  error
}

// Counter is the speed-driven wrapping dial. The zero value is not usable;
// create one with New and release it with Close.
type Counter struct {
	clock    Clock
	interval time.Duration
	observe  func(Snapshot)

	inbox     chan any
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// Option configures a Counter.
type Option func(*Counter)

// WithClock replaces the system clock.
func WithClock(c Clock) Option {
	return func(ct *Counter) {
		if c != nil {
			ct.clock = c
		}
	}
}

// WithInterval overrides TickInterval.
func WithInterval(d time.Duration) Option {
	return func(ct *Counter) {
		if d > 0 {
			ct.interval = d
		}
	}
}

// WithObserver registers fn to receive the dial state after every tick.
// fn runs on the counter goroutine and must not block.
func WithObserver(fn func(Snapshot)) Option {
	return func(ct *Counter) { ct.observe = fn }
}

// New starts the counter goroutine in the idle state.
func New(opts ...Option) *Counter {
	c := &Counter{
		clock:    SystemClock(),
		interval: TickInterval,
		inbox:    make(chan any),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	go c.run()
	return c
}

// Reset zeroes value and miss. It fails while the counter is running.
func (c *Counter) Reset() error {
	reply := make(chan error, 1)
	if err := c.send(resetCmd{reply: reply}); err != nil {
		return err
	}
	return <-reply
}

// Start begins ticking at the given speed and returns immediately.
// The counter must have been reset since it was last stopped.
func (c *Counter) Start(speed int) error {
	reply := make(chan error, 1)
	if err := c.send(startCmd{speed: speed, reply: reply}); err != nil {
		return err
	}
	return <-reply
}

// Stop halts ticking and returns the frozen snapshot. It fails when the
// counter is not running.
func (c *Counter) Stop() (Snapshot, error) {
	reply := make(chan stopResult, 1)
	if err := c.send(stopCmd{reply: reply}); err != nil {
		return Snapshot{}, err
	}
	res := <-reply
	return res.snap, res.err
}

// Close terminates the counter goroutine. Safe to call more than once.
func (c *Counter) Close() {
	c.closeOnce.Do(func() { close(c.quit) })
	<-c.done
}

func (c *Counter) send(cmd any) error {
	select {
	case c.inbox <- cmd:
		return nil
	case <-c.done:
		return usageError("counter closed", "closed")
	}
}

func (c *Counter) run() {
	defer close(c.done)

	var (
		st     state
		snap   Snapshot
		step   int
		ticker Ticker
		tick   <-chan time.Time
	)
	halt := func() {
		if ticker != nil {
			ticker.Stop()
			ticker = nil
			tick = nil
		}
	}
	defer halt()

	for {
		select {
		case <-c.quit:
			return
		case cmd := <-c.inbox:
			switch m := cmd.(type) {
			case resetCmd:
				if st == stateRunning {
					m.reply <- usageError("reset while running", st.String())
					continue
				}
				snap = Snapshot{}
				st = stateIdle
				m.reply <- nil
			case startCmd:
				if st != stateIdle {
					m.reply <- usageError("start requires a reset counter", st.String())
					continue
				}
				if m.speed < 0 {
					m.reply <- usageError("negative speed", st.String())
					continue
				}
				step = Step(m.speed)
				ticker = c.clock.NewTicker(c.interval)
				tick = ticker.C()
				st = stateRunning
				m.reply <- nil
			case stopCmd:
				if st != stateRunning {
					m.reply <- stopResult{err: usageError("stop while not running", st.String())}
					continue
				}
				halt()
				st = stateStopped
				m.reply <- stopResult{snap: snap}
			}
		case <-tick:
			snap = advance(snap, step)
			if c.observe != nil {
				c.observe(snap)
			}
		}
	}
}

func usageError(msg, st string) error {
	return apperrors.WithMetadata(apperrors.CodeUsage, "counter: "+msg, map[string]string{"state": st})
}
