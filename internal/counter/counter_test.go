package counter

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "github.com/xtding233/duel-engine/internal/platform/errors"
)

func newManual(t *testing.T, opts ...Option) (*Counter, *ManualClock) {
	t.Helper()
	clock := NewManualClock()
	c := New(append([]Option{WithClock(clock)}, opts...)...)
	t.Cleanup(c.Close)
	return c, clock
}

func tickN(t *testing.T, clock *ManualClock, n int) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := clock.Advance(ctx, n); err != nil {
		t.Fatalf("advance %d: %v", n, err)
	}
}

func TestStep(t *testing.T) {
	cases := []struct {
		speed, want int
	}{
		{0, 1},
		{24, 1},
		{25, 1},
		{50, 2},
		{75, 3},
		{100, 4},
	}
	for _, tc := range cases {
		if got := Step(tc.speed); got != tc.want {
			t.Errorf("Step(%d) = %d, want %d", tc.speed, got, tc.want)
		}
	}
}

func TestAdvanceWraps(t *testing.T) {
	cases := []struct {
		name string
		in   Snapshot
		step int
		want Snapshot
	}{
		{"no wrap", Snapshot{Value: 10}, 3, Snapshot{Value: 13}},
		{"lands on max", Snapshot{Value: 97}, 3, Snapshot{Value: 100}},
		{"wraps once", Snapshot{Value: 99}, 3, Snapshot{Value: 1, Miss: 1}},
		{"wraps to zero", Snapshot{Value: 100, Miss: 2}, 1, Snapshot{Value: 0, Miss: 3}},
		{"wraps twice", Snapshot{}, 250, Snapshot{Value: 48, Miss: 2}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := advance(tc.in, tc.step); got != tc.want {
				t.Fatalf("advance(%+v, %d) = %+v, want %+v", tc.in, tc.step, got, tc.want)
			}
		})
	}
}

func TestStopReturnsTicksApplied(t *testing.T) {
	c, clock := newManual(t)

	if err := c.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if err := c.Start(75); err != nil {
		t.Fatalf("start: %v", err)
	}
	tickN(t, clock, 12)
	snap, err := c.Stop()
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if snap != (Snapshot{Value: 36}) {
		t.Fatalf("snapshot = %+v, want value 36", snap)
	}
}

func TestStopCountsMisses(t *testing.T) {
	c, clock := newManual(t)

	_ = c.Reset()
	if err := c.Start(75); err != nil {
		t.Fatalf("start: %v", err)
	}
	// 3 * 34 = 102 -> one wrap, value 1.
	tickN(t, clock, 34)
	snap, err := c.Stop()
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if snap != (Snapshot{Value: 1, Miss: 1}) {
		t.Fatalf("snapshot = %+v, want {1 1}", snap)
	}
}

func TestNoTickAfterStop(t *testing.T) {
	c, clock := newManual(t)

	_ = c.Reset()
	_ = c.Start(50)
	tickN(t, clock, 5)
	first, err := c.Stop()
	if err != nil {
		t.Fatalf("stop: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := clock.Advance(ctx, 1); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("tick after stop was accepted: %v", err)
	}

	if err := c.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	_ = c.Start(50)
	second, _ := c.Stop()
	if first != (Snapshot{Value: 10}) || second != (Snapshot{}) {
		t.Fatalf("first=%+v second=%+v", first, second)
	}
}

func TestUsageErrors(t *testing.T) {
	c, _ := newManual(t)

	if _, err := c.Stop(); !errors.Is(err, apperrors.ErrUsage) {
		t.Fatalf("stop on fresh counter: %v", err)
	}
	if err := c.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, err := c.Stop(); !errors.Is(err, apperrors.ErrUsage) {
		t.Fatalf("reset then stop must be a usage error, got %v", err)
	}
	if err := c.Start(-1); !errors.Is(err, apperrors.ErrUsage) {
		t.Fatalf("negative speed: %v", err)
	}
	if err := c.Start(10); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := c.Start(10); !errors.Is(err, apperrors.ErrUsage) {
		t.Fatalf("double start: %v", err)
	}
	if err := c.Reset(); !errors.Is(err, apperrors.ErrUsage) {
		t.Fatalf("reset while running: %v", err)
	}
	if _, err := c.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if _, err := c.Stop(); !errors.Is(err, apperrors.ErrUsage) {
		t.Fatalf("second stop: %v", err)
	}
	if err := c.Start(10); !errors.Is(err, apperrors.ErrUsage) {
		t.Fatalf("start without reset: %v", err)
	}
}

func TestClosedCounter(t *testing.T) {
	c := New(WithClock(NewManualClock()))
	c.Close()
	c.Close()

	if err := c.Reset(); !errors.Is(err, apperrors.ErrUsage) {
		t.Fatalf("reset after close: %v", err)
	}
}

func TestObserverSeesEveryTick(t *testing.T) {
	seen := make(chan Snapshot, 8)
	c, clock := newManual(t, WithObserver(func(s Snapshot) {
		select {
		case seen <- s:
		default:
		}
	}))

	_ = c.Reset()
	_ = c.Start(100)
	tickN(t, clock, 3)
	if _, err := c.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	close(seen)

	var values []int
	for s := range seen {
		values = append(values, s.Value)
	}
	if len(values) != 3 || values[0] != 4 || values[2] != 12 {
		t.Fatalf("observed %v, want [4 8 12]", values)
	}
}

func TestSystemClockTicks(t *testing.T) {
	c := New(WithInterval(time.Millisecond))
	defer c.Close()

	_ = c.Reset()
	if err := c.Start(0); err != nil {
		t.Fatalf("start: %v", err)
	}
	time.Sleep(25 * time.Millisecond)
	snap, err := c.Stop()
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if snap.Value == 0 && snap.Miss == 0 {
		t.Fatalf("expected the dial to move, got %+v", snap)
	}
	if snap.Value < 0 || snap.Value > Max {
		t.Fatalf("value out of range: %+v", snap)
	}
}
