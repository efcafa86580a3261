package console

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/message"

	"github.com/xtding233/duel-engine/internal/counter"
	"github.com/xtding233/duel-engine/internal/duel"
)

const clearLine = "\r\033[K"

// IsTerminal reports whether f is an interactive terminal.
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Live redraws the running counter on one terminal line. It only draws
// between Arm and Disarm.
type Live struct {
	w       io.Writer
	p       *message.Printer
	updates chan counter.Snapshot

	mu    sync.Mutex
	armed bool
}

// NewLive draws on w using p.
func NewLive(w io.Writer, p *message.Printer) *Live {
	return &Live{w: w, p: p, updates: make(chan counter.Snapshot, 1)}
}

// Observe is a counter observer. It never blocks: an undrawn snapshot is
// replaced by the newer one.
func (l *Live) Observe(s counter.Snapshot) {
	for {
		select {
		case l.updates <- s:
			return
		default:
		}
		select {
		case <-l.updates:
		default:
		}
	}
}

// Arm enables drawing.
func (l *Live) Arm() {
	l.mu.Lock()
	l.armed = true
	l.mu.Unlock()
}

// Disarm disables drawing. No draw happens after it returns.
func (l *Live) Disarm() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.armed = false
	select {
	case <-l.updates:
	default:
	}
}

// Run draws updates until ctx is done.
func (l *Live) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case s := <-l.updates:
			l.draw(s)
		}
	}
}

func (l *Live) draw(s counter.Snapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.armed {
		return
	}
	io.WriteString(l.w, clearLine)
	l.p.Fprintf(l.w, "live.counter", s.Value, s.Miss)
}

// Play runs the session, drawing live alongside it when live is non-nil.
func Play(ctx context.Context, s *duel.Session, in duel.Input, live *Live) (duel.GameEnded, error) {
	if live == nil {
		return duel.Play(ctx, s, in)
	}
	g, gctx := errgroup.WithContext(ctx)
	drawCtx, stopDrawing := context.WithCancel(gctx)

	var res duel.GameEnded
	g.Go(func() error { return live.Run(drawCtx) })
	g.Go(func() error {
		defer stopDrawing()
		var err error
		res, err = duel.Play(gctx, s, in)
		return err
	})
	if err := g.Wait(); err != nil {
		return duel.GameEnded{}, err
	}
	return res, nil
}
