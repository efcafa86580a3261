package console

import (
	"io"
	"strings"

	"golang.org/x/text/message"

	"github.com/xtding233/duel-engine/internal/duel"
)

// Renderer prints session events as localized text.
type Renderer struct {
	w io.Writer
	p *message.Printer
}

// NewRenderer writes to w using p.
func NewRenderer(w io.Writer, p *message.Printer) *Renderer {
	return &Renderer{w: w, p: p}
}

// Observe implements duel.Observer.
func (r *Renderer) Observe(e duel.Event) {
	switch ev := e.(type) {
	case duel.GameStarted:
		names := make([]string, len(ev.Parties))
		for i, p := range ev.Parties {
			names[i] = p.Name
		}
		r.line("game.started", strings.Join(names, ", "))
	case duel.RoundStarted:
		r.blank()
		r.line("round.started", ev.Round)
		r.line("round.objectives", duel.FormatObjectives(ev.Objectives))
	case duel.TurnStarted:
		r.blank()
		r.line("turn.started", ev.Party.Name, r.stats(ev.Party))
	case duel.ObjectiveResolved:
		r.line("objective.resolved", ev.Objective.String(), ev.CounterValue, ev.Miss, ev.Score)
	case duel.InputRejected:
		r.line("input.rejected", ev.Input, ev.Err)
	case duel.RoundResolved:
		r.blank()
		for _, a := range ev.Averages {
			r.line("round.average", a.Party, a.Average, a.Mean.String())
		}
		if ev.Tie {
			r.line("round.tie")
			return
		}
		r.line("round.winner", ev.Winner, strings.Join(ev.Losers, ", "), ev.VitalityLoss)
	case duel.PoisonRequested:
		r.line("poison.prompt", ev.Winner, strings.Join(ev.Losers, ", "))
		for _, c := range ev.Choices {
			r.line("poison.option", int(c), r.poison(c))
		}
	case duel.PoisonApplied:
		r.line("poison.applied", ev.Winner, r.poison(ev.Poison), r.stats(ev.Target))
	case duel.GameEnded:
		r.blank()
		r.line("game.ended", ev.Rounds)
		for _, p := range ev.Parties {
			r.line("%s", r.stats(p))
		}
		r.line("game.winner", ev.Winner)
		if len(ev.Eliminated) > 0 {
			r.line("game.eliminated", strings.Join(ev.Eliminated, ", "))
		}
	}
}

// Prompt prints a localized message without an event.
func (r *Renderer) Prompt(key string, args ...any) {
	r.line(key, args...)
}

// Printer exposes the renderer's localized printer.
func (r *Renderer) Printer() *message.Printer { return r.p }

func (r *Renderer) stats(p duel.Party) string {
	return r.p.Sprintf("party.stats", p.Name, p.Vitality, p.Speed, p.Strength)
}

func (r *Renderer) poison(p duel.PoisonType) string {
	return r.p.Sprintf("poison." + p.String())
}

func (r *Renderer) line(key string, args ...any) {
	r.p.Fprintf(r.w, key, args...)
	io.WriteString(r.w, "\n")
}

func (r *Renderer) blank() {
	io.WriteString(r.w, "\n")
}
