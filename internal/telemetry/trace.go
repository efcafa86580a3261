// Package telemetry turns session events into traces and log lines.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/xtding233/duel-engine/internal/duel"
)

const tracerName = "github.com/xtding233/duel-engine/internal/telemetry"

// TraceObserver records one span per game with a child span per round.
// Turn, objective and poison events become span events.
type TraceObserver struct {
	tracer  trace.Tracer
	ctx     context.Context
	profile string

	game  trace.Span
	round trace.Span
}

// NewTraceObserver traces with tp, or the global provider when tp is nil.
// profile is recorded on the game span.
func NewTraceObserver(ctx context.Context, tp trace.TracerProvider, profile string) *TraceObserver {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &TraceObserver{tracer: tp.Tracer(tracerName), ctx: ctx, profile: profile}
}

// Observe implements duel.Observer.
func (o *TraceObserver) Observe(e duel.Event) {
	switch ev := e.(type) {
	case duel.GameStarted:
		o.End()
		names := make([]string, len(ev.Parties))
		for i, p := range ev.Parties {
			names[i] = p.Name
		}
		_, o.game = o.tracer.Start(o.ctx, "duel.game", trace.WithAttributes(
			attribute.String("duel.session_id", ev.SessionID),
			attribute.String("duel.profile", o.profile),
			attribute.StringSlice("duel.parties", names),
		))
	case duel.RoundStarted:
		o.endRound()
		if o.game == nil {
			return
		}
		ctx := trace.ContextWithSpan(o.ctx, o.game)
		_, o.round = o.tracer.Start(ctx, "duel.round", trace.WithAttributes(
			attribute.Int("duel.round", ev.Round),
			attribute.String("duel.objectives", duel.FormatObjectives(ev.Objectives)),
		))
	case duel.TurnStarted:
		o.roundEvent("turn_started",
			attribute.String("duel.party", ev.Party.Name),
			attribute.Int("duel.speed", ev.Party.Speed),
			attribute.Int("duel.strength", ev.Party.Strength),
		)
	case duel.ObjectiveResolved:
		o.roundEvent("objective_resolved",
			attribute.String("duel.party", ev.Party),
			attribute.Int("duel.target", ev.Objective.Target()),
			attribute.Int("duel.counter_value", ev.CounterValue),
			attribute.Int("duel.miss", ev.Miss),
			attribute.Int("duel.score", ev.Score),
		)
	case duel.InputRejected:
		o.roundEvent("input_rejected",
			attribute.String("duel.party", ev.Party),
			attribute.String("duel.input", ev.Input),
			attribute.String("error", errString(ev.Err)),
		)
	case duel.RoundResolved:
		if o.round == nil {
			return
		}
		o.round.SetAttributes(
			attribute.Bool("duel.tie", ev.Tie),
			attribute.String("duel.winner", ev.Winner),
			attribute.StringSlice("duel.losers", ev.Losers),
			attribute.Int("duel.vitality_loss", ev.VitalityLoss),
		)
	case duel.PoisonApplied:
		o.roundEvent("poison_applied",
			attribute.String("duel.poison", ev.Poison.String()),
			attribute.String("duel.target", ev.Target.Name),
		)
	case duel.GameEnded:
		if o.game != nil {
			o.game.SetAttributes(
				attribute.Int("duel.rounds", ev.Rounds),
				attribute.String("duel.winner", ev.Winner),
				attribute.StringSlice("duel.eliminated", ev.Eliminated),
			)
		}
		o.End()
	}
}

// Abort marks open spans as failed and ends them.
func (o *TraceObserver) Abort(err error) {
	for _, s := range []trace.Span{o.round, o.game} {
		if s != nil {
			s.RecordError(err)
			s.SetStatus(codes.Error, err.Error())
		}
	}
	o.End()
}

// End closes any open spans.
func (o *TraceObserver) End() {
	o.endRound()
	if o.game != nil {
		o.game.End()
		o.game = nil
	}
}

func (o *TraceObserver) endRound() {
	if o.round != nil {
		o.round.End()
		o.round = nil
	}
}

func (o *TraceObserver) roundEvent(name string, attrs ...attribute.KeyValue) {
	if o.round == nil {
		return
	}
	o.round.AddEvent(name, trace.WithAttributes(attrs...))
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
