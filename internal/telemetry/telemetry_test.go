package telemetry

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/xtding233/duel-engine/internal/duel"
)

func sampleGame() []duel.Event {
	a := duel.NewParty("A", 50, 50, 50)
	b := duel.NewParty("B", 50, 50, 50)
	obj := duel.NumericObjective{Goal: 50}
	return []duel.Event{
		duel.GameStarted{SessionID: "s-1", Parties: []duel.Party{a, b}},
		duel.RoundStarted{Round: 1, Objectives: []duel.Objective{obj}},
		duel.TurnStarted{Round: 1, Party: a},
		duel.ObjectiveResolved{Round: 1, Party: "A", Objective: obj, CounterValue: 50, Score: 150},
		duel.TurnStarted{Round: 1, Party: b},
		duel.ObjectiveResolved{Round: 1, Party: "B", Objective: obj, CounterValue: 36, Score: 136},
		duel.RoundResolved{Round: 1, Winner: "A", Losers: []string{"B"}, VitalityLoss: 14},
		duel.PoisonRequested{Round: 1, Winner: "A", Losers: []string{"B"}, Choices: duel.Poisons},
		duel.InputRejected{Round: 1, Party: "A", Input: "7", Err: errors.New("bad choice")},
		duel.PoisonApplied{Round: 1, Winner: "A", Poison: duel.StrengthPoison, Target: b},
		duel.RoundStarted{Round: 2, Objectives: []duel.Objective{obj}},
		duel.RoundResolved{Round: 2, Tie: true},
		duel.GameEnded{Rounds: 2, Winner: "A", Eliminated: []string{"B"}},
	}
}

func TestTraceObserverSpans(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	o := NewTraceObserver(context.Background(), tp, "default")
	for _, e := range sampleGame() {
		o.Observe(e)
	}

	spans := sr.Ended()
	if len(spans) != 3 {
		t.Fatalf("ended spans = %d, want 3", len(spans))
	}
	var game sdktrace.ReadOnlySpan
	rounds := 0
	for _, s := range spans {
		switch s.Name() {
		case "duel.game":
			game = s
		case "duel.round":
			rounds++
		}
	}
	if game == nil || rounds != 2 {
		t.Fatalf("game=%v rounds=%d", game, rounds)
	}
	for _, s := range spans {
		if s.Name() == "duel.round" && s.Parent().SpanID() != game.SpanContext().SpanID() {
			t.Fatalf("round span not parented to game span")
		}
	}
	first := spans[0]
	if first.Name() != "duel.round" || len(first.Events()) != 6 {
		t.Fatalf("first round span %s has %d events, want 6", first.Name(), len(first.Events()))
	}
	found := false
	for _, kv := range game.Attributes() {
		if kv.Key == "duel.winner" && kv.Value.AsString() == "A" {
			found = true
		}
	}
	if !found {
		t.Fatalf("game span missing winner attribute: %v", game.Attributes())
	}
}

func TestTraceObserverAbort(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	o := NewTraceObserver(context.Background(), tp, "")
	events := sampleGame()
	for _, e := range events[:3] {
		o.Observe(e)
	}
	o.Abort(context.Canceled)

	spans := sr.Ended()
	if len(spans) != 2 {
		t.Fatalf("ended spans = %d, want 2", len(spans))
	}
	for _, s := range spans {
		if s.Status().Code != codes.Error {
			t.Fatalf("span %s status = %v, want error", s.Name(), s.Status())
		}
	}
}

func TestLogObserver(t *testing.T) {
	var buf bytes.Buffer
	o := NewLogObserver(&buf)
	for _, e := range sampleGame() {
		o.Observe(e)
	}
	out := buf.String()
	for _, want := range []string{
		"[DUEL] ",
		"game_started session=s-1 parties=2",
		"objective_resolved round=1 party=\"B\" objective=50 value=36 miss=0 score=136",
		"round_resolved round=1 winner=\"A\" losers=\"B\" loss=14",
		"input_rejected round=1 party=\"A\" input=\"7\" err=bad choice",
		"poison_applied round=1 poison=strength",
		"round_resolved round=2 tie=true",
		"game_ended rounds=2 winner=\"A\"",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q\n%s", want, out)
		}
	}
	if n := strings.Count(out, "\n"); n != len(sampleGame()) {
		t.Fatalf("lines = %d, want %d", n, len(sampleGame()))
	}
}
