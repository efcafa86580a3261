package duel

import "github.com/shopspring/decimal"

// Event is emitted by a Session for presentation and telemetry.
type Event interface {
	EventName() string
}

// Observer receives session events in emission order.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

// Observe implements Observer.
func (f ObserverFunc) Observe(e Event) { f(e) }

// GameStarted is emitted once, before the first round.
type GameStarted struct {
	SessionID string
	Parties   []Party
}

// RoundStarted carries the objectives shared by every party this round.
type RoundStarted struct {
	Round      int
	Objectives []Objective
}

// TurnStarted announces the party about to play the round's objectives.
type TurnStarted struct {
	Round int
	Party Party
}

// ObjectiveResolved reports one scored stop.
type ObjectiveResolved struct {
	Round        int
	Party        string
	Index        int
	Objective    Objective
	CounterValue int
	Miss         int
	Score        int
}

// InputRejected reports a recoverable bad input. Nothing is silently dropped.
type InputRejected struct {
	Round int
	Party string
	Input string
	Err   error
}

// PartyAverage is one party's round average.
type PartyAverage struct {
	Party   string
	Average int
	Mean    decimal.Decimal
}

// RoundResolved reports the round outcome. Winner is empty on a tie.
type RoundResolved struct {
	Round        int
	Winner       string
	Losers       []string
	Averages     []PartyAverage
	VitalityLoss int
	Tie          bool
}

// PoisonRequested asks the round winner to pick a poison.
type PoisonRequested struct {
	Round   int
	Winner  string
	Losers  []string
	Choices []PoisonType
}

// PoisonApplied reports a poison and the target's resulting attributes.
type PoisonApplied struct {
	Round  int
	Winner string
	Poison PoisonType
	Target Party
}

// GameEnded is the terminal event.
type GameEnded struct {
	Rounds     int
	Winner     string
	Eliminated []string
	Parties    []Party
}

func (GameStarted) EventName() string       { return "game_started" }
func (RoundStarted) EventName() string      { return "round_started" }
func (TurnStarted) EventName() string       { return "turn_started" }
func (ObjectiveResolved) EventName() string { return "objective_resolved" }
func (InputRejected) EventName() string     { return "input_rejected" }
func (RoundResolved) EventName() string     { return "round_resolved" }
func (PoisonRequested) EventName() string   { return "poison_requested" }
func (PoisonApplied) EventName() string     { return "poison_applied" }
func (GameEnded) EventName() string         { return "game_ended" }
