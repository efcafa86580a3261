package duel

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/xtding233/duel-engine/internal/counter"
	apperrors "github.com/xtding233/duel-engine/internal/platform/errors"
	"github.com/xtding233/duel-engine/internal/scoring"
)

// State is a position in the round state machine.
type State int

const (
	AwaitingRound State = iota
	PlayingObjectives
	ResolvingRound
	AwaitingPoisonChoice
	RoundComplete
	GameOver
)

func (s State) String() string {
	switch s {
	case AwaitingRound:
		return "awaiting_round"
	case PlayingObjectives:
		return "playing_objectives"
	case ResolvingRound:
		return "resolving_round"
	case AwaitingPoisonChoice:
		return "awaiting_poison_choice"
	case RoundComplete:
		return "round_complete"
	case GameOver:
		return "game_over"
	}
	return "unknown"
}

// ObjectivePrompt describes the objective whose counter is now running.
type ObjectivePrompt struct {
	Round     int
	Party     string
	Index     int
	Objective Objective
}

// Session owns the parties of one contest and advances the round state
// machine one command at a time. It is not safe for concurrent use.
type Session struct {
	id         string
	parties    []*Party
	perRound   int
	mode       Mode
	generator  *Generator
	counter    *counter.Counter
	observers  []Observer
	counterOpt []counter.Option

	state      State
	round      int
	started    bool
	objectives []Objective
	scores     [][]int

	turn       int // index of the party playing, -1 before the first turn
	next       int // next objective index for the current party
	turnActive bool
	running    bool

	winner int
	losers []int
	result *GameEnded
}

// Option configures a Session.
type Option func(*Session)

// WithID overrides the generated session id.
func WithID(id string) Option {
	return func(s *Session) {
		if id != "" {
			s.id = id
		}
	}
}

// WithMode selects the objective variant.
func WithMode(m Mode) Option {
	return func(s *Session) {
		if m != "" {
			s.mode = m
		}
	}
}

// WithGenerator replaces the default objective generator.
func WithGenerator(g *Generator) Option {
	return func(s *Session) {
		if g != nil {
			s.generator = g
		}
	}
}

// WithCounterOptions configures the session's counter (clock, observer).
func WithCounterOptions(opts ...counter.Option) Option {
	return func(s *Session) { s.counterOpt = append(s.counterOpt, opts...) }
}

// WithObserver registers an event observer.
func WithObserver(o Observer) Option {
	return func(s *Session) {
		if o != nil {
			s.observers = append(s.observers, o)
		}
	}
}

// NewSession creates a session owning copies of parties. It fails with a
// CONFIGURATION error for fewer than two parties, blank or duplicate names,
// or a non-positive objective count.
func NewSession(parties []Party, objectivesPerRound int, opts ...Option) (*Session, error) {
	if err := validateParties(parties, objectivesPerRound); err != nil {
		return nil, err
	}
	s := &Session{
		id:       uuid.NewString(),
		perRound: objectivesPerRound,
		mode:     ModeNumeric,
		round:    1,
		turn:     -1,
		winner:   -1,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.mode != ModeNumeric && s.mode != ModeKeyed {
		return nil, apperrors.New(apperrors.CodeConfiguration, fmt.Sprintf("unknown objective mode %q", s.mode))
	}
	if s.mode == ModeKeyed && objectivesPerRound > MaxKeyedObjectives {
		return nil, apperrors.New(apperrors.CodeConfiguration,
			fmt.Sprintf("keyed mode supports at most %d objectives", MaxKeyedObjectives))
	}
	if s.generator == nil {
		s.generator = NewGenerator(nil)
	}
	s.parties = make([]*Party, len(parties))
	for i, p := range parties {
		np := NewParty(strings.TrimSpace(p.Name), p.Vitality, p.Speed, p.Strength)
		s.parties[i] = &np
	}
	s.counter = counter.New(s.counterOpt...)
	return s, nil
}

func validateParties(parties []Party, perRound int) error {
	var errs []string
	if len(parties) < 2 {
		errs = append(errs, "at least two parties are required")
	}
	seen := make(map[string]bool, len(parties))
	for i, p := range parties {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			errs = append(errs, fmt.Sprintf("party %d has a blank name", i+1))
			continue
		}
		if seen[name] {
			errs = append(errs, fmt.Sprintf("duplicate party name %q", name))
		}
		seen[name] = true
		if p.Vitality <= 0 {
			errs = append(errs, fmt.Sprintf("party %q must start with positive vitality", name))
		}
	}
	if perRound <= 0 {
		errs = append(errs, "objectives per round must be positive")
	}
	if len(errs) > 0 {
		return apperrors.New(apperrors.CodeConfiguration, "invalid session: "+strings.Join(errs, "; "))
	}
	return nil
}

// Close releases the counter goroutine.
func (s *Session) Close() {
	s.counter.Close()
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// State returns the current state.
func (s *Session) State() State { return s.state }

// Round returns the current round number, starting at 1.
func (s *Session) Round() int { return s.round }

// Parties returns copies of the parties in turn order.
func (s *Session) Parties() []Party {
	out := make([]Party, len(s.parties))
	for i, p := range s.parties {
		out[i] = *p
	}
	return out
}

// Objectives returns the current round's objectives.
func (s *Session) Objectives() []Objective {
	return append([]Objective(nil), s.objectives...)
}

// Result returns the terminal event once the game is over.
func (s *Session) Result() (GameEnded, bool) {
	if s.result == nil {
		return GameEnded{}, false
	}
	return *s.result, true
}

// BeginRound generates the round's objectives, shared by every party.
func (s *Session) BeginRound() (RoundStarted, error) {
	if err := s.expect("begin round", AwaitingRound); err != nil {
		return RoundStarted{}, err
	}
	if !s.started {
		s.started = true
		s.emit(GameStarted{SessionID: s.id, Parties: s.Parties()})
	}
	s.objectives = s.generator.Generate(s.mode, s.perRound)
	s.scores = make([][]int, len(s.parties))
	s.turn = -1
	s.turnActive = false
	s.winner = -1
	s.losers = nil
	s.state = PlayingObjectives

	evt := RoundStarted{Round: s.round, Objectives: s.Objectives()}
	s.emit(evt)
	return evt, nil
}

// BeginTurn hands the round to the next party in turn order.
func (s *Session) BeginTurn() (Party, error) {
	if err := s.expect("begin turn", PlayingObjectives); err != nil {
		return Party{}, err
	}
	if s.turnActive {
		return Party{}, s.usage("begin turn", "previous turn still in progress")
	}
	s.turn++
	s.next = 0
	s.turnActive = true

	p := *s.parties[s.turn]
	s.emit(TurnStarted{Round: s.round, Party: p})
	return p, nil
}

// StartObjective resets and starts the counter for the current objective.
func (s *Session) StartObjective() (ObjectivePrompt, error) {
	if err := s.expect("start objective", PlayingObjectives); err != nil {
		return ObjectivePrompt{}, err
	}
	if !s.turnActive {
		return ObjectivePrompt{}, s.usage("start objective", "no turn in progress")
	}
	if s.running {
		return ObjectivePrompt{}, s.usage("start objective", "counter already running")
	}
	p := s.parties[s.turn]
	if err := s.counter.Reset(); err != nil {
		return ObjectivePrompt{}, err
	}
	if err := s.counter.Start(p.Speed); err != nil {
		return ObjectivePrompt{}, err
	}
	s.running = true
	return ObjectivePrompt{
		Round:     s.round,
		Party:     p.Name,
		Index:     s.next,
		Objective: s.objectives[s.next],
	}, nil
}

// StopObjective stops the counter on sig and scores the objective. A
// keyed mismatch scores zero and is reported as InputRejected.
func (s *Session) StopObjective(sig Signal) (ObjectiveResolved, error) {
	if !s.running {
		return ObjectiveResolved{}, s.usage("stop objective", "counter not running")
	}
	snap, err := s.counter.Stop()
	s.running = false
	if err != nil {
		return ObjectiveResolved{}, err
	}

	p := s.parties[s.turn]
	obj := s.objectives[s.next]
	score := 0
	in, err := obj.Resolve(sig, snap)
	switch {
	case err == nil:
		score = in.Score(p.Strength)
	case errors.Is(err, apperrors.ErrInput):
		input := ""
		if sig.Key != 0 {
			input = string(sig.Key)
		}
		s.emit(InputRejected{Round: s.round, Party: p.Name, Input: input, Err: err})
	default:
		return ObjectiveResolved{}, err
	}
	s.scores[s.turn] = append(s.scores[s.turn], score)

	evt := ObjectiveResolved{
		Round:        s.round,
		Party:        p.Name,
		Index:        s.next,
		Objective:    obj,
		CounterValue: snap.Value,
		Miss:         snap.Miss,
		Score:        score,
	}
	s.next++
	if s.next == len(s.objectives) {
		s.turnActive = false
		if s.turn == len(s.parties)-1 {
			s.state = ResolvingRound
		}
	}
	s.emit(evt)
	return evt, nil
}

// CancelObjective stops a running counter and discards the reading. The
// objective stays pending and is played again by the next StartObjective.
func (s *Session) CancelObjective() error {
	if !s.running {
		return nil
	}
	s.running = false
	_, err := s.counter.Stop()
	return err
}

// ResolveRound compares round averages, applies vitality loss and either
// requests a poison choice or completes a tied round.
func (s *Session) ResolveRound() (RoundResolved, error) {
	if err := s.expect("resolve round", ResolvingRound); err != nil {
		return RoundResolved{}, err
	}
	averages := make([]PartyAverage, len(s.parties))
	rounded := make([]int, len(s.parties))
	for i, p := range s.parties {
		mean, err := scoring.Mean(s.scores[i])
		if err != nil {
			return RoundResolved{}, fmt.Errorf("average for %s: %w", p.Name, err)
		}
		avg, _ := scoring.Average(s.scores[i])
		averages[i] = PartyAverage{Party: p.Name, Average: avg, Mean: mean}
		rounded[i] = avg
	}

	winner, losers := decide(rounded)
	evt := RoundResolved{Round: s.round, Averages: averages}
	if winner < 0 {
		evt.Tie = true
		s.state = RoundComplete
		s.emit(evt)
		return evt, nil
	}

	loss := rounded[winner] - rounded[losers[0]]
	evt.Winner = s.parties[winner].Name
	evt.VitalityLoss = loss
	for _, i := range losers {
		s.parties[i].Damage(loss)
		evt.Losers = append(evt.Losers, s.parties[i].Name)
	}
	s.winner = winner
	s.losers = losers
	s.state = AwaitingPoisonChoice
	s.emit(evt)
	s.emit(PoisonRequested{
		Round:   s.round,
		Winner:  evt.Winner,
		Losers:  append([]string(nil), evt.Losers...),
		Choices: append([]PoisonType(nil), Poisons...),
	})
	return evt, nil
}

// decide returns the unique top scorer and every party holding the lowest
// average. A shared top average is a tie (winner -1).
func decide(avgs []int) (winner int, losers []int) {
	hi, lo := avgs[0], avgs[0]
	for _, a := range avgs[1:] {
		hi = max(hi, a)
		lo = min(lo, a)
	}
	if hi == lo {
		return -1, nil
	}
	winner = -1
	for i, a := range avgs {
		if a == hi {
			if winner >= 0 {
				return -1, nil
			}
			winner = i
		}
		if a == lo {
			losers = append(losers, i)
		}
	}
	return winner, losers
}

// PoisonPrompt returns the pending poison request.
func (s *Session) PoisonPrompt() (PoisonRequested, error) {
	if err := s.expect("poison prompt", AwaitingPoisonChoice); err != nil {
		return PoisonRequested{}, err
	}
	losers := make([]string, len(s.losers))
	for i, l := range s.losers {
		losers[i] = s.parties[l].Name
	}
	return PoisonRequested{
		Round:   s.round,
		Winner:  s.parties[s.winner].Name,
		Losers:  losers,
		Choices: append([]PoisonType(nil), Poisons...),
	}, nil
}

// SelectPoison parses a textual choice and applies it. An invalid choice
// returns an INPUT error and leaves the session awaiting a choice.
func (s *Session) SelectPoison(text string) (PoisonType, error) {
	if err := s.expect("select poison", AwaitingPoisonChoice); err != nil {
		return 0, err
	}
	p, err := ParsePoison(text)
	if err != nil {
		s.emit(InputRejected{Round: s.round, Party: s.parties[s.winner].Name, Input: text, Err: err})
		return 0, err
	}
	return p, s.ChoosePoison(p)
}

// ChoosePoison applies p to every round loser.
func (s *Session) ChoosePoison(p PoisonType) error {
	if err := s.expect("choose poison", AwaitingPoisonChoice); err != nil {
		return err
	}
	winner := s.parties[s.winner].Name
	if !p.Valid() {
		err := apperrors.WithMetadata(apperrors.CodeInput,
			fmt.Sprintf("invalid poison type %d", int(p)),
			map[string]string{"selection": p.String()})
		s.emit(InputRejected{Round: s.round, Party: winner, Input: p.String(), Err: err})
		return err
	}
	for _, i := range s.losers {
		s.parties[i].ApplyPoison(p)
		s.emit(PoisonApplied{Round: s.round, Winner: winner, Poison: p, Target: *s.parties[i]})
	}
	s.state = RoundComplete
	return nil
}

// CompleteRound ends the game when a party is eliminated, otherwise moves
// to the next round. It reports whether the game is over.
func (s *Session) CompleteRound() (bool, error) {
	if err := s.expect("complete round", RoundComplete); err != nil {
		return false, err
	}
	var eliminated []string
	for _, p := range s.parties {
		if p.Eliminated() {
			eliminated = append(eliminated, p.Name)
		}
	}
	if len(eliminated) == 0 {
		s.round++
		s.state = AwaitingRound
		return false, nil
	}

	s.state = GameOver
	s.result = &GameEnded{
		Rounds:     s.round,
		Winner:     s.gameWinner(),
		Eliminated: eliminated,
		Parties:    s.Parties(),
	}
	s.emit(*s.result)
	return true, nil
}

// gameWinner is the surviving party with the most vitality, earliest in
// turn order on ties.
func (s *Session) gameWinner() string {
	best := -1
	for i, p := range s.parties {
		if p.Eliminated() {
			continue
		}
		if best < 0 || p.Vitality > s.parties[best].Vitality {
			best = i
		}
	}
	if best < 0 {
		return ""
	}
	return s.parties[best].Name
}

func (s *Session) expect(op string, want State) error {
	if s.state != want {
		return s.usage(op, fmt.Sprintf("state is %s, want %s", s.state, want))
	}
	return nil
}

func (s *Session) usage(op, msg string) error {
	return apperrors.WithMetadata(apperrors.CodeUsage, "session: "+op+": "+msg,
		map[string]string{"state": s.state.String(), "op": op})
}

func (s *Session) emit(e Event) {
	for _, o := range s.observers {
		o.Observe(e)
	}
}
