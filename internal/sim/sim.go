// Package sim plays many games between scripted parties to estimate how
// configuration choices shift outcomes.
package sim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"runtime"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/xtding233/duel-engine/internal/config"
	"github.com/xtding233/duel-engine/internal/counter"
	"github.com/xtding233/duel-engine/internal/duel"
	apperrors "github.com/xtding233/duel-engine/internal/platform/errors"
)

// DefaultMaxRounds bounds a simulated game that keeps tying.
const DefaultMaxRounds = 500

var errRoundLimit = errors.New("round limit reached")

// Params describes one simulation run.
type Params struct {
	Game config.GameConfig

	// Jitter is each party's reaction error: the standard deviation, in
	// ticks, of where it stops around the ideal tick. Missing entries are 0.
	Jitter []float64

	Trials    int
	Seed      uint64
	MaxRounds int // <=0 means DefaultMaxRounds
	Workers   int // <=0 means GOMAXPROCS
}

// Report summarizes a simulation run.
type Report struct {
	Trials    int
	Wins      map[string]int
	Undecided int   // games stopped at the round limit
	Rounds    Stats // rounds per decided game
}

// WinRate returns the share of trials won by name, rounded to 4 places.
func (r Report) WinRate(name string) decimal.Decimal {
	if r.Trials == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(r.Wins[name])).
		Div(decimal.NewFromInt(int64(r.Trials))).
		Round(4)
}

type trialResult struct {
	winner string
	rounds int
}

// Run plays p.Trials games concurrently. Trial i is seeded from p.Seed and i
// alone, so a report only depends on p.
func Run(ctx context.Context, p Params) (Report, error) {
	if p.Trials <= 0 {
		return Report{}, apperrors.New(apperrors.CodeConfiguration, "sim: trials must be > 0")
	}
	if err := config.Validate(p.Game); err != nil {
		return Report{}, err
	}
	if p.MaxRounds <= 0 {
		p.MaxRounds = DefaultMaxRounds
	}
	if p.Workers <= 0 {
		p.Workers = runtime.GOMAXPROCS(0)
	}

	results := make([]trialResult, p.Trials)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.Workers)
	for i := range p.Trials {
		g.Go(func() error {
			res, err := simulateOne(gctx, p, uint64(i))
			if err != nil {
				return fmt.Errorf("trial %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	rep := Report{Trials: p.Trials, Wins: make(map[string]int)}
	var rounds []int
	for _, r := range results {
		if r.winner == "" {
			rep.Undecided++
			continue
		}
		rep.Wins[r.winner]++
		rounds = append(rounds, r.rounds)
	}
	rep.Rounds = calcStats(rounds)
	return rep, nil
}

// simulateOne plays a single game to completion or to the round limit.
func simulateOne(ctx context.Context, p Params, trial uint64) (trialResult, error) {
	clock := counter.NewManualClock()
	s, err := duel.NewSession(p.Game.Parties(), p.Game.Objectives,
		duel.WithMode(p.Game.Mode),
		duel.WithGenerator(duel.NewGenerator(duel.NewSeededRNG(p.Seed^trial))),
		duel.WithCounterOptions(counter.WithClock(clock)),
	)
	if err != nil {
		return trialResult{}, err
	}
	defer s.Close()

	jitter := make(map[string]float64, len(p.Game.Names))
	for i, name := range p.Game.Names {
		if i < len(p.Jitter) {
			jitter[name] = p.Jitter[i]
		}
	}
	bot := &botInput{
		clock:     clock,
		rng:       rand.New(rand.NewPCG(p.Seed, trial)),
		jitter:    jitter,
		maxRounds: p.MaxRounds,
	}
	res, err := duel.Play(ctx, s, bot)
	if errors.Is(err, errRoundLimit) {
		return trialResult{}, nil
	}
	if err != nil {
		return trialResult{}, err
	}
	return trialResult{winner: res.Winner, rounds: res.Rounds}, nil
}

// botInput aims for each objective and misses by a normally distributed
// number of ticks.
type botInput struct {
	clock     *counter.ManualClock
	rng       *rand.Rand
	jitter    map[string]float64
	maxRounds int

	speed int // speed of the party whose turn it is
}

func (b *botInput) AwaitReady(_ context.Context, round int, party duel.Party, _ []duel.Objective) error {
	if round > b.maxRounds {
		return errRoundLimit
	}
	b.speed = party.Speed
	return nil
}

func (b *botInput) AwaitStop(ctx context.Context, p duel.ObjectivePrompt) (duel.Signal, error) {
	step := float64(counter.Step(b.speed))
	ideal := math.Round(float64(p.Objective.Target()) / step)
	ticks := int(math.Round(ideal + b.rng.NormFloat64()*b.jitter[p.Party]))
	if err := b.clock.Advance(ctx, max(ticks, 0)); err != nil {
		return duel.Signal{}, err
	}
	var sig duel.Signal
	if k, ok := p.Objective.(duel.KeyedObjective); ok {
		sig.Key = k.Key
	}
	return sig, nil
}

// ChoosePoison always weakens strength.
func (b *botInput) ChoosePoison(context.Context, duel.PoisonRequested) (string, error) {
	return duel.StrengthPoison.String(), nil
}
