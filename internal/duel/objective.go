package duel

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/xtding233/duel-engine/internal/counter"
	apperrors "github.com/xtding233/duel-engine/internal/platform/errors"
	"github.com/xtding233/duel-engine/internal/scoring"
)

// Signal is the stop event delivered by a party. Key is zero for plain stops.
type Signal struct {
	Key rune
}

// Objective is one target a party must stop the counter close to.
type Objective interface {
	// Target is the dial value to approach, in [0,100].
	Target() int
	// Resolve turns the stop signal and frozen counter into scoring input.
	// An INPUT error means the objective scores zero.
	Resolve(sig Signal, snap counter.Snapshot) (scoring.Input, error)
	String() string
}

// NumericObjective accepts any stop signal.
type NumericObjective struct {
	Goal int
}

func (o NumericObjective) Target() int { return o.Goal }

func (o NumericObjective) Resolve(_ Signal, snap counter.Snapshot) (scoring.Input, error) {
	return scoring.Input{Objective: o.Goal, Value: snap.Value, Miss: snap.Miss}, nil
}

func (o NumericObjective) String() string { return fmt.Sprintf("%d", o.Goal) }

// KeyedObjective only scores when the stop signal carries its key.
type KeyedObjective struct {
	Key  rune
	Goal int
}

func (o KeyedObjective) Target() int { return o.Goal }

func (o KeyedObjective) Resolve(sig Signal, snap counter.Snapshot) (scoring.Input, error) {
	if unicode.ToLower(sig.Key) != unicode.ToLower(o.Key) {
		return scoring.Input{}, apperrors.WithMetadata(apperrors.CodeInput,
			fmt.Sprintf("key %q does not match objective key %q", sig.Key, o.Key),
			map[string]string{"expected": string(o.Key), "got": string(sig.Key)})
	}
	return scoring.Input{Objective: o.Goal, Value: snap.Value, Miss: snap.Miss}, nil
}

func (o KeyedObjective) String() string { return fmt.Sprintf("%c:%d", o.Key, o.Goal) }

// Mode selects which objective variant a round uses.
type Mode string

const (
	ModeNumeric Mode = "numeric"
	ModeKeyed   Mode = "keyed"
)

// MaxKeyedObjectives is the number of distinct keys available.
const MaxKeyedObjectives = len(keyAlphabet)

const keyAlphabet = "abcdefghijklmnopqrstuvwxyz"

// Generator produces fresh objective sequences.
type Generator struct {
	rng RandomSource
}

// NewGenerator creates a generator. A nil source uses DefaultRNG.
func NewGenerator(rng RandomSource) *Generator {
	if rng == nil {
		rng = DefaultRNG()
	}
	return &Generator{rng: rng}
}

// Generate returns n objectives of the given mode.
func (g *Generator) Generate(mode Mode, n int) []Objective {
	if mode == ModeKeyed {
		return g.Keyed(n)
	}
	return g.Numeric(n)
}

// Numeric returns n targets drawn uniformly from [0,100].
func (g *Generator) Numeric(n int) []Objective {
	out := make([]Objective, 0, max(n, 0))
	for i := 0; i < n; i++ {
		out = append(out, NumericObjective{Goal: g.target()})
	}
	return out
}

// Keyed returns up to MaxKeyedObjectives objectives with distinct keys.
func (g *Generator) Keyed(n int) []Objective {
	n = min(n, MaxKeyedObjectives)
	keys := []rune(keyAlphabet)
	// partial Fisher-Yates: first n entries are a random sample
	for i := 0; i < n; i++ {
		j := i + g.rng.IntN(len(keys)-i)
		keys[i], keys[j] = keys[j], keys[i]
	}
	out := make([]Objective, 0, max(n, 0))
	for i := 0; i < n; i++ {
		out = append(out, KeyedObjective{Key: keys[i], Goal: g.target()})
	}
	return out
}

func (g *Generator) target() int {
	return g.rng.IntN(counter.Max + 1)
}

// FormatObjectives renders a sequence as "[12, 80, 3]".
func FormatObjectives(objs []Objective) string {
	parts := make([]string, len(objs))
	for i, o := range objs {
		parts[i] = o.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
