// Package scoring turns stopped counter readings into scores and scores into
// round averages.
package scoring

import (
	"github.com/shopspring/decimal"

	apperrors "github.com/xtding233/duel-engine/internal/platform/errors"
)

const (
	// MaxBase is the base score for a perfect stop.
	MaxBase = 100

	dialSize = 101
)

// Input is what an objective contributes to scoring once the counter stopped.
type Input struct {
	Objective int
	Value     int
	Miss      int
}

// Score computes the score for this input with the given strength bonus.
func (in Input) Score(strength int) int {
	return Score(in.Objective, in.Value, in.Miss, strength)
}

// Distance is the wrap-aware distance between two dial values in [0,100].
// It is symmetric and never exceeds 50.
func Distance(a, b int) int {
	d := a - b
	if d < 0 {
		d = -d
	}
	if w := dialSize - d; w < d {
		return w
	}
	return d
}

// Score returns round_half_up((max(0, 100-d) + strength) / (miss+1)).
//
// Example: objective 50, value 36, miss 1, strength 50 gives distance 14,
// base 86 and score (86+50)/2 = 68.
func Score(objective, value, miss, strength int) int {
	base := MaxBase - Distance(objective, value)
	if base < 0 {
		base = 0
	}
	if strength < 0 {
		strength = 0
	}
	if miss < 0 {
		miss = 0
	}
	num := decimal.NewFromInt(int64(base + strength))
	den := decimal.NewFromInt(int64(miss + 1))
	return int(num.Div(den).Round(0).IntPart())
}

// Mean returns the exact arithmetic mean of scores.
func Mean(scores []int) (decimal.Decimal, error) {
	if len(scores) == 0 {
		return decimal.Zero, apperrors.New(apperrors.CodeEmptyInput, "scoring: average of no scores")
	}
	sum := decimal.Zero
	for _, s := range scores {
		sum = sum.Add(decimal.NewFromInt(int64(s)))
	}
	return sum.Div(decimal.NewFromInt(int64(len(scores)))), nil
}

// Average returns the mean of scores rounded half-up.
func Average(scores []int) (int, error) {
	mean, err := Mean(scores)
	if err != nil {
		return 0, err
	}
	return int(mean.Round(0).IntPart()), nil
}
