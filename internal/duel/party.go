package duel

import (
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/xtding233/duel-engine/internal/platform/errors"
)

// PoisonAmount is how much a poison removes from its attribute.
const PoisonAmount = 5

// Default attributes for a new party.
const (
	DefaultVitality = 50
	DefaultSpeed    = 75
	DefaultStrength = 50
)

// PoisonType selects the attribute a poison reduces.
type PoisonType int

const (
	SpeedPoison PoisonType = iota + 1
	StrengthPoison
)

// Poisons lists every poison in menu order.
var Poisons = []PoisonType{SpeedPoison, StrengthPoison}

// Valid reports whether p is one of the enumerated poisons.
func (p PoisonType) Valid() bool {
	return p == SpeedPoison || p == StrengthPoison
}

func (p PoisonType) String() string {
	switch p {
	case SpeedPoison:
		return "speed"
	case StrengthPoison:
		return "strength"
	}
	return "unknown"
}

// ParsePoison accepts a menu number ("1", "2") or a name ("speed", "strength").
func ParsePoison(text string) (PoisonType, error) {
	s := strings.ToLower(strings.TrimSpace(text))
	if n, err := strconv.Atoi(s); err == nil {
		if p := PoisonType(n); p.Valid() {
			return p, nil
		}
	}
	for _, p := range Poisons {
		if s == p.String() {
			return p, nil
		}
	}
	return 0, apperrors.WithMetadata(apperrors.CodeInput,
		fmt.Sprintf("invalid poison selection %q", text),
		map[string]string{"selection": text})
}

// Party is one contestant. Attributes never go below zero.
type Party struct {
	Name     string
	Vitality int
	Speed    int
	Strength int
}

// NewParty creates a party with the given attributes, clamped at zero.
func NewParty(name string, vitality, speed, strength int) Party {
	return Party{
		Name:     name,
		Vitality: floor(vitality),
		Speed:    floor(speed),
		Strength: floor(strength),
	}
}

// ApplyPoison lowers the matching attribute by PoisonAmount, floored at zero.
// Unknown poison types are ignored.
func (p *Party) ApplyPoison(t PoisonType) {
	switch t {
	case SpeedPoison:
		p.Speed = floor(p.Speed - PoisonAmount)
	case StrengthPoison:
		p.Strength = floor(p.Strength - PoisonAmount)
	}
}

// Damage lowers vitality by n, floored at zero.
func (p *Party) Damage(n int) {
	if n <= 0 {
		return
	}
	p.Vitality = floor(p.Vitality - n)
}

// Eliminated reports whether the party has no vitality left.
func (p Party) Eliminated() bool {
	return p.Vitality == 0
}

func (p Party) String() string {
	return fmt.Sprintf("%s (Vitality=%d, Speed=%d, Strength=%d)", p.Name, p.Vitality, p.Speed, p.Strength)
}

func floor(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
