// types.go
package config

import "github.com/xtding233/duel-engine/internal/duel"

// RawConfig is one profile file as loaded from YAML. Pointer fields tell an
// unset value from an explicit zero so profiles can be layered.
type RawConfig struct {
	Version string         `yaml:"version"`
	Game    GameSection    `yaml:"game"`
	Parties PartySection   `yaml:"parties"`
	Display DisplaySection `yaml:"display,omitempty"`
	Notes   string         `yaml:"notes,omitempty"`
}

type GameSection struct {
	Objectives *int    `yaml:"objectives_per_round"`
	Mode       string  `yaml:"mode"` // "numeric" | "keyed"
	Seed       *uint64 `yaml:"seed,omitempty"`
}

type PartySection struct {
	Names    []string `yaml:"names"`
	Vitality *int     `yaml:"vitality"`
	Speed    *int     `yaml:"speed"`
	Strength *int     `yaml:"strength"`
}

type DisplaySection struct {
	Locale string `yaml:"locale,omitempty"`
	Live   *bool  `yaml:"live,omitempty"`
}

// GameConfig is the resolved configuration a session is built from.
type GameConfig struct {
	Names      []string
	Vitality   int
	Speed      int
	Strength   int
	Objectives int
	Mode       duel.Mode
	Seed       uint64 // 0 draws objectives from crypto/rand
	Locale     string
	Live       bool
	Version    string // effective profile version for tracing
}

// Parties builds the starting parties in turn order.
func (c GameConfig) Parties() []duel.Party {
	out := make([]duel.Party, len(c.Names))
	for i, name := range c.Names {
		out[i] = duel.NewParty(name, c.Vitality, c.Speed, c.Strength)
	}
	return out
}

// Builtin returns the lowest configuration layer.
func Builtin() RawConfig {
	objectives := 5
	vitality := duel.DefaultVitality
	speed := duel.DefaultSpeed
	strength := duel.DefaultStrength
	live := true
	return RawConfig{
		Version: "builtin",
		Game:    GameSection{Objectives: &objectives, Mode: string(duel.ModeNumeric)},
		Parties: PartySection{
			Names:    []string{"Player 1", "Player 2"},
			Vitality: &vitality,
			Speed:    &speed,
			Strength: &strength,
		},
		Display: DisplaySection{Locale: "en-US", Live: &live},
	}
}

// normalize flattens a merged RawConfig. Nil fields fall back to Builtin.
func normalize(raw RawConfig) GameConfig {
	raw = mergeRaw(Builtin(), raw)
	cfg := GameConfig{
		Names:      append([]string(nil), raw.Parties.Names...),
		Vitality:   *raw.Parties.Vitality,
		Speed:      *raw.Parties.Speed,
		Strength:   *raw.Parties.Strength,
		Objectives: *raw.Game.Objectives,
		Mode:       duel.Mode(raw.Game.Mode),
		Locale:     raw.Display.Locale,
		Live:       *raw.Display.Live,
		Version:    raw.Version,
	}
	if raw.Game.Seed != nil {
		cfg.Seed = *raw.Game.Seed
	}
	return cfg
}
