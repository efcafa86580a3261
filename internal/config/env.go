package config

import (
	platformconfig "github.com/xtding233/duel-engine/internal/platform/config"
	apperrors "github.com/xtding233/duel-engine/internal/platform/errors"
)

// EnvOverrides is the environment layer. Unset variables leave pointers nil.
type EnvOverrides struct {
	Profile    string   `env:"DUEL_PROFILE"`
	Names      []string `env:"DUEL_PARTIES" envSeparator:","`
	Vitality   *int     `env:"DUEL_VITALITY"`
	Speed      *int     `env:"DUEL_SPEED"`
	Strength   *int     `env:"DUEL_STRENGTH"`
	Objectives *int     `env:"DUEL_OBJECTIVES"`
	Mode       string   `env:"DUEL_MODE"`
	Seed       *uint64  `env:"DUEL_SEED"`
	Locale     string   `env:"DUEL_LOCALE"`
	Live       *bool    `env:"DUEL_LIVE"`
}

// LoadEnv reads DUEL_* variables. A malformed value is a CONFIGURATION error.
func LoadEnv() (EnvOverrides, error) {
	var e EnvOverrides
	if err := platformconfig.ParseEnv(&e); err != nil {
		return EnvOverrides{}, apperrors.Wrap(apperrors.CodeConfiguration, "environment", err)
	}
	return e, nil
}

// Raw converts the environment layer into a RawConfig for merging.
func (e EnvOverrides) Raw() RawConfig {
	return RawConfig{
		Game: GameSection{
			Objectives: e.Objectives,
			Mode:       e.Mode,
			Seed:       e.Seed,
		},
		Parties: PartySection{
			Names:    trimNames(e.Names),
			Vitality: e.Vitality,
			Speed:    e.Speed,
			Strength: e.Strength,
		},
		Display: DisplaySection{Locale: e.Locale, Live: e.Live},
	}
}
