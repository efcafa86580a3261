package config

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"github.com/xtding233/duel-engine/internal/duel"
	apperrors "github.com/xtding233/duel-engine/internal/platform/errors"
)

// Validate checks semantic constraints of a resolved GameConfig and reports
// every violation in a single CONFIGURATION error.
func Validate(cfg GameConfig) error {
	var errs []string

	// parties
	if len(cfg.Names) < 2 {
		errs = append(errs, "parties.names needs at least two parties")
	}
	seen := make(map[string]bool, len(cfg.Names))
	for i, name := range cfg.Names {
		name = strings.TrimSpace(name)
		if name == "" {
			errs = append(errs, fmt.Sprintf("parties.names[%d] must not be blank", i))
			continue
		}
		if seen[name] {
			errs = append(errs, fmt.Sprintf("parties.names[%d] duplicates %q", i, name))
		}
		seen[name] = true
	}
	if cfg.Vitality <= 0 {
		errs = append(errs, "parties.vitality must be > 0")
	}
	if cfg.Speed < 0 {
		errs = append(errs, "parties.speed must be >= 0")
	}
	if cfg.Strength < 0 {
		errs = append(errs, "parties.strength must be >= 0")
	}

	// game
	if cfg.Objectives <= 0 {
		errs = append(errs, "game.objectives_per_round must be > 0")
	}
	switch cfg.Mode {
	case duel.ModeNumeric:
	case duel.ModeKeyed:
		if cfg.Objectives > duel.MaxKeyedObjectives {
			errs = append(errs, fmt.Sprintf("game.objectives_per_round must be <= %d for mode=keyed", duel.MaxKeyedObjectives))
		}
	default:
		errs = append(errs, "game.mode must be one of: numeric, keyed")
	}

	// display
	if _, err := language.Parse(cfg.Locale); err != nil {
		errs = append(errs, fmt.Sprintf("display.locale %q is not a valid language tag", cfg.Locale))
	}

	if len(errs) > 0 {
		return apperrors.WithMetadata(apperrors.CodeConfiguration,
			"config validation failed: "+strings.Join(errs, "; "),
			map[string]string{"violations": fmt.Sprint(len(errs))})
	}
	return nil
}
