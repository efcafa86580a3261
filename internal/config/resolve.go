// resolve.go
package config

import "strings"

// Overrides carries command-line values. Nil means the flag was not given.
type Overrides struct {
	Names      *[]string
	Vitality   *int
	Speed      *int
	Strength   *int
	Objectives *int
	Mode       *string
	Seed       *uint64
	Locale     *string
	Live       *bool
}

func (o Overrides) raw() RawConfig {
	var r RawConfig
	if o.Names != nil {
		r.Parties.Names = trimNames(*o.Names)
	}
	r.Parties.Vitality = o.Vitality
	r.Parties.Speed = o.Speed
	r.Parties.Strength = o.Strength
	r.Game.Objectives = o.Objectives
	if o.Mode != nil {
		r.Game.Mode = *o.Mode
	}
	r.Game.Seed = o.Seed
	if o.Locale != nil {
		r.Display.Locale = *o.Locale
	}
	r.Display.Live = o.Live
	return r
}

type Resolver interface {
	// Returns the merged RawConfig and the validated GameConfig.
	Resolve(profile string, env EnvOverrides, o Overrides) (RawConfig, GameConfig, error)
}

// Resolve layers builtin → default → profile → env → flags and validates
// the result.
func (l *Loader) Resolve(profile string, env EnvOverrides, o Overrides) (RawConfig, GameConfig, error) {
	if profile == "" {
		profile = env.Profile
	}
	merged, err := l.LoadMerged(profile)
	if err != nil {
		return RawConfig{}, GameConfig{}, err
	}
	merged = mergeRaw(merged, env.Raw())
	merged = mergeRaw(merged, o.raw())

	cfg := normalize(merged)
	if err := Validate(cfg); err != nil {
		return merged, GameConfig{}, err
	}
	return merged, cfg, nil
}

// ParseNames splits a comma-separated flag value.
func ParseNames(s string) []string {
	return trimNames(strings.Split(s, ","))
}

func trimNames(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = strings.TrimSpace(n)
	}
	return out
}
