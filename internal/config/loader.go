package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	apperrors "github.com/xtding233/duel-engine/internal/platform/errors"
)

// DefaultProfile is the profile every other profile is layered on.
const DefaultProfile = "default"

// Paths locates profile files.
type Paths struct {
	BaseDir string // base directory, e.g. ./profiles
}

func (p Paths) DefaultPath() string {
	return filepath.Join(p.BaseDir, DefaultProfile+".yaml")
}

func (p Paths) ProfilePath(profile string) string {
	return filepath.Join(p.BaseDir, profile+".yaml")
}

// Files lists the files a profile is built from, lowest layer first.
func (p Paths) Files(profile string) []string {
	files := []string{p.DefaultPath()}
	if profile != "" && profile != DefaultProfile {
		files = append(files, p.ProfilePath(profile))
	}
	return files
}

// Loader reads profile YAML and merges builtin → default → profile.
type Loader struct {
	paths Paths

	mu    sync.RWMutex
	cache map[string]RawConfig // key: profile name
}

// NewLoader creates a loader for profiles under baseDir.
func NewLoader(baseDir string) *Loader {
	return &Loader{
		paths: Paths{BaseDir: baseDir},
		cache: make(map[string]RawConfig),
	}
}

// Paths returns the loader's file layout.
func (l *Loader) Paths() Paths { return l.paths }

// LoadMerged loads and merges default → profile. Missing files are skipped;
// unreadable or malformed ones fail with a CONFIGURATION error.
func (l *Loader) LoadMerged(profile string) (RawConfig, error) {
	if profile == "" {
		profile = DefaultProfile
	}
	l.mu.RLock()
	if cfg, ok := l.cache[profile]; ok {
		l.mu.RUnlock()
		return cfg, nil
	}
	l.mu.RUnlock()

	merged := RawConfig{}
	for _, path := range l.paths.Files(profile) {
		cfg, err := readYAML(path)
		if err != nil {
			return RawConfig{}, apperrors.Wrap(apperrors.CodeConfiguration, "read profile "+path, err)
		}
		merged = mergeRaw(merged, cfg)
	}

	l.mu.Lock()
	l.cache[profile] = merged
	l.mu.Unlock()
	return merged, nil
}

// Invalidate clears the cache. Call after the watcher reports a change.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[string]RawConfig)
}

// readYAML loads one profile. A missing file yields a zero RawConfig.
func readYAML(path string) (RawConfig, error) {
	var cfg RawConfig
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return RawConfig{}, nil
		}
		return RawConfig{}, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return RawConfig{}, fmt.Errorf("decode yaml: %w", err)
	}
	return cfg, nil
}

// mergeRaw overlays b on a: set scalars and non-nil pointers in b win,
// a non-empty name list in b replaces a's.
func mergeRaw(a, b RawConfig) RawConfig {
	out := a

	if b.Version != "" {
		out.Version = b.Version
	}
	if b.Notes != "" {
		out.Notes = b.Notes
	}

	// game
	if b.Game.Objectives != nil {
		out.Game.Objectives = b.Game.Objectives
	}
	if b.Game.Mode != "" {
		out.Game.Mode = b.Game.Mode
	}
	if b.Game.Seed != nil {
		out.Game.Seed = b.Game.Seed
	}

	// parties
	if len(b.Parties.Names) > 0 {
		out.Parties.Names = append([]string(nil), b.Parties.Names...)
	}
	if b.Parties.Vitality != nil {
		out.Parties.Vitality = b.Parties.Vitality
	}
	if b.Parties.Speed != nil {
		out.Parties.Speed = b.Parties.Speed
	}
	if b.Parties.Strength != nil {
		out.Parties.Strength = b.Parties.Strength
	}

	// display
	if b.Display.Locale != "" {
		out.Display.Locale = b.Display.Locale
	}
	if b.Display.Live != nil {
		out.Display.Live = b.Display.Live
	}

	return out
}
