package config

import (
	"strings"
	"testing"
)

type envTestConfig struct {
	Vitality int `env:"DUEL_TEST_VITALITY" envDefault:"50"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Vitality != 50 {
		t.Fatalf("expected default vitality 50, got %d", cfg.Vitality)
	}
}

func TestParseEnvOverride(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("DUEL_TEST_VITALITY", "80")

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Vitality != 80 {
		t.Fatalf("expected vitality 80, got %d", cfg.Vitality)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("DUEL_TEST_VITALITY", "lots")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}
