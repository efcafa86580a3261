package duel

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"io"
	"strings"
	"testing"

	apperrors "github.com/xtding233/duel-engine/internal/platform/errors"
)

func parse(t *testing.T, args ...string) Config {
	t.Helper()
	fs := flag.NewFlagSet("duel", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, args)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	return cfg
}

func TestParseConfigDefaults(t *testing.T) {
	cfg := parse(t)
	if cfg.ProfilesDir != "profiles" || !cfg.Watch || cfg.LogEvents {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Overrides.Speed != nil || cfg.Overrides.Names != nil || cfg.Overrides.Live != nil {
		t.Fatalf("unset flags recorded as overrides: %+v", cfg.Overrides)
	}
	if len(cfg.Jitter) != 2 || cfg.Jitter[1] != 10 {
		t.Fatalf("jitter = %v", cfg.Jitter)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	cfg := parse(t, "-speed", "0", "-parties", "Ann, Ben", "-log-file", "duel.log", "-live=false", "-jitter", "1.5")
	if cfg.Overrides.Speed == nil || *cfg.Overrides.Speed != 0 {
		t.Fatalf("explicit zero speed lost: %v", cfg.Overrides.Speed)
	}
	if cfg.Overrides.Names == nil || strings.Join(*cfg.Overrides.Names, "|") != "Ann|Ben" {
		t.Fatalf("names = %v", cfg.Overrides.Names)
	}
	if cfg.Overrides.Live == nil || *cfg.Overrides.Live {
		t.Fatalf("live = %v", cfg.Overrides.Live)
	}
	if !cfg.LogEvents {
		t.Fatal("-log-file should enable event logging")
	}
	if len(cfg.Jitter) != 1 || cfg.Jitter[0] != 1.5 {
		t.Fatalf("jitter = %v", cfg.Jitter)
	}
}

func TestParseConfigEnv(t *testing.T) {
	t.Setenv("DUEL_PROFILE", "fr")
	t.Setenv("DUEL_WATCH", "false")
	t.Setenv("DUEL_VITALITY", "30")

	cfg := parse(t)
	if cfg.Profile != "fr" || cfg.Watch {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.Env.Vitality == nil || *cfg.Env.Vitality != 30 {
		t.Fatalf("env vitality = %v", cfg.Env.Vitality)
	}
}

func TestParseConfigErrors(t *testing.T) {
	fs := flag.NewFlagSet("duel", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	if _, err := ParseConfig(fs, []string{"-jitter", "-1"}); err == nil {
		t.Fatal("expected negative jitter error")
	}

	t.Setenv("DUEL_SPEED", "fast")
	fs = flag.NewFlagSet("duel", flag.ContinueOnError)
	if _, err := ParseConfig(fs, nil); !errors.Is(err, apperrors.ErrConfiguration) {
		t.Fatalf("error = %v, want configuration error", err)
	}
}

func testConfig(t *testing.T, args ...string) Config {
	t.Helper()
	t.Setenv("DUEL_OTEL_ENDPOINT", "")
	cfg := parse(t, args...)
	cfg.ProfilesDir = t.TempDir()
	cfg.Watch = false
	return cfg
}

func TestRunSimulate(t *testing.T) {
	cfg := testConfig(t, "-simulate", "20", "-jitter", "0,15", "-parties", "Sharp,Sloppy", "-seed", "4")
	var out bytes.Buffer
	if err := Run(context.Background(), cfg, strings.NewReader(""), &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, want := range []string{"games: 20", "Sharp", "Sloppy", "rounds: mean="} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("report missing %q:\n%s", want, out.String())
		}
	}
}

func TestRunEndsWhenInputCloses(t *testing.T) {
	cfg := testConfig(t, "-locale", "fr-FR")
	var out bytes.Buffer
	if err := Run(context.Background(), cfg, strings.NewReader(""), &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "## Manche 1 ##") {
		t.Fatalf("expected the first round to be rendered:\n%s", out.String())
	}
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t, "-vitality", "0")
	err := Run(context.Background(), cfg, strings.NewReader(""), io.Discard)
	if !errors.Is(err, apperrors.ErrConfiguration) {
		t.Fatalf("error = %v, want configuration error", err)
	}
}

func TestFinished(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	if done, err := finished(ctx, nil); done || err != nil {
		t.Fatalf("nil error: %v %v", done, err)
	}
	if done, err := finished(ctx, io.EOF); !done || err != nil {
		t.Fatalf("EOF: %v %v", done, err)
	}
	boom := errors.New("boom")
	if done, err := finished(ctx, boom); !done || err != boom {
		t.Fatalf("other error: %v %v", done, err)
	}
	cancel()
	if done, err := finished(ctx, context.Canceled); !done || err != nil {
		t.Fatalf("cancelled: %v %v", done, err)
	}
}
