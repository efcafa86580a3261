// Package duel parses the duel command flags and runs games in the terminal.
package duel

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/xtding233/duel-engine/internal/config"
	"github.com/xtding233/duel-engine/internal/console"
	"github.com/xtding233/duel-engine/internal/counter"
	engine "github.com/xtding233/duel-engine/internal/duel"
	platformconfig "github.com/xtding233/duel-engine/internal/platform/config"
	"github.com/xtding233/duel-engine/internal/platform/otel"
	"github.com/xtding233/duel-engine/internal/sim"
	"github.com/xtding233/duel-engine/internal/telemetry"
)

const serviceName = "duel"

// WatchInterval is how often profile files are polled for changes.
const WatchInterval = 2 * time.Second

// Config holds duel command configuration.
type Config struct {
	ProfilesDir string `env:"DUEL_PROFILES_DIR" envDefault:"profiles"`
	LogEvents   bool   `env:"DUEL_LOG_EVENTS"`
	LogFile     string `env:"DUEL_LOG_FILE"`
	Watch       bool   `env:"DUEL_WATCH" envDefault:"true"`

	Profile   string
	Simulate  int
	Jitter    []float64
	Env       config.EnvOverrides
	Overrides config.Overrides
}

// ParseConfig parses environment and flags into a Config. Game settings given
// as flags are only recorded when set, so they override lower layers.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	env, err := config.LoadEnv()
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := platformconfig.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	cfg.Env = env

	fs.StringVar(&cfg.Profile, "profile", env.Profile, "Profile name under the profiles directory")
	fs.StringVar(&cfg.ProfilesDir, "profiles-dir", cfg.ProfilesDir, "Directory holding profile YAML files")
	fs.BoolVar(&cfg.LogEvents, "log-events", cfg.LogEvents, "Log every game event")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "Append event logs to this file (implies -log-events)")
	fs.BoolVar(&cfg.Watch, "watch", cfg.Watch, "Reload profiles between games when they change")
	fs.IntVar(&cfg.Simulate, "simulate", 0, "Play N games between scripted parties and print a report")
	jitter := fs.String("jitter", "0,10", "Comma-separated reaction error per scripted party, in ticks")

	parties := fs.String("parties", "", "Comma-separated party names")
	vitality := fs.Int("vitality", 0, "Starting vitality")
	speed := fs.Int("speed", 0, "Starting speed")
	strength := fs.Int("strength", 0, "Starting strength")
	objectives := fs.Int("objectives", 0, "Objectives per round")
	mode := fs.String("mode", "", "Objective mode: numeric or keyed")
	seed := fs.Uint64("seed", 0, "Objective seed (0 draws from crypto/rand)")
	locale := fs.String("locale", "", "Display locale, e.g. en-US or fr-FR")
	live := fs.Bool("live", true, "Draw the running counter when stdout is a terminal")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if cfg.LogFile != "" {
		cfg.LogEvents = true
	}
	j, err := parseJitter(*jitter)
	if err != nil {
		return Config{}, fmt.Errorf("parse -jitter: %w", err)
	}
	cfg.Jitter = j

	fs.Visit(func(f *flag.Flag) {
		o := &cfg.Overrides
		switch f.Name {
		case "parties":
			names := config.ParseNames(*parties)
			o.Names = &names
		case "vitality":
			o.Vitality = vitality
		case "speed":
			o.Speed = speed
		case "strength":
			o.Strength = strength
		case "objectives":
			o.Objectives = objectives
		case "mode":
			o.Mode = mode
		case "seed":
			o.Seed = seed
		case "locale":
			o.Locale = locale
		case "live":
			o.Live = live
		}
	})
	return cfg, nil
}

func parseJitter(s string) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, err
		}
		if v < 0 {
			return nil, fmt.Errorf("negative jitter %v", v)
		}
		out[i] = v
	}
	return out, nil
}

// Run resolves the game configuration and either simulates or plays games
// until the players decline a replay, input ends or ctx is cancelled.
func Run(ctx context.Context, cfg Config, stdin io.Reader, stdout io.Writer) error {
	loader := config.NewLoader(cfg.ProfilesDir)
	_, game, err := loader.Resolve(cfg.Profile, cfg.Env, cfg.Overrides)
	if err != nil {
		return err
	}

	shutdown, err := otel.Setup(ctx, serviceName)
	if err != nil {
		log.Printf("tracing disabled: %v", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			log.Printf("flush traces: %v", err)
		}
	}()

	if cfg.Simulate > 0 {
		return simulate(ctx, cfg, game, stdout)
	}

	var observers []engine.Observer
	if cfg.LogEvents {
		w, closeLog, err := openLog(cfg.LogFile)
		if err != nil {
			return err
		}
		defer closeLog()
		observers = append(observers, telemetry.NewLogObserver(w))
	}

	catalog, err := console.LoadCatalog()
	if err != nil {
		return err
	}
	printer := catalog.Printer(game.Locale)
	renderer := console.NewRenderer(stdout, printer)
	var live *console.Live
	if f, ok := stdout.(*os.File); ok && game.Live && console.IsTerminal(f) {
		live = console.NewLive(stdout, printer)
	}
	input := console.NewInput(stdin, renderer, live)

	var reload atomic.Bool
	if cfg.Watch {
		w := config.NewFileWatcher(loader.Paths().Files(cfg.profile()), WatchInterval, func(path string) {
			log.Printf("profile changed: %s", path)
			reload.Store(true)
		})
		w.Start()
		defer w.Stop()
	}

	for n := uint64(0); ; n++ {
		if reload.Swap(false) {
			loader.Invalidate()
			if _, next, err := loader.Resolve(cfg.Profile, cfg.Env, cfg.Overrides); err != nil {
				log.Printf("keeping previous configuration: %v", err)
			} else {
				game = next
			}
		}

		err := playOne(ctx, game, n, cfg.profile(), renderer, input, live, observers)
		if done, err := finished(ctx, err); done {
			return err
		}
		again, err := input.Confirm(ctx)
		if done, err := finished(ctx, err); done || !again {
			return err
		}
	}
}

func (c Config) profile() string {
	if c.Profile == "" {
		return config.DefaultProfile
	}
	return c.Profile
}

// finished reports whether the replay loop should stop, and with which error.
// Closed input and interruption end the loop cleanly.
func finished(ctx context.Context, err error) (bool, error) {
	switch {
	case err == nil:
		return false, nil
	case errors.Is(err, io.EOF):
		return true, nil
	case ctx.Err() != nil && errors.Is(err, ctx.Err()):
		log.Printf("interrupted")
		return true, nil
	}
	return true, err
}

func playOne(ctx context.Context, game config.GameConfig, n uint64, profile string,
	renderer *console.Renderer, input *console.Input, live *console.Live, observers []engine.Observer) error {
	tracer := telemetry.NewTraceObserver(ctx, nil, profile)

	opts := []engine.Option{
		engine.WithMode(game.Mode),
		engine.WithObserver(renderer),
		engine.WithObserver(tracer),
	}
	for _, o := range observers {
		opts = append(opts, engine.WithObserver(o))
	}
	if game.Seed != 0 {
		opts = append(opts, engine.WithGenerator(engine.NewGenerator(engine.NewSeededRNG(game.Seed+n))))
	}
	if live != nil {
		opts = append(opts, engine.WithCounterOptions(counter.WithObserver(live.Observe)))
	}

	s, err := engine.NewSession(game.Parties(), game.Objectives, opts...)
	if err != nil {
		return err
	}
	defer s.Close()

	if _, err := console.Play(ctx, s, input, live); err != nil {
		tracer.Abort(err)
		return err
	}
	return nil
}

func simulate(ctx context.Context, cfg Config, game config.GameConfig, stdout io.Writer) error {
	start := time.Now()
	rep, err := sim.Run(ctx, sim.Params{
		Game:   game,
		Jitter: cfg.Jitter,
		Trials: cfg.Simulate,
		Seed:   game.Seed,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "games: %d (undecided %d) in %s\n", rep.Trials, rep.Undecided, time.Since(start).Round(time.Millisecond))
	for i, name := range game.Names {
		j := 0.0
		if i < len(cfg.Jitter) {
			j = cfg.Jitter[i]
		}
		fmt.Fprintf(stdout, "%-16s jitter=%-5.1f wins=%-6d rate=%s\n", name, j, rep.Wins[name], rep.WinRate(name).StringFixed(4))
	}
	r := rep.Rounds
	fmt.Fprintf(stdout, "rounds: mean=%.2f sd=%.2f min=%d p50=%.1f p90=%.1f p99=%.1f max=%d\n",
		r.Mean, r.StdDev, r.Min, r.P50, r.P90, r.P99, r.Max)
	return nil
}

func openLog(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stderr, func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
