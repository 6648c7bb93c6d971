package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/opd-ai/go-lander/pkg/config"
	"github.com/opd-ai/go-lander/pkg/logging"
	"github.com/opd-ai/go-lander/pkg/random"
	"github.com/opd-ai/go-lander/pkg/validation"
)

// options are the parsed command line flags. Settings indices of -1 keep
// the menu default.
type options struct {
	configPath    string
	createDefault bool

	mapName   string
	asteroids int
	gravity   int
	friction  int
	fuel      int
	thrust    int
	random    bool

	seed        uint64
	renderer    string
	audio       bool
	metricsAddr string
	logPath     string
	width       int
	height      int

	set map[string]bool
}

func parseOptions(args []string, output io.Writer) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("lander", flag.ContinueOnError)
	fs.SetOutput(output)

	fs.StringVar(&opts.configPath, "config", "", "Path to a level file; built from the settings flags when empty or missing")
	fs.BoolVar(&opts.createDefault, "default", false, "Write the level built from the settings flags to -config and exit")

	fs.StringVar(&opts.mapName, "map", "", "Built-in map: simple, cave, windy-pillars, tunnel, shifted, choice, up, huge")
	fs.IntVar(&opts.asteroids, "asteroids", -1, "Asteroid level 0-4")
	fs.IntVar(&opts.gravity, "gravity", -1, "Gravity level 0-4")
	fs.IntVar(&opts.friction, "friction", -1, "Friction level 0-4")
	fs.IntVar(&opts.fuel, "fuel", -1, "Fuel level 0-3")
	fs.IntVar(&opts.thrust, "thrust", -1, "Thrust level 0-3")
	fs.BoolVar(&opts.random, "random", false, "Pick every setting at random")

	fs.Uint64Var(&opts.seed, "seed", 0, "Seed for the random source (overrides LANDER_SEED)")
	fs.StringVar(&opts.renderer, "renderer", "", "Renderer: terminal, engo or null (overrides LANDER_RENDERER)")
	fs.BoolVar(&opts.audio, "audio", false, "Play sound effects (overrides LANDER_AUDIO)")
	fs.StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve /metrics, /health and /ready on this address (overrides LANDER_METRICS_ADDR)")
	fs.StringVar(&opts.logPath, "log", "", "Write logs to this file; terminal sessions discard logs otherwise")
	fs.IntVar(&opts.width, "width", 640, "Window width (engo only)")
	fs.IntVar(&opts.height, "height", 800, "Window height (engo only)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	opts.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })
	return opts, nil
}

// applyTo overrides environment settings with explicitly passed flags.
func (o *options) applyTo(env *config.EnvironmentConfig) error {
	if o.set["seed"] {
		env.Seed = o.seed
	}
	if o.set["renderer"] {
		env.Renderer = o.renderer
	}
	if o.set["audio"] {
		env.AudioEnabled = o.audio
	}
	if o.set["metrics-addr"] {
		env.MetricsAddr = o.metricsAddr
	}
	return config.ValidateEnvironmentConfig(env)
}

// settings builds the menu choices from the flags.
func (o *options) settings(rng *random.Random) (config.Settings, error) {
	s := config.DefaultSettings()
	if o.random {
		s = config.RandomSettings(rng)
	}

	if o.mapName != "" {
		name, err := validation.ValidateLevelName(o.mapName)
		if err != nil {
			return s, err
		}
		m, err := config.ParseMap(name)
		if err != nil {
			return s, err
		}
		s.Map = m
	}

	levels := []struct {
		name  string
		value int
		count int
		field *int
	}{
		{"asteroids", o.asteroids, config.AsteroidLevels, &s.Asteroids},
		{"gravity", o.gravity, config.GravityLevels, &s.Gravity},
		{"friction", o.friction, config.FrictionLevels, &s.Friction},
		{"fuel", o.fuel, config.FuelLevels, &s.Fuel},
		{"thrust", o.thrust, config.ThrustLevels, &s.Thrust},
	}
	var errs []error
	for _, l := range levels {
		if l.value < 0 {
			continue
		}
		if l.value >= l.count {
			errs = append(errs, fmt.Errorf("-%s must be between 0 and %d, got %d", l.name, l.count-1, l.value))
			continue
		}
		*l.field = l.value
	}
	return s, errors.Join(errs...)
}

// gameConfig resolves the level for this run: a level file when one
// exists at -config, otherwise the built-in map chosen by the settings.
// LANDER_* overrides are applied and the result validated.
func (o *options) gameConfig(rng *random.Random) (*config.GameConfig, error) {
	var cfg *config.GameConfig

	if o.configPath != "" && !o.createDefault {
		if _, err := os.Stat(o.configPath); err == nil {
			cfg, err = config.LoadConfig(o.configPath)
			if err != nil {
				return nil, logging.WrapError(err, "failed to load level %s", o.configPath)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, logging.WrapError(err, "failed to stat level %s", o.configPath)
		}
	}

	if cfg == nil {
		s, err := o.settings(rng)
		if err != nil {
			return nil, logging.WrapError(err, "invalid settings")
		}
		cfg = s.Build()
	}

	if err := config.ApplyEnvironmentOverrides(cfg); err != nil {
		return nil, logging.WrapError(err, "failed to apply environment overrides")
	}
	if err := validation.ValidateGameConfig(cfg); err != nil {
		return nil, logging.WrapError(err, "invalid level")
	}
	return cfg, nil
}

// newRandom seeds the random source, drawing from the platform when seed
// is zero.
func newRandom(seed uint64) *random.Random {
	if seed != 0 {
		return random.NewSeeded(seed)
	}
	return random.New()
}
