// cmd/lander/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"

	"github.com/opd-ai/go-lander/pkg/audio"
	"github.com/opd-ai/go-lander/pkg/config"
	"github.com/opd-ai/go-lander/pkg/engine"
	"github.com/opd-ai/go-lander/pkg/event"
	"github.com/opd-ai/go-lander/pkg/health"
	"github.com/opd-ai/go-lander/pkg/logging"
	"github.com/opd-ai/go-lander/pkg/metrics"
	"github.com/opd-ai/go-lander/pkg/render"
	engorender "github.com/opd-ai/go-lander/pkg/render/engo"
	"github.com/opd-ai/go-lander/pkg/resource"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

// run plays one session and returns the process exit code
func run(ctx context.Context, args []string) int {
	opts, err := parseOptions(args, os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	env, err := config.LoadConfigFromEnv()
	if err == nil {
		err = opts.applyTo(env)
	}

	logger, closeLog, logErr := newLogger(opts.logPath, env)
	if logErr != nil {
		slog.Error("Failed to open log file", "path", opts.logPath, "error", logErr)
		return 1
	}
	defer closeLog()

	ctx = logging.WithRunID(ctx, logging.GenerateRunID())
	if err != nil {
		logger.Error(ctx, "Invalid runtime configuration", err)
		return 1
	}

	rng := newRandom(env.Seed)
	gameConfig, err := opts.gameConfig(rng)
	if err != nil {
		logger.Error(ctx, "Failed to prepare level", err, "config_path", opts.configPath)
		return 1
	}

	if opts.createDefault {
		path := opts.configPath
		if path == "" {
			path = "level.json"
		}
		if err := config.SaveConfig(gameConfig, path); err != nil {
			logger.Error(ctx, "Failed to write level file", err, "config_path", path)
			return 1
		}
		logger.Info(ctx, "Created level file", "config_path", path, "level", gameConfig.Name)
		return 0
	}

	tasks := resource.NewManager(env, logger)
	if err := tasks.Start(); err != nil {
		logger.Error(ctx, "Failed to start resource manager", err)
		return 1
	}
	defer func() {
		if err := tasks.Shutdown(context.Background()); err != nil {
			logger.Error(ctx, "Unclean shutdown", err)
		}
	}()

	bus := event.NewEventBus()
	e := engine.New(gameConfig,
		engine.WithRandom(rng),
		engine.WithEventBus(bus),
		engine.WithLogger(logger),
		engine.WithContext(ctx),
	)
	runner := engine.NewRunner(e,
		engine.WithTickInterval(env.TickInterval),
		engine.WithFadeTicks(env.FadeTicks),
		engine.WithMaxCatchUp(env.MaxCatchUp),
	)

	if env.MetricsAddr != "" {
		if err := serveMetrics(ctx, env, bus, runner, tasks, logger); err != nil {
			logger.Error(ctx, "Failed to start metrics server", err, "addr", env.MetricsAddr)
			return 1
		}
	}

	if env.AudioEnabled {
		sounds := startAudio(ctx, bus, logger)
		if sounds != nil {
			defer sounds.Cleanup()
		}
	}

	logger.Info(ctx, "Starting session",
		"level", e.Name(),
		"renderer", env.Renderer,
		"seed", env.Seed,
		"tick_interval", env.TickInterval,
	)

	switch env.Renderer {
	case config.RendererEngo:
		// engo owns the main thread until the window closes
		engorender.Run(runner, logger, "Lander: "+e.Name(), opts.width, opts.height)
	case config.RendererNull:
		nullRenderer := render.NewNullRenderer(logger)
		err = runner.Run(ctx, func() { runner.Render(nullRenderer) })
	default:
		err = runTerminal(ctx, runner, tasks, logger)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error(ctx, "Session failed", err)
		return 1
	}
	if err := tasks.Err(); err != nil {
		logger.Error(ctx, "Background task failed", err)
		return 1
	}

	logger.Info(ctx, "Session ended",
		"outcome", e.Outcome(),
		"steps", e.Steps(),
		"fuel", e.Fuel(),
	)
	return 0
}

// newLogger writes JSON logs to path, or to stderr for headless runs.
// Terminal sessions without a log file discard logs so they do not
// scribble over the screen.
func newLogger(path string, env *config.EnvironmentConfig) (*logging.Logger, func(), error) {
	level := logging.LevelFromEnv()

	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, err
		}
		return logging.NewLoggerTo(f, level), func() { f.Close() }, nil
	}

	var w io.Writer = os.Stderr
	if env != nil && env.Renderer == config.RendererTerminal {
		w = io.Discard
	}
	return logging.NewLoggerTo(w, level), func() {}, nil
}

// serveMetrics exposes metrics and health probes on a supervised task
func serveMetrics(ctx context.Context, env *config.EnvironmentConfig, bus *event.Bus, runner *engine.Runner, tasks *resource.Manager, logger *logging.Logger) error {
	collector := metrics.NewCollector(logger)
	collector.Subscribe(bus)

	checker := health.NewHealthChecker()
	checker.AddCheck(health.NewSimulationHealthCheck(func() health.Progress {
		e := runner.Engine()
		return health.Progress{Steps: e.Steps(), Paused: e.BlockAlert(), Done: runner.Done()}
	}, 10*env.TickInterval*engine.AnimationPeriod))
	checker.AddCheck(health.NewMemoryHealthCheck(env.MaxMemoryMB, tasks.MemoryUsage))
	checker.AddCheck(resource.NewHealthCheck(tasks))

	return tasks.Go(ctx, "metrics", func(ctx context.Context) error {
		defer collector.Unsubscribe()
		return collector.Serve(ctx, env.MetricsAddr, checker.Mount)
	})
}

// startAudio subscribes sound effects to the bus. A missing audio device
// is logged and the session continues silently.
func startAudio(ctx context.Context, bus *event.Bus, logger *logging.Logger) *audio.SoundManager {
	cfg, err := audio.LoadConfigFromEnv()
	if err != nil {
		logger.Warn(ctx, "Invalid audio configuration, using defaults", "error", err)
		cfg = audio.DefaultConfig()
	}

	sounds := audio.NewSoundManager(cfg, logger)
	if err := sounds.Initialize(); err != nil {
		logger.Warn(ctx, "Audio unavailable", "error", err)
		return nil
	}
	sounds.Subscribe(bus)
	return sounds
}

// runTerminal plays the session in the controlling terminal
func runTerminal(ctx context.Context, runner *engine.Runner, tasks *resource.Manager, logger *logging.Logger) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return logging.WrapError(err, "failed to create terminal screen")
	}
	if err := screen.Init(); err != nil {
		return logging.WrapError(err, "failed to initialize terminal screen")
	}
	defer screen.Fini()
	screen.HideCursor()

	return newTerminalSession(screen, runner, logger).run(ctx, tasks)
}
