package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/LawyerK/3D-Demo/internal/camera"
	"github.com/LawyerK/3D-Demo/internal/config"
	"github.com/LawyerK/3D-Demo/internal/controls"
	"github.com/LawyerK/3D-Demo/internal/debug"
	"github.com/LawyerK/3D-Demo/internal/event"
	"github.com/LawyerK/3D-Demo/internal/feed"
	"github.com/LawyerK/3D-Demo/internal/logger"
	"github.com/LawyerK/3D-Demo/internal/physics"
	"github.com/LawyerK/3D-Demo/internal/scene"
	"github.com/LawyerK/3D-Demo/internal/sim"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the config file")
	headless := flag.Bool("headless", false, "run without the terminal console")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if errors.Is(err, fs.ErrNotExist) {
		cfg, err = config.Default(), nil
	}
	if err != nil {
		slog.Error("Failed to load config", "path", *configPath, "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid config", "path", *configPath, "error", err)
		os.Exit(1)
	}

	var logOut io.Writer = os.Stdout
	if cfg.Logging.File != "" {
		f, err := logger.OpenFile(cfg.Logging.File)
		if err != nil {
			slog.Error("Failed to open log file", "error", err)
			os.Exit(1)
		}
		defer f.Close()
		logOut = f
	}
	logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: logOut,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *headless); err != nil {
		slog.Error("Sandbox failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, headless bool) error {
	defs := scene.Default(cfg.Physics.WorldSize)
	if cfg.Scene.File != "" {
		loaded, err := scene.Load(cfg.Scene.File)
		if err != nil {
			return err
		}
		defs = loaded
	}
	obstacles, err := scene.Build(defs)
	if err != nil {
		return err
	}

	binds, err := cfg.Binds()
	if err != nil {
		return err
	}

	bus := event.NewBus()
	defer bus.Wait()
	logEvents(bus)

	keys := controls.NewState(binds)
	view := camera.NewView(cfg.Physics.ThirdPersonDepth)
	actor := physics.NewActor(cfg.Physics, view, keys, obstacles,
		physics.WithPosition(cfg.Sim.StartPosition),
		physics.WithPublisher(bus),
	)
	runner := sim.NewRunner(actor, view)
	slog.Info("Sandbox ready", "obstacles", len(obstacles), "headless", headless)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	if cfg.Feed.Listen != "" {
		hub := feed.NewHub(cfg.Feed.Buffer)
		runner.AddSink(hub)
		g.Go(func() error {
			return feed.Serve(gctx, cfg.Feed.Listen, hub)
		})
	}

	if limit := cfg.Sim.HeadlessFrames; headless && limit > 0 {
		runner.AddSink(sim.SinkFunc(func(f sim.Frame) {
			if f.Seq >= uint64(limit) {
				cancel()
			}
		}))
	}

	g.Go(func() error {
		return runner.Run(gctx, sim.NewClock(cfg.Physics.MinFPS, nil), cfg.Sim.TickInterval)
	})

	if !headless {
		console := debug.NewConsole(runner, keys, binds, view)
		g.Go(func() error {
			defer cancel()
			return console.Start(gctx)
		})
	}

	err = g.Wait()
	s := runner.Snapshot()
	slog.Info("Sandbox stopped", "frames", runner.Frames(), "position", s.Position, "on_ground", s.OnGround)
	return err
}

func logEvents(bus *event.Bus) {
	bus.Subscribe(event.EventLanded, func(evt any) {
		if e, ok := evt.(event.GroundEvent); ok {
			slog.Debug("Landed", "obstacle", e.ObstacleID, "position", e.Position, "can_jump", e.CanJump)
		}
	})
	bus.Subscribe(event.EventLeftGround, func(evt any) {
		if e, ok := evt.(event.GroundEvent); ok {
			slog.Debug("Left ground", "position", e.Position, "velocity", e.Velocity)
		}
	})
	bus.Subscribe(event.EventJumped, func(evt any) {
		if e, ok := evt.(event.JumpEvent); ok {
			slog.Debug("Jumped", "impulse", e.Impulse, "crouching", e.Crouching)
		}
	})
	bus.Subscribe(event.EventFlyToggled, func(evt any) {
		if e, ok := evt.(event.FlyEvent); ok {
			slog.Info("Flying toggled", "flying", e.Flying, "position", e.Position)
		}
	})
	for _, name := range []string{event.EventCrouchStart, event.EventCrouchEnd} {
		bus.Subscribe(name, func(evt any) {
			if e, ok := evt.(event.CrouchEvent); ok {
				slog.Debug("Crouch", "crouching", e.Crouching, "amount", e.Amount)
			}
		})
	}
}
