// Command fpsweep replays an input script at several frame rates and
// reports how far each run ends from the highest-rate one.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/LawyerK/3D-Demo/internal/config"
	"github.com/LawyerK/3D-Demo/internal/logger"
	"github.com/LawyerK/3D-Demo/internal/scene"
	"github.com/LawyerK/3D-Demo/internal/sim"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the config file")
	scriptPath := flag.String("script", "", "input script; empty uses the built-in walk")
	fpsFlag := flag.String("fps", "5,30,60,120,240", "comma separated frame rates")
	tolerance := flag.Float64("tolerance", 0, "fail when any run deviates by more than this; 0 disables")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if errors.Is(err, fs.ErrNotExist) {
		cfg, err = config.Default(), nil
	}
	if err != nil {
		slog.Error("Failed to load config", "path", *configPath, "error", err)
		os.Exit(1)
	}
	logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: "console",
		Output: os.Stderr,
	})

	fpsList, err := parseFPS(*fpsFlag)
	if err != nil {
		slog.Error("Invalid -fps", "error", err)
		os.Exit(1)
	}

	script := sim.DefaultScript()
	if *scriptPath != "" {
		script, err = sim.LoadScript(*scriptPath)
		if err != nil {
			slog.Error("Failed to load script", "path", *scriptPath, "error", err)
			os.Exit(1)
		}
	}

	defs := scene.Default(cfg.Physics.WorldSize)
	if cfg.Scene.File != "" {
		defs, err = scene.Load(cfg.Scene.File)
		if err != nil {
			slog.Error("Failed to load scene", "path", cfg.Scene.File, "error", err)
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results, err := sim.Sweep(ctx, cfg.Physics, defs, script, fpsList)
	if err != nil {
		slog.Error("Sweep failed", "error", err)
		os.Exit(1)
	}

	printReport(script, results)

	if *tolerance > 0 {
		for _, r := range results {
			if r.Deviation > *tolerance {
				slog.Error("Frame rate dependence above tolerance", "fps", r.FPS, "deviation", r.Deviation, "tolerance", *tolerance)
				os.Exit(2)
			}
		}
	}
}

func parseFPS(s string) ([]float64, error) {
	var out []float64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fps, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", part, err)
		}
		if fps <= 0 {
			return nil, fmt.Errorf("frame rate must be positive, got %v", fps)
		}
		out = append(out, fps)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no frame rates given")
	}
	return out, nil
}

func printReport(script sim.Script, results []sim.SweepResult) {
	fmt.Printf("script %q, %s of input\n", script.Name, script.Duration())
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FPS\tSTEPS\tX\tY\tZ\tGROUND\tDEVIATION\tFINGERPRINT")
	for _, r := range results {
		dev := fmt.Sprintf("%.4f", r.Deviation)
		if r.Reference {
			dev = "ref"
		}
		p := r.State.Position
		fmt.Fprintf(w, "%g\t%d\t%.3f\t%.3f\t%.3f\t%t\t%s\t%016x\n",
			r.FPS, r.Steps, p.X(), p.Y(), p.Z(), r.State.OnGround, dev, r.Fingerprint)
	}
	w.Flush()
}
