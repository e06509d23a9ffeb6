package sim

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"runtime"
	"sort"

	"github.com/LawyerK/3D-Demo/internal/camera"
	"github.com/LawyerK/3D-Demo/internal/physics"
	"github.com/LawyerK/3D-Demo/internal/scene"
	"github.com/cespare/xxhash/v2"
	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/sync/errgroup"
)

// fingerprintScale quantizes positions and velocities to micro-units.
const fingerprintScale = 1e6

type Result struct {
	FPS         float64
	Steps       int
	State       physics.State
	Fingerprint uint64
}

// Replay runs script at a fixed frame rate and reports the final state.
// Steps longer than the configured maximum are clamped exactly like Clock
// does for live runs.
func Replay(ctx context.Context, cfg physics.Config, defs []scene.ObstacleDef, script Script, fps float64) (Result, error) {
	if !(fps > 0) || math.IsInf(fps, 0) {
		return Result{}, fmt.Errorf("replay: fps must be positive, got %v", fps)
	}
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	if err := script.Validate(); err != nil {
		return Result{}, err
	}
	obstacles, err := scene.Build(defs)
	if err != nil {
		return Result{}, err
	}

	view := camera.NewView(cfg.ThirdPersonDepth)
	view.SetAngles(mgl64.DegToRad(script.Yaw), 0)
	input := &scriptInput{}
	actor := physics.NewActor(cfg, view, input, obstacles, physics.WithPosition(script.Start))
	actor.SetFlying(script.Flying)

	dt := math.Min(1/fps, cfg.MaxStep())
	steps := 0
	for i, seg := range script.Segments {
		held, err := seg.actions()
		if err != nil {
			return Result{}, fmt.Errorf("segment %d: %w", i, err)
		}
		input.held = held

		n := int(math.Round(seg.Duration.Seconds() * fps))
		for j := 0; j < n; j++ {
			if steps%1024 == 0 {
				if err := ctx.Err(); err != nil {
					return Result{}, err
				}
			}
			actor.Update(dt)
			steps++
		}
	}

	state := actor.State()
	return Result{
		FPS:         fps,
		Steps:       steps,
		State:       state,
		Fingerprint: Fingerprint(state),
	}, nil
}

// Fingerprint hashes the quantized kinematic state. Two runs that agree to
// a micro-unit produce the same value.
func Fingerprint(s physics.State) uint64 {
	h := xxhash.New()
	var buf [8]byte
	write := func(v mgl64.Vec3) {
		for _, c := range v {
			binary.LittleEndian.PutUint64(buf[:], uint64(int64(math.Round(c*fingerprintScale))))
			_, _ = h.Write(buf[:])
		}
	}
	write(s.Position)
	write(s.Velocity)

	flags := byte(0)
	for i, f := range []bool{s.OnGround, s.CanJump, s.Flying} {
		if f {
			flags |= 1 << i
		}
	}
	_, _ = h.Write([]byte{flags})
	return h.Sum64()
}

type SweepResult struct {
	Result
	// Deviation is the distance between this run's final position and the
	// run at the highest frame rate.
	Deviation float64
	Reference bool
}

// Sweep replays script at every rate in fpsList concurrently and compares
// each outcome with the highest-rate run. Results are ordered by frame rate.
func Sweep(ctx context.Context, cfg physics.Config, defs []scene.ObstacleDef, script Script, fpsList []float64) ([]SweepResult, error) {
	if len(fpsList) == 0 {
		return nil, fmt.Errorf("sweep: no frame rates given")
	}

	results := make([]SweepResult, len(fpsList))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, fps := range fpsList {
		i, fps := i, fps
		g.Go(func() error {
			res, err := Replay(gctx, cfg, defs, script, fps)
			if err != nil {
				return fmt.Errorf("replay at %v fps: %w", fps, err)
			}
			results[i] = SweepResult{Result: res}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].FPS < results[j].FPS })
	ref := results[len(results)-1]
	for i := range results {
		results[i].Deviation = results[i].State.Position.Sub(ref.State.Position).Len()
	}
	results[len(results)-1].Reference = true
	return results, nil
}
