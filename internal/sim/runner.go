package sim

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/LawyerK/3D-Demo/internal/camera"
	"github.com/LawyerK/3D-Demo/internal/physics"
	"github.com/go-gl/mathgl/mgl64"
)

// Frame is everything a consumer sees after one step.
type Frame struct {
	Seq         uint64
	Elapsed     float64
	DT          float64
	Transform   physics.Transform
	Camera      mgl64.Vec3
	Perspective camera.Perspective
}

// Sink receives frames on the stepping goroutine. Emit must not block.
type Sink interface {
	Emit(frame Frame)
}

type SinkFunc func(frame Frame)

func (f SinkFunc) Emit(frame Frame) { f(frame) }

// Runner owns an actor and serializes every access to it, so drivers on
// other goroutines can teleport or inspect it between steps.
type Runner struct {
	mu      sync.Mutex
	actor   *physics.Actor
	view    *camera.View
	sinks   []Sink
	seq     uint64
	elapsed float64
	log     *slog.Logger
}

func NewRunner(actor *physics.Actor, view *camera.View, sinks ...Sink) *Runner {
	if view == nil {
		view = camera.NewView(actor.Config().ThirdPersonDepth)
	}
	return &Runner{
		actor: actor,
		view:  view,
		sinks: sinks,
		log:   slog.Default(),
	}
}

func (r *Runner) AddSink(s Sink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sinks = append(r.sinks, s)
}

// Step advances the actor by dt and hands the resulting frame to every sink.
func (r *Runner) Step(dt float64) Frame {
	r.mu.Lock()
	r.actor.Update(dt)
	r.seq++
	if dt > 0 {
		r.elapsed += dt
	}
	tr := r.actor.Transform()
	frame := Frame{
		Seq:         r.seq,
		Elapsed:     r.elapsed,
		DT:          dt,
		Transform:   tr,
		Camera:      r.view.EyePosition(tr.Eye),
		Perspective: r.view.Perspective(),
	}
	sinks := make([]Sink, len(r.sinks))
	copy(sinks, r.sinks)
	r.mu.Unlock()

	for _, s := range sinks {
		s.Emit(frame)
	}
	return frame
}

// Run steps the actor on every tick of interval until ctx is done, using
// clock to measure the real time between ticks.
func (r *Runner) Run(ctx context.Context, clock *Clock, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Second / 60
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	clock.Reset()
	clock.Tick()
	r.log.Info("Simulation started", "interval", interval)

	for {
		select {
		case <-ctx.Done():
			r.log.Info("Simulation stopped", "frames", r.Frames())
			return nil
		case <-ticker.C:
			if dt := clock.Tick(); dt > 0 {
				r.Step(dt)
			}
		}
	}
}

func (r *Runner) Snapshot() physics.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.actor.State()
}

func (r *Runner) Frames() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seq
}

func (r *Runner) Teleport(p mgl64.Vec3) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actor.SetPosition(p)
	r.log.Info("Actor teleported", "position", p)
}

func (r *Runner) SetFlying(flying bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actor.SetFlying(flying)
}

func (r *Runner) View() *camera.View {
	return r.view
}
