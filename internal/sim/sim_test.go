package sim

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/LawyerK/3D-Demo/internal/camera"
	"github.com/LawyerK/3D-Demo/internal/physics"
	"github.com/LawyerK/3D-Demo/internal/scene"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTime struct {
	t time.Time
}

func (f *fakeTime) now() time.Time { return f.t }

func (f *fakeTime) advance(d time.Duration) { f.t = f.t.Add(d) }

func TestClockTick(t *testing.T) {
	ft := &fakeTime{t: time.Unix(1000, 0)}
	c := NewClock(5, ft.now)

	assert.Equal(t, 0.0, c.Tick(), "first tick has nothing to measure")

	ft.advance(16 * time.Millisecond)
	assert.InDelta(t, 0.016, c.Tick(), 1e-12)

	ft.advance(3 * time.Second)
	assert.InDelta(t, 0.2, c.Tick(), 1e-12, "stalls are clamped to 1/minFPS")

	assert.Equal(t, 0.0, c.Tick(), "a clock that did not move yields no step")

	ft.advance(-time.Second)
	assert.Equal(t, 0.0, c.Tick(), "a clock that went backwards yields no step")

	ft.advance(10 * time.Millisecond)
	assert.InDelta(t, 0.01, c.Tick(), 1e-12)

	c.Reset()
	ft.advance(time.Second)
	assert.Equal(t, 0.0, c.Tick())
}

type frameRecorder struct {
	mu     sync.Mutex
	frames []Frame
}

func (r *frameRecorder) Emit(f Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, f)
}

func (r *frameRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}

func newTestRunner(t *testing.T, sinks ...Sink) *Runner {
	t.Helper()
	obstacles, err := scene.Build(scene.Default(50))
	require.NoError(t, err)
	cfg := physics.DefaultConfig()
	view := camera.NewView(cfg.ThirdPersonDepth)
	actor := physics.NewActor(cfg, view, nil, obstacles, physics.WithPosition(mgl64.Vec3{0, 1, 0}))
	return NewRunner(actor, view, sinks...)
}

func TestRunnerStep(t *testing.T) {
	rec := &frameRecorder{}
	r := newTestRunner(t, rec)

	var fromFunc []uint64
	r.AddSink(SinkFunc(func(f Frame) { fromFunc = append(fromFunc, f.Seq) }))

	for i := 0; i < 3; i++ {
		r.Step(1.0 / 60)
	}

	require.Equal(t, 3, rec.count())
	last := rec.frames[2]
	assert.Equal(t, uint64(3), last.Seq)
	assert.InDelta(t, 0.05, last.Elapsed, 1e-12)
	assert.Equal(t, last.Transform.Eye, last.Camera, "first person camera sits at the eye")
	assert.Equal(t, []uint64{1, 2, 3}, fromFunc)
	assert.Equal(t, uint64(3), r.Frames())
}

func TestRunnerThirdPersonCamera(t *testing.T) {
	r := newTestRunner(t)
	r.View().TogglePerspective()

	f := r.Step(1.0 / 60)
	assert.Equal(t, camera.ThirdPerson, f.Perspective)
	assert.InDelta(t, 5, f.Camera.Sub(f.Transform.Eye).Len(), 1e-9)
}

func TestRunnerTeleportAndFly(t *testing.T) {
	r := newTestRunner(t)
	r.Teleport(mgl64.Vec3{3, 10, 3})
	r.SetFlying(true)

	r.Step(1.0 / 60)
	s := r.Snapshot()
	assert.True(t, s.Flying)
	assert.InDelta(t, 10, s.Position.Y(), 1e-9)
}

func TestRunnerRunStopsOnCancel(t *testing.T) {
	rec := &frameRecorder{}
	r := newTestRunner(t, rec)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- r.Run(ctx, NewClock(5, nil), time.Millisecond)
	}()

	require.Eventually(t, func() bool { return rec.count() >= 3 }, 2*time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestReplayIsDeterministic(t *testing.T) {
	cfg := physics.DefaultConfig()
	defs := scene.Default(cfg.WorldSize)
	script := DefaultScript()

	a, err := Replay(context.Background(), cfg, defs, script, 60)
	require.NoError(t, err)
	b, err := Replay(context.Background(), cfg, defs, script, 60)
	require.NoError(t, err)

	assert.Equal(t, a.Fingerprint, b.Fingerprint)
	assert.Equal(t, a.State, b.State)
	assert.Equal(t, 300, a.Steps)

	c, err := Replay(context.Background(), cfg, defs, script, 30)
	require.NoError(t, err)
	assert.NotEqual(t, a.Fingerprint, c.Fingerprint)
}

func TestReplayErrors(t *testing.T) {
	cfg := physics.DefaultConfig()
	defs := scene.Default(cfg.WorldSize)

	_, err := Replay(context.Background(), cfg, defs, DefaultScript(), 0)
	assert.Error(t, err)

	_, err = Replay(context.Background(), cfg, defs, Script{Name: "empty"}, 60)
	assert.ErrorIs(t, err, ErrInvalidScript)

	bad := cfg
	bad.Mass = 0
	_, err = Replay(context.Background(), bad, defs, DefaultScript(), 60)
	assert.ErrorIs(t, err, physics.ErrInvalidConfig)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Replay(ctx, cfg, defs, DefaultScript(), 60)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSweep(t *testing.T) {
	cfg := physics.DefaultConfig()
	defs := scene.Default(cfg.WorldSize)

	results, err := Sweep(context.Background(), cfg, defs, DefaultScript(), []float64{240, 30, 120, 60})
	require.NoError(t, err)
	require.Len(t, results, 4)

	fps := make([]float64, len(results))
	for i, r := range results {
		fps[i] = r.FPS
	}
	assert.Equal(t, []float64{30, 60, 120, 240}, fps)

	ref := results[3]
	assert.True(t, ref.Reference)
	assert.Equal(t, 0.0, ref.Deviation)
	assert.Less(t, ref.State.Position.Z(), -5.0, "the script walks forward")
	for _, r := range results[:3] {
		assert.False(t, r.Reference)
		assert.Less(t, r.Deviation, 1.0, "fps %v", r.FPS)
	}
}

func TestFingerprint(t *testing.T) {
	s := physics.State{
		Position: mgl64.Vec3{1, 2, 3},
		Velocity: mgl64.Vec3{0.5, 0, -0.5},
		OnGround: true,
	}
	same := s
	same.Position[0] += 1e-9

	assert.Equal(t, Fingerprint(s), Fingerprint(same), "differences below a micro-unit are ignored")

	moved := s
	moved.Position[0] += 1e-3
	assert.NotEqual(t, Fingerprint(s), Fingerprint(moved))

	flying := s
	flying.Flying = true
	assert.NotEqual(t, Fingerprint(s), Fingerprint(flying))
}

func TestLoadScript(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
		check   func(t *testing.T, s Script)
	}{
		{
			name: "valid",
			content: `
name: strafe
start: [1, 1, 1]
yaw: 90
segments:
  - duration: 1.5s
    held: [move_left, jump]
  - duration: 250ms
`,
			check: func(t *testing.T, s Script) {
				assert.Equal(t, "strafe", s.Name)
				assert.Equal(t, mgl64.Vec3{1, 1, 1}, s.Start)
				assert.Equal(t, 1750*time.Millisecond, s.Duration())
				assert.Equal(t, []string{"move_left", "jump"}, s.Segments[0].Held)
			},
		},
		{
			name: "unknown action",
			content: `
segments:
  - duration: 1s
    held: [sprint]
`,
			wantErr: ErrInvalidScript,
		},
		{
			name: "zero duration",
			content: `
segments:
  - held: [jump]
`,
			wantErr: ErrInvalidScript,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "script.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			s, err := LoadScript(path)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, s)
		})
	}
}
