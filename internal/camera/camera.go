// Package camera holds the viewer's orientation. It hands the physics core
// a forward ray and places the render camera in first or third person.
package camera

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// maxPitch keeps the view just short of straight up or down so the
// horizontal heading never collapses.
const maxPitch = math.Pi/2 - 1e-3

type Perspective int

const (
	FirstPerson Perspective = iota
	ThirdPerson
)

func (p Perspective) String() string {
	if p == ThirdPerson {
		return "third-person"
	}
	return "first-person"
}

// View is safe for concurrent use: input goroutines rotate it while the
// simulation reads Direction.
type View struct {
	mu          sync.RWMutex
	yaw         float64
	pitch       float64
	perspective Perspective
	depth       float64
}

// NewView returns a first-person view looking down -Z. depth is how far the
// third-person camera sits behind the eye.
func NewView(depth float64) *View {
	return &View{depth: depth}
}

// Rotate turns the view by a pointer delta scaled by sensitivity.
// Positive dx turns right, positive dy looks down.
func (v *View) Rotate(dx, dy, sensitivity float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.yaw = normalizeAngle(v.yaw - dx*sensitivity)
	v.pitch = clampPitch(v.pitch - dy*sensitivity)
}

func (v *View) SetAngles(yaw, pitch float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.yaw = normalizeAngle(yaw)
	v.pitch = clampPitch(pitch)
}

func (v *View) Angles() (yaw, pitch float64) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.yaw, v.pitch
}

// Direction is the unit forward ray. Yaw turns counter-clockwise seen from
// above, so yaw 0 faces -Z and yaw pi/2 faces -X.
func (v *View) Direction() mgl64.Vec3 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return direction(v.yaw, v.pitch)
}

func (v *View) TogglePerspective() Perspective {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.perspective == FirstPerson {
		v.perspective = ThirdPerson
	} else {
		v.perspective = FirstPerson
	}
	return v.perspective
}

func (v *View) Perspective() Perspective {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.perspective
}

// EyePosition places the render camera for an actor whose eye is at eye.
func (v *View) EyePosition(eye mgl64.Vec3) mgl64.Vec3 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.perspective == FirstPerson {
		return eye
	}
	return eye.Sub(direction(v.yaw, v.pitch).Mul(v.depth))
}

func direction(yaw, pitch float64) mgl64.Vec3 {
	cp := math.Cos(pitch)
	return mgl64.Vec3{
		-math.Sin(yaw) * cp,
		math.Sin(pitch),
		-math.Cos(yaw) * cp,
	}
}

func normalizeAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}

func clampPitch(p float64) float64 {
	return mgl64.Clamp(p, -maxPitch, maxPitch)
}
