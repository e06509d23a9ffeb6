package physics

import (
	"math"

	"github.com/LawyerK/3D-Demo/internal/controls"
	"github.com/LawyerK/3D-Demo/internal/event"
	"github.com/LawyerK/3D-Demo/internal/vecmath"
	"github.com/go-gl/mathgl/mgl64"
)

// moveAngles maps the held direction keys to a rotation of the camera's
// horizontal forward vector, indexed by
// (back-forward+1) + 3*(right-left+1). Index 4 means no movement.
var moveAngles = [9]float64{
	math.Pi / 4, math.Pi / 2, 3 * math.Pi / 4,
	0, 0, math.Pi,
	-math.Pi / 4, -math.Pi / 2, -3 * math.Pi / 4,
}

const idleMoveIndex = 4

// Update advances the actor by dt seconds. Non-positive or non-finite steps
// are ignored.
func (a *Actor) Update(dt float64) {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return
	}
	wasOnGround := a.onGround

	a.toggleFly()
	a.updateCrouch(dt)
	a.tryJump()
	a.stepMove = a.moveForce()

	a.position = a.position.
		Add(a.velocity.Mul(dt)).
		Add(a.lastAcceleration.Mul(0.5 * dt * dt))
	a.clampToWorld()

	a.handleCollisions(dt)

	acceleration := a.netForce(a.moveForce(), true).Mul(1 / a.cfg.Mass)
	a.velocity = a.velocity.Add(a.lastAcceleration.Add(acceleration).Mul(0.5 * dt))
	a.lastAcceleration = acceleration

	a.clampToWorld()
	a.collider.Center = a.position

	if a.onGround != wasOnGround {
		a.publishGround()
	}
}

func (a *Actor) toggleFly() {
	held := a.input.Held(controls.ToggleFly)
	if held && !a.flyHeld {
		a.flying = !a.flying
		a.publishFly()
	}
	a.flyHeld = held
}

func (a *Actor) tryJump() {
	if a.flying || !a.canJump || !a.input.Held(controls.Jump) {
		return
	}
	impulse := a.cfg.JumpImpulse
	if a.crouching {
		impulse *= a.cfg.CrouchJumpMult
	}
	a.velocity[1] = impulse

	a.log.Debug("actor jumped", "impulse", impulse, "crouching", a.crouching)
	a.publish(event.EventJumped, event.JumpEvent{
		Position:  a.position,
		Impulse:   impulse,
		Crouching: a.crouching,
	})
}

// netForce sums contactForces, move, weight and optionally drag.
func (a *Actor) netForce(move mgl64.Vec3, withDrag bool) mgl64.Vec3 {
	force := a.contactForces.Add(move)
	if withDrag {
		force = force.Add(a.dragForce())
	}
	if !a.flying {
		force = force.Add(mgl64.Vec3{0, -a.cfg.Mass * a.cfg.Gravity, 0})
	}
	return force
}

func (a *Actor) moveForce() mgl64.Vec3 {
	var (
		forward = boolToInt(a.input.Held(controls.MoveForward))
		back    = boolToInt(a.input.Held(controls.MoveBackward))
		left    = boolToInt(a.input.Held(controls.MoveLeft))
		right   = boolToInt(a.input.Held(controls.MoveRight))
	)
	magnitude := a.cfg.Mass * a.moveAcceleration()

	var force mgl64.Vec3
	if idx := (back - forward + 1) + 3*(right-left+1); idx != idleMoveIndex {
		dir := a.view.Direction()
		dir[1] = 0
		if flat, ok := vecmath.Normalize(dir); ok {
			force = vecmath.RotateY(flat, moveAngles[idx]).Mul(magnitude)
		}
	}

	if a.flying {
		up := boolToInt(a.input.Held(controls.Jump)) - boolToInt(a.input.Held(controls.Crouch))
		force[1] = float64(up) * magnitude
	}
	return force
}

func (a *Actor) moveAcceleration() float64 {
	if a.flying {
		return a.cfg.FlyAccel
	}
	accel := a.cfg.AirAccel
	if a.onGround {
		accel = a.cfg.GroundAccel
	}
	if a.crouching {
		accel *= a.cfg.CrouchAccelMult
	}
	return accel
}

func (a *Actor) dragForce() mgl64.Vec3 {
	drag := a.velocity.Mul(-a.cfg.Mass * a.cfg.AirDrag)
	if !a.flying {
		drag[1] = 0
	}
	return drag
}

func (a *Actor) publishGround() {
	name := event.EventLeftGround
	if a.onGround {
		name = event.EventLanded
		a.log.Debug("actor landed", "obstacle", a.groundID, "position", a.position, "can_jump", a.canJump)
	}
	a.publish(name, event.GroundEvent{
		Position:   a.position,
		Velocity:   a.velocity,
		ObstacleID: a.groundID,
		CanJump:    a.canJump,
	})
}

func (a *Actor) publishFly() {
	a.log.Debug("fly toggled", "flying", a.flying)
	a.publish(event.EventFlyToggled, event.FlyEvent{
		Position: a.position,
		Flying:   a.flying,
	})
}

func (a *Actor) publish(name string, evt any) {
	if a.publisher == nil {
		return
	}
	a.publisher.Publish(name, evt)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
