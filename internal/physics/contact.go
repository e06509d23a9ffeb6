package physics

import (
	"math"

	"github.com/LawyerK/3D-Demo/internal/vecmath"
	"github.com/go-gl/mathgl/mgl64"
)

// handleCollisions pushes the actor out of every obstacle it overlaps and
// rebuilds contactForces, onGround and canJump from the contacts found.
// A supporting surface within ContactSkin below the actor counts as a
// contact even when the step left the two just apart.
func (a *Actor) handleCollisions(dt float64) {
	a.contactForces = vecmath.Zero
	a.onGround = false
	a.canJump = false
	a.groundID = ""

	for _, obstacle := range a.obstacles {
		if obstacle == nil {
			continue
		}
		hit, offset, resting := a.touch(obstacle)
		if !hit {
			continue
		}

		if !resting {
			a.position = a.position.Add(offset)
		}
		surface := obstacle.Surface()
		// velocity already leaving the surface, e.g. a fresh jump, is kept
		if a.velocity.Dot(offset) < 0 {
			a.velocity = a.velocity.Sub(vecmath.Project(a.velocity, offset).Mul(surface.Restitution))
		}

		normal, ok := vecmath.Normalize(offset)
		if !ok {
			continue
		}
		a.resolveContact(surface, normal, dt)

		if normal.Y() > 0 {
			if !a.onGround {
				a.groundID = obstacle.ID
			}
			a.onGround = true
			if 1-normal.Dot(vecmath.Up) < a.cfg.MaxSlope {
				a.canJump = true
			}
		}
	}
	a.collider.Center = a.position
}

// separatingSpeed is the speed along a skin contact's normal above which
// the actor counts as leaving the surface.
const separatingSpeed = 1e-6

// touch tests the actor against one obstacle. resting reports a supporting
// contact found only within the skin, whose offset must not move the actor.
func (a *Actor) touch(obstacle *Collidable) (hit bool, offset mgl64.Vec3, resting bool) {
	a.collider.Center = a.position
	hit, offset = a.collider.SAT(obstacle)
	if hit || a.flying || a.cfg.ContactSkin <= 0 {
		return hit, offset, false
	}

	a.collider.Center = a.position.Sub(mgl64.Vec3{0, a.cfg.ContactSkin, 0})
	hit, offset = a.collider.SAT(obstacle)
	a.collider.Center = a.position
	if !hit || offset.Y() <= 0 {
		return false, vecmath.Zero, false
	}
	if normal, ok := vecmath.Normalize(offset); !ok || a.velocity.Dot(normal) > separatingSpeed {
		return false, vecmath.Zero, false
	}
	return true, offset, true
}

// resolveContact adds the reaction and friction of one contact to
// contactForces. normal must be unit length and point away from the surface.
func (a *Actor) resolveContact(surface SurfaceProperties, normal mgl64.Vec3, dt float64) {
	net := a.netForce(a.stepMove, false)
	pressing := net.Dot(normal)
	if pressing >= 0 {
		return
	}

	normalMag := -pressing
	normalForce := normal.Mul(normalMag)
	tangentForce := net.Add(normalForce)
	_, tangentVelocity := vecmath.Split(a.velocity, normal)

	friction, held := frictionForce(surface, normalMag, tangentForce, tangentVelocity, a.cfg.SlideThreshold, dt/a.cfg.Mass)
	if held {
		a.velocity = a.velocity.Sub(tangentVelocity)
	}
	a.contactForces = a.contactForces.Add(normalForce).Add(friction)
}

// frictionForce returns the force cancelling tangentForce when static
// friction holds the body, or kinetic friction against a sliding body.
//
// Static friction holds when the tangential force fits the friction cone
// and the spare grip, applied over impulseWindow (dt/mass), can stop the
// tangential velocity. held tells the caller to zero that velocity.
func frictionForce(surface SurfaceProperties, normalMag float64, tangentForce, tangentVelocity mgl64.Vec3, slideThreshold, impulseWindow float64) (friction mgl64.Vec3, held bool) {
	speedSq := tangentVelocity.Dot(tangentVelocity)
	grip := surface.StaticFriction*normalMag - tangentForce.Len()
	if grip >= 0 && (speedSq <= slideThreshold || math.Sqrt(speedSq) <= grip*impulseWindow) {
		return tangentForce.Mul(-1), true
	}

	if speedSq > slideThreshold {
		dir, ok := vecmath.Normalize(tangentVelocity)
		if !ok {
			return vecmath.Zero, false
		}
		// scaled down near rest so friction cannot reverse the motion
		flipFix := math.Sqrt(math.Min(speedSq, 1))
		return dir.Mul(-surface.KineticFriction * normalMag * flipFix), false
	}
	return vecmath.Zero, false
}
