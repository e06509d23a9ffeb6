package physics

import (
	"github.com/LawyerK/3D-Demo/internal/controls"
	"github.com/LawyerK/3D-Demo/internal/event"
	"github.com/go-gl/mathgl/mgl64"
)

// updateCrouch eases crouchAmount toward its target and resizes the
// collider around its center.
func (a *Actor) updateCrouch(dt float64) {
	wasCrouching := a.crouching
	a.crouching = !a.flying && a.input.Held(controls.Crouch)

	step := a.cfg.CrouchSpeed * dt
	if a.crouching {
		a.crouchAmount += step
	} else {
		a.crouchAmount -= step
	}
	a.crouchAmount = mgl64.Clamp(a.crouchAmount, 0, a.cfg.CrouchMag)
	a.collider.HalfExtents[1] = a.halfHeight()

	if a.crouching != wasCrouching {
		name := event.EventCrouchEnd
		if a.crouching {
			name = event.EventCrouchStart
		}
		a.publish(name, event.CrouchEvent{
			Amount:    a.crouchAmount,
			Crouching: a.crouching,
		})
	}
}

func (a *Actor) halfHeight() float64 {
	return a.cfg.PlayerHeight/2 - a.crouchAmount/2
}

// eyeOffset is the eye height above the collider center.
func (a *Actor) eyeOffset() float64 {
	return a.cfg.EyeHeight - a.cfg.PlayerHeight/2 - a.crouchAmount/2
}
