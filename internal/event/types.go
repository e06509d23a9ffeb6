package event

import "github.com/go-gl/mathgl/mgl64"

const (
	EventLanded      = "actor.landed"
	EventLeftGround  = "actor.left_ground"
	EventJumped      = "actor.jumped"
	EventFlyToggled  = "actor.fly_toggled"
	EventCrouchStart = "actor.crouch.start"
	EventCrouchEnd   = "actor.crouch.end"
)

type GroundEvent struct {
	Position   mgl64.Vec3
	Velocity   mgl64.Vec3
	ObstacleID string
	// CanJump is false when the ground is steeper than the configured slope.
	CanJump bool
}

type JumpEvent struct {
	Position  mgl64.Vec3
	Impulse   float64
	Crouching bool
}

type FlyEvent struct {
	Position mgl64.Vec3
	Flying   bool
}

type CrouchEvent struct {
	Amount    float64
	Crouching bool
}
