package physics

import (
	"log/slog"

	"github.com/LawyerK/3D-Demo/internal/controls"
	"github.com/LawyerK/3D-Demo/internal/vecmath"
	"github.com/go-gl/mathgl/mgl64"
)

// DirectionProvider supplies the camera's forward ray in world space.
type DirectionProvider interface {
	Direction() mgl64.Vec3
}

type InputSource interface {
	Held(action controls.Action) bool
}

// Publisher receives actor state changes. Implementations must not block.
type Publisher interface {
	Publish(eventName string, evt any)
}

type State struct {
	Position      mgl64.Vec3
	Velocity      mgl64.Vec3
	Acceleration  mgl64.Vec3
	ContactForces mgl64.Vec3
	Crouch        float64
	Flying        bool
	OnGround      bool
	CanJump       bool
}

// Transform is what a renderer needs to draw the actor and place the
// first-person camera.
type Transform struct {
	Position    mgl64.Vec3
	Eye         mgl64.Vec3
	HalfExtents mgl64.Vec3
	Velocity    mgl64.Vec3
	OnGround    bool
	Flying      bool
}

// Actor is the single dynamic body of the simulation. It is not safe for
// concurrent use; callers serialize Update with every other method.
type Actor struct {
	cfg       Config
	view      DirectionProvider
	input     InputSource
	obstacles []*Collidable
	publisher Publisher
	log       *slog.Logger

	position         mgl64.Vec3
	velocity         mgl64.Vec3
	lastAcceleration mgl64.Vec3
	// contactForces is rebuilt by every collision pass and feeds the
	// velocity update of the same step. It is kept between steps so State
	// can report it.
	contactForces mgl64.Vec3
	// stepMove is the move force chosen at the start of the step, before
	// the collision pass refreshes the ground flags.
	stepMove mgl64.Vec3

	crouchAmount float64
	crouching    bool
	flying       bool
	flyHeld      bool
	onGround     bool
	canJump      bool
	groundID     string

	collider *Collidable
}

type ActorOption func(*Actor)

func WithPosition(p mgl64.Vec3) ActorOption {
	return func(a *Actor) {
		a.position = p
	}
}

func WithPublisher(p Publisher) ActorOption {
	return func(a *Actor) {
		a.publisher = p
	}
}

func WithLogger(l *slog.Logger) ActorOption {
	return func(a *Actor) {
		if l != nil {
			a.log = l
		}
	}
}

// NewActor builds an actor standing at the origin. cfg is expected to have
// passed Validate.
func NewActor(cfg Config, view DirectionProvider, input InputSource, obstacles []*Collidable, opts ...ActorOption) *Actor {
	if view == nil {
		view = fixedDirection{0, 0, -1}
	}
	if input == nil {
		input = noInput{}
	}

	a := &Actor{
		cfg:       cfg,
		view:      view,
		input:     input,
		obstacles: obstacles,
		log:       slog.Default(),
		position:  mgl64.Vec3{0, cfg.PlayerHeight / 2, 0},
	}
	for _, opt := range opts {
		opt(a)
	}

	a.collider = NewCollidable(a.position, mgl64.Vec3{
		cfg.PlayerHalfWidth,
		a.halfHeight(),
		cfg.PlayerHalfWidth,
	}, WithID("actor"))
	return a
}

func (a *Actor) State() State {
	return State{
		Position:      a.position,
		Velocity:      a.velocity,
		Acceleration:  a.lastAcceleration,
		ContactForces: a.contactForces,
		Crouch:        a.crouchAmount,
		Flying:        a.flying,
		OnGround:      a.onGround,
		CanJump:       a.canJump,
	}
}

func (a *Actor) Transform() Transform {
	return Transform{
		Position:    a.position,
		Eye:         a.position.Add(mgl64.Vec3{0, a.eyeOffset(), 0}),
		HalfExtents: a.collider.HalfExtents,
		Velocity:    a.velocity,
		OnGround:    a.onGround,
		Flying:      a.flying,
	}
}

func (a *Actor) Config() Config {
	return a.cfg
}

// Collider exposes the actor's box. Its center is only current right after
// an Update or SetPosition.
func (a *Actor) Collider() *Collidable {
	return a.collider
}

// SetPosition teleports the actor and drops all motion.
func (a *Actor) SetPosition(p mgl64.Vec3) {
	a.position = p
	a.velocity = vecmath.Zero
	a.lastAcceleration = vecmath.Zero
	a.contactForces = vecmath.Zero
	a.clampToWorld()
	a.collider.Center = a.position
}

func (a *Actor) SetFlying(flying bool) {
	if a.flying == flying {
		return
	}
	a.flying = flying
	a.publishFly()
}

type fixedDirection mgl64.Vec3

func (d fixedDirection) Direction() mgl64.Vec3 { return mgl64.Vec3(d) }

type noInput struct{}

func (noInput) Held(controls.Action) bool { return false }
