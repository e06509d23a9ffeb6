package physics

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidConfig = errors.New("invalid physics config")

// Config enumerates every tunable of the movement model. Accelerations are
// in units per second squared, speeds in units per second.
type Config struct {
	Mass        float64 `yaml:"mass"`
	GroundAccel float64 `yaml:"ground_accel"`
	AirAccel    float64 `yaml:"air_accel"`
	FlyAccel    float64 `yaml:"fly_accel"`
	Gravity     float64 `yaml:"gravity"`
	AirDrag     float64 `yaml:"air_drag"`
	JumpImpulse float64 `yaml:"jump_impulse"`

	CrouchMag       float64 `yaml:"crouch_mag"`
	CrouchSpeed     float64 `yaml:"crouch_speed"`
	CrouchAccelMult float64 `yaml:"crouch_accel_mult"`
	CrouchJumpMult  float64 `yaml:"crouch_jump_mult"`

	// MaxSlope is compared against 1 - normal.y of a contact.
	MaxSlope       float64 `yaml:"max_slope"`
	SlideThreshold float64 `yaml:"slide_threshold"`
	// ContactSkin is how far below the actor a surface still counts as
	// touching, so a body at rest keeps its support between steps.
	ContactSkin    float64 `yaml:"contact_skin"`

	PlayerHalfWidth float64 `yaml:"player_half_width"`
	PlayerHeight    float64 `yaml:"player_height"`
	EyeHeight       float64 `yaml:"eye_height"`

	WorldSize   float64 `yaml:"world_size"`
	WorldHeight float64 `yaml:"world_height"`
	FloorY      float64 `yaml:"floor_y"`

	MinFPS           float64 `yaml:"min_fps"`
	ThirdPersonDepth float64 `yaml:"third_person_depth"`
}

func DefaultConfig() Config {
	return Config{
		Mass:        1,
		GroundAccel: 30,
		AirAccel:    10,
		FlyAccel:    50,
		Gravity:     15,
		AirDrag:     4,
		JumpImpulse: 5,

		CrouchMag:       0.5,
		CrouchSpeed:     2.5,
		CrouchAccelMult: 0.5,
		CrouchJumpMult:  0.9,

		MaxSlope:       1 - math.Cos(math.Pi/4),
		SlideThreshold: 1e-4,
		ContactSkin:    0.01,

		PlayerHalfWidth: 0.3,
		PlayerHeight:    2,
		EyeHeight:       1.75,

		WorldSize:   50,
		WorldHeight: 50,
		FloorY:      -1,

		MinFPS:           5,
		ThirdPersonDepth: 5,
	}
}

// MaxStep is the longest step a driver should hand to Actor.Update.
func (c Config) MaxStep() float64 {
	return 1 / c.MinFPS
}

func (c Config) Validate() error {
	positive := []struct {
		name  string
		value float64
	}{
		{"mass", c.Mass},
		{"player_half_width", c.PlayerHalfWidth},
		{"player_height", c.PlayerHeight},
		{"eye_height", c.EyeHeight},
		{"world_size", c.WorldSize},
		{"world_height", c.WorldHeight},
		{"min_fps", c.MinFPS},
	}
	for _, p := range positive {
		if !(p.value > 0) || math.IsInf(p.value, 0) {
			return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalidConfig, p.name, p.value)
		}
	}

	nonNegative := []struct {
		name  string
		value float64
	}{
		{"ground_accel", c.GroundAccel},
		{"air_accel", c.AirAccel},
		{"fly_accel", c.FlyAccel},
		{"gravity", c.Gravity},
		{"air_drag", c.AirDrag},
		{"jump_impulse", c.JumpImpulse},
		{"crouch_mag", c.CrouchMag},
		{"crouch_speed", c.CrouchSpeed},
		{"crouch_accel_mult", c.CrouchAccelMult},
		{"crouch_jump_mult", c.CrouchJumpMult},
		{"max_slope", c.MaxSlope},
		{"slide_threshold", c.SlideThreshold},
		{"contact_skin", c.ContactSkin},
		{"third_person_depth", c.ThirdPersonDepth},
	}
	for _, p := range nonNegative {
		if !(p.value >= 0) || math.IsInf(p.value, 0) {
			return fmt.Errorf("%w: %s must not be negative, got %v", ErrInvalidConfig, p.name, p.value)
		}
	}

	if c.CrouchMag >= c.PlayerHeight {
		return fmt.Errorf("%w: crouch_mag %v must be below player_height %v", ErrInvalidConfig, c.CrouchMag, c.PlayerHeight)
	}
	if c.EyeHeight > c.PlayerHeight {
		return fmt.Errorf("%w: eye_height %v exceeds player_height %v", ErrInvalidConfig, c.EyeHeight, c.PlayerHeight)
	}
	if 2*c.PlayerHalfWidth >= c.WorldSize {
		return fmt.Errorf("%w: player does not fit in world_size %v", ErrInvalidConfig, c.WorldSize)
	}
	if c.PlayerHeight >= c.WorldHeight {
		return fmt.Errorf("%w: player does not fit in world_height %v", ErrInvalidConfig, c.WorldHeight)
	}
	if math.IsNaN(c.FloorY) || math.IsInf(c.FloorY, 0) {
		return fmt.Errorf("%w: floor_y must be finite", ErrInvalidConfig)
	}
	return nil
}
