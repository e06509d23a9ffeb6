package physics

import (
	"fmt"
	"math"
)

// SurfaceProperties describe how a collidable reacts to contact.
// Restitution scales how much of the velocity into the surface is removed
// on impact; 1 stops it fully.
type SurfaceProperties struct {
	Static          bool    `yaml:"static"`
	Restitution     float64 `yaml:"restitution"`
	StaticFriction  float64 `yaml:"static_friction"`
	KineticFriction float64 `yaml:"kinetic_friction"`
}

func DefaultSurface() SurfaceProperties {
	return SurfaceProperties{
		Static:          true,
		Restitution:     1,
		StaticFriction:  0.8,
		KineticFriction: 0.4,
	}
}

func (p SurfaceProperties) Validate() error {
	for _, v := range []float64{p.Restitution, p.StaticFriction, p.KineticFriction} {
		if !(v >= 0) || math.IsInf(v, 0) {
			return fmt.Errorf("surface coefficients must be finite and non-negative: %+v", p)
		}
	}
	return nil
}
