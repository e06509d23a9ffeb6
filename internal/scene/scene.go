// Package scene describes the static obstacles of a world and turns them
// into collidables.
package scene

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/LawyerK/3D-Demo/internal/physics"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

var ErrInvalidObstacle = errors.New("invalid obstacle")

type File struct {
	Obstacles []ObstacleDef `yaml:"obstacles"`
}

// ObstacleDef is one box. Orientation is given either as XYZ Euler angles
// in degrees or as a w,x,y,z quaternion, never both.
type ObstacleDef struct {
	ID          string                    `yaml:"id,omitempty"`
	Center      mgl64.Vec3                `yaml:"center"`
	HalfExtents mgl64.Vec3                `yaml:"half_extents"`
	Rotation    *mgl64.Vec3               `yaml:"rotation,omitempty"`
	Quaternion  *[4]float64               `yaml:"quaternion,omitempty"`
	Surface     physics.SurfaceProperties `yaml:"surface"`
}

// UnmarshalYAML starts from the default surface so a file only has to name
// the coefficients it changes.
func (d *ObstacleDef) UnmarshalYAML(value *yaml.Node) error {
	type plain ObstacleDef
	raw := plain{Surface: physics.DefaultSurface()}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*d = ObstacleDef(raw)
	return nil
}

func Load(path string) ([]ObstacleDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse scene %s: %w", path, err)
	}
	return f.Obstacles, nil
}

func Save(path string, defs []ObstacleDef) error {
	data, err := yaml.Marshal(File{Obstacles: defs})
	if err != nil {
		return fmt.Errorf("encode scene: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Build validates defs and creates one collidable per definition. Missing
// ids are filled with random UUIDs.
func Build(defs []ObstacleDef) ([]*physics.Collidable, error) {
	out := make([]*physics.Collidable, 0, len(defs))
	seen := make(map[string]bool, len(defs))

	for i, def := range defs {
		q, err := def.orientation()
		if err != nil {
			return nil, fmt.Errorf("obstacle %d: %w", i, err)
		}
		if err := def.validate(); err != nil {
			return nil, fmt.Errorf("obstacle %d: %w", i, err)
		}

		id := def.ID
		if id == "" {
			id = uuid.NewString()
		}
		if seen[id] {
			return nil, fmt.Errorf("obstacle %d: %w: duplicate id %q", i, ErrInvalidObstacle, id)
		}
		seen[id] = true

		out = append(out, physics.NewCollidable(def.Center, def.HalfExtents,
			physics.WithID(id),
			physics.WithOrientation(q),
			physics.WithSurface(def.Surface),
		))
	}
	return out, nil
}

func (d ObstacleDef) validate() error {
	for i := 0; i < 3; i++ {
		h := d.HalfExtents[i]
		if !(h > 0) || math.IsInf(h, 0) {
			return fmt.Errorf("%w: half extents must be positive, got %v", ErrInvalidObstacle, d.HalfExtents)
		}
		c := d.Center[i]
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return fmt.Errorf("%w: center must be finite, got %v", ErrInvalidObstacle, d.Center)
		}
	}
	if err := d.Surface.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidObstacle, err)
	}
	return nil
}

func (d ObstacleDef) orientation() (mgl64.Quat, error) {
	switch {
	case d.Rotation != nil && d.Quaternion != nil:
		return mgl64.Quat{}, fmt.Errorf("%w: both rotation and quaternion set", ErrInvalidObstacle)
	case d.Rotation != nil:
		r := *d.Rotation
		return mgl64.AnglesToQuat(
			mgl64.DegToRad(r[0]),
			mgl64.DegToRad(r[1]),
			mgl64.DegToRad(r[2]),
			mgl64.XYZ,
		), nil
	case d.Quaternion != nil:
		q := d.Quaternion
		quat := mgl64.Quat{W: q[0], V: mgl64.Vec3{q[1], q[2], q[3]}}
		if l := quat.Len(); !(l > 0) || math.IsInf(l, 0) {
			return mgl64.Quat{}, fmt.Errorf("%w: quaternion %v has no direction", ErrInvalidObstacle, *q)
		}
		return quat.Normalize(), nil
	default:
		return mgl64.QuatIdent(), nil
	}
}

// Default is the demo course: a floor slab spanning the world, a slippery
// metal cube, a walkable ramp, a ramp too steep to jump from and a wall.
func Default(worldSize float64) []ObstacleDef {
	metal := physics.DefaultSurface()
	metal.StaticFriction = 0.3
	metal.KineticFriction = 0.15

	rot := func(x, y, z float64) *mgl64.Vec3 {
		return &mgl64.Vec3{x, y, z}
	}

	return []ObstacleDef{
		{
			ID:          "floor",
			Center:      mgl64.Vec3{0, -0.5, 0},
			HalfExtents: mgl64.Vec3{worldSize / 2, 0.5, worldSize / 2},
			Surface:     physics.DefaultSurface(),
		},
		{
			ID:          "metal-cube",
			Center:      mgl64.Vec3{5, 1, -5},
			HalfExtents: mgl64.Vec3{1, 1, 1},
			Surface:     metal,
		},
		{
			ID:          "ramp",
			Center:      mgl64.Vec3{-8, 0, -6},
			HalfExtents: mgl64.Vec3{4, 0.25, 2},
			Rotation:    rot(0, 0, 30),
			Surface:     physics.DefaultSurface(),
		},
		{
			ID:          "steep-ramp",
			Center:      mgl64.Vec3{-8, 0, 6},
			HalfExtents: mgl64.Vec3{4, 0.25, 2},
			Rotation:    rot(0, 0, 60),
			Surface:     physics.DefaultSurface(),
		},
		{
			ID:          "wall",
			Center:      mgl64.Vec3{0, 2, -15},
			HalfExtents: mgl64.Vec3{6, 2, 0.5},
			Surface:     physics.DefaultSurface(),
		},
	}
}
