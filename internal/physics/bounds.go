package physics

import "github.com/go-gl/mathgl/mgl64"

// Bounds returns the range the actor's center may occupy with the given
// vertical half-extent.
func (c Config) Bounds(halfY float64) (lo, hi mgl64.Vec3) {
	h := c.WorldSize/2 - c.PlayerHalfWidth
	lo = mgl64.Vec3{-h, c.FloorY + halfY, -h}
	hi = mgl64.Vec3{h, c.FloorY + c.WorldHeight - halfY, h}
	return lo, hi
}

// clampToWorld keeps the actor inside the world volume and drops any
// velocity still pushing it through a wall it was clamped against.
func (a *Actor) clampToWorld() {
	lo, hi := a.cfg.Bounds(a.halfHeight())
	for i := range a.position {
		switch {
		case a.position[i] <= lo[i]:
			a.position[i] = lo[i]
			if a.velocity[i] < 0 {
				a.velocity[i] = 0
			}
		case a.position[i] >= hi[i]:
			a.position[i] = hi[i]
			if a.velocity[i] > 0 {
				a.velocity[i] = 0
			}
		}
	}
}
