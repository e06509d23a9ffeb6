// Package vecmath holds the small vector helpers the physics core needs on
// top of mgl64.
package vecmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Epsilon is the per-component tolerance used by IsZero.
const Epsilon = 1e-9

var (
	Zero = mgl64.Vec3{}
	Up   = mgl64.Vec3{0, 1, 0}
)

// IsZero reports whether every component of v is within Epsilon of zero.
func IsZero(v mgl64.Vec3) bool {
	return math.Abs(v[0]) <= Epsilon &&
		math.Abs(v[1]) <= Epsilon &&
		math.Abs(v[2]) <= Epsilon
}

// SnapZero replaces components smaller than eps in magnitude with 0.
func SnapZero(v mgl64.Vec3, eps float64) mgl64.Vec3 {
	for i := range v {
		if math.Abs(v[i]) < eps {
			v[i] = 0
		}
	}
	return v
}

// Project returns the orthogonal projection of v onto axis. A zero axis
// projects everything to zero.
func Project(v, axis mgl64.Vec3) mgl64.Vec3 {
	d := axis.Dot(axis)
	if d == 0 {
		return Zero
	}
	return axis.Mul(v.Dot(axis) / d)
}

// Split decomposes v into the part along the unit vector n and the rest.
func Split(v, n mgl64.Vec3) (along, ortho mgl64.Vec3) {
	along = n.Mul(v.Dot(n))
	return along, v.Sub(along)
}

// Normalize returns v scaled to unit length. ok is false for vectors too
// short to carry a direction, in which case the zero vector is returned.
func Normalize(v mgl64.Vec3) (mgl64.Vec3, bool) {
	l := v.Len()
	if l <= Epsilon || math.IsNaN(l) || math.IsInf(l, 0) {
		return Zero, false
	}
	return v.Mul(1 / l), true
}

// SetLength rescales v to length l, keeping zero vectors at zero.
func SetLength(v mgl64.Vec3, l float64) mgl64.Vec3 {
	n, ok := Normalize(v)
	if !ok {
		return Zero
	}
	return n.Mul(l)
}

// RotateY rotates v by angle radians about the world up axis.
func RotateY(v mgl64.Vec3, angle float64) mgl64.Vec3 {
	return mgl64.QuatRotate(angle, Up).Rotate(v)
}

// MulElem multiplies a and b component-wise.
func MulElem(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

// Clamp bounds every component of v into [lo, hi].
func Clamp(v, lo, hi mgl64.Vec3) mgl64.Vec3 {
	for i := range v {
		v[i] = mgl64.Clamp(v[i], lo[i], hi[i])
	}
	return v
}

// Finite reports whether v holds no NaN or infinite component.
func Finite(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
