package physics

import (
	"math"

	"github.com/LawyerK/3D-Demo/internal/vecmath"
	"github.com/go-gl/mathgl/mgl64"
)

const maxSATAxes = 15

// Shape is anything SAT can test: three world face normals and the corner
// vertices in world space.
type Shape interface {
	FaceNormals() [3]mgl64.Vec3
	AppendWorldVertices(dst []mgl64.Vec3) []mgl64.Vec3
}

var cornerSigns = [8]mgl64.Vec3{
	{-1, -1, -1},
	{1, -1, -1},
	{-1, 1, -1},
	{1, 1, -1},
	{-1, -1, 1},
	{1, -1, 1},
	{-1, 1, 1},
	{1, 1, 1},
}

// Collidable is an oriented box.
type Collidable struct {
	ID          string
	Center      mgl64.Vec3
	HalfExtents mgl64.Vec3

	surface     SurfaceProperties
	orientation mgl64.Quat
	normals     [3]mgl64.Vec3
}

type CollidableOption func(*Collidable)

func WithOrientation(q mgl64.Quat) CollidableOption {
	return func(c *Collidable) {
		c.orientation = q
	}
}

func WithSurface(p SurfaceProperties) CollidableOption {
	return func(c *Collidable) {
		c.surface = p
	}
}

func WithID(id string) CollidableOption {
	return func(c *Collidable) {
		c.ID = id
	}
}

func NewCollidable(center, halfExtents mgl64.Vec3, opts ...CollidableOption) *Collidable {
	c := &Collidable{
		Center:      center,
		HalfExtents: halfExtents,
		surface:     DefaultSurface(),
		orientation: mgl64.QuatIdent(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.Update(c.orientation)
	return c
}

// Update sets the orientation and recomputes the world face normals.
func (c *Collidable) Update(q mgl64.Quat) {
	if q.Len() == 0 {
		q = mgl64.QuatIdent()
	}
	q = q.Normalize()
	c.orientation = q
	c.normals = [3]mgl64.Vec3{
		q.Rotate(mgl64.Vec3{1, 0, 0}),
		q.Rotate(mgl64.Vec3{0, 1, 0}),
		q.Rotate(mgl64.Vec3{0, 0, 1}),
	}
}

func (c *Collidable) Orientation() mgl64.Quat { return c.orientation }

func (c *Collidable) Surface() SurfaceProperties { return c.surface }

func (c *Collidable) FaceNormals() [3]mgl64.Vec3 { return c.normals }

// AppendWorldVertices appends the eight corners. Half-extents are applied
// along the box's own axes, so rotated boxes keep their shape.
func (c *Collidable) AppendWorldVertices(dst []mgl64.Vec3) []mgl64.Vec3 {
	ax := c.normals[0].Mul(c.HalfExtents[0])
	ay := c.normals[1].Mul(c.HalfExtents[1])
	az := c.normals[2].Mul(c.HalfExtents[2])
	for _, s := range cornerSigns {
		v := c.Center.
			Add(ax.Mul(s[0])).
			Add(ay.Mul(s[1])).
			Add(az.Mul(s[2]))
		dst = append(dst, v)
	}
	return dst
}

// ProjectedBounds returns the extent of the box along axis, measured in
// multiples of axis.
func (c *Collidable) ProjectedBounds(axis mgl64.Vec3) (maxC, minC float64) {
	var buf [8]mgl64.Vec3
	return projectedBounds(c.AppendWorldVertices(buf[:0]), axis)
}

func (c *Collidable) SAT(other Shape) (bool, mgl64.Vec3) {
	return SAT(c, other)
}

// SAT tests self against other. On overlap the returned offset is the
// smallest translation that moves self out of other.
func SAT(self, other Shape) (bool, mgl64.Vec3) {
	var axesBuf [maxSATAxes]mgl64.Vec3
	axes := satAxes(axesBuf[:0], self.FaceNormals(), other.FaceNormals())

	var selfBuf, otherBuf [8]mgl64.Vec3
	selfVerts := self.AppendWorldVertices(selfBuf[:0])
	otherVerts := other.AppendWorldVertices(otherBuf[:0])

	least := math.Inf(1)
	var offset mgl64.Vec3
	for _, axis := range axes {
		selfMax, selfMin := projectedBounds(selfVerts, axis)
		otherMax, otherMin := projectedBounds(otherVerts, axis)

		pushBack := selfMax - otherMin
		pushForward := otherMax - selfMin
		if pushBack < 0 || pushForward < 0 {
			return false, vecmath.Zero
		}

		if pushBack < least {
			least = pushBack
			offset = axis.Mul(-pushBack)
		}
		if pushForward < least {
			least = pushForward
			offset = axis.Mul(pushForward)
		}
	}

	if least == 0 || math.IsInf(least, 1) {
		return false, vecmath.Zero
	}
	return true, offset
}

// satAxes collects self's normals followed, per normal of other, by the
// usable edge cross products. other's normal itself is only added when all
// three of its cross products are usable; otherwise it is parallel to one of
// self's normals and already covered.
func satAxes(dst []mgl64.Vec3, self, other [3]mgl64.Vec3) []mgl64.Vec3 {
	dst = append(dst, self[:]...)
	for _, on := range other {
		var crosses [3]mgl64.Vec3
		n := 0
		for i, sn := range self {
			cross := sn.Cross(on)
			if vecmath.IsZero(cross) || parallelToOtherNormal(cross, self, i) {
				continue
			}
			crosses[n] = cross
			n++
		}
		if n == len(self) {
			dst = append(dst, on)
		}
		dst = append(dst, crosses[:n]...)
	}
	return dst
}

func parallelToOtherNormal(axis mgl64.Vec3, normals [3]mgl64.Vec3, skip int) bool {
	for j, n := range normals {
		if j == skip {
			continue
		}
		if vecmath.IsZero(axis.Cross(n)) {
			return true
		}
	}
	return false
}

func projectedBounds(verts []mgl64.Vec3, axis mgl64.Vec3) (maxC, minC float64) {
	d := axis.Dot(axis)
	if d == 0 || len(verts) == 0 {
		return 0, 0
	}
	maxC, minC = math.Inf(-1), math.Inf(1)
	for _, v := range verts {
		c := v.Dot(axis) / d
		maxC = math.Max(maxC, c)
		minC = math.Min(minC, c)
	}
	return maxC, minC
}
