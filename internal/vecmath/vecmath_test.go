package vecmath

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsZero(t *testing.T) {
	tests := []struct {
		name string
		v    mgl64.Vec3
		want bool
	}{
		{"zero", mgl64.Vec3{}, true},
		{"below epsilon", mgl64.Vec3{1e-12, -1e-12, 0}, true},
		{"one component", mgl64.Vec3{0, 1e-6, 0}, false},
		{"unit", mgl64.Vec3{1, 0, 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsZero(tt.v))
		})
	}
}

func TestSnapZero(t *testing.T) {
	got := SnapZero(mgl64.Vec3{1e-7, 0.5, -1e-9}, 1e-6)
	assert.Equal(t, mgl64.Vec3{0, 0.5, 0}, got)
}

func TestProject(t *testing.T) {
	got := Project(mgl64.Vec3{3, 4, 0}, mgl64.Vec3{2, 0, 0})
	assert.InDelta(t, 3.0, got.X(), 1e-12)
	assert.InDelta(t, 0.0, got.Y(), 1e-12)

	// projection onto a zero axis must not produce NaN
	got = Project(mgl64.Vec3{1, 2, 3}, mgl64.Vec3{})
	assert.Equal(t, Zero, got)
}

func TestSplit(t *testing.T) {
	along, ortho := Split(mgl64.Vec3{2, -3, 1}, Up)
	assert.Equal(t, mgl64.Vec3{0, -3, 0}, along)
	assert.Equal(t, mgl64.Vec3{2, 0, 1}, ortho)
}

func TestNormalize(t *testing.T) {
	n, ok := Normalize(mgl64.Vec3{0, 0, -5})
	require.True(t, ok)
	assert.InDelta(t, -1.0, n.Z(), 1e-12)

	n, ok = Normalize(mgl64.Vec3{})
	assert.False(t, ok)
	assert.Equal(t, Zero, n)

	_, ok = Normalize(mgl64.Vec3{math.NaN(), 0, 0})
	assert.False(t, ok)
}

func TestSetLength(t *testing.T) {
	got := SetLength(mgl64.Vec3{3, 0, 4}, 10)
	assert.InDelta(t, 10.0, got.Len(), 1e-12)
	assert.Equal(t, Zero, SetLength(mgl64.Vec3{}, 10))
}

func TestRotateY(t *testing.T) {
	forward := mgl64.Vec3{0, 0, -1}

	left := RotateY(forward, math.Pi/2)
	assert.InDelta(t, -1.0, left.X(), 1e-12)
	assert.InDelta(t, 0.0, left.Z(), 1e-12)

	back := RotateY(forward, math.Pi)
	assert.InDelta(t, 1.0, back.Z(), 1e-12)
}

func TestClampAndFinite(t *testing.T) {
	got := Clamp(mgl64.Vec3{-10, 0.5, 10}, mgl64.Vec3{-1, -1, -1}, mgl64.Vec3{1, 1, 1})
	assert.Equal(t, mgl64.Vec3{-1, 0.5, 1}, got)

	assert.True(t, Finite(mgl64.Vec3{1, 2, 3}))
	assert.False(t, Finite(mgl64.Vec3{math.Inf(1), 0, 0}))
}

func TestMulElem(t *testing.T) {
	assert.Equal(t, mgl64.Vec3{2, -6, 0}, MulElem(mgl64.Vec3{1, 2, 3}, mgl64.Vec3{2, -3, 0}))
}
