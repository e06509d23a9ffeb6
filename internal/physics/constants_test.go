package physics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.InDelta(t, 0.2, cfg.MaxStep(), 1e-12)
	assert.InDelta(t, 1-math.Sqrt2/2, cfg.MaxSlope, 1e-12)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero mass", func(c *Config) { c.Mass = 0 }},
		{"negative world size", func(c *Config) { c.WorldSize = -1 }},
		{"zero min fps", func(c *Config) { c.MinFPS = 0 }},
		{"nan gravity", func(c *Config) { c.Gravity = math.NaN() }},
		{"negative drag", func(c *Config) { c.AirDrag = -0.1 }},
		{"negative friction threshold", func(c *Config) { c.SlideThreshold = -1 }},
		{"negative contact skin", func(c *Config) { c.ContactSkin = -0.01 }},
		{"crouch taller than player", func(c *Config) { c.CrouchMag = 2 }},
		{"eye above head", func(c *Config) { c.EyeHeight = 2.5 }},
		{"player wider than world", func(c *Config) { c.PlayerHalfWidth = 30 }},
		{"player taller than world", func(c *Config) { c.WorldHeight = 1 }},
		{"infinite floor", func(c *Config) { c.FloorY = math.Inf(-1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestConfigBounds(t *testing.T) {
	cfg := DefaultConfig()
	lo, hi := cfg.Bounds(0.75)

	assert.InDelta(t, -24.7, lo.X(), 1e-12)
	assert.InDelta(t, 24.7, hi.Z(), 1e-12)
	assert.InDelta(t, -0.25, lo.Y(), 1e-12)
	assert.InDelta(t, 48.25, hi.Y(), 1e-12)
}

func TestSurfaceValidate(t *testing.T) {
	require.NoError(t, DefaultSurface().Validate())

	bad := DefaultSurface()
	bad.KineticFriction = -1
	assert.Error(t, bad.Validate())
}
