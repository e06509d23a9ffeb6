package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/LawyerK/3D-Demo/internal/controls"
	"github.com/LawyerK/3D-Demo/internal/physics"
	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Logging  LoggingConfig     `yaml:"logging"`
	Physics  physics.Config    `yaml:"physics"`
	Keybinds map[string]string `yaml:"keybinds"`
	Scene    SceneConfig       `yaml:"scene"`
	Sim      SimConfig         `yaml:"sim"`
	Feed     FeedConfig        `yaml:"feed"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

type SceneConfig struct {
	// File is a scene YAML; empty means the built-in demo scene.
	File string `yaml:"file"`
}

type SimConfig struct {
	TickInterval time.Duration `yaml:"tick_interval"`
	// HeadlessFrames bounds a run without a console; 0 runs until stopped.
	HeadlessFrames int        `yaml:"headless_frames"`
	StartPosition  mgl64.Vec3 `yaml:"start_position"`
}

type FeedConfig struct {
	// Listen is the websocket feed address; empty disables the feed.
	Listen string `yaml:"listen"`
	Buffer int    `yaml:"buffer"`
}

func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Physics: physics.DefaultConfig(),
		Sim: SimConfig{
			TickInterval:  time.Second / 60,
			StartPosition: mgl64.Vec3{0, 1, 0},
		},
		Feed: FeedConfig{
			Buffer: 16,
		},
	}
}

// Load reads path over the defaults, so a partial file only overrides the
// keys it names.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := c.Physics.Validate(); err != nil {
		return err
	}
	if _, err := c.Binds(); err != nil {
		return err
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown logging level %q", ErrInvalidConfig, c.Logging.Level)
	}
	switch c.Logging.Format {
	case "", "text", "json", "console":
	default:
		return fmt.Errorf("%w: unknown logging format %q", ErrInvalidConfig, c.Logging.Format)
	}
	if c.Sim.TickInterval <= 0 {
		return fmt.Errorf("%w: sim.tick_interval must be positive", ErrInvalidConfig)
	}
	if c.Sim.HeadlessFrames < 0 {
		return fmt.Errorf("%w: sim.headless_frames must not be negative", ErrInvalidConfig)
	}
	if c.Feed.Buffer <= 0 {
		return fmt.Errorf("%w: feed.buffer must be positive", ErrInvalidConfig)
	}
	return nil
}

// Binds resolves the keybinds section over the default bindings.
func (c *Config) Binds() (controls.Keybinds, error) {
	return controls.ParseKeybinds(c.Keybinds)
}
