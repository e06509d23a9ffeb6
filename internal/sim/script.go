package sim

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/LawyerK/3D-Demo/internal/controls"
	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

var ErrInvalidScript = errors.New("invalid script")

// Segment holds a set of actions for a stretch of simulated time.
type Segment struct {
	Duration time.Duration `yaml:"duration"`
	Held     []string      `yaml:"held,omitempty"`
}

// Script is a deterministic input recording for headless runs.
type Script struct {
	Name     string     `yaml:"name"`
	Start    mgl64.Vec3 `yaml:"start"`
	Yaw      float64    `yaml:"yaw"`
	Flying   bool       `yaml:"flying"`
	Segments []Segment  `yaml:"segments"`
}

func LoadScript(path string) (Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Script{}, err
	}
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Script{}, fmt.Errorf("parse script %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return Script{}, err
	}
	return s, nil
}

// DefaultScript walks the default scene: forward, a strafe, a jump, a
// crouch and a rest.
func DefaultScript() Script {
	return Script{
		Name:  "default",
		Start: mgl64.Vec3{0, 1, 0},
		Segments: []Segment{
			{Duration: 2 * time.Second, Held: []string{"move_forward"}},
			{Duration: time.Second, Held: []string{"move_forward", "move_left"}},
			{Duration: 500 * time.Millisecond, Held: []string{"jump"}},
			{Duration: time.Second, Held: []string{"crouch", "move_right"}},
			{Duration: 500 * time.Millisecond},
		},
	}
}

func (s Script) Validate() error {
	if len(s.Segments) == 0 {
		return fmt.Errorf("%w: %q has no segments", ErrInvalidScript, s.Name)
	}
	for i, seg := range s.Segments {
		if seg.Duration <= 0 {
			return fmt.Errorf("%w: segment %d duration must be positive", ErrInvalidScript, i)
		}
		if _, err := seg.actions(); err != nil {
			return fmt.Errorf("%w: segment %d: %v", ErrInvalidScript, i, err)
		}
	}
	return nil
}

func (s Script) Duration() time.Duration {
	var total time.Duration
	for _, seg := range s.Segments {
		total += seg.Duration
	}
	return total
}

func (seg Segment) actions() (map[controls.Action]bool, error) {
	held := make(map[controls.Action]bool, len(seg.Held))
	for _, name := range seg.Held {
		a, err := controls.ParseAction(name)
		if err != nil {
			return nil, err
		}
		held[a] = true
	}
	return held, nil
}

// scriptInput replays one segment at a time.
type scriptInput struct {
	held map[controls.Action]bool
}

func (in *scriptInput) Held(a controls.Action) bool {
	return in.held[a]
}
