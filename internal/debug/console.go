package debug

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/LawyerK/3D-Demo/internal/camera"
	"github.com/LawyerK/3D-Demo/internal/controls"
	"github.com/LawyerK/3D-Demo/internal/physics"
	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/term"
)

const (
	defaultTickInterval = 50 * time.Millisecond
	defaultMovePulse    = 180 * time.Millisecond
	yawStep             = 5.0
	pitchStep           = 5.0
)

// Simulation is the part of sim.Runner the console drives.
type Simulation interface {
	Snapshot() physics.State
	Teleport(p mgl64.Vec3)
	SetFlying(flying bool)
}

// Console drives the actor from a raw terminal. A terminal reports no key
// releases, so movement keys are pulsed: each press holds the key for a
// short while and repeats extend it.
type Console struct {
	sim          Simulation
	keys         *controls.State
	binds        controls.Keybinds
	view         *camera.View
	out          io.Writer
	tickInterval time.Duration
	movePulse    time.Duration

	mu          sync.Mutex
	pulses      map[string]time.Time
	toggled     map[string]bool
	commandMode bool
	commandBuf  []rune
	statusWidth int
}

func NewConsole(sim Simulation, keys *controls.State, binds controls.Keybinds, view *camera.View) *Console {
	if binds == nil {
		binds = controls.DefaultKeybinds()
	}
	return &Console{
		sim:          sim,
		keys:         keys,
		binds:        binds,
		view:         view,
		out:          os.Stdout,
		tickInterval: defaultTickInterval,
		movePulse:    defaultMovePulse,
		pulses:       make(map[string]time.Time),
		toggled:      make(map[string]bool),
	}
}

func (c *Console) Start(ctx context.Context) error {
	if c == nil {
		return fmt.Errorf("console is nil")
	}
	if c.sim == nil {
		return fmt.Errorf("console simulation is nil")
	}
	if c.keys == nil {
		return fmt.Errorf("console key state is nil")
	}
	if c.view == nil {
		return fmt.Errorf("console view is nil")
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("set terminal raw mode: %w", err)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
		fmt.Fprint(c.out, "\r\n")
	}()

	return c.run(ctx, os.Stdin)
}

func (c *Console) run(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.keys.Lock()
	defer c.keys.Unlock()
	c.keys.OnAction(controls.ChangePerspective, func(down bool) {
		if down {
			p := c.view.TogglePerspective()
			slog.Debug("debug perspective toggled", "perspective", p)
		}
	})

	fmt.Fprint(c.out, "[debug] console started (W/A/S/D pulse, Space jump, [ crouch, F fly, G view, arrows look, X clear, : command, Ctrl-C quit)\r\n")
	c.renderStatusLine()

	go c.tickLoop(ctx)

	reader := bufio.NewReader(in)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		b, err := reader.ReadByte()
		if err != nil {
			if ctx.Err() != nil || err == io.EOF {
				return nil
			}
			return fmt.Errorf("read console input: %w", err)
		}
		if b == 3 { // Ctrl-C, raw mode swallows SIGINT
			return nil
		}
		c.handleKey(reader, b)
	}
}

func (c *Console) tickLoop(ctx context.Context) {
	ticker := time.NewTicker(c.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			c.releaseExpired(now)
			c.renderStatusLine()
		}
	}
}

func (c *Console) handleKey(reader *bufio.Reader, b byte) {
	if c.isCommandMode() {
		c.handleCommandByte(b)
		return
	}

	switch b {
	case ':':
		c.enterCommandMode()
		return
	case '[':
		c.toggleAction(controls.Crouch)
	case 'x', 'X':
		c.clearInput()
	case 27: // ESC + arrow sequence
		next, err := reader.ReadByte()
		if err != nil || next != '[' {
			return
		}
		arrow, err := reader.ReadByte()
		if err != nil {
			return
		}
		switch arrow {
		case 'D': // left
			c.adjustView(yawStep, 0)
		case 'C': // right
			c.adjustView(-yawStep, 0)
		case 'A': // up
			c.adjustView(0, pitchStep)
		case 'B': // down
			c.adjustView(0, -pitchStep)
		}
	default:
		action, ok := c.binds.ActionFor(string(rune(b)))
		if !ok {
			return
		}
		switch action {
		case controls.Jump, controls.Crouch:
			c.toggleAction(action)
		default:
			c.pulseAction(action, time.Now())
		}
	}
	c.renderStatusLine()
}

// pulseAction holds the action's key until the pulse runs out. Opposite
// movement keys cancel each other.
func (c *Console) pulseAction(action controls.Action, now time.Time) {
	key := c.binds[action]
	opposite, hasOpposite := oppositeAction(action)

	c.mu.Lock()
	c.pulses[key] = now.Add(c.movePulse)
	var release string
	if hasOpposite {
		release = c.binds[opposite]
		delete(c.pulses, release)
	}
	c.mu.Unlock()

	if release != "" {
		c.keys.Release(release)
	}
	c.keys.Press(key)
}

func (c *Console) releaseExpired(now time.Time) {
	var expired []string
	c.mu.Lock()
	for key, until := range c.pulses {
		if !now.Before(until) {
			expired = append(expired, key)
			delete(c.pulses, key)
		}
	}
	c.mu.Unlock()

	for _, key := range expired {
		c.keys.Release(key)
	}
}

func (c *Console) toggleAction(action controls.Action) {
	key := c.binds[action]
	c.mu.Lock()
	down := !c.toggled[key]
	c.toggled[key] = down
	c.mu.Unlock()

	if down {
		c.keys.Press(key)
	} else {
		c.keys.Release(key)
	}
	slog.Debug("debug key toggled", "action", action, "down", down)
}

func (c *Console) clearInput() {
	c.mu.Lock()
	clear(c.pulses)
	clear(c.toggled)
	c.mu.Unlock()
	c.keys.Clear()
}

func (c *Console) adjustView(yawDeg, pitchDeg float64) {
	yaw, pitch := c.view.Angles()
	c.view.SetAngles(yaw+mgl64.DegToRad(yawDeg), pitch+mgl64.DegToRad(pitchDeg))
}

func (c *Console) enterCommandMode() {
	c.mu.Lock()
	c.commandMode = true
	c.commandBuf = c.commandBuf[:0]
	c.mu.Unlock()
	fmt.Fprint(c.out, "\r\n:")
}

func (c *Console) handleCommandByte(b byte) {
	switch b {
	case 13, 10: // Enter
		c.mu.Lock()
		cmd := strings.TrimSpace(string(c.commandBuf))
		c.commandMode = false
		c.commandBuf = c.commandBuf[:0]
		c.mu.Unlock()

		fmt.Fprint(c.out, "\r\n")
		if cmd != "" {
			c.executeCommand(cmd)
		}
		c.renderStatusLine()
		return
	case 27: // ESC cancel command mode
		c.mu.Lock()
		c.commandMode = false
		c.commandBuf = c.commandBuf[:0]
		c.mu.Unlock()
		fmt.Fprint(c.out, "\r\n[debug] command cancelled\r\n")
		c.renderStatusLine()
		return
	case 8, 127: // Backspace
		c.mu.Lock()
		if len(c.commandBuf) > 0 {
			c.commandBuf = c.commandBuf[:len(c.commandBuf)-1]
		}
		buf := string(c.commandBuf)
		c.mu.Unlock()
		fmt.Fprintf(c.out, "\r:%s ", buf)
		fmt.Fprintf(c.out, "\r:%s", buf)
		return
	default:
		if b < 32 || b > 126 {
			return
		}
		c.mu.Lock()
		c.commandBuf = append(c.commandBuf, rune(b))
		buf := string(c.commandBuf)
		c.mu.Unlock()
		fmt.Fprintf(c.out, "\r:%s", buf)
	}
}

func (c *Console) executeCommand(cmd string) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return
	}

	switch parts[0] {
	case "help":
		c.printHelp()
	case "state":
		s := c.sim.Snapshot()
		fmt.Fprintf(c.out, "[debug] pos=(%.3f,%.3f,%.3f) vel=(%.3f,%.3f,%.3f) contact=(%.2f,%.2f,%.2f) crouch=%.2f ground=%t jump=%t fly=%t\r\n",
			s.Position.X(), s.Position.Y(), s.Position.Z(),
			s.Velocity.X(), s.Velocity.Y(), s.Velocity.Z(),
			s.ContactForces.X(), s.ContactForces.Y(), s.ContactForces.Z(),
			s.Crouch, s.OnGround, s.CanJump, s.Flying,
		)
	case "tp":
		p, ok := parseVec(parts[1:])
		if !ok {
			fmt.Fprint(c.out, "[debug] usage: :tp <x> <y> <z>\r\n")
			return
		}
		c.sim.Teleport(p)
		fmt.Fprintf(c.out, "[debug] teleported to (%.3f, %.3f, %.3f)\r\n", p.X(), p.Y(), p.Z())
	case "fly":
		flying := !c.sim.Snapshot().Flying
		c.sim.SetFlying(flying)
		fmt.Fprintf(c.out, "[debug] flying=%t\r\n", flying)
	case "look":
		target, ok := parseVec(parts[1:])
		if !ok {
			fmt.Fprint(c.out, "[debug] usage: :look <x> <y> <z>\r\n")
			return
		}
		c.lookAt(target)
		fmt.Fprintf(c.out, "[debug] look at (%.3f, %.3f, %.3f)\r\n", target.X(), target.Y(), target.Z())
	case "view":
		fmt.Fprintf(c.out, "[debug] perspective=%s\r\n", c.view.TogglePerspective())
	default:
		fmt.Fprintf(c.out, "[debug] unknown command: %s\r\n", parts[0])
	}
}

func parseVec(args []string) (mgl64.Vec3, bool) {
	if len(args) != 3 {
		return mgl64.Vec3{}, false
	}
	var v mgl64.Vec3
	for i, a := range args {
		f, err := strconv.ParseFloat(a, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return mgl64.Vec3{}, false
		}
		v[i] = f
	}
	return v, true
}

// lookAt points the view from the actor's position at target.
func (c *Console) lookAt(target mgl64.Vec3) {
	d := target.Sub(c.sim.Snapshot().Position)
	yaw := math.Atan2(-d.X(), -d.Z())
	pitch := math.Atan2(d.Y(), math.Hypot(d.X(), d.Z()))
	c.view.SetAngles(yaw, pitch)
}

func (c *Console) printHelp() {
	fmt.Fprint(c.out, "[debug] keys:\r\n")
	fmt.Fprint(c.out, "  W/S/A/D: pulse movement (~180ms)\r\n")
	fmt.Fprint(c.out, "  Space: toggle jump\r\n")
	fmt.Fprint(c.out, "  [: toggle crouch (Shift fallback)\r\n")
	fmt.Fprint(c.out, "  F: toggle flying\r\n")
	fmt.Fprint(c.out, "  G: switch first/third person\r\n")
	fmt.Fprint(c.out, "  Arrow Left/Right: yaw +/-5\r\n")
	fmt.Fprint(c.out, "  Arrow Up/Down: pitch +/-5\r\n")
	fmt.Fprint(c.out, "  X: clear all input\r\n")
	fmt.Fprint(c.out, "  : enter command mode\r\n")
	fmt.Fprint(c.out, "[debug] commands:\r\n")
	fmt.Fprint(c.out, "  :look <x> <y> <z>\r\n")
	fmt.Fprint(c.out, "  :tp <x> <y> <z>\r\n")
	fmt.Fprint(c.out, "  :fly\r\n")
	fmt.Fprint(c.out, "  :view\r\n")
	fmt.Fprint(c.out, "  :state\r\n")
	fmt.Fprint(c.out, "  :help\r\n")
}

func (c *Console) renderStatusLine() {
	c.mu.Lock()
	if c.commandMode {
		c.mu.Unlock()
		return
	}
	width := c.statusWidth
	c.mu.Unlock()

	s := c.sim.Snapshot()
	yaw, pitch := c.view.Angles()

	line := fmt.Sprintf(
		"[FWD:%s BCK:%s LFT:%s RGT:%s JMP:%s CRH:%s FLY:%s | YAW:%.1f PIT:%.1f | X:%.2f Y:%.2f Z:%.2f ground:%t]",
		boolLabel(c.keys.Held(controls.MoveForward)),
		boolLabel(c.keys.Held(controls.MoveBackward)),
		boolLabel(c.keys.Held(controls.MoveLeft)),
		boolLabel(c.keys.Held(controls.MoveRight)),
		boolLabel(c.keys.Held(controls.Jump)),
		boolLabel(c.keys.Held(controls.Crouch)),
		boolLabel(s.Flying),
		mgl64.RadToDeg(yaw),
		mgl64.RadToDeg(pitch),
		s.Position.X(),
		s.Position.Y(),
		s.Position.Z(),
		s.OnGround,
	)

	padding := ""
	if width > len(line) {
		padding = strings.Repeat(" ", width-len(line))
	}
	fmt.Fprintf(c.out, "\r%s%s", line, padding)

	c.mu.Lock()
	if len(line) > c.statusWidth {
		c.statusWidth = len(line)
	}
	c.mu.Unlock()
}

func (c *Console) isCommandMode() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.commandMode
}

func oppositeAction(a controls.Action) (controls.Action, bool) {
	switch a {
	case controls.MoveForward:
		return controls.MoveBackward, true
	case controls.MoveBackward:
		return controls.MoveForward, true
	case controls.MoveLeft:
		return controls.MoveRight, true
	case controls.MoveRight:
		return controls.MoveLeft, true
	}
	return 0, false
}

func boolLabel(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
