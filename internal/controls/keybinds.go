package controls

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrInvalidKeybind = errors.New("invalid keybind")

// Action is a logical input, decoupled from the physical key bound to it.
type Action int

const (
	MoveForward Action = iota
	MoveBackward
	MoveLeft
	MoveRight
	Jump
	Crouch
	ToggleFly
	ChangePerspective

	actionCount
)

var actionNames = [actionCount]string{
	MoveForward:       "move_forward",
	MoveBackward:      "move_backward",
	MoveLeft:          "move_left",
	MoveRight:         "move_right",
	Jump:              "jump",
	Crouch:            "crouch",
	ToggleFly:         "toggle_fly",
	ChangePerspective: "change_perspective",
}

func (a Action) String() string {
	if a < 0 || a >= actionCount {
		return fmt.Sprintf("action(%d)", int(a))
	}
	return actionNames[a]
}

func (a Action) Valid() bool {
	return a >= 0 && a < actionCount
}

func ParseAction(name string) (Action, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range actionNames {
		if n == name {
			return Action(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown action %q", ErrInvalidKeybind, name)
}

// Actions lists every action in declaration order.
func Actions() []Action {
	out := make([]Action, 0, actionCount)
	for a := Action(0); a < actionCount; a++ {
		out = append(out, a)
	}
	return out
}

// NormalizeKey maps a key name to its canonical upper-case form.
func NormalizeKey(key string) string {
	if key == " " {
		return "SPACE"
	}
	return strings.ToUpper(strings.TrimSpace(key))
}

type Keybinds map[Action]string

func DefaultKeybinds() Keybinds {
	return Keybinds{
		MoveForward:       "W",
		MoveBackward:      "S",
		MoveLeft:          "A",
		MoveRight:         "D",
		Jump:              "SPACE",
		Crouch:            "SHIFT",
		ToggleFly:         "F",
		ChangePerspective: "G",
	}
}

// ParseKeybinds overlays action-name to key overrides on the defaults.
func ParseKeybinds(overrides map[string]string) (Keybinds, error) {
	binds := DefaultKeybinds()

	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		action, err := ParseAction(name)
		if err != nil {
			return nil, err
		}
		binds[action] = NormalizeKey(overrides[name])
	}
	if err := binds.Validate(); err != nil {
		return nil, err
	}
	return binds, nil
}

func (k Keybinds) Validate() error {
	seen := make(map[string]Action, len(k))
	for _, action := range Actions() {
		key, ok := k[action]
		if !ok || NormalizeKey(key) == "" {
			return fmt.Errorf("%w: %s has no key", ErrInvalidKeybind, action)
		}
		key = NormalizeKey(key)
		if prev, dup := seen[key]; dup {
			return fmt.Errorf("%w: key %s bound to both %s and %s", ErrInvalidKeybind, key, prev, action)
		}
		seen[key] = action
	}
	for action := range k {
		if !action.Valid() {
			return fmt.Errorf("%w: unknown %s", ErrInvalidKeybind, action)
		}
	}
	return nil
}

// ActionFor returns the action bound to key.
func (k Keybinds) ActionFor(key string) (Action, bool) {
	key = NormalizeKey(key)
	for action, bound := range k {
		if NormalizeKey(bound) == key {
			return action, true
		}
	}
	return 0, false
}
