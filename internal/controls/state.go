package controls

import "sync"

type KeyHandler func(down bool)

// State tracks which keys are held. Keys are only recorded while the
// state is locked, mirroring pointer lock on the input device; unlocking
// forgets every held key.
type State struct {
	mu       sync.RWMutex
	binds    Keybinds
	held     map[string]bool
	locked   bool
	handlers map[string][]KeyHandler
}

func NewState(binds Keybinds) *State {
	if binds == nil {
		binds = DefaultKeybinds()
	}
	normalized := make(Keybinds, len(binds))
	for action, key := range binds {
		normalized[action] = NormalizeKey(key)
	}
	return &State{
		binds:    normalized,
		held:     make(map[string]bool),
		handlers: make(map[string][]KeyHandler),
	}
}

func (s *State) Press(key string) {
	s.set(key, true)
}

func (s *State) Release(key string) {
	s.set(key, false)
}

func (s *State) set(key string, down bool) {
	key = NormalizeKey(key)

	s.mu.Lock()
	if !s.locked || s.held[key] == down {
		s.mu.Unlock()
		return
	}
	if down {
		s.held[key] = true
	} else {
		delete(s.held, key)
	}
	handlers := make([]KeyHandler, len(s.handlers[key]))
	copy(handlers, s.handlers[key])
	s.mu.Unlock()

	for _, h := range handlers {
		h(down)
	}
}

// Held reports whether the key bound to action is down.
func (s *State) Held(action Action) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key, ok := s.binds[action]
	if !ok {
		return false
	}
	return s.held[key]
}

func (s *State) KeyHeld(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.held[NormalizeKey(key)]
}

func (s *State) KeyFor(action Action) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.binds[action]
}

// OnKey registers h to run whenever key changes between up and down.
func (s *State) OnKey(key string, h KeyHandler) {
	if h == nil {
		return
	}
	key = NormalizeKey(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[key] = append(s.handlers[key], h)
}

// OnAction registers h on the key currently bound to action.
func (s *State) OnAction(action Action, h KeyHandler) {
	s.OnKey(s.KeyFor(action), h)
}

func (s *State) Lock() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locked = true
}

func (s *State) Unlock() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locked = false
	clear(s.held)
}

func (s *State) Locked() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.locked
}

// Clear releases every held key without firing handlers.
func (s *State) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.held)
}
