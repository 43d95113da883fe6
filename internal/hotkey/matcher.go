package hotkey

import (
	"slices"
	"time"
)

// Debounce is the minimum interval between two accepted triggers, so one
// physical press-and-hold cannot fire repeatedly.
const Debounce = 500 * time.Millisecond

// matcher tracks the set of currently held key codes and decides when a
// descriptor match becomes an accepted trigger. It is platform-independent
// and owned entirely by the listener thread.
type matcher struct {
	held        map[uint16]struct{}
	lastTrigger time.Time
}

func newMatcher() *matcher {
	return &matcher{
		held: make(map[uint16]struct{}),
		// Allow a trigger immediately after startup.
		lastTrigger: time.Now().Add(-Debounce),
	}
}

// apply folds one key transition into the held set. Repeat events (neither
// press nor release) are ignored.
func (m *matcher) apply(ev KeyEvent) {
	switch ev.State {
	case KeyPressed:
		m.held[ev.Code] = struct{}{}
	case KeyReleased:
		delete(m.held, ev.Code)
	}
}

// combinationHeld reports whether all configured modifiers and the trigger
// key are currently down.
func (m *matcher) combinationHeld(d Descriptor) bool {
	for _, mod := range d.Modifiers {
		if _, ok := m.held[mod]; !ok {
			return false
		}
	}
	_, ok := m.held[d.Trigger]
	return ok
}

// shouldTrigger applies the debounce window on top of a combination match
// and records the acceptance time.
func (m *matcher) shouldTrigger(d Descriptor, now time.Time) bool {
	if !m.combinationHeld(d) {
		return false
	}
	if now.Sub(m.lastTrigger) < Debounce {
		return false
	}
	m.lastTrigger = now
	return true
}

// heldModifiers returns the currently held modifier codes in stable order.
func (m *matcher) heldModifiers() []uint16 {
	mods := make([]uint16, 0, len(m.held))
	for code := range m.held {
		if IsModifier(code) {
			mods = append(mods, code)
		}
	}
	slices.Sort(mods)
	return mods
}

// anyModifierHeld reports whether at least one modifier is down.
func (m *matcher) anyModifierHeld() bool {
	for code := range m.held {
		if IsModifier(code) {
			return true
		}
	}
	return false
}
