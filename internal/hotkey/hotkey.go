// Package hotkey scans raw key events on a dedicated OS thread and turns
// configured combinations into debounced trigger signals.
package hotkey

import (
	"strings"
	"sync"
)

// Descriptor is the configured trigger combination, expressed in evdev key
// codes. It is a plain value; Shared provides the cross-thread wrapper.
type Descriptor struct {
	Modifiers   []uint16 `toml:"modifiers"`
	Trigger     uint16   `toml:"trigger"`
	DisplayName string   `toml:"display_name"`
}

// DefaultDescriptor is Ctrl+Space.
func DefaultDescriptor() Descriptor {
	return Descriptor{
		Modifiers:   []uint16{codeLeftCtrl},
		Trigger:     codeSpace,
		DisplayName: "Ctrl+Space",
	}
}

// Shared is the descriptor value visible to both the orchestrator (writer,
// on reconfiguration) and the listener thread (reader, every scan pass).
// Update frequency is human-scale, so a plain mutex suffices.
type Shared struct {
	mu sync.Mutex
	d  Descriptor
}

// NewShared wraps a descriptor for cross-thread access.
func NewShared(d Descriptor) *Shared {
	return &Shared{d: d}
}

// Load returns a copy of the current descriptor.
func (s *Shared) Load() Descriptor {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.d
	out.Modifiers = append([]uint16(nil), s.d.Modifiers...)
	return out
}

// Store replaces the descriptor. Applies without restarting the listener.
func (s *Shared) Store(d Descriptor) {
	s.mu.Lock()
	s.d = Descriptor{
		Modifiers:   append([]uint16(nil), d.Modifiers...),
		Trigger:     d.Trigger,
		DisplayName: d.DisplayName,
	}
	s.mu.Unlock()
}

// BuildDisplayName names a combination like "Ctrl+Shift+Space", collapsing
// duplicate modifier names.
func BuildDisplayName(modifiers []uint16, trigger uint16) string {
	parts := make([]string, 0, len(modifiers)+1)
	seen := make(map[string]struct{}, len(modifiers))
	for _, m := range modifiers {
		name := modifierName(m)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		parts = append(parts, name)
	}
	parts = append(parts, triggerName(trigger))
	return strings.Join(parts, "+")
}
