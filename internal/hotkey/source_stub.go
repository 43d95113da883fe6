//go:build !linux

package hotkey

import (
	"errors"
	"log/slog"
)

// NewKeyEventSource reports that no raw key-event backend exists for this
// platform. The listener is skipped; triggers can still be injected by the
// UI layer.
func NewKeyEventSource(_ *slog.Logger) (KeyEventSource, error) {
	return nil, errors.New("raw key event source is not supported on this platform")
}
