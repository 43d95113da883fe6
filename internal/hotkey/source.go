package hotkey

// KeyState distinguishes key transitions surfaced to the matcher.
type KeyState int

const (
	// KeyReleased marks a key-up transition.
	KeyReleased KeyState = iota
	// KeyPressed marks a key-down transition.
	KeyPressed
)

// KeyEvent is one raw key transition from the platform event source.
type KeyEvent struct {
	Code  uint16
	State KeyState
}

// KeyEventSource is the platform capability the listener is layered on.
// Poll returns the pending transitions without blocking; an empty slice
// means no input arrived since the previous call.
type KeyEventSource interface {
	Poll() ([]KeyEvent, error)
	Close() error
}
