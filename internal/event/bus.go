package event

import (
	"context"
	"errors"
)

// DefaultBusCapacity absorbs telemetry bursts without backpressure on the
// capture ticker or hotkey thread.
const DefaultBusCapacity = 256

// ErrBusClosed indicates a send after Close; producers treat it as a signal
// to shut down.
var ErrBusClosed = errors.New("event bus closed")

// Bus is the multi-producer, single-consumer channel between background
// work and the orchestrator. Exactly one goroutine may range over C().
type Bus struct {
	ch     chan Event
	closed chan struct{}
}

// NewBus returns a bus with the given buffer capacity (DefaultBusCapacity
// when zero or negative).
func NewBus(capacity int) *Bus {
	if capacity <= 0 {
		capacity = DefaultBusCapacity
	}
	return &Bus{
		ch:     make(chan Event, capacity),
		closed: make(chan struct{}),
	}
}

// Send delivers an event, blocking until there is room or ctx ends.
// All non-telemetry events use this must-deliver path.
func (b *Bus) Send(ctx context.Context, e Event) error {
	select {
	case <-b.closed:
		return ErrBusClosed
	default:
	}

	select {
	case b.ch <- e:
		return nil
	case <-b.closed:
		return ErrBusClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TrySend delivers best-effort and reports whether the event was accepted.
// High-frequency telemetry (AudioLevel, TimerTick) uses this path so a
// full queue drops levels instead of stalling a producer.
func (b *Bus) TrySend(e Event) bool {
	select {
	case <-b.closed:
		return false
	default:
	}

	select {
	case b.ch <- e:
		return true
	default:
		return false
	}
}

// C exposes the consumer side. The orchestrator is its only reader.
func (b *Bus) C() <-chan Event {
	return b.ch
}

// Close wakes pending senders. Already-buffered events remain readable.
func (b *Bus) Close() {
	select {
	case <-b.closed:
	default:
		close(b.closed)
	}
}
