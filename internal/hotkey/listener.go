package hotkey

import (
	"log/slog"
	"runtime"
	"time"
)

// pollIdleSleep keeps the scan loop cheap when no input is arriving.
const pollIdleSleep = time.Millisecond

// Listener scans raw key events against the shared descriptor and emits
// debounced trigger signals. It runs for the process lifetime on its own
// OS thread, outside both the orchestrator loop and the task runtime, so
// scanning latency stays predictable while they are busy.
type Listener struct {
	source KeyEventSource
	shared *Shared
	logger *slog.Logger

	triggers chan struct{}
	done     chan struct{}
}

// NewListener wires a listener to a key event source and shared descriptor.
func NewListener(source KeyEventSource, shared *Shared, logger *slog.Logger) *Listener {
	return &Listener{
		source:   source,
		shared:   shared,
		logger:   logger,
		triggers: make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// Triggers is the single-slot signal channel consumed by the orchestrator.
func (l *Listener) Triggers() <-chan struct{} {
	return l.triggers
}

// Start spawns the scanning thread.
func (l *Listener) Start() {
	go l.run()
}

// Stop tells the listener its consumer has gone away; the thread exits
// cleanly on its next pass.
func (l *Listener) Stop() {
	select {
	case <-l.done:
	default:
		close(l.done)
	}
}

func (l *Listener) run() {
	// Raw input scanning stays on one OS thread for predictable latency.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer func() { _ = l.source.Close() }()

	m := newMatcher()
	for {
		select {
		case <-l.done:
			if l.logger != nil {
				l.logger.Info("hotkey listener exiting")
			}
			return
		default:
		}

		events, err := l.source.Poll()
		if err != nil {
			if l.logger != nil {
				l.logger.Error("hotkey source failed", "error", err.Error())
			}
			return
		}

		for _, ev := range events {
			m.apply(ev)
		}

		// Re-read the descriptor every pass so reconfiguration applies
		// without restarting the thread.
		descriptor := l.shared.Load()
		if m.shouldTrigger(descriptor, time.Now()) {
			if l.logger != nil {
				l.logger.Info("hotkey triggered", "combo", descriptor.DisplayName)
			}
			select {
			case l.triggers <- struct{}{}:
			case <-l.done:
				return
			default:
				// Slot already full; the pending trigger covers this press.
			}
		}

		if len(events) == 0 {
			time.Sleep(pollIdleSleep)
		}
	}
}

// CaptureTimeout bounds one-shot combo capture.
const CaptureTimeout = 10 * time.Second

// CaptureCombo watches the source until a non-modifier key is pressed while
// at least one modifier is held, and returns that combination. Returns
// ok=false when the timeout elapses first. Used for reconfiguration; the
// regular listener should be paused while this runs.
func CaptureCombo(source KeyEventSource, timeout time.Duration) (Descriptor, bool) {
	if timeout <= 0 {
		timeout = CaptureTimeout
	}
	deadline := time.Now().Add(timeout)

	m := newMatcher()
	for time.Now().Before(deadline) {
		events, err := source.Poll()
		if err != nil {
			return Descriptor{}, false
		}

		for _, ev := range events {
			m.apply(ev)
			if ev.State != KeyPressed || IsModifier(ev.Code) {
				continue
			}
			if !m.anyModifierHeld() {
				continue
			}
			mods := m.heldModifiers()
			return Descriptor{
				Modifiers:   mods,
				Trigger:     ev.Code,
				DisplayName: BuildDisplayName(mods, ev.Code),
			}, true
		}

		if len(events) == 0 {
			time.Sleep(pollIdleSleep)
		}
	}
	return Descriptor{}, false
}
