// Package event defines the typed messages carried from every producer
// thread into the orchestrator, plus the single-consumer bus they ride on.
package event

import (
	"github.com/parlavoce/parla/internal/hotkey"
	"github.com/parlavoce/parla/internal/model"
)

// Event is the sole cross-thread message type. Every value is immutable;
// no event carries a reference back into orchestrator state.
type Event interface {
	isEvent()
}

// HotkeyTriggered is emitted by the hotkey listener on a debounced match.
type HotkeyTriggered struct{}

// TranscriptionComplete carries the raw transcript out of the blocking slot.
type TranscriptionComplete struct {
	Text string
}

// RefinementComplete carries the delivered text: the refined result on
// success, the raw transcript unchanged on refinement failure.
type RefinementComplete struct {
	Text string
}

// ProcessingError is the single reported-error path for device, pipeline,
// and clipboard failures. Message strings are the contract.
type ProcessingError struct {
	Message string
}

// ModelDownloadProgress reports streamed artifact bytes. Total may be zero
// when the remote does not announce a content length.
type ModelDownloadProgress struct {
	Downloaded int64
	Total      int64
}

// ModelDownloadComplete signals the artifact is fully on disk.
type ModelDownloadComplete struct{}

// ModelReady hands the loaded inference context across the concurrency
// boundary into session state. The context is read-only after load.
type ModelReady struct {
	Context *model.Context
}

// TimerTick refreshes the elapsed-time display (~960 ms cadence).
type TimerTick struct{}

// AudioLevel carries one RMS sample of recent capture energy (~80 ms cadence).
type AudioLevel struct {
	Value float32
}

// OverlayClicked is raised by the UI layer on direct overlay interaction.
type OverlayClicked struct{}

// HotkeyChanged carries a reconfigured trigger combination into session
// state; the listener picks it up on its next scan pass.
type HotkeyChanged struct {
	Descriptor hotkey.Descriptor
}

func (HotkeyTriggered) isEvent()       {}
func (TranscriptionComplete) isEvent() {}
func (RefinementComplete) isEvent()    {}
func (ProcessingError) isEvent()       {}
func (ModelDownloadProgress) isEvent() {}
func (ModelDownloadComplete) isEvent() {}
func (ModelReady) isEvent()            {}
func (TimerTick) isEvent()             {}
func (AudioLevel) isEvent()            {}
func (OverlayClicked) isEvent()        {}
func (HotkeyChanged) isEvent()         {}
