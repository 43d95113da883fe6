// Package fsm defines the application status and overlay phase axes and the
// correlation invariant between them.
package fsm

import "fmt"

// Status is the coarse application state. Mutually exclusive; transitions are
// the authoritative signal of whether the system is busy.
type Status string

const (
	StatusIdle             Status = "idle"
	StatusRecording        Status = "recording"
	StatusProcessing       Status = "processing"
	StatusModelDownloading Status = "model_downloading"
)

// PhaseKind is the overlay's fine-grained pipeline stage. PhaseNone means the
// overlay is hidden.
type PhaseKind string

const (
	PhaseNone         PhaseKind = "none"
	PhaseRecording    PhaseKind = "recording"
	PhaseTranscribing PhaseKind = "transcribing"
	PhaseRefining     PhaseKind = "refining"
	PhaseDone         PhaseKind = "done"
)

// Phase pairs an overlay stage with its payload. Text is set only for
// PhaseDone, where it holds the delivered prompt.
type Phase struct {
	Kind PhaseKind
	Text string
}

// NoPhase is the hidden-overlay value.
var NoPhase = Phase{Kind: PhaseNone}

// Done builds a terminal overlay phase carrying the delivered text.
func Done(text string) Phase {
	return Phase{Kind: PhaseDone, Text: text}
}

// PhaseAllowed reports whether a phase may be visible under a status. Every
// phase except PhaseNone implies the system is recording or processing,
// except PhaseDone which survives the return to idle until dismissed.
func PhaseAllowed(status Status, kind PhaseKind) bool {
	switch kind {
	case PhaseNone:
		return true
	case PhaseRecording:
		return status == StatusRecording
	case PhaseTranscribing, PhaseRefining:
		return status == StatusProcessing
	case PhaseDone:
		return status == StatusIdle || status == StatusProcessing
	default:
		return false
	}
}

// CheckPair returns an error describing a status/phase combination outside
// the allowed correlation map.
func CheckPair(status Status, phase Phase) error {
	if PhaseAllowed(status, phase.Kind) {
		return nil
	}
	return fmt.Errorf("invalid state pair: status=%s phase=%s", status, phase.Kind)
}
