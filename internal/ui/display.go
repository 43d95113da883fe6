// Package ui renders backend state for the user. The orchestrator talks
// to a Display; the terminal implementation lives here too.
package ui

import (
	"time"

	"github.com/parlavoce/parla/internal/fsm"
	"github.com/parlavoce/parla/internal/stats"
)

// Display receives state changes from the orchestrator. Implementations
// must tolerate being called from the event loop goroutine only.
type Display interface {
	// StatusChanged reports the top-level status and the hotkey hint to
	// show alongside it.
	StatusChanged(status fsm.Status, hotkeyName string)

	// PhaseChanged reports the overlay phase, including the final text
	// for the done phase.
	PhaseChanged(phase fsm.Phase)

	// Levels reports the rolling audio level ring, oldest first.
	Levels(levels []float32)

	// Elapsed reports recording duration.
	Elapsed(d time.Duration)

	// DownloadProgress reports model download progress; total is 0 when
	// unknown.
	DownloadProgress(downloaded, total int64)

	// TotalsChanged reports lifetime usage counters.
	TotalsChanged(totals stats.Totals)

	// Notice shows a transient informational message.
	Notice(message string)
}

// Nop is a Display that discards everything.
type Nop struct{}

func (Nop) StatusChanged(fsm.Status, string) {}
func (Nop) PhaseChanged(fsm.Phase)           {}
func (Nop) Levels([]float32)                 {}
func (Nop) Elapsed(time.Duration)            {}
func (Nop) DownloadProgress(int64, int64)    {}
func (Nop) TotalsChanged(stats.Totals)       {}
func (Nop) Notice(string)                    {}
