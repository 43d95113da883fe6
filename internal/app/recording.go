package app

import (
	"context"
	"fmt"
	"time"

	"github.com/parlavoce/parla/internal/audio"
	"github.com/parlavoce/parla/internal/cue"
	"github.com/parlavoce/parla/internal/event"
	"github.com/parlavoce/parla/internal/fsm"
)

const (
	// levelTickInterval drives waveform updates (~12 fps).
	levelTickInterval = 80 * time.Millisecond

	// ticksPerTimerTick spaces elapsed-time refreshes (~960 ms).
	ticksPerTimerTick = 12
)

// startRecording begins a capture cycle. Precondition: status is idle.
func (a *App) startRecording(ctx context.Context) {
	a.logger.Info("starting recording")

	a.cancelDismiss()
	a.buffer.Clear()
	a.cues.Play(cue.Start)

	if a.startCapture == nil {
		a.setStatus(fsm.StatusIdle)
		a.display.Notice("mic error: no capture backend")
		return
	}
	capture, err := a.startCapture(ctx, a.buffer)
	if err != nil {
		a.logger.Error("start capture failed", "error", err.Error())
		a.dismissOverlay()
		a.setStatus(fsm.StatusIdle)
		a.display.Notice(fmt.Sprintf("mic error: %v", err))
		return
	}

	a.capture = capture
	a.recordingStart = time.Now()
	a.setStatus(fsm.StatusRecording)
	a.setPhase(fsm.Phase{Kind: fsm.PhaseRecording})
	a.display.Elapsed(0)
	a.startLevelTicker()
}

// stopRecording ends the capture cycle and hands the snapshot to the
// pipeline. Precondition: status is recording.
func (a *App) stopRecording(ctx context.Context) {
	a.logger.Info("stopping recording")

	if a.stopTicker != nil {
		a.stopTicker()
		a.stopTicker = nil
	}
	if a.capture != nil {
		if err := a.capture.Stop(); err != nil {
			a.logger.Warn("stop capture failed", "error", err.Error())
		}
		a.capture = nil
	}

	a.cues.Play(cue.Stop)

	a.setPhase(fsm.Phase{Kind: fsm.PhaseTranscribing})
	a.setStatus(fsm.StatusProcessing)

	samples := a.buffer.Snapshot()
	if len(samples) == 0 {
		a.setPhase(fsm.NoPhase)
		a.setStatus(fsm.StatusIdle)
		a.display.Notice("no audio captured")
		return
	}

	a.logger.Info("captured audio",
		"samples", len(samples),
		"seconds", fmt.Sprintf("%.1f", float64(len(samples))/float64(audio.TargetRate)))
	a.dispatchTranscription(ctx, samples)
}

// startLevelTicker emits AudioLevel every tick and TimerTick every
// twelfth, best-effort, until stopped.
func (a *App) startLevelTicker() {
	tickCtx, cancel := context.WithCancel(context.Background())
	a.stopTicker = cancel

	buffer := a.buffer
	bus := a.bus
	go func() {
		ticker := time.NewTicker(levelTickInterval)
		defer ticker.Stop()
		for count := 0; ; count++ {
			select {
			case <-tickCtx.Done():
				return
			case <-ticker.C:
				bus.TrySend(event.AudioLevel{Value: buffer.RMS(audio.RMSWindow)})
				if count%ticksPerTimerTick == 0 {
					bus.TrySend(event.TimerTick{})
				}
			}
		}
	}()
}
