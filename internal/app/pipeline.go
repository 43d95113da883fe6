package app

import (
	"context"
	"fmt"

	"github.com/parlavoce/parla/internal/event"
	"github.com/parlavoce/parla/internal/fsm"
)

// dispatchTranscription submits a sample snapshot to the blocking
// compute path. Requires a loaded transcriber.
func (a *App) dispatchTranscription(ctx context.Context, samples []float32) {
	transcriber := a.transcriber
	if transcriber == nil {
		a.logger.Error("transcription requested before model load")
		a.dismissOverlay()
		a.setStatus(fsm.StatusIdle)
		a.display.Notice("model not loaded")
		return
	}

	bus := a.bus
	a.runtime.GoBlocking(ctx, "transcribe",
		func(taskCtx context.Context) error {
			text, err := transcriber.Transcribe(taskCtx, samples)
			if err != nil {
				return err
			}
			return bus.Send(taskCtx, event.TranscriptionComplete{Text: text})
		},
		func(err error) {
			a.sendError(ctx, fmt.Sprintf("transcription failed: %v", err))
		},
	)
}

// dispatchRefinement calls the refinement collaborator on the async
// path. It always produces RefinementComplete: the refined text on
// success, the raw transcript on any failure.
func (a *App) dispatchRefinement(ctx context.Context, transcript string) {
	refiner := a.refiner
	bus := a.bus
	logger := a.logger

	a.runtime.Go(ctx, "refine",
		func(taskCtx context.Context) error {
			refined, err := refiner.Refine(taskCtx, transcript)
			if err != nil {
				logger.Warn("refinement failed, using raw transcript", "error", err.Error())
				refined = transcript
			}
			return bus.Send(taskCtx, event.RefinementComplete{Text: refined})
		},
		func(err error) {
			logger.Warn("refinement task failed, using raw transcript", "error", err.Error())
			if sendErr := bus.Send(ctx, event.RefinementComplete{Text: transcript}); sendErr != nil {
				logger.Error("deliver raw transcript failed", "error", sendErr.Error())
			}
		},
	)
}

// sendError pushes a ProcessingError back into the loop.
func (a *App) sendError(ctx context.Context, message string) {
	if err := a.bus.Send(ctx, event.ProcessingError{Message: message}); err != nil {
		a.logger.Error("deliver processing error failed", "message", message, "error", err.Error())
	}
}
