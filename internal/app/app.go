// Package app is the orchestrator: a single event loop that owns all
// session state and applies every transition the backend can produce.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	"github.com/parlavoce/parla/internal/audio"
	"github.com/parlavoce/parla/internal/cue"
	"github.com/parlavoce/parla/internal/event"
	"github.com/parlavoce/parla/internal/fsm"
	"github.com/parlavoce/parla/internal/hotkey"
	"github.com/parlavoce/parla/internal/stats"
	"github.com/parlavoce/parla/internal/tasks"
	"github.com/parlavoce/parla/internal/ui"
)

const (
	// levelRingSize bounds the retained audio level history.
	levelRingSize = 24

	// doneDismissDelay is how long the done overlay stays up before
	// auto-hiding.
	doneDismissDelay = 3 * time.Second
)

// Transcriber converts a sample snapshot to text. Satisfied by the
// loaded model context.
type Transcriber interface {
	Transcribe(ctx context.Context, samples []float32) (string, error)
}

// Refiner cleans a raw transcript into a deliverable prompt.
type Refiner interface {
	Refine(ctx context.Context, transcript string) (string, error)
}

// Clipboard places delivered text on the system clipboard.
type Clipboard interface {
	Copy(ctx context.Context, text string) error
}

// PromptStore persists committed prompts and usage counters.
type PromptStore interface {
	RecordPrompt(ctx context.Context, text string) (stats.PromptRecord, error)
	Totals(ctx context.Context) (stats.Totals, error)
}

// CaptureHandle is a live capture session; Stop releases the device.
type CaptureHandle interface {
	Stop() error
}

// CaptureStarter opens the input device and begins streaming into buffer.
type CaptureStarter func(ctx context.Context, buffer *audio.Buffer) (CaptureHandle, error)

// Deps are the collaborators the orchestrator drives. Nil entries get
// safe no-op fallbacks so partial wiring stays runnable.
type Deps struct {
	Logger       *slog.Logger
	Bus          *event.Bus
	Runtime      *tasks.Runtime
	Display      ui.Display
	Cues         *cue.Player
	Clipboard    Clipboard
	Store        PromptStore
	Refiner      Refiner
	Hotkeys      *hotkey.Shared
	StartCapture CaptureStarter

	// Model artifact location; used by ensureModel when no transcriber
	// is preloaded.
	ModelDir  string
	ModelName string
}

// App owns all session state. Every field below is touched only from
// the Run loop goroutine.
type App struct {
	logger    *slog.Logger
	bus       *event.Bus
	runtime   *tasks.Runtime
	display   ui.Display
	cues      *cue.Player
	clipboard Clipboard
	store     PromptStore
	refiner   Refiner
	hotkeys   *hotkey.Shared

	startCapture CaptureStarter
	modelDir     string
	modelName    string

	status      fsm.Status
	statusPub   atomic.Value
	phase       fsm.Phase
	transcriber Transcriber

	buffer         *audio.Buffer
	capture        CaptureHandle
	recordingStart time.Time
	stopTicker     context.CancelFunc

	levels       []float32
	dismissTimer *time.Timer
}

// New constructs the orchestrator in its initial idle state.
func New(deps Deps) *App {
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(math.MaxInt)}))
	}
	if deps.Display == nil {
		deps.Display = ui.Nop{}
	}
	if deps.Clipboard == nil {
		deps.Clipboard = nopClipboard{}
	}
	if deps.Refiner == nil {
		deps.Refiner = passthroughRefiner{}
	}
	if deps.Store == nil {
		deps.Store = nopStore{}
	}

	return &App{
		logger:       deps.Logger,
		bus:          deps.Bus,
		runtime:      deps.Runtime,
		display:      deps.Display,
		cues:         deps.Cues,
		clipboard:    deps.Clipboard,
		store:        deps.Store,
		refiner:      deps.Refiner,
		hotkeys:      deps.Hotkeys,
		startCapture: deps.StartCapture,
		modelDir:     deps.ModelDir,
		modelName:    deps.ModelName,
		status:       fsm.StatusIdle,
		phase:        fsm.NoPhase,
		buffer:       audio.NewBuffer(),
	}
}

// SetTranscriber preloads an inference context, bypassing the model
// download/load path.
func (a *App) SetTranscriber(t Transcriber) {
	a.transcriber = t
}

// Status returns the current top-level status.
func (a *App) Status() fsm.Status {
	return a.status
}

// StatusSnapshot reads the last published status. Unlike Status it is safe
// to call from any goroutine, so the control socket uses it.
func (a *App) StatusSnapshot() fsm.Status {
	if s, ok := a.statusPub.Load().(fsm.Status); ok {
		return s
	}
	return fsm.StatusIdle
}

// Phase returns the current overlay phase.
func (a *App) Phase() fsm.Phase {
	return a.phase
}

// Levels returns the retained audio level ring, oldest first.
func (a *App) Levels() []float32 {
	return a.levels
}

// Run consumes the event bus until ctx is cancelled or the bus closes.
func (a *App) Run(ctx context.Context) error {
	a.display.StatusChanged(a.status, a.hotkeyName())
	if totals, err := a.store.Totals(ctx); err == nil {
		a.display.TotalsChanged(totals)
	}
	if a.transcriber == nil {
		a.ensureModel(ctx)
	}

	for {
		var dismissC <-chan time.Time
		if a.dismissTimer != nil {
			dismissC = a.dismissTimer.C
		}

		select {
		case <-ctx.Done():
			a.shutdown()
			return ctx.Err()
		case e, ok := <-a.bus.C():
			if !ok {
				a.shutdown()
				return nil
			}
			a.handleEvent(ctx, e)
		case <-dismissC:
			a.dismissTimer = nil
			a.dismissOverlay()
		}
	}
}

// handleEvent is the state transition table.
func (a *App) handleEvent(ctx context.Context, e event.Event) {
	switch ev := e.(type) {
	case event.HotkeyTriggered:
		switch a.status {
		case fsm.StatusIdle:
			a.startRecording(ctx)
		case fsm.StatusRecording:
			a.stopRecording(ctx)
		default:
			a.logger.Info("ignoring hotkey", "status", string(a.status))
		}

	case event.TranscriptionComplete:
		a.logger.Info("transcript ready", "chars", len(ev.Text))
		a.setPhase(fsm.Phase{Kind: fsm.PhaseRefining})
		a.setStatus(fsm.StatusProcessing)
		a.dispatchRefinement(ctx, ev.Text)

	case event.RefinementComplete:
		a.onPromptReady(ctx, ev.Text)

	case event.ProcessingError:
		a.logger.Error("processing error", "message", ev.Message)
		a.dismissOverlay()
		a.setStatus(fsm.StatusIdle)
		a.display.Notice("error: " + ev.Message)

	case event.ModelDownloadProgress:
		a.display.DownloadProgress(ev.Downloaded, ev.Total)

	case event.ModelDownloadComplete:
		a.loadModel(ctx)

	case event.ModelReady:
		if ev.Context != nil {
			a.transcriber = ev.Context
		}
		a.logger.Info("model ready")
		a.setStatus(fsm.StatusIdle)

	case event.TimerTick:
		if a.status == fsm.StatusRecording {
			a.display.Elapsed(time.Since(a.recordingStart))
		}

	case event.AudioLevel:
		a.pushLevel(ev.Value)
		a.display.Levels(a.levels)

	case event.HotkeyChanged:
		if a.hotkeys != nil {
			a.hotkeys.Store(ev.Descriptor)
		}
		a.logger.Info("hotkey changed", "hotkey", ev.Descriptor.DisplayName)
		a.display.StatusChanged(a.status, a.hotkeyName())

	case event.OverlayClicked:
		if a.phase.Kind == fsm.PhaseDone {
			if err := a.clipboard.Copy(ctx, a.phase.Text); err != nil {
				a.logger.Warn("re-copy failed", "error", err.Error())
			}
		}
		a.dismissOverlay()
	}

	if err := fsm.CheckPair(a.status, a.phase); err != nil {
		a.logger.Error("state invariant violated", "error", err.Error())
	}
}

// onPromptReady applies the delivery side effects: clipboard, stats,
// done overlay with auto-dismiss.
func (a *App) onPromptReady(ctx context.Context, text string) {
	if err := a.clipboard.Copy(ctx, text); err != nil {
		a.logger.Error("clipboard copy failed", "error", err.Error())
		a.dismissOverlay()
		a.setStatus(fsm.StatusIdle)
		a.display.Notice(fmt.Sprintf("clipboard error: %v", err))
		return
	}

	if record, err := a.store.RecordPrompt(ctx, text); err != nil {
		a.logger.Warn("record prompt failed", "error", err.Error())
	} else {
		a.logger.Info("prompt delivered", "id", record.ID, "words", record.WordCount)
	}
	if totals, err := a.store.Totals(ctx); err == nil {
		a.display.TotalsChanged(totals)
	}

	a.setPhase(fsm.Done(text))
	a.setStatus(fsm.StatusIdle)
	a.armDismiss()
}

// armDismiss schedules the done overlay auto-hide.
func (a *App) armDismiss() {
	a.cancelDismiss()
	a.dismissTimer = time.NewTimer(doneDismissDelay)
}

// cancelDismiss drops any pending auto-hide.
func (a *App) cancelDismiss() {
	if a.dismissTimer != nil {
		a.dismissTimer.Stop()
		a.dismissTimer = nil
	}
}

// dismissOverlay hides the overlay and cancels the auto-hide timer.
func (a *App) dismissOverlay() {
	a.cancelDismiss()
	a.setPhase(fsm.NoPhase)
}

func (a *App) setStatus(status fsm.Status) {
	a.status = status
	a.statusPub.Store(status)
	a.display.StatusChanged(status, a.hotkeyName())
}

func (a *App) setPhase(phase fsm.Phase) {
	a.phase = phase
	a.display.PhaseChanged(phase)
}

func (a *App) pushLevel(level float32) {
	if len(a.levels) >= levelRingSize {
		copy(a.levels, a.levels[1:])
		a.levels = a.levels[:levelRingSize-1]
	}
	a.levels = append(a.levels, level)
}

func (a *App) hotkeyName() string {
	if a.hotkeys == nil {
		return ""
	}
	return a.hotkeys.Load().DisplayName
}

// shutdown releases live handles on loop exit.
func (a *App) shutdown() {
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
	a.cancelDismiss()
	if a.runtime != nil {
		a.runtime.Wait()
	}
}

type nopClipboard struct{}

func (nopClipboard) Copy(context.Context, string) error { return nil }

type passthroughRefiner struct{}

func (passthroughRefiner) Refine(_ context.Context, transcript string) (string, error) {
	return transcript, nil
}

type nopStore struct{}

func (nopStore) RecordPrompt(_ context.Context, text string) (stats.PromptRecord, error) {
	return stats.PromptRecord{}, nil
}

func (nopStore) Totals(context.Context) (stats.Totals, error) {
	return stats.Totals{}, nil
}
