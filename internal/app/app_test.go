package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/parlavoce/parla/internal/audio"
	"github.com/parlavoce/parla/internal/event"
	"github.com/parlavoce/parla/internal/fsm"
	"github.com/parlavoce/parla/internal/hotkey"
	"github.com/parlavoce/parla/internal/stats"
	"github.com/parlavoce/parla/internal/tasks"
)

type fakeDisplay struct {
	statuses []fsm.Status
	phases   []fsm.Phase
	notices  []string
	levels   [][]float32
	elapsed  []time.Duration
	progress [][2]int64
	totals   []stats.Totals
}

func (d *fakeDisplay) StatusChanged(status fsm.Status, _ string) {
	d.statuses = append(d.statuses, status)
}
func (d *fakeDisplay) PhaseChanged(phase fsm.Phase) { d.phases = append(d.phases, phase) }
func (d *fakeDisplay) Levels(levels []float32) {
	d.levels = append(d.levels, append([]float32(nil), levels...))
}
func (d *fakeDisplay) Elapsed(e time.Duration) { d.elapsed = append(d.elapsed, e) }
func (d *fakeDisplay) DownloadProgress(downloaded, total int64) {
	d.progress = append(d.progress, [2]int64{downloaded, total})
}
func (d *fakeDisplay) TotalsChanged(t stats.Totals) { d.totals = append(d.totals, t) }
func (d *fakeDisplay) Notice(message string)        { d.notices = append(d.notices, message) }

func (d *fakeDisplay) lastNotice() string {
	if len(d.notices) == 0 {
		return ""
	}
	return d.notices[len(d.notices)-1]
}

type fakeClipboard struct {
	err    error
	copies []string
}

func (c *fakeClipboard) Copy(_ context.Context, text string) error {
	if c.err != nil {
		return c.err
	}
	c.copies = append(c.copies, text)
	return nil
}

type fakeTranscriber struct {
	text string
	err  error
}

func (f fakeTranscriber) Transcribe(context.Context, []float32) (string, error) {
	return f.text, f.err
}

type fakeRefiner struct {
	text  string
	err   error
	panic bool
}

func (f fakeRefiner) Refine(_ context.Context, transcript string) (string, error) {
	if f.panic {
		panic("refiner exploded")
	}
	if f.err != nil {
		return "", f.err
	}
	if f.text != "" {
		return f.text, nil
	}
	return transcript, nil
}

type fakeCapture struct {
	stopped bool
}

func (c *fakeCapture) Stop() error {
	c.stopped = true
	return nil
}

type harness struct {
	t       *testing.T
	app     *App
	bus     *event.Bus
	runtime *tasks.Runtime
	display *fakeDisplay
	clip    *fakeClipboard
	capture *fakeCapture
}

func newHarness(t *testing.T, mutate func(*Deps)) *harness {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bus := event.NewBus(event.DefaultBusCapacity)
	runtime := tasks.NewRuntime(tasks.DefaultBlockingSlots, logger)
	display := &fakeDisplay{}
	clip := &fakeClipboard{}
	capture := &fakeCapture{}

	deps := Deps{
		Logger:    logger,
		Bus:       bus,
		Runtime:   runtime,
		Display:   display,
		Clipboard: clip,
		StartCapture: func(context.Context, *audio.Buffer) (CaptureHandle, error) {
			return capture, nil
		},
	}
	if mutate != nil {
		mutate(&deps)
	}

	return &harness{
		t:       t,
		app:     New(deps),
		bus:     bus,
		runtime: runtime,
		display: display,
		clip:    clip,
		capture: capture,
	}
}

// drain waits out background tasks and feeds every queued event back
// through the handler, the way the Run loop would.
func (h *harness) drain(ctx context.Context) {
	h.t.Helper()
	for {
		h.runtime.Wait()
		select {
		case e, ok := <-h.bus.C():
			if !ok {
				return
			}
			h.app.handleEvent(ctx, e)
		default:
			return
		}
	}
}

func TestHotkeyStartsAndStopsRecording(t *testing.T) {
	h := newHarness(t, func(d *Deps) {})
	h.app.SetTranscriber(fakeTranscriber{text: "hello world"})
	ctx := context.Background()

	h.app.handleEvent(ctx, event.HotkeyTriggered{})
	require.Equal(t, fsm.StatusRecording, h.app.Status())
	require.Equal(t, fsm.PhaseRecording, h.app.Phase().Kind)

	h.app.buffer.Append(make([]float32, 1600))
	h.app.handleEvent(ctx, event.HotkeyTriggered{})
	require.True(t, h.capture.stopped)

	h.drain(ctx)
	require.Equal(t, fsm.StatusIdle, h.app.Status())
	require.Equal(t, fsm.Done("hello world"), h.app.Phase())
	require.Equal(t, []string{"hello world"}, h.clip.copies)
}

func TestHotkeyIgnoredWhileProcessing(t *testing.T) {
	for _, status := range []fsm.Status{fsm.StatusProcessing, fsm.StatusModelDownloading} {
		h := newHarness(t, nil)
		h.app.status = status

		h.app.handleEvent(context.Background(), event.HotkeyTriggered{})
		require.Equal(t, status, h.app.Status())
		require.False(t, h.capture.stopped)
		require.Nil(t, h.app.capture)
	}
}

func TestEmptyCaptureIsNoop(t *testing.T) {
	h := newHarness(t, nil)
	h.app.SetTranscriber(fakeTranscriber{text: "should never run"})
	ctx := context.Background()

	h.app.handleEvent(ctx, event.HotkeyTriggered{})
	h.app.handleEvent(ctx, event.HotkeyTriggered{})

	h.drain(ctx)
	require.Equal(t, fsm.StatusIdle, h.app.Status())
	require.Equal(t, fsm.NoPhase, h.app.Phase())
	require.Equal(t, "no audio captured", h.display.lastNotice())
	require.Empty(t, h.clip.copies)
}

func TestCaptureOpenFailureStaysIdle(t *testing.T) {
	h := newHarness(t, func(d *Deps) {
		d.StartCapture = func(context.Context, *audio.Buffer) (CaptureHandle, error) {
			return nil, errors.New("device busy")
		}
	})

	h.app.handleEvent(context.Background(), event.HotkeyTriggered{})
	require.Equal(t, fsm.StatusIdle, h.app.Status())
	require.Equal(t, fsm.NoPhase, h.app.Phase())
	require.Contains(t, h.display.lastNotice(), "mic error")
}

func TestRefinementFailureDegradesToRawTranscript(t *testing.T) {
	h := newHarness(t, func(d *Deps) {
		d.Refiner = fakeRefiner{err: errors.New("api unavailable")}
	})
	ctx := context.Background()

	h.app.status = fsm.StatusProcessing
	h.app.phase = fsm.Phase{Kind: fsm.PhaseTranscribing}
	h.app.handleEvent(ctx, event.TranscriptionComplete{Text: "raw words"})
	require.Equal(t, fsm.PhaseRefining, h.app.Phase().Kind)

	h.drain(ctx)
	require.Equal(t, []string{"raw words"}, h.clip.copies)
	require.Equal(t, fsm.Done("raw words"), h.app.Phase())
	require.Equal(t, fsm.StatusIdle, h.app.Status())
}

func TestRefinementPanicDegradesToRawTranscript(t *testing.T) {
	h := newHarness(t, func(d *Deps) {
		d.Refiner = fakeRefiner{panic: true}
	})
	ctx := context.Background()

	h.app.status = fsm.StatusProcessing
	h.app.handleEvent(ctx, event.TranscriptionComplete{Text: "raw words"})

	h.drain(ctx)
	require.Equal(t, []string{"raw words"}, h.clip.copies)
	require.Equal(t, fsm.StatusIdle, h.app.Status())
}

func TestTranscriptionFailureSurfacesError(t *testing.T) {
	h := newHarness(t, nil)
	h.app.SetTranscriber(fakeTranscriber{err: errors.New("decode failed")})
	ctx := context.Background()

	h.app.handleEvent(ctx, event.HotkeyTriggered{})
	h.app.buffer.Append(make([]float32, 100))
	h.app.handleEvent(ctx, event.HotkeyTriggered{})

	h.drain(ctx)
	require.Equal(t, fsm.StatusIdle, h.app.Status())
	require.Equal(t, fsm.NoPhase, h.app.Phase())
	require.Contains(t, h.display.lastNotice(), "transcription failed")
	require.Empty(t, h.clip.copies)
}

func TestTranscriptionWithoutModelReportsAndIdles(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	h.app.handleEvent(ctx, event.HotkeyTriggered{})
	h.app.buffer.Append(make([]float32, 100))
	h.app.handleEvent(ctx, event.HotkeyTriggered{})

	require.Equal(t, fsm.StatusIdle, h.app.Status())
	require.Equal(t, fsm.NoPhase, h.app.Phase())
	require.Equal(t, "model not loaded", h.display.lastNotice())
}

func TestLevelRingIsBounded(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	for i := 0; i < 30; i++ {
		h.app.handleEvent(ctx, event.AudioLevel{Value: float32(i)})
	}

	levels := h.app.Levels()
	require.Len(t, levels, 24)
	require.Equal(t, float32(6), levels[0])
	require.Equal(t, float32(29), levels[23])
}

func TestAutoDismissCancelledByNewRecording(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	h.app.setPhase(fsm.Done("previous prompt"))
	h.app.armDismiss()
	require.NotNil(t, h.app.dismissTimer)

	h.app.handleEvent(ctx, event.HotkeyTriggered{})
	require.Nil(t, h.app.dismissTimer)
	require.Equal(t, fsm.PhaseRecording, h.app.Phase().Kind)
}

func TestClipboardFailureIsTerminalForCycle(t *testing.T) {
	store := openStore(t)
	h := newHarness(t, func(d *Deps) {
		d.Store = store
	})
	h.clip.err = errors.New("no clipboard backend")
	ctx := context.Background()

	h.app.status = fsm.StatusProcessing
	h.app.phase = fsm.Phase{Kind: fsm.PhaseRefining}
	h.app.handleEvent(ctx, event.RefinementComplete{Text: "lost prompt"})

	require.Equal(t, fsm.StatusIdle, h.app.Status())
	require.Equal(t, fsm.NoPhase, h.app.Phase())
	require.Contains(t, h.display.lastNotice(), "clipboard error")

	totals, err := store.Totals(ctx)
	require.NoError(t, err)
	require.Equal(t, stats.Totals{}, totals)
}

func TestOverlayClickRecopiesDoneText(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	h.app.setPhase(fsm.Done("keep this"))
	h.app.armDismiss()

	h.app.handleEvent(ctx, event.OverlayClicked{})
	require.Equal(t, []string{"keep this"}, h.clip.copies)
	require.Equal(t, fsm.NoPhase, h.app.Phase())
	require.Nil(t, h.app.dismissTimer)
}

func TestOverlayClickOutsideDoneJustDismisses(t *testing.T) {
	h := newHarness(t, nil)

	h.app.handleEvent(context.Background(), event.OverlayClicked{})
	require.Empty(t, h.clip.copies)
	require.Equal(t, fsm.NoPhase, h.app.Phase())
}

func TestTimerTickUpdatesElapsed(t *testing.T) {
	h := newHarness(t, nil)

	h.app.status = fsm.StatusRecording
	h.app.phase = fsm.Phase{Kind: fsm.PhaseRecording}
	h.app.recordingStart = time.Now().Add(-2 * time.Second)

	h.app.handleEvent(context.Background(), event.TimerTick{})
	require.Len(t, h.display.elapsed, 1)
	require.GreaterOrEqual(t, h.display.elapsed[0], 2*time.Second)
}

func TestDownloadProgressForwarded(t *testing.T) {
	h := newHarness(t, nil)

	h.app.handleEvent(context.Background(), event.ModelDownloadProgress{Downloaded: 10, Total: 100})
	require.Equal(t, [][2]int64{{10, 100}}, h.display.progress)
}

func TestModelReadyFlipsToIdle(t *testing.T) {
	h := newHarness(t, nil)

	h.app.status = fsm.StatusProcessing
	h.app.handleEvent(context.Background(), event.ModelReady{})
	require.Equal(t, fsm.StatusIdle, h.app.Status())
}

func TestProcessingErrorDismissesAndIdles(t *testing.T) {
	h := newHarness(t, nil)

	h.app.status = fsm.StatusProcessing
	h.app.phase = fsm.Phase{Kind: fsm.PhaseTranscribing}
	h.app.handleEvent(context.Background(), event.ProcessingError{Message: "boom"})

	require.Equal(t, fsm.StatusIdle, h.app.Status())
	require.Equal(t, fsm.NoPhase, h.app.Phase())
	require.Equal(t, "error: boom", h.display.lastNotice())
}

func openStore(t *testing.T) *stats.Store {
	t.Helper()
	store, err := stats.Open(filepath.Join(t.TempDir(), "stats.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// TestDictationScenario runs one full cycle: trigger, two seconds of
// audio, trigger, transcript with no refinement credential, prompt on
// the clipboard, stats updated, done overlay auto-hiding.
func TestDictationScenario(t *testing.T) {
	store := openStore(t)
	h := newHarness(t, func(d *Deps) {
		d.Store = store
	})
	h.app.SetTranscriber(fakeTranscriber{text: "fix the bug"})
	ctx := context.Background()

	h.app.handleEvent(ctx, event.HotkeyTriggered{})
	require.Equal(t, fsm.StatusRecording, h.app.Status())

	h.app.buffer.Append(make([]float32, 2*audio.TargetRate))
	h.app.handleEvent(ctx, event.HotkeyTriggered{})

	h.drain(ctx)
	require.Equal(t, []string{"fix the bug"}, h.clip.copies)
	require.Equal(t, fsm.Done("fix the bug"), h.app.Phase())
	require.Equal(t, fsm.StatusIdle, h.app.Status())

	totals, err := store.Totals(ctx)
	require.NoError(t, err)
	require.Equal(t, stats.Totals{Prompts: 1, Words: 3}, totals)

	require.NotNil(t, h.app.dismissTimer)
	select {
	case <-h.app.dismissTimer.C:
		h.app.dismissTimer = nil
		h.app.dismissOverlay()
	case <-time.After(doneDismissDelay + time.Second):
		t.Fatal("auto-dismiss timer never fired")
	}
	require.Equal(t, fsm.NoPhase, h.app.Phase())
}

func TestHotkeyChangedUpdatesSharedDescriptor(t *testing.T) {
	ctx := context.Background()
	shared := hotkey.NewShared(hotkey.DefaultDescriptor())
	h := newHarness(t, func(d *Deps) { d.Hotkeys = shared })

	next := hotkey.Descriptor{Modifiers: []uint16{29, 42}, Trigger: 30, DisplayName: "Ctrl+Shift+A"}
	h.app.handleEvent(ctx, event.HotkeyChanged{Descriptor: next})

	require.Equal(t, next, shared.Load())
	require.Equal(t, fsm.StatusIdle, h.app.Status())
}

func TestNewToleratesNilCollaborators(t *testing.T) {
	app := New(Deps{})
	app.status = fsm.StatusProcessing

	app.handleEvent(context.Background(), event.HotkeyTriggered{})
	require.Equal(t, fsm.StatusProcessing, app.Status())
}
