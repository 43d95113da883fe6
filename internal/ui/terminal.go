package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/parlavoce/parla/internal/fsm"
	"github.com/parlavoce/parla/internal/model"
	"github.com/parlavoce/parla/internal/stats"
)

var levelGlyphs = []rune(" ▁▂▃▄▅▆▇█")

type theme struct {
	idle        lipgloss.Style
	recording   lipgloss.Style
	processing  lipgloss.Style
	downloading lipgloss.Style
	done        lipgloss.Style
	dim         lipgloss.Style
}

func newTheme() theme {
	return theme{
		idle:        lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")),
		recording:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF4444")),
		processing:  lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")),
		downloading: lipgloss.NewStyle().Foreground(lipgloss.Color("#06B6D4")),
		done:        lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#10B981")),
		dim:         lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")),
	}
}

// Terminal renders a single status line, rewriting it in place for
// transient updates and emitting full lines for phase transitions.
type Terminal struct {
	mu    sync.Mutex
	out   io.Writer
	theme theme

	status     fsm.Status
	hotkeyName string
	levels     []float32
	elapsed    time.Duration
	totals     stats.Totals
}

// NewTerminal builds a terminal display writing to out.
func NewTerminal(out io.Writer) *Terminal {
	return &Terminal{
		out:    out,
		theme:  newTheme(),
		status: fsm.StatusIdle,
	}
}

func (t *Terminal) StatusChanged(status fsm.Status, hotkeyName string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = status
	t.hotkeyName = hotkeyName
	if status != fsm.StatusRecording {
		t.levels = nil
		t.elapsed = 0
	}
	t.redraw()
}

func (t *Terminal) PhaseChanged(phase fsm.Phase) {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch phase.Kind {
	case fsm.PhaseDone:
		fmt.Fprintf(t.out, "\r\x1b[K%s %s\n", t.theme.done.Render("✓ copied:"), phase.Text)
	case fsm.PhaseNone:
		// final line already printed; nothing to clear
	}
	t.redraw()
}

func (t *Terminal) Levels(levels []float32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.levels = levels
	t.redraw()
}

func (t *Terminal) Elapsed(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.elapsed = d
	t.redraw()
}

func (t *Terminal) DownloadProgress(downloaded, total int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	line := fmt.Sprintf("downloading model %s", model.FormatBytes(downloaded))
	if total > 0 {
		line = fmt.Sprintf("downloading model %s / %s (%d%%)",
			model.FormatBytes(downloaded), model.FormatBytes(total), downloaded*100/total)
	}
	fmt.Fprintf(t.out, "\r\x1b[K%s", t.theme.downloading.Render(line))
}

func (t *Terminal) TotalsChanged(totals stats.Totals) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.totals = totals
	t.redraw()
}

func (t *Terminal) Notice(message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, "\r\x1b[K%s\n", t.theme.dim.Render(message))
	t.redraw()
}

// redraw rewrites the status line in place. Callers hold the mutex.
func (t *Terminal) redraw() {
	var line string
	switch t.status {
	case fsm.StatusRecording:
		line = fmt.Sprintf("%s %s %s",
			t.theme.recording.Render("● recording"),
			formatElapsed(t.elapsed),
			levelBars(t.levels))
	case fsm.StatusProcessing:
		line = t.theme.processing.Render("… processing")
	case fsm.StatusModelDownloading:
		line = t.theme.downloading.Render("downloading model")
	default:
		line = t.theme.idle.Render(fmt.Sprintf("idle: press %s to dictate", t.hotkeyName))
	}
	if t.totals.Prompts > 0 {
		line += t.theme.dim.Render(fmt.Sprintf("  [%d prompts · %d words]", t.totals.Prompts, t.totals.Words))
	}
	fmt.Fprintf(t.out, "\r\x1b[K%s", line)
}

// levelBars draws the level ring as a compact bar meter.
func levelBars(levels []float32) string {
	var b strings.Builder
	for _, level := range levels {
		idx := int(level * float32(len(levelGlyphs)))
		if idx >= len(levelGlyphs) {
			idx = len(levelGlyphs) - 1
		}
		if idx < 0 {
			idx = 0
		}
		b.WriteRune(levelGlyphs[idx])
	}
	return b.String()
}

func formatElapsed(d time.Duration) string {
	total := int(d.Seconds())
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
