// Package cue synthesizes and plays the short audible feedback tones around
// recording transitions. Playback is fire-and-forget: failures are logged,
// never propagated.
package cue

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/jfreymuth/pulse"
)

// Kind selects one of the feedback cues.
type Kind int

const (
	// Start plays when recording begins: ascending 600 -> 900 Hz sweep.
	Start Kind = iota + 1
	// Stop plays when recording ends: descending 900 -> 600 Hz sweep.
	Stop
)

const (
	sampleRate    = 16000
	sweepDuration = 150 * time.Millisecond
	sweepGain     = 0.3
)

var (
	startPCM = synthesizeSweep(600, 900, sweepDuration, sweepGain)
	stopPCM  = synthesizeSweep(900, 600, sweepDuration, sweepGain)
)

// Player plays cues without ever blocking its caller.
type Player struct {
	logger  *slog.Logger
	enabled bool
}

// NewPlayer constructs a cue player. A disabled player accepts Play calls
// and does nothing.
func NewPlayer(enabled bool, logger *slog.Logger) *Player {
	return &Player{logger: logger, enabled: enabled}
}

// Play dispatches one cue on an isolated goroutine and returns immediately.
func (p *Player) Play(kind Kind) {
	if p == nil || !p.enabled {
		return
	}
	go func() {
		if err := playPCM(cueSamples(kind)); err != nil && p.logger != nil {
			p.logger.Warn("cue playback failed", "kind", int(kind), "error", err.Error())
		}
	}()
}

// cueSamples returns the pre-synthesized PCM for a cue kind.
func cueSamples(kind Kind) []int16 {
	switch kind {
	case Start:
		return startPCM
	case Stop:
		return stopPCM
	default:
		return nil
	}
}

// synthesizeSweep renders a linear frequency sweep with a fade-out envelope.
func synthesizeSweep(fromHz, toHz float64, duration time.Duration, gain float64) []int16 {
	n := samplesForDuration(duration)
	if n <= 0 || fromHz <= 0 || toHz <= 0 || gain <= 0 {
		return nil
	}

	pcm := make([]int16, n)
	phase := 0.0
	for i := 0; i < n; i++ {
		progress := float64(i) / float64(n)
		freq := fromHz + (toHz-fromHz)*progress
		phase += 2 * math.Pi * freq / sampleRate
		envelope := 1 - progress
		value := math.Sin(phase) * envelope * gain
		pcm[i] = int16(value * math.MaxInt16)
	}
	return pcm
}

// samplesForDuration converts a duration to a sample count at the cue rate.
func samplesForDuration(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(float64(sampleRate) * d.Seconds())
}

// playPCM streams one synthesized cue through a short-lived pulse connection.
func playPCM(samples []int16) error {
	if len(samples) == 0 {
		return nil
	}

	client, err := pulse.NewClient(
		pulse.ClientApplicationName("parla"),
		pulse.ClientApplicationIconName("audio-input-microphone"),
	)
	if err != nil {
		return fmt.Errorf("connect pulse server: %w", err)
	}
	defer client.Close()

	cursor := 0
	reader := pulse.Int16Reader(func(buf []int16) (int, error) {
		if cursor >= len(samples) {
			return 0, pulse.EndOfData
		}

		n := copy(buf, samples[cursor:])
		cursor += n
		if cursor >= len(samples) {
			return n, pulse.EndOfData
		}
		return n, nil
	})

	stream, err := client.NewPlayback(
		reader,
		pulse.PlaybackMono,
		pulse.PlaybackSampleRate(sampleRate),
		pulse.PlaybackLatency(0.02),
		pulse.PlaybackMediaName("parla cue"),
	)
	if err != nil {
		return fmt.Errorf("create pulse playback stream: %w", err)
	}
	defer stream.Close()

	stream.Start()
	stream.Drain()
	if err := stream.Error(); err != nil {
		return fmt.Errorf("play cue stream: %w", err)
	}

	return nil
}
