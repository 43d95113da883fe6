// Package audio handles device discovery, the shared sample buffer, and the
// real-time capture stream feeding it.
package audio

import (
	"math"
	"sync"
)

// RMSWindow is the sample window for level metering: ~80ms at 16kHz.
const RMSWindow = 1280

// Buffer is the append-only mono sample accumulator shared between the
// real-time capture callback and the orchestrator. The callback appends;
// the orchestrator clears and snapshots. Critical sections stay tiny so the
// capture path never glitches.
type Buffer struct {
	mu      sync.Mutex
	samples []float32
}

// NewBuffer returns an empty sample buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Append adds already-normalized mono samples. Called from the capture path.
func (b *Buffer) Append(samples []float32) {
	if len(samples) == 0 {
		return
	}
	b.mu.Lock()
	b.samples = append(b.samples, samples...)
	b.mu.Unlock()
}

// AppendFrames downmixes interleaved frames to mono by averaging and keeps
// every factor-th frame (decimation, not filtered resampling), then appends.
func (b *Buffer) AppendFrames(frames []float32, channels int, factor int) {
	if channels < 1 {
		channels = 1
	}
	if factor < 1 {
		factor = 1
	}

	mono := make([]float32, 0, len(frames)/(channels*factor)+1)
	for i := 0; i+channels <= len(frames); i += channels {
		frame := i / channels
		if frame%factor != 0 {
			continue
		}
		var sum float32
		for c := 0; c < channels; c++ {
			sum += frames[i+c]
		}
		mono = append(mono, sum/float32(channels))
	}
	b.Append(mono)
}

// Clear drops all accumulated samples.
func (b *Buffer) Clear() {
	b.mu.Lock()
	b.samples = b.samples[:0]
	b.mu.Unlock()
}

// Snapshot copies the accumulated samples without draining them.
func (b *Buffer) Snapshot() []float32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]float32, len(b.samples))
	copy(out, b.samples)
	return out
}

// Len reports the number of buffered samples.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.samples)
}

// RMS computes root-mean-square energy over the most recent min(len, window)
// samples. Returns 0 for an empty buffer.
func (b *Buffer) RMS(window int) float32 {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := len(b.samples)
	if window > 0 && n > window {
		n = window
	}
	if n == 0 {
		return 0
	}

	var sumSq float64
	for _, s := range b.samples[len(b.samples)-n:] {
		sumSq += float64(s) * float64(s)
	}
	return float32(math.Sqrt(sumSq / float64(n)))
}
