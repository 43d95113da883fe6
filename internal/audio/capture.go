package audio

import (
	"fmt"
	"sync"

	"github.com/jfreymuth/pulse"
)

// TargetRate is the capture rate the transcription engine expects.
const TargetRate = 16000

// Capture is the ownership token for one live input stream. Stopping it is
// what silences the microphone.
type Capture struct {
	device Device
	rate   int

	client *pulse.Client
	stream *pulse.RecordStream

	mu      sync.Mutex
	stopped bool
}

// StartCapture opens the selected source and streams mono float samples into
// the shared buffer at TargetRate. The Pulse server converts the source's
// native spec to the requested one; when a caller wires a raw multi-channel
// or high-rate feed instead, captureWriter downmixes and decimates inline.
func StartCapture(selected Device, buffer *Buffer) (*Capture, error) {
	client, err := pulse.NewClient(
		pulse.ClientApplicationName("parla"),
		pulse.ClientApplicationIconName("audio-input-microphone"),
	)
	if err != nil {
		return nil, fmt.Errorf("connect pulse server: %w", err)
	}

	source, err := client.SourceByID(selected.ID)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("resolve source %q: %w", selected.ID, err)
	}

	writer := captureWriter{buffer: buffer, channels: 1, factor: 1}
	stream, err := client.NewRecord(
		pulse.Float32Writer(writer.write),
		pulse.RecordSource(source),
		pulse.RecordMono,
		pulse.RecordSampleRate(TargetRate),
		pulse.RecordMediaName("parla dictation"),
	)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("create pulse record stream: %w", err)
	}

	capture := &Capture{
		device: selected,
		rate:   TargetRate,
		client: client,
		stream: stream,
	}
	stream.Start()

	return capture, nil
}

// Device returns capture metadata for logging and diagnostics.
func (c *Capture) Device() Device {
	return c.device
}

// SampleRate reports the effective rate of samples landing in the buffer.
func (c *Capture) SampleRate() int {
	return c.rate
}

// Stop releases the stream and server connection exactly once.
func (c *Capture) Stop() error {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return nil
	}
	c.stopped = true
	c.mu.Unlock()

	if c.stream != nil {
		c.stream.Stop()
		c.stream.Close()
	}
	if c.client != nil {
		c.client.Close()
	}
	return nil
}

// captureWriter is the real-time callback appending to the shared buffer.
// It holds no locks of its own; Buffer keeps its critical section tiny.
type captureWriter struct {
	buffer   *Buffer
	channels int
	factor   int
}

func (w captureWriter) write(frames []float32) (int, error) {
	if w.channels == 1 && w.factor == 1 {
		w.buffer.Append(frames)
	} else {
		w.buffer.AppendFrames(frames, w.channels, w.factor)
	}
	return len(frames), nil
}
