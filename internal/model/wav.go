package model

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// TargetSampleRate is the rate whisper expects; the capture path
// delivers samples at this rate already.
const TargetSampleRate = 16000

// writeWAVFile encodes samples as mono 16-bit PCM at path.
func writeWAVFile(path string, samples []float32, sampleRate int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := writeWAV(f, samples, sampleRate); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// writeWAV encodes samples as a mono 16-bit PCM RIFF stream.
func writeWAV(w io.Writer, samples []float32, sampleRate int) error {
	pcm := make([]int16, len(samples))
	for i, s := range samples {
		if s > 1.0 {
			s = 1.0
		}
		if s < -1.0 {
			s = -1.0
		}
		pcm[i] = int16(s * 32767)
	}

	const (
		numChannels   = uint16(1)
		bitsPerSample = uint16(16)
	)
	byteRate := uint32(sampleRate) * uint32(numChannels) * uint32(bitsPerSample) / 8
	blockAlign := numChannels * bitsPerSample / 8
	dataSize := uint32(len(pcm) * 2)

	if _, err := w.Write([]byte("RIFF")); err != nil {
		return fmt.Errorf("write riff header: %w", err)
	}
	fields := []any{
		uint32(36 + dataSize),
		[]byte("WAVE"),
		[]byte("fmt "),
		uint32(16),
		uint16(1), // PCM
		numChannels,
		uint32(sampleRate),
		byteRate,
		blockAlign,
		bitsPerSample,
		[]byte("data"),
		dataSize,
		pcm,
	}
	for _, field := range fields {
		if err := binary.Write(w, binary.LittleEndian, field); err != nil {
			return fmt.Errorf("write wav data: %w", err)
		}
	}
	return nil
}
