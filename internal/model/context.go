package model

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// ggml model files start with this magic value (little-endian on disk).
const ggmlMagic uint32 = 0x67676d6c

// Context is a loaded, ready-to-transcribe model. It pins the model
// file and the whisper CLI binary resolved at load time.
type Context struct {
	modelPath  string
	binaryPath string
	tempDir    string
}

// Load validates the model file and resolves the transcription binary.
// Reading and checking the artifact is disk-heavy for larger models;
// callers should treat this as a blocking operation.
func Load(dir, name string) (*Context, error) {
	modelPath := Path(dir, name)
	if err := validateModelFile(modelPath); err != nil {
		return nil, err
	}

	binaryPath, err := findWhisperBinary()
	if err != nil {
		return nil, err
	}

	tempDir, err := os.MkdirTemp("", "parla-")
	if err != nil {
		return nil, fmt.Errorf("create temp directory: %w", err)
	}

	return &Context{
		modelPath:  modelPath,
		binaryPath: binaryPath,
		tempDir:    tempDir,
	}, nil
}

// ModelPath returns the path of the loaded model file.
func (c *Context) ModelPath() string {
	return c.modelPath
}

// Close releases the scratch directory used for intermediate audio.
func (c *Context) Close() error {
	if c.tempDir == "" {
		return nil
	}
	return os.RemoveAll(c.tempDir)
}

// Transcribe converts 16 kHz mono samples to text. CPU-heavy; callers
// should run it on a blocking slot.
func (c *Context) Transcribe(ctx context.Context, samples []float32) (string, error) {
	wavPath := filepath.Join(c.tempDir, fmt.Sprintf("audio_%d.wav", time.Now().UnixNano()))
	if err := writeWAVFile(wavPath, samples, TargetSampleRate); err != nil {
		return "", fmt.Errorf("write capture wav: %w", err)
	}
	defer os.Remove(wavPath)

	args := []string{
		"--model", c.modelPath,
		"--language", "en",
		"--no-prints",
		wavPath,
	}

	cmd := exec.CommandContext(ctx, c.binaryPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("run whisper: %w, stderr: %s", err, strings.TrimSpace(stderr.String()))
	}

	return cleanTranscript(stdout.String()), nil
}

// cleanTranscript joins whisper CLI output lines, stripping the
// `[ts --> ts]` prefixes the tool emits per segment.
func cleanTranscript(raw string) string {
	var parts []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "[") {
			if idx := strings.Index(line, "]"); idx != -1 && strings.Contains(line[:idx], "-->") {
				line = strings.TrimSpace(line[idx+1:])
			}
		}
		if line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, " ")
}

func validateModelFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open model file: %w", err)
	}
	defer f.Close()

	var magic uint32
	if err := binary.Read(f, binary.LittleEndian, &magic); err != nil {
		return fmt.Errorf("read model header: %w", err)
	}
	if magic != ggmlMagic {
		return fmt.Errorf("model file %q is not a ggml model", path)
	}
	return nil
}

func findWhisperBinary() (string, error) {
	for _, name := range []string{"whisper-cli", "whisper-cpp", "whisper"} {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	for _, loc := range []string{
		"/usr/local/bin/whisper-cli",
		"/usr/bin/whisper-cli",
		"/opt/homebrew/bin/whisper-cli",
	} {
		if _, err := os.Stat(loc); err == nil {
			return loc, nil
		}
	}
	return "", fmt.Errorf("whisper binary not found in PATH")
}
