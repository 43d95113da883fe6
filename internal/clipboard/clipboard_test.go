package clipboard

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunCommandWithInputWritesStdin(t *testing.T) {
	scriptPath := writeStdinCaptureScript(t)
	outputPath := filepath.Join(t.TempDir(), "stdin.txt")

	err := runCommandWithInput(context.Background(), []string{scriptPath, outputPath}, "hello from parla")
	require.NoError(t, err)

	data, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	require.Equal(t, "hello from parla", string(data))
}

func TestRunCommandWithInputRejectsEmptyArgv(t *testing.T) {
	err := runCommandWithInput(context.Background(), nil, "payload")
	require.Error(t, err)
	require.Contains(t, err.Error(), "argv cannot be empty")
}

func TestRunCommandWithInputPropagatesFailure(t *testing.T) {
	failScript := writeFailScript(t, "copy failed")

	err := runCommandWithInput(context.Background(), []string{failScript}, "payload")
	require.Error(t, err)
	require.Contains(t, err.Error(), "wait for")
}

func TestCopyEmptyTextIsNoop(t *testing.T) {
	scriptPath := writeStdinCaptureScript(t)
	outputPath := filepath.Join(t.TempDir(), "clipboard.txt")

	w := &Writer{fallbackArgv: []string{scriptPath, outputPath}}
	require.NoError(t, w.Copy(context.Background(), ""))

	_, statErr := os.Stat(outputPath)
	require.True(t, os.IsNotExist(statErr))
}

func TestCopyNativeFailureFallsBackToTool(t *testing.T) {
	scriptPath := writeStdinCaptureScript(t)
	outputPath := filepath.Join(t.TempDir(), "clipboard.txt")

	w := &Writer{
		native:       func(string) error { return errors.New("no display") },
		fallbackArgv: []string{scriptPath, outputPath},
	}
	require.NoError(t, w.Copy(context.Background(), "captured prompt"))

	data, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	require.Equal(t, "captured prompt", string(data))
}

func TestCopyFallbackFailureSurfaces(t *testing.T) {
	failScript := writeFailScript(t, "clipboard failed")

	w := &Writer{fallbackArgv: []string{failScript}}
	err := w.Copy(context.Background(), "captured prompt")
	require.Error(t, err)
	require.Contains(t, err.Error(), "set clipboard")
}

func TestCopyNativeSuccessSkipsFallback(t *testing.T) {
	failScript := writeFailScript(t, "should not run")

	var copied string
	w := &Writer{
		native:       func(text string) error { copied = text; return nil },
		fallbackArgv: []string{failScript},
	}
	require.NoError(t, w.Copy(context.Background(), "captured prompt"))
	require.Equal(t, "captured prompt", copied)
}

func TestDetectFallbackArgvHonorsSessionType(t *testing.T) {
	if runtime.GOOS == "darwin" {
		t.Skip("darwin always uses pbcopy")
	}

	t.Setenv("XDG_SESSION_TYPE", "wayland")
	require.Equal(t, []string{"wl-copy"}, detectFallbackArgv())

	t.Setenv("XDG_SESSION_TYPE", "x11")
	require.Equal(t, []string{"xclip", "-selection", "clipboard"}, detectFallbackArgv())
}

func writeStdinCaptureScript(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "capture-stdin.sh")
	script := `#!/usr/bin/env bash
set -euo pipefail
cat > "$1"
`
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func writeFailScript(t *testing.T, message string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "fail.sh")
	script := "#!/usr/bin/env bash\nset -euo pipefail\necho \"" + message + "\" >&2\nexit 1\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}
