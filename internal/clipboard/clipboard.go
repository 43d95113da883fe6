// Package clipboard writes committed prompts to the system clipboard.
package clipboard

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"time"

	atotto "github.com/atotto/clipboard"
)

const copyTimeout = 2 * time.Second

// Writer copies text to the system clipboard, preferring the native
// clipboard bindings and falling back to a session-appropriate tool.
type Writer struct {
	native       func(string) error
	fallbackArgv []string
	logger       *slog.Logger
}

// NewWriter constructs a clipboard writer for the current session.
func NewWriter(logger *slog.Logger) *Writer {
	w := &Writer{
		fallbackArgv: detectFallbackArgv(),
		logger:       logger,
	}
	if !atotto.Unsupported {
		w.native = atotto.WriteAll
	}
	return w
}

// Copy places text on the clipboard. Empty text is a no-op.
func (w *Writer) Copy(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}

	if w.native != nil {
		if err := w.native(text); err == nil {
			return nil
		} else if w.logger != nil {
			w.logger.Debug("native clipboard write failed, trying fallback tool", "error", err.Error())
		}
	}

	copyCtx, cancel := context.WithTimeout(ctx, copyTimeout)
	defer cancel()
	if err := runCommandWithInput(copyCtx, w.fallbackArgv, text); err != nil {
		return fmt.Errorf("set clipboard: %w", err)
	}
	return nil
}

// detectFallbackArgv picks the clipboard tool for this platform and
// session: pbcopy on macOS, wl-copy under Wayland, xclip otherwise.
func detectFallbackArgv() []string {
	if runtime.GOOS == "darwin" {
		return []string{"pbcopy"}
	}
	if os.Getenv("XDG_SESSION_TYPE") == "wayland" {
		return []string{"wl-copy"}
	}
	return []string{"xclip", "-selection", "clipboard"}
}

// runCommandWithInput executes argv and writes input to its stdin.
func runCommandWithInput(ctx context.Context, argv []string, input string) error {
	if len(argv) == 0 {
		return fmt.Errorf("command argv cannot be empty")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("open stdin for %s: %w", argv[0], err)
	}

	if err := cmd.Start(); err != nil {
		_ = stdin.Close()
		return fmt.Errorf("start command %s: %w", argv[0], err)
	}

	if input != "" {
		if _, err := stdin.Write([]byte(input)); err != nil {
			_ = stdin.Close()
			_ = cmd.Wait()
			return fmt.Errorf("write stdin for %s: %w", argv[0], err)
		}
	}
	_ = stdin.Close()

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("wait for %s: %w", argv[0], err)
	}
	return nil
}
