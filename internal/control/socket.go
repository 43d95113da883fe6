package control

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrAlreadyRunning reports a live daemon already owning the socket.
var ErrAlreadyRunning = errors.New("parla is already running")

// SocketPath resolves the per-user control socket location.
func SocketPath() (string, error) {
	runtimeDir := strings.TrimSpace(os.Getenv("XDG_RUNTIME_DIR"))
	if runtimeDir == "" {
		return "", errors.New("XDG_RUNTIME_DIR is not set")
	}
	return filepath.Join(runtimeDir, "parla.sock"), nil
}

// Acquire binds the control socket, recovering from a stale socket file left
// by a crashed daemon. A responsive listener on the path means another
// instance owns it and Acquire returns ErrAlreadyRunning.
func Acquire(ctx context.Context, path string, probeTimeout time.Duration, retries int) (net.Listener, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("ensure runtime socket dir: %w", err)
	}

	for attempt := 0; ; attempt++ {
		listener, err := net.Listen("unix", path)
		switch {
		case err == nil:
			_ = os.Chmod(path, 0o600)
			return listener, nil
		case !isAddrInUse(err):
			return nil, fmt.Errorf("listen unix %s: %w", path, err)
		}

		if err := clearStaleSocket(ctx, path, probeTimeout); err != nil {
			return nil, err
		}

		if attempt >= retries {
			return nil, fmt.Errorf("failed to acquire socket %s after %d retries", path, retries)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(25*(attempt+1)) * time.Millisecond):
		}
	}
}

// clearStaleSocket unlinks a leftover socket file once the probe confirms
// nothing answers on it.
func clearStaleSocket(ctx context.Context, path string, probeTimeout time.Duration) error {
	alive, probeErr := Probe(ctx, path, probeTimeout)
	if alive {
		return ErrAlreadyRunning
	}
	if probeErr != nil {
		return fmt.Errorf("probe existing socket %s: %w", path, probeErr)
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove stale socket %s: %w", path, err)
	}
	return nil
}

func isAddrInUse(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "address already in use")
}
