//go:build linux

package hotkey

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unsafe"

	"golang.org/x/sys/unix"
)

const (
	evKey = 0x01

	// input_event on 64-bit: 16-byte timeval + type + code + value.
	inputEventSize = 24

	keyCodeA = 30
)

// evdevSource reads raw key transitions from every /dev/input device that
// looks like a keyboard. This is the input layer itself, so triggers work
// regardless of display server or focused window.
type evdevSource struct {
	files []*os.File
	buf   [64 * inputEventSize]byte
}

// NewKeyEventSource opens all keyboard-capable evdev devices in nonblocking
// mode. Requires read access to /dev/input (typically the input group).
func NewKeyEventSource(logger *slog.Logger) (KeyEventSource, error) {
	entries, err := os.ReadDir("/dev/input")
	if err != nil {
		return nil, fmt.Errorf("read /dev/input: %w", err)
	}

	src := &evdevSource{}
	for _, entry := range entries {
		if !strings.HasPrefix(entry.Name(), "event") {
			continue
		}
		path := filepath.Join("/dev/input", entry.Name())

		file, err := os.OpenFile(path, os.O_RDONLY, 0)
		if err != nil {
			continue
		}
		if !isKeyboard(file.Fd()) {
			_ = file.Close()
			continue
		}
		if err := unix.SetNonblock(int(file.Fd()), true); err != nil {
			_ = file.Close()
			continue
		}

		if logger != nil {
			logger.Info("opened keyboard device", "path", path, "name", deviceName(file.Fd()))
		}
		src.files = append(src.files, file)
	}

	if len(src.files) == 0 {
		return nil, errors.New("no keyboard devices found; is the user in the input group?")
	}
	return src, nil
}

// Poll drains pending key transitions from every opened device.
func (s *evdevSource) Poll() ([]KeyEvent, error) {
	var events []KeyEvent
	for _, file := range s.files {
		for {
			n, err := file.Read(s.buf[:])
			if err != nil {
				// Nonblocking read with no data pending.
				break
			}
			for off := 0; off+inputEventSize <= n; off += inputEventSize {
				evType := binary.LittleEndian.Uint16(s.buf[off+16 : off+18])
				if evType != evKey {
					continue
				}
				code := binary.LittleEndian.Uint16(s.buf[off+18 : off+20])
				value := int32(binary.LittleEndian.Uint32(s.buf[off+20 : off+24]))
				switch value {
				case 1:
					events = append(events, KeyEvent{Code: code, State: KeyPressed})
				case 0:
					events = append(events, KeyEvent{Code: code, State: KeyReleased})
				}
				// value 2 is auto-repeat; the held set already has the key.
			}
		}
	}
	return events, nil
}

// Close releases every opened device.
func (s *evdevSource) Close() error {
	var firstErr error
	for _, file := range s.files {
		if err := file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.files = nil
	return firstErr
}

// isKeyboard reports whether a device supports EV_KEY and has a letter key,
// filtering out mice, power buttons, and similar single-purpose inputs.
func isKeyboard(fd uintptr) bool {
	var evBits [1]byte
	if err := ioctlEvBits(fd, 0, evBits[:]); err != nil {
		return false
	}
	if evBits[0]&(1<<evKey) == 0 {
		return false
	}

	var keyBits [(keyCodeA / 8) + 1]byte
	if err := ioctlEvBits(fd, evKey, keyBits[:]); err != nil {
		return false
	}
	return keyBits[keyCodeA/8]&(1<<(keyCodeA%8)) != 0
}

// deviceName reads the kernel-reported device name (EVIOCGNAME).
func deviceName(fd uintptr) string {
	var name [256]byte
	req := ioctlRead(0x06, len(name))
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, uintptr(req), uintptr(unsafe.Pointer(&name[0]))); errno != 0 {
		return "unknown"
	}
	return strings.TrimRight(string(name[:]), "\x00")
}

// ioctlEvBits fills buf with the device's event-type or key-code bitmap
// (EVIOCGBIT).
func ioctlEvBits(fd uintptr, evType int, buf []byte) error {
	req := ioctlRead(0x20+evType, len(buf))
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, uintptr(req), uintptr(unsafe.Pointer(&buf[0]))); errno != 0 {
		return errno
	}
	return nil
}

// ioctlRead builds a read-direction ioctl request in the 'E' (input) group.
func ioctlRead(nr int, size int) uint32 {
	const (
		iocRead   = 2
		dirShift  = 30
		sizeShift = 16
		typeShift = 8
	)
	return uint32(iocRead)<<dirShift | uint32(size)<<sizeShift | uint32('E')<<typeShift | uint32(nr)
}
