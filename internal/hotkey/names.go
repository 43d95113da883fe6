package hotkey

import "fmt"

// evdev key codes used across matching and naming.
const (
	codeEsc        uint16 = 1
	codeBackspace  uint16 = 14
	codeTab        uint16 = 15
	codeEnter      uint16 = 28
	codeLeftCtrl   uint16 = 29
	codeLeftShift  uint16 = 42
	codeRightShift uint16 = 54
	codeLeftAlt    uint16 = 56
	codeSpace      uint16 = 57
	codeRightCtrl  uint16 = 97
	codeRightAlt   uint16 = 100
	codeLeftMeta   uint16 = 125
	codeRightMeta  uint16 = 126
)

// IsModifier reports whether a key code is a modifier (ctrl/shift/alt/super).
func IsModifier(code uint16) bool {
	switch code {
	case codeLeftCtrl, codeRightCtrl,
		codeLeftShift, codeRightShift,
		codeLeftAlt, codeRightAlt,
		codeLeftMeta, codeRightMeta:
		return true
	default:
		return false
	}
}

// modifierName maps a modifier code to its human-readable name, or "".
func modifierName(code uint16) string {
	switch code {
	case codeLeftCtrl, codeRightCtrl:
		return "Ctrl"
	case codeLeftShift, codeRightShift:
		return "Shift"
	case codeLeftAlt, codeRightAlt:
		return "Alt"
	case codeLeftMeta, codeRightMeta:
		return "Super"
	default:
		return ""
	}
}

// printableNames covers the common trigger keys; anything else falls back to
// a numeric form.
var printableNames = map[uint16]string{
	codeEsc:       "Esc",
	codeBackspace: "Backspace",
	codeTab:       "Tab",
	codeEnter:     "Enter",
	codeSpace:     "Space",
	2:             "1", 3: "2", 4: "3", 5: "4", 6: "5",
	7: "6", 8: "7", 9: "8", 10: "9", 11: "0",
	16: "Q", 17: "W", 18: "E", 19: "R", 20: "T",
	21: "Y", 22: "U", 23: "I", 24: "O", 25: "P",
	30: "A", 31: "S", 32: "D", 33: "F", 34: "G",
	35: "H", 36: "J", 37: "K", 38: "L",
	44: "Z", 45: "X", 46: "C", 47: "V", 48: "B",
	49: "N", 50: "M",
	59: "F1", 60: "F2", 61: "F3", 62: "F4", 63: "F5",
	64: "F6", 65: "F7", 66: "F8", 67: "F9", 68: "F10",
	87: "F11", 88: "F12",
}

// triggerName names a non-modifier key.
func triggerName(code uint16) string {
	if name, ok := printableNames[code]; ok {
		return name
	}
	return fmt.Sprintf("Key%d", code)
}
