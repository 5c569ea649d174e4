//go:build darwin

package hotkey

import (
	"fmt"
	"strings"

	"golang.design/x/hotkey"
)

// parseAccelerator converts a platform-neutral accelerator string
// (e.g. "ctrl+alt+space") into golang.design/x/hotkey modifiers and key.
// On macOS "alt" maps to Option and "cmd"/"super" to Command.
func parseAccelerator(accel string) ([]hotkey.Modifier, hotkey.Key, error) {
	parts := strings.Split(strings.ToLower(accel), "+")
	var modifiers []hotkey.Modifier

	keyStr := parts[len(parts)-1]
	key, exists := KeyMap[keyStr]
	if !exists {
		return nil, 0, fmt.Errorf("unsupported key: %s", keyStr)
	}

	for _, part := range parts[:len(parts)-1] {
		switch part {
		case "ctrl":
			modifiers = append(modifiers, hotkey.ModCtrl)
		case "alt", "option":
			modifiers = append(modifiers, hotkey.ModOption)
		case "shift":
			modifiers = append(modifiers, hotkey.ModShift)
		case "super", "win", "cmd":
			modifiers = append(modifiers, hotkey.ModCmd)
		default:
			return nil, 0, fmt.Errorf("unsupported modifier: %s", part)
		}
	}

	return modifiers, key, nil
}
