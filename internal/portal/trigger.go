package portal

import "strings"

// triggerKeyNames maps the keys that differ between our accelerator strings
// and XKB keysym names used in portal trigger descriptions.
var triggerKeyNames = map[string]string{
	"enter":  "Return",
	"escape": "Escape",
	"tab":    "Tab",
	"space":  "space",
}

// accelToTrigger converts a platform-neutral accelerator string such as
// "ctrl+alt+space" into the XDG shortcuts-spec trigger format the portal
// expects as preferred_trigger, e.g. "CTRL+ALT+space".
func accelToTrigger(accel string) string {
	parts := strings.Split(strings.ToLower(accel), "+")
	if len(parts) == 0 {
		return ""
	}

	out := make([]string, 0, len(parts))
	for _, part := range parts[:len(parts)-1] {
		switch part {
		case "ctrl":
			out = append(out, "CTRL")
		case "alt", "option":
			out = append(out, "ALT")
		case "shift":
			out = append(out, "SHIFT")
		case "super", "win", "cmd":
			out = append(out, "LOGO")
		}
	}

	key := parts[len(parts)-1]
	if name, ok := triggerKeyNames[key]; ok {
		key = name
	} else if len(key) > 1 {
		// Multi-character keysyms (F1..F12) are capitalized.
		key = strings.ToUpper(key[:1]) + key[1:]
	}

	return strings.Join(append(out, key), "+")
}
