//go:build !linux

package hotkey

import "golang.design/x/hotkey"

func expandModifiers(modifiers []hotkey.Modifier) [][]hotkey.Modifier {
	// Lock-mask expansion is an X11 quirk; other platforms register once.
	return [][]hotkey.Modifier{modifiers}
}
