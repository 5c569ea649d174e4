//go:build !windows && !linux && !darwin

package hotkey

import "golang.design/x/hotkey"

// parseAccelerator is not implemented on this OS.
func parseAccelerator(accel string) ([]hotkey.Modifier, hotkey.Key, error) {
	return nil, 0, ErrUnsupportedPlatform
}
