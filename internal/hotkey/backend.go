package hotkey

import "errors"

// ErrUnsupportedPlatform is returned when the native shortcut facility does
// not exist on the current OS/session combination.
var ErrUnsupportedPlatform = errors.New("native hotkeys not supported on this platform")

// Backend abstracts the OS-native global shortcut facility so the
// orchestrator can be exercised against a fake in tests.
type Backend interface {
	// Register binds accel OS-wide and invokes onKeydown on every press.
	// Registering an accelerator that is already bound is a no-op.
	Register(accel string, onKeydown func()) error

	// Unregister releases a previously bound accelerator. Unknown
	// accelerators are ignored.
	Unregister(accel string) error

	// UnregisterAll releases every accelerator bound by this backend.
	UnregisterAll()
}
