//go:build !linux

package platform

// Detect returns the status snapshot for non-Linux platforms. Windows and
// macOS always register through their native shortcut facilities, so the
// Wayland and portal fields are permanently false here.
func Detect() Status {
	env := DesktopNone
	return Status{
		IsWaylandSession: false,
		DesktopEnv:       env,
		DesktopEnvName:   env.String(),
		PortalAvailable:  false,
		LastMethodUsed:   MethodNone,
		LastMethodName:   MethodNone.String(),
	}
}
