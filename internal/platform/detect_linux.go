//go:build linux

package platform

import (
	"os"

	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog/log"
)

const (
	portalBusName         = "org.freedesktop.portal.Desktop"
	portalObjectPath      = "/org/freedesktop/portal/desktop"
	globalShortcutsIface  = "org.freedesktop.portal.GlobalShortcuts"
	propertyVersionMember = "version"
)

// Detect inspects the current session and returns a fresh status snapshot.
// It only reads environment and session-bus state; probe failures degrade to
// PortalAvailable=false rather than errors.
func Detect() Status {
	isWayland := os.Getenv("XDG_SESSION_TYPE") == "wayland" ||
		os.Getenv("WAYLAND_DISPLAY") != ""

	env := parseDesktopEnv(os.Getenv("XDG_CURRENT_DESKTOP"))
	version := desktopEnvVersion(env)

	status := Status{
		IsWaylandSession:  isWayland,
		DesktopEnv:        env,
		DesktopEnvName:    env.String(),
		DesktopEnvVersion: version,
		LastMethodUsed:    MethodNone,
		LastMethodName:    MethodNone.String(),
	}

	// Only probe the portal when it could matter; X11 sessions go native.
	if isWayland {
		status.PortalAvailable = probeGlobalShortcutsPortal()
	}

	log.Debug().
		Bool("wayland", status.IsWaylandSession).
		Str("desktop", status.DesktopEnvName).
		Str("desktop_version", status.DesktopEnvVersion).
		Bool("portal", status.PortalAvailable).
		Msg("detected platform status")

	return status
}

// desktopEnvVersion reads the DE version where the session exposes one.
func desktopEnvVersion(env DesktopEnv) string {
	switch env {
	case DesktopKDE:
		return os.Getenv("KDE_SESSION_VERSION")
	case DesktopHyprland:
		return os.Getenv("HYPRLAND_INSTANCE_SIGNATURE")
	default:
		return ""
	}
}

// probeGlobalShortcutsPortal checks whether the GlobalShortcuts portal is
// reachable on the session bus. Any failure means "not available".
func probeGlobalShortcutsPortal() bool {
	if os.Getenv("DBUS_SESSION_BUS_ADDRESS") == "" {
		log.Debug().Msg("no session bus address, portal unavailable")
		return false
	}

	conn, err := dbus.SessionBus()
	if err != nil {
		log.Warn().Err(err).Msg("session bus connect failed during portal probe")
		return false
	}

	obj := conn.Object(portalBusName, portalObjectPath)
	variant, err := obj.GetProperty(globalShortcutsIface + "." + propertyVersionMember)
	if err != nil {
		log.Debug().Err(err).Msg("GlobalShortcuts portal not exposed")
		return false
	}

	version, ok := variant.Value().(uint32)
	if !ok || version < 1 {
		log.Debug().Interface("version", variant.Value()).Msg("unusable GlobalShortcuts portal version")
		return false
	}

	log.Debug().Uint32("version", version).Msg("GlobalShortcuts portal available")
	return true
}
