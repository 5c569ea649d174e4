package platform

import "strings"

// DesktopEnv identifies the desktop environment of the current session.
type DesktopEnv int

const (
	DesktopUnknown DesktopEnv = iota
	DesktopNone               // non-Linux, or headless
	DesktopKDE
	DesktopGNOME
	DesktopHyprland
	DesktopSway
	DesktopOther
)

func (d DesktopEnv) String() string {
	switch d {
	case DesktopNone:
		return "none"
	case DesktopKDE:
		return "KDE"
	case DesktopGNOME:
		return "GNOME"
	case DesktopHyprland:
		return "Hyprland"
	case DesktopSway:
		return "Sway"
	case DesktopOther:
		return "other"
	default:
		return "unknown"
	}
}

// Method records which registration path actually ran last.
type Method int

const (
	MethodNone Method = iota
	MethodNative
	MethodPortal
)

func (m Method) String() string {
	switch m {
	case MethodNative:
		return "native"
	case MethodPortal:
		return "portal"
	default:
		return "none"
	}
}

// Status is an immutable snapshot of the session environment, produced fresh
// on every registration attempt and replaced wholesale, never mutated.
type Status struct {
	IsWaylandSession  bool       `json:"is_wayland_session"`
	DesktopEnv        DesktopEnv `json:"-"`
	DesktopEnvName    string     `json:"desktop_env"`
	DesktopEnvVersion string     `json:"desktop_env_version,omitempty"`
	PortalAvailable   bool       `json:"portal_available"`
	LastMethodUsed    Method     `json:"-"`
	LastMethodName    string     `json:"last_method_used"`
}

// WithMethod returns a copy of the status with the last-used method filled in.
func (s Status) WithMethod(m Method) Status {
	s.LastMethodUsed = m
	s.LastMethodName = m.String()
	return s
}

// parseDesktopEnv maps an XDG_CURRENT_DESKTOP value to a DesktopEnv.
// The variable is a colon-separated list, e.g. "ubuntu:GNOME".
func parseDesktopEnv(xdgCurrentDesktop string) DesktopEnv {
	if xdgCurrentDesktop == "" {
		return DesktopUnknown
	}
	for _, part := range strings.Split(xdgCurrentDesktop, ":") {
		switch strings.ToLower(strings.TrimSpace(part)) {
		case "kde", "plasma":
			return DesktopKDE
		case "gnome", "gnome-classic", "ubuntu-gnome":
			return DesktopGNOME
		case "hyprland":
			return DesktopHyprland
		case "sway":
			return DesktopSway
		}
	}
	return DesktopOther
}
