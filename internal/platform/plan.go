package platform

// Mode is the registration strategy a session must use for global shortcuts.
type Mode int

const (
	// ModeNative registers directly with the OS shortcut facility
	// (Windows, macOS, X11).
	ModeNative Mode = iota
	// ModePortal registers through the XDG desktop portal broker
	// (Wayland with a reachable GlobalShortcuts portal).
	ModePortal
	// ModeDisabled means the session cannot register global shortcuts at all
	// (Wayland without a usable portal).
	ModeDisabled
)

func (m Mode) String() string {
	switch m {
	case ModeNative:
		return "native"
	case ModePortal:
		return "portal"
	default:
		return "disabled"
	}
}

// Plan is the resolved registration strategy together with the status it was
// derived from. Derived, never persisted.
type Plan struct {
	Mode   Mode
	Status Status
}

// Resolve maps a status snapshot to a registration plan. Pure and total:
// these three branches are the single source of truth for whether a session
// can register global shortcuts, and must stay exhaustive.
func Resolve(status Status) Plan {
	switch {
	case !status.IsWaylandSession:
		return Plan{Mode: ModeNative, Status: status}
	case status.PortalAvailable:
		return Plan{Mode: ModePortal, Status: status}
	default:
		return Plan{Mode: ModeDisabled, Status: status}
	}
}
