package platform

import "testing"

func TestResolveModeTable(t *testing.T) {
	tests := []struct {
		name   string
		status Status
		want   Mode
	}{
		{"windows native", Status{IsWaylandSession: false, DesktopEnv: DesktopNone}, ModeNative},
		{"x11 kde", Status{IsWaylandSession: false, DesktopEnv: DesktopKDE}, ModeNative},
		{"x11 gnome", Status{IsWaylandSession: false, DesktopEnv: DesktopGNOME}, ModeNative},
		{"wayland kde with portal", Status{IsWaylandSession: true, DesktopEnv: DesktopKDE, PortalAvailable: true}, ModePortal},
		{"wayland gnome with portal", Status{IsWaylandSession: true, DesktopEnv: DesktopGNOME, PortalAvailable: true}, ModePortal},
		{"wayland hyprland with portal", Status{IsWaylandSession: true, DesktopEnv: DesktopHyprland, PortalAvailable: true}, ModePortal},
		{"wayland kde without portal", Status{IsWaylandSession: true, DesktopEnv: DesktopKDE, PortalAvailable: false}, ModeDisabled},
		{"wayland sway without portal", Status{IsWaylandSession: true, DesktopEnv: DesktopSway, PortalAvailable: false}, ModeDisabled},
		{"wayland unknown without portal", Status{IsWaylandSession: true, DesktopEnv: DesktopUnknown, PortalAvailable: false}, ModeDisabled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := Resolve(tt.status)
			if plan.Mode != tt.want {
				t.Errorf("Resolve() mode = %v, want %v", plan.Mode, tt.want)
			}
			if plan.Mode != ModeNative && plan.Mode != ModePortal && plan.Mode != ModeDisabled {
				t.Errorf("Resolve() returned undefined mode %d", plan.Mode)
			}
			if plan.Status != tt.status {
				t.Errorf("Resolve() must carry the input status through unchanged")
			}
		})
	}
}

// Resolve ignores the portal flag entirely on non-Wayland sessions; a stray
// portal on an X11 desktop must not flip the mode away from native.
func TestResolvePortalIgnoredOffWayland(t *testing.T) {
	plan := Resolve(Status{IsWaylandSession: false, PortalAvailable: true})
	if plan.Mode != ModeNative {
		t.Errorf("non-Wayland with portal = %v, want native", plan.Mode)
	}
}

func TestParseDesktopEnv(t *testing.T) {
	tests := []struct {
		value string
		want  DesktopEnv
	}{
		{"KDE", DesktopKDE},
		{"ubuntu:GNOME", DesktopGNOME},
		{"GNOME-Classic:GNOME", DesktopGNOME},
		{"Hyprland", DesktopHyprland},
		{"sway", DesktopSway},
		{"X-Cinnamon", DesktopOther},
		{"", DesktopUnknown},
	}

	for _, tt := range tests {
		if got := parseDesktopEnv(tt.value); got != tt.want {
			t.Errorf("parseDesktopEnv(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestWithMethodDoesNotMutate(t *testing.T) {
	base := Status{IsWaylandSession: true, PortalAvailable: true}
	updated := base.WithMethod(MethodPortal)

	if base.LastMethodUsed != MethodNone {
		t.Error("WithMethod mutated the original status")
	}
	if updated.LastMethodUsed != MethodPortal || updated.LastMethodName != "portal" {
		t.Errorf("WithMethod = %v/%q, want portal", updated.LastMethodUsed, updated.LastMethodName)
	}
}
