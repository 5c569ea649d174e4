package shortcuts

// ID names one of the fixed application shortcuts.
type ID string

const (
	// QuickOpen summons the chat window from anywhere.
	QuickOpen ID = "quick_open"
	// HideToTray hides the window into the tray from anywhere.
	HideToTray ID = "hide_to_tray"
	// VoiceInput toggles voice capture from anywhere.
	VoiceInput ID = "voice_input"
	// AlwaysOnTop pins the window above others; only meaningful with focus.
	AlwaysOnTop ID = "always_on_top"
	// ExportPDF exports the current conversation; only meaningful with focus.
	ExportPDF ID = "export_pdf"
)

// Scope distinguishes OS-wide shortcuts from ones that only matter while a
// window has focus (those are surfaced through menu accelerators instead).
type Scope int

const (
	ScopeGlobal Scope = iota
	ScopeApplication
)

type definition struct {
	scope       Scope
	defaultKeys string
	description string
}

var definitions = map[ID]definition{
	QuickOpen:   {ScopeGlobal, "ctrl+alt+space", "Open the chat window"},
	HideToTray:  {ScopeGlobal, "ctrl+alt+h", "Hide the chat window to the tray"},
	VoiceInput:  {ScopeGlobal, "ctrl+shift+m", "Toggle voice input"},
	AlwaysOnTop: {ScopeApplication, "ctrl+t", "Keep the window always on top"},
	ExportPDF:   {ScopeApplication, "ctrl+shift+e", "Export the conversation as PDF"},
}

// idOrder fixes iteration order for registration batches and menus.
var idOrder = []ID{QuickOpen, HideToTray, VoiceInput, AlwaysOnTop, ExportPDF}

// All returns every known shortcut id in stable order.
func All() []ID {
	out := make([]ID, len(idOrder))
	copy(out, idOrder)
	return out
}

// Valid reports whether id names a known shortcut.
func (id ID) Valid() bool {
	_, ok := definitions[id]
	return ok
}

// Scope returns whether the shortcut is OS-wide or window-scoped.
func (id ID) Scope() Scope {
	return definitions[id].scope
}

// DefaultAccelerator returns the built-in key combination for id.
func (id ID) DefaultAccelerator() string {
	return definitions[id].defaultKeys
}

// Description returns the human-readable purpose of the shortcut, shown in
// the portal permission dialog and the tray menu.
func (id ID) Description() string {
	return definitions[id].description
}
