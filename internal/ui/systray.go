package ui

import (
	"fmt"
	"sync"

	"github.com/deskchat/deskchat/internal/shortcuts"
	"github.com/getlantern/systray"
	"github.com/rs/zerolog/log"
)

// SystrayManager owns the tray icon and menu. It is the orchestrator's menu
// collaborator: enable/accelerator changes flow in through the callbacks and
// state changes flow back via the shortcuts.Listener methods.
type SystrayManager struct {
	version      string
	embeddedIcon []byte

	onOpenChat       func()
	onToggleHotkey   func(id shortcuts.ID, enabled bool)
	onChangeShortcut func(id shortcuts.ID)
	onShowStatus     func()
	onReloadSettings func()
	onQuit           func()

	settings     func() map[shortcuts.ID]bool
	accelerators func() map[shortcuts.ID]string

	// Local mirror of enabled/accelerator state. The Listener methods run
	// with orchestrator state held, so they must not query back into it.
	mu    sync.Mutex
	items map[shortcuts.ID]*hotkeyMenuItem
	state map[shortcuts.ID]hotkeyState
}

type hotkeyState struct {
	enabled bool
	accel   string
}

type hotkeyMenuItem struct {
	parent *systray.MenuItem
	toggle *systray.MenuItem
	change *systray.MenuItem
}

// Callbacks wires a SystrayManager.
type Callbacks struct {
	OnOpenChat       func()
	OnToggleHotkey   func(id shortcuts.ID, enabled bool)
	OnChangeShortcut func(id shortcuts.ID)
	OnShowStatus     func()
	OnReloadSettings func()
	OnQuit           func()
	Settings         func() map[shortcuts.ID]bool
	Accelerators     func() map[shortcuts.ID]string
}

// NewSystrayManager creates a new system tray manager.
func NewSystrayManager(version string, embeddedIcon []byte, cb Callbacks) *SystrayManager {
	return &SystrayManager{
		version:          version,
		embeddedIcon:     embeddedIcon,
		onOpenChat:       cb.OnOpenChat,
		onToggleHotkey:   cb.OnToggleHotkey,
		onChangeShortcut: cb.OnChangeShortcut,
		onShowStatus:     cb.OnShowStatus,
		onReloadSettings: cb.OnReloadSettings,
		onQuit:           cb.OnQuit,
		settings:         cb.Settings,
		accelerators:     cb.Accelerators,
		items:            make(map[shortcuts.ID]*hotkeyMenuItem),
		state:            make(map[shortcuts.ID]hotkeyState),
	}
}

// Run starts the tray loop. Blocks until Quit.
func (s *SystrayManager) Run() {
	systray.Run(s.onReady, s.onExit)
}

func (s *SystrayManager) onReady() {
	systray.SetTitle("DeskChat")
	systray.SetTooltip(fmt.Sprintf("DeskChat %s", s.version))
	if len(s.embeddedIcon) > 0 {
		systray.SetIcon(s.embeddedIcon)
	}

	miVersion := systray.AddMenuItem(fmt.Sprintf("DeskChat %s", s.version), "DeskChat version")
	miVersion.Disable()

	miOpen := systray.AddMenuItem("Open Chat", "Show the chat window")
	go func() {
		for range miOpen.ClickedCh {
			if s.onOpenChat != nil {
				s.onOpenChat()
			}
		}
	}()

	systray.AddSeparator()
	s.addHotkeyItems()
	systray.AddSeparator()

	miStatus := systray.AddMenuItem("Hotkey Status…", "Show which shortcuts are registered")
	go func() {
		for range miStatus.ClickedCh {
			if s.onShowStatus != nil {
				s.onShowStatus()
			}
		}
	}()

	miReload := systray.AddMenuItem("Reload Settings", "Reload settings from the config file")
	go func() {
		for range miReload.ClickedCh {
			if s.onReloadSettings != nil {
				s.onReloadSettings()
			}
		}
	}()

	miQuit := systray.AddMenuItem("Quit", "Exit DeskChat")
	go func() {
		<-miQuit.ClickedCh
		if s.onQuit != nil {
			s.onQuit()
		}
		systray.Quit()
		log.Info().Msg("exiting application")
	}()
}

func (s *SystrayManager) addHotkeyItems() {
	enabled := s.settings()
	accels := s.accelerators()

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range shortcuts.All() {
		id := id
		parent := systray.AddMenuItem(hotkeyTitle(id, enabled[id], accels[id]), id.Description())
		toggle := parent.AddSubMenuItem(toggleTitle(enabled[id]), "Enable or disable this shortcut")
		change := parent.AddSubMenuItem("Change Shortcut…", "Pick a new key combination")

		s.items[id] = &hotkeyMenuItem{parent: parent, toggle: toggle, change: change}
		s.state[id] = hotkeyState{enabled: enabled[id], accel: accels[id]}

		go func() {
			for range toggle.ClickedCh {
				if s.onToggleHotkey != nil {
					s.onToggleHotkey(id, !s.settings()[id])
				}
			}
		}()
		go func() {
			for range change.ClickedCh {
				if s.onChangeShortcut != nil {
					s.onChangeShortcut(id)
				}
			}
		}()
	}
}

// EnabledChanged implements shortcuts.Listener.
func (s *SystrayManager) EnabledChanged(id shortcuts.ID, enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state[id]
	st.enabled = enabled
	s.state[id] = st

	item, ok := s.items[id]
	if !ok {
		return
	}
	item.parent.SetTitle(hotkeyTitle(id, st.enabled, st.accel))
	item.toggle.SetTitle(toggleTitle(enabled))
}

// AcceleratorChanged implements shortcuts.Listener.
func (s *SystrayManager) AcceleratorChanged(id shortcuts.ID, accel string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state[id]
	st.accel = accel
	s.state[id] = st

	item, ok := s.items[id]
	if !ok {
		return
	}
	item.parent.SetTitle(hotkeyTitle(id, st.enabled, st.accel))
}

func (s *SystrayManager) onExit() {}

func hotkeyTitle(id shortcuts.ID, enabled bool, accel string) string {
	mark := "  "
	if enabled {
		mark = "✓ "
	}
	return fmt.Sprintf("%s%s (%s)", mark, id.Description(), accel)
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "Disable"
	}
	return "Enable"
}
