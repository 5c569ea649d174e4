package app

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/atotto/clipboard"
	"github.com/ncruces/zenity"
	"github.com/rs/zerolog"

	"github.com/deskchat/deskchat/internal/config"
	"github.com/deskchat/deskchat/internal/hotkey"
	"github.com/deskchat/deskchat/internal/portal"
	"github.com/deskchat/deskchat/internal/resources"
	"github.com/deskchat/deskchat/internal/shortcuts"
	"github.com/deskchat/deskchat/internal/ui"
)

const appName = "DeskChat"

// portalAppID identifies us to the desktop portal for shortcut binding.
const portalAppID = "io.deskchat.DeskChat"

// WindowHost is the surface the shortcut actions drive. The real chat
// window lives in the embedded web view; the tray process only needs
// this narrow slice of it.
type WindowHost interface {
	ShowChatWindow()
	HideToTray()
	ToggleAlwaysOnTop()
	ToggleVoiceInput()
	// ExportConversationPDF writes the current conversation to disk and
	// returns the written path.
	ExportConversationPDF() (string, error)
}

// Application wires config, the shortcut orchestrator, notifications and
// the tray menu together.
type Application struct {
	version string
	log     zerolog.Logger
	host    WindowHost

	mu  sync.Mutex
	cfg *config.Config

	iconData     []byte
	notifier     *ui.NotificationManager
	systray      *ui.SystrayManager
	orchestrator *shortcuts.Orchestrator
	watcher      *config.Watcher
}

// New creates the application instance.
func New(cfg *config.Config, version string, log zerolog.Logger, host WindowHost) *Application {
	a := &Application{
		version: version,
		log:     log.With().Str("component", "app").Logger(),
		host:    host,
		cfg:     cfg,
	}
	if a.host == nil {
		a.host = noopHost{log: a.log}
	}

	var err error
	a.iconData, err = resources.GetIcon()
	if err != nil {
		a.log.Warn().Err(err).Msg("failed to load embedded icon")
	}

	a.notifier = ui.NewNotificationManager(cfg.UseNotifications, appName, a.iconData)

	a.systray = ui.NewSystrayManager(version, a.iconData, ui.Callbacks{
		OnOpenChat:       a.host.ShowChatWindow,
		OnToggleHotkey:   a.onToggleHotkey,
		OnChangeShortcut: a.onChangeShortcut,
		OnShowStatus:     a.onShowStatus,
		OnReloadSettings: a.onReloadSettings,
		OnQuit:           a.onQuit,
		Settings:         func() map[shortcuts.ID]bool { return a.orchestrator.Settings() },
		Accelerators:     func() map[shortcuts.ID]string { return a.orchestrator.Accelerators() },
	})

	enabled := make(map[shortcuts.ID]bool)
	accels := make(map[shortcuts.ID]string)
	for _, id := range shortcuts.All() {
		enabled[id] = cfg.EnabledFor(string(id), true)
		accels[id] = cfg.AcceleratorFor(string(id), id.DefaultAccelerator())
	}

	a.orchestrator = shortcuts.New(shortcuts.Options{
		Log:          log,
		Native:       hotkey.NewSystemBackend(log),
		Broker:       portal.NewClient(portalAppID, log),
		Store:        (*configStore)(a),
		Listener:     a.systray,
		Actions:      a.actionTable(),
		Enabled:      enabled,
		Accelerators: accels,
	})

	return a
}

// Run registers shortcuts, starts the config watcher and enters the tray
// loop. Blocks until Quit.
func (a *Application) Run() {
	a.orchestrator.RegisterShortcuts()

	w, err := config.Watch(a.configPath(), a.onConfigFileChanged)
	if err != nil {
		a.log.Warn().Err(err).Msg("config watcher unavailable, edits require manual reload")
	} else {
		a.watcher = w
	}

	a.systray.Run()

	if a.watcher != nil {
		a.watcher.Close()
	}
	a.orchestrator.UnregisterAll()
}

func (a *Application) actionTable() map[shortcuts.ID]func() {
	return map[shortcuts.ID]func(){
		shortcuts.QuickOpen:   a.host.ShowChatWindow,
		shortcuts.HideToTray:  a.host.HideToTray,
		shortcuts.VoiceInput:  a.host.ToggleVoiceInput,
		shortcuts.AlwaysOnTop: a.host.ToggleAlwaysOnTop,
		shortcuts.ExportPDF:   a.onExportPDF,
	}
}

// onExportPDF exports the conversation and puts the resulting path on the
// clipboard so it can be pasted straight into a message.
func (a *Application) onExportPDF() {
	path, err := a.host.ExportConversationPDF()
	if err != nil {
		a.log.Error().Err(err).Msg("conversation export failed")
		a.notifier.Show("Export Failed", err.Error())
		return
	}
	if err := clipboard.WriteAll(path); err != nil {
		a.log.Warn().Err(err).Msg("could not copy exported path to clipboard")
	}
	a.notifier.Show("Conversation Exported", fmt.Sprintf("Saved to %s (path copied)", path))
}

func (a *Application) onToggleHotkey(id shortcuts.ID, enabled bool) {
	a.orchestrator.SetEnabled(id, enabled)
}

// onChangeShortcut prompts for a new accelerator and applies it. A blank
// or cancelled entry leaves the binding untouched.
func (a *Application) onChangeShortcut(id shortcuts.ID) {
	current := a.orchestrator.Accelerators()[id]
	accel, err := zenity.Entry(
		fmt.Sprintf("Enter new shortcut for %s\n(e.g., ctrl+alt+space)", id.Description()),
		zenity.Title(appName+" - Change Shortcut"),
		zenity.EntryText(current),
	)
	if err != nil {
		if !errors.Is(err, zenity.ErrCanceled) {
			a.log.Warn().Err(err).Msg("shortcut entry dialog failed")
		}
		return
	}
	accel = strings.TrimSpace(strings.ToLower(accel))
	if accel == "" {
		return
	}
	a.orchestrator.SetAccelerator(id, accel)
}

// onShowStatus pops a dialog describing the session and the outcome of the
// last registration attempt per shortcut.
func (a *Application) onShowStatus() {
	st := a.orchestrator.PlatformStatus()

	var b strings.Builder
	fmt.Fprintf(&b, "Session: %s", sessionLabel(st.Status.IsWaylandSession))
	if env := st.Status.DesktopEnv.String(); env != "unknown" && env != "none" {
		fmt.Fprintf(&b, " (%s)", env)
	}
	fmt.Fprintf(&b, "\nRegistration method: %s\n", st.Status.LastMethodUsed)
	if !st.GlobalHotkeysEnabled {
		b.WriteString("\nGlobal hotkeys are currently unavailable.\n")
	}

	ids := make([]string, 0, len(st.Results))
	for id := range st.Results {
		ids = append(ids, string(id))
	}
	sort.Strings(ids)
	if len(ids) > 0 {
		b.WriteString("\n")
	}
	for _, raw := range ids {
		id := shortcuts.ID(raw)
		r := st.Results[id]
		if r.Success {
			fmt.Fprintf(&b, "%s: active\n", id.Description())
		} else {
			fmt.Fprintf(&b, "%s: failed (%s)\n", id.Description(), r.Err)
		}
	}

	if err := zenity.Info(b.String(), zenity.Title(appName+" - Hotkey Status"), zenity.InfoIcon); err != nil {
		a.log.Warn().Err(err).Msg("status dialog failed")
	}
}

// onConfigFileChanged runs on the watcher goroutine after config edits
// settle on disk.
func (a *Application) onConfigFileChanged() {
	a.log.Info().Msg("config file changed on disk, reloading")
	a.onReloadSettings()
}

// onReloadSettings re-reads the config file and applies every difference
// through the orchestrator so registrations follow the new settings.
func (a *Application) onReloadSettings() {
	path := a.configPath()
	newCfg, err := config.Load(path)
	if err != nil {
		a.log.Error().Err(err).Str("path", path).Msg("failed to reload config")
		a.notifier.Show("Settings Error", fmt.Sprintf("Could not reload settings: %v", err))
		return
	}

	a.mu.Lock()
	oldCfg := a.cfg
	a.cfg = newCfg
	a.mu.Unlock()

	a.notifier.SetEnabled(newCfg.UseNotifications)

	for _, id := range shortcuts.All() {
		accel := newCfg.AcceleratorFor(string(id), id.DefaultAccelerator())
		a.orchestrator.SetAccelerator(id, accel)
		a.orchestrator.SetEnabled(id, newCfg.EnabledFor(string(id), true))
	}

	changes := config.ChangeSummary(oldCfg, newCfg)
	if len(changes) == 0 {
		a.log.Debug().Msg("config reload produced no changes")
		return
	}
	a.log.Info().Strs("changes", changes).Msg("settings reloaded")
	a.notifier.Show("Settings Reloaded", strings.Join(changes, "\n"))
}

func (a *Application) onQuit() {
	a.log.Info().Msg("quitting")
}

func (a *Application) configPath() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cfg.GetConfigPath()
}

// configStore adapts the live config to the orchestrator's Store. It is a
// method view over Application so reloads swap the backing config.
type configStore Application

func (s *configStore) SaveEnabled(id shortcuts.ID, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.SetHotkeyEnabled(string(id), enabled)
}

func (s *configStore) SaveAccelerator(id shortcuts.ID, accel string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.SetHotkeyAccelerator(string(id), accel)
}

func sessionLabel(wayland bool) string {
	if wayland {
		return "Wayland"
	}
	return "X11 / native"
}

// noopHost stands in when no window host is attached, such as when the
// tray process runs ahead of the web view.
type noopHost struct {
	log zerolog.Logger
}

func (h noopHost) ShowChatWindow() { h.log.Info().Msg("show chat window requested") }

func (h noopHost) HideToTray() { h.log.Info().Msg("hide to tray requested") }

func (h noopHost) ToggleAlwaysOnTop() { h.log.Info().Msg("always-on-top toggle requested") }

func (h noopHost) ToggleVoiceInput() { h.log.Info().Msg("voice input toggle requested") }
func (h noopHost) ExportConversationPDF() (string, error) {
	return "", errors.New("no window attached")
}
