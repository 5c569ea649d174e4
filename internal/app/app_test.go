package app

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/deskchat/deskchat/internal/config"
	"github.com/deskchat/deskchat/internal/shortcuts"
)

type fakeHost struct {
	shown, hidden, voice, onTop int
	exportPath                  string
	exportErr                   error
}

func (h *fakeHost) ShowChatWindow() { h.shown++ }

func (h *fakeHost) HideToTray() { h.hidden++ }

func (h *fakeHost) ToggleAlwaysOnTop() { h.onTop++ }

func (h *fakeHost) ToggleVoiceInput() { h.voice++ }
func (h *fakeHost) ExportConversationPDF() (string, error) {
	return h.exportPath, h.exportErr
}

func testConfig(t *testing.T, hotkeys map[string]config.HotkeySetting) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	raw := map[string]interface{}{
		"chat_url":          "https://chat.example.com",
		"use_notifications": false,
	}
	if hotkeys != nil {
		raw["hotkeys"] = hotkeys
	}
	data, err := json.Marshal(raw)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return cfg
}

func boolPtr(b bool) *bool { return &b }

func TestNewSeedsOrchestratorFromConfig(t *testing.T) {
	cfg := testConfig(t, map[string]config.HotkeySetting{
		"quick_open":  {Enabled: boolPtr(false), Accelerator: "ctrl+alt+k"},
		"voice_input": {Accelerator: "ctrl+shift+v"},
	})

	a := New(cfg, "test", zerolog.Nop(), &fakeHost{})

	settings := a.orchestrator.Settings()
	if settings[shortcuts.QuickOpen] {
		t.Error("quick_open should seed disabled")
	}
	if !settings[shortcuts.VoiceInput] {
		t.Error("voice_input should default to enabled")
	}
	if !settings[shortcuts.HideToTray] {
		t.Error("unmentioned ids should default to enabled")
	}

	accels := a.orchestrator.Accelerators()
	if got := accels[shortcuts.QuickOpen]; got != "ctrl+alt+k" {
		t.Errorf("quick_open accelerator = %q, want override", got)
	}
	if got := accels[shortcuts.VoiceInput]; got != "ctrl+shift+v" {
		t.Errorf("voice_input accelerator = %q, want override", got)
	}
	if got := accels[shortcuts.ExportPDF]; got != shortcuts.ExportPDF.DefaultAccelerator() {
		t.Errorf("export_pdf accelerator = %q, want default", got)
	}
}

func TestActionTableCoversEveryShortcut(t *testing.T) {
	cfg := testConfig(t, nil)
	a := New(cfg, "test", zerolog.Nop(), &fakeHost{})

	table := a.actionTable()
	for _, id := range shortcuts.All() {
		if table[id] == nil {
			t.Errorf("no action wired for %s", id)
		}
	}
}

func TestActionsReachWindowHost(t *testing.T) {
	cfg := testConfig(t, nil)
	host := &fakeHost{}
	a := New(cfg, "test", zerolog.Nop(), host)

	table := a.actionTable()
	table[shortcuts.QuickOpen]()
	table[shortcuts.HideToTray]()
	table[shortcuts.VoiceInput]()
	table[shortcuts.AlwaysOnTop]()

	if host.shown != 1 || host.hidden != 1 || host.voice != 1 || host.onTop != 1 {
		t.Errorf("host calls = show %d hide %d voice %d onTop %d, want 1 each",
			host.shown, host.hidden, host.voice, host.onTop)
	}
}

func TestConfigStorePersistsSettings(t *testing.T) {
	cfg := testConfig(t, nil)
	a := New(cfg, "test", zerolog.Nop(), &fakeHost{})

	store := (*configStore)(a)
	if err := store.SaveEnabled(shortcuts.QuickOpen, false); err != nil {
		t.Fatalf("SaveEnabled: %v", err)
	}
	if err := store.SaveAccelerator(shortcuts.VoiceInput, "ctrl+shift+x"); err != nil {
		t.Fatalf("SaveAccelerator: %v", err)
	}

	reloaded, err := config.Load(cfg.GetConfigPath())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.EnabledFor("quick_open", true) {
		t.Error("disabled flag did not survive a round trip")
	}
	if got := reloaded.AcceleratorFor("voice_input", ""); got != "ctrl+shift+x" {
		t.Errorf("accelerator after round trip = %q", got)
	}
}
