package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deskchat", "config.json")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ChatURL == "" {
		t.Error("default config has empty chat URL")
	}
	if !cfg.UseNotifications {
		t.Error("default config should enable notifications")
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("default config file was not written: %v", err)
	}
}

func TestLegacyKeyMigration(t *testing.T) {
	path := writeConfig(t, `{
  "chat_url": "https://chat.example.com",
  "use_notifications": true,
  "global_hotkey": "ctrl+shift+space",
  "hotkeys_enabled": false
}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := cfg.AcceleratorFor("quick_open", "default"); got != "ctrl+shift+space" {
		t.Errorf("migrated accelerator = %q, want legacy value", got)
	}
	if cfg.EnabledFor("quick_open", true) {
		t.Error("migrated enabled flag should be false")
	}

	// The legacy keys are gone from the saved file.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	if _, ok := raw["global_hotkey"]; ok {
		t.Error("legacy global_hotkey key survived migration")
	}
	if _, ok := raw["hotkeys_enabled"]; ok {
		t.Error("legacy hotkeys_enabled key survived migration")
	}
}

func TestLegacyKeyDoesNotOverwriteNewKey(t *testing.T) {
	path := writeConfig(t, `{
  "chat_url": "https://chat.example.com",
  "global_hotkey": "ctrl+shift+space",
  "hotkeys": {"quick_open": {"accelerator": "ctrl+alt+k"}}
}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := cfg.AcceleratorFor("quick_open", ""); got != "ctrl+alt+k" {
		t.Errorf("accelerator = %q, legacy key must not overwrite the new key", got)
	}
}

func TestSetHotkeyRoundTrip(t *testing.T) {
	path := writeConfig(t, `{"chat_url": "https://chat.example.com"}`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if err := cfg.SetHotkeyEnabled("voice_input", false); err != nil {
		t.Fatalf("SetHotkeyEnabled() error = %v", err)
	}
	if err := cfg.SetHotkeyAccelerator("voice_input", "ctrl+m"); err != nil {
		t.Fatalf("SetHotkeyAccelerator() error = %v", err)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.EnabledFor("voice_input", true) {
		t.Error("enabled flag did not persist")
	}
	if got := reloaded.AcceleratorFor("voice_input", ""); got != "ctrl+m" {
		t.Errorf("persisted accelerator = %q, want ctrl+m", got)
	}
}

func TestFallbacksWhenUnset(t *testing.T) {
	path := writeConfig(t, `{"chat_url": "https://chat.example.com"}`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if !cfg.EnabledFor("quick_open", true) {
		t.Error("EnabledFor should fall back to default")
	}
	if got := cfg.AcceleratorFor("quick_open", "ctrl+alt+space"); got != "ctrl+alt+space" {
		t.Errorf("AcceleratorFor fallback = %q", got)
	}
}

func TestChangeSummary(t *testing.T) {
	path := writeConfig(t, `{"chat_url": "https://chat.example.com"}`)
	oldCfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	newCfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if lines := ChangeSummary(oldCfg, newCfg); lines != nil {
		t.Errorf("identical configs produced summary %v", lines)
	}

	if err := newCfg.SetHotkeyAccelerator("quick_open", "ctrl+alt+k"); err != nil {
		t.Fatal(err)
	}
	lines := ChangeSummary(oldCfg, newCfg)
	if len(lines) == 0 {
		t.Fatal("changed config produced empty summary")
	}
	found := false
	for _, l := range lines {
		if l == `+ "accelerator": "ctrl+alt+k"` {
			found = true
		}
	}
	if !found {
		t.Errorf("summary %v missing the changed accelerator line", lines)
	}
}
