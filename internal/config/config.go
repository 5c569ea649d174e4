package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/99designs/keyring"
	"github.com/rs/zerolog/log"
)

const DefaultKeyringService = "DeskChat"

// sessionTokenKey is the keyring entry holding the chat-service session token.
const sessionTokenKey = "session_token"

// HotkeySetting is the persisted state for one shortcut: an enabled flag and
// an accelerator override. Nil/empty fields fall back to built-in defaults.
type HotkeySetting struct {
	Enabled     *bool  `json:"enabled,omitempty"`
	Accelerator string `json:"accelerator,omitempty"`
}

// Config holds the application configuration
type Config struct {
	ChatURL          string                   `json:"chat_url"`
	UseNotifications bool                     `json:"use_notifications"`
	Hotkeys          map[string]HotkeySetting `json:"hotkeys"`
	SessionManaged   bool                     `json:"session_token_managed,omitempty"`

	// Legacy support fields (for backward compatibility)
	LegacyGlobalHotkey   string `json:"global_hotkey,omitempty"`
	LegacyHotkeysEnabled *bool  `json:"hotkeys_enabled,omitempty"`

	// Non-JSON fields (runtime state)
	configPath     string
	keyringService string
}

// legacyQuickOpenID is the shortcut the pre-1.0 single-hotkey settings
// mapped to; migration copies the old keys onto it.
const legacyQuickOpenID = "quick_open"

// GetConfigPath returns the path to the configuration file
func (c *Config) GetConfigPath() string {
	return c.configPath
}

// Load reads and parses the configuration file, creating a default one when
// absent, and migrates legacy single-hotkey keys exactly once.
func Load(configPath string) (*Config, error) {
	var config Config

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Info().Str("path", configPath).Msg("config file not found, creating default")
			if createErr := CreateDefaultConfig(configPath); createErr != nil {
				return nil, fmt.Errorf("config file not found and failed to create default %q: %w", configPath, createErr)
			}
			data, err = os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("failed to read config file %q after creating default: %w", configPath, err)
			}
		} else {
			return nil, fmt.Errorf("failed to read config file %q: %w", configPath, err)
		}
	}

	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %q: %w", configPath, err)
	}

	config.configPath = configPath
	config.keyringService = DefaultKeyringService
	if config.Hotkeys == nil {
		config.Hotkeys = make(map[string]HotkeySetting)
	}

	if config.migrateLegacyKeys() {
		if err := config.Save(); err != nil {
			log.Warn().Err(err).Msg("failed to save migrated config")
		} else {
			log.Info().Msg("migrated legacy hotkey settings")
		}
	}

	return &config, nil
}

// migrateLegacyKeys copies the old single-hotkey keys into the per-shortcut
// map, only where the new key is absent, and clears the old keys. Returns
// true when anything changed.
func (c *Config) migrateLegacyKeys() bool {
	changed := false

	if c.LegacyGlobalHotkey != "" {
		entry := c.Hotkeys[legacyQuickOpenID]
		if entry.Accelerator == "" {
			entry.Accelerator = c.LegacyGlobalHotkey
			c.Hotkeys[legacyQuickOpenID] = entry
		}
		c.LegacyGlobalHotkey = ""
		changed = true
	}

	if c.LegacyHotkeysEnabled != nil {
		entry := c.Hotkeys[legacyQuickOpenID]
		if entry.Enabled == nil {
			v := *c.LegacyHotkeysEnabled
			entry.Enabled = &v
			c.Hotkeys[legacyQuickOpenID] = entry
		}
		c.LegacyHotkeysEnabled = nil
		changed = true
	}

	return changed
}

// Save writes the current configuration back to its file.
func (c *Config) Save() error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.configPath, data, 0600)
}

// EnabledFor returns the persisted enabled flag for a shortcut id, or def
// when none was stored.
func (c *Config) EnabledFor(id string, def bool) bool {
	if entry, ok := c.Hotkeys[id]; ok && entry.Enabled != nil {
		return *entry.Enabled
	}
	return def
}

// AcceleratorFor returns the persisted accelerator for a shortcut id, or def
// when none was stored.
func (c *Config) AcceleratorFor(id string, def string) string {
	if entry, ok := c.Hotkeys[id]; ok && entry.Accelerator != "" {
		return entry.Accelerator
	}
	return def
}

// SetHotkeyEnabled stores and persists the enabled flag for one shortcut.
func (c *Config) SetHotkeyEnabled(id string, enabled bool) error {
	entry := c.Hotkeys[id]
	v := enabled
	entry.Enabled = &v
	c.Hotkeys[id] = entry
	return c.Save()
}

// SetHotkeyAccelerator stores and persists the accelerator for one shortcut.
func (c *Config) SetHotkeyAccelerator(id string, accel string) error {
	entry := c.Hotkeys[id]
	entry.Accelerator = accel
	c.Hotkeys[id] = entry
	return c.Save()
}

// SessionToken loads the chat-service session token from the OS keyring.
// Returns empty without error when no token is managed.
func (c *Config) SessionToken() (string, error) {
	if !c.SessionManaged {
		return "", nil
	}
	kr, err := c.openKeyring()
	if err != nil {
		return "", fmt.Errorf("failed to open keyring for service %q: %w", c.keyringService, err)
	}
	item, err := kr.Get(sessionTokenKey)
	if err == keyring.ErrKeyNotFound {
		log.Warn().Msg("session token marked managed but missing from keyring")
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read session token: %w", err)
	}
	return string(item.Data), nil
}

// SetSessionToken stores the chat-service session token in the OS keyring
// and marks it managed in the config file.
func (c *Config) SetSessionToken(value string) error {
	kr, err := c.openKeyring()
	if err != nil {
		return fmt.Errorf("failed to open keyring for service %q: %w", c.keyringService, err)
	}
	err = kr.Set(keyring.Item{
		Key:         sessionTokenKey,
		Data:        []byte(value),
		Label:       fmt.Sprintf("Chat session token for %s", c.keyringService),
		Description: "Managed by DeskChat",
	})
	if err != nil {
		return fmt.Errorf("failed to store session token: %w", err)
	}
	c.SessionManaged = true
	return c.Save()
}

func (c *Config) openKeyring() (keyring.Keyring, error) {
	return keyring.Open(keyring.Config{
		ServiceName: c.keyringService,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
		},
		LibSecretCollectionName:  "login",
		WinCredPrefix:            c.keyringService,
		KeychainTrustApplication: true,
	})
}

// DefaultPath returns the per-user config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "config.json"
	}
	return filepath.Join(dir, "deskchat", "config.json")
}

// CreateDefaultConfig creates a default configuration file if none exists
func CreateDefaultConfig(configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("error checking config path %q: %w", configPath, err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	defaultConfig := &Config{
		ChatURL:          "https://chat.example.com",
		UseNotifications: true,
		Hotkeys:          make(map[string]HotkeySetting),
	}

	data, err := json.MarshalIndent(defaultConfig, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal default config to JSON: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write default config file %q: %w", configPath, err)
	}

	log.Info().Str("path", configPath).Msg("default configuration file created")
	return nil
}
