// Package config handles application configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golemvoice/golem/macro"
)

const (
	appName        = "golem"
	oldAppName     = "the-golem"
	configFileName = "config.json"

	// DefaultServerURL points at a local golemd instance.
	DefaultServerURL = "http://localhost:8000"
)

// Config represents the application configuration.
type Config struct {
	// ServerURL is the transcription service base URL.
	ServerURL string `json:"server_url"`

	// LegacyURL is the pre-rename field for the server URL.
	// Migrated into ServerURL on load, never written back.
	LegacyURL string `json:"url,omitempty"`

	// StopKey ends a macro recording session.
	StopKey string `json:"stop_key"`

	// Language is an optional source-language hint sent to the service.
	Language string `json:"language,omitempty"`

	// DisableNotifications turns off desktop notifications.
	DisableNotifications bool `json:"disable_notifications,omitempty"`

	// DisableKillswitch turns off the emergency kill combination.
	DisableKillswitch bool `json:"disable_killswitch,omitempty"`
}

// Load loads configuration from the config file.
// Returns default config if the file doesn't exist.
func Load() (*Config, error) {
	if err := migrateLegacyConfig(); err != nil {
		return nil, fmt.Errorf("migrate legacy config: %w", err)
	}

	path, err := configPath()
	if err != nil {
		return nil, fmt.Errorf("get config path: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Save persists the configuration to disk.
func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return fmt.Errorf("get config path: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// NotificationsEnabled reports whether desktop notifications are on.
func (c *Config) NotificationsEnabled() bool { return !c.DisableNotifications }

// KillswitchEnabled reports whether the emergency kill combination is on.
func (c *Config) KillswitchEnabled() bool { return !c.DisableKillswitch }

// applyDefaults fills zero-valued fields and folds legacy fields into
// their current homes.
func (c *Config) applyDefaults() {
	if c.ServerURL == "" && c.LegacyURL != "" {
		c.ServerURL = c.LegacyURL
	}
	c.LegacyURL = ""

	if c.ServerURL == "" {
		c.ServerURL = DefaultServerURL
	}
	if c.StopKey == "" {
		c.StopKey = macro.DefaultStopKey
	}
}

func configPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get user config dir: %w", err)
	}
	return filepath.Join(dir, appName, configFileName), nil
}

func defaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// migrateLegacyConfig migrates configuration from the old app name.
// If the old directory exists and the new one doesn't, it creates a
// symlink.
func migrateLegacyConfig() error {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return fmt.Errorf("get user config dir: %w", err)
	}

	oldDir := filepath.Join(configDir, oldAppName)
	newDir := filepath.Join(configDir, appName)

	oldInfo, err := os.Stat(oldDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat old config dir: %w", err)
	}

	if !oldInfo.IsDir() {
		return nil
	}

	_, err = os.Stat(newDir)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat new config dir: %w", err)
	}

	if err := os.Symlink(oldDir, newDir); err != nil {
		return fmt.Errorf("create symlink: %w", err)
	}

	return nil
}
