// Package config provides configuration management for WarpPulse.
// It handles loading, saving, and managing application settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/warppulse/warppulse/common"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
// All settings are persisted to a YAML file in the user's config directory.
type Config struct {
	// WarpCLIPath is the warp-cli executable; empty means look it up on PATH.
	WarpCLIPath string `yaml:"warp_cli_path"`
	// AcceptTOS passes --accept-tos to every warp-cli invocation.
	AcceptTOS bool `yaml:"accept_tos"`
	// CommandTimeout bounds a single warp-cli invocation.
	CommandTimeout time.Duration `yaml:"command_timeout"`
	// PollInterval is how often status and settings are refreshed.
	PollInterval time.Duration `yaml:"poll_interval"`
	// SettleDelay is the wait after connect/disconnect before refreshing.
	SettleDelay time.Duration `yaml:"settle_delay"`
	// MinimizeToTray hides the window on close instead of quitting.
	MinimizeToTray bool `yaml:"minimize_to_tray"`
	// StartHidden starts with only the tray icon visible.
	StartHidden bool `yaml:"start_hidden"`
	// ShowNotifications enables desktop notifications for connection events.
	ShowNotifications bool `yaml:"show_notifications"`
	// RecordHistory logs status transitions to the history database.
	RecordHistory bool `yaml:"record_history"`
	// HistoryLimit is how many history events are kept.
	HistoryLimit int `yaml:"history_limit"`
	// Theme sets the color theme: "light", "dark", or "auto".
	Theme string `yaml:"theme"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		WarpCLIPath:       "",
		AcceptTOS:         false,
		CommandTimeout:    common.CommandTimeout,
		PollInterval:      common.PollInterval,
		SettleDelay:       common.SettleDelay,
		MinimizeToTray:    true,
		StartHidden:       false,
		ShowNotifications: true,
		RecordHistory:     true,
		HistoryLimit:      common.DefaultHistoryLimit,
		Theme:             common.ThemeAuto,
	}
}

// LoadFrom loads the configuration from path, writing defaults there when
// the file is missing.
func LoadFrom(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := cfg.SaveTo(configPath); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("%w: error opening configuration: %v", common.ErrConfigLoad, err)
	}
	defer file.Close()

	// Fields absent from the file keep their defaults.
	config := DefaultConfig()
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true) // Strict validation: reject unknown fields
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("%w: error parsing configuration: %v", common.ErrConfigLoad, err)
	}

	config.validate()
	return config, nil
}

// validate replaces out-of-range values with their defaults.
func (c *Config) validate() {
	defaults := DefaultConfig()

	switch c.Theme {
	case common.ThemeAuto, common.ThemeLight, common.ThemeDark:
	default:
		c.Theme = defaults.Theme
	}
	if c.CommandTimeout <= 0 {
		c.CommandTimeout = defaults.CommandTimeout
	}
	if c.PollInterval < common.MinPollInterval {
		c.PollInterval = defaults.PollInterval
	}
	if c.SettleDelay < 0 {
		c.SettleDelay = defaults.SettleDelay
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = defaults.HistoryLimit
	}
}

// SaveTo saves the configuration to configPath.
func (c *Config) SaveTo(configPath string) error {
	// Create directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(configPath), 0700); err != nil {
		return fmt.Errorf("%w: error creating config directory: %v", common.ErrConfigSave, err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("%w: error serializing configuration: %v", common.ErrConfigSave, err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("%w: error saving configuration: %v", common.ErrConfigSave, err)
	}

	return nil
}

// Clone returns a copy of c.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// Path returns the default configuration file path.
func Path() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("error getting home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", common.ConfigDirName, common.ConfigFileName), nil
}
