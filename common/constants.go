// Package common provides shared constants, types, and utilities
// used across WarpPulse.
package common

import "time"

// Application metadata.
const (
	// AppID is the unique identifier for the application.
	AppID = "dev.warppulse.app"
	// AppName is the display name of the application.
	AppName = "WarpPulse"
	// ConfigDirName is the name of the configuration and data directory.
	ConfigDirName = "warppulse"
	// KeyringService is the service name used in the system keyring.
	KeyringService = "warppulse"
)

// File names used by the application.
const (
	ConfigFileName      = "config.yaml"
	CredentialsFileName = ".credentials"
	HistoryFileName     = "history.db"
	LogFileName         = "warppulse.log"
)

// DefaultWarpCLI is the executable name looked up on PATH.
const DefaultWarpCLI = "warp-cli"

// Default timeouts and intervals.
const (
	// CommandTimeout bounds a single warp-cli invocation.
	CommandTimeout = 30 * time.Second
	// PollInterval is how often status and settings are refreshed.
	PollInterval = 3 * time.Second
	// MinPollInterval keeps a misconfigured poll loop from spinning.
	MinPollInterval = 500 * time.Millisecond
	// SettleDelay is the wait between a connect/disconnect and the next refresh.
	SettleDelay = 1 * time.Second
)

// History retention.
const (
	DefaultHistoryLimit = 500
)

// UI constants.
const (
	// DefaultWindowWidth is the default main window width.
	DefaultWindowWidth = 400
	// DefaultWindowHeight is the default main window height.
	DefaultWindowHeight = 600
	// DialogMargin is the standard margin for dialog content.
	DialogMargin = 24
	// TrayIconSize is the size of the system tray icon.
	TrayIconSize = 22
)

// Theme values.
const (
	ThemeAuto  = "auto"
	ThemeLight = "light"
	ThemeDark  = "dark"
)
