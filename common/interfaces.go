// Package common provides shared constants, types, and utilities
// used across WarpPulse.
package common

import (
	"context"
	"time"
)

// WarpController is the set of warp-cli operations the front-ends drive.
// Every call spawns warp-cli once and relays its text output.
type WarpController interface {
	// Connect runs "warp-cli connect".
	Connect(ctx context.Context) (string, error)
	// Disconnect runs "warp-cli disconnect".
	Disconnect(ctx context.Context) (string, error)
	// Status runs "warp-cli status".
	Status(ctx context.Context) (string, error)
	// Settings runs "warp-cli settings".
	Settings(ctx context.Context) (string, error)
	// SetMode runs "warp-cli mode <mode>".
	SetMode(ctx context.Context, mode string) (string, error)
}

// SecretStore defines the interface for secret storage.
// Implementations may use the system keyring, encrypted files, etc.
type SecretStore interface {
	// Store saves a secret under key.
	Store(key, secret string) error
	// Get retrieves the secret stored under key.
	Get(key string) (string, error)
	// Delete removes the secret stored under key.
	Delete(key string) error
}

// StatusEvent is one observed change of the WARP connection state.
type StatusEvent struct {
	ID         string    `json:"id"`
	Status     string    `json:"status"`
	Connected  bool      `json:"connected"`
	Mode       string    `json:"mode"`
	RecordedAt time.Time `json:"recorded_at"`
}

// EventRecorder persists status events.
type EventRecorder interface {
	Record(ctx context.Context, event StatusEvent) (StatusEvent, error)
}

// Notifier sends desktop notifications.
type Notifier interface {
	// NotifyWithIcon sends an informational notification with a themed icon.
	NotifyWithIcon(title, message, icon string) error
	// NotifyError sends a notification marked critical.
	NotifyError(title, message string) error
}
