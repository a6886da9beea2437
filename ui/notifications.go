// Package ui provides the graphical user interface for WarpPulse.
// This file contains the notification system for connection events.
package ui

import (
	"os/exec"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/warppulse/warppulse/common"
)

const (
	notifyDest   = "org.freedesktop.Notifications"
	notifyPath   = dbus.ObjectPath("/org/freedesktop/Notifications")
	notifyMethod = "org.freedesktop.Notifications.Notify"
	// notifyTimeout is in milliseconds; -1 lets the server decide.
	notifyTimeout = int32(-1)
)

// NotificationType represents the type of notification
type NotificationType int

const (
	NotificationInfo NotificationType = iota
	NotificationError
)

// Notification represents a system notification
type Notification struct {
	Title   string
	Message string
	Type    NotificationType
	Icon    string
}

func (n Notification) icon() string {
	if n.Icon != "" {
		return n.Icon
	}
	if n.Type == NotificationError {
		return "dialog-error"
	}
	return "network-vpn"
}

// urgency maps to the freedesktop levels: 1 normal, 2 critical.
func (n Notification) urgency() byte {
	if n.Type == NotificationError {
		return 2
	}
	return 1
}

func (n Notification) urgencyName() string {
	return [...]string{"low", "normal", "critical"}[n.urgency()]
}

// Notifier sends desktop notifications through the session bus, falling
// back to notify-send when the bus is unreachable.
type Notifier struct {
	mu sync.Mutex
	// replaces holds the id of the last bubble so a new state replaces it.
	replaces uint32
}

var _ common.Notifier = (*Notifier)(nil)

// NewNotifier creates a notifier.
func NewNotifier() *Notifier {
	return &Notifier{}
}

// Show displays n.
func (nt *Notifier) Show(n Notification) error {
	err := nt.sendDBus(n)
	if err == nil {
		return nil
	}
	common.LogDebug("D-Bus notification failed, using notify-send: %v", err)

	cmd := exec.Command("notify-send",
		"--app-name="+common.AppName,
		"--icon="+n.icon(),
		"--urgency="+n.urgencyName(),
		n.Title,
		n.Message,
	)
	if err := cmd.Run(); err != nil {
		common.LogWarn("Error showing notification: %v", err)
		return err
	}
	return nil
}

func (nt *Notifier) sendDBus(n Notification) error {
	conn, err := dbus.SessionBus()
	if err != nil {
		return err
	}

	nt.mu.Lock()
	defer nt.mu.Unlock()

	hints := map[string]dbus.Variant{
		"urgency": dbus.MakeVariant(n.urgency()),
	}
	call := conn.Object(notifyDest, notifyPath).Call(notifyMethod, 0,
		common.AppName, nt.replaces, n.icon(), n.Title, n.Message,
		[]string{}, hints, notifyTimeout)
	if call.Err != nil {
		return call.Err
	}

	var id uint32
	if err := call.Store(&id); err == nil {
		nt.replaces = id
	}
	return nil
}

// NotifyWithIcon sends an informational notification with a custom icon.
func (nt *Notifier) NotifyWithIcon(title, message, icon string) error {
	return nt.Show(Notification{Title: title, Message: message, Type: NotificationInfo, Icon: icon})
}

// NotifyError sends a critical notification.
func (nt *Notifier) NotifyError(title, message string) error {
	return nt.Show(Notification{Title: title, Message: message, Type: NotificationError})
}
