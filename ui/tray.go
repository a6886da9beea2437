// Package ui provides the graphical user interface for WarpPulse.
// This file contains the system tray indicator functionality.
package ui

import (
	"context"
	"fmt"
	"sync"

	"fyne.io/systray"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/warppulse/warppulse/common"
	"github.com/warppulse/warppulse/warp"
)

// Pre-generated icons for performance.
var (
	iconProtected   = GenerateProtectedIcon()
	iconUnprotected = GenerateUnprotectedIcon()
)

// TrayIndicator manages the system tray icon and menu.
// It provides quick access to WARP without opening the main window.
type TrayIndicator struct {
	app            *Application
	statusItem     *systray.MenuItem
	showItem       *systray.MenuItem
	connectItem    *systray.MenuItem
	disconnectItem *systray.MenuItem
	quitItem       *systray.MenuItem

	mu     sync.Mutex
	ready  bool
	latest warp.Snapshot
}

// NewTrayIndicator creates a new system tray indicator.
func NewTrayIndicator(app *Application) *TrayIndicator {
	return &TrayIndicator{
		app:    app,
		latest: app.monitor.Latest(),
	}
}

// Run starts the system tray indicator.
// This should be called from a goroutine as it blocks.
func (t *TrayIndicator) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit removes the tray icon.
func (t *TrayIndicator) Quit() {
	t.mu.Lock()
	ready := t.ready
	t.ready = false
	t.mu.Unlock()

	if ready {
		systray.Quit()
	}
}

// onReady is called when the systray is ready.
func (t *TrayIndicator) onReady() {
	systray.SetTitle(common.AppName)

	t.statusItem = systray.AddMenuItem("Checking...", "Current WARP status")
	t.statusItem.Disable()

	systray.AddSeparator()

	t.showItem = systray.AddMenuItem("Show", "Show the "+common.AppName+" window")
	t.connectItem = systray.AddMenuItem("Connect", "Connect WARP")
	t.disconnectItem = systray.AddMenuItem("Disconnect", "Disconnect WARP")

	systray.AddSeparator()

	t.quitItem = systray.AddMenuItem("Quit", "Close "+common.AppName)

	// Clicking the icon itself opens the window.
	systray.SetOnTapped(t.showWindow)

	go func() {
		for range t.showItem.ClickedCh {
			t.showWindow()
		}
	}()
	go func() {
		for range t.connectItem.ClickedCh {
			go t.run("connect", t.app.client.Connect)
		}
	}()
	go func() {
		for range t.disconnectItem.ClickedCh {
			go t.run("disconnect", t.app.client.Disconnect)
		}
	}()
	go func() {
		for range t.quitItem.ClickedCh {
			glib.IdleAdd(t.app.Quit)
		}
	}()

	t.mu.Lock()
	t.ready = true
	snap := t.latest
	t.mu.Unlock()

	t.apply(snap)
}

// onExit is called when the systray is about to exit.
func (t *TrayIndicator) onExit() {
	common.LogInfo("Tray indicator cleanup completed")
}

func (t *TrayIndicator) showWindow() {
	glib.IdleAdd(t.app.showWindow)
}

// run invokes a warp-cli action without reporting its result. The window
// and the tray follow the outcome through the next refresh.
func (t *TrayIndicator) run(action string, fn func(context.Context) (string, error)) {
	ctx := context.Background()
	if _, err := fn(ctx); err != nil {
		common.LogDebug("Tray %s: %v", action, err)
	}
	t.app.monitor.Refresh(ctx)
}

// SetState updates the icon, tooltip and status line from a snapshot.
func (t *TrayIndicator) SetState(snap warp.Snapshot) {
	t.mu.Lock()
	t.latest = snap
	ready := t.ready
	t.mu.Unlock()

	if ready {
		t.apply(snap)
	}
}

func (t *TrayIndicator) apply(snap warp.Snapshot) {
	if snap.Connected {
		systray.SetIcon(iconProtected)
		systray.SetTooltip(fmt.Sprintf("%s - Protected (%s)", common.AppName, snap.Mode))
		t.statusItem.SetTitle("●  Protected: " + common.Truncate(snap.Status, 40))
		return
	}

	systray.SetIcon(iconUnprotected)
	systray.SetTooltip(fmt.Sprintf("%s - Unprotected", common.AppName))
	t.statusItem.SetTitle("○  Unprotected: " + common.Truncate(snap.Status, 40))
}
