// Package ui provides the graphical user interface for WarpPulse.
//
// This package implements the GTK4-based user interface including:
//
//   - Main window showing whether WARP protects the connection
//   - Settings page with the operation modes and client information
//   - System tray indicator for quick access
//   - Preferences and split tunneling dialogs
//   - Desktop notifications
//
// # Architecture
//
// The UI is built on GTK4 using the gotk4 bindings, with libadwaita
// providing the color scheme. A warp.Monitor polls warp-cli in the
// background; its snapshots drive both the window and the tray.
//
// # Thread Safety
//
// GTK operations must execute on the main thread. Monitor callbacks and
// warp-cli invocations run on other goroutines and hand their results back
// with glib.IdleAdd():
//
//	go func() {
//	    out, err := monitor.Toggle(ctx)
//	    glib.IdleAdd(func() {
//	        // Safe to update UI here
//	    })
//	}()
//
// The tray is driven by fyne.io/systray, whose calls are safe from any
// goroutine.
//
// # File Organization
//
//   - app.go: Application lifecycle, config reload and monitor wiring
//   - main_window.go: Status page, header bar and menu
//   - settings_panel.go: Mode grid, client information and license entry
//   - tray.go: System tray indicator
//   - icons.go: Icon generation for tray
//   - styles.go: CSS styling
//   - notifications.go: Desktop notification integration
//   - preferences.go: Preferences dialog
//   - split_tunnel_dialog.go: Tunnel exclusions
//   - widgets.go: Section, card and row builders shared by the pages
package ui
