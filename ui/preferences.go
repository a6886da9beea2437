// Package ui provides the graphical user interface for WarpPulse.
// This file contains the PreferencesDialog component for application settings.
package ui

import (
	"time"

	"github.com/diamondburned/gotk4/pkg/gtk/v4"
	"github.com/warppulse/warppulse/common"
	"github.com/warppulse/warppulse/config"
)

// PreferencesDialog represents the preferences dialog.
type PreferencesDialog struct {
	window          *gtk.Window
	mainWindow      *MainWindow
	config          *config.Config
	minimizeSwitch  *gtk.Switch
	hiddenSwitch    *gtk.Switch
	notifySwitch    *gtk.Switch
	historySwitch   *gtk.Switch
	acceptTOSSwitch *gtk.Switch
	pollSpin        *gtk.SpinButton
	themeDropDown   *gtk.DropDown
	themeIDs        []string
}

// NewPreferencesDialog creates a new preferences dialog working on a copy
// of the current configuration.
func NewPreferencesDialog(mainWindow *MainWindow) *PreferencesDialog {
	pd := &PreferencesDialog{
		mainWindow: mainWindow,
		config:     mainWindow.app.Config().Clone(),
		themeIDs:   []string{common.ThemeAuto, common.ThemeLight, common.ThemeDark},
	}

	pd.build()
	return pd
}

func newSwitch(active bool) *gtk.Switch {
	sw := gtk.NewSwitch()
	sw.SetActive(active)
	sw.SetVAlign(gtk.AlignCenter)
	return sw
}

// build constructs the dialog UI.
func (pd *PreferencesDialog) build() {
	pd.window = gtk.NewWindow()
	pd.window.SetTitle("Preferences")
	pd.window.SetTransientFor(&pd.mainWindow.window.Window)
	pd.window.SetModal(true)
	pd.window.SetDefaultSize(460, 580)
	pd.window.SetResizable(false)

	rootBox := gtk.NewBox(gtk.OrientationVertical, 0)

	scrolled := gtk.NewScrolledWindow()
	scrolled.SetVExpand(true)
	scrolled.SetPolicy(gtk.PolicyNever, gtk.PolicyAutomatic)

	mainBox := gtk.NewBox(gtk.OrientationVertical, 20)
	mainBox.SetMarginTop(common.DialogMargin)
	mainBox.SetMarginBottom(16)
	mainBox.SetMarginStart(common.DialogMargin)
	mainBox.SetMarginEnd(common.DialogMargin)

	// Window
	windowSection := newSection("Window", "window-new-symbolic")
	windowCard := newCard()

	pd.minimizeSwitch = newSwitch(pd.config.MinimizeToTray)
	windowCard.Append(newSettingRow(
		"Minimize to Tray",
		"Keep running in the system tray when the window is closed",
		pd.minimizeSwitch,
	))
	windowCard.Append(newSeparator())

	pd.hiddenSwitch = newSwitch(pd.config.StartHidden)
	windowCard.Append(newSettingRow(
		"Start Hidden",
		"Only show the tray icon at startup",
		pd.hiddenSwitch,
	))

	windowSection.Append(windowCard)
	mainBox.Append(windowSection)

	// WARP
	warpSection := newSection("WARP", "network-vpn-symbolic")
	warpCard := newCard()

	pd.pollSpin = gtk.NewSpinButtonWithRange(1, 60, 1)
	pd.pollSpin.SetValue(pd.config.PollInterval.Seconds())
	pd.pollSpin.SetVAlign(gtk.AlignCenter)
	warpCard.Append(newSettingRow(
		"Refresh Interval",
		"Seconds between status checks",
		pd.pollSpin,
	))
	warpCard.Append(newSeparator())

	pd.acceptTOSSwitch = newSwitch(pd.config.AcceptTOS)
	warpCard.Append(newSettingRow(
		"Accept Terms of Service",
		"Pass --accept-tos to warp-cli (applies after restart)",
		pd.acceptTOSSwitch,
	))

	warpSection.Append(warpCard)
	mainBox.Append(warpSection)

	// Notifications and history
	notifySection := newSection("Notifications", "preferences-system-notifications-symbolic")
	notifyCard := newCard()

	pd.notifySwitch = newSwitch(pd.config.ShowNotifications)
	notifyCard.Append(newSettingRow(
		"Connection Alerts",
		"Show notifications when WARP connects or disconnects",
		pd.notifySwitch,
	))
	notifyCard.Append(newSeparator())

	pd.historySwitch = newSwitch(pd.config.RecordHistory)
	notifyCard.Append(newSettingRow(
		"Record History",
		"Keep a log of status changes (warppulse --history)",
		pd.historySwitch,
	))

	notifySection.Append(notifyCard)
	mainBox.Append(notifySection)

	// Appearance
	appearSection := newSection("Appearance", "preferences-desktop-theme-symbolic")
	appearCard := newCard()

	themeModel := gtk.NewStringList([]string{"System Default", "Light", "Dark"})
	pd.themeDropDown = gtk.NewDropDown(themeModel, nil)
	pd.themeDropDown.SetSelected(pd.findThemeIndex(pd.config.Theme))
	pd.themeDropDown.SetVAlign(gtk.AlignCenter)
	pd.themeDropDown.AddCSSClass("flat")
	appearCard.Append(newSettingRow(
		"Theme",
		"Choose the visual appearance of the application",
		pd.themeDropDown,
	))

	appearSection.Append(appearCard)
	mainBox.Append(appearSection)

	scrolled.SetChild(mainBox)
	rootBox.Append(scrolled)

	rootBox.Append(newButtonBar(pd.window, "Save", func() {
		if pd.savePreferences() {
			pd.window.Close()
		}
	}))

	pd.window.SetChild(rootBox)
}

// findThemeIndex returns the index of a theme ID, or 0 if not found.
func (pd *PreferencesDialog) findThemeIndex(themeID string) uint {
	for i, id := range pd.themeIDs {
		if id == themeID {
			return uint(i)
		}
	}
	return 0
}

// savePreferences writes the preferences and applies them right away.
func (pd *PreferencesDialog) savePreferences() bool {
	pd.config.MinimizeToTray = pd.minimizeSwitch.Active()
	pd.config.StartHidden = pd.hiddenSwitch.Active()
	pd.config.ShowNotifications = pd.notifySwitch.Active()
	pd.config.RecordHistory = pd.historySwitch.Active()
	pd.config.AcceptTOS = pd.acceptTOSSwitch.Active()
	pd.config.PollInterval = time.Duration(pd.pollSpin.Value()) * time.Second

	themeIdx := pd.themeDropDown.Selected()
	if int(themeIdx) < len(pd.themeIDs) {
		pd.config.Theme = pd.themeIDs[themeIdx]
	}

	app := pd.mainWindow.app
	if app.configPath != "" {
		if err := pd.config.SaveTo(app.configPath); err != nil {
			pd.mainWindow.showError("Error", "Could not save preferences: "+err.Error())
			return false
		}
	}

	app.applyConfig(pd.config)
	pd.mainWindow.SetStatus("Preferences saved")
	return true
}

// Show displays the preferences dialog.
func (pd *PreferencesDialog) Show() {
	pd.window.Show()
}
