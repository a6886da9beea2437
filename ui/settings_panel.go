package ui

import (
	"context"
	"errors"
	"strings"

	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
	"github.com/warppulse/warppulse/cli"
	"github.com/warppulse/warppulse/common"
	"github.com/warppulse/warppulse/keyring"
	"github.com/warppulse/warppulse/warp"
)

// modeColumns is the width of the mode button grid.
const modeColumns = 2

// SettingsPanel shows the operation modes, client information and the
// WARP+ license entry.
type SettingsPanel struct {
	mainWindow   *MainWindow
	root         *gtk.ScrolledWindow
	modeButtons  map[warp.Mode]*gtk.Button
	infoList     *gtk.ListBox
	rawLabel     *gtk.Label
	licenseEntry *gtk.Entry
	licenseLabel *gtk.Label

	current  warp.Mode
	lastRaw  string
	applying bool
}

// NewSettingsPanel creates the settings page of the main window.
func NewSettingsPanel(mainWindow *MainWindow) *SettingsPanel {
	sp := &SettingsPanel{
		mainWindow:  mainWindow,
		modeButtons: make(map[warp.Mode]*gtk.Button),
	}
	sp.build()
	return sp
}

// Widget returns the panel's root widget.
func (sp *SettingsPanel) Widget() gtk.Widgetter {
	return sp.root
}

func (sp *SettingsPanel) build() {
	sp.root = gtk.NewScrolledWindow()
	sp.root.SetVExpand(true)
	sp.root.SetPolicy(gtk.PolicyNever, gtk.PolicyAutomatic)

	mainBox := gtk.NewBox(gtk.OrientationVertical, 20)
	mainBox.SetMarginTop(common.DialogMargin)
	mainBox.SetMarginBottom(16)
	mainBox.SetMarginStart(common.DialogMargin)
	mainBox.SetMarginEnd(common.DialogMargin)

	// Operation mode
	modeSection := newSection("Operation Mode", "network-wireless-symbolic")
	grid := gtk.NewGrid()
	grid.SetColumnHomogeneous(true)
	grid.SetRowSpacing(8)
	grid.SetColumnSpacing(8)
	for i, mode := range warp.Modes {
		btn := gtk.NewButtonWithLabel(mode.Label())
		btn.AddCSSClass("mode-button")
		btn.SetTooltipText("warp-cli mode " + string(mode))
		m := mode
		btn.ConnectClicked(func() { sp.onMode(m) })
		sp.modeButtons[mode] = btn
		grid.Attach(btn, i%modeColumns, i/modeColumns, 1, 1)
	}
	modeSection.Append(grid)
	mainBox.Append(modeSection)

	// Client information
	infoSection := newSection("Client Information", "dialog-information-symbolic")
	infoCard := newCard()
	sp.infoList = gtk.NewListBox()
	sp.infoList.SetSelectionMode(gtk.SelectionNone)
	infoCard.Append(sp.infoList)
	infoSection.Append(infoCard)

	sp.rawLabel = gtk.NewLabel("")
	sp.rawLabel.SetXAlign(0)
	sp.rawLabel.SetSelectable(true)
	sp.rawLabel.SetWrap(true)
	sp.rawLabel.AddCSSClass("raw-output")

	expander := gtk.NewExpander("warp-cli settings")
	expander.SetChild(sp.rawLabel)
	infoSection.Append(expander)
	mainBox.Append(infoSection)

	// WARP+ license
	licenseSection := newSection("WARP+ License", "dialog-password-symbolic")
	licenseCard := newCard()
	licenseInner := gtk.NewBox(gtk.OrientationVertical, 8)
	licenseInner.SetMarginTop(14)
	licenseInner.SetMarginBottom(14)
	licenseInner.SetMarginStart(16)
	licenseInner.SetMarginEnd(16)

	sp.licenseLabel = gtk.NewLabel("")
	sp.licenseLabel.SetXAlign(0)
	sp.licenseLabel.AddCSSClass("dim-label")
	sp.licenseLabel.AddCSSClass("caption")
	licenseInner.Append(sp.licenseLabel)

	entryBox := gtk.NewBox(gtk.OrientationHorizontal, 8)
	sp.licenseEntry = gtk.NewEntry()
	sp.licenseEntry.SetPlaceholderText("xxxxxxxx-xxxxxxxx-xxxxxxxx")
	sp.licenseEntry.SetVisibility(false)
	sp.licenseEntry.SetHExpand(true)
	entryBox.Append(sp.licenseEntry)

	applyBtn := gtk.NewButtonWithLabel("Apply")
	applyBtn.AddCSSClass("suggested-action")
	applyBtn.ConnectClicked(sp.onLicense)
	entryBox.Append(applyBtn)
	licenseInner.Append(entryBox)

	licenseCard.Append(licenseInner)
	licenseSection.Append(licenseCard)
	mainBox.Append(licenseSection)
	sp.refreshLicense()

	version := sp.mainWindow.app.version
	if version == "" {
		version = "dev"
	}
	footer := gtk.NewLabel("Application version " + version)
	footer.AddCSSClass("footer")
	mainBox.Append(footer)

	sp.root.SetChild(mainBox)
}

// Update renders a snapshot. Must run on the GTK thread.
func (sp *SettingsPanel) Update(snap warp.Snapshot) {
	current, _ := snap.CurrentMode()
	if current != sp.current {
		if btn, ok := sp.modeButtons[sp.current]; ok {
			btn.RemoveCSSClass("current")
		}
		if btn, ok := sp.modeButtons[current]; ok {
			btn.AddCSSClass("current")
		}
		sp.current = current
	}

	raw := ""
	if snap.Settings != nil {
		raw = snap.Settings.Raw
	}
	if raw == sp.lastRaw {
		return
	}
	sp.lastRaw = raw
	sp.rawLabel.SetText(raw)

	clearList(sp.infoList)
	fields := snap.Settings.ClientInfo()
	if len(fields) == 0 {
		empty := gtk.NewLabel("No client information available")
		empty.AddCSSClass("dim-label")
		empty.SetMarginTop(14)
		empty.SetMarginBottom(14)
		sp.infoList.Append(empty)
		return
	}
	for _, f := range fields {
		sp.infoList.Append(sp.createInfoRow(f))
	}
}

func (sp *SettingsPanel) createInfoRow(f warp.Field) *gtk.Box {
	row := gtk.NewBox(gtk.OrientationHorizontal, 12)
	row.SetMarginTop(10)
	row.SetMarginBottom(10)
	row.SetMarginStart(16)
	row.SetMarginEnd(16)

	key := gtk.NewLabel(f.Label)
	key.SetXAlign(0)
	key.SetHExpand(true)
	key.AddCSSClass("info-key")
	row.Append(key)

	value := gtk.NewLabel(f.Value)
	value.SetXAlign(1)
	value.SetSelectable(true)
	value.AddCSSClass("info-value")
	row.Append(value)

	return row
}

func (sp *SettingsPanel) setModeButtonsSensitive(sensitive bool) {
	for _, btn := range sp.modeButtons {
		btn.SetSensitive(sensitive)
	}
}

func (sp *SettingsPanel) onMode(mode warp.Mode) {
	if sp.applying || mode == sp.current {
		return
	}
	sp.applying = true
	sp.setModeButtonsSensitive(false)

	go func() {
		_, err := sp.mainWindow.app.monitor.ApplyMode(context.Background(), mode)
		glib.IdleAdd(func() {
			sp.applying = false
			sp.setModeButtonsSensitive(true)
			if err != nil {
				common.LogWarn("Setting mode %s failed: %v", mode, err)
				sp.mainWindow.showError("Mode Change Failed", cli.Describe(err))
				return
			}
			sp.mainWindow.SetStatus("Mode set to " + mode.Label())
		})
	}()
}

func (sp *SettingsPanel) onLicense() {
	key := sp.licenseEntry.Text()
	client := sp.mainWindow.app.client
	secrets := sp.mainWindow.app.secrets

	go func() {
		_, err := client.SetLicense(context.Background(), key)
		if err == nil && secrets != nil {
			if serr := secrets.Store(keyring.LicenseKey, strings.TrimSpace(key)); serr != nil {
				common.LogWarn("License applied but not saved: %v", serr)
			}
		}
		glib.IdleAdd(func() {
			if err != nil {
				sp.mainWindow.showError("License Error", cli.Describe(err))
				return
			}
			sp.licenseEntry.SetText("")
			sp.refreshLicense()
			sp.mainWindow.showInfo("WARP+ License", "License "+keyring.MaskLicense(key)+" applied.")
		})
	}()
}

// refreshLicense shows the masked stored license, if any.
func (sp *SettingsPanel) refreshLicense() {
	secrets := sp.mainWindow.app.secrets
	if secrets == nil {
		sp.licenseLabel.SetText("Enter a WARP+ license key to upgrade this device.")
		return
	}

	key, err := secrets.Get(keyring.LicenseKey)
	switch {
	case err == nil:
		text := "Current license: " + keyring.MaskLicense(key)
		if secrets.UsesFile() {
			text += " (stored in an encrypted file)"
		}
		sp.licenseLabel.SetText(text)
	case errors.Is(err, keyring.ErrNotFound):
		sp.licenseLabel.SetText("Enter a WARP+ license key to upgrade this device.")
	default:
		common.LogWarn("Reading stored license: %v", err)
		sp.licenseLabel.SetText("Stored license could not be read.")
	}
}
