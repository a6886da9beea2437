package ui

import (
	"context"
	"errors"

	"github.com/diamondburned/gotk4/pkg/gio/v2"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
	"github.com/warppulse/warppulse/cli"
	"github.com/warppulse/warppulse/common"
	"github.com/warppulse/warppulse/warp"
)

const (
	pageStatus   = "status"
	pageSettings = "settings"
)

// MainWindow represents the main application window.
type MainWindow struct {
	app       *Application
	window    *gtk.ApplicationWindow
	headerBar *gtk.HeaderBar
	stack     *gtk.Stack

	backButton     *gtk.Button
	settingsButton *gtk.Button

	statusView   *gtk.Box
	shield       *gtk.Image
	titleLabel   *gtk.Label
	statusLabel  *gtk.Label
	modeLabel    *gtk.Label
	errorLabel   *gtk.Label
	messageLabel *gtk.Label
	toggleButton *gtk.Button

	settings *SettingsPanel
	snap     warp.Snapshot
	busy     bool
}

// NewMainWindow creates a new main window.
func NewMainWindow(app *Application) *MainWindow {
	mw := &MainWindow{
		app:  app,
		snap: app.monitor.Latest(),
	}

	mw.window = gtk.NewApplicationWindow(app.app)
	mw.window.SetTitle(common.AppName)
	mw.window.SetDefaultSize(common.DefaultWindowWidth, common.DefaultWindowHeight)
	mw.window.SetResizable(false)
	mw.window.SetIconName(common.ConfigDirName)

	mw.createLayout()
	mw.Update(mw.snap)

	return mw
}

// createLayout creates the window layout.
func (mw *MainWindow) createLayout() {
	mw.headerBar = gtk.NewHeaderBar()

	mw.backButton = gtk.NewButton()
	mw.backButton.SetIconName("go-previous-symbolic")
	mw.backButton.SetTooltipText("Back")
	mw.backButton.ConnectClicked(func() { mw.showPage(pageStatus) })
	mw.headerBar.PackStart(mw.backButton)

	mw.settingsButton = gtk.NewButton()
	mw.settingsButton.SetIconName("emblem-system-symbolic")
	mw.settingsButton.SetTooltipText("WARP settings")
	mw.settingsButton.ConnectClicked(func() { mw.showPage(pageSettings) })
	mw.headerBar.PackStart(mw.settingsButton)

	menuButton := gtk.NewMenuButton()
	menuButton.SetIconName("open-menu-symbolic")
	menuButton.SetTooltipText("Menu")
	menuButton.SetMenuModel(mw.createMenu())
	mw.headerBar.PackEnd(menuButton)

	mw.window.SetTitlebar(mw.headerBar)

	mw.stack = gtk.NewStack()
	mw.stack.SetTransitionType(gtk.StackTransitionTypeSlideLeftRight)
	mw.stack.AddNamed(mw.createStatusView(), pageStatus)

	mw.settings = NewSettingsPanel(mw)
	mw.stack.AddNamed(mw.settings.Widget(), pageSettings)

	mw.window.SetChild(mw.stack)
	mw.showPage(pageStatus)
}

// createStatusView builds the shield, status and toggle page.
func (mw *MainWindow) createStatusView() *gtk.Box {
	mw.statusView = gtk.NewBox(gtk.OrientationVertical, 12)
	mw.statusView.AddCSSClass("status-view")
	mw.statusView.SetVExpand(true)

	spacer := gtk.NewBox(gtk.OrientationVertical, 0)
	spacer.SetVExpand(true)
	mw.statusView.Append(spacer)

	mw.shield = gtk.NewImage()
	mw.shield.SetPixelSize(96)
	mw.shield.AddCSSClass("shield-icon")
	mw.statusView.Append(mw.shield)

	mw.titleLabel = gtk.NewLabel("")
	mw.titleLabel.AddCSSClass("status-title")
	mw.statusView.Append(mw.titleLabel)

	mw.statusLabel = gtk.NewLabel("")
	mw.statusLabel.AddCSSClass("status-text")
	mw.statusLabel.SetWrap(true)
	mw.statusView.Append(mw.statusLabel)

	mw.modeLabel = gtk.NewLabel("")
	mw.modeLabel.AddCSSClass("mode-pill")
	mw.modeLabel.SetHAlign(gtk.AlignCenter)
	mw.statusView.Append(mw.modeLabel)

	mw.toggleButton = gtk.NewButtonWithLabel("Connect")
	mw.toggleButton.AddCSSClass("toggle-button")
	mw.toggleButton.SetHAlign(gtk.AlignCenter)
	mw.toggleButton.SetMarginTop(24)
	mw.toggleButton.ConnectClicked(mw.onToggle)
	mw.statusView.Append(mw.toggleButton)

	mw.messageLabel = gtk.NewLabel("")
	mw.messageLabel.AddCSSClass("dim-label")
	mw.messageLabel.SetWrap(true)
	mw.statusView.Append(mw.messageLabel)

	mw.errorLabel = gtk.NewLabel("")
	mw.errorLabel.AddCSSClass("error-text")
	mw.errorLabel.SetWrap(true)
	mw.errorLabel.SetMaxWidthChars(40)
	mw.errorLabel.SetVisible(false)
	mw.statusView.Append(mw.errorLabel)

	bottom := gtk.NewBox(gtk.OrientationVertical, 0)
	bottom.SetVExpand(true)
	mw.statusView.Append(bottom)

	footer := gtk.NewLabel("Powered by Cloudflare WARP")
	footer.AddCSSClass("footer")
	mw.statusView.Append(footer)

	return mw.statusView
}

// createMenu creates the application menu.
func (mw *MainWindow) createMenu() *gio.Menu {
	menu := gio.NewMenu()

	warpSection := gio.NewMenu()
	warpSection.Append("Refresh", "app.refresh")
	warpSection.Append("Split Tunneling...", "app.split-tunnel")
	menu.AppendSection("", &warpSection.MenuModel)

	settingsSection := gio.NewMenu()
	settingsSection.Append("Preferences", "app.preferences")
	menu.AppendSection("", &settingsSection.MenuModel)

	appSection := gio.NewMenu()
	appSection.Append("About", "app.about")
	appSection.Append("Quit", "app.quit")
	menu.AppendSection("", &appSection.MenuModel)

	mw.setupActions()

	return menu
}

// setupActions configures menu actions.
func (mw *MainWindow) setupActions() {
	mw.addAction("preferences", []string{"<Control>comma"}, mw.onPreferences)
	mw.addAction("about", nil, mw.onAbout)
	mw.addAction("quit", []string{"<Control>q"}, mw.app.Quit)
	mw.addAction("split-tunnel", []string{"<Control>t"}, mw.onSplitTunnel)
	mw.addAction("refresh", []string{"F5"}, func() {
		go mw.app.monitor.Refresh(context.Background())
	})
}

func (mw *MainWindow) addAction(name string, accels []string, activate func()) {
	action := gio.NewSimpleAction(name, nil)
	action.ConnectActivate(func(_ *glib.Variant) {
		activate()
	})
	mw.app.app.AddAction(action)
	if len(accels) > 0 {
		mw.app.app.SetAccelsForAction("app."+name, accels)
	}
}

// Show displays the window.
func (mw *MainWindow) Show() {
	mw.window.Show()
}

// SetHideOnClose makes the close button hide the window instead of
// destroying it.
func (mw *MainWindow) SetHideOnClose(hide bool) {
	mw.window.SetHideOnClose(hide)
}

// SetStatus shows a transient message under the toggle button.
func (mw *MainWindow) SetStatus(text string) {
	if mw.messageLabel != nil {
		mw.messageLabel.SetText(text)
	}
}

func (mw *MainWindow) showPage(name string) {
	mw.stack.SetVisibleChildName(name)
	mw.backButton.SetVisible(name != pageStatus)
	mw.settingsButton.SetVisible(name == pageStatus)
}

// Update renders a monitor snapshot. Must run on the GTK thread.
func (mw *MainWindow) Update(snap warp.Snapshot) {
	mw.snap = snap

	if snap.Connected {
		mw.statusView.RemoveCSSClass("unprotected")
		mw.statusView.AddCSSClass("protected")
		mw.shield.SetFromIconName("security-high-symbolic")
		mw.titleLabel.SetText("Protected")
	} else {
		mw.statusView.RemoveCSSClass("protected")
		mw.statusView.AddCSSClass("unprotected")
		mw.shield.SetFromIconName("security-low-symbolic")
		mw.titleLabel.SetText("Unprotected")
	}

	mw.statusLabel.SetText(snap.Status)
	mw.modeLabel.SetText("Active Mode: " + snap.Mode)

	if snap.Err != nil {
		mw.errorLabel.SetText(cli.Describe(snap.Err))
		mw.errorLabel.SetVisible(true)
	} else {
		mw.errorLabel.SetVisible(false)
	}

	mw.updateToggle()
	mw.settings.Update(snap)
}

func (mw *MainWindow) updateToggle() {
	mw.toggleButton.RemoveCSSClass("connect")
	mw.toggleButton.RemoveCSSClass("disconnect")

	if mw.busy {
		mw.toggleButton.SetLabel("Processing...")
		mw.toggleButton.SetSensitive(false)
		return
	}

	mw.toggleButton.SetSensitive(true)
	if mw.snap.Connected {
		mw.toggleButton.SetLabel("Disconnect")
		mw.toggleButton.AddCSSClass("disconnect")
	} else {
		mw.toggleButton.SetLabel("Connect")
		mw.toggleButton.AddCSSClass("connect")
	}
}

// Event handlers

func (mw *MainWindow) onToggle() {
	if mw.busy {
		return
	}
	mw.busy = true
	mw.SetStatus("")
	mw.updateToggle()

	go func() {
		out, err := mw.app.monitor.Toggle(context.Background())
		glib.IdleAdd(func() {
			mw.busy = false
			mw.updateToggle()

			switch {
			case errors.Is(err, common.ErrBusy):
			case err != nil:
				common.LogWarn("Toggle failed: %v", err)
				mw.showError("Connection Error", cli.Describe(err))
			default:
				mw.SetStatus(common.FirstLine(out))
			}
		})
	}()
}

func (mw *MainWindow) onPreferences() {
	NewPreferencesDialog(mw).Show()
}

func (mw *MainWindow) onSplitTunnel() {
	NewSplitTunnelDialog(mw).Show()
}

func (mw *MainWindow) onAbout() {
	about := gtk.NewAboutDialog()
	about.SetTransientFor(&mw.window.Window)
	about.SetModal(true)

	about.SetProgramName(common.AppName)
	about.SetLogoIconName(common.ConfigDirName)
	about.SetVersion(mw.app.version)
	about.SetComments("Desktop client for Cloudflare WARP.\nDrives warp-cli from a window and the system tray.")

	about.Show()
}

func (mw *MainWindow) showError(title, message string) {
	mw.showMessage("dialog-error-symbolic", title, message)
}

func (mw *MainWindow) showInfo(title, message string) {
	mw.showMessage("dialog-information-symbolic", title, message)
}

func (mw *MainWindow) showMessage(iconName, title, message string) {
	window := gtk.NewWindow()
	window.SetTitle(title)
	window.SetTransientFor(&mw.window.Window)
	window.SetModal(true)
	window.SetDefaultSize(350, 150)
	window.SetResizable(false)

	mainBox := gtk.NewBox(gtk.OrientationVertical, 12)
	mainBox.SetMarginTop(common.DialogMargin)
	mainBox.SetMarginBottom(common.DialogMargin)
	mainBox.SetMarginStart(common.DialogMargin)
	mainBox.SetMarginEnd(common.DialogMargin)
	mainBox.SetHAlign(gtk.AlignCenter)

	icon := gtk.NewImage()
	icon.SetFromIconName(iconName)
	icon.SetPixelSize(48)
	mainBox.Append(icon)

	titleLabel := gtk.NewLabel(title)
	titleLabel.AddCSSClass("heading")
	mainBox.Append(titleLabel)

	msgLabel := gtk.NewLabel(message)
	msgLabel.SetWrap(true)
	msgLabel.SetMaxWidthChars(40)
	msgLabel.SetSelectable(true)
	mainBox.Append(msgLabel)

	okBtn := gtk.NewButtonWithLabel("OK")
	okBtn.SetHAlign(gtk.AlignCenter)
	okBtn.SetMarginTop(12)
	okBtn.ConnectClicked(func() {
		window.Close()
	})
	mainBox.Append(okBtn)

	window.SetChild(mainBox)
	window.Show()
}
