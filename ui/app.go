package ui

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gio/v2"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
	"github.com/warppulse/warppulse/cli"
	"github.com/warppulse/warppulse/common"
	"github.com/warppulse/warppulse/config"
	"github.com/warppulse/warppulse/history"
	"github.com/warppulse/warppulse/keyring"
	"github.com/warppulse/warppulse/warp"
)

const logRotationInterval = 10 * time.Minute

// Application represents the main application
type Application struct {
	app      *gtk.Application
	window   *MainWindow
	client   *warp.Client
	monitor  *warp.Monitor
	history  *history.Store
	secrets  *keyring.Store
	notifier common.Notifier
	version  string
	tray     *TrayIndicator

	// unavailable is set while refreshes fail, so the outage is announced once.
	unavailable atomic.Bool

	mu         sync.RWMutex
	config     *config.Config
	configPath string
	cancel     context.CancelFunc
}

// Options carries the services the GUI runs on. History and Secrets are
// optional.
type Options struct {
	Version    string
	Config     *config.Config
	ConfigPath string
	Client     *warp.Client
	History    *history.Store
	Secrets    *keyring.Store
}

// NewApplication creates a new application
func NewApplication(opts Options) *Application {
	app := gtk.NewApplication(common.AppID, gio.ApplicationFlagsNone)

	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	application := &Application{
		app:     app,
		client:  opts.Client,
		history: opts.History,
		secrets: opts.Secrets,
		version: opts.Version,
		monitor: warp.NewMonitor(opts.Client, warp.MonitorConfig{
			PollInterval: cfg.PollInterval,
			SettleDelay:  cfg.SettleDelay,
		}),
		notifier:   NewNotifier(),
		config:     cfg,
		configPath: opts.ConfigPath,
	}

	app.ConnectActivate(application.onActivate)
	app.ConnectShutdown(application.shutdown)

	return application
}

// Run runs the application
func (a *Application) Run(args []string) int {
	return a.app.Run(args)
}

// onActivate is called when the application is activated
func (a *Application) onActivate() {
	// A second launch only brings the running window forward.
	if a.window != nil {
		a.showWindow()
		return
	}

	adw.Init()
	cfg := a.Config()
	a.ApplyTheme(cfg.Theme)
	a.setupAppIcon()
	LoadStyles()

	a.window = NewMainWindow(a)
	a.window.SetHideOnClose(cfg.MinimizeToTray)
	if cfg.StartHidden {
		common.LogInfo("Starting hidden in the system tray")
	} else {
		a.window.Show()
	}

	a.tray = NewTrayIndicator(a)
	go a.tray.Run()

	a.setupMonitor()
	a.watchConfig()
}

// setupAppIcon sets up the application icon
func (a *Application) setupAppIcon() {
	display := gdk.DisplayGetDefault()
	if display == nil {
		return
	}

	iconTheme := gtk.IconThemeGetForDisplay(display)
	if iconTheme == nil {
		return
	}

	if execPath, err := os.Executable(); err == nil {
		iconTheme.AddSearchPath(filepath.Join(filepath.Dir(execPath), "assets", "icons"))
	}
	if cwd, err := os.Getwd(); err == nil {
		iconTheme.AddSearchPath(filepath.Join(cwd, "assets", "icons"))
	}

	gtk.WindowSetDefaultIconName(common.ConfigDirName)
}

// Config returns the current configuration.
func (a *Application) Config() *config.Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.config
}

// ApplyTheme applies the specified theme to the application.
// Supported values: "auto" (system default), "light", "dark"
func (a *Application) ApplyTheme(theme string) {
	manager := adw.StyleManagerGetDefault()
	if manager == nil {
		return
	}

	switch theme {
	case common.ThemeLight:
		manager.SetColorScheme(adw.ColorSchemeForceLight)
	case common.ThemeDark:
		manager.SetColorScheme(adw.ColorSchemeForceDark)
	default:
		manager.SetColorScheme(adw.ColorSchemeDefault)
	}
}

// applyConfig switches to cfg. Settings that only affect how warp-cli is
// launched take effect on the next start.
func (a *Application) applyConfig(cfg *config.Config) {
	a.mu.Lock()
	previous := a.config
	a.config = cfg
	a.mu.Unlock()

	a.monitor.UpdateInterval(cfg.PollInterval)
	a.monitor.UpdateSettleDelay(cfg.SettleDelay)

	if previous.WarpCLIPath != cfg.WarpCLIPath || previous.AcceptTOS != cfg.AcceptTOS ||
		previous.CommandTimeout != cfg.CommandTimeout {
		common.LogInfo("warp-cli launch settings changed; restart %s to apply them", common.AppName)
	}

	glib.IdleAdd(func() {
		a.ApplyTheme(cfg.Theme)
		if a.window != nil {
			a.window.SetHideOnClose(cfg.MinimizeToTray)
		}
	})
}

// watchConfig reloads the configuration when the file changes on disk.
func (a *Application) watchConfig() {
	if a.configPath == "" {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	go a.rotateLogs(ctx)
	go func() {
		err := config.Watch(ctx, a.configPath, func(cfg *config.Config) {
			common.LogInfo("Configuration reloaded")
			a.applyConfig(cfg)
		})
		if err != nil {
			common.LogWarn("Config watcher stopped: %v", err)
		}
	}()
}

// rotateLogs keeps the log file of a long-running session within its size
// limit.
func (a *Application) rotateLogs(ctx context.Context) {
	ticker := time.NewTicker(logRotationInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			common.GetLogger().CheckRotation()
		}
	}
}

// setupMonitor routes monitor snapshots to the window and the tray.
func (a *Application) setupMonitor() {
	a.monitor.SetOnUpdate(func(snap warp.Snapshot) {
		a.reportAvailability(snap)
		if a.tray != nil {
			a.tray.SetState(snap)
		}
		glib.IdleAdd(func() {
			if a.window != nil {
				a.window.Update(snap)
			}
		})
	})
	a.monitor.SetOnChange(a.onStateChange)
	a.monitor.Start()
}

// reportAvailability announces the first failed refresh after a working
// one. The flag clears on the next successful refresh.
func (a *Application) reportAvailability(snap warp.Snapshot) {
	if snap.Err == nil {
		a.unavailable.Store(false)
		return
	}
	if a.unavailable.Swap(true) || !a.Config().ShowNotifications {
		return
	}
	if err := a.notifier.NotifyError("WARP Status Unavailable", cli.Describe(snap.Err)); err != nil {
		common.LogDebug("Could not announce refresh failure: %v", err)
	}
}

// onStateChange records the transition and notifies about connection
// changes. The first successful snapshot after startup carries a zero old
// snapshot; it is recorded but not announced.
func (a *Application) onStateChange(old, snap warp.Snapshot) {
	cfg := a.Config()
	first := old.CheckedAt.IsZero()

	if a.history != nil && cfg.RecordHistory {
		ctx, cancel := context.WithTimeout(context.Background(), common.CommandTimeout)
		defer cancel()
		if _, err := a.history.Record(ctx, history.Event{
			Status:    snap.Status,
			Connected: snap.Connected,
			Mode:      snap.Mode,
		}); err != nil {
			common.LogWarn("Could not record status change: %v", err)
		} else if _, err := a.history.Prune(ctx, cfg.HistoryLimit); err != nil {
			common.LogWarn("Could not prune history: %v", err)
		}
	}

	if first || !cfg.ShowNotifications || old.Connected == snap.Connected {
		return
	}
	var err error
	if snap.Connected {
		err = a.notifier.NotifyWithIcon("WARP Connected",
			"Your connection is protected ("+snap.Mode+")", "network-vpn")
	} else {
		err = a.notifier.NotifyWithIcon("WARP Disconnected",
			"Your connection is unprotected ("+snap.Status+")", "network-vpn-disconnected")
	}
	if err != nil {
		common.LogDebug("Could not announce state change: %v", err)
	}
}

// showWindow shows the main window
func (a *Application) showWindow() {
	if a.window != nil {
		a.window.window.Present()
	}
}

// Quit closes the application
func (a *Application) Quit() {
	a.app.Quit()
}

// shutdown stops the background work before the process exits.
func (a *Application) shutdown() {
	if a.cancel != nil {
		a.cancel()
	}
	a.monitor.Stop()
	if a.tray != nil {
		a.tray.Quit()
	}
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			common.LogWarn("Closing history: %v", err)
		}
	}
	common.LogInfo("%s stopped", common.AppName)
}
