// Package main provides the entry point for WarpPulse.
// WarpPulse is a desktop client for Cloudflare WARP: a GTK4 window and a
// system tray menu that drive warp-cli, plus a command-line interface and a
// terminal dashboard.
//
// Usage:
//
//	warppulse [options]
//
// Environment:
//
//	The Cloudflare WARP client (warp-cli and its daemon) must be installed.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/warppulse/warppulse/cli"
	"github.com/warppulse/warppulse/common"
	"github.com/warppulse/warppulse/config"
	"github.com/warppulse/warppulse/history"
	"github.com/warppulse/warppulse/keyring"
	"github.com/warppulse/warppulse/tui"
	"github.com/warppulse/warppulse/ui"
	"github.com/warppulse/warppulse/warp"
	"golang.org/x/term"
)

// Build-time variables injected via ldflags (-X main.appVersion=x.y.z)
// Default values are used for local development builds
var (
	appVersion = "dev"
	buildTime  = "unknown"
	commitSHA  = "unknown"
)

var (
	// GUI/General flags
	showVersion = flag.Bool("version", false, "Show version and exit")
	verbose     = flag.Bool("verbose", false, "Enable verbose logging")
	showHelp    = flag.Bool("help", false, "Show help message")
	tuiMode     = flag.Bool("tui", false, "Open the terminal dashboard")

	// CLI flags
	showStatus   = flag.Bool("status", false, "Show connection status and mode")
	showSettings = flag.Bool("settings", false, "Show client settings")
	connectWarp  = flag.Bool("connect", false, "Connect WARP")
	disconnect   = flag.Bool("disconnect", false, "Disconnect WARP")
	setMode      = flag.String("mode", "", "Set the operating mode")
	listModes    = flag.Bool("modes", false, "List the operating modes")
	license      = flag.String("license", "", "Attach a WARP+ license key")
	tunnelList   = flag.Bool("tunnel-list", false, "List split-tunnel exclusions")
	tunnelAdd    = flag.String("tunnel-add", "", "Exclude an IP or network from the tunnel")
	tunnelRemove = flag.String("tunnel-remove", "", "Remove a split-tunnel exclusion")
	historyCount = flag.Int("history", 0, "Show the last N status changes")
	rawOutput    = flag.Bool("raw", false, "Print warp-cli output unchanged")
)

func main() {
	flag.Usage = func() { cli.PrintHelp(os.Stderr) }
	flag.Parse()

	if *showHelp {
		cli.PrintHelp(os.Stdout)
		os.Exit(0)
	}

	if *showVersion {
		fmt.Printf("%s v%s\n", common.AppName, appVersion)
		if buildTime != "unknown" {
			fmt.Printf("  Build:  %s\n", buildTime)
			fmt.Printf("  Commit: %s\n", commitSHA)
		}
		os.Exit(0)
	}

	cliMode := isCLIMode()

	logLevel := common.LevelInfo
	if *verbose {
		logLevel = common.LevelDebug
	}

	// Console logging would interleave with command output and the dashboard.
	if err := common.InitLogger(common.LogConfig{
		Level:       logLevel,
		EnableFile:  true,
		Quiet:       *tuiMode || (cliMode && !*verbose),
		MaxFileSize: 5 * 1024 * 1024, // 5MB
		MaxBackups:  5,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not initialize file logging: %v\n", err)
	}
	defer common.CloseLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if cliMode {
		setupSignalHandler(cancel)
	}

	configPath, err := config.Path()
	if err != nil {
		fail(err)
	}
	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		common.LogWarn("Using default configuration: %v", err)
		cfg = config.DefaultConfig()
	}

	// --modes only prints the static list.
	if *listModes && !needsWarpCLI() {
		if err := cli.New(nil).ListModes(); err != nil {
			fail(err)
		}
		return
	}

	store := openHistory()
	if store != nil {
		defer store.Close()
	}

	if *historyCount > 0 && !needsWarpCLI() {
		if err := cli.New(nil, cli.WithHistory(store)).History(ctx, *historyCount); err != nil {
			fail(err)
		}
		return
	}

	binary, err := findWarpCLI(cfg.WarpCLIPath)
	if err != nil {
		common.LogError("warp-cli not found: %v", err)
		fail(err)
	}

	client := warp.NewClient(
		warp.WithBinary(binary),
		warp.WithTimeout(cfg.CommandTimeout),
		warp.WithAcceptTOS(cfg.AcceptTOS),
	)

	secrets, err := keyring.Open()
	if err != nil {
		common.LogWarn("Secret storage unavailable: %v", err)
		secrets = nil
	}

	switch {
	case cliMode:
		runCLI(ctx, client, store, secrets)
	case *tuiMode:
		runTUI(client, store, cfg)
	default:
		common.LogInfo("Starting %s v%s", common.AppName, appVersion)
		app := ui.NewApplication(ui.Options{
			Version:    appVersion,
			Config:     cfg,
			ConfigPath: configPath,
			Client:     client,
			History:    store,
			Secrets:    secrets,
		})
		// GTK parses its own arguments; ours were consumed by flag.
		exitCode := app.Run(os.Args[:1])
		if exitCode != 0 {
			common.LogWarn("Application exited with code %d", exitCode)
		}
		// Deferred calls do not run after os.Exit.
		common.CloseLogger()
		os.Exit(exitCode)
	}
}

// isCLIMode reports whether any one-shot command flag is set.
func isCLIMode() bool {
	return needsWarpCLI() || *listModes || *historyCount > 0
}

// needsWarpCLI reports whether a command flag that invokes warp-cli is set.
func needsWarpCLI() bool {
	return *showStatus || *showSettings || *connectWarp || *disconnect ||
		*setMode != "" || *license != "" || *tunnelList ||
		*tunnelAdd != "" || *tunnelRemove != ""
}

// runCLI handles command-line interface operations. Each set flag runs in
// the order listed in --help; the first failure stops the rest.
func runCLI(ctx context.Context, client *warp.Client, store *history.Store, secrets *keyring.Store) {
	opts := []cli.Option{cli.WithHistory(store), cli.WithRaw(*rawOutput)}
	if secrets != nil {
		opts = append(opts, cli.WithSecrets(secrets))
	}
	cliApp := cli.New(client, opts...)

	steps := []struct {
		enabled bool
		run     func() error
	}{
		{*connectWarp, func() error { return cliApp.Connect(ctx) }},
		{*disconnect, func() error { return cliApp.Disconnect(ctx) }},
		{*setMode != "", func() error { return cliApp.SetMode(ctx, *setMode) }},
		{*listModes, cliApp.ListModes},
		{*license != "", func() error { return cliApp.SetLicense(ctx, *license) }},
		{*tunnelAdd != "", func() error { return cliApp.TunnelAdd(ctx, *tunnelAdd) }},
		{*tunnelRemove != "", func() error { return cliApp.TunnelRemove(ctx, *tunnelRemove) }},
		{*tunnelList, func() error { return cliApp.TunnelList(ctx) }},
		{*showSettings, func() error { return cliApp.Settings(ctx) }},
		{*showStatus, func() error { return cliApp.Status(ctx) }},
		{*historyCount > 0, func() error { return cliApp.History(ctx, *historyCount) }},
	}

	for _, step := range steps {
		if !step.enabled {
			continue
		}
		select {
		case <-ctx.Done():
			common.LogInfo("Operation cancelled before execution")
			return
		default:
		}
		if err := step.run(); err != nil {
			fail(err)
		}
	}
}

// runTUI opens the terminal dashboard. Status changes are recorded the same
// way the GUI records them.
func runTUI(client *warp.Client, store *history.Store, cfg *config.Config) {
	if !term.IsTerminal(int(os.Stdout.Fd())) || !term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: --tui needs an interactive terminal")
		os.Exit(1)
	}

	monitor := warp.NewMonitor(client, warp.MonitorConfig{
		PollInterval: cfg.PollInterval,
		SettleDelay:  cfg.SettleDelay,
	})
	if store != nil && cfg.RecordHistory {
		monitor.SetOnChange(func(_, snap warp.Snapshot) {
			ctx := context.Background()
			if _, err := store.Record(ctx, history.Event{
				Status:    snap.Status,
				Connected: snap.Connected,
				Mode:      snap.Mode,
			}); err != nil {
				common.LogWarn("Could not record status change: %v", err)
				return
			}
			if _, err := store.Prune(ctx, cfg.HistoryLimit); err != nil {
				common.LogWarn("Could not prune history: %v", err)
			}
		})
	}

	if err := tui.Run(monitor, cfg.PollInterval, appVersion); err != nil {
		fail(err)
	}
}

// openHistory opens the history database, or returns nil when it is
// unavailable.
func openHistory() *history.Store {
	path, err := history.DefaultPath()
	if err != nil {
		common.LogWarn("History disabled: %v", err)
		return nil
	}
	store, err := history.Open(path)
	if err != nil {
		common.LogWarn("History disabled: %v", err)
		return nil
	}
	return store
}

// findWarpCLI resolves the warp-cli executable, honouring a configured path.
func findWarpCLI(configured string) (string, error) {
	name := configured
	if name == "" {
		name = common.DefaultWarpCLI
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrCLINotFound, err)
	}
	return path, nil
}

// fail prints err the way the CLI describes it and exits with status 1.
// With --raw, warp-cli stderr is printed byte for byte.
func fail(err error) {
	cli.PrintError(os.Stderr, err, *rawOutput)
	common.CloseLogger()
	os.Exit(1)
}

// setupSignalHandler configures graceful shutdown on SIGINT/SIGTERM.
// When a signal is received, it cancels the context to allow cleanup.
func setupSignalHandler(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		common.LogInfo("Received signal %v, initiating graceful shutdown...", sig)
		cancel()
	}()
}
