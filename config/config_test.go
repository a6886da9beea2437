package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/warppulse/warppulse/common"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.PollInterval != 3*time.Second {
		t.Errorf("PollInterval = %v, want 3s", cfg.PollInterval)
	}
	if cfg.SettleDelay != time.Second {
		t.Errorf("SettleDelay = %v, want 1s", cfg.SettleDelay)
	}
	if !cfg.MinimizeToTray {
		t.Error("MinimizeToTray should be true by default")
	}
	if cfg.AcceptTOS {
		t.Error("AcceptTOS should be false by default")
	}
	if cfg.Theme != common.ThemeAuto {
		t.Errorf("Theme = %q, want auto", cfg.Theme)
	}
}

func TestLoadFrom_CreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if *cfg != *DefaultConfig() {
		t.Errorf("LoadFrom() = %+v, want defaults", cfg)
	}
	if !common.FileExists(path) {
		t.Error("LoadFrom() should write the defaults to disk")
	}
}

func TestLoadFrom_ParsesFile(t *testing.T) {
	path := writeConfig(t, `
warp_cli_path: /usr/local/bin/warp-cli
accept_tos: true
poll_interval: 5s
command_timeout: 1m
theme: dark
start_hidden: true
`)

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.WarpCLIPath != "/usr/local/bin/warp-cli" || !cfg.AcceptTOS || !cfg.StartHidden {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.PollInterval != 5*time.Second {
		t.Errorf("PollInterval = %v, want 5s", cfg.PollInterval)
	}
	if cfg.CommandTimeout != time.Minute {
		t.Errorf("CommandTimeout = %v, want 1m", cfg.CommandTimeout)
	}
	if cfg.Theme != common.ThemeDark {
		t.Errorf("Theme = %q, want dark", cfg.Theme)
	}
	// Absent fields keep defaults.
	if !cfg.ShowNotifications || cfg.HistoryLimit != common.DefaultHistoryLimit {
		t.Errorf("absent fields should keep defaults: %+v", cfg)
	}
}

func TestLoadFrom_InvalidValuesFallBack(t *testing.T) {
	path := writeConfig(t, `
theme: purple
poll_interval: 10ms
command_timeout: 0s
history_limit: -4
`)

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	def := DefaultConfig()
	if cfg.Theme != def.Theme {
		t.Errorf("Theme = %q, want fallback %q", cfg.Theme, def.Theme)
	}
	if cfg.PollInterval != def.PollInterval {
		t.Errorf("PollInterval = %v, want fallback %v", cfg.PollInterval, def.PollInterval)
	}
	if cfg.CommandTimeout != def.CommandTimeout {
		t.Errorf("CommandTimeout = %v, want fallback %v", cfg.CommandTimeout, def.CommandTimeout)
	}
	if cfg.HistoryLimit != def.HistoryLimit {
		t.Errorf("HistoryLimit = %v, want fallback %v", cfg.HistoryLimit, def.HistoryLimit)
	}
}

func TestLoadFrom_RejectsUnknownFields(t *testing.T) {
	path := writeConfig(t, "auto_reconnect: true\n")

	if _, err := LoadFrom(path); !errors.Is(err, common.ErrConfigLoad) {
		t.Errorf("LoadFrom() error = %v, want ErrConfigLoad", err)
	}
}

func TestSaveTo_PreservesValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := DefaultConfig()
	cfg.PollInterval = 7 * time.Second
	cfg.RecordHistory = false

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("config file mode = %v, want 0600", info.Mode().Perm())
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if loaded.PollInterval != 7*time.Second || loaded.RecordHistory {
		t.Errorf("loaded = %+v, want saved values", loaded)
	}
}

func TestClone(t *testing.T) {
	cfg := DefaultConfig()
	cp := cfg.Clone()
	cp.Theme = common.ThemeLight
	if cfg.Theme == common.ThemeLight {
		t.Error("Clone should not share state")
	}
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	path := writeConfig(t, "theme: light\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan *Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(c *Config) { changes <- c })
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(path, []byte("theme: dark\n"), 0600); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-changes:
		if cfg.Theme != common.ThemeDark {
			t.Errorf("reloaded Theme = %q, want dark", cfg.Theme)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Watch did not report the change")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch() error = %v", err)
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}
