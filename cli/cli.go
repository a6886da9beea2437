// Package cli provides command-line interface functionality for WarpPulse.
// This allows users to drive warp-cli through WarpPulse from the terminal
// without launching the GUI application.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/warppulse/warppulse/common"
	"github.com/warppulse/warppulse/history"
	"github.com/warppulse/warppulse/keyring"
	"github.com/warppulse/warppulse/warp"
)

// CLI represents the command-line interface.
type CLI struct {
	client  *warp.Client
	history *history.Store
	secrets common.SecretStore
	out     io.Writer
	raw     bool
}

// Option configures a CLI.
type Option func(*CLI)

// WithHistory enables the history command.
func WithHistory(store *history.Store) Option {
	return func(c *CLI) { c.history = store }
}

// WithSecrets stores license keys after they are applied.
func WithSecrets(store common.SecretStore) Option {
	return func(c *CLI) { c.secrets = store }
}

// WithOutput redirects output, which defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(c *CLI) { c.out = w }
}

// WithRaw prints warp-cli output unchanged instead of parsed views.
func WithRaw(raw bool) Option {
	return func(c *CLI) { c.raw = raw }
}

// New creates a new CLI instance.
func New(client *warp.Client, opts ...Option) *CLI {
	c := &CLI{client: client, out: os.Stdout}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Status shows the current connection status and mode.
func (c *CLI) Status(ctx context.Context) error {
	statusOut, err := c.client.Status(ctx)
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}
	if c.raw {
		fmt.Fprint(c.out, statusOut)
		return nil
	}

	settingsOut, err := c.client.Settings(ctx)
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	status := warp.ParseStatus(statusOut)
	protection := "Unprotected"
	if warp.IsConnected(status) {
		protection = "Protected"
	}

	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "STATE\t%s\n", protection)
	fmt.Fprintf(w, "STATUS\t%s\n", status)
	fmt.Fprintf(w, "MODE\t%s\n", warp.ModeLabel(settingsOut))
	return w.Flush()
}

// Settings shows the client information and, with raw output, the full
// warp-cli settings text.
func (c *CLI) Settings(ctx context.Context) error {
	out, err := c.client.Settings(ctx)
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if c.raw {
		fmt.Fprint(c.out, out)
		return nil
	}

	settings := warp.ParseSettings(out)
	mode := warp.ModeLabel(out)
	if m, ok := settings.Mode(); ok {
		mode = m.Label()
	}

	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Mode\t%s\n", mode)
	for _, f := range settings.ClientInfo() {
		fmt.Fprintf(w, "%s\t%s\n", f.Label, f.Value)
	}
	return w.Flush()
}

// Connect runs warp-cli connect.
func (c *CLI) Connect(ctx context.Context) error {
	out, err := c.client.Connect(ctx)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	c.result(out, "✓ Connect requested")
	return nil
}

// Disconnect runs warp-cli disconnect.
func (c *CLI) Disconnect(ctx context.Context) error {
	out, err := c.client.Disconnect(ctx)
	if err != nil {
		return fmt.Errorf("failed to disconnect: %w", err)
	}
	c.result(out, "✓ Disconnect requested")
	return nil
}

// SetMode switches the operating mode. Known mode ids and labels are
// normalized; anything else is passed to warp-cli as given.
func (c *CLI) SetMode(ctx context.Context, value string) error {
	mode := strings.TrimSpace(value)
	label := mode
	if m, err := warp.ParseMode(mode); err == nil {
		mode, label = string(m), m.Label()
	}

	out, err := c.client.SetMode(ctx, mode)
	if err != nil {
		return fmt.Errorf("failed to set mode: %w", err)
	}
	c.result(out, "✓ Mode set to "+label)
	return nil
}

// ListModes prints the selectable modes.
func (c *CLI) ListModes() error {
	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MODE\tDESCRIPTION")
	fmt.Fprintln(w, "----\t-----------")
	for _, m := range warp.Modes {
		fmt.Fprintf(w, "%s\t%s\n", m, m.Label())
	}
	return w.Flush()
}

// SetLicense attaches a WARP+ license key and remembers it in the keyring.
func (c *CLI) SetLicense(ctx context.Context, key string) error {
	out, err := c.client.SetLicense(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to set license: %w", err)
	}
	if c.secrets != nil {
		if err := c.secrets.Store(keyring.LicenseKey, strings.TrimSpace(key)); err != nil {
			common.LogWarn("License applied but not saved: %v", err)
		}
	}
	c.result(out, "✓ License "+keyring.MaskLicense(key)+" applied")
	return nil
}

// TunnelList prints the split-tunnel exclusions.
func (c *CLI) TunnelList(ctx context.Context) error {
	out, err := c.client.TunnelIPs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list excluded routes: %w", err)
	}
	fmt.Fprint(c.out, out)
	return nil
}

// TunnelAdd excludes an IP or network from the tunnel.
func (c *CLI) TunnelAdd(ctx context.Context, route string) error {
	out, err := c.client.AddTunnelIP(ctx, route)
	if err != nil {
		return fmt.Errorf("failed to exclude %s: %w", route, err)
	}
	c.result(out, "✓ Excluded "+warp.NormalizeRoute(route))
	return nil
}

// TunnelRemove drops an exclusion.
func (c *CLI) TunnelRemove(ctx context.Context, route string) error {
	out, err := c.client.RemoveTunnelIP(ctx, route)
	if err != nil {
		return fmt.Errorf("failed to remove %s: %w", route, err)
	}
	c.result(out, "✓ Removed "+warp.NormalizeRoute(route))
	return nil
}

// History prints the last n recorded status transitions.
func (c *CLI) History(ctx context.Context, n int) error {
	if c.history == nil {
		return common.ErrHistoryUnavailable
	}

	events, err := c.history.Recent(ctx, n)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Fprintln(c.out, "No status changes recorded.")
		return nil
	}

	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tSTATUS\tMODE")
	fmt.Fprintln(w, "----\t------\t----")
	for _, ev := range events {
		fmt.Fprintf(w, "%s\t%s\t%s\n",
			ev.RecordedAt.Local().Format(time.DateTime), ev.Status, ev.Mode)
	}
	return w.Flush()
}

// result relays warp-cli output in raw mode and prints summary otherwise.
func (c *CLI) result(out, summary string) {
	if c.raw {
		fmt.Fprint(c.out, out)
		return
	}
	fmt.Fprintln(c.out, summary)
	if line := common.FirstLine(out); line != "" && !strings.EqualFold(line, "success") {
		fmt.Fprintf(c.out, "  %s\n", line)
	}
}

// Describe turns an error from the CLI into the message shown to the user.
// warp-cli stderr is relayed unchanged.
func Describe(err error) string {
	var cmdErr *warp.CommandError
	if errors.As(err, &cmdErr) {
		return strings.TrimRight(cmdErr.Error(), "\n")
	}
	if errors.Is(err, common.ErrCLINotFound) {
		return "warp-cli was not found. Install the Cloudflare WARP client first."
	}
	return err.Error()
}

// PrintError writes err for a failed command. warp-cli stderr is printed
// as is; with raw set it is written byte for byte, trailing newlines
// included. Other errors get an "Error: " prefix.
func PrintError(w io.Writer, err error, raw bool) {
	var cmdErr *warp.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Stderr != "" {
		if raw {
			fmt.Fprint(w, cmdErr.Stderr)
			return
		}
		fmt.Fprintln(w, Describe(err))
		return
	}
	fmt.Fprintf(w, "Error: %s\n", Describe(err))
}

// PrintHelp prints CLI usage help.
func PrintHelp(w io.Writer) {
	fmt.Fprintln(w, `WarpPulse - Cloudflare WARP desktop client

Usage:
  warppulse [OPTIONS]

Options:
  --version             Show version and exit
  --verbose             Enable verbose logging
  --status              Show connection status and mode
  --settings            Show client settings
  --connect             Connect WARP
  --disconnect          Disconnect WARP
  --mode MODE           Set the operating mode (see --modes)
  --modes               List the operating modes
  --license KEY         Attach a WARP+ license key
  --tunnel-list         List split-tunnel exclusions
  --tunnel-add CIDR     Exclude an IP or network from the tunnel
  --tunnel-remove CIDR  Remove an exclusion
  --history N           Show the last N status changes
  --raw                 Print warp-cli output unchanged
  --tui                 Open the terminal dashboard
  --help                Show this help message

Examples:
  warppulse --status
  warppulse --mode warp+doh
  warppulse --tunnel-add 192.168.1.0/24

Notes:
  - Run without options to launch the GUI`)
}
