// Package warp wraps the warp-cli command-line tool.
// This file contains the Client type, one method per warp-cli subcommand.
package warp

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/warppulse/warppulse/common"
)

// CommandError is returned when warp-cli ran but exited non-zero.
// Its message is the process stderr without trailing newlines; Stderr
// holds the bytes as written.
type CommandError struct {
	Args     []string
	ExitCode int
	Stderr   string
}

func (e *CommandError) Error() string {
	if msg := strings.TrimRight(e.Stderr, "\r\n"); msg != "" {
		return msg
	}
	return fmt.Sprintf("%s %s: exit status %d", common.DefaultWarpCLI, strings.Join(e.Args, " "), e.ExitCode)
}

// Unwrap lets callers match any CommandError with errors.Is(err, common.ErrCommandFailed).
func (e *CommandError) Unwrap() error {
	return common.ErrCommandFailed
}

// Client runs warp-cli subcommands with fixed argument lists.
// It holds no mutable state, so concurrent calls are independent.
type Client struct {
	binary    string
	runner    Runner
	timeout   time.Duration
	acceptTOS bool
}

var _ common.WarpController = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithBinary overrides the warp-cli executable path.
func WithBinary(path string) Option {
	return func(c *Client) {
		if path != "" {
			c.binary = path
		}
	}
}

// WithRunner replaces the process runner.
func WithRunner(r Runner) Option {
	return func(c *Client) {
		if r != nil {
			c.runner = r
		}
	}
}

// WithTimeout bounds every invocation. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithAcceptTOS prefixes every invocation with --accept-tos so a fresh
// install does not block on the interactive terms prompt.
func WithAcceptTOS(accept bool) Option {
	return func(c *Client) {
		c.acceptTOS = accept
	}
}

// NewClient creates a Client for warp-cli on PATH.
func NewClient(opts ...Option) *Client {
	c := &Client{
		binary:  common.DefaultWarpCLI,
		runner:  ExecRunner{},
		timeout: common.CommandTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Binary returns the executable the client spawns.
func (c *Client) Binary() string {
	return c.binary
}

// Connect runs "warp-cli connect".
func (c *Client) Connect(ctx context.Context) (string, error) {
	return c.runChecked(ctx, "connect")
}

// Disconnect runs "warp-cli disconnect".
func (c *Client) Disconnect(ctx context.Context) (string, error) {
	return c.runChecked(ctx, "disconnect")
}

// Status runs "warp-cli status" and returns its stdout whatever the exit
// status. Only a failure to run the process is reported as an error.
func (c *Client) Status(ctx context.Context) (string, error) {
	return c.runStdout(ctx, "status")
}

// Settings runs "warp-cli settings" and returns its stdout whatever the
// exit status.
func (c *Client) Settings(ctx context.Context) (string, error) {
	return c.runStdout(ctx, "settings")
}

// SetMode runs "warp-cli mode <mode>". The value is passed through as is;
// warp-cli decides whether it is valid.
func (c *Client) SetMode(ctx context.Context, mode string) (string, error) {
	mode = strings.TrimSpace(mode)
	if mode == "" || strings.ContainsAny(mode, " \t\n") {
		return "", fmt.Errorf("%w: %q", common.ErrInvalidMode, mode)
	}
	return c.runChecked(ctx, "mode", mode)
}

// TunnelIPs runs "warp-cli tunnel ip list".
func (c *Client) TunnelIPs(ctx context.Context) (string, error) {
	return c.runChecked(ctx, "tunnel", "ip", "list")
}

// AddTunnelIP excludes an IP or network from the tunnel.
func (c *Client) AddTunnelIP(ctx context.Context, route string) (string, error) {
	normalized := NormalizeRoute(route)
	if normalized == "" {
		return "", fmt.Errorf("%w: %q", common.ErrInvalidRoute, route)
	}
	return c.runChecked(ctx, "tunnel", "ip", "add", normalized)
}

// RemoveTunnelIP removes a previously excluded IP or network.
func (c *Client) RemoveTunnelIP(ctx context.Context, route string) (string, error) {
	normalized := NormalizeRoute(route)
	if normalized == "" {
		return "", fmt.Errorf("%w: %q", common.ErrInvalidRoute, route)
	}
	return c.runChecked(ctx, "tunnel", "ip", "remove", normalized)
}

// SetLicense attaches a WARP+ license key to the registration.
func (c *Client) SetLicense(ctx context.Context, key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" || strings.ContainsAny(key, " \t\n") {
		return "", common.ErrInvalidLicense
	}
	return c.runChecked(ctx, "registration", "license", key)
}

// runChecked returns stdout on exit status zero and a *CommandError
// carrying stderr otherwise.
func (c *Client) runChecked(ctx context.Context, args ...string) (string, error) {
	out, err := c.run(ctx, args...)
	if err != nil {
		return "", err
	}
	if !out.Success() {
		return "", &CommandError{Args: args, ExitCode: out.ExitCode, Stderr: out.Stderr}
	}
	return out.Stdout, nil
}

func (c *Client) runStdout(ctx context.Context, args ...string) (string, error) {
	out, err := c.run(ctx, args...)
	if err != nil {
		return "", err
	}
	if !out.Success() {
		common.LogDebug("warp-cli %s exited %d: %s", strings.Join(args, " "), out.ExitCode, common.FirstLine(out.Stderr))
	}
	return out.Stdout, nil
}

func (c *Client) run(ctx context.Context, args ...string) (Output, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	argv := args
	if c.acceptTOS {
		argv = append([]string{"--accept-tos"}, args...)
	}

	common.LogDebug("Running %s %s", c.binary, strings.Join(argv, " "))
	out, err := c.runner.Run(ctx, c.binary, argv...)
	if err != nil {
		common.LogWarn("Could not run %s %s: %v", c.binary, strings.Join(argv, " "), err)
		return out, err
	}
	return out, nil
}

// NormalizeRoute converts an IP or CIDR to canonical CIDR form.
// "192.168.1.1/24" becomes "192.168.1.0/24"; "10.0.0.5" becomes "10.0.0.5/32".
// It returns "" for anything else.
func NormalizeRoute(route string) string {
	route = strings.TrimSpace(route)
	if route == "" {
		return ""
	}

	if strings.Contains(route, "/") {
		_, ipNet, err := net.ParseCIDR(route)
		if err != nil {
			return ""
		}
		ones, bits := ipNet.Mask.Size()
		// An IPv4-mapped network prints as IPv4, so its prefix must too.
		if bits == 8*net.IPv6len && ipNet.IP.To4() != nil {
			ones -= 8 * (net.IPv6len - net.IPv4len)
		}
		return fmt.Sprintf("%s/%d", ipNet.IP.String(), ones)
	}

	ip := net.ParseIP(route)
	if ip == nil {
		return ""
	}
	if ip.To4() != nil {
		return ip.String() + "/32"
	}
	return ip.String() + "/128"
}
