package warp

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/warppulse/warppulse/common"
)

// fakeRunner records every invocation and answers from a table keyed by
// the joined argument list.
type fakeRunner struct {
	mu      sync.Mutex
	calls   [][]string
	outputs map[string]Output
	errs    map[string]error
	delay   time.Duration
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{
		outputs: make(map[string]Output),
		errs:    make(map[string]error),
	}
}

func (f *fakeRunner) on(args string, out Output) *fakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outputs[args] = out
	return f
}

func (f *fakeRunner) fail(args string, err error) *fakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[args] = err
	return f
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) (Output, error) {
	f.mu.Lock()
	f.calls = append(f.calls, append([]string{name}, args...))
	key := strings.Join(args, " ")
	out, err := f.outputs[key], f.errs[key]
	delay := f.delay
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return Output{}, ctx.Err()
		}
	}
	return out, err
}

func (f *fakeRunner) Calls() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]string(nil), f.calls...)
}

func (f *fakeRunner) count(args string) int {
	n := 0
	for _, c := range f.Calls() {
		if strings.Join(c[1:], " ") == args {
			n++
		}
	}
	return n
}

func TestClient_CommandArguments(t *testing.T) {
	tests := []struct {
		name string
		call func(c *Client) (string, error)
		want []string
	}{
		{"connect", func(c *Client) (string, error) { return c.Connect(context.Background()) }, []string{"warp-cli", "connect"}},
		{"disconnect", func(c *Client) (string, error) { return c.Disconnect(context.Background()) }, []string{"warp-cli", "disconnect"}},
		{"status", func(c *Client) (string, error) { return c.Status(context.Background()) }, []string{"warp-cli", "status"}},
		{"settings", func(c *Client) (string, error) { return c.Settings(context.Background()) }, []string{"warp-cli", "settings"}},
		{"mode", func(c *Client) (string, error) { return c.SetMode(context.Background(), "doh") }, []string{"warp-cli", "mode", "doh"}},
		{"tunnel list", func(c *Client) (string, error) { return c.TunnelIPs(context.Background()) }, []string{"warp-cli", "tunnel", "ip", "list"}},
		{"tunnel add", func(c *Client) (string, error) { return c.AddTunnelIP(context.Background(), "10.0.0.5") }, []string{"warp-cli", "tunnel", "ip", "add", "10.0.0.5/32"}},
		{"tunnel remove", func(c *Client) (string, error) {
			return c.RemoveTunnelIP(context.Background(), "192.168.1.1/24")
		}, []string{"warp-cli", "tunnel", "ip", "remove", "192.168.1.0/24"}},
		{"license", func(c *Client) (string, error) { return c.SetLicense(context.Background(), " abc-123 ") }, []string{"warp-cli", "registration", "license", "abc-123"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := newFakeRunner()
			c := NewClient(WithRunner(runner))

			if _, err := tt.call(c); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			calls := runner.Calls()
			if len(calls) != 1 {
				t.Fatalf("got %d invocations, want 1", len(calls))
			}
			if !reflect.DeepEqual(calls[0], tt.want) {
				t.Errorf("argv = %q, want %q", calls[0], tt.want)
			}
		})
	}
}

func TestClient_AcceptTOSAndBinary(t *testing.T) {
	runner := newFakeRunner()
	c := NewClient(WithRunner(runner), WithBinary("/opt/warp/warp-cli"), WithAcceptTOS(true))

	if _, err := c.Status(context.Background()); err != nil {
		t.Fatal(err)
	}
	want := []string{"/opt/warp/warp-cli", "--accept-tos", "status"}
	if got := runner.Calls()[0]; !reflect.DeepEqual(got, want) {
		t.Errorf("argv = %q, want %q", got, want)
	}
	if c.Binary() != "/opt/warp/warp-cli" {
		t.Errorf("Binary() = %q", c.Binary())
	}
}

func TestClient_ConnectRelaysOutput(t *testing.T) {
	runner := newFakeRunner().
		on("connect", Output{Stdout: "Success\n"}).
		on("disconnect", Output{Stderr: "Error: Daemon not running\n", ExitCode: 1})
	c := NewClient(WithRunner(runner))

	out, err := c.Connect(context.Background())
	if err != nil || out != "Success\n" {
		t.Errorf("Connect() = %q, %v; want stdout unchanged", out, err)
	}

	out, err = c.Disconnect(context.Background())
	if out != "" {
		t.Errorf("Disconnect() output = %q, want empty on failure", out)
	}
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("Disconnect() error = %T, want *CommandError", err)
	}
	if err.Error() != "Error: Daemon not running" {
		t.Errorf("error message = %q, want stderr", err.Error())
	}
	if cmdErr.ExitCode != 1 {
		t.Errorf("ExitCode = %d, want 1", cmdErr.ExitCode)
	}
	if !errors.Is(err, common.ErrCommandFailed) {
		t.Error("CommandError should match common.ErrCommandFailed")
	}
}

func TestClient_StatusIgnoresExitCode(t *testing.T) {
	runner := newFakeRunner().
		on("status", Output{Stdout: "Status update: Disconnected\n", Stderr: "warn", ExitCode: 2}).
		on("settings", Output{Stdout: "Mode: Warp\n", ExitCode: 1})
	c := NewClient(WithRunner(runner))

	out, err := c.Status(context.Background())
	if err != nil || out != "Status update: Disconnected\n" {
		t.Errorf("Status() = %q, %v; want stdout and nil error", out, err)
	}
	out, err = c.Settings(context.Background())
	if err != nil || out != "Mode: Warp\n" {
		t.Errorf("Settings() = %q, %v; want stdout and nil error", out, err)
	}
}

func TestClient_LaunchFailure(t *testing.T) {
	launchErr := common.ErrCLINotFound
	runner := newFakeRunner().fail("status", launchErr).fail("connect", launchErr)
	c := NewClient(WithRunner(runner))

	if _, err := c.Status(context.Background()); !errors.Is(err, common.ErrCLINotFound) {
		t.Errorf("Status() error = %v, want ErrCLINotFound", err)
	}
	if _, err := c.Connect(context.Background()); !errors.Is(err, common.ErrCLINotFound) {
		t.Errorf("Connect() error = %v, want ErrCLINotFound", err)
	}
}

func TestClient_RejectsBadArgumentsWithoutSpawning(t *testing.T) {
	runner := newFakeRunner()
	c := NewClient(WithRunner(runner))
	ctx := context.Background()

	if _, err := c.SetMode(ctx, "  "); !errors.Is(err, common.ErrInvalidMode) {
		t.Errorf("SetMode(blank) error = %v, want ErrInvalidMode", err)
	}
	if _, err := c.SetMode(ctx, "warp; rm"); !errors.Is(err, common.ErrInvalidMode) {
		t.Errorf("SetMode(two words) error = %v, want ErrInvalidMode", err)
	}
	if _, err := c.AddTunnelIP(ctx, "not-an-ip"); !errors.Is(err, common.ErrInvalidRoute) {
		t.Errorf("AddTunnelIP(invalid) error = %v, want ErrInvalidRoute", err)
	}
	if _, err := c.RemoveTunnelIP(ctx, ""); !errors.Is(err, common.ErrInvalidRoute) {
		t.Errorf("RemoveTunnelIP(empty) error = %v, want ErrInvalidRoute", err)
	}
	if _, err := c.SetLicense(ctx, ""); !errors.Is(err, common.ErrInvalidLicense) {
		t.Errorf("SetLicense(empty) error = %v, want ErrInvalidLicense", err)
	}
	if n := len(runner.Calls()); n != 0 {
		t.Errorf("rejected arguments spawned %d processes", n)
	}
}

func TestClient_Timeout(t *testing.T) {
	runner := newFakeRunner()
	runner.delay = time.Second
	c := NewClient(WithRunner(runner), WithTimeout(20*time.Millisecond))

	start := time.Now()
	if _, err := c.Connect(context.Background()); err == nil {
		t.Error("Connect() should fail when the timeout elapses")
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Error("timeout was not applied")
	}
}

func TestCommandError_EmptyStderr(t *testing.T) {
	err := &CommandError{Args: []string{"mode", "bogus"}, ExitCode: 3}
	want := "warp-cli mode bogus: exit status 3"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestNormalizeRoute(t *testing.T) {
	tests := []struct {
		route    string
		expected string
	}{
		{"192.168.1.0/24", "192.168.1.0/24"},
		{"192.168.1.1/24", "192.168.1.0/24"},
		{"10.0.0.5", "10.0.0.5/32"},
		{" 8.8.8.8 ", "8.8.8.8/32"},
		{"2606:4700::1111", "2606:4700::1111/128"},
		{"2606:4700::1/32", "2606:4700::/32"},
		{"::ffff:10.0.0.0/104", "10.0.0.0/8"},
		{"::ffff:192.168.1.7/128", "192.168.1.7/32"},
		{"::ffff:10.0.0.5", "10.0.0.5/32"},
		{"", ""},
		{"invalid", ""},
		{"10.0.0.0/33", ""},
	}

	for _, tt := range tests {
		t.Run(tt.route, func(t *testing.T) {
			if got := NormalizeRoute(tt.route); got != tt.expected {
				t.Errorf("NormalizeRoute(%q) = %v, want %v", tt.route, got, tt.expected)
			}
		})
	}
}

func TestExecRunner(t *testing.T) {
	r := ExecRunner{}
	ctx := context.Background()

	out, err := r.Run(ctx, "sh", "-c", "echo out; echo err >&2; exit 3")
	if err != nil {
		t.Skipf("sh unavailable: %v", err)
	}
	if out.Stdout != "out\n" || out.Stderr != "err\n" || out.ExitCode != 3 {
		t.Errorf("Run() = %+v", out)
	}
	if out.Success() {
		t.Error("Success() should be false for exit status 3")
	}

	if _, err := r.Run(ctx, "warppulse-definitely-missing-binary"); !errors.Is(err, common.ErrCLINotFound) {
		t.Errorf("missing binary error = %v, want ErrCLINotFound", err)
	}
}
