package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/warppulse/warppulse/common"
	"github.com/warppulse/warppulse/history"
	"github.com/warppulse/warppulse/keyring"
	"github.com/warppulse/warppulse/warp"
)

type scriptedRunner struct {
	outputs map[string]warp.Output
	calls   []string
}

func (r *scriptedRunner) Run(ctx context.Context, name string, args ...string) (warp.Output, error) {
	key := strings.Join(args, " ")
	r.calls = append(r.calls, key)
	return r.outputs[key], nil
}

func newTestCLI(outputs map[string]warp.Output, opts ...Option) (*CLI, *scriptedRunner, *bytes.Buffer) {
	runner := &scriptedRunner{outputs: outputs}
	var buf bytes.Buffer
	client := warp.NewClient(warp.WithRunner(runner))
	return New(client, append([]Option{WithOutput(&buf)}, opts...)...), runner, &buf
}

func TestCLI_Status(t *testing.T) {
	c, _, buf := newTestCLI(map[string]warp.Output{
		"status":   {Stdout: "Status update: Connected\nNetwork: healthy\n"},
		"settings": {Stdout: "(local)\tMode: DnsOverHttps\n"},
	})

	if err := c.Status(context.Background()); err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Protected", "Connected", "DoH"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCLI_StatusRaw(t *testing.T) {
	raw := "Status update: Disconnected\nReason: Manual Disconnection\n"
	c, runner, buf := newTestCLI(map[string]warp.Output{"status": {Stdout: raw}}, WithRaw(true))

	if err := c.Status(context.Background()); err != nil {
		t.Fatal(err)
	}
	if buf.String() != raw {
		t.Errorf("raw output = %q, want %q", buf.String(), raw)
	}
	if len(runner.calls) != 1 {
		t.Errorf("raw status should only run status, calls = %q", runner.calls)
	}
}

func TestCLI_Settings(t *testing.T) {
	c, _, buf := newTestCLI(map[string]warp.Output{
		"settings": {Stdout: "Mode: WarpWithDnsOverTls\nExpected Device ID: abc\nProtocol: MASQUE\n"},
	})

	if err := c.Settings(context.Background()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"WARP + DoT", "Device ID", "abc", "MASQUE"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCLI_ConnectFailureRelaysStderr(t *testing.T) {
	c, _, _ := newTestCLI(map[string]warp.Output{
		"connect": {Stderr: "Error: Registration Missing\n", ExitCode: 1},
	})

	err := c.Connect(context.Background())
	if err == nil {
		t.Fatal("Connect() should fail")
	}
	if got := Describe(err); got != "Error: Registration Missing" {
		t.Errorf("Describe() = %q, want stderr unchanged", got)
	}
}

func TestCLI_SetMode(t *testing.T) {
	tests := []struct {
		in       string
		wantCall string
	}{
		{"WARP + DoH", "mode warp+doh"},
		{"proxy", "mode proxy"},
		{"tunnel_only", "mode tunnel_only"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c, runner, _ := newTestCLI(nil)
			if err := c.SetMode(context.Background(), tt.in); err != nil {
				t.Fatalf("SetMode() error = %v", err)
			}
			if len(runner.calls) != 1 || runner.calls[0] != tt.wantCall {
				t.Errorf("calls = %q, want %q", runner.calls, tt.wantCall)
			}
		})
	}
}

func TestCLI_ListModes(t *testing.T) {
	c, _, buf := newTestCLI(nil)
	if err := c.ListModes(); err != nil {
		t.Fatal(err)
	}
	for _, m := range warp.Modes {
		if !strings.Contains(buf.String(), m.Label()) {
			t.Errorf("ListModes() missing %q", m.Label())
		}
	}
}

func TestCLI_SetLicenseStoresKey(t *testing.T) {
	secrets, err := keyring.NewFileStore(filepath.Join(t.TempDir(), ".credentials"), []byte("k"))
	if err != nil {
		t.Fatal(err)
	}
	c, runner, buf := newTestCLI(map[string]warp.Output{
		"registration license abcd-efgh-ijkl": {Stdout: "Success\n"},
	}, WithSecrets(secrets))

	if err := c.SetLicense(context.Background(), "abcd-efgh-ijkl"); err != nil {
		t.Fatalf("SetLicense() error = %v", err)
	}
	if runner.calls[0] != "registration license abcd-efgh-ijkl" {
		t.Errorf("calls = %q", runner.calls)
	}
	if got, _ := secrets.Get(keyring.LicenseKey); got != "abcd-efgh-ijkl" {
		t.Errorf("stored license = %q", got)
	}
	if strings.Contains(buf.String(), "abcd-efgh-ijkl") {
		t.Error("output should mask the license key")
	}
}

func TestCLI_Tunnel(t *testing.T) {
	c, runner, buf := newTestCLI(map[string]warp.Output{
		"tunnel ip list": {Stdout: "192.168.1.0/24\n"},
	})
	ctx := context.Background()

	if err := c.TunnelAdd(ctx, "192.168.1.7/24"); err != nil {
		t.Fatal(err)
	}
	if err := c.TunnelRemove(ctx, "10.0.0.1"); err != nil {
		t.Fatal(err)
	}
	if err := c.TunnelList(ctx); err != nil {
		t.Fatal(err)
	}
	want := []string{"tunnel ip add 192.168.1.0/24", "tunnel ip remove 10.0.0.1/32", "tunnel ip list"}
	if fmt.Sprint(runner.calls) != fmt.Sprint(want) {
		t.Errorf("calls = %q, want %q", runner.calls, want)
	}
	if !strings.HasSuffix(buf.String(), "192.168.1.0/24\n") {
		t.Errorf("TunnelList should print warp-cli output, got %q", buf.String())
	}

	if err := c.TunnelAdd(ctx, "bogus"); !errors.Is(err, common.ErrInvalidRoute) {
		t.Errorf("TunnelAdd(bogus) error = %v, want ErrInvalidRoute", err)
	}
}

func TestCLI_History(t *testing.T) {
	c, _, _ := newTestCLI(nil)
	if err := c.History(context.Background(), 5); !errors.Is(err, common.ErrHistoryUnavailable) {
		t.Errorf("History() without store error = %v", err)
	}

	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	if _, err := store.Record(context.Background(), history.Event{Status: "Connected", Connected: true, Mode: "Warp"}); err != nil {
		t.Fatal(err)
	}

	c, _, buf := newTestCLI(nil, WithHistory(store))
	if err := c.History(context.Background(), 5); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Connected") || !strings.Contains(buf.String(), "Warp") {
		t.Errorf("History() output = %q", buf.String())
	}
}

func TestDescribe(t *testing.T) {
	if got := Describe(fmt.Errorf("x: %w", common.ErrCLINotFound)); !strings.Contains(got, "not found") {
		t.Errorf("Describe(not found) = %q", got)
	}
	if got := Describe(errors.New("plain")); got != "plain" {
		t.Errorf("Describe(plain) = %q", got)
	}
}

func TestPrintError(t *testing.T) {
	cmdErr := &warp.CommandError{Args: []string{"connect"}, ExitCode: 1, Stderr: "Error: daemon not running\n\n"}

	tests := []struct {
		name     string
		err      error
		raw      bool
		expected string
	}{
		{"raw stderr unchanged", cmdErr, true, "Error: daemon not running\n\n"},
		{"stderr trimmed to one line", cmdErr, false, "Error: daemon not running\n"},
		{"empty stderr", &warp.CommandError{Args: []string{"connect"}, ExitCode: 2}, true, "Error: warp-cli connect: exit status 2\n"},
		{"other error", errors.New("plain"), true, "Error: plain\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			PrintError(&buf, tt.err, tt.raw)
			if buf.String() != tt.expected {
				t.Errorf("PrintError() = %q, want %q", buf.String(), tt.expected)
			}
		})
	}
}
