package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/warppulse/warppulse/warp"
)

type fakeController struct {
	snap      warp.Snapshot
	toggles   int
	modes     []warp.Mode
	toggleErr error
}

func (f *fakeController) Refresh(ctx context.Context) warp.Snapshot {
	return f.snap
}

func (f *fakeController) Toggle(ctx context.Context) (string, error) {
	f.toggles++
	if f.toggleErr != nil {
		return "", f.toggleErr
	}
	return "Success\n", nil
}

func (f *fakeController) ApplyMode(ctx context.Context, mode warp.Mode) (string, error) {
	f.modes = append(f.modes, mode)
	return "Success\n", nil
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return model, cmd
}

func connectedSnapshot() warp.Snapshot {
	return warp.Snapshot{
		Status:    "Connected",
		Connected: true,
		Mode:      "DoH",
		Settings:  warp.ParseSettings("Mode: DnsOverHttps\nProtocol: MASQUE\n"),
	}
}

func TestModel_SnapshotRendering(t *testing.T) {
	ctl := &fakeController{}
	m := New(ctl, time.Second, "1.2.3")

	if !strings.Contains(m.View(), "UNPROTECTED") {
		t.Error("initial view should be unprotected")
	}

	m, _ = update(t, m, snapshotMsg{snap: connectedSnapshot()})
	view := m.View()
	for _, want := range []string{"PROTECTED", "Active Mode: DoH", "MASQUE", "c disconnect", "Application version 1.2.3"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
	if strings.Contains(view, "UNPROTECTED") {
		t.Error("connected view should not say unprotected")
	}
}

func TestModel_Toggle(t *testing.T) {
	ctl := &fakeController{}
	m := New(ctl, time.Second, "")

	m, cmd := update(t, m, key("c"))
	if !m.busy || cmd == nil {
		t.Fatal("c should start a toggle")
	}
	if m.action != "Connecting" {
		t.Errorf("action = %q, want Connecting", m.action)
	}

	// A second press while busy is ignored.
	if _, again := update(t, m, key("c")); again != nil {
		t.Error("toggle while busy should be ignored")
	}

	msg := cmd()
	done, ok := msg.(actionDoneMsg)
	if !ok {
		t.Fatalf("toggle command returned %T", msg)
	}
	if ctl.toggles != 1 {
		t.Errorf("Toggle called %d times, want 1", ctl.toggles)
	}

	m, cmd = update(t, m, done)
	if m.busy {
		t.Error("busy should clear when the action completes")
	}
	if m.message != "Success" {
		t.Errorf("message = %q, want first output line", m.message)
	}
	if cmd == nil {
		t.Error("a completed action should trigger a refresh")
	}
}

func TestModel_ToggleError(t *testing.T) {
	ctl := &fakeController{toggleErr: errors.New("Error: Daemon not running")}
	m := New(ctl, time.Second, "")

	m, cmd := update(t, m, key("c"))
	m, _ = update(t, m, cmd())

	if m.err == nil || !strings.Contains(m.View(), "Daemon not running") {
		t.Errorf("view should show the error:\n%s", m.View())
	}
}

func TestModel_ModePicker(t *testing.T) {
	ctl := &fakeController{}
	m := New(ctl, time.Second, "")
	m, _ = update(t, m, snapshotMsg{snap: connectedSnapshot()})

	m, _ = update(t, m, key("m"))
	if !m.picking {
		t.Fatal("m should open the mode list")
	}
	if item := m.modes.SelectedItem().(modeItem); item.mode != warp.ModeDoH {
		t.Errorf("picker should start on the current mode, got %s", item.mode)
	}

	m, _ = update(t, m, key("down"))
	m, cmd := update(t, m, key("enter"))
	if m.picking || cmd == nil {
		t.Fatal("enter should close the list and apply the mode")
	}
	cmd()
	if len(ctl.modes) != 1 || ctl.modes[0] != warp.ModeWarpDoH {
		t.Errorf("applied modes = %v, want [warp+doh]", ctl.modes)
	}
}

func TestModel_ModePickerEscape(t *testing.T) {
	m := New(&fakeController{}, time.Second, "")

	m, _ = update(t, m, key("m"))
	m, cmd := update(t, m, key("esc"))
	if m.picking || cmd != nil {
		t.Error("esc should close the list without applying")
	}
}

func TestModel_Quit(t *testing.T) {
	m := New(&fakeController{}, time.Second, "")

	_, cmd := update(t, m, key("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestNew_ClampsInterval(t *testing.T) {
	m := New(&fakeController{}, 0, "")
	if m.interval <= 0 {
		t.Errorf("interval = %v, want a positive minimum", m.interval)
	}
}
