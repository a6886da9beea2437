// Package tui is the terminal dashboard: connection state, mode and client
// information, with keys to toggle the connection and switch modes.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/warppulse/warppulse/common"
	"github.com/warppulse/warppulse/warp"
)

// Controller is the part of warp.Monitor the dashboard drives.
type Controller interface {
	Refresh(ctx context.Context) warp.Snapshot
	Toggle(ctx context.Context) (string, error)
	ApplyMode(ctx context.Context, mode warp.Mode) (string, error)
}

type snapshotMsg struct {
	snap warp.Snapshot
}

type actionDoneMsg struct {
	action string
	output string
	err    error
}

type tickMsg time.Time

type modeItem struct {
	mode warp.Mode
}

func (i modeItem) Title() string       { return i.mode.Label() }
func (i modeItem) Description() string { return "warp-cli mode " + string(i.mode) }
func (i modeItem) FilterValue() string { return i.mode.Label() }

// Model is the dashboard bubbletea model.
type Model struct {
	ctl      Controller
	interval time.Duration
	version  string
	styles   styles

	snap    warp.Snapshot
	loaded  bool
	busy    bool
	action  string
	message string
	err     error

	spin    spinner.Model
	modes   list.Model
	picking bool

	width  int
	height int
}

// New creates a dashboard polling ctl every interval.
func New(ctl Controller, interval time.Duration, version string) Model {
	spin := spinner.New(spinner.WithSpinner(spinner.Dot))

	items := make([]list.Item, 0, len(warp.Modes))
	for _, m := range warp.Modes {
		items = append(items, modeItem{mode: m})
	}
	modes := list.New(items, list.NewDefaultDelegate(), 40, 20)
	modes.Title = "Operation Mode"
	modes.SetFilteringEnabled(false)
	modes.SetShowStatusBar(false)
	modes.KeyMap.Quit.SetEnabled(false)

	if interval < common.MinPollInterval {
		interval = common.MinPollInterval
	}

	return Model{
		ctl:      ctl,
		interval: interval,
		version:  version,
		styles:   defaultStyles(),
		snap:     warp.Snapshot{Status: "Checking...", Mode: warp.StatusUnknown},
		spin:     spin,
		modes:    modes,
	}
}

// Run starts the dashboard on the terminal and blocks until it quits.
func Run(ctl Controller, interval time.Duration, version string) error {
	program := tea.NewProgram(New(ctl, interval, version), tea.WithAltScreen())
	_, err := program.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.refreshCmd(), m.tickCmd())
}

func (m Model) refreshCmd() tea.Cmd {
	ctl := m.ctl
	return func() tea.Msg {
		return snapshotMsg{snap: ctl.Refresh(context.Background())}
	}
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) toggleCmd() tea.Cmd {
	ctl := m.ctl
	return func() tea.Msg {
		out, err := ctl.Toggle(context.Background())
		return actionDoneMsg{action: "toggle", output: out, err: err}
	}
}

func (m Model) modeCmd(mode warp.Mode) tea.Cmd {
	ctl := m.ctl
	return func() tea.Msg {
		out, err := ctl.ApplyMode(context.Background(), mode)
		return actionDoneMsg{action: "mode " + mode.Label(), output: out, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.picking {
			return m.updatePicker(msg)
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "r":
			return m, m.refreshCmd()
		case "c":
			if m.busy {
				return m, nil
			}
			m.busy = true
			m.err = nil
			m.message = ""
			m.action = "Disconnecting"
			if !m.snap.Connected {
				m.action = "Connecting"
			}
			return m, m.toggleCmd()
		case "m":
			if m.busy {
				return m, nil
			}
			m.picking = true
			if current, ok := m.snap.CurrentMode(); ok {
				for i, mode := range warp.Modes {
					if mode == current {
						m.modes.Select(i)
					}
				}
			}
			return m, nil
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.modes.SetSize(msg.Width-4, msg.Height-4)
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.refreshCmd(), m.tickCmd())

	case snapshotMsg:
		m.snap = msg.snap
		m.loaded = true
		return m, nil

	case actionDoneMsg:
		m.busy = false
		m.action = ""
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.message = common.FirstLine(msg.output)
		return m, m.refreshCmd()
	}

	return m, nil
}

func (m Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.picking = false
		return m, nil
	case "enter":
		m.picking = false
		item, ok := m.modes.SelectedItem().(modeItem)
		if !ok {
			return m, nil
		}
		m.busy = true
		m.err = nil
		m.message = ""
		m.action = "Switching to " + item.mode.Label()
		return m, m.modeCmd(item.mode)
	}

	var cmd tea.Cmd
	m.modes, cmd = m.modes.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.picking {
		return m.styles.frame.Render(m.modes.View())
	}

	s := m.styles
	var b strings.Builder

	b.WriteString(s.title.Render(strings.ToUpper(common.AppName)))
	b.WriteString("\n\n")

	if m.snap.Connected {
		b.WriteString(s.protected.Render("● PROTECTED"))
	} else {
		b.WriteString(s.unprotected.Render("○ UNPROTECTED"))
	}
	b.WriteString("\n")
	b.WriteString(s.value.Render(m.snap.Status))
	b.WriteString("\n\n")
	b.WriteString(s.pill.Render("Active Mode: " + m.snap.Mode))
	b.WriteString("\n\n")

	for _, f := range m.snap.Settings.ClientInfo() {
		b.WriteString(s.label.Render(f.Label))
		b.WriteString(s.value.Render(f.Value))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case m.busy:
		b.WriteString(m.spin.View() + " " + m.action + "...")
	case m.err != nil:
		b.WriteString(s.err.Render(m.err.Error()))
	case m.message != "":
		b.WriteString(m.message)
	case m.snap.Err != nil:
		b.WriteString(s.err.Render(fmt.Sprintf("refresh failed: %v", m.snap.Err)))
	}
	b.WriteString("\n\n")

	toggle := "connect"
	if m.snap.Connected {
		toggle = "disconnect"
	}
	b.WriteString(s.help.Render(fmt.Sprintf("c %s • m mode • r refresh • q quit", toggle)))
	if m.version != "" {
		b.WriteString("\n")
		b.WriteString(s.help.Render("Application version " + m.version + " • Powered by Cloudflare WARP"))
	}

	return s.frame.Render(lipgloss.JoinVertical(lipgloss.Left, b.String()))
}
