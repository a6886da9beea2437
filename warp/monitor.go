package warp

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/warppulse/warppulse/common"
	"golang.org/x/sync/errgroup"
)

// Snapshot is the connection state observed by one refresh.
type Snapshot struct {
	Status    string
	Connected bool
	// Mode is the short label shown next to the status, e.g. "DoH".
	Mode      string
	Settings  *Settings
	CheckedAt time.Time
	// Err is the first error of the refresh. Fields that could not be
	// fetched keep their previous values.
	Err error
}

// CurrentMode returns the selectable mode matching the settings output.
func (s Snapshot) CurrentMode() (Mode, bool) {
	return s.Settings.Mode()
}

// differs reports whether o shows a different state than s.
func (s Snapshot) differs(o Snapshot) bool {
	return s.Status != o.Status || s.Connected != o.Connected || s.Mode != o.Mode
}

// MonitorConfig holds configuration for the monitor.
type MonitorConfig struct {
	// PollInterval is how often status and settings are refreshed.
	PollInterval time.Duration
	// SettleDelay is the wait after connect/disconnect before refreshing.
	SettleDelay time.Duration
}

// DefaultMonitorConfig returns the default polling configuration.
func DefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{
		PollInterval: common.PollInterval,
		SettleDelay:  common.SettleDelay,
	}
}

// Monitor polls warp-cli and keeps the latest Snapshot.
type Monitor struct {
	mu        sync.RWMutex
	ctl       common.WarpController
	config    MonitorConfig
	running   bool
	cancel    context.CancelFunc
	done      chan struct{}
	intervals chan time.Duration
	latest    Snapshot
	hasLatest bool
	// lastGood is the last snapshot whose refresh fully succeeded.
	lastGood  Snapshot
	hasGood   bool
	refreshMu sync.Mutex
	toggling  atomic.Bool
	onChange  func(old, new Snapshot)
	onUpdate  func(Snapshot)
}

// NewMonitor creates a monitor driving ctl.
func NewMonitor(ctl common.WarpController, config MonitorConfig) *Monitor {
	return &Monitor{
		ctl:       ctl,
		config:    sanitize(config),
		intervals: make(chan time.Duration, 1),
		latest:    Snapshot{Status: "Checking...", Mode: StatusUnknown},
	}
}

func sanitize(c MonitorConfig) MonitorConfig {
	if c.PollInterval < common.MinPollInterval {
		c.PollInterval = common.MinPollInterval
	}
	if c.SettleDelay < 0 {
		c.SettleDelay = 0
	}
	return c
}

// SetOnChange sets a callback for state changes. It runs on the refreshing
// goroutine; the first successful refresh always counts as a change and
// receives a zero old snapshot. Failed refreshes never fire it.
func (m *Monitor) SetOnChange(callback func(old, new Snapshot)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = callback
}

// SetOnUpdate sets a callback run after every refresh.
func (m *Monitor) SetOnUpdate(callback func(Snapshot)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onUpdate = callback
}

// Start begins polling. The first refresh happens immediately.
func (m *Monitor) Start() {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.running = true
	m.cancel = cancel
	m.done = make(chan struct{})
	interval := m.config.PollInterval
	done := m.done
	m.mu.Unlock()

	common.LogInfo("Monitor started (interval: %v)", interval)

	go m.runLoop(ctx, interval, done)
}

// Stop stops polling and waits for the loop to exit.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	m.cancel()
	done := m.done
	m.mu.Unlock()

	<-done
	common.LogInfo("Monitor stopped")
}

// IsRunning returns whether the polling loop is active.
func (m *Monitor) IsRunning() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}

// Latest returns the most recent snapshot.
func (m *Monitor) Latest() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.latest
}

// UpdateInterval changes the poll interval of a running loop.
func (m *Monitor) UpdateInterval(d time.Duration) {
	m.mu.Lock()
	m.config = sanitize(MonitorConfig{PollInterval: d, SettleDelay: m.config.SettleDelay})
	d = m.config.PollInterval
	m.mu.Unlock()

	// Replace any pending value; the loop only needs the newest.
	select {
	case <-m.intervals:
	default:
	}
	select {
	case m.intervals <- d:
	default:
	}
}

// UpdateSettleDelay changes the wait used by Toggle.
func (m *Monitor) UpdateSettleDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d < 0 {
		d = 0
	}
	m.config.SettleDelay = d
}

func (m *Monitor) runLoop(ctx context.Context, interval time.Duration, done chan struct{}) {
	defer close(done)

	m.Refresh(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case d := <-m.intervals:
			ticker.Reset(d)
			common.LogDebug("Poll interval set to %v", d)
		case <-ticker.C:
			m.Refresh(ctx)
		}
	}
}

// Refresh fetches status and settings concurrently and records the result.
// Refreshes run one at a time so a slow poll cannot overwrite a newer
// snapshot.
func (m *Monitor) Refresh(ctx context.Context) Snapshot {
	m.refreshMu.Lock()
	defer m.refreshMu.Unlock()

	var (
		g                  errgroup.Group
		statusOut, setsOut string
		statusErr, setsErr error
	)
	g.Go(func() error {
		statusOut, statusErr = m.ctl.Status(ctx)
		return statusErr
	})
	g.Go(func() error {
		setsOut, setsErr = m.ctl.Settings(ctx)
		return setsErr
	})
	firstErr := g.Wait()

	m.mu.Lock()
	snap := m.latest
	snap.CheckedAt = time.Now()
	snap.Err = firstErr
	if statusErr == nil {
		snap.Status = ParseStatus(statusOut)
		snap.Connected = IsConnected(snap.Status)
	}
	if setsErr == nil {
		snap.Settings = ParseSettings(setsOut)
		if label := ModeLabel(setsOut); label != StatusUnknown {
			snap.Mode = label
		}
	}
	m.latest = snap
	m.hasLatest = true

	old, changed := m.lastGood, false
	if firstErr == nil {
		changed = !m.hasGood || old.differs(snap)
		m.lastGood = snap
		m.hasGood = true
	}
	onChange, onUpdate := m.onChange, m.onUpdate
	m.mu.Unlock()

	if firstErr != nil {
		common.LogDebug("Refresh failed: %v", firstErr)
	}

	if changed {
		common.LogInfo("WARP state changed: %s -> %s (mode %s)", old.Status, snap.Status, snap.Mode)
		if onChange != nil {
			onChange(old, snap)
		}
	}
	if onUpdate != nil {
		onUpdate(snap)
	}
	return snap
}

// Toggle disconnects when the latest snapshot is connected and connects
// otherwise, then waits the settle delay and refreshes. A second call
// while one is in flight returns common.ErrBusy without running anything.
func (m *Monitor) Toggle(ctx context.Context) (string, error) {
	if !m.toggling.CompareAndSwap(false, true) {
		return "", common.ErrBusy
	}
	defer m.toggling.Store(false)

	m.mu.RLock()
	connected, hasLatest, settle := m.latest.Connected, m.hasLatest, m.config.SettleDelay
	m.mu.RUnlock()
	if !hasLatest {
		connected = m.Refresh(ctx).Connected
	}

	var (
		out string
		err error
	)
	if connected {
		out, err = m.ctl.Disconnect(ctx)
	} else {
		out, err = m.ctl.Connect(ctx)
	}
	if err != nil {
		return "", err
	}

	if settle > 0 {
		timer := time.NewTimer(settle)
		select {
		case <-ctx.Done():
			timer.Stop()
			return out, ctx.Err()
		case <-timer.C:
		}
	}
	m.Refresh(ctx)
	return out, nil
}

// Busy reports whether a Toggle is in flight.
func (m *Monitor) Busy() bool {
	return m.toggling.Load()
}

// ApplyMode switches warp-cli to mode and refreshes.
func (m *Monitor) ApplyMode(ctx context.Context, mode Mode) (string, error) {
	out, err := m.ctl.SetMode(ctx, string(mode))
	if err != nil {
		return "", err
	}
	m.Refresh(ctx)
	return out, nil
}
