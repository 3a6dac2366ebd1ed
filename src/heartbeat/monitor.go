package heartbeat

import (
	"sync"
	"time"

	"dashboard-sync/src/logger"
	"dashboard-sync/src/models"
)

// -----------------------------------------------------------------------------
// Monitor watches every channel's last-seen timestamp from one shared ticker
// and flags silent-but-open channels as degraded. Purely advisory: it never
// closes a transport and never triggers a reconnect. The transport's own
// read loop is the authority on dead connections.
// -----------------------------------------------------------------------------

// ISource is the read-only view of a channel the monitor needs.
type ISource interface {
	Name() string
	LastSeenAt() time.Time
	IsOpen() bool
}

type Monitor struct {
	interval  time.Duration
	threshold time.Duration
	logger    *logger.Logger

	// OnChange fires (outside the monitor lock) when a source's degraded
	// flag flips.
	OnChange func(name string, degraded bool)

	mu       sync.Mutex
	sources  []ISource
	degraded map[string]bool
	paused   bool
	running  bool
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// -----------------------------------------------------------------------------

func NewMonitor(cfg *models.MHeartbeatConfig, log *logger.Logger) *Monitor {
	return &Monitor{
		interval:  time.Duration(cfg.IntervalSeconds) * time.Second,
		threshold: time.Duration(cfg.ThresholdSeconds) * time.Second,
		logger:    log,
		degraded:  make(map[string]bool),
	}
}

// -----------------------------------------------------------------------------

// Watch adds a source. Call before Start.
func (m *Monitor) Watch(s ISource) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sources = append(m.sources, s)
}

// -----------------------------------------------------------------------------

// Start launches the shared sweep ticker. Idempotent.
func (m *Monitor) Start() {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return
	}
	m.running = true
	m.stopChan = make(chan struct{})
	m.mu.Unlock()

	m.wg.Add(1)
	go m.run()
	m.logger.Info("heartbeat monitor started (interval %v, threshold %v)", m.interval, m.threshold)
}

// -----------------------------------------------------------------------------

// Stop halts the ticker and waits for the sweep goroutine to exit.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	close(m.stopChan)
	m.mu.Unlock()

	m.wg.Wait()
	m.logger.Info("heartbeat monitor stopped")
}

// -----------------------------------------------------------------------------

// Pause suspends sweeps without stopping the ticker. Used when the process
// knows traffic will legitimately go quiet (closed trading session) so that
// stale timestamps do not raise false alarms.
func (m *Monitor) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.paused {
		return
	}
	m.paused = true
	m.logger.Info("heartbeat monitor paused")
}

// -----------------------------------------------------------------------------

// Resume re-enables sweeps and runs one immediately so a channel that died
// while paused is flagged without waiting a full interval.
func (m *Monitor) Resume() {
	m.mu.Lock()
	if !m.paused {
		m.mu.Unlock()
		return
	}
	m.paused = false
	m.mu.Unlock()

	m.logger.Info("heartbeat monitor resumed")
	m.Sweep()
}

// -----------------------------------------------------------------------------

// IsDegraded reports the advisory flag for one source.
func (m *Monitor) IsDegraded(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.degraded[name]
}

// -----------------------------------------------------------------------------

// Degraded returns a copy of the advisory flags.
func (m *Monitor) Degraded() map[string]bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]bool, len(m.degraded))
	for k, v := range m.degraded {
		out[k] = v
	}
	return out
}

// -----------------------------------------------------------------------------

// Sweep evaluates every source once. Exposed for the resume path and tests;
// the ticker calls it on its own schedule.
func (m *Monitor) Sweep() {
	now := time.Now()

	m.mu.Lock()
	if m.paused {
		m.mu.Unlock()
		return
	}

	type change struct {
		name     string
		degraded bool
	}
	var changes []change

	for _, s := range m.sources {
		name := s.Name()
		silent := false
		if s.IsOpen() {
			last := s.LastSeenAt()
			silent = !last.IsZero() && now.Sub(last) > m.threshold
		}
		if m.degraded[name] != silent {
			m.degraded[name] = silent
			changes = append(changes, change{name, silent})
		}
	}
	cb := m.OnChange
	m.mu.Unlock()

	for _, ch := range changes {
		if ch.degraded {
			m.logger.Warning("channel %s silent beyond %v, flagged degraded", ch.name, m.threshold)
		} else {
			m.logger.Info("channel %s traffic resumed, degraded flag cleared", ch.name)
		}
		if cb != nil {
			cb(ch.name, ch.degraded)
		}
	}
}

// -----------------------------------------------------------------------------
// PRIVATE METHODS
// -----------------------------------------------------------------------------

func (m *Monitor) run() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Sweep()
		case <-m.stopChan:
			return
		}
	}
}
