package heartbeat

import (
	"sync"
	"testing"
	"time"

	"dashboard-sync/src/logger"
	"dashboard-sync/src/models"
)

// -----------------------------------------------------------------------------

type fakeSource struct {
	mu       sync.Mutex
	name     string
	lastSeen time.Time
	open     bool
}

func (s *fakeSource) Name() string { return s.name }

func (s *fakeSource) LastSeenAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *fakeSource) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

func (s *fakeSource) set(open bool, lastSeen time.Time) {
	s.mu.Lock()
	s.open = open
	s.lastSeen = lastSeen
	s.mu.Unlock()
}

// -----------------------------------------------------------------------------

func newTestMonitor() *Monitor {
	cfg := &models.MHeartbeatConfig{IntervalSeconds: 3600, ThresholdSeconds: 10}
	return NewMonitor(cfg, logger.NewLogger("ERROR", "test"))
}

// -----------------------------------------------------------------------------

func TestSweepFlagsSilentOpenChannel(t *testing.T) {
	m := newTestMonitor()
	src := &fakeSource{name: "orders"}
	src.set(true, time.Now().Add(-time.Minute))
	m.Watch(src)

	var changes []string
	m.OnChange = func(name string, degraded bool) {
		changes = append(changes, name)
	}

	m.Sweep()
	if !m.IsDegraded("orders") {
		t.Fatal("silent open channel not flagged degraded")
	}
	if len(changes) != 1 {
		t.Errorf("OnChange fired %d times, want 1", len(changes))
	}

	// Repeat sweep with no state change stays silent.
	m.Sweep()
	if len(changes) != 1 {
		t.Errorf("OnChange fired again without a flip")
	}
}

func TestSweepClearsFlagWhenTrafficResumes(t *testing.T) {
	m := newTestMonitor()
	src := &fakeSource{name: "orders"}
	src.set(true, time.Now().Add(-time.Minute))
	m.Watch(src)

	m.Sweep()
	if !m.IsDegraded("orders") {
		t.Fatal("precondition failed: channel should be degraded")
	}

	src.set(true, time.Now())
	m.Sweep()
	if m.IsDegraded("orders") {
		t.Error("degraded flag not cleared after traffic resumed")
	}
}

func TestClosedChannelIsNotDegraded(t *testing.T) {
	m := newTestMonitor()
	src := &fakeSource{name: "orders"}
	src.set(false, time.Now().Add(-time.Hour))
	m.Watch(src)

	m.Sweep()
	if m.IsDegraded("orders") {
		t.Error("closed channel flagged degraded; connection state already covers it")
	}
}

func TestFreshChannelWithNoTrafficYetIsNotDegraded(t *testing.T) {
	m := newTestMonitor()
	src := &fakeSource{name: "orders", open: true}
	m.Watch(src)

	m.Sweep()
	if m.IsDegraded("orders") {
		t.Error("channel with zero lastSeen flagged degraded")
	}
}

func TestPauseSuppressesSweeps(t *testing.T) {
	m := newTestMonitor()
	src := &fakeSource{name: "orders"}
	src.set(true, time.Now().Add(-time.Minute))
	m.Watch(src)

	m.Pause()
	m.Sweep()
	if m.IsDegraded("orders") {
		t.Fatal("paused monitor still flagged a channel")
	}

	// Resume runs an immediate sweep.
	m.Resume()
	if !m.IsDegraded("orders") {
		t.Error("resume did not run an immediate sweep")
	}
}

func TestStartStopIdempotent(t *testing.T) {
	m := newTestMonitor()
	m.Start()
	m.Start()
	m.Stop()
	m.Stop()
}

func TestDegradedReturnsCopy(t *testing.T) {
	m := newTestMonitor()
	src := &fakeSource{name: "orders"}
	src.set(true, time.Now().Add(-time.Minute))
	m.Watch(src)
	m.Sweep()

	snap := m.Degraded()
	snap["orders"] = false
	if !m.IsDegraded("orders") {
		t.Error("mutating the snapshot leaked into the monitor")
	}
}
