package panels

import (
	"sync"
	"testing"

	"dashboard-sync/src/logger"
	"dashboard-sync/src/models"
	"dashboard-sync/src/streams"
)

// -----------------------------------------------------------------------------

type memStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string]string)}
}

func (s *memStore) Initialize() error { return nil }
func (s *memStore) Close() error      { return nil }

func (s *memStore) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *memStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *memStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// -----------------------------------------------------------------------------

func newTestManager(store *memStore) *Manager {
	return NewManager(store, 10, logger.NewLogger("ERROR", "test"))
}

func orderEvent(id int64) *streams.Event {
	return &streams.Event{
		Kind:  streams.KindOrders,
		Order: &models.MOrderEvent{ID: id, Token: "SOL", Side: "buy"},
	}
}

// -----------------------------------------------------------------------------

func TestOrderEventsBuildPanelAndPersistAck(t *testing.T) {
	store := newMemStore()
	m := newTestManager(store)

	m.HandleEvent(orderEvent(2))
	m.HandleEvent(orderEvent(1))
	m.HandleEvent(orderEvent(3))

	snap := m.OrdersSnapshot()
	if len(snap) != 3 {
		t.Fatalf("orders = %d, want 3", len(snap))
	}
	for i, want := range []int64{1, 2, 3} {
		if snap[i].ID != want {
			t.Errorf("orders[%d].ID = %d, want %d (sorted ascending)", i, snap[i].ID, want)
		}
	}

	if got := m.LastAckedOrderID(); got != 3 {
		t.Errorf("last acked = %d, want 3", got)
	}
	if v, _, _ := store.Get(lastAckKey); v != "3" {
		t.Errorf("persisted ack = %q, want \"3\"", v)
	}
}

func TestManagerRestoresLastAckFromStore(t *testing.T) {
	store := newMemStore()
	store.Set(lastAckKey, "7")

	m := newTestManager(store)
	if got := m.LastAckedOrderID(); got != 7 {
		t.Errorf("restored ack = %d, want 7", got)
	}

	// A stale order does not move the ack backwards.
	m.HandleEvent(orderEvent(5))
	if got := m.LastAckedOrderID(); got != 7 {
		t.Errorf("ack moved backwards to %d", got)
	}
}

func TestAlreadySeenOrdersSkippedAcrossRestart(t *testing.T) {
	store := newMemStore()
	store.Set(lastAckKey, "7")
	m := newTestManager(store)

	// Orders acknowledged by a previous run must not re-enter the panel,
	// neither from the stream nor from the snapshot seed.
	m.HandleEvent(orderEvent(5))
	if snap := m.OrdersSnapshot(); len(snap) != 0 {
		t.Fatalf("already-seen order re-rendered: %+v", snap)
	}

	m.SeedOrders([]models.MOrderEvent{{ID: 3}, {ID: 7}, {ID: 8}})
	snap := m.OrdersSnapshot()
	if len(snap) != 1 || snap[0].ID != 8 {
		t.Fatalf("seed past the watermark = %+v, want only id 8", snap)
	}

	// New orders still render, advance the ack and stay updatable.
	m.HandleEvent(orderEvent(9))
	ev := orderEvent(9)
	ev.Order.Status = "filled"
	m.HandleEvent(ev)

	snap = m.OrdersSnapshot()
	if len(snap) != 2 || snap[1].Status != "filled" {
		t.Errorf("post-restart orders = %+v", snap)
	}
	if got := m.LastAckedOrderID(); got != 9 {
		t.Errorf("ack = %d, want 9", got)
	}
	if v, _, _ := store.Get(lastAckKey); v != "9" {
		t.Errorf("persisted ack = %q, want \"9\"", v)
	}
}

func TestRepeatedOrderEventUpdatesRow(t *testing.T) {
	m := newTestManager(newMemStore())

	m.HandleEvent(orderEvent(1))
	ev := orderEvent(1)
	ev.Order.Status = "filled"
	m.HandleEvent(ev)

	snap := m.OrdersSnapshot()
	if len(snap) != 1 {
		t.Fatalf("orders = %d, want 1 (same id updates in place)", len(snap))
	}
	if snap[0].Status != "filled" {
		t.Errorf("status = %q, want filled", snap[0].Status)
	}
}

func TestOrdersPanelIsBounded(t *testing.T) {
	m := newTestManager(newMemStore())

	orders := make([]models.MOrderEvent, maxOrders+5)
	for i := range orders {
		orders[i] = models.MOrderEvent{ID: int64(i + 1)}
	}
	m.SeedOrders(orders)

	snap := m.OrdersSnapshot()
	if len(snap) != maxOrders {
		t.Fatalf("orders = %d, want bound %d", len(snap), maxOrders)
	}
	if snap[0].ID != 6 {
		t.Errorf("oldest kept id = %d, want 6 (oldest 5 scrolled off)", snap[0].ID)
	}
}

func TestPositionsSnapshotReconciles(t *testing.T) {
	m := newTestManager(newMemStore())

	m.HandleEvent(&streams.Event{
		Kind: streams.KindPositions,
		Positions: map[string]models.MPosition{
			"SOL": {Token: "SOL", Quantity: 2},
			"ETH": {Token: "ETH", Quantity: 1},
		},
	})

	snap := m.PositionsSnapshot()
	if len(snap) != 2 || snap[0].Token != "ETH" || snap[1].Token != "SOL" {
		t.Fatalf("positions = %+v, want sorted [ETH SOL]", snap)
	}

	// Next snapshot drops ETH.
	m.HandleEvent(&streams.Event{
		Kind:      streams.KindPositions,
		Positions: map[string]models.MPosition{"SOL": {Token: "SOL", Quantity: 3}},
	})

	snap = m.PositionsSnapshot()
	if len(snap) != 1 || snap[0].Token != "SOL" || snap[0].Quantity != 3 {
		t.Errorf("positions after shrink = %+v", snap)
	}
}

func TestDashboardEventFansOut(t *testing.T) {
	m := newTestManager(newMemStore())

	var updates int
	m.OnUpdate = func() { updates++ }

	m.HandleEvent(&streams.Event{
		Kind: streams.KindDashboard,
		Dashboard: &models.MDashboardUpdate{
			Features:  []float64{0.1, 0.2},
			Posterior: &models.MPosteriorUpdate{Trend: 0.6},
			Positions: map[string]models.MPosition{"SOL": {Token: "SOL"}},
			Orders:    []models.MOrderEvent{{ID: 9}},
			Risk:      models.MRiskSummary{Equity: 1000},
			Timestamp: 123,
		},
	})

	if updates != 1 {
		t.Errorf("OnUpdate fired %d times, want 1", updates)
	}
	if m.History().Size() != 1 {
		t.Error("feature history not fed from dashboard payload")
	}
	if m.LatestPosterior() == nil || m.LatestPosterior().Trend != 0.6 {
		t.Error("posterior panel not updated")
	}
	if m.LatestRisk() == nil || m.LatestRisk().Equity != 1000 {
		t.Error("risk panel not updated")
	}
	if len(m.PositionsSnapshot()) != 1 || len(m.OrdersSnapshot()) != 1 {
		t.Error("positions/orders panels not updated")
	}
	if m.LastAckedOrderID() != 9 {
		t.Errorf("ack = %d, want 9", m.LastAckedOrderID())
	}

	counts := m.Counts()
	if counts["orders"] != 1 || counts["positions"] != 1 || counts["features"] != 1 {
		t.Errorf("counts = %v", counts)
	}
}

func TestFeatureEventUpdatesLatestAndHistory(t *testing.T) {
	m := newTestManager(newMemStore())

	m.HandleEvent(&streams.Event{
		Kind:    streams.KindFeatures,
		Feature: &models.MFeatureUpdate{Features: []float64{1}, Timestamp: 1},
	})
	m.HandleEvent(&streams.Event{
		Kind:    streams.KindFeatures,
		Feature: &models.MFeatureUpdate{Features: []float64{2}, Timestamp: 2},
	})

	if m.History().Size() != 2 {
		t.Errorf("history size = %d, want 2", m.History().Size())
	}
	if m.LatestFeature().Timestamp != 2 {
		t.Errorf("latest feature ts = %d, want 2", m.LatestFeature().Timestamp)
	}
}
