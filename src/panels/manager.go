package panels

import (
	"sort"
	"strconv"
	"sync"

	"dashboard-sync/src/interfaces"
	"dashboard-sync/src/logger"
	"dashboard-sync/src/models"
	"dashboard-sync/src/reconcile"
	"dashboard-sync/src/streams"
)

// -----------------------------------------------------------------------------
// Manager owns the dashboard panels and routes decoded stream events into
// them through the reconciler. Panels keyed by entity (orders, positions)
// go through a View so repeated snapshots touch only the rows that changed;
// scalar panels (posterior, risk) just keep the latest value.
// -----------------------------------------------------------------------------

const (
	// maxOrders bounds the orders panel; older fills scroll off.
	maxOrders = 200

	lastAckKey = "orders.last_ack_id"
)

type Manager struct {
	logger *logger.Logger
	store  interfaces.IKeyValueStore

	// OnUpdate fires after any panel changed, so the status feed can push
	// a fresh snapshot to subscribers.
	OnUpdate func()

	mu             sync.Mutex
	orders         map[int64]models.MOrderEvent
	ordersView     *reconcile.View
	ordersSurface  *TableSurface
	positionsView  *reconcile.View
	posSurface     *TableSurface
	history        *FeatureHistory
	latestFeature  *models.MFeatureUpdate
	latestPost     *models.MPosteriorUpdate
	latestRisk     *models.MRiskSummary
	lastAckOrderID int64

	// seenThrough is the watermark restored from the store at startup.
	// Orders at or below it were already rendered by a previous run and
	// are dropped instead of re-entering the panel.
	seenThrough int64
}

// -----------------------------------------------------------------------------

func NewManager(store interfaces.IKeyValueStore, historyCapacity int, log *logger.Logger) *Manager {
	ordersSurface := NewTableSurface()
	posSurface := NewTableSurface()

	m := &Manager{
		logger:        log,
		store:         store,
		orders:        make(map[int64]models.MOrderEvent),
		ordersSurface: ordersSurface,
		ordersView:    reconcile.NewView(ordersSurface),
		posSurface:    posSurface,
		positionsView: reconcile.NewView(posSurface),
		history:       NewFeatureHistory(historyCapacity),
	}
	m.loadLastAck()
	return m
}

// -----------------------------------------------------------------------------

// HandleEvent routes one decoded frame into the matching panel.
func (m *Manager) HandleEvent(ev *streams.Event) {
	switch ev.Kind {
	case streams.KindOrders:
		m.applyOrder(*ev.Order)
	case streams.KindPositions:
		m.applyPositions(ev.Positions)
	case streams.KindFeatures:
		m.applyFeature(*ev.Feature)
	case streams.KindPosterior:
		m.applyPosterior(*ev.Posterior)
	case streams.KindDashboard:
		m.applyDashboard(ev.Dashboard)
	default:
		m.logger.Warning("no panel for event kind %q", ev.Kind)
		return
	}

	if cb := m.OnUpdate; cb != nil {
		cb()
	}
}

// -----------------------------------------------------------------------------

// SeedOrders loads the REST snapshot taken before the stream opened.
// Orders already acknowledged by a previous run are left out.
func (m *Manager) SeedOrders(orders []models.MOrderEvent) {
	m.mu.Lock()
	seeded := 0
	for _, o := range orders {
		if o.ID <= m.seenThrough {
			continue
		}
		m.orders[o.ID] = o
		seeded++
	}
	m.reconcileOrdersLocked()
	m.mu.Unlock()
	m.logger.Info("orders panel seeded with %d rows (%d already seen)", seeded, len(orders)-seeded)
}

// -----------------------------------------------------------------------------

// SeedPositions loads the REST snapshot taken before the stream opened.
func (m *Manager) SeedPositions(positions map[string]models.MPosition) {
	m.applyPositions(positions)
	m.logger.Info("positions panel seeded with %d rows", len(positions))
}

// -----------------------------------------------------------------------------
// Snapshot accessors (consumed by the status server)
// -----------------------------------------------------------------------------

func (m *Manager) OrdersSnapshot() []models.MOrderEvent {
	rows := m.ordersSurface.Rows()
	out := make([]models.MOrderEvent, 0, len(rows))
	for _, r := range rows {
		if rec, ok := r.(OrderRecord); ok {
			out = append(out, rec.MOrderEvent)
		}
	}
	return out
}

func (m *Manager) PositionsSnapshot() []models.MPosition {
	rows := m.posSurface.Rows()
	out := make([]models.MPosition, 0, len(rows))
	for _, r := range rows {
		if rec, ok := r.(PositionRecord); ok {
			out = append(out, rec.MPosition)
		}
	}
	return out
}

func (m *Manager) LatestFeature() *models.MFeatureUpdate {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.latestFeature
}

func (m *Manager) LatestPosterior() *models.MPosteriorUpdate {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.latestPost
}

func (m *Manager) LatestRisk() *models.MRiskSummary {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.latestRisk
}

func (m *Manager) History() *FeatureHistory {
	return m.history
}

func (m *Manager) LastAckedOrderID() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastAckOrderID
}

// -----------------------------------------------------------------------------

// Counts returns the row count per panel for the status feed.
func (m *Manager) Counts() map[string]int {
	return map[string]int{
		"orders":    m.ordersSurface.Len(),
		"positions": m.posSurface.Len(),
		"features":  m.history.Size(),
	}
}

// -----------------------------------------------------------------------------
// PRIVATE METHODS
// -----------------------------------------------------------------------------

func (m *Manager) applyOrder(order models.MOrderEvent) {
	m.mu.Lock()
	if order.ID <= m.seenThrough {
		m.mu.Unlock()
		m.logger.Debug("order %d already seen in a previous run, dropped", order.ID)
		return
	}
	m.orders[order.ID] = order
	m.reconcileOrdersLocked()
	ack := order.ID > m.lastAckOrderID
	if ack {
		m.lastAckOrderID = order.ID
	}
	m.mu.Unlock()

	if ack {
		m.persistLastAck(order.ID)
	}
}

// -----------------------------------------------------------------------------

// reconcileOrdersLocked rebuilds the ordered snapshot (newest id last),
// trims to the panel bound and hands it to the reconciler.
func (m *Manager) reconcileOrdersLocked() {
	ids := make([]int64, 0, len(m.orders))
	for id := range m.orders {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	if len(ids) > maxOrders {
		for _, id := range ids[:len(ids)-maxOrders] {
			delete(m.orders, id)
		}
		ids = ids[len(ids)-maxOrders:]
	}

	records := make([]reconcile.Record, 0, len(ids))
	for _, id := range ids {
		records = append(records, OrderRecord{m.orders[id]})
	}
	stats := m.ordersView.Reconcile(records)
	m.logger.Debug("orders panel reconciled: +%d ~%d -%d", stats.Created, stats.Updated, stats.Removed)
}

// -----------------------------------------------------------------------------

func (m *Manager) applyPositions(positions map[string]models.MPosition) {
	tokens := make([]string, 0, len(positions))
	for token := range positions {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)

	records := make([]reconcile.Record, 0, len(tokens))
	for _, token := range tokens {
		records = append(records, PositionRecord{positions[token]})
	}

	m.mu.Lock()
	stats := m.positionsView.Reconcile(records)
	m.mu.Unlock()
	m.logger.Debug("positions panel reconciled: +%d ~%d -%d", stats.Created, stats.Updated, stats.Removed)
}

// -----------------------------------------------------------------------------

func (m *Manager) applyFeature(update models.MFeatureUpdate) {
	m.history.Append(update)
	m.mu.Lock()
	m.latestFeature = &update
	m.mu.Unlock()
}

// -----------------------------------------------------------------------------

func (m *Manager) applyPosterior(update models.MPosteriorUpdate) {
	m.mu.Lock()
	m.latestPost = &update
	m.mu.Unlock()
}

// -----------------------------------------------------------------------------

// applyDashboard fans the aggregated payload out to every panel.
func (m *Manager) applyDashboard(update *models.MDashboardUpdate) {
	if update.Positions != nil {
		m.applyPositions(update.Positions)
	}
	if update.Posterior != nil {
		m.applyPosterior(*update.Posterior)
	}
	if len(update.Features) > 0 {
		m.applyFeature(models.MFeatureUpdate{
			Features:  update.Features,
			Timestamp: update.Timestamp,
		})
	}

	m.mu.Lock()
	risk := update.Risk
	m.latestRisk = &risk
	var maxID int64
	applied := 0
	for _, o := range update.Orders {
		if o.ID <= m.seenThrough {
			continue
		}
		m.orders[o.ID] = o
		applied++
		if o.ID > maxID {
			maxID = o.ID
		}
	}
	if applied > 0 {
		m.reconcileOrdersLocked()
	}
	ack := maxID > m.lastAckOrderID
	if ack {
		m.lastAckOrderID = maxID
	}
	m.mu.Unlock()

	if ack {
		m.persistLastAck(maxID)
	}
}

// -----------------------------------------------------------------------------

func (m *Manager) loadLastAck() {
	if m.store == nil {
		return
	}
	value, exists, err := m.store.Get(lastAckKey)
	if err != nil {
		m.logger.Warning("failed to load last-acked order id: %v", err)
		return
	}
	if !exists {
		return
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		m.logger.Warning("corrupt last-acked order id %q, ignoring", value)
		return
	}
	m.lastAckOrderID = id
	m.seenThrough = id
}

// -----------------------------------------------------------------------------

func (m *Manager) persistLastAck(id int64) {
	if m.store == nil {
		return
	}
	if err := m.store.Set(lastAckKey, strconv.FormatInt(id, 10)); err != nil {
		m.logger.Warning("failed to persist last-acked order id: %v", err)
	}
}
