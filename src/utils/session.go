package utils

import (
	"sync"
	"time"

	"dashboard-sync/src/logger"
)

// -----------------------------------------------------------------------------
// SessionGate tracks whether any market relevant to the dashboard is open
// and fires open/close transitions. While every market is closed the streams
// legitimately go quiet, so the gate is used to pause liveness monitoring
// instead of raising degraded flags all night.
// -----------------------------------------------------------------------------

const sessionCheckInterval = time.Minute

type SessionGate struct {
	calendars map[string]*TradingCalendar
	logger    *logger.Logger

	// OnOpen fires when the first tracked market opens.
	OnOpen func()

	// OnClose fires when the last tracked market closes.
	OnClose func()

	mu       sync.Mutex
	open     bool
	running  bool
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// -----------------------------------------------------------------------------

func NewSessionGate(symbols []string, log *logger.Logger) *SessionGate {
	g := &SessionGate{
		calendars: make(map[string]*TradingCalendar),
		logger:    log,
	}

	for _, symbol := range symbols {
		cal := GetCalendar(symbol)
		if cal != nil {
			g.calendars[symbol] = cal
		}
	}

	// Count unique calendars
	uniqueCals := make(map[*TradingCalendar]bool)
	for _, cal := range g.calendars {
		uniqueCals[cal] = true
	}
	log.Info("SessionGate: Mapped %d symbols to %d unique calendars.", len(symbols), len(uniqueCals))

	return g
}

// -----------------------------------------------------------------------------

// AnyMarketOpen checks if ANY tracked markets are currently open
func (g *SessionGate) AnyMarketOpen() bool {
	now := time.Now().UTC()

	g.mu.Lock()
	defer g.mu.Unlock()

	uniqueCals := make(map[*TradingCalendar]bool)
	for _, cal := range g.calendars {
		uniqueCals[cal] = true
	}

	// With no calendars configured the gate never closes anything.
	if len(uniqueCals) == 0 {
		return true
	}

	for cal := range uniqueCals {
		if cal.IsOpenOnMinute(now) {
			return true
		}
	}

	return false
}

// -----------------------------------------------------------------------------

// Start evaluates the session immediately and then once a minute. Idempotent.
func (g *SessionGate) Start() {
	g.mu.Lock()
	if g.running {
		g.mu.Unlock()
		return
	}
	g.running = true
	g.stopChan = make(chan struct{})
	g.open = true
	g.mu.Unlock()

	g.check()

	g.wg.Add(1)
	go g.run()
}

// -----------------------------------------------------------------------------

func (g *SessionGate) Stop() {
	g.mu.Lock()
	if !g.running {
		g.mu.Unlock()
		return
	}
	g.running = false
	close(g.stopChan)
	g.mu.Unlock()

	g.wg.Wait()
}

// -----------------------------------------------------------------------------

// IsOpen returns the last evaluated session state.
func (g *SessionGate) IsOpen() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.open
}

// -----------------------------------------------------------------------------
// PRIVATE METHODS
// -----------------------------------------------------------------------------

func (g *SessionGate) run() {
	defer g.wg.Done()

	ticker := time.NewTicker(sessionCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			g.check()
		case <-g.stopChan:
			return
		}
	}
}

// -----------------------------------------------------------------------------

func (g *SessionGate) check() {
	nowOpen := g.AnyMarketOpen()

	g.mu.Lock()
	changed := nowOpen != g.open
	g.open = nowOpen
	g.mu.Unlock()

	if !changed {
		return
	}

	if nowOpen {
		g.logger.Info("SessionGate: market session opened")
		if cb := g.OnOpen; cb != nil {
			cb()
		}
	} else {
		g.logger.Info("SessionGate: all tracked markets closed")
		if cb := g.OnClose; cb != nil {
			cb()
		}
	}
}
