package utils

import (
	"testing"
	"time"

	"dashboard-sync/src/logger"
)

// -----------------------------------------------------------------------------

func TestGateWithoutCalendarsNeverCloses(t *testing.T) {
	g := NewSessionGate(nil, logger.NewLogger("ERROR", "test"))
	if !g.AnyMarketOpen() {
		t.Error("gate with no calendars must report open")
	}
}

func TestGateMapsSymbolsToCalendars(t *testing.T) {
	g := NewSessionGate([]string{"AAPL", "SAP.DE", "7203.T"}, logger.NewLogger("ERROR", "test"))
	if len(g.calendars) != 3 {
		t.Errorf("mapped %d symbols, want 3", len(g.calendars))
	}
}

func TestGateStartStopIdempotent(t *testing.T) {
	g := NewSessionGate([]string{"AAPL"}, logger.NewLogger("ERROR", "test"))
	g.Start()
	g.Start()
	g.Stop()
	g.Stop()
}

func TestCalendarFallbackHours(t *testing.T) {
	tc := &TradingCalendar{Fallback: true, Timezone: time.UTC}

	// Wednesday 12:00.
	wedNoon := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	if !tc.IsOpenOnMinute(wedNoon) {
		t.Error("fallback calendar closed on a weekday noon")
	}

	// Saturday.
	sat := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	if tc.IsOpenOnMinute(sat) {
		t.Error("fallback calendar open on Saturday")
	}

	// Weekday before the open.
	wedEarly := time.Date(2026, 8, 26, 8, 0, 0, 0, time.UTC)
	if tc.IsOpenOnMinute(wedEarly) {
		t.Error("fallback calendar open before 09:30")
	}
}
