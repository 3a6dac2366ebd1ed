package utils

import (
	"strings"
	"time"

	"github.com/scmhub/calendar"
)

// -----------------------------------------------------------------------------
// TradingCalendar wraps one scmhub/calendar venue. The session config lists a
// handful of macro listings whose hours gate liveness checks; bare symbols
// trade on NYSE hours, everything else is resolved by its listing suffix.
// -----------------------------------------------------------------------------

type TradingCalendar struct {
	Calendar *calendar.Calendar
	Fallback bool
	Timezone *time.Location
}

// micBySuffix maps the listing suffixes the session config can use to
// ISO 10383 MIC codes understood by scmhub/calendar.
var micBySuffix = map[string]string{
	".L":  "xlon",
	".DE": "xfra",
	".PA": "xpar",
	".SW": "xswx",
	".T":  "xtks",
	".HK": "xhkg",
}

// -----------------------------------------------------------------------------

// GetCalendar resolves a session symbol to its venue calendar.
func GetCalendar(symbol string) *TradingCalendar {
	mic := "xnys"
	for suffix, code := range micBySuffix {
		if strings.HasSuffix(symbol, suffix) {
			mic = code
			break
		}
	}

	cal := calendar.GetCalendar(mic)
	if cal == nil {
		cal = calendar.GetCalendar("xnys")
	}
	if cal == nil {
		// No calendar data at all: approximate the NYSE cash session.
		loc, err := time.LoadLocation("America/New_York")
		if err != nil {
			loc = time.UTC
		}
		return &TradingCalendar{Fallback: true, Timezone: loc}
	}

	return &TradingCalendar{Calendar: cal, Timezone: cal.Loc}
}

// -----------------------------------------------------------------------------

// IsTradingDay reports whether the venue trades at all on the given date.
func (tc *TradingCalendar) IsTradingDay(date time.Time) bool {
	if tc.Timezone != nil {
		date = date.In(tc.Timezone)
	}
	if tc.Fallback {
		wd := date.Weekday()
		return wd != time.Saturday && wd != time.Sunday
	}
	return tc.Calendar.IsBusinessDay(date)
}

// -----------------------------------------------------------------------------

// IsOpenOnMinute reports whether the venue is in session at the given minute.
func (tc *TradingCalendar) IsOpenOnMinute(t time.Time) bool {
	if tc.Timezone != nil {
		t = t.In(tc.Timezone)
	}
	if !tc.Fallback {
		return tc.Calendar.IsOpen(t)
	}
	if !tc.IsTradingDay(t) {
		return false
	}

	// Approximate cash session, 09:30-16:00.
	afterOpen := t.Hour() > 9 || (t.Hour() == 9 && t.Minute() >= 30)
	return afterOpen && t.Hour() < 16
}
