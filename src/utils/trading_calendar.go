package utils

import (
	"strings"
	"time"

	"github.com/scmhub/calendar"
)

// TradingCalendar answers market-hours questions for one symbol using
// scmhub/calendar. Crypto pairs ("BTC/USD") trade around the clock.
type TradingCalendar struct {
	Calendar   *calendar.Calendar
	Fallback   bool
	AlwaysOpen bool
	Timezone   *time.Location
}

// -----------------------------------------------------------------------------

// GetCalendar returns the calendar for symbol. Alpaca equities all trade on
// US venues, so every non-crypto symbol maps to NYSE.
func GetCalendar(symbol string) *TradingCalendar {
	if strings.Contains(symbol, "/") {
		return &TradingCalendar{AlwaysOpen: true, Timezone: time.UTC}
	}

	cal := calendar.GetCalendar("xnys")
	if cal == nil {
		nyLoc, err := time.LoadLocation("America/New_York")
		if err != nil {
			nyLoc = time.UTC
		}
		return &TradingCalendar{Fallback: true, Timezone: nyLoc}
	}

	return &TradingCalendar{Calendar: cal, Timezone: cal.Loc}
}

// -----------------------------------------------------------------------------

func (tc *TradingCalendar) IsTradingDay(date time.Time) bool {
	if tc.AlwaysOpen {
		return true
	}
	if tc.Timezone != nil {
		date = date.In(tc.Timezone)
	}

	if tc.Fallback {
		weekday := date.Weekday()
		return weekday != time.Saturday && weekday != time.Sunday
	}
	return tc.Calendar.IsBusinessDay(date)
}

// -----------------------------------------------------------------------------

// IsOpenOnMinute reports whether the regular session is open at t.
func (tc *TradingCalendar) IsOpenOnMinute(t time.Time) bool {
	if tc.AlwaysOpen {
		return true
	}
	if tc.Timezone != nil {
		t = t.In(tc.Timezone)
	}

	if tc.Fallback {
		if !tc.IsTradingDay(t) {
			return false
		}
		hour, minute := t.Hour(), t.Minute()
		// 9:30 - 16:00 New York
		return (hour > 9 || (hour == 9 && minute >= 30)) && hour < 16
	}

	return tc.Calendar.IsOpen(t)
}

// -----------------------------------------------------------------------------

// HistoryStart walks back from end until days trading days are covered and
// returns midnight of the earliest one. Weekends and holidays therefore
// never eat into the lookback.
func (tc *TradingCalendar) HistoryStart(end time.Time, days int) time.Time {
	loc := tc.Timezone
	if loc == nil {
		loc = time.UTC
	}
	day := time.Date(end.In(loc).Year(), end.In(loc).Month(), end.In(loc).Day(), 0, 0, 0, 0, loc)

	// Bounded so a broken calendar cannot spin forever.
	for counted, steps := 0, 0; steps < days*3+14; steps++ {
		if tc.IsTradingDay(day) {
			counted++
			if counted >= days {
				return day
			}
		}
		day = day.AddDate(0, 0, -1)
	}
	return day
}
