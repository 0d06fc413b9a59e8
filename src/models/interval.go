package models

import "fmt"

// MInterval is the sampling granularity a chart is showing.
type MInterval string

const (
	IntervalOne     MInterval = "one"
	IntervalFifteen MInterval = "fifteen"
	IntervalHour    MInterval = "hour"
	IntervalDay     MInterval = "day"

	DefaultInterval = IntervalFifteen
)

// AllIntervals lists the selectable intervals in display order.
var AllIntervals = []MInterval{IntervalOne, IntervalFifteen, IntervalHour, IntervalDay}

// ParseInterval accepts only the four known interval names.
func ParseInterval(s string) (MInterval, error) {
	for _, iv := range AllIntervals {
		if string(iv) == s {
			return iv, nil
		}
	}
	return "", fmt.Errorf("unknown interval %q", s)
}

// Minutes is the spacing between two records of the interval.
func (i MInterval) Minutes() int {
	switch i {
	case IntervalOne:
		return 1
	case IntervalFifteen:
		return 15
	case IntervalHour:
		return 60
	case IntervalDay:
		return 60 * 24
	}
	return 0
}

// ButtonLabel is the short caption used by interval controls.
func (i MInterval) ButtonLabel() string {
	switch i {
	case IntervalOne:
		return "1m"
	case IntervalFifteen:
		return "15m"
	case IntervalHour:
		return "1h"
	case IntervalDay:
		return "1d"
	}
	return string(i)
}

// PortfolioWindow returns the broker timeframe and lookback period used to
// build the equity history for the interval.
func (i MInterval) PortfolioWindow() (timeframe string, period string) {
	switch i {
	case IntervalOne:
		return "1Min", "1D"
	case IntervalHour:
		return "1H", "5D"
	case IntervalDay:
		return "1D", "30D"
	default:
		return "15Min", "5D"
	}
}
