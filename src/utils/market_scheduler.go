package utils

import (
	"context"
	"sync"
	"time"

	"trading-dashboard/src/logger"
)

// MarketScheduler gates the live bar stream on the trading calendar of the
// tracked symbol.
type MarketScheduler struct {
	Calendar *TradingCalendar
	Symbol   string
	Logger   *logger.Logger
	now      func() time.Time
	mu       sync.RWMutex
}

// -----------------------------------------------------------------------------

func NewMarketScheduler(symbol string, l *logger.Logger) *MarketScheduler {
	ms := &MarketScheduler{Logger: l, now: time.Now}
	ms.UpdateSymbol(symbol)
	return ms
}

// -----------------------------------------------------------------------------

// UpdateSymbol swaps the tracked symbol and its calendar.
func (ms *MarketScheduler) UpdateSymbol(symbol string) {
	cal := GetCalendar(symbol)

	ms.mu.Lock()
	ms.Symbol = symbol
	ms.Calendar = cal
	ms.mu.Unlock()

	switch {
	case cal.AlwaysOpen:
		ms.Logger.Info("MarketScheduler: %s trades around the clock", symbol)
	case cal.Fallback:
		ms.Logger.Warning("MarketScheduler: no calendar for %s, using Mon-Fri 09:30-16:00 New York", symbol)
	default:
		ms.Logger.Info("MarketScheduler: %s mapped to NYSE calendar", symbol)
	}
}

// -----------------------------------------------------------------------------

// MarketOpen checks whether the tracked market is currently open.
func (ms *MarketScheduler) MarketOpen() bool {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return ms.Calendar.IsOpenOnMinute(ms.now().UTC())
}

// -----------------------------------------------------------------------------

// HistoryStart is the start of the lookback window ending now.
func (ms *MarketScheduler) HistoryStart(days int) time.Time {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return ms.Calendar.HistoryStart(ms.now(), days)
}

// -----------------------------------------------------------------------------

// WaitForOpen blocks until the market opens, polling every pause. It returns
// false if ctx ends first.
func (ms *MarketScheduler) WaitForOpen(ctx context.Context, pause time.Duration) bool {
	logged := false
	for !ms.MarketOpen() {
		if !logged {
			ms.Logger.Info("Market closed for %s. Pausing stream.", ms.Symbol)
			logged = true
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(pause):
		}
	}
	return ctx.Err() == nil
}
