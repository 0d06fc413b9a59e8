package interfaces

import (
	"context"
	"sync"
	"time"

	"trading-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// IDataSource interface for fetching price bars from a market data provider.
// -----------------------------------------------------------------------------

type IDataSource interface {

	// Name returns the unique identifier of the source
	Name() string

	// -----------------------------------------------------------------------------

	// FetchHistory retrieves the bars of symbol between start and end, spaced
	// by the interval's timeframe.
	FetchHistory(ctx context.Context, symbol string, interval models.MInterval, start, end time.Time) ([]models.MPriceBar, error)

	// -----------------------------------------------------------------------------

	// Start streams live minute bars into outputChan until ctx is cancelled.
	// wg is released once the source has fully stopped.
	Start(ctx context.Context, outputChan chan<- models.MPriceBar, wg *sync.WaitGroup) error
}
