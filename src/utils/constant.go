package utils

import "time"

// -----------------------------------------------------------------------------

const (
	// BucketCapacity is how many records each interval bucket keeps.
	BucketCapacity = 60

	// IndicatorWindow is the number of trailing records, new one included, the
	// moving averages and RSI of a new record are computed from.
	IndicatorWindow = 10

	// HistoryDays is the default lookback of the initial bar download.
	HistoryDays = 10

	// ClosedMarketPause is how long the bar stream sleeps before checking
	// the calendar again while the market is closed.
	ClosedMarketPause = 5 * time.Minute
)
