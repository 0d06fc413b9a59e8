package models

// MSeriesKind selects which value field a record batch carries.
type MSeriesKind string

const (
	SeriesKindPrice  MSeriesKind = "price"
	SeriesKindEquity MSeriesKind = "equity"
)

// MRecord is one sample of a price/indicator or equity series as it travels
// over HTTP and the websocket. Optional values are pointers so an absent
// field stays distinguishable from zero.
type MRecord struct {
	Timestamp               string   `json:"timestamp"`
	Close                   *float64 `json:"close,omitempty"`
	Equity                  *float64 `json:"equity,omitempty"`
	Open                    *float64 `json:"open,omitempty"`
	High                    *float64 `json:"high,omitempty"`
	Low                     *float64 `json:"low,omitempty"`
	Volume                  *float64 `json:"volume,omitempty"`
	TradeCount              *float64 `json:"trade_count,omitempty"`
	FivePeriodMovingAverage *float64 `json:"fivePeriodMovingAverage,omitempty"`
	TenPeriodMovingAverage  *float64 `json:"tenPeriodMovingAverage,omitempty"`
	SixPeriodRsi            *float64 `json:"sixPeriodRsi,omitempty"`
	BuySignal               *bool    `json:"buySignal,omitempty"`
	SellSignal              *bool    `json:"sellSignal,omitempty"`
}

// MIntervalBatch is the interval-keyed payload served by /data and
// /portfoliovalue and pushed on the websockets.
type MIntervalBatch map[MInterval][]MRecord

// Float returns a pointer to v, handy when building records.
func Float(v float64) *float64 { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }
