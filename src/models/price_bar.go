package models

import "time"

// MPriceBar is one OHLCV bar as received from the market data feed.
type MPriceBar struct {
	Symbol     string    `json:"symbol"`
	Timestamp  time.Time `json:"timestamp"`
	Open       float64   `json:"open"`
	High       float64   `json:"high"`
	Low        float64   `json:"low"`
	Close      float64   `json:"close"`
	Volume     float64   `json:"volume"`
	TradeCount float64   `json:"trade_count"`
}

// MPricePoint is a bar enriched with the indicators derived from the bars
// preceding it in the same interval bucket.
type MPricePoint struct {
	Bar        MPriceBar
	FiveMA     float64
	TenMA      float64
	SixRSI     float64
	BuySignal  bool
	SellSignal bool
}

// Record converts the point into its wire form.
func (p MPricePoint) Record() MRecord {
	return MRecord{
		Timestamp:               p.Bar.Timestamp.Format(time.RFC3339),
		Close:                   Float(p.Bar.Close),
		Open:                    Float(p.Bar.Open),
		High:                    Float(p.Bar.High),
		Low:                     Float(p.Bar.Low),
		Volume:                  Float(p.Bar.Volume),
		TradeCount:              Float(p.Bar.TradeCount),
		FivePeriodMovingAverage: Float(p.FiveMA),
		TenPeriodMovingAverage:  Float(p.TenMA),
		SixPeriodRsi:            Float(p.SixRSI),
		BuySignal:               Bool(p.BuySignal),
		SellSignal:              Bool(p.SellSignal),
	}
}
