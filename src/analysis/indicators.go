package analysis

import (
	"trading-dashboard/src/analysis/core"
	"trading-dashboard/src/models"
	"trading-dashboard/src/utils"
)

const (
	fastPeriods = 5
	slowPeriods = 10
	rsiPeriods  = 6
)

// -----------------------------------------------------------------------------

// Enrich derives the indicators of bar from the points preceding it in its
// bucket. Only the trailing utils.IndicatorWindow records, bar included,
// contribute.
func Enrich(previous []models.MPricePoint, bar models.MPriceBar) models.MPricePoint {
	start := len(previous) - (utils.IndicatorWindow - 1)
	if start < 0 {
		start = 0
	}
	window := previous[start:]

	closes := make([]float64, 0, len(window)+1)
	for _, p := range window {
		closes = append(closes, p.Bar.Close)
	}
	closes = append(closes, bar.Close)

	point := models.MPricePoint{
		Bar:    bar,
		FiveMA: core.MovingAverage(closes, fastPeriods),
		TenMA:  core.MovingAverage(closes, slowPeriods),
		SixRSI: core.RelativeStrengthIndex(closes, rsiPeriods),
	}

	if len(previous) > 0 {
		last := previous[len(previous)-1]
		point.BuySignal, point.SellSignal = core.Crossover(last.FiveMA, last.TenMA, point.FiveMA, point.TenMA)
	}
	return point
}

// -----------------------------------------------------------------------------

// EnrichSeries enriches bars in order, each against the points already
// produced before it.
func EnrichSeries(bars []models.MPriceBar) []models.MPricePoint {
	points := make([]models.MPricePoint, 0, len(bars))
	for _, b := range bars {
		points = append(points, Enrich(points, b))
	}
	return points
}

// -----------------------------------------------------------------------------

// Admits reports whether bar is far enough after last to enter a bucket of
// the given interval.
func Admits(last, bar models.MPriceBar, interval models.MInterval) bool {
	return bar.Timestamp.Sub(last.Timestamp).Minutes() >= float64(interval.Minutes())
}

// -----------------------------------------------------------------------------

// Thin keeps the bars of an ascending series that the bucket rule of
// interval would admit, starting from the first bar. Used to rebuild coarse
// buckets from archived minute bars.
func Thin(bars []models.MPriceBar, interval models.MInterval) []models.MPriceBar {
	if len(bars) == 0 {
		return []models.MPriceBar{}
	}
	kept := []models.MPriceBar{bars[0]}
	for _, b := range bars[1:] {
		if Admits(kept[len(kept)-1], b, interval) {
			kept = append(kept, b)
		}
	}
	return kept
}
