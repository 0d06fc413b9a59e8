package broker

import (
	"context"
	"sync"
	"time"

	"trading-dashboard/src/interfaces"
	"trading-dashboard/src/models"

	"golang.org/x/sync/errgroup"
)

// HistoryLength is how many samples each interval of the portfolio payload keeps.
const HistoryLength = 60

// PortfolioBatch builds the interval-keyed equity payload served by
// /portfoliovalue, fetching every interval concurrently.
func PortfolioBatch(ctx context.Context, b interfaces.IBroker) (models.MIntervalBatch, error) {
	var mu sync.Mutex
	batch := make(models.MIntervalBatch, len(models.AllIntervals))

	g, gctx := errgroup.WithContext(ctx)
	for _, iv := range models.AllIntervals {
		g.Go(func() error {
			points, err := b.PortfolioHistory(gctx, iv)
			if err != nil {
				return err
			}
			records := EquityRecords(points)
			mu.Lock()
			batch[iv] = records
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return batch, nil
}

// EquityRecords converts the latest HistoryLength points into wire records.
func EquityRecords(points []models.MEquityPoint) []models.MRecord {
	if len(points) > HistoryLength {
		points = points[len(points)-HistoryLength:]
	}
	records := make([]models.MRecord, 0, len(points))
	for _, p := range points {
		records = append(records, models.MRecord{
			Timestamp: time.Unix(p.Timestamp, 0).UTC().Format(time.RFC3339),
			Equity:    models.Float(p.Equity),
		})
	}
	return records
}
