package main

import (
	"context"
	"time"

	datasource "trading-dashboard/src/data_source"
	"trading-dashboard/src/logger"
	"trading-dashboard/src/models"
)

// performInitialLoad seeds the interval buckets before any client connects.
// A failure leaves the buckets empty and the live stream fills them.
func performInitialLoad(ctx context.Context, prices *datasource.SourceManager, appLogger *logger.Logger) {
	if prices == nil {
		return
	}

	appLogger.Info("Fetching initial data...")
	started := time.Now()

	loadCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	if err := prices.Bootstrap(loadCtx); err != nil {
		appLogger.Warning("Bootstrap completed with warnings: %v", err)
		return
	}

	batch := prices.Snapshot()
	appLogger.Info("Initialization complete in %s: one=%d fifteen=%d hour=%d day=%d",
		time.Since(started).Round(time.Millisecond),
		len(batch[models.IntervalOne]), len(batch[models.IntervalFifteen]),
		len(batch[models.IntervalHour]), len(batch[models.IntervalDay]))
}
