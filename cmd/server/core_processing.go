package main

import (
	"trading-dashboard/src/interfaces"
	"trading-dashboard/src/logger"

	"github.com/robfig/cron/v3"
)

// -----------------------------------------------------------------------------

// startMaintenance prunes archived bars older than the retention period once
// a day. The returned cron must be stopped by the caller.
func startMaintenance(db interfaces.IDatabase, appLogger *logger.Logger) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc("@daily", func() {
		if err := db.CleanupOldData(); err != nil {
			appLogger.Error("Cleanup failed: %v", err)
			return
		}
		appLogger.Debug("Old bars pruned")
	})
	if err != nil {
		return nil, err
	}

	// Prune once at startup so a long downtime does not leave stale rows
	if err := db.CleanupOldData(); err != nil {
		appLogger.Warning("Startup cleanup failed: %v", err)
	}
	c.Start()
	return c, nil
}
