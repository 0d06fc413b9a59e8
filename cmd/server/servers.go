package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"trading-dashboard/src/interfaces"
	"trading-dashboard/src/logger"
	"trading-dashboard/src/models"

	"golang.org/x/sync/errgroup"
)

// -----------------------------------------------------------------------------

// runServers serves HTTP and runs maintenance until a signal arrives, ctx
// ends, or the HTTP server fails.
func runServers(
	ctx context.Context,
	srv interfaces.IDataExchanger,
	db interfaces.IDatabase,
	config *models.MConfig,
	appLogger *logger.Logger,
) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	maintenance, err := startMaintenance(db, appLogger.Named("Maintenance"))
	if err != nil {
		return err
	}
	defer func() { <-maintenance.Stop().Done() }()

	g, gctx := errgroup.WithContext(ctx)

	// 1. REST + websocket server
	g.Go(func() error {
		appLogger.Info("Serving dashboard backend on %s:%d", config.Host, config.Port)
		return srv.Start()
	})

	// 2. Shutdown on signal or first failure
	g.Go(func() error {
		<-gctx.Done()
		appLogger.Info("Shutting down...")
		return srv.Stop()
	})

	return g.Wait()
}
