package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sync"

	"trading-dashboard/src/config"
	"trading-dashboard/src/logger"
	"trading-dashboard/src/server"
)

func main() {
	// 1. Parse command line flags
	configPath := flag.String("config", "config/default.yaml", "path to config file")
	flag.Parse()

	// 2. Load config
	conf, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// 3. Setup Logger
	appLogger := logger.NewLogger(conf.LogLevel, conf.Name)

	// 4. Setup Components
	db, err := setupDatabase(conf.MConfig, appLogger)
	if err != nil {
		os.Exit(1)
	}
	defer db.Close()

	broker := setupBroker(conf.MConfig, appLogger)
	srv := server.NewDashboardServer(conf.MConfig, broker, nil, appLogger.Named("Server"))
	prices := setupPrices(conf.MConfig, db, srv, appLogger)
	if prices != nil {
		srv.AttachPrices(prices)
	}
	refresher, err := setupRefresher(conf.MConfig, broker, srv, appLogger)
	if err != nil {
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 5. Bootstrap (Initial Load)
	performInitialLoad(ctx, prices, appLogger)

	// 6. Start live ingestion
	var wg sync.WaitGroup
	if prices != nil {
		if err := prices.Start(ctx, &wg); err != nil {
			appLogger.Critical("Failed to start price ingestion: %v", err)
		}
	}
	if refresher != nil {
		refresher.Start(ctx)
	}

	defer func() {
		appLogger.Info("Waiting for sources to stop...")
		cancel()
		if refresher != nil {
			refresher.Stop()
		}
		wg.Wait()
		appLogger.Info("Shutdown complete.")
	}()

	// 7. Serve until a signal or a server failure
	if err := runServers(ctx, srv, db, conf.MConfig, appLogger); err != nil {
		appLogger.Error("Server stopped with error: %v", err)
	}
}
