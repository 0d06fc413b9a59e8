package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"trading-dashboard/src/config"
	"trading-dashboard/src/logger"
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
	appLogger := logger.NewLogger(conf.LogLevel, conf.Name+"-ui")

	// 4. Setup Components
	prefsStore, err := setupPreferences(conf, appLogger)
	if err != nil {
		os.Exit(1)
	}
	defer prefsStore.Close()

	controller, err := setupController(conf, prefsStore, appLogger)
	if err != nil {
		os.Exit(1)
	}

	// 5. Start charts and widgets
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := controller.Start(ctx, conf.Dashboard.PollSchedule); err != nil {
		appLogger.Critical("Failed to start dashboard: %v", err)
		os.Exit(1)
	}
	defer func() {
		appLogger.Info("Stopping charts...")
		controller.Stop()
		appLogger.Info("Shutdown complete.")
	}()

	// 6. Serve the control API until a signal arrives
	if err := runControlServer(ctx, controller, conf.MConfig, appLogger); err != nil {
		appLogger.Error("Control server stopped with error: %v", err)
	}
}
