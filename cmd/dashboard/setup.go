package main

import (
	"path/filepath"

	"trading-dashboard/src/config"
	"trading-dashboard/src/dashboard"
	"trading-dashboard/src/interfaces"
	"trading-dashboard/src/logger"
	"trading-dashboard/src/models"
	"trading-dashboard/src/network"
	"trading-dashboard/src/preferences"
	"trading-dashboard/src/render"
	"trading-dashboard/src/series"
	"trading-dashboard/src/storage"
	"trading-dashboard/src/stream"
	"trading-dashboard/src/widgets"
)

// -----------------------------------------------------------------------------

// setupPreferences opens the store holding the chart interval choices. The
// dashboard keeps its own sqlite file next to the charts instead of sharing
// the backend's bar archive.
func setupPreferences(conf *config.Config, appLogger *logger.Logger) (interfaces.IDatabase, error) {
	prefsConfig := *conf.MConfig
	prefsConfig.Storage = models.MStorageConfig{
		DBType: "sqlite",
		DBPath: conf.Dashboard.PreferencesPath,
	}

	db, err := storage.NewDatabase(&prefsConfig, appLogger)
	if err != nil {
		appLogger.Critical("Failed to open preferences: %v", err)
		return nil, err
	}
	return db, nil
}

// -----------------------------------------------------------------------------

// setupController wires the transport, rendering and widget layers
func setupController(conf *config.Config, prefsStore interfaces.IKeyValueStore, appLogger *logger.Logger) (*dashboard.Controller, error) {
	loc, err := conf.Location()
	if err != nil {
		appLogger.Critical("Invalid timezone: %v", err)
		return nil, err
	}

	factory, err := render.NewFactory(conf.Dashboard, appLogger.Named("Render"))
	if err != nil {
		appLogger.Critical("Failed to set up rendering: %v", err)
		return nil, err
	}

	fetcher := network.NewFetchClient(conf.Dashboard.BackendURL, appLogger.Named("Fetch"))
	subscriber := stream.NewSubscriber(conf.Dashboard.WebsocketURL, appLogger.Named("Stream"))
	board := widgets.NewBoard(fetcher, filepath.Join(conf.Dashboard.OutputDir, "widgets.txt"), appLogger.Named("Widgets"))

	return dashboard.NewController(
		fetcher,
		subscriber,
		preferences.NewIntervalStore(prefsStore, appLogger.Named("Preferences")),
		series.NewTransformer(loc),
		factory,
		board,
		appLogger.Named("Dashboard"),
	), nil
}
