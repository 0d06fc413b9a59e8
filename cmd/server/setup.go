package main

import (
	"time"

	"trading-dashboard/src/broker"
	datasource "trading-dashboard/src/data_source"
	"trading-dashboard/src/data_source/alpacadata"
	"trading-dashboard/src/interfaces"
	"trading-dashboard/src/logger"
	"trading-dashboard/src/models"
	"trading-dashboard/src/server"
	"trading-dashboard/src/storage"
	"trading-dashboard/src/utils"
)

// -----------------------------------------------------------------------------

// setupDatabase opens the bar archive and key/value store
func setupDatabase(config *models.MConfig, appLogger *logger.Logger) (interfaces.IDatabase, error) {
	db, err := storage.NewDatabase(config, appLogger)
	if err != nil {
		appLogger.Critical("%v", err)
		return nil, err
	}
	return db, nil
}

// -----------------------------------------------------------------------------

// setupBroker returns nil when no credentials are configured; the broker
// routes then answer 503.
func setupBroker(config *models.MConfig, appLogger *logger.Logger) interfaces.IBroker {
	if config.Broker.APIKey == "" || config.Broker.APISecret == "" {
		appLogger.Warning("No broker credentials configured, account routes disabled")
		return nil
	}
	alpaca := broker.NewAlpacaBroker(config.Broker, appLogger.Named("AlpacaBroker"))
	return broker.NewCachedBroker(alpaca, time.Minute)
}

// -----------------------------------------------------------------------------

// setupPrices builds the price pipeline of the configured symbol
func setupPrices(config *models.MConfig, db interfaces.IDatabase, srv interfaces.IDataExchanger, appLogger *logger.Logger) *datasource.SourceManager {
	if config.Broker.APIKey == "" || config.Broker.APISecret == "" {
		appLogger.Warning("No market data credentials configured, /data disabled")
		return nil
	}

	scheduler := utils.NewMarketScheduler(config.Broker.Symbol, appLogger.Named("MarketScheduler"))
	source := alpacadata.NewAlpacaSource(config.Broker, scheduler, appLogger.Named("AlpacaSource"))
	appLogger.Info("Tracking %s on feed %s", config.Broker.Symbol, config.Broker.Feed)

	return datasource.NewSourceManager(config, source, db, srv, scheduler, appLogger.Named("SourceManager"))
}

// -----------------------------------------------------------------------------

// setupRefresher schedules the portfolio push
func setupRefresher(config *models.MConfig, b interfaces.IBroker, srv interfaces.IDataExchanger, appLogger *logger.Logger) (*server.PortfolioRefresher, error) {
	if b == nil {
		return nil, nil
	}
	refresher := server.NewPortfolioRefresher(b, srv, appLogger.Named("PortfolioRefresher"))
	if err := refresher.Register(config.Broker.RefreshSchedule); err != nil {
		appLogger.Critical("Invalid refresh schedule: %v", err)
		return nil, err
	}
	return refresher, nil
}
