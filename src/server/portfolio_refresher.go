package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"trading-dashboard/src/broker"
	"trading-dashboard/src/interfaces"
	"trading-dashboard/src/logger"

	"github.com/robfig/cron/v3"
)

// PortfolioRefresher rebuilds the equity history on a cron schedule and
// pushes it on the portfolio topic.
type PortfolioRefresher struct {
	Cron     *cron.Cron
	Broker   interfaces.IBroker
	Exchange interfaces.IDataExchanger
	Logger   *logger.Logger
	timeout  time.Duration
	mu       sync.Mutex
}

// -----------------------------------------------------------------------------

func NewPortfolioRefresher(b interfaces.IBroker, exchange interfaces.IDataExchanger, log *logger.Logger) *PortfolioRefresher {
	return &PortfolioRefresher{
		Cron:     cron.New(),
		Broker:   b,
		Exchange: exchange,
		Logger:   log,
		timeout:  30 * time.Second,
	}
}

// -----------------------------------------------------------------------------

// Register adds the refresh job. schedule is a standard cron spec or a
// descriptor such as "@every 1m".
func (r *PortfolioRefresher) Register(schedule string) error {
	if _, err := r.Cron.AddFunc(schedule, r.runScheduled); err != nil {
		return fmt.Errorf("register portfolio refresh %q: %w", schedule, err)
	}
	return nil
}

// Start runs one refresh right away, then hands over to the schedule.
func (r *PortfolioRefresher) Start(ctx context.Context) {
	if err := r.Refresh(ctx); err != nil {
		r.Logger.Warning("Initial portfolio refresh failed: %v", err)
	}
	r.Cron.Start()
	r.Logger.Info("Portfolio refresher started")
}

// Stop stops the schedule and waits for a running refresh.
func (r *PortfolioRefresher) Stop() {
	<-r.Cron.Stop().Done()
	r.Logger.Info("Portfolio refresher stopped")
}

// -----------------------------------------------------------------------------

func (r *PortfolioRefresher) runScheduled() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	if err := r.Refresh(ctx); err != nil {
		r.Logger.Warning("Portfolio refresh failed: %v", err)
	}
}

// Refresh fetches every interval's history and publishes it.
func (r *PortfolioRefresher) Refresh(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	batch, err := broker.PortfolioBatch(ctx, r.Broker)
	if err != nil {
		return err
	}
	r.Exchange.UpdateSnapshot(TopicPortfolio, batch)
	r.Exchange.Broadcast(TopicPortfolio, batch)
	r.Logger.Debug("Published portfolio history")
	return nil
}
