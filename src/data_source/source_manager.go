package datasource

import (
	"context"
	"fmt"
	"sync"
	"time"

	"trading-dashboard/src/analysis"
	"trading-dashboard/src/interfaces"
	"trading-dashboard/src/logger"
	"trading-dashboard/src/metrics"
	"trading-dashboard/src/models"
	"trading-dashboard/src/utils"
)

// PricesTopic is the hub topic price snapshots are published on.
const PricesTopic = "prices"

// -----------------------------------------------------------------------------

// SourceManager owns the per-interval price buckets of the tracked symbol.
// It seeds them from history, feeds them from the live source and publishes
// the interval-keyed snapshot after every accepted bar.
type SourceManager struct {
	Source    interfaces.IDataSource
	Archive   interfaces.IDatabase
	Exchange  interfaces.IDataExchanger
	Scheduler *utils.MarketScheduler
	Config    *models.MConfig
	Logger    *logger.Logger

	mu         sync.RWMutex
	buckets    map[models.MInterval]*utils.RingBuffer[models.MPricePoint]
	stats      models.MProcessingMetrics
	cancelFunc context.CancelFunc
	now        func() time.Time
}

// -----------------------------------------------------------------------------

func NewSourceManager(
	cfg *models.MConfig,
	source interfaces.IDataSource,
	archive interfaces.IDatabase,
	exchange interfaces.IDataExchanger,
	scheduler *utils.MarketScheduler,
	log *logger.Logger,
) *SourceManager {
	m := &SourceManager{
		Source:    source,
		Archive:   archive,
		Exchange:  exchange,
		Scheduler: scheduler,
		Config:    cfg,
		Logger:    log,
		buckets:   make(map[models.MInterval]*utils.RingBuffer[models.MPricePoint]),
		now:       time.Now,
	}
	for _, iv := range models.AllIntervals {
		m.buckets[iv] = utils.NewRingBuffer[models.MPricePoint](utils.BucketCapacity)
	}
	return m
}

// -----------------------------------------------------------------------------

func (m *SourceManager) Name() string {
	return "SourceManager"
}

// -----------------------------------------------------------------------------

// Bootstrap fills every bucket with the latest history. An interval whose
// download fails is rebuilt from archived minute bars instead.
func (m *SourceManager) Bootstrap(ctx context.Context) error {
	symbol := m.Config.Broker.Symbol
	days := m.Config.Broker.HistoryDays
	if days <= 0 {
		days = utils.HistoryDays
	}

	end := m.now().UTC()
	start := end.AddDate(0, 0, -days)
	if m.Scheduler != nil {
		start = m.Scheduler.HistoryStart(days)
	}

	var archived []models.MPriceBar
	loadedArchive := false
	failed := 0

	for _, iv := range models.AllIntervals {
		bars, err := m.Source.FetchHistory(ctx, symbol, iv, start, end)
		if err != nil {
			m.Logger.Warning("History download for %s (%s) failed: %v. Using archive.", symbol, iv, err)
			if !loadedArchive && m.Archive != nil {
				archived, err = m.Archive.LoadBars(symbol, start)
				loadedArchive = true
				if err != nil {
					m.Logger.Error("Archive read failed: %v", err)
				}
			}
			bars = analysis.Thin(archived, iv)
			failed++
		} else if iv == models.IntervalOne && m.Archive != nil {
			if err := m.Archive.SaveBarsBulk(bars); err != nil {
				m.Logger.Warning("Archiving %d bars failed: %v", len(bars), err)
			}
		}

		points := analysis.EnrichSeries(bars)
		m.mu.Lock()
		m.buckets[iv].Reset(points)
		m.mu.Unlock()
		m.Logger.Info("Seeded %s bucket with %d of %d bars", iv, min(len(points), utils.BucketCapacity), len(points))
	}

	m.publish()
	if failed == len(models.AllIntervals) && len(archived) == 0 {
		return fmt.Errorf("no history available for %s", symbol)
	}
	return nil
}

// -----------------------------------------------------------------------------

// Start runs the live source and the ingestion loop until ctx ends or Stop
// is called.
func (m *SourceManager) Start(parentCtx context.Context, wg *sync.WaitGroup) error {
	m.mu.Lock()
	if m.cancelFunc != nil {
		m.mu.Unlock()
		return fmt.Errorf("SourceManager is already running")
	}
	ctx, cancel := context.WithCancel(parentCtx)
	m.cancelFunc = cancel
	m.mu.Unlock()

	bars := make(chan models.MPriceBar, 64)
	if err := m.Source.Start(ctx, bars, wg); err != nil {
		cancel()
		return fmt.Errorf("failed to start source %s: %w", m.Source.Name(), err)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case bar := <-bars:
				m.Ingest(bar)
			}
		}
	}()
	return nil
}

// -----------------------------------------------------------------------------

func (m *SourceManager) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cancelFunc == nil {
		return nil
	}
	m.Logger.Info("Stopping SourceManager...")
	m.cancelFunc()
	m.cancelFunc = nil
	return nil
}

// -----------------------------------------------------------------------------

// Ingest offers bar to every bucket. A bucket accepts it when it is at least
// one interval after the bucket's last record. It returns the intervals that
// accepted the bar.
func (m *SourceManager) Ingest(bar models.MPriceBar) []models.MInterval {
	started := time.Now()
	metrics.BarsReceived.Inc()

	var accepted []models.MInterval
	m.mu.Lock()
	for _, iv := range models.AllIntervals {
		bucket := m.buckets[iv]
		if last, ok := bucket.Last(); ok && !analysis.Admits(last.Bar, bar, iv) {
			continue
		}
		bucket.Append(analysis.Enrich(bucket.GetAll(), bar))
		accepted = append(accepted, iv)
		metrics.BarsAccepted.WithLabelValues(string(iv)).Inc()
	}

	m.stats.BarsReceived++
	if len(accepted) > 0 {
		m.stats.BarsAccepted++
		m.stats.LastBarTimestamp = bar.Timestamp.Unix()
	}
	m.stats.ProcessingTimeSeconds = time.Since(started).Seconds()
	m.mu.Unlock()

	if len(accepted) == 0 {
		m.Logger.Debug("Bar at %s not accepted by any bucket", bar.Timestamp)
		return nil
	}

	if m.Archive != nil {
		if err := m.Archive.SaveBarsBulk([]models.MPriceBar{bar}); err != nil {
			m.Logger.Warning("Archiving bar failed: %v", err)
		}
	}
	m.Logger.Info("Received bar %s close=%.2f (accepted by %v)", bar.Timestamp.Format(time.RFC3339), bar.Close, accepted)
	m.publish()
	return accepted
}

// -----------------------------------------------------------------------------

// Snapshot returns the latest records of every interval, oldest first.
func (m *SourceManager) Snapshot() models.MIntervalBatch {
	m.mu.RLock()
	defer m.mu.RUnlock()

	batch := make(models.MIntervalBatch, len(m.buckets))
	for iv, bucket := range m.buckets {
		points := bucket.GetAll()
		records := make([]models.MRecord, 0, len(points))
		for _, p := range points {
			records = append(records, p.Record())
		}
		batch[iv] = records
	}
	return batch
}

// -----------------------------------------------------------------------------

// ProcessingMetrics returns a copy of the ingestion counters.
func (m *SourceManager) ProcessingMetrics() models.MProcessingMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stats
}

// -----------------------------------------------------------------------------

func (m *SourceManager) publish() {
	if m.Exchange == nil {
		return
	}
	snapshot := m.Snapshot()
	m.Exchange.UpdateSnapshot(PricesTopic, snapshot)
	m.Exchange.Broadcast(PricesTopic, snapshot)
}
