package alpacadata

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"trading-dashboard/src/helpers"
	"trading-dashboard/src/logger"
	"trading-dashboard/src/models"
	"trading-dashboard/src/utils"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata/stream"
)

// barsAPI is the part of *marketdata.Client used for history.
type barsAPI interface {
	GetBars(symbol string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error)
}

// barStream is the part of *stream.StocksClient the run loop drives.
type barStream interface {
	Connect(ctx context.Context) error
	Terminated() <-chan error
}

type streamFactory func(handler func(stream.Bar)) barStream

// -----------------------------------------------------------------------------

// AlpacaSource downloads historical bars over REST and streams live minute
// bars over the Alpaca market data websocket while the market is open.
type AlpacaSource struct {
	Config          models.MBrokerConfig
	Logger          *logger.Logger
	MarketScheduler *utils.MarketScheduler

	bars       barsAPI
	newStream  streamFactory
	errHandler *helpers.ErrorHandler
	reconnect  time.Duration

	cancelFunc context.CancelFunc
	isRunning  atomic.Bool
	mu         sync.Mutex
}

// -----------------------------------------------------------------------------

func NewAlpacaSource(cfg models.MBrokerConfig, scheduler *utils.MarketScheduler, log *logger.Logger) *AlpacaSource {
	client := marketdata.NewClient(marketdata.ClientOpts{
		APIKey:    cfg.APIKey,
		APISecret: cfg.APISecret,
		BaseURL:   cfg.DataURL,
	})

	factory := func(handler func(stream.Bar)) barStream {
		return stream.NewStocksClient(
			marketdata.Feed(cfg.Feed),
			stream.WithCredentials(cfg.APIKey, cfg.APISecret),
			stream.WithBars(handler, cfg.Symbol),
		)
	}

	return newAlpacaSource(cfg, client, factory, scheduler, log)
}

func newAlpacaSource(cfg models.MBrokerConfig, bars barsAPI, factory streamFactory, scheduler *utils.MarketScheduler, log *logger.Logger) *AlpacaSource {
	return &AlpacaSource{
		Config:          cfg,
		Logger:          log,
		MarketScheduler: scheduler,
		bars:            bars,
		newStream:       factory,
		errHandler:      helpers.NewErrorHandler(log),
		reconnect:       5 * time.Second,
	}
}

// -----------------------------------------------------------------------------

func (s *AlpacaSource) Name() string {
	return "alpaca-" + s.Config.Feed
}

// -----------------------------------------------------------------------------

// TimeFrame maps an interval onto the bar timeframe requested from Alpaca.
func TimeFrame(interval models.MInterval) marketdata.TimeFrame {
	switch interval {
	case models.IntervalOne:
		return marketdata.OneMin
	case models.IntervalHour:
		return marketdata.OneHour
	case models.IntervalDay:
		return marketdata.OneDay
	default:
		return marketdata.NewTimeFrame(15, marketdata.Min)
	}
}

// -----------------------------------------------------------------------------

func (s *AlpacaSource) FetchHistory(ctx context.Context, symbol string, interval models.MInterval, start, end time.Time) ([]models.MPriceBar, error) {
	req := marketdata.GetBarsRequest{
		TimeFrame: TimeFrame(interval),
		Start:     start,
		End:       end,
		Feed:      marketdata.Feed(s.Config.Feed),
	}

	op := fmt.Sprintf("fetch %s bars (%s)", symbol, interval)
	raw, err := helpers.ExecuteWithRetry(s.errHandler, op, s.Config.MaxRetries, func() ([]marketdata.Bar, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return s.bars.GetBars(symbol, req)
	})
	if err != nil {
		return nil, err
	}

	out := make([]models.MPriceBar, 0, len(raw))
	for _, b := range raw {
		out = append(out, models.MPriceBar{
			Symbol:     symbol,
			Timestamp:  b.Timestamp.UTC(),
			Open:       b.Open,
			High:       b.High,
			Low:        b.Low,
			Close:      b.Close,
			Volume:     float64(b.Volume),
			TradeCount: float64(b.TradeCount),
		})
	}
	s.Logger.Debug("Fetched %d %s bars for %s", len(out), interval, symbol)
	return out, nil
}

// -----------------------------------------------------------------------------

// Start begins streaming minute bars into outputChan. wg is released when
// the run loop exits.
func (s *AlpacaSource) Start(parentCtx context.Context, outputChan chan<- models.MPriceBar, wg *sync.WaitGroup) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning.Load() {
		return fmt.Errorf("source %s is already running", s.Name())
	}

	ctx, cancel := context.WithCancel(parentCtx)
	s.cancelFunc = cancel
	s.isRunning.Store(true)

	wg.Add(1)
	go s.runLoop(ctx, outputChan, wg)
	s.Logger.Info("Started AlpacaSource: %s", s.Name())
	return nil
}

// -----------------------------------------------------------------------------

// Stop signals the run loop to exit.
func (s *AlpacaSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning.Load() {
		return nil
	}
	if s.cancelFunc != nil {
		s.cancelFunc()
	}
	s.isRunning.Store(false)
	s.Logger.Info("Stopped AlpacaSource: %s", s.Name())
	return nil
}

// -----------------------------------------------------------------------------

func (s *AlpacaSource) runLoop(ctx context.Context, outputChan chan<- models.MPriceBar, wg *sync.WaitGroup) {
	defer wg.Done()
	defer s.isRunning.Store(false)

	for {
		if !s.MarketScheduler.WaitForOpen(ctx, utils.ClosedMarketPause) {
			return
		}

		err := s.streamSession(ctx, outputChan)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			s.Logger.Warning("Bar stream ended: %v. Reconnecting in %s", err, s.reconnect)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.reconnect):
		}
	}
}

// -----------------------------------------------------------------------------

// streamSession holds one websocket session open until it terminates, ctx
// ends, or the market closes.
func (s *AlpacaSource) streamSession(ctx context.Context, outputChan chan<- models.MPriceBar) error {
	sessionCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	client := s.newStream(func(b stream.Bar) {
		bar := models.MPriceBar{
			Symbol:     b.Symbol,
			Timestamp:  b.Timestamp.UTC(),
			Open:       b.Open,
			High:       b.High,
			Low:        b.Low,
			Close:      b.Close,
			Volume:     float64(b.Volume),
			TradeCount: float64(b.TradeCount),
		}
		select {
		case outputChan <- bar:
		case <-sessionCtx.Done():
		}
	})

	if err := client.Connect(sessionCtx); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	s.Logger.Info("Bar stream connected for %s", s.Config.Symbol)

	check := time.NewTicker(utils.ClosedMarketPause)
	defer check.Stop()

	for {
		select {
		case <-ctx.Done():
			cancel()
			<-client.Terminated()
			return nil
		case err := <-client.Terminated():
			return err
		case <-check.C:
			if !s.MarketScheduler.MarketOpen() {
				s.Logger.Info("Market closed. Disconnecting bar stream.")
				cancel()
				<-client.Terminated()
				return nil
			}
		}
	}
}
