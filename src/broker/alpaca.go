package broker

import (
	"context"
	"time"

	"trading-dashboard/src/helpers"
	"trading-dashboard/src/logger"
	"trading-dashboard/src/metrics"
	"trading-dashboard/src/models"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/shopspring/decimal"
)

// tradingAPI is the part of *alpaca.Client the dashboard reads.
type tradingAPI interface {
	GetAccount() (*alpaca.Account, error)
	GetPositions() ([]alpaca.Position, error)
	GetPortfolioHistory(req alpaca.GetPortfolioHistoryRequest) (*alpaca.PortfolioHistory, error)
}

// -----------------------------------------------------------------------------

// AlpacaBroker reads account state from the Alpaca trading API.
type AlpacaBroker struct {
	api        tradingAPI
	errHandler *helpers.ErrorHandler
	maxRetries int
	Logger     *logger.Logger
}

// -----------------------------------------------------------------------------

func NewAlpacaBroker(cfg models.MBrokerConfig, log *logger.Logger) *AlpacaBroker {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		if cfg.Paper {
			baseURL = "https://paper-api.alpaca.markets"
		} else {
			baseURL = "https://api.alpaca.markets"
		}
	}

	client := alpaca.NewClient(alpaca.ClientOpts{
		APIKey:    cfg.APIKey,
		APISecret: cfg.APISecret,
		BaseURL:   baseURL,
	})
	return newAlpacaBroker(client, cfg.MaxRetries, log)
}

func newAlpacaBroker(api tradingAPI, maxRetries int, log *logger.Logger) *AlpacaBroker {
	return &AlpacaBroker{
		api:        api,
		errHandler: helpers.NewErrorHandler(log),
		maxRetries: maxRetries,
		Logger:     log,
	}
}

// -----------------------------------------------------------------------------

func (b *AlpacaBroker) Account(ctx context.Context) (models.MAccountInfo, error) {
	defer observe("account", time.Now())

	acct, err := helpers.ExecuteWithRetry(b.errHandler, "broker account", b.maxRetries, b.api.GetAccount)
	if err != nil {
		return models.MAccountInfo{}, err
	}

	return models.MAccountInfo{
		PortfolioValue:   acct.PortfolioValue.InexactFloat64(),
		Cash:             acct.Cash.InexactFloat64(),
		BuyingPower:      acct.BuyingPower.InexactFloat64(),
		LongMarketValue:  acct.LongMarketValue.InexactFloat64(),
		ShortMarketValue: acct.ShortMarketValue.InexactFloat64(),
	}, nil
}

// -----------------------------------------------------------------------------

func (b *AlpacaBroker) Positions(ctx context.Context) ([]models.MPosition, error) {
	defer observe("positions", time.Now())

	positions, err := helpers.ExecuteWithRetry(b.errHandler, "broker positions", b.maxRetries, b.api.GetPositions)
	if err != nil {
		return nil, err
	}

	out := make([]models.MPosition, 0, len(positions))
	for _, p := range positions {
		out = append(out, models.MPosition{
			Symbol:               p.Symbol,
			Quantity:             p.Qty.InexactFloat64(),
			MarketValue:          optional(p.MarketValue),
			OriginalCost:         p.CostBasis.InexactFloat64(),
			UnrealizedProfitLoss: optional(p.UnrealizedPL),
		})
	}
	return out, nil
}

// -----------------------------------------------------------------------------

// PortfolioHistory returns the equity samples of the interval's window,
// skipping the leading samples the API reports before the account existed.
func (b *AlpacaBroker) PortfolioHistory(ctx context.Context, interval models.MInterval) ([]models.MEquityPoint, error) {
	defer observe("portfolio_history", time.Now())

	timeframe, period := interval.PortfolioWindow()
	history, err := helpers.ExecuteWithRetry(b.errHandler, "broker portfolio history", b.maxRetries, func() (*alpaca.PortfolioHistory, error) {
		return b.api.GetPortfolioHistory(alpaca.GetPortfolioHistoryRequest{
			Period:    period,
			TimeFrame: alpaca.TimeFrame(timeframe),
		})
	})
	if err != nil {
		return nil, err
	}

	n := len(history.Timestamp)
	if len(history.Equity) < n {
		n = len(history.Equity)
	}

	points := make([]models.MEquityPoint, 0, n)
	for i := 0; i < n; i++ {
		if history.Equity[i].IsZero() && len(points) == 0 {
			continue
		}
		points = append(points, models.MEquityPoint{
			Timestamp: history.Timestamp[i],
			Equity:    history.Equity[i].InexactFloat64(),
		})
	}
	return points, nil
}

// -----------------------------------------------------------------------------

func optional(d *decimal.Decimal) float64 {
	if d == nil {
		return 0
	}
	return d.InexactFloat64()
}

func observe(operation string, start time.Time) {
	metrics.BrokerLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
