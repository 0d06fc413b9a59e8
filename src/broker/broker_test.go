package broker

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"trading-dashboard/src/helpers"
	"trading-dashboard/src/logger"
	"trading-dashboard/src/models"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/shopspring/decimal"
)

type fakeAPI struct {
	account   *alpaca.Account
	positions []alpaca.Position
	history   *alpaca.PortfolioHistory
	err       error
	requests  []alpaca.GetPortfolioHistoryRequest
}

func (f *fakeAPI) GetAccount() (*alpaca.Account, error)      { return f.account, f.err }
func (f *fakeAPI) GetPositions() ([]alpaca.Position, error) { return f.positions, f.err }
func (f *fakeAPI) GetPortfolioHistory(req alpaca.GetPortfolioHistoryRequest) (*alpaca.PortfolioHistory, error) {
	f.requests = append(f.requests, req)
	return f.history, f.err
}

func quiet() *logger.Logger { return logger.NewLoggerTo(io.Discard, "ERROR", "broker-test") }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestAlpacaAccount(t *testing.T) {
	api := &fakeAPI{account: &alpaca.Account{
		PortfolioValue:   dec("10500.25"),
		Cash:             dec("2500"),
		BuyingPower:      dec("5000.5"),
		LongMarketValue:  dec("8000.25"),
		ShortMarketValue: dec("0"),
	}}

	acct, err := newAlpacaBroker(api, 1, quiet()).Account(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := models.MAccountInfo{PortfolioValue: 10500.25, Cash: 2500, BuyingPower: 5000.5, LongMarketValue: 8000.25}
	if acct != want {
		t.Errorf("account = %+v, want %+v", acct, want)
	}
}

func TestAlpacaPositions(t *testing.T) {
	api := &fakeAPI{positions: []alpaca.Position{
		{Symbol: "TSLA", Qty: dec("3"), MarketValue: decPtr("750"), CostBasis: dec("700"), UnrealizedPL: decPtr("50")},
		{Symbol: "AAPL", Qty: dec("1"), CostBasis: dec("190")},
	}}

	got, err := newAlpacaBroker(api, 1, quiet()).Positions(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d positions", len(got))
	}
	if got[0] != (models.MPosition{Symbol: "TSLA", Quantity: 3, MarketValue: 750, OriginalCost: 700, UnrealizedProfitLoss: 50}) {
		t.Errorf("TSLA = %+v", got[0])
	}
	if got[1].MarketValue != 0 || got[1].UnrealizedProfitLoss != 0 {
		t.Errorf("missing decimals should read as zero: %+v", got[1])
	}
}

func TestAlpacaPortfolioHistory(t *testing.T) {
	api := &fakeAPI{history: &alpaca.PortfolioHistory{
		Timestamp: []int64{100, 200, 300, 400},
		Equity:    []decimal.Decimal{dec("0"), dec("1000"), dec("0"), dec("1010.5")},
	}}

	points, err := newAlpacaBroker(api, 1, quiet()).PortfolioHistory(context.Background(), models.IntervalHour)
	if err != nil {
		t.Fatal(err)
	}
	want := []models.MEquityPoint{{Timestamp: 200, Equity: 1000}, {Timestamp: 300, Equity: 0}, {Timestamp: 400, Equity: 1010.5}}
	if len(points) != len(want) {
		t.Fatalf("points = %+v", points)
	}
	for i := range want {
		if points[i] != want[i] {
			t.Errorf("point %d = %+v, want %+v", i, points[i], want[i])
		}
	}
	if req := api.requests[0]; req.Period != "5D" || string(req.TimeFrame) != "1H" {
		t.Errorf("request = %+v", req)
	}
}

func TestAlpacaFailureIsBrokerError(t *testing.T) {
	api := &fakeAPI{err: errors.New("401 unauthorized")}
	_, err := newAlpacaBroker(api, 1, quiet()).Account(context.Background())
	var be *helpers.BrokerError
	if !errors.As(err, &be) {
		t.Fatalf("err = %v, want BrokerError", err)
	}
}

// -----------------------------------------------------------------------------

type countingBroker struct {
	mu    sync.Mutex
	calls map[string]int
	fail  bool
}

func (c *countingBroker) hit(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.calls == nil {
		c.calls = map[string]int{}
	}
	c.calls[name]++
}

func (c *countingBroker) Account(ctx context.Context) (models.MAccountInfo, error) {
	c.hit("account")
	if c.fail {
		return models.MAccountInfo{}, errors.New("down")
	}
	return models.MAccountInfo{Cash: 1}, nil
}

func (c *countingBroker) Positions(ctx context.Context) ([]models.MPosition, error) {
	c.hit("positions")
	return []models.MPosition{{Symbol: "TSLA"}}, nil
}

func (c *countingBroker) PortfolioHistory(ctx context.Context, iv models.MInterval) ([]models.MEquityPoint, error) {
	c.hit(string(iv))
	points := make([]models.MEquityPoint, 75)
	for i := range points {
		points[i] = models.MEquityPoint{Timestamp: int64(1756731600 + i*60), Equity: float64(i)}
	}
	return points, nil
}

func TestCachedBrokerServesFromCache(t *testing.T) {
	inner := &countingBroker{}
	c := NewCachedBroker(inner, time.Minute)

	for i := 0; i < 3; i++ {
		if _, err := c.Account(context.Background()); err != nil {
			t.Fatal(err)
		}
		if _, err := c.Positions(context.Background()); err != nil {
			t.Fatal(err)
		}
		if _, err := c.PortfolioHistory(context.Background(), models.IntervalOne); err != nil {
			t.Fatal(err)
		}
	}
	if inner.calls["account"] != 1 || inner.calls["positions"] != 1 || inner.calls["one"] != 1 {
		t.Errorf("calls = %v, want one each", inner.calls)
	}

	c.Invalidate()
	c.Account(context.Background())
	if inner.calls["account"] != 2 {
		t.Errorf("after Invalidate account calls = %d", inner.calls["account"])
	}
}

func TestCachedBrokerDoesNotCacheErrors(t *testing.T) {
	inner := &countingBroker{fail: true}
	c := NewCachedBroker(inner, time.Minute)
	c.Account(context.Background())
	c.Account(context.Background())
	if inner.calls["account"] != 2 {
		t.Errorf("account calls = %d, want 2", inner.calls["account"])
	}
}

func TestPortfolioBatch(t *testing.T) {
	batch, err := PortfolioBatch(context.Background(), &countingBroker{})
	if err != nil {
		t.Fatal(err)
	}
	for _, iv := range models.AllIntervals {
		records := batch[iv]
		if len(records) != HistoryLength {
			t.Fatalf("%s: %d records, want %d", iv, len(records), HistoryLength)
		}
		if *records[0].Equity != 15 || records[0].Close != nil {
			t.Errorf("%s: first record = %+v", iv, records[0])
		}
		if records[0].Timestamp != "2025-09-01T13:15:00Z" {
			t.Errorf("%s: timestamp = %s", iv, records[0].Timestamp)
		}
	}
}
