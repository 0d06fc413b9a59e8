package models

// MAccountInfo is the account summary served by /account.
type MAccountInfo struct {
	PortfolioValue   float64 `json:"portfolio_value"`
	Cash             float64 `json:"cash"`
	BuyingPower      float64 `json:"buying_power"`
	LongMarketValue  float64 `json:"long_market_value"`
	ShortMarketValue float64 `json:"short_market_value"`
}

// MPosition is one open position served by /positions.
type MPosition struct {
	Symbol               string  `json:"symbol"`
	Quantity             float64 `json:"quantity"`
	MarketValue          float64 `json:"market_value"`
	OriginalCost         float64 `json:"original_cost"`
	UnrealizedProfitLoss float64 `json:"unrealized_profit_loss"`
}

// MSettings is served by /settings.
type MSettings struct {
	Model        string `json:"model"`
	DisabledGrok bool   `json:"disabled_grok"`
	Interval     int    `json:"interval"`
	Paper        bool   `json:"paper"`
}

// MEquityPoint is one sample of the account's equity history.
type MEquityPoint struct {
	Timestamp int64
	Equity    float64
}
