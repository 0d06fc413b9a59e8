package series

import "trading-dashboard/src/models"

// Preference keys under which each chart stores its interval selection.
const (
	PriceIntervalKey     = "priceInterval"
	PortfolioIntervalKey = "portfolioInterval"
)

// PriceChartSpec plots the close price with its moving averages on the left
// axis and the RSI on the right one, with buy/sell markers.
func PriceChartSpec() models.MChartSpec {
	return models.MChartSpec{
		Name:       "price",
		Kind:       models.SeriesKindPrice,
		ValueField: "close",
		Series: []models.MSeriesSpec{
			{Field: "close", Label: "Stock Price", Color: "4bc0c0", Axis: "y"},
			{Field: "fivePeriodMovingAverage", Label: "5 Period MA", Color: "ff9f40", Axis: "y"},
			{Field: "tenPeriodMovingAverage", Label: "10 Period MA", Color: "9966ff", Axis: "y"},
			{Field: "sixPeriodRsi", Label: "6 Period RSI", Color: "c9cbcf", Axis: "y1"},
		},
		Flags:         []string{"buySignal", "sellSignal"},
		YAxisTitle:    "Price (USD)",
		PreferenceKey: PriceIntervalKey,
		FetchPath:     "/data",
		StreamPath:    "/ws/prices",
	}
}

// PortfolioChartSpec plots the account equity.
func PortfolioChartSpec() models.MChartSpec {
	return models.MChartSpec{
		Name:       "portfolio",
		Kind:       models.SeriesKindEquity,
		ValueField: "equity",
		Series: []models.MSeriesSpec{
			{Field: "equity", Label: "Account Value", Color: "4bc0c0", Axis: "y"},
		},
		YAxisTitle:    "Price (USD)",
		PreferenceKey: PortfolioIntervalKey,
		FetchPath:     "/portfoliovalue",
		StreamPath:    "/ws/portfolio",
	}
}

// ChartSpecs lists every chart the dashboard draws.
func ChartSpecs() []models.MChartSpec {
	return []models.MChartSpec{PriceChartSpec(), PortfolioChartSpec()}
}

// ChartSpecByName looks a chart up by its name.
func ChartSpecByName(name string) (models.MChartSpec, bool) {
	for _, s := range ChartSpecs() {
		if s.Name == name {
			return s, true
		}
	}
	return models.MChartSpec{}, false
}
