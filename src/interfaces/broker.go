package interfaces

import (
	"context"

	"trading-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// IBroker exposes the read-only account data served to the dashboard.
// -----------------------------------------------------------------------------

type IBroker interface {
	Account(ctx context.Context) (models.MAccountInfo, error)
	Positions(ctx context.Context) ([]models.MPosition, error)

	// PortfolioHistory returns the equity history sampled for the interval.
	PortfolioHistory(ctx context.Context, interval models.MInterval) ([]models.MEquityPoint, error)
}
