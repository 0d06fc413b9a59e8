package interfaces

import "trading-dashboard/src/models"

// -----------------------------------------------------------------------------
// IChart is a live rendering on a drawing surface.
// -----------------------------------------------------------------------------

type IChart interface {
	// Release frees the surface so another chart can be built on it.
	Release() error
}

// -----------------------------------------------------------------------------
// IChartFactory builds charts from normalized series.
// -----------------------------------------------------------------------------

type IChartFactory interface {
	Build(target string, spec models.MChartSpec, series *models.MChartSeries) (IChart, error)
}
