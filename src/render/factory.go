package render

import (
	"errors"
	"fmt"

	"trading-dashboard/src/interfaces"
	"trading-dashboard/src/logger"
	"trading-dashboard/src/models"
)

// NewFactory returns the chart factory selected by cfg.Renderer.
func NewFactory(cfg models.MDashboardConfig, log *logger.Logger) (interfaces.IChartFactory, error) {
	jsonFactory := NewChartJSFactory(cfg.OutputDir, log.Named("ChartJS"))
	pngFactory := NewPNGFactory(cfg.OutputDir, cfg.ChartWidth, cfg.ChartHeight, log.Named("PNG"))

	switch cfg.Renderer {
	case "json":
		return jsonFactory, nil
	case "png":
		return pngFactory, nil
	case "both", "":
		return MultiFactory{jsonFactory, pngFactory}, nil
	}
	return nil, fmt.Errorf("unknown renderer %q", cfg.Renderer)
}

// -----------------------------------------------------------------------------

// MultiFactory builds the same chart with several factories.
type MultiFactory []interfaces.IChartFactory

func (m MultiFactory) Build(target string, spec models.MChartSpec, s *models.MChartSeries) (interfaces.IChart, error) {
	charts := make(multiChart, 0, len(m))
	for _, f := range m {
		c, err := f.Build(target, spec, s)
		if err != nil {
			charts.Release()
			return nil, err
		}
		charts = append(charts, c)
	}
	return charts, nil
}

type multiChart []interfaces.IChart

func (m multiChart) Release() error {
	var errs []error
	for _, c := range m {
		if err := c.Release(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
