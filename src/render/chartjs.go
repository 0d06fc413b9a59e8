package render

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"trading-dashboard/src/interfaces"
	"trading-dashboard/src/logger"
	"trading-dashboard/src/models"
	"trading-dashboard/src/series"
)

// ChartJSFactory writes each chart as a Chart.js line configuration with
// annotation-plugin overlays to <OutputDir>/<target>.json.
type ChartJSFactory struct {
	OutputDir string
	Logger    *logger.Logger
}

func NewChartJSFactory(outputDir string, log *logger.Logger) *ChartJSFactory {
	return &ChartJSFactory{OutputDir: outputDir, Logger: log}
}

// -----------------------------------------------------------------------------

func (f *ChartJSFactory) Build(target string, spec models.MChartSpec, s *models.MChartSeries) (interfaces.IChart, error) {
	cfg := BuildConfig(target, spec, s)
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode %s chart: %w", spec.Name, err)
	}

	path := filepath.Join(f.OutputDir, target+".json")
	if err := writeAtomic(path, data); err != nil {
		return nil, fmt.Errorf("write %s: %w", path, err)
	}
	f.Logger.Debug("Wrote %s (%d points)", path, s.Len())
	return &fileChart{path: path}, nil
}

// -----------------------------------------------------------------------------

// BuildConfig assembles the Chart.js configuration for one series.
func BuildConfig(target string, spec models.MChartSpec, s *models.MChartSeries) models.MChartConfig {
	labels := s.Labels
	if labels == nil {
		labels = []string{}
	}

	datasets := make([]models.MDataset, 0, len(spec.Series))
	secondary := false
	for _, ss := range spec.Series {
		data := s.Values[ss.Field]
		if data == nil {
			data = make([]*float64, len(labels))
		}
		if ss.Axis == "y1" {
			secondary = true
		}
		datasets = append(datasets, models.MDataset{
			Label:           ss.Label,
			Data:            data,
			BorderColor:     "#" + ss.Color,
			BackgroundColor: "#" + ss.Color,
			Fill:            false,
			Tension:         0.1,
			YAxisID:         ss.Axis,
			SpanGaps:        false,
		})
	}

	scales := map[string]models.MAxis{
		"y": {
			Title:        spec.YAxisTitle,
			Position:     "left",
			SuggestedMax: series.SuggestedMax(s, spec),
		},
	}
	if secondary {
		scales["y1"] = models.MAxis{Title: "RSI", Position: "right", SuggestedMax: models.Float(100), BeginAtZero: true}
	}

	return models.MChartConfig{
		Type:        "line",
		Target:      target,
		Labels:      labels,
		Datasets:    datasets,
		Scales:      scales,
		Annotations: series.Annotate(s, spec),
	}
}
