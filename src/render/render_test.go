package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"trading-dashboard/src/logger"
	"trading-dashboard/src/models"
	"trading-dashboard/src/series"

	"github.com/wcharczuk/go-chart/v2"
)

func quiet() *logger.Logger { return logger.NewLoggerTo(io.Discard, "ERROR", "render-test") }

func f(v float64) *float64 { return &v }

func priceSeries() *models.MChartSeries {
	return &models.MChartSeries{
		Chart:    "price",
		Interval: models.IntervalFifteen,
		Labels:   []string{"15:45", "9:30", "9:45"},
		Values: map[string][]*float64{
			"close":                   {f(100), f(101), f(103)},
			"fivePeriodMovingAverage": {f(100), nil, f(101)},
			"tenPeriodMovingAverage":  {f(100), f(100.5), f(101)},
			"sixPeriodRsi":            {f(50), f(60), f(70)},
		},
		Flags: map[string][]bool{
			"buySignal":  {false, false, true},
			"sellSignal": {false, false, false},
		},
		Boundaries: []models.MBoundaryMarker{{Index: 1, Date: models.DateOf(time.Date(2025, 9, 2, 0, 0, 0, 0, time.UTC))}},
	}
}

func emptySeries() *models.MChartSeries {
	return &models.MChartSeries{Chart: "portfolio", Labels: []string{}, Values: map[string][]*float64{"equity": {}}, Boundaries: []models.MBoundaryMarker{}}
}

func TestBuildConfig(t *testing.T) {
	spec := series.PriceChartSpec()
	cfg := BuildConfig("price-chart", spec, priceSeries())

	if cfg.Type != "line" || cfg.Target != "price-chart" || len(cfg.Labels) != 3 {
		t.Fatalf("config = %+v", cfg)
	}
	if len(cfg.Datasets) != len(spec.Series) {
		t.Errorf("datasets = %d, want %d", len(cfg.Datasets), len(spec.Series))
	}
	if cfg.Datasets[1].Data[1] != nil {
		t.Error("gap was filled")
	}
	if _, ok := cfg.Scales["y1"]; !ok {
		t.Error("secondary RSI axis missing")
	}
	top := 103.0
	want := top * 1.005
	if sm := cfg.Scales["y"].SuggestedMax; sm == nil || *sm != want {
		t.Errorf("suggested max = %v, want %v", sm, want)
	}
	// buy point + label, separator + date label
	if len(cfg.Annotations) != 4 {
		t.Errorf("annotations = %d, want 4", len(cfg.Annotations))
	}
}

func TestBuildConfigEmptySeries(t *testing.T) {
	cfg := BuildConfig("portfolio-chart", series.PortfolioChartSpec(), emptySeries())

	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatal(err)
	}
	var back map[string]interface{}
	json.Unmarshal(data, &back)
	if labels, ok := back["labels"].([]interface{}); !ok || len(labels) != 0 {
		t.Errorf("labels = %v, want []", back["labels"])
	}
	if cfg.Scales["y"].SuggestedMax != nil {
		t.Error("suggested max set for an empty series")
	}
}

func TestChartJSFactoryWritesAndReleases(t *testing.T) {
	dir := t.TempDir()
	chart, err := NewChartJSFactory(dir, quiet()).Build("price-chart", series.PriceChartSpec(), priceSeries())
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(dir, "price-chart.json")
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var cfg models.MChartConfig
	if err := json.Unmarshal(raw, &cfg); err != nil || len(cfg.Labels) != 3 {
		t.Errorf("written config = %+v, %v", cfg, err)
	}

	if err := chart.Release(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("file still present after release: %v", err)
	}
	if err := chart.Release(); err != nil {
		t.Errorf("second release: %v", err)
	}
}

func TestPNGFactory(t *testing.T) {
	dir := t.TempDir()
	factory := NewPNGFactory(dir, 640, 320, quiet())
	pngMagic := []byte("\x89PNG\r\n\x1a\n")

	for name, tc := range map[string]struct {
		spec models.MChartSpec
		s    *models.MChartSeries
	}{
		"price":     {series.PriceChartSpec(), priceSeries()},
		"portfolio": {series.PortfolioChartSpec(), emptySeries()},
	} {
		chart, err := factory.Build(name, tc.spec, tc.s)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		raw, err := os.ReadFile(filepath.Join(dir, name+".png"))
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.HasPrefix(raw, pngMagic) {
			t.Errorf("%s: not a PNG", name)
		}
		chart.Release()
	}
}

func TestPNGGraphCaptionsDayBoundaries(t *testing.T) {
	factory := NewPNGFactory(t.TempDir(), 640, 320, quiet())
	graph, ok := factory.graph(series.PriceChartSpec(), priceSeries())
	if !ok {
		t.Fatal("nothing plotted")
	}

	captions := map[string]chart.Value2{}
	for _, s := range graph.Series {
		if as, isAnnotation := s.(chart.AnnotationSeries); isAnnotation {
			for _, a := range as.Annotations {
				captions[a.Label] = a
			}
		}
	}
	if _, ok := captions["Buy"]; !ok {
		t.Errorf("buy caption missing: %v", captions)
	}
	date, ok := captions["Sep 2"]
	if !ok {
		t.Fatalf("date caption missing: %v", captions)
	}
	top := 103.0
	wantX, wantY := series.DateLabelAt(models.MBoundaryMarker{Index: 1}, top)
	if date.XValue != wantX || date.YValue != wantY {
		t.Errorf("date caption at (%v, %v), want (%v, %v)", date.XValue, date.YValue, wantX, wantY)
	}
}

func TestPNGGraphRangeCoversAverages(t *testing.T) {
	s := priceSeries()
	s.Values["tenPeriodMovingAverage"] = []*float64{f(95), f(96), f(110)}

	factory := NewPNGFactory(t.TempDir(), 640, 320, quiet())
	graph, ok := factory.graph(series.PriceChartSpec(), s)
	if !ok {
		t.Fatal("nothing plotted")
	}
	r := graph.YAxis.Range
	if r.GetMin() > 95 || r.GetMax() < 110 {
		t.Errorf("y range [%v, %v] clips the moving average [95, 110]", r.GetMin(), r.GetMax())
	}
}

func TestSegmentsSplitAtGaps(t *testing.T) {
	segs := Segments([]*float64{f(1), f(2), nil, f(4), nil, nil})
	if len(segs) != 2 {
		t.Fatalf("segments = %d, want 2", len(segs))
	}
	if len(segs[0].X) != 2 || segs[0].X[1] != 1 {
		t.Errorf("first segment = %+v", segs[0])
	}
	if segs[1].X[0] != 3 || len(segs[1].X) != 2 {
		t.Errorf("single point not widened: %+v", segs[1])
	}
	if len(Segments(nil)) != 0 {
		t.Error("Segments(nil) not empty")
	}
}

func TestNewFactorySelection(t *testing.T) {
	cfg := models.MDashboardConfig{OutputDir: t.TempDir(), ChartWidth: 320, ChartHeight: 200}

	for renderer, want := range map[string]string{"json": "*render.ChartJSFactory", "png": "*render.PNGFactory", "both": "render.MultiFactory"} {
		cfg.Renderer = renderer
		f, err := NewFactory(cfg, quiet())
		if err != nil {
			t.Fatal(err)
		}
		if got := typeName(f); got != want {
			t.Errorf("%s: factory = %s, want %s", renderer, got, want)
		}
	}

	cfg.Renderer = "svg"
	if _, err := NewFactory(cfg, quiet()); err == nil {
		t.Error("unknown renderer accepted")
	}
}

func TestMultiFactoryWritesBoth(t *testing.T) {
	dir := t.TempDir()
	f, _ := NewFactory(models.MDashboardConfig{OutputDir: dir, Renderer: "both", ChartWidth: 320, ChartHeight: 200}, quiet())
	chart, err := f.Build("price-chart", series.PriceChartSpec(), priceSeries())
	if err != nil {
		t.Fatal(err)
	}
	for _, ext := range []string{".json", ".png"} {
		if _, err := os.Stat(filepath.Join(dir, "price-chart"+ext)); err != nil {
			t.Errorf("%s missing: %v", ext, err)
		}
	}
	if err := chart.Release(); err != nil {
		t.Fatal(err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("%d files left after release", len(entries))
	}
}

func typeName(v interface{}) string {
	return fmt.Sprintf("%T", v)
}
