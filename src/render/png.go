package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"path/filepath"

	"trading-dashboard/src/interfaces"
	"trading-dashboard/src/logger"
	"trading-dashboard/src/models"
	"trading-dashboard/src/series"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var (
	backgroundColor = drawing.ColorFromHex("1e1e1e")
	separatorStroke = drawing.Color{R: 255, G: 255, B: 255, A: 128}
	buyStroke       = drawing.Color{R: 40, G: 255, B: 40, A: 255}
	sellStroke      = drawing.Color{R: 255, G: 40, B: 40, A: 255}
)

// PNGFactory renders each chart to <OutputDir>/<target>.png with go-chart.
type PNGFactory struct {
	OutputDir string
	Width     int
	Height    int
	Logger    *logger.Logger
}

func NewPNGFactory(outputDir string, width, height int, log *logger.Logger) *PNGFactory {
	return &PNGFactory{OutputDir: outputDir, Width: width, Height: height, Logger: log}
}

// -----------------------------------------------------------------------------

func (f *PNGFactory) Build(target string, spec models.MChartSpec, s *models.MChartSeries) (interfaces.IChart, error) {
	var buf bytes.Buffer

	graph, ok := f.graph(spec, s)
	if ok {
		if err := graph.Render(chart.PNG, &buf); err != nil {
			return nil, fmt.Errorf("render %s chart: %w", spec.Name, err)
		}
	} else if err := f.blank(&buf); err != nil {
		return nil, err
	}

	path := filepath.Join(f.OutputDir, target+".png")
	if err := writeAtomic(path, buf.Bytes()); err != nil {
		return nil, fmt.Errorf("write %s: %w", path, err)
	}
	f.Logger.Debug("Wrote %s (%d points)", path, s.Len())
	return &fileChart{path: path}, nil
}

// -----------------------------------------------------------------------------

// graph builds the go-chart description. ok is false when there is nothing
// to plot, since go-chart refuses an empty value range.
func (f *PNGFactory) graph(spec models.MChartSpec, s *models.MChartSeries) (chart.Chart, bool) {
	var plotted []chart.Series
	secondary := false

	for _, ss := range spec.Series {
		axis := chart.YAxisPrimary
		if ss.Axis == "y1" {
			axis = chart.YAxisSecondary
		}
		for i, seg := range Segments(s.Values[ss.Field]) {
			name := ss.Label
			if i > 0 {
				name = "" // one legend entry per line
			}
			plotted = append(plotted, chart.ContinuousSeries{
				Name:    name,
				YAxis:   axis,
				XValues: seg.X,
				YValues: seg.Y,
				Style: chart.Style{
					StrokeColor: drawing.ColorFromHex(ss.Color),
					StrokeWidth: 2,
				},
			})
			if axis == chart.YAxisSecondary {
				secondary = true
			}
		}
	}
	if len(plotted) == 0 {
		return chart.Chart{}, false
	}

	// The primary axis spans every line drawn on it, not only the value field.
	minValue, top := primaryBounds(s, spec)
	if sm := series.SuggestedMax(s, spec); sm != nil && *sm > top {
		top = *sm
	}

	for _, b := range s.Boundaries {
		x := float64(b.Index)
		plotted = append(plotted, chart.ContinuousSeries{
			XValues: []float64{x, x},
			YValues: []float64{minValue, top},
			Style: chart.Style{
				StrokeColor:     separatorStroke,
				StrokeWidth:     1,
				StrokeDashArray: []float64{5, 5},
			},
		})
	}

	if marks := append(signalMarks(s, spec), dateMarks(s, spec)...); len(marks) > 0 {
		plotted = append(plotted, chart.AnnotationSeries{Annotations: marks})
	}

	graph := chart.Chart{
		Width:  f.Width,
		Height: f.Height,
		Background: chart.Style{
			FillColor: backgroundColor,
			Padding:   chart.Box{Top: 24, Left: 16, Right: 16, Bottom: 16},
		},
		Canvas: chart.Style{FillColor: backgroundColor},
		XAxis: chart.XAxis{
			Ticks: ticks(s),
			Style: chart.Style{FontColor: drawing.ColorWhite, StrokeColor: drawing.ColorWhite},
		},
		YAxis: chart.YAxis{
			Name:  spec.YAxisTitle,
			Style: chart.Style{FontColor: drawing.ColorWhite, StrokeColor: drawing.ColorWhite},
			Range: &chart.ContinuousRange{Min: minValue, Max: top},
		},
		Series: plotted,
	}
	if minValue == top {
		graph.YAxis.Range = &chart.ContinuousRange{Min: minValue - 1, Max: top + 1}
	}
	if secondary {
		graph.YAxisSecondary = chart.YAxis{
			Name:  "RSI",
			Style: chart.Style{FontColor: drawing.ColorWhite, StrokeColor: drawing.ColorWhite},
			Range: &chart.ContinuousRange{Min: 0, Max: 100},
		}
	}
	graph.Elements = []chart.Renderable{chart.LegendThin(&graph)}
	return graph, true
}

// -----------------------------------------------------------------------------

// blank writes an empty canvas for a series with no values.
func (f *PNGFactory) blank(buf *bytes.Buffer) error {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	bg := color.RGBA{R: backgroundColor.R, G: backgroundColor.G, B: backgroundColor.B, A: 255}
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			img.SetRGBA(x, y, bg)
		}
	}
	return png.Encode(buf, img)
}

// -----------------------------------------------------------------------------

// Segment is a gap-free run of a line.
type Segment struct {
	X []float64
	Y []float64
}

// Segments splits values at gaps. Single points are kept so isolated samples
// still show up as a dot.
func Segments(values []*float64) []Segment {
	var out []Segment
	var cur Segment
	for i, v := range values {
		if v == nil {
			if len(cur.X) > 0 {
				out = append(out, cur)
				cur = Segment{}
			}
			continue
		}
		cur.X = append(cur.X, float64(i))
		cur.Y = append(cur.Y, *v)
	}
	if len(cur.X) > 0 {
		out = append(out, cur)
	}
	for i, seg := range out {
		if len(seg.X) == 1 {
			// go-chart needs two points to draw a line.
			out[i] = Segment{X: []float64{seg.X[0], seg.X[0]}, Y: []float64{seg.Y[0], seg.Y[0]}}
		}
	}
	return out
}

// -----------------------------------------------------------------------------

func ticks(s *models.MChartSeries) []chart.Tick {
	n := len(s.Labels)
	if n == 0 {
		return nil
	}
	step := 1
	if n > 12 {
		step = n / 12
	}
	var out []chart.Tick
	for i := 0; i < n; i += step {
		out = append(out, chart.Tick{Value: float64(i), Label: s.Labels[i]})
	}
	return out
}

func signalMarks(s *models.MChartSeries, spec models.MChartSpec) []chart.Value2 {
	values := s.Values[spec.ValueField]
	var marks []chart.Value2
	add := func(flags []bool, caption string, stroke drawing.Color) {
		for i, on := range flags {
			if !on || i >= len(values) || values[i] == nil {
				continue
			}
			marks = append(marks, chart.Value2{
				XValue: float64(i),
				YValue: *values[i],
				Label:  caption,
				Style:  chart.Style{StrokeColor: stroke, FontColor: stroke},
			})
		}
	}
	add(s.Flags["buySignal"], "Buy", buyStroke)
	add(s.Flags["sellSignal"], "Sell", sellStroke)
	return marks
}

// dateMarks captions every day separator with its short date.
func dateMarks(s *models.MChartSeries, spec models.MChartSpec) []chart.Value2 {
	max, ok := series.MaxValue(s, spec)
	if !ok {
		return nil
	}
	marks := make([]chart.Value2, 0, len(s.Boundaries))
	for _, b := range s.Boundaries {
		x, y := series.DateLabelAt(b, max)
		marks = append(marks, chart.Value2{
			XValue: x,
			YValue: y,
			Label:  b.Date.ShortLabel(),
			Style:  chart.Style{StrokeColor: separatorStroke, FontColor: drawing.ColorWhite},
		})
	}
	return marks
}

// primaryBounds is the lowest and highest value over the series on the
// primary axis, both 0 when there is none.
func primaryBounds(s *models.MChartSeries, spec models.MChartSpec) (min, max float64) {
	seen := false
	for _, ss := range spec.Series {
		if ss.Axis == "y1" {
			continue
		}
		for _, v := range s.Values[ss.Field] {
			if v == nil {
				continue
			}
			if !seen || *v < min {
				min = *v
			}
			if !seen || *v > max {
				max = *v
			}
			seen = true
		}
	}
	return min, max
}
