package series

import (
	"math"

	"trading-dashboard/src/models"
)

const (
	buyColor       = "rgba(40, 255, 40, 1)"
	sellColor      = "rgba(255, 40, 40, 1)"
	separatorColor = "rgba(255,255,255,0.5)"
	dateLabelColor = "white"

	// Relative positions above the highest value.
	dateLabelHeadroom = 1.004
	axisHeadroom      = 1.005

	// Date labels sit slightly left of their separator.
	dateLabelShift = 0.175
)

// -----------------------------------------------------------------------------

// MaxValue returns the largest non-gap value of the chart's value field.
// ok is false when the series holds no value at all.
func MaxValue(s *models.MChartSeries, spec models.MChartSpec) (max float64, ok bool) {
	max = math.Inf(-1)
	for _, v := range s.Values[spec.ValueField] {
		if v != nil && *v > max {
			max = *v
			ok = true
		}
	}
	if !ok {
		return 0, false
	}
	return max, true
}

// SuggestedMax is the y-axis upper hint, nil for an empty series.
func SuggestedMax(s *models.MChartSeries, spec models.MChartSpec) *float64 {
	max, ok := MaxValue(s, spec)
	if !ok {
		return nil
	}
	return models.Float(max * axisHeadroom)
}

// DateLabelAt is where the date caption of boundary b goes, given the
// chart's highest value.
func DateLabelAt(b models.MBoundaryMarker, max float64) (x, y float64) {
	return float64(b.Index) - dateLabelShift, max * dateLabelHeadroom
}

// -----------------------------------------------------------------------------

// Annotate derives the overlays drawn on top of the series: a point and a
// caption for every buy or sell signal, and a dashed separator with a short
// date caption at every day boundary.
func Annotate(s *models.MChartSeries, spec models.MChartSpec) []models.MAnnotation {
	annotations := []models.MAnnotation{}

	values := s.Values[spec.ValueField]
	annotations = append(annotations, signalAnnotations(s.Flags["buySignal"], values, "Buy", buyColor)...)
	annotations = append(annotations, signalAnnotations(s.Flags["sellSignal"], values, "Sell", sellColor)...)

	max, hasMax := MaxValue(s, spec)
	for _, b := range s.Boundaries {
		x := float64(b.Index)
		annotations = append(annotations, models.MAnnotation{
			Type:        models.AnnotationLine,
			XMin:        models.Float(x),
			XMax:        models.Float(x),
			BorderColor: separatorColor,
			BorderWidth: 1,
			BorderDash:  []int{5, 5},
		})
		if !hasMax {
			continue
		}
		lx, ly := DateLabelAt(b, max)
		annotations = append(annotations, models.MAnnotation{
			Type:     models.AnnotationLabel,
			Content:  b.Date.ShortLabel(),
			Color:    dateLabelColor,
			XValue:   models.Float(lx),
			YValue:   models.Float(ly),
			FontSize: 14,
		})
	}

	return annotations
}

// -----------------------------------------------------------------------------

func signalAnnotations(flags []bool, values []*float64, caption, color string) []models.MAnnotation {
	var out []models.MAnnotation
	for i, set := range flags {
		if !set || i >= len(values) || values[i] == nil {
			continue
		}
		x := float64(i)
		y := *values[i]
		out = append(out,
			models.MAnnotation{
				Type:            models.AnnotationPoint,
				XValue:          models.Float(x),
				YValue:          models.Float(y),
				Radius:          5,
				BackgroundColor: color,
			},
			models.MAnnotation{
				Type:            models.AnnotationLabel,
				Content:         caption,
				BackgroundColor: color,
				XValue:          models.Float(x),
				YValue:          models.Float(y),
				YAdjust:         -25,
				FontSize:        13,
			},
		)
	}
	return out
}
