package series

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"trading-dashboard/src/helpers"
	"trading-dashboard/src/models"
)

var eastern = time.FixedZone("EDT", -4*60*60)

func normalize(t *testing.T, payload string, interval models.MInterval, spec models.MChartSpec) *models.MChartSeries {
	t.Helper()
	out, err := NewTransformer(eastern).Normalize([]byte(payload), interval, spec)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	return out
}

func floats(vs []*float64) []interface{} {
	out := make([]interface{}, len(vs))
	for i, v := range vs {
		if v == nil {
			out[i] = nil
			continue
		}
		out[i] = *v
	}
	return out
}

func TestNormalizeTwoDays(t *testing.T) {
	out := normalize(t, `[
		{"timestamp": "2025-09-01T09:00:00", "close": 100},
		{"timestamp": "2025-09-02T09:00:00", "close": 102}
	]`, models.IntervalFifteen, PriceChartSpec())

	if want := []string{"9:00", "9:00"}; !reflect.DeepEqual(out.Labels, want) {
		t.Errorf("labels = %v, want %v", out.Labels, want)
	}
	if want := []interface{}{100.0, 102.0}; !reflect.DeepEqual(floats(out.Values["close"]), want) {
		t.Errorf("close = %v, want %v", floats(out.Values["close"]), want)
	}
	want := []models.MBoundaryMarker{{Index: 1, Date: models.MCalendarDate{Year: 2025, Month: time.September, Day: 2}}}
	if !reflect.DeepEqual(out.Boundaries, want) {
		t.Errorf("boundaries = %v, want %v", out.Boundaries, want)
	}
}

func TestNormalizeEmpty(t *testing.T) {
	for _, payload := range []string{`[]`, `{}`, `{"hour": []}`, `null`} {
		out := normalize(t, payload, models.IntervalHour, PriceChartSpec())
		if out.Len() != 0 || len(out.Boundaries) != 0 {
			t.Errorf("%s: got %d labels and %d boundaries", payload, out.Len(), len(out.Boundaries))
		}
		for field, vs := range out.Values {
			if len(vs) != 0 {
				t.Errorf("%s: series %s has %d values", payload, field, len(vs))
			}
		}
	}
}

func TestNormalizeSingleDayHasNoBoundaries(t *testing.T) {
	out := normalize(t, `[
		{"timestamp": "2025-09-01T09:30:00", "equity": 1000},
		{"timestamp": "2025-09-01T12:45:00", "equity": 1010},
		{"timestamp": "2025-09-01T15:59:00", "equity": 1005}
	]`, models.IntervalOne, PortfolioChartSpec())

	if len(out.Boundaries) != 0 {
		t.Fatalf("boundaries = %v, want none", out.Boundaries)
	}
	if want := []string{"9:30", "12:45", "15:59"}; !reflect.DeepEqual(out.Labels, want) {
		t.Errorf("labels = %v, want %v", out.Labels, want)
	}
}

func TestNormalizeBoundaryPerDay(t *testing.T) {
	out := normalize(t, `[
		{"timestamp": "2025-09-01T15:00:00", "equity": 1},
		{"timestamp": "2025-09-01T15:30:00", "equity": 2},
		{"timestamp": "2025-09-02T09:30:00", "equity": 3},
		{"timestamp": "2025-09-03T09:30:00", "equity": 4},
		{"timestamp": "2025-09-03T10:00:00", "equity": 5},
		{"timestamp": "2025-09-05T09:30:00", "equity": 6}
	]`, models.IntervalFifteen, PortfolioChartSpec())

	gotIdx := make([]int, len(out.Boundaries))
	gotDates := make([]string, len(out.Boundaries))
	for i, b := range out.Boundaries {
		gotIdx[i] = b.Index
		gotDates[i] = b.Date.String()
	}
	if want := []int{2, 3, 5}; !reflect.DeepEqual(gotIdx, want) {
		t.Errorf("indexes = %v, want %v", gotIdx, want)
	}
	if want := []string{"2025-09-02", "2025-09-03", "2025-09-05"}; !reflect.DeepEqual(gotDates, want) {
		t.Errorf("dates = %v, want %v", gotDates, want)
	}
}

func TestNormalizeUsesLocalDay(t *testing.T) {
	// 02:30 UTC on the 2nd is still the evening of the 1st in EDT.
	out := normalize(t, `[
		{"timestamp": "2025-09-01T20:00:00Z", "equity": 1},
		{"timestamp": "2025-09-02T02:30:00Z", "equity": 2},
		{"timestamp": "2025-09-02T13:30:00Z", "equity": 3}
	]`, models.IntervalHour, PortfolioChartSpec())

	if want := []string{"16:00", "22:30", "9:30"}; !reflect.DeepEqual(out.Labels, want) {
		t.Errorf("labels = %v, want %v", out.Labels, want)
	}
	if len(out.Boundaries) != 1 || out.Boundaries[0].Index != 2 {
		t.Errorf("boundaries = %v, want one at index 2", out.Boundaries)
	}
}

func TestNormalizeLabelFormat(t *testing.T) {
	out := normalize(t, `[
		{"timestamp": "2025-09-01T09:05:00", "close": 1},
		{"timestamp": "2025-09-01T09:00:00", "close": 1},
		{"timestamp": "2025-09-01T00:00:00", "close": 1},
		{"timestamp": "2025-09-01T13:50:00", "close": 1}
	]`, models.IntervalOne, PriceChartSpec())

	if want := []string{"9:05", "9:00", "0:00", "13:50"}; !reflect.DeepEqual(out.Labels, want) {
		t.Errorf("labels = %v, want %v", out.Labels, want)
	}
}

func TestNormalizeDeterministic(t *testing.T) {
	payload := `[
		{"timestamp": "2025-09-01T09:05:00", "close": 100.25, "fivePeriodMovingAverage": 99.5, "buySignal": true},
		{"timestamp": "2025-09-02T10:00:00", "close": 101.75, "sellSignal": true}
	]`
	a := normalize(t, payload, models.IntervalFifteen, PriceChartSpec())
	b := normalize(t, payload, models.IntervalFifteen, PriceChartSpec())
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("outputs differ:\n%+v\n%+v", a, b)
	}
}

func TestNormalizeMissingIndicatorIsGap(t *testing.T) {
	out := normalize(t, `[
		{"timestamp": "2025-09-01T09:00:00", "close": 100, "fivePeriodMovingAverage": 0},
		{"timestamp": "2025-09-01T09:15:00", "close": 101},
		{"timestamp": "2025-09-01T09:30:00", "close": 102, "fivePeriodMovingAverage": null, "sixPeriodRsi": 55.5}
	]`, models.IntervalFifteen, PriceChartSpec())

	if want := []interface{}{0.0, nil, nil}; !reflect.DeepEqual(floats(out.Values["fivePeriodMovingAverage"]), want) {
		t.Errorf("5MA = %v, want %v", floats(out.Values["fivePeriodMovingAverage"]), want)
	}
	if want := []interface{}{nil, nil, 55.5}; !reflect.DeepEqual(floats(out.Values["sixPeriodRsi"]), want) {
		t.Errorf("RSI = %v, want %v", floats(out.Values["sixPeriodRsi"]), want)
	}
	for field, vs := range out.Values {
		if len(vs) != out.Len() {
			t.Errorf("series %s has %d values, want %d", field, len(vs), out.Len())
		}
	}
	if want := []bool{false, false, false}; !reflect.DeepEqual(out.Flags["buySignal"], want) {
		t.Errorf("buySignal = %v, want %v", out.Flags["buySignal"], want)
	}
}

func TestNormalizeValuesPassThrough(t *testing.T) {
	out := normalize(t, `[{"timestamp": "2025-09-01T09:00:00", "close": 123.456789012}]`, models.IntervalOne, PriceChartSpec())
	if got := *out.Values["close"][0]; got != 123.456789012 {
		t.Errorf("close = %v, want 123.456789012", got)
	}
}

func TestNormalizeSelectsInterval(t *testing.T) {
	payload := `{
		"fifteen": [{"timestamp": "2025-09-01T09:15:00", "close": 1}, {"timestamp": "2025-09-01T09:30:00", "close": 2}],
		"hour":    [{"timestamp": "2025-09-01T10:00:00", "close": 3}]
	}`

	out := normalize(t, payload, models.IntervalHour, PriceChartSpec())
	if want := []string{"10:00"}; !reflect.DeepEqual(out.Labels, want) {
		t.Errorf("labels = %v, want %v", out.Labels, want)
	}
	if out.Interval != models.IntervalHour || out.Chart != "price" {
		t.Errorf("chart/interval = %s/%s", out.Chart, out.Interval)
	}

	out = normalize(t, payload, models.IntervalDay, PriceChartSpec())
	if out.Len() != 0 {
		t.Errorf("absent key: got %d labels, want 0", out.Len())
	}
}

func TestNormalizeValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		spec    models.MChartSpec
		index   int
		field   string
	}{
		{"missing close", `[{"timestamp": "2025-09-01T09:00:00", "close": 1}, {"timestamp": "2025-09-01T09:15:00"}]`, PriceChartSpec(), 1, "close"},
		{"null close", `[{"timestamp": "2025-09-01T09:00:00", "close": null}]`, PriceChartSpec(), 0, "close"},
		{"string close", `[{"timestamp": "2025-09-01T09:00:00", "close": "100"}]`, PriceChartSpec(), 0, "close"},
		{"missing equity", `[{"timestamp": "2025-09-01T09:00:00", "close": 100}]`, PortfolioChartSpec(), 0, "equity"},
		{"missing timestamp", `[{"close": 100}]`, PriceChartSpec(), 0, "timestamp"},
		{"numeric timestamp", `[{"timestamp": 1756717200, "close": 100}]`, PriceChartSpec(), 0, "timestamp"},
		{"bad timestamp", `[{"timestamp": "yesterday", "close": 100}]`, PriceChartSpec(), 0, "timestamp"},
		{"string rsi", `[{"timestamp": "2025-09-01T09:00:00", "close": 1}, {"timestamp": "2025-09-01T09:01:00", "close": 1}, {"timestamp": "2025-09-01T09:02:00", "close": 1, "sixPeriodRsi": "high"}]`, PriceChartSpec(), 2, "sixPeriodRsi"},
		{"numeric flag", `[{"timestamp": "2025-09-01T09:00:00", "close": 1, "buySignal": 1}]`, PriceChartSpec(), 0, "buySignal"},
		{"not an object", `[{"timestamp": "2025-09-01T09:00:00", "close": 1}, 42]`, PriceChartSpec(), 1, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := NewTransformer(eastern).Normalize([]byte(tt.payload), models.IntervalFifteen, tt.spec)
			if out != nil {
				t.Errorf("partial output returned: %+v", out)
			}
			var verr *helpers.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
			if verr.Index != tt.index || verr.Field != tt.field {
				t.Errorf("got index %d field %q, want index %d field %q", verr.Index, verr.Field, tt.index, tt.field)
			}
		})
	}
}

func TestNormalizeMalformedPayload(t *testing.T) {
	for _, payload := range []string{``, `"text"`, `42`, `[1, 2`, `{"fifteen": {"close": 1}}`} {
		_, err := NewTransformer(eastern).Normalize([]byte(payload), models.IntervalFifteen, PriceChartSpec())
		var verr *helpers.ValidationError
		if !errors.As(err, &verr) || verr.Index != -1 {
			t.Errorf("%q: err = %v, want payload-level ValidationError", payload, err)
		}
	}
}

func TestNormalizeAcceptedTimestampLayouts(t *testing.T) {
	out := normalize(t, `[
		{"timestamp": "2025-09-01T13:00:00Z", "close": 1},
		{"timestamp": "2025-09-01T09:01:00-04:00", "close": 1},
		{"timestamp": "2025-09-01T13:02:00.123456+00:00", "close": 1},
		{"timestamp": "2025-09-01T09:03", "close": 1},
		{"timestamp": "2025-09-01 09:04:00", "close": 1}
	]`, models.IntervalOne, PriceChartSpec())

	if want := []string{"9:00", "9:01", "9:02", "9:03", "9:04"}; !reflect.DeepEqual(out.Labels, want) {
		t.Errorf("labels = %v, want %v", out.Labels, want)
	}
}
