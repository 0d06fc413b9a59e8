package series

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"trading-dashboard/src/helpers"
	"trading-dashboard/src/models"
)

// -----------------------------------------------------------------------------

// Numeric and boolean record fields understood by the transformer. Unknown
// fields are ignored; known ones must carry the right JSON type when present.
var (
	numericFields = []string{
		"close", "equity", "open", "high", "low", "volume", "trade_count",
		"fivePeriodMovingAverage", "tenPeriodMovingAverage", "sixPeriodRsi",
	}
	booleanFields = []string{"buySignal", "sellSignal"}
)

// timestamp layouts tried in order. The first group carries an offset, the
// second is read as wall time in the transformer's location.
var (
	zonedLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999Z0700", "2006-01-02 15:04:05.999999999Z07:00"}
	localLayouts = []string{"2006-01-02T15:04:05.999999999", "2006-01-02T15:04", "2006-01-02 15:04:05.999999999", "2006-01-02"}
)

// -----------------------------------------------------------------------------

// Transformer turns raw record batches into render-ready chart series.
type Transformer struct {
	location *time.Location
}

// NewTransformer returns a Transformer computing labels and calendar days in
// loc. A nil loc means time.Local.
func NewTransformer(loc *time.Location) *Transformer {
	if loc == nil {
		loc = time.Local
	}
	return &Transformer{location: loc}
}

// -----------------------------------------------------------------------------

// Normalize validates payload and converts it into parallel label, value and
// flag sequences plus day boundary markers. payload is either a JSON array of
// records or an object keyed by interval name, in which case the sequence for
// interval is used (an absent key yields an empty series). The first invalid
// record fails the whole batch with a *helpers.ValidationError.
func (t *Transformer) Normalize(payload []byte, interval models.MInterval, spec models.MChartSpec) (*models.MChartSeries, error) {
	raw, err := selectRecords(payload, interval)
	if err != nil {
		return nil, err
	}

	records := make([]parsedRecord, 0, len(raw))
	for i, r := range raw {
		rec, err := t.parseRecord(i, r, spec)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return t.build(records, interval, spec), nil
}

// -----------------------------------------------------------------------------

type parsedRecord struct {
	at     time.Time
	values map[string]*float64
	flags  map[string]bool
}

func (t *Transformer) build(records []parsedRecord, interval models.MInterval, spec models.MChartSpec) *models.MChartSeries {
	out := &models.MChartSeries{
		Chart:      spec.Name,
		Interval:   interval,
		Labels:     make([]string, 0, len(records)),
		Values:     make(map[string][]*float64, len(spec.Series)),
		Boundaries: []models.MBoundaryMarker{},
	}
	for _, s := range spec.Series {
		out.Values[s.Field] = make([]*float64, 0, len(records))
	}
	if len(spec.Flags) > 0 {
		out.Flags = make(map[string][]bool, len(spec.Flags))
		for _, f := range spec.Flags {
			out.Flags[f] = make([]bool, 0, len(records))
		}
	}

	var prevDay *models.MCalendarDate
	for _, rec := range records {
		day := models.DateOf(rec.at)
		if prevDay != nil && *prevDay != day {
			out.Boundaries = append(out.Boundaries, models.MBoundaryMarker{Index: len(out.Labels), Date: day})
		}
		prevDay = &day

		out.Labels = append(out.Labels, fmt.Sprintf("%d:%02d", rec.at.Hour(), rec.at.Minute()))
		for _, s := range spec.Series {
			out.Values[s.Field] = append(out.Values[s.Field], rec.values[s.Field])
		}
		for _, f := range spec.Flags {
			out.Flags[f] = append(out.Flags[f], rec.flags[f])
		}
	}

	return out
}

// -----------------------------------------------------------------------------

func selectRecords(payload []byte, interval models.MInterval) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return nil, &helpers.ValidationError{Index: -1, Reason: "empty body"}
	}

	switch trimmed[0] {
	case '[':
		var list []json.RawMessage
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, &helpers.ValidationError{Index: -1, Reason: err.Error()}
		}
		return list, nil

	case '{':
		var keyed map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &keyed); err != nil {
			return nil, &helpers.ValidationError{Index: -1, Reason: err.Error()}
		}
		sub, ok := keyed[string(interval)]
		if !ok || isNull(sub) {
			return nil, nil
		}
		var list []json.RawMessage
		if err := json.Unmarshal(sub, &list); err != nil {
			return nil, &helpers.ValidationError{Index: -1, Reason: fmt.Sprintf("interval %q is not a list", interval)}
		}
		return list, nil

	case 'n':
		if isNull(trimmed) {
			return nil, nil
		}
	}

	return nil, &helpers.ValidationError{Index: -1, Reason: "expected a list or an interval-keyed object"}
}

// -----------------------------------------------------------------------------

func (t *Transformer) parseRecord(index int, raw json.RawMessage, spec models.MChartSpec) (parsedRecord, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return parsedRecord{}, &helpers.ValidationError{Index: index, Reason: "is not an object"}
	}

	rec := parsedRecord{
		values: make(map[string]*float64, len(numericFields)),
		flags:  make(map[string]bool, len(booleanFields)),
	}

	// timestamp
	ts, ok := fields["timestamp"]
	if !ok || isNull(ts) {
		return parsedRecord{}, &helpers.ValidationError{Index: index, Field: "timestamp", Reason: "is required"}
	}
	var tsText string
	if err := json.Unmarshal(ts, &tsText); err != nil {
		return parsedRecord{}, &helpers.ValidationError{Index: index, Field: "timestamp", Reason: "must be a string"}
	}
	at, err := t.parseTimestamp(tsText)
	if err != nil {
		return parsedRecord{}, &helpers.ValidationError{Index: index, Field: "timestamp", Reason: "is not an ISO-8601 timestamp"}
	}
	rec.at = at

	// value field
	if v, ok := fields[spec.ValueField]; !ok || isNull(v) {
		return parsedRecord{}, &helpers.ValidationError{Index: index, Field: spec.ValueField, Reason: "is required"}
	}

	for _, name := range numericFields {
		v, ok := fields[name]
		if !ok || isNull(v) {
			continue
		}
		var f float64
		if err := json.Unmarshal(v, &f); err != nil {
			return parsedRecord{}, &helpers.ValidationError{Index: index, Field: name, Reason: "must be a number"}
		}
		rec.values[name] = &f
	}

	for _, name := range booleanFields {
		v, ok := fields[name]
		if !ok || isNull(v) {
			continue
		}
		var b bool
		if err := json.Unmarshal(v, &b); err != nil {
			return parsedRecord{}, &helpers.ValidationError{Index: index, Field: name, Reason: "must be a boolean"}
		}
		rec.flags[name] = b
	}

	return rec, nil
}

// -----------------------------------------------------------------------------

func (t *Transformer) parseTimestamp(s string) (time.Time, error) {
	for _, layout := range zonedLayouts {
		if at, err := time.Parse(layout, s); err == nil {
			return at.In(t.location), nil
		}
	}
	for _, layout := range localLayouts {
		if at, err := time.ParseInLocation(layout, s, t.location); err == nil {
			return at, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
