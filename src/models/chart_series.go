package models

import (
	"fmt"
	"time"
)

// -----------------------------------------------------------------------------

// MCalendarDate is a civil date without a clock or zone.
type MCalendarDate struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) MCalendarDate {
	y, m, d := t.Date()
	return MCalendarDate{Year: y, Month: m, Day: d}
}

func (d MCalendarDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// ShortLabel formats the date the way the day separators show it ("Sep 2").
func (d MCalendarDate) ShortLabel() string {
	return fmt.Sprintf("%s %d", d.Month.String()[:3], d.Day)
}

func (d MCalendarDate) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *MCalendarDate) UnmarshalJSON(b []byte) error {
	t, err := time.Parse(`"2006-01-02"`, string(b))
	if err != nil {
		return err
	}
	*d = DateOf(t)
	return nil
}

// -----------------------------------------------------------------------------

// MBoundaryMarker marks the first label of a new calendar day.
type MBoundaryMarker struct {
	Index int           `json:"index"`
	Date  MCalendarDate `json:"date"`
}

// MChartSeries is the normalized, render-ready form of a record batch. Every
// slice in Values and Flags has the same length as Labels; a nil entry in
// Values is a gap.
type MChartSeries struct {
	Chart      string                `json:"chart"`
	Interval   MInterval             `json:"interval"`
	Labels     []string              `json:"labels"`
	Values     map[string][]*float64 `json:"values"`
	Flags      map[string][]bool     `json:"flags,omitempty"`
	Boundaries []MBoundaryMarker     `json:"boundaries"`
}

// Len is the number of samples in the series.
func (s *MChartSeries) Len() int {
	return len(s.Labels)
}

// -----------------------------------------------------------------------------

// MSeriesSpec describes one plotted line.
type MSeriesSpec struct {
	Field string // record field name, also the key in MChartSeries.Values
	Label string
	Color string // hex without '#'
	Axis  string // "y" or "y1"
}

// MChartSpec is the per-chart configuration that specialises the shared
// transformer and refresh loop.
type MChartSpec struct {
	Name          string
	Kind          MSeriesKind
	ValueField    string
	Series        []MSeriesSpec
	Flags         []string
	YAxisTitle    string
	PreferenceKey string
	FetchPath     string
	StreamPath    string
}
