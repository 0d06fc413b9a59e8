package models

// -----------------------------------------------------------------------------
// Annotation overlays (chartjs-plugin-annotation vocabulary)
// -----------------------------------------------------------------------------

type MAnnotationType string

const (
	AnnotationPoint MAnnotationType = "point"
	AnnotationLabel MAnnotationType = "label"
	AnnotationLine  MAnnotationType = "line"
)

// MAnnotation is one overlay drawn on top of the line series. X positions are
// label indexes.
type MAnnotation struct {
	Type            MAnnotationType `json:"type"`
	XValue          *float64        `json:"xValue,omitempty"`
	YValue          *float64        `json:"yValue,omitempty"`
	XMin            *float64        `json:"xMin,omitempty"`
	XMax            *float64        `json:"xMax,omitempty"`
	Content         string          `json:"content,omitempty"`
	Color           string          `json:"color,omitempty"`
	BackgroundColor string          `json:"backgroundColor,omitempty"`
	BorderColor     string          `json:"borderColor,omitempty"`
	BorderWidth     int             `json:"borderWidth,omitempty"`
	BorderDash      []int           `json:"borderDash,omitempty"`
	Radius          int             `json:"radius,omitempty"`
	YAdjust         int             `json:"yAdjust,omitempty"`
	FontSize        int             `json:"fontSize,omitempty"`
}

// -----------------------------------------------------------------------------
// Chart.js line chart configuration
// -----------------------------------------------------------------------------

type MDataset struct {
	Label           string     `json:"label"`
	Data            []*float64 `json:"data"`
	BorderColor     string     `json:"borderColor"`
	BackgroundColor string     `json:"backgroundColor"`
	Fill            bool       `json:"fill"`
	Tension         float64    `json:"tension"`
	YAxisID         string     `json:"yAxisID"`
	SpanGaps        bool       `json:"spanGaps"`
}

type MAxis struct {
	Title        string   `json:"title"`
	Position     string   `json:"position,omitempty"`
	SuggestedMax *float64 `json:"suggestedMax,omitempty"`
	BeginAtZero  bool     `json:"beginAtZero"`
}

type MChartConfig struct {
	Type        string           `json:"type"`
	Target      string           `json:"target"`
	Labels      []string         `json:"labels"`
	Datasets    []MDataset       `json:"datasets"`
	Scales      map[string]MAxis `json:"scales"`
	Annotations []MAnnotation    `json:"annotations"`
}
