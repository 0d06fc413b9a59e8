package validation

import (
	"fmt"
	"strings"

	"trading-dashboard/src/helpers"
	"trading-dashboard/src/models"
	"trading-dashboard/src/series"

	"github.com/Oudwins/zog"
)

// IntervalRequest is an interval selection for one chart as it arrives over
// HTTP or gRPC.
type IntervalRequest struct {
	Chart    string
	Interval string
}

var ChartShape = zog.Shape{
	"Chart": zog.String().Required().OneOf(chartNames()),
}

var IntervalShape = zog.Shape{
	"Interval": zog.String().Required().OneOf(intervalNames()),
}

// -----------------------------------------------------------------------------

// ValidateChartInterval checks both fields and returns the parsed interval.
func ValidateChartInterval(req IntervalRequest) (models.MInterval, error) {
	schema := zog.Struct(ChartShape).Extend(IntervalShape)
	if issues := schema.Validate(&req); issues != nil {
		return "", issueError(issues)
	}
	return models.ParseInterval(req.Interval)
}

// ValidateChart checks the chart name only.
func ValidateChart(chart string) error {
	req := IntervalRequest{Chart: chart}
	if issues := zog.Struct(ChartShape).Validate(&req); issues != nil {
		return issueError(issues)
	}
	return nil
}

// ValidateInterval checks an interval name only.
func ValidateInterval(interval string) (models.MInterval, error) {
	req := IntervalRequest{Interval: interval}
	if issues := zog.Struct(IntervalShape).Validate(&req); issues != nil {
		return "", issueError(issues)
	}
	return models.ParseInterval(interval)
}

// -----------------------------------------------------------------------------

func issueError(issues zog.ZogIssueMap) error {
	var fields, reasons []string
	for field, list := range issues {
		if field == "$first" {
			continue
		}
		fields = append(fields, strings.ToLower(field))
		for _, issue := range list {
			reasons = append(reasons, issue.Message)
		}
	}
	return &helpers.ValidationError{
		Index:  -1,
		Field:  strings.Join(fields, ","),
		Reason: fmt.Sprintf("invalid request: %s", strings.Join(reasons, "; ")),
	}
}

func chartNames() []string {
	specs := series.ChartSpecs()
	names := make([]string, 0, len(specs))
	for _, s := range specs {
		names = append(names, s.Name)
	}
	return names
}

func intervalNames() []string {
	names := make([]string, 0, len(models.AllIntervals))
	for _, iv := range models.AllIntervals {
		names = append(names, string(iv))
	}
	return names
}
