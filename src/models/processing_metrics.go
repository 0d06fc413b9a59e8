package models

// MProcessingMetrics represents the performance metrics for the bar ingestion pipeline.
type MProcessingMetrics struct {
	ProcessingTimeSeconds float64 `json:"processing_time_seconds"`
	BarsReceived          int64   `json:"bars_received"`
	BarsAccepted          int64   `json:"bars_accepted"`
	LastBarTimestamp      int64   `json:"last_bar_timestamp"`
}
