package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dashboard side
var (
	Redraws = newCounterVec(prometheus.CounterOpts{
		Name: "dashboard_chart_redraws_total",
		Help: "Charts rebuilt on a surface",
	}, []string{"chart"})

	DroppedMessages = newCounterVec(prometheus.CounterOpts{
		Name: "dashboard_stream_dropped_messages_total",
		Help: "Streamed batches rejected by validation",
	}, []string{"chart"})

	LoopCompletions = newCounterVec(prometheus.CounterOpts{
		Name: "dashboard_refresh_loop_completions_total",
		Help: "Refresh loops ended, by reason",
	}, []string{"chart", "reason"})

	WidgetFailures = newCounterVec(prometheus.CounterOpts{
		Name: "dashboard_widget_failures_total",
		Help: "Widget fetches that rendered the error state",
	}, []string{"widget"})
)

// Server side
var (
	HubClients = newGaugeVec(prometheus.GaugeOpts{
		Name: "server_websocket_clients",
		Help: "Connected websocket clients",
	}, []string{"topic"})

	Broadcasts = newCounterVec(prometheus.CounterOpts{
		Name: "server_broadcasts_total",
		Help: "Payloads broadcast to websocket clients",
	}, []string{"topic"})

	BarsReceived = newCounter(prometheus.CounterOpts{
		Name: "server_bars_received_total",
		Help: "Bars received from the market data stream",
	})

	BarsAccepted = newCounterVec(prometheus.CounterOpts{
		Name: "server_bars_accepted_total",
		Help: "Bars appended to an interval bucket",
	}, []string{"interval"})

	BrokerLatency = newHistVec(prometheus.HistogramOpts{
		Name:    "server_broker_request_seconds",
		Help:    "Broker request latency",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"operation"})
)

// -----------------------------------------------------------------------------

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// -----------------------------------------------------------------------------

func newCounter(opts prometheus.CounterOpts) prometheus.Counter {
	c := prometheus.NewCounter(opts)
	prometheus.MustRegister(c)
	return c
}

func newCounterVec(opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(opts, labels)
	prometheus.MustRegister(c)
	return c
}

func newGaugeVec(opts prometheus.GaugeOpts, labels []string) *prometheus.GaugeVec {
	g := prometheus.NewGaugeVec(opts, labels)
	prometheus.MustRegister(g)
	return g
}

func newHistVec(opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	h := prometheus.NewHistogramVec(opts, labels)
	prometheus.MustRegister(h)
	return h
}
