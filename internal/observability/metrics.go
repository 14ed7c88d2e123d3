// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Intake metrics
	TradesSeen     *prometheus.CounterVec
	WhalesDetected *prometheus.CounterVec
	TradesDropped  prometheus.Counter
	QueueDepth     prometheus.Gauge

	// Quote metrics
	QuoteLookups prometheus.Counter
	QuoteMisses  prometheus.Counter
	StaleQuotes  prometheus.Counter

	// Classification metrics
	TradesClassified *prometheus.CounterVec
	ClassifyLatency  prometheus.Histogram

	// Scan metrics
	ScansTotal   *prometheus.CounterVec
	ScanDuration prometheus.Histogram
	SymbolErrors *prometheus.CounterVec

	// Provider metrics
	ProviderRequests *prometheus.CounterVec
	StreamReconnects prometheus.Counter

	// Storage metrics
	StoreErrors *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "whaleflow"
	}

	return &Metrics{
		TradesSeen: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "intake",
			Name:      "trades_seen_total",
			Help:      "Total number of trades observed",
		}, []string{"symbol"}),
		WhalesDetected: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "intake",
			Name:      "whales_detected_total",
			Help:      "Total number of trades that passed the whale filter",
		}, []string{"symbol"}),
		TradesDropped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "intake",
			Name:      "trades_dropped_total",
			Help:      "Trades evicted from the live queue under backpressure",
		}),
		QueueDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "intake",
			Name:      "queue_depth",
			Help:      "Current depth of the live processing queue",
		}),

		QuoteLookups: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "quotes",
			Name:      "lookups_total",
			Help:      "Total number of quote snapshot lookups",
		}),
		QuoteMisses: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "quotes",
			Name:      "misses_total",
			Help:      "Quote lookups that found no usable quote",
		}),
		StaleQuotes: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "quotes",
			Name:      "stale_total",
			Help:      "Quote lookups rejected for exceeding the lookback window",
		}),

		TradesClassified: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "classify",
			Name:      "trades_total",
			Help:      "Total number of trades classified, by direction",
		}, []string{"direction"}),
		ClassifyLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "classify",
			Name:      "latency_seconds",
			Help:      "Time to resolve a quote and classify one trade",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),

		ScansTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "runs_total",
			Help:      "Total number of batch scans, by outcome",
		}, []string{"status"}),
		ScanDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "duration_seconds",
			Help:      "Wall time of batch scans",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
		SymbolErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "symbol_errors_total",
			Help:      "Per-symbol failures during batch scans",
		}, []string{"symbol"}),

		ProviderRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "requests_total",
			Help:      "Market data provider requests, by endpoint",
		}, []string{"endpoint"}),
		StreamReconnects: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "stream_reconnects_total",
			Help:      "WebSocket stream reconnect attempts",
		}),

		StoreErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "errors_total",
			Help:      "Storage operation failures, by store",
		}, []string{"store"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordTradeSeen increments the trades seen counter.
func RecordTradeSeen(symbol string) {
	DefaultMetrics.TradesSeen.WithLabelValues(symbol).Inc()
}

// RecordWhaleDetected increments the whales detected counter.
func RecordWhaleDetected(symbol string) {
	DefaultMetrics.WhalesDetected.WithLabelValues(symbol).Inc()
}

// RecordTradeDropped increments the dropped trades counter.
func RecordTradeDropped() {
	DefaultMetrics.TradesDropped.Inc()
}

// SetQueueDepth records the current live queue depth.
func SetQueueDepth(n int) {
	DefaultMetrics.QueueDepth.Set(float64(n))
}

// RecordQuoteLookup increments the quote lookup counter.
func RecordQuoteLookup() {
	DefaultMetrics.QuoteLookups.Inc()
}

// RecordQuoteMiss increments the quote miss counter.
func RecordQuoteMiss() {
	DefaultMetrics.QuoteMisses.Inc()
}

// RecordStaleQuote increments the stale quote counter.
func RecordStaleQuote() {
	DefaultMetrics.StaleQuotes.Inc()
}

// RecordClassified increments the classification counter for a direction.
func RecordClassified(direction string) {
	DefaultMetrics.TradesClassified.WithLabelValues(direction).Inc()
}

// RecordProviderRequest increments the provider request counter for an
// endpoint label ("trades", "quotes").
func RecordProviderRequest(endpoint string) {
	DefaultMetrics.ProviderRequests.WithLabelValues(endpoint).Inc()
}

// RecordStreamReconnect increments the stream reconnect counter.
func RecordStreamReconnect() {
	DefaultMetrics.StreamReconnects.Inc()
}
