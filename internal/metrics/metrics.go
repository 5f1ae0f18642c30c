// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Conversion metrics
	ConversionsTotal   *prometheus.CounterVec
	ConversionDuration *prometheus.HistogramVec
	OutputBytes        *prometheus.HistogramVec

	factory   promauto.Factory
	namespace string
}

// New creates the collectors and registers them with reg. Tests pass a fresh
// prometheus.NewRegistry() so repeated construction never collides.
func New(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "sticker"
	}
	f := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_in_flight",
				Help:      "Current number of HTTP requests being processed",
			},
		),

		ConversionsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "conversion",
				Name:      "total",
				Help:      "Conversions and quote renders by source kind and outcome",
			},
			[]string{"operation", "kind", "status"}, // status: succeeded, failed
		),
		ConversionDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "conversion",
				Name:      "duration_seconds",
				Help:      "Conversion duration in seconds",
				Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"operation", "container"},
		),
		OutputBytes: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "conversion",
				Name:      "output_bytes",
				Help:      "Size of produced stickers in bytes",
				Buckets:   prometheus.ExponentialBuckets(4096, 2, 8), // 4KiB .. 512KiB
			},
			[]string{"container"},
		),

		factory:   f,
		namespace: namespace,
	}
}

// --- Convenience methods ---

// RecordHTTPRequest records an HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, statusCodeToString(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordConversion records one finished conversion or render. container is
// empty for failures.
func (m *Metrics) RecordConversion(operation, kind, status, container string, outputBytes int, duration time.Duration) {
	m.ConversionsTotal.WithLabelValues(operation, kind, status).Inc()
	m.ConversionDuration.WithLabelValues(operation, container).Observe(duration.Seconds())
	if outputBytes > 0 {
		m.OutputBytes.WithLabelValues(container).Observe(float64(outputBytes))
	}
}

// WatchTranscoder exports the transcoder pool's busy and queued counts,
// sampled on every scrape.
func (m *Metrics) WatchTranscoder(running func() int64, waiting func() uint64) {
	m.factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: m.namespace,
			Subsystem: "transcoder",
			Name:      "workers_running",
			Help:      "Transcoder workers currently running ffmpeg",
		},
		func() float64 { return float64(running()) },
	)
	m.factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: m.namespace,
			Subsystem: "transcoder",
			Name:      "tasks_waiting",
			Help:      "Transcodes queued for a free worker",
		},
		func() float64 { return float64(waiting()) },
	)
}

// statusCodeToString converts an HTTP status code to a string category.
func statusCodeToString(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}

