package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Cleaner metrics
	CleanerRuns     *prometheus.CounterVec
	CleanerDuration *prometheus.HistogramVec

	// Worker lifecycle metrics
	WorkerLaunches prometheus.Counter
	WorkerKills    prometheus.Counter
	WorkerActive   prometheus.Gauge

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time
}

// NewMetrics creates and registers the metrics collectors on reg. A nil
// reg uses the default registry; tests pass their own to avoid duplicate
// registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		startTime: time.Now(),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scrubd_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scrubd_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),

		CleanerRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scrubd_cleaner_runs_total",
				Help: "Total number of analyze/clean runs",
			},
			[]string{"mode", "status"},
		),
		CleanerDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scrubd_cleaner_duration_seconds",
				Help:    "Analyze/clean run duration in seconds",
				Buckets: []float64{.01, .05, .1, .5, 1, 5, 15, 60},
			},
			[]string{"mode"},
		),

		WorkerLaunches: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "scrubd_worker_launches_total",
				Help: "Total number of service worker launches",
			},
		),
		WorkerKills: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "scrubd_worker_kills_total",
				Help: "Total number of confirmed service worker kills",
			},
		),
		WorkerActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "scrubd_worker_active",
				Help: "Whether a service worker currently holds the slot",
			},
		),

		Uptime: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "scrubd_uptime_seconds",
				Help: "Service uptime in seconds",
			},
		),
	}
}

// RecordHTTPRequest records one handled request.
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.Uptime.Set(time.Since(m.startTime).Seconds())
}

// RecordCleanerRun records one analyze/clean run.
func (m *Metrics) RecordCleanerRun(mode, status string, duration time.Duration) {
	m.CleanerRuns.WithLabelValues(mode, status).Inc()
	m.CleanerDuration.WithLabelValues(mode).Observe(duration.Seconds())
}
