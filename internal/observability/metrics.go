package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes Prometheus collectors for the service.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	ErrorsTotal         *prometheus.CounterVec
	ComplaintsTotal     *prometheus.CounterVec
	VotesTotal          prometheus.Counter
	AICallsTotal        *prometheus.CounterVec
}

// NewMetrics registers and returns the collectors.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		ErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Total request errors by code",
			},
			[]string{"method", "path", "code"},
		),
		ComplaintsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "complaints_total",
				Help:      "Total complaint lifecycle operations",
			},
			[]string{"operation"},
		),
		VotesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "votes_total",
				Help:      "Total votes cast on complaints",
			},
		),
		AICallsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ai_calls_total",
				Help:      "Total AI gateway calls by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
	}
}

// RecordRequest increments request counters and observes latency.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(method, path, code).Inc()
}

// RecordComplaintOp counts a lifecycle operation.
func (m *Metrics) RecordComplaintOp(operation string) {
	if m == nil {
		return
	}
	m.ComplaintsTotal.WithLabelValues(operation).Inc()
}

// RecordVote counts a cast vote.
func (m *Metrics) RecordVote() {
	if m == nil {
		return
	}
	m.VotesTotal.Inc()
}

// RecordAICall counts an AI gateway call outcome.
func (m *Metrics) RecordAICall(kind string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.AICallsTotal.WithLabelValues(kind, outcome).Inc()
}
