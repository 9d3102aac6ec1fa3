package resilient

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Request outcomes recorded by Metrics.
const (
	OutcomeCacheHit      = "cache_hit"
	OutcomeSuccess       = "success"
	OutcomeStaleFallback = "stale_fallback"
	OutcomeFailed        = "failed"
)

// Metrics exposes Prometheus instrumentation for the request core. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	requests        *prometheus.CounterVec
	attempts        *prometheus.CounterVec
	retries         *prometheus.CounterVec
	attemptDuration *prometheus.HistogramVec
}

// NewMetrics registers the collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		requests: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "service_requests_total",
				Help: "Logical service requests by outcome",
			},
			[]string{"service", "outcome"},
		),
		attempts: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "service_request_attempts_total",
				Help: "Outbound HTTP attempts by result",
			},
			[]string{"service", "result"},
		),
		retries: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "service_request_retries_total",
				Help: "Retries scheduled after a failed attempt",
			},
			[]string{"service"},
		),
		attemptDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "service_request_attempt_duration_seconds",
				Help:    "Duration of outbound HTTP attempts",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"service"},
		),
	}
}

func (m *Metrics) recordOutcome(service, outcome string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(service, outcome).Inc()
}

func (m *Metrics) recordAttempt(service string, err error, d time.Duration) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
		if isAborted(err) {
			result = "timeout"
		}
	}
	m.attempts.WithLabelValues(service, result).Inc()
	m.attemptDuration.WithLabelValues(service).Observe(d.Seconds())
}

func (m *Metrics) recordRetry(service string) {
	if m == nil {
		return
	}
	m.retries.WithLabelValues(service).Inc()
}
