// Package metrics exposes Prometheus collectors for reconciliation passes and
// producer requests.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors. A nil *Metrics records nothing.
type Metrics struct {
	Passes          *prometheus.CounterVec
	Components      *prometheus.CounterVec
	PassDuration    prometheus.Histogram
	InFlight        prometheus.Gauge
	RequestFailures prometheus.Counter
}

// New creates the collectors and registers them on reg when it is not nil.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Passes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jembe_reconciliation_passes_total",
				Help: "Reconciliation passes by result",
			},
			[]string{"result"},
		),
		Components: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jembe_components_total",
				Help: "Components handled by reconciliation, by outcome",
			},
			[]string{"outcome"},
		),
		PassDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "jembe_reconciliation_duration_seconds",
				Help:    "Duration of reconciliation passes",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
			},
		),
		InFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "jembe_requests_in_flight",
				Help: "Producer requests awaiting a response",
			},
		),
		RequestFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "jembe_request_failures_total",
				Help: "Producer requests that failed in transport",
			},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Passes, m.Components, m.PassDuration, m.InFlight, m.RequestFailures)
	}
	return m
}

// Pass records one reconciliation pass. outcomes counts components per outcome.
func (m *Metrics) Pass(d time.Duration, outcomes map[string]int, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Passes.WithLabelValues(result).Inc()
	m.PassDuration.Observe(d.Seconds())
	for outcome, n := range outcomes {
		m.Components.WithLabelValues(outcome).Add(float64(n))
	}
}

// RequestStarted increments the in-flight gauge.
func (m *Metrics) RequestStarted() {
	if m == nil {
		return
	}
	m.InFlight.Inc()
}

// RequestFinished decrements the in-flight gauge and counts failures.
func (m *Metrics) RequestFinished(err error) {
	if m == nil {
		return
	}
	m.InFlight.Dec()
	if err != nil {
		m.RequestFailures.Inc()
	}
}
