package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "starpass"

// Metrics collects counters for contract-call submissions and reads.
type Metrics struct {
	submissions        *prometheus.CounterVec
	validationFailures *prometheus.CounterVec
	readOnlyCalls      *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg. A nil reg leaves
// them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "submissions_total",
				Help:      "Contract-call submissions by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		validationFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "validation_failures_total",
				Help:      "Rejected user inputs by operation",
			},
			[]string{"operation"},
		),
		readOnlyCalls: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "read_only_call_seconds",
				Help:      "Read-only contract call latency by function and result",
			},
			[]string{"function", "result"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.submissions, m.validationFailures, m.readOnlyCalls)
	}
	return m
}

// Submission counts a submission outcome: dispatched, succeeded or failed.
func (m *Metrics) Submission(operation, outcome string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) ValidationFailure(operation string) {
	if m == nil {
		return
	}
	m.validationFailures.WithLabelValues(operation).Inc()
}

// ReadOnlyCall observes the duration of a read-only call started at start.
func (m *Metrics) ReadOnlyCall(function string, start time.Time, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.readOnlyCalls.WithLabelValues(function, result).Observe(time.Since(start).Seconds())
}
