package fetcher

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the fetcher.
type Metrics struct {
	Registry         *prometheus.Registry
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  prometheus.Histogram
	IdentifiersTotal *prometheus.CounterVec
	RecordsTotal     prometheus.Counter
	RetriesTotal     prometheus.Counter
	RateLimitWaits   prometheus.Counter
	ErrorsTotal      *prometheus.CounterVec
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "remuneracao_requests_total",
			Help: "Lookups answered by the remuneration endpoint, by HTTP status.",
		},
		[]string{"status"},
	)
	requestDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "remuneracao_request_duration_seconds",
			Help:    "Lookup latency including transport retries.",
			Buckets: prometheus.DefBuckets,
		},
	)
	identifiers := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "remuneracao_identifiers_total",
			Help: "Identifiers classified, by outcome.",
		},
		[]string{"outcome"},
	)
	records := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "remuneracao_records_total",
			Help: "Raw records accumulated for export.",
		},
	)
	retries := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "remuneracao_transport_retries_total",
			Help: "Automatic transport retries issued.",
		},
	)
	rateLimitWaits := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "remuneracao_rate_limit_waits_total",
			Help: "Waits taken after a 429 answer survived transport retries.",
		},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "remuneracao_errors_total",
			Help: "Lookup errors by type.",
		},
		[]string{"error_type"},
	)

	registry.MustRegister(requests, requestDuration, identifiers, records, retries, rateLimitWaits, errorsTotal)

	return &Metrics{
		Registry:         registry,
		RequestsTotal:    requests,
		RequestDuration:  requestDuration,
		IdentifiersTotal: identifiers,
		RecordsTotal:     records,
		RetriesTotal:     retries,
		RateLimitWaits:   rateLimitWaits,
		ErrorsTotal:      errorsTotal,
	}
}

// IncRequest counts an answered request by status code; 0 means no answer.
func (m *Metrics) IncRequest(status int) {
	if m == nil {
		return
	}
	label := "none"
	if status != 0 {
		label = strconv.Itoa(status)
	}
	m.RequestsTotal.WithLabelValues(label).Inc()
}

// ObserveDuration records a lookup duration.
func (m *Metrics) ObserveDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.Observe(d.Seconds())
}

// IncOutcome counts a classified identifier.
func (m *Metrics) IncOutcome(outcome string) {
	if m == nil {
		return
	}
	m.IdentifiersTotal.WithLabelValues(outcome).Inc()
}

// AddRecords increments the records counter.
func (m *Metrics) AddRecords(n int) {
	if m == nil {
		return
	}
	m.RecordsTotal.Add(float64(n))
}

// IncRetries increments the transport retries counter.
func (m *Metrics) IncRetries() {
	if m == nil {
		return
	}
	m.RetriesTotal.Inc()
}

// IncRateLimitWait increments the rate-limit wait counter.
func (m *Metrics) IncRateLimitWait() {
	if m == nil {
		return
	}
	m.RateLimitWaits.Inc()
}

// IncError increments the errors counter for a type label.
func (m *Metrics) IncError(errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}
