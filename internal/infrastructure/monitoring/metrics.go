package monitoring

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the gateway's Prometheus collectors. A single instance is
// created at startup and shared by the pipeline and the HTTP layer.
type Metrics struct {
	registry *prometheus.Registry

	admissionDecisions *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
	requestsInFlight   prometheus.Gauge
	costReserved       *prometheus.CounterVec
	breakerState       prometheus.Gauge
	auditEntries       prometheus.Counter
}

// NewMetrics creates and registers the gateway collectors on a fresh registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		admissionDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ai_gateway",
			Name:      "admission_decisions_total",
			Help:      "Admission pipeline decisions by service, stage and outcome.",
		}, []string{"service", "stage", "outcome"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ai_gateway",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by endpoint and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint", "status"}),
		requestsInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "ai_gateway",
			Name:      "requests_in_flight",
			Help:      "Requests currently being handled.",
		}),
		costReserved: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ai_gateway",
			Name:      "cost_reserved_total",
			Help:      "Estimated cost reserved against daily budgets, by service.",
		}, []string{"service"}),
		breakerState: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "ai_gateway",
			Name:      "circuit_breaker_open",
			Help:      "Whether the chain integration breaker is open (1) or closed (0).",
		}),
		auditEntries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "ai_gateway",
			Name:      "audit_entries_total",
			Help:      "Audit entries recorded.",
		}),
	}
}

// Registry exposes the underlying registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveAdmission counts one admission stage decision.
func (m *Metrics) ObserveAdmission(service, stage string, admitted bool) {
	outcome := "rejected"
	if admitted {
		outcome = "admitted"
	}
	m.admissionDecisions.WithLabelValues(service, stage, outcome).Inc()
}

// ObserveRequest records one completed HTTP request.
func (m *Metrics) ObserveRequest(endpoint string, status int, elapsed time.Duration) {
	m.requestDuration.WithLabelValues(endpoint, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// RequestStarted and RequestFinished bracket the in-flight gauge.
func (m *Metrics) RequestStarted()  { m.requestsInFlight.Inc() }
func (m *Metrics) RequestFinished() { m.requestsInFlight.Dec() }

// AddCostReserved accumulates reserved spend for a service.
func (m *Metrics) AddCostReserved(service string, cost float64) {
	if cost > 0 {
		m.costReserved.WithLabelValues(service).Add(cost)
	}
}

// SetBreakerOpen reflects the breaker state as a gauge.
func (m *Metrics) SetBreakerOpen(open bool) {
	if open {
		m.breakerState.Set(1)
	} else {
		m.breakerState.Set(0)
	}
}

// IncAuditEntries counts one recorded audit entry.
func (m *Metrics) IncAuditEntries() {
	m.auditEntries.Inc()
}
