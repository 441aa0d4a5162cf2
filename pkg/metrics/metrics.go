package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the fulfillment-side Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	Transitions       *prometheus.CounterVec
	DispatchOffers    *prometheus.CounterVec
	CodeVerifications *prometheus.CounterVec
	RealtimeEvents    *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	factory := promauto.With(registry)
	return &Metrics{
		registry: registry,
		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bazarly_fulfillment_transitions_total",
			Help: "Order fulfillment transitions by from-state, to-state, and outcome.",
		}, []string{"from", "to", "outcome"}),
		DispatchOffers: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bazarly_dispatch_decisions_total",
			Help: "Agent accept/reject decisions by outcome.",
		}, []string{"decision", "outcome"}),
		CodeVerifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bazarly_verification_attempts_total",
			Help: "Verification code checks by purpose and result.",
		}, []string{"purpose", "result"}),
		RealtimeEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bazarly_realtime_events_total",
			Help: "Realtime events fanned out, by event type.",
		}, []string{"type"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bazarly_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status class.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
	}
}

// Handler serves the scrape endpoint for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

const (
	OutcomeApplied  = "applied"
	OutcomeStale    = "stale"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)
