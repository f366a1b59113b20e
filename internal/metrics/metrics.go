// Package metrics holds the Prometheus collectors exposed at /metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the collectors recorded by handlers and services
type Metrics struct {
	registry *prometheus.Registry

	httpRequests        *prometheus.CounterVec
	httpDuration        *prometheus.HistogramVec
	orderTransitions    *prometheus.CounterVec
	sideEffectFailures  *prometheus.CounterVec
	proposalsSelected   prometheus.Counter
	chatMessagesCreated *prometheus.CounterVec
}

// New creates collectors on a private registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jipsa_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "jipsa_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		orderTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jipsa_order_transitions_total",
				Help: "Committed order status transitions",
			},
			[]string{"from", "to"},
		),
		sideEffectFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jipsa_side_effect_failures_total",
				Help: "Best-effort writes that failed after the primary write committed",
			},
			[]string{"effect"},
		),
		proposalsSelected: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "jipsa_proposals_selected_total",
				Help: "Proposals accepted into orders",
			},
		),
		chatMessagesCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jipsa_chat_messages_total",
				Help: "Chat messages stored",
			},
			[]string{"type"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.orderTransitions,
		m.sideEffectFailures,
		m.proposalsSelected,
		m.chatMessagesCreated,
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordHTTPRequest records one served request
func (m *Metrics) RecordHTTPRequest(method, route, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, status).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordOrderTransition counts a committed status change
func (m *Metrics) RecordOrderTransition(from, to string) {
	if m == nil {
		return
	}
	m.orderTransitions.WithLabelValues(from, to).Inc()
}

// RecordSideEffectFailure counts a failed best-effort write
func (m *Metrics) RecordSideEffectFailure(effect string) {
	if m == nil {
		return
	}
	m.sideEffectFailures.WithLabelValues(effect).Inc()
}

// RecordProposalSelected counts an accepted proposal
func (m *Metrics) RecordProposalSelected() {
	if m == nil {
		return
	}
	m.proposalsSelected.Inc()
}

// RecordChatMessage counts a stored chat message
func (m *Metrics) RecordChatMessage(messageType string) {
	if m == nil {
		return
	}
	m.chatMessagesCreated.WithLabelValues(messageType).Inc()
}
