package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the Prometheus metrics exposed on /metrics.
type Collector struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	EntitiesCreated *prometheus.CounterVec
	AICalls         *prometheus.CounterVec
	RelevanceRuns   *prometheus.CounterVec
}

// NewCollector creates a collector with its own registry, so tests can build
// as many as they like.
func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		EntitiesCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "entities_created_total",
				Help:      "Journals, memories and events created",
			},
			[]string{"kind"},
		),
		AICalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ai_calls_total",
				Help:      "Calls to Gemini and Ribbon",
			},
			[]string{"service", "status"},
		),
		RelevanceRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "relevance_runs_total",
				Help:      "Memory relevance lookups by strategy",
			},
			[]string{"strategy"},
		),
	}

	c.registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.EntitiesCreated,
		c.AICalls,
		c.RelevanceRuns,
	)
	return c
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Created counts a newly stored entity of the given kind.
func (c *Collector) Created(kind string) {
	if c == nil {
		return
	}
	c.EntitiesCreated.WithLabelValues(kind).Inc()
}

// AICall counts a call to an AI integration.
func (c *Collector) AICall(service string, err error) {
	if c == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	c.AICalls.WithLabelValues(service, status).Inc()
}

// Relevance counts a relevance lookup answered by strategy.
func (c *Collector) Relevance(strategy string) {
	if c == nil {
		return
	}
	c.RelevanceRuns.WithLabelValues(strategy).Inc()
}
