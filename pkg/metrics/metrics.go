// Package metrics exposes the Prometheus collectors for the API.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the domain counters registered on one registry.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests           *prometheus.CounterVec
	JobsPublished          prometheus.Counter
	ApplicationsSubmitted  prometheus.Counter
	ApplicationTransitions *prometheus.CounterVec
}

// New creates a registry with process/go collectors plus the domain
// counters.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "openhire",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status class.",
		}, []string{"method", "route", "status"}),
		JobsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "openhire",
			Name:      "jobs_published_total",
			Help:      "Job postings published.",
		}),
		ApplicationsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "openhire",
			Name:      "applications_submitted_total",
			Help:      "Applications submitted.",
		}),
		ApplicationTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "openhire",
			Name:      "application_transitions_total",
			Help:      "Application status transitions by target status.",
		}, []string{"to_status"}),
	}

	reg.MustRegister(
		m.HTTPRequests,
		m.JobsPublished,
		m.ApplicationsSubmitted,
		m.ApplicationTransitions,
	)
	return m
}

// Handler returns the scrape endpoint handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
