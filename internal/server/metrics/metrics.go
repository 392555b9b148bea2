// Package metrics holds the Prometheus collectors of the server.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics are registered on the registerer given to New, so tests can use
// a private registry.
type Metrics struct {
	AuditWritten       prometheus.Counter
	AuditDropped       prometheus.Counter
	AuditWriteFailures prometheus.Counter
	Registrations      *prometheus.CounterVec
	Logins             *prometheus.CounterVec
	HTTPRequests       *prometheus.CounterVec
	HTTPDuration       *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		AuditWritten: f.NewCounter(prometheus.CounterOpts{
			Name: "singularity_audit_written_total",
			Help: "Total number of audit entries persisted",
		}),
		AuditDropped: f.NewCounter(prometheus.CounterOpts{
			Name: "singularity_audit_dropped_total",
			Help: "Total number of audit entries dropped because the queue was full",
		}),
		AuditWriteFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "singularity_audit_write_failures_total",
			Help: "Total number of audit entries that failed to persist",
		}),
		Registrations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "singularity_registrations_total",
			Help: "Registration attempts by result (success, invalid, error)",
		}, []string{"result"}),
		Logins: f.NewCounterVec(prometheus.CounterOpts{
			Name: "singularity_logins_total",
			Help: "Login attempts by result (success, invalid, locked, error)",
		}, []string{"result"}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "singularity_http_requests_total",
			Help: "HTTP requests by method and status code",
		}, []string{"method", "code"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "singularity_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"method"}),
	}
}

// NewRegistry returns a registry with the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

// Handler exposes g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// IncRegistration records one registration outcome.
func (m *Metrics) IncRegistration(result string) {
	m.Registrations.WithLabelValues(result).Inc()
}

// IncLogin records one login outcome.
func (m *Metrics) IncLogin(result string) {
	m.Logins.WithLabelValues(result).Inc()
}

// ObserveHTTP records a finished request.
func (m *Metrics) ObserveHTTP(method, code string, start time.Time) {
	m.HTTPRequests.WithLabelValues(method, code).Inc()
	m.HTTPDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
}
