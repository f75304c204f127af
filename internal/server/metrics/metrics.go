// Package metrics provides Prometheus metrics for the vault server.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gophvault"

// Auth outcomes recorded by ObserveAuth.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeError   = "error"
)

// Metrics owns a private registry so several servers (or tests) can coexist
// in one process.
type Metrics struct {
	registry *prometheus.Registry

	// HTTPRequestsTotal counts HTTP requests by method, route and status.
	HTTPRequestsTotal *prometheus.CounterVec
	// HTTPRequestDuration tracks HTTP request duration by method and route.
	HTTPRequestDuration *prometheus.HistogramVec
	// HTTPRequestsInFlight is the number of HTTP requests being served.
	HTTPRequestsInFlight prometheus.Gauge
	// GRPCRequestsTotal counts unary gRPC calls by method and status code.
	GRPCRequestsTotal *prometheus.CounterVec

	authAttempts  *prometheus.CounterVec
	registrations *prometheus.CounterVec
	cryptoOps     *prometheus.CounterVec
}

// New registers all collectors, plus the Go runtime and process collectors,
// on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		HTTPRequestsInFlight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		}),
		GRPCRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grpc_requests_total",
			Help:      "Total number of unary gRPC calls",
		}, []string{"method", "code"}),
		authAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_attempts_total",
			Help:      "Login attempts by outcome",
		}, []string{"outcome"}),
		registrations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Registration attempts by outcome",
		}, []string{"outcome"}),
		cryptoOps: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "encryption_operations_total",
			Help:      "Credential encryption and decryption operations",
		}, []string{"operation", "outcome"}),
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveAuth(outcome string) {
	m.authAttempts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveRegistration(outcome string) {
	m.registrations.WithLabelValues(outcome).Inc()
}

// ObserveCrypto records an "encrypt" or "decrypt" operation.
func (m *Metrics) ObserveCrypto(operation, outcome string) {
	m.cryptoOps.WithLabelValues(operation, outcome).Inc()
}
