// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pronostico"

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Forecast upstream metrics
	UpstreamRequestsTotal   *prometheus.CounterVec
	UpstreamRequestDuration prometheus.Histogram

	// Business metrics
	UsersCreatedTotal  prometheus.Counter
	TokensIssuedTotal  prometheus.Counter
	TokensRevokedTotal prometheus.Counter
	WeatherQueryTotal  prometheus.Counter

	registry *prometheus.Registry
}

// New creates and registers all metrics on a fresh registry.
// Go runtime and process collectors are registered as well.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewWithRegistry(registry)
}

// NewWithRegistry creates the metrics and registers them on registry
func NewWithRegistry(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		UpstreamRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "forecast_upstream_requests_total",
				Help:      "Total number of forecast upstream calls by outcome",
			},
			[]string{"outcome"},
		),
		UpstreamRequestDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "forecast_upstream_duration_seconds",
				Help:      "Forecast upstream call duration in seconds",
				Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
		),
		UsersCreatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "users_created_total",
			Help:      "Total number of registered users",
		}),
		TokensIssuedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_issued_total",
			Help:      "Total number of issued access tokens",
		}),
		TokensRevokedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_revoked_total",
			Help:      "Total number of revoked access tokens",
		}),
		WeatherQueryTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "weather_queries_total",
			Help:      "Total number of recorded weather queries",
		}),
		registry: registry,
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.UpstreamRequestsTotal,
		m.UpstreamRequestDuration,
		m.UsersCreatedTotal,
		m.TokensIssuedTotal,
		m.TokensRevokedTotal,
		m.WeatherQueryTotal,
	)

	return m
}

// Handler returns the /metrics exposition handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// The helpers below accept a nil *Metrics

// UserCreated increments users_created_total
func (m *Metrics) UserCreated() {
	if m != nil {
		m.UsersCreatedTotal.Inc()
	}
}

// TokenIssued increments tokens_issued_total
func (m *Metrics) TokenIssued() {
	if m != nil {
		m.TokensIssuedTotal.Inc()
	}
}

// TokenRevoked increments tokens_revoked_total
func (m *Metrics) TokenRevoked() {
	if m != nil {
		m.TokensRevokedTotal.Inc()
	}
}

// WeatherQueryRecorded increments weather_queries_total
func (m *Metrics) WeatherQueryRecorded() {
	if m != nil {
		m.WeatherQueryTotal.Inc()
	}
}
