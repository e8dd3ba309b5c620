package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithRegistry(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewWithRegistry(registry)

	m.UsersCreatedTotal.Inc()
	m.UpstreamRequestsTotal.WithLabelValues("ok").Inc()
	m.UpstreamRequestsTotal.WithLabelValues("ok").Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.UsersCreatedTotal))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.UpstreamRequestsTotal.WithLabelValues("ok")))

	// Повторная регистрация на том же registry недопустима
	assert.Panics(t, func() { NewWithRegistry(registry) })
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.TokensIssuedTotal.Inc()
	m.HTTPRequestsTotal.WithLabelValues("GET", "GET /health", "200").Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "pronostico_tokens_issued_total 1")
	assert.Contains(t, string(body), `pronostico_http_requests_total{method="GET",route="GET /health",status="200"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
