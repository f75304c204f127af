package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserve_Counters(t *testing.T) {
	m := New()

	m.ObserveAuth(OutcomeSuccess)
	m.ObserveAuth(OutcomeFailure)
	m.ObserveAuth(OutcomeFailure)
	m.ObserveRegistration(OutcomeSuccess)
	m.ObserveCrypto("decrypt", OutcomeError)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.authAttempts.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.authAttempts.WithLabelValues(OutcomeFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.registrations.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cryptoOps.WithLabelValues("decrypt", OutcomeError)))
}

func TestNew_IndependentRegistries(t *testing.T) {
	a, b := New(), New()
	a.ObserveAuth(OutcomeSuccess)

	assert.Equal(t, 0.0, testutil.ToFloat64(b.authAttempts.WithLabelValues(OutcomeSuccess)))
}

func TestHandler_ExposesMetrics(t *testing.T) {
	m := New()
	m.HTTPRequestsTotal.WithLabelValues("GET", "/health", "200").Inc()

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), `gophvault_http_requests_total{method="GET",route="/health",status="200"} 1`))
	assert.Contains(t, string(body), "go_goroutines")
}
