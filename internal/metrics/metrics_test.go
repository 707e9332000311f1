package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveHelpers(t *testing.T) {
	m := New()

	m.ObserveAuth("login", OutcomeSuccess)
	m.ObserveAuth("login", OutcomeSuccess)
	m.ObserveAuth("login", OutcomeFailure)
	m.ObserveEmail("verify", true)
	m.ObserveEmail("verify", false)
	m.ObserveRateLimited("/api/v1/auth/login")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.AuthOperations.WithLabelValues("login", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AuthOperations.WithLabelValues("login", OutcomeFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EmailsSent.WithLabelValues("verify", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateLimited.WithLabelValues("/api/v1/auth/login")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveAuth("login", OutcomeSuccess)
		m.ObserveEmail("verify", true)
		m.ObserveRateLimited("/x")
	})
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveAuth("register", OutcomeSuccess)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `apiplate_auth_operations_total{operation="register",outcome="success"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
