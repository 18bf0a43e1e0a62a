package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestMiddleware_counts_errors(t *testing.T) {
	m := New()
	h := RequestMiddleware(m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	for _, p := range []string{"/ok", "/missing", "/ok"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}

	assert.Equal(t, 3.0, testutil.ToFloat64(m.requestsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errorsTotal))
}

func TestMetrics_labelled_counters(t *testing.T) {
	m := New()
	m.IncProbes("success")
	m.IncProbes("failure")
	m.IncProbes("failure")
	m.IncEngineErrors("network", true)
	m.IncRecoveries("resume_load")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.probesTotal.WithLabelValues("success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.probesTotal.WithLabelValues("failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.engineErrorsTotal.WithLabelValues("network", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.engineRecoveriesTotal.WithLabelValues("resume_load")))
}

func TestHandler_refreshes_gauges(t *testing.T) {
	m := New()
	called := false
	h := m.Handler(func() {
		called = true
		m.SetActiveSessions(4)
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
	assert.True(t, strings.Contains(rec.Body.String(), "streamly_active_sessions 4"), rec.Body.String())
}
