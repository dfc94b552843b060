package monitoring

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pantrypairing/server/pkg/errors"
)

func TestMetrics_Recorders(t *testing.T) {
	// Arrange
	m := NewMetrics()

	// Act
	m.ObserveRequest(errors.OpRecommendation, "success", 2*time.Second)
	m.ObserveRequest(errors.OpRecommendation, "error", time.Second)
	m.IncRetry(errors.OpPairing)
	m.IncRetry(errors.OpPairing)
	m.IncOCRFallback()
	m.AddConformanceViolations(errors.OpPairing, 3)
	m.SetActiveSessions(4)

	// Assert
	assert.Equal(t, 1.0, testutil.ToFloat64(m.aiRequestsTotal.WithLabelValues("recommendation", "success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.aiRetriesTotal.WithLabelValues("pairing")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.aiOCRFallbacksTotal))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.aiConformanceViolated.WithLabelValues("pairing")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.sessionsActive))
}

func TestMetrics_HTTPMiddlewareUsesRoutePattern(t *testing.T) {
	// Arrange
	m := NewMetrics()
	r := chi.NewRouter()
	r.Use(m.HTTPMiddleware)
	r.Get("/api/v1/pantry/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Handle("/metrics", m.Handler())

	// Act
	for _, id := range []string{"a", "b"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/pantry/"+id, nil))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	// Assert
	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "/api/v1/pantry/{id}", "404")))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "pantry_http_requests_total"))
}

func TestTracingProvider_Disabled(t *testing.T) {
	tp, err := NewTracingProvider(context.Background(), TracingConfig{Enabled: false}, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.False(t, tp.Enabled())
	assert.NoError(t, tp.Shutdown(context.Background()))
	assert.Empty(t, TraceIDFromContext(context.Background()))
}
