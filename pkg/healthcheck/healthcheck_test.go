// Package healthcheck unit tests
package healthcheck

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubChecker struct {
	status  Status
	message string
	calls   int
}

func (s *stubChecker) Check(context.Context) Check {
	s.calls++
	return Check{Status: s.status, Message: s.message, LastChecked: time.Now()}
}

type stubPinger struct{ err error }

func (p stubPinger) HealthCheck(context.Context) error { return p.err }

func TestNew(t *testing.T) {
	logger := zap.NewNop()

	hc := New("1.0.0", logger)

	assert.NotNil(t, hc)
	assert.Equal(t, "1.0.0", hc.version)
	assert.NotNil(t, hc.checkers)
	assert.Equal(t, 5*time.Second, hc.cacheTTL)
}

func TestHealthCheck_Check_NoCheckers(t *testing.T) {
	hc := New("1.0.0", zap.NewNop())

	response := hc.Check(context.Background())

	assert.Equal(t, StatusHealthy, response.Status)
	assert.Equal(t, "1.0.0", response.Version)
	assert.Empty(t, response.Checks)
}

func TestHealthCheck_Check_AggregatesWorstStatus(t *testing.T) {
	tests := []struct {
		name     string
		statuses map[string]Status
		want     Status
	}{
		{"AllHealthy_ShouldBeHealthy", map[string]Status{"a": StatusHealthy, "b": StatusHealthy}, StatusHealthy},
		{"OneDegraded_ShouldBeDegraded", map[string]Status{"a": StatusHealthy, "b": StatusDegraded}, StatusDegraded},
		{"OneUnhealthy_ShouldBeUnhealthy", map[string]Status{"a": StatusDegraded, "b": StatusUnhealthy}, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			hc := New("1.0.0", zap.NewNop())
			for name, status := range tt.statuses {
				hc.Register(name, &stubChecker{status: status})
			}

			// Act
			response := hc.Check(context.Background())

			// Assert
			assert.Equal(t, tt.want, response.Status)
			require.Len(t, response.Checks, len(tt.statuses))
			assert.Equal(t, "a", response.Checks[0].Name)
		})
	}
}

func TestHealthCheck_Check_UsesCache(t *testing.T) {
	hc := New("1.0.0", zap.NewNop())
	checker := &stubChecker{status: StatusHealthy}
	hc.Register("a", checker)

	hc.Check(context.Background())
	hc.Check(context.Background())
	assert.Equal(t, 1, checker.calls)

	hc.SetCacheTTL(0)
	hc.Check(context.Background())
	assert.Equal(t, 2, checker.calls)
}

func TestPingChecker(t *testing.T) {
	ok := NewPingChecker("ocr", stubPinger{}, false).Check(context.Background())
	assert.Equal(t, StatusHealthy, ok.Status)

	optional := NewPingChecker("ocr", stubPinger{err: errors.New("connection refused")}, false).Check(context.Background())
	assert.Equal(t, StatusDegraded, optional.Status)
	assert.Equal(t, "connection refused", optional.Message)

	critical := NewPingChecker("model", stubPinger{err: errors.New("down")}, true).Check(context.Background())
	assert.Equal(t, StatusUnhealthy, critical.Status)
}

func TestHandlers(t *testing.T) {
	t.Run("Readiness_DegradedShouldStayReady", func(t *testing.T) {
		// Arrange
		hc := New("1.0.0", zap.NewNop())
		hc.Register("ocr", &stubChecker{status: StatusDegraded})
		rec := httptest.NewRecorder()

		// Act
		hc.ReadinessHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

		// Assert
		assert.Equal(t, http.StatusOK, rec.Code)
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "ready", body["status"])
	})

	t.Run("Health_UnhealthyShouldReturn503", func(t *testing.T) {
		// Arrange
		hc := New("1.0.0", zap.NewNop())
		hc.Register("redis", &stubChecker{status: StatusUnhealthy, message: "timeout"})
		rec := httptest.NewRecorder()

		// Act
		hc.Handler()(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		// Assert
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "unhealthy", body["status"])
		assert.Contains(t, body, "total_duration_ms")
	})

	t.Run("Liveness_ShouldAlwaysAnswer", func(t *testing.T) {
		hc := New("1.0.0", zap.NewNop())
		hc.Register("redis", &stubChecker{status: StatusUnhealthy})
		rec := httptest.NewRecorder()

		hc.LivenessHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	})
}
