package apiserver

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pantrypairing/server/internal/application/session"
	"github.com/pantrypairing/server/internal/infrastructure/config"
	"github.com/pantrypairing/server/internal/infrastructure/http/handlers"
	"github.com/pantrypairing/server/internal/infrastructure/monitoring"
	"github.com/pantrypairing/server/internal/infrastructure/realtime"
	"github.com/pantrypairing/server/internal/infrastructure/security"
	"github.com/pantrypairing/server/pkg/errors"
	"github.com/pantrypairing/server/pkg/healthcheck"
	"github.com/pantrypairing/server/test/testutils"
)

func newTestServer(t *testing.T, mutate func(*config.Config)) http.Handler {
	t.Helper()
	logger := zaptest.NewLogger(t)

	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Server.EnableH2C = false
	if mutate != nil {
		mutate(cfg)
	}

	manager := session.NewManager(testutils.NewMockAIGateway(), nil, nil, session.ManagerConfig{}, logger)
	tokens := security.NewTokenService(cfg.Auth, logger)
	hub := realtime.NewHub(nil, logger)

	srv := NewServer(Options{
		Config:   cfg,
		Handlers: handlers.NewHandlers(manager, tokens, hub, cfg.Server.MaxUploadBytes, logger),
		Tokens:   tokens,
		Health:   healthcheck.New("test", logger),
		Metrics:  monitoring.NewMetrics(),
	}, logger)
	return srv.Handler()
}

func createSession(t *testing.T, h http.Handler) string {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/sessions", nil))

	var created handlers.SessionResponse
	testutils.DecodeEnvelope(t, rec, http.StatusCreated, &created)
	return created.Token
}

func TestServer_OperationalEndpoints(t *testing.T) {
	h := newTestServer(t, nil)

	tests := []struct {
		name   string
		path   string
		status int
		body   string
	}{
		{"Health_ShouldBeHealthy", "/health", http.StatusOK, `"status":"healthy"`},
		{"Liveness_ShouldAnswer", "/health/live", http.StatusOK, ""},
		{"Readiness_ShouldAnswer", "/health/ready", http.StatusOK, ""},
		{"Metrics_ShouldExposeRegistry", "/metrics", http.StatusOK, "go_goroutines"},
		{"OpenAPI_ShouldServeYAML", "/api/v1/openapi.yaml", http.StatusOK, "openapi: 3.0.3"},
		{"Docs_ShouldServeSwaggerUI", "/api/v1/docs", http.StatusOK, "swagger-ui"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			// Assert
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.body)
		})
	}
}

func TestServer_UnknownRoute_ShouldReturnEnvelope(t *testing.T) {
	h := newTestServer(t, nil)
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v2/nothing", nil))

	env := testutils.DecodeEnvelope(t, rec, http.StatusNotFound, nil)
	assert.Equal(t, errors.CodeNotFound, env.Error.Code)
}

func TestServer_SecurityAndRequestID(t *testing.T) {
	h := newTestServer(t, nil)
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/state", nil))

	env := testutils.DecodeEnvelope(t, rec, http.StatusUnauthorized, nil)
	assert.NotEmpty(t, env.Error.RequestID)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestServer_AIRateLimit(t *testing.T) {
	// Arrange
	h := newTestServer(t, func(cfg *config.Config) {
		cfg.RateLimit.RPS = 0.001
		cfg.RateLimit.Burst = 1
	})
	token := createSession(t, h)

	call := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{}`))
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	// Act
	first := call("/api/v1/pairings")
	second := call("/api/v1/pairings")
	nonAI := call("/api/v1/shopping")

	// Assert
	assert.Equal(t, http.StatusBadRequest, first.Code, "empty alcohol fails validation after the limiter")
	env := testutils.DecodeEnvelope(t, second, http.StatusTooManyRequests, nil)
	assert.Equal(t, errors.CodeTooManyRequests, env.Error.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
	assert.Equal(t, http.StatusBadRequest, nonAI.Code, "only AI routes are limited")
}

func TestServer_CompressesJSON(t *testing.T) {
	h := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/openapi.yaml", nil)
	req.Header.Set("Accept-Encoding", "br")
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "br", rec.Header().Get("Content-Encoding"))
	raw, _ := io.ReadAll(rec.Body)
	assert.NotContains(t, string(raw), "openapi: 3.0.3")
}

func TestTimeoutUnlessUpgrade(t *testing.T) {
	var sawDeadline bool
	handler := timeoutUnlessUpgrade(time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawDeadline = r.Context().Deadline()
	}))

	t.Run("PlainRequest_ShouldGetDeadline", func(t *testing.T) {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		assert.True(t, sawDeadline)
	})

	t.Run("Upgrade_ShouldNotGetDeadline", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Connection", "Upgrade")
		req.Header.Set("Upgrade", "websocket")

		handler.ServeHTTP(httptest.NewRecorder(), req)

		assert.False(t, sawDeadline)
	})
}
