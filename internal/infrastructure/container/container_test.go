package container

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/zap/zaptest"

	"github.com/pantrypairing/server/internal/application/session"
	"github.com/pantrypairing/server/internal/infrastructure/ai/gemini"
	"github.com/pantrypairing/server/internal/infrastructure/ai/ollama"
	"github.com/pantrypairing/server/internal/infrastructure/ai/openai"
	"github.com/pantrypairing/server/internal/infrastructure/config"
	"github.com/pantrypairing/server/test/testutils"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Cache.Driver = "memory"
	return cfg
}

func TestModule_GraphIsComplete(t *testing.T) {
	// Arrange
	cfg := testConfig(t)

	// Act
	err := fx.ValidateApp(fx.Supply(cfg), Module)

	// Assert
	assert.NoError(t, err)
}

func TestNewGenerativeModel_SelectsProvider(t *testing.T) {
	cfg := testConfig(t)
	log := zaptest.NewLogger(t)

	t.Run("Gemini_ShouldReturnGeminiClient", func(t *testing.T) {
		cfg.AI.Provider = "gemini"
		model, err := NewGenerativeModel(cfg, log)
		require.NoError(t, err)
		assert.IsType(t, &gemini.Client{}, model)
	})

	t.Run("OpenAI_ShouldReturnOpenAIClient", func(t *testing.T) {
		cfg.AI.Provider = "openai"
		model, err := NewGenerativeModel(cfg, log)
		require.NoError(t, err)
		assert.IsType(t, &openai.Client{}, model)
	})

	t.Run("Ollama_ShouldReturnOllamaClient", func(t *testing.T) {
		cfg.AI.Provider = "ollama"
		model, err := NewGenerativeModel(cfg, log)
		require.NoError(t, err)
		assert.IsType(t, &ollama.Client{}, model)
	})

	t.Run("Unknown_ShouldFail", func(t *testing.T) {
		cfg.AI.Provider = "bard"
		_, err := NewGenerativeModel(cfg, log)
		assert.Error(t, err)
	})
}

func TestNewHealthCheck_ReportsSessionCount(t *testing.T) {
	// Arrange
	cfg := testConfig(t)
	log := zaptest.NewLogger(t)
	manager := session.NewManager(testutils.NewMockAIGateway(), nil, nil, session.ManagerConfig{}, log)
	manager.Create()
	health := NewHealthCheck(HealthParams{Config: cfg, Logger: log, Manager: manager})

	// Act
	rec := httptest.NewRecorder()
	health.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil).WithContext(context.Background()))

	// Assert
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"sessions"`)
	assert.Contains(t, rec.Body.String(), `"active":1`)
}
