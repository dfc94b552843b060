package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pantrypairing/server/internal/ports/outbound"
)

func TestClient_Generate(t *testing.T) {
	t.Run("Success_ShouldSendSchemaAndImage", func(t *testing.T) {
		// Arrange
		var captured generateRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1beta/models/test-model:generateContent", r.URL.Path)
			assert.Equal(t, "secret", r.Header.Get("x-goog-api-key"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{\"recipes\":"},{"text":"[]}"}]},"finishReason":"STOP"}]}`))
		}))
		defer server.Close()

		client := NewClient(Config{APIKey: "secret", BaseURL: server.URL, Model: "test-model"}, zaptest.NewLogger(t))
		req := outbound.GenerationRequest{
			SystemInstruction: "system",
			Prompt:            "prompt",
			Image:             &outbound.Image{MIMEType: "image/png", Data: []byte{1, 2, 3}},
			Schema: &outbound.Schema{
				Type:       outbound.TypeObject,
				Properties: map[string]*outbound.Schema{"name": {Type: outbound.TypeString}},
			},
		}

		// Act
		text, err := client.Generate(context.Background(), req)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, `{"recipes":[]}`, text)
		require.Len(t, captured.Contents, 1)
		parts := captured.Contents[0].Parts
		require.Len(t, parts, 2)
		require.NotNil(t, parts[0].InlineData)
		assert.Equal(t, "image/png", parts[0].InlineData.MimeType)
		assert.Equal(t, "AQID", parts[0].InlineData.Data)
		assert.Equal(t, "prompt", parts[1].Text)
		require.NotNil(t, captured.SystemInstruction)
		assert.Equal(t, "system", captured.SystemInstruction.Parts[0].Text)
		assert.Equal(t, "application/json", captured.GenerationConfig.ResponseMimeType)
		require.NotNil(t, captured.GenerationConfig.ResponseSchema)
		assert.Equal(t, "OBJECT", captured.GenerationConfig.ResponseSchema.Type)
		assert.Equal(t, "STRING", captured.GenerationConfig.ResponseSchema.Properties["name"].Type)
	})

	t.Run("Overloaded_ShouldReturnProviderError", func(t *testing.T) {
		// Arrange
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":{"code":503,"message":"The model is overloaded.","status":"UNAVAILABLE"}}`))
		}))
		defer server.Close()
		client := NewClient(Config{APIKey: "secret", BaseURL: server.URL}, zaptest.NewLogger(t))

		// Act
		_, err := client.Generate(context.Background(), outbound.GenerationRequest{Prompt: "p"})

		// Assert
		var perr *outbound.ProviderError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, http.StatusServiceUnavailable, perr.StatusCode)
		assert.Equal(t, "UNAVAILABLE", perr.Status)
		assert.Equal(t, "The model is overloaded.", perr.Message)
	})

	t.Run("NoCandidates_ShouldReturnEmptyText", func(t *testing.T) {
		// Arrange
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"candidates":[],"promptFeedback":{"blockReason":"SAFETY"}}`))
		}))
		defer server.Close()
		client := NewClient(Config{APIKey: "secret", BaseURL: server.URL}, zaptest.NewLogger(t))

		// Act
		text, err := client.Generate(context.Background(), outbound.GenerationRequest{Prompt: "p"})

		// Assert
		require.NoError(t, err)
		assert.Empty(t, text)
	})

	t.Run("MissingKey_ShouldFailWithoutCalling", func(t *testing.T) {
		// Arrange
		called := false
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))
		defer server.Close()
		client := NewClient(Config{BaseURL: server.URL}, zaptest.NewLogger(t))

		// Act
		_, err := client.Generate(context.Background(), outbound.GenerationRequest{Prompt: "p"})

		// Assert
		var perr *outbound.ProviderError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, http.StatusUnauthorized, perr.StatusCode)
		assert.Contains(t, perr.Message, "API key")
		assert.False(t, called)
	})
}

func TestClient_Name(t *testing.T) {
	client := NewClient(Config{APIKey: "k"}, zaptest.NewLogger(t))
	assert.Equal(t, "gemini/"+DefaultModel, client.Name())
}
