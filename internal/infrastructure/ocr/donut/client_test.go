package donut

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pantrypairing/server/internal/ports/outbound"
)

func newServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/analyze-receipt":
			var req analyzeRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "data:image/png;base64,eA==", req.Image)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(body))
		case "/health":
			w.WriteHeader(status)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestClient_ExtractText(t *testing.T) {
	img := outbound.Image{MIMEType: "image/png", Data: []byte("x")}

	tests := []struct {
		name    string
		status  int
		body    string
		want    string
		wantErr bool
	}{
		{"Success_ShouldReturnText", http.StatusOK, `{"success":true,"extracted_text":" 우유 2,500 \n"}`, "우유 2,500", false},
		{"Failure_ShouldReturnError", http.StatusOK, `{"success":false,"error":"model not loaded"}`, "", true},
		{"EmptyText_ShouldReturnError", http.StatusOK, `{"success":true,"extracted_text":"  "}`, "", true},
		{"ServerError_ShouldReturnError", http.StatusInternalServerError, `{"detail":"boom"}`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			server := newServer(t, tt.status, tt.body)
			defer server.Close()
			client := NewClient(Config{BaseURL: server.URL}, zaptest.NewLogger(t))

			// Act
			text, err := client.ExtractText(context.Background(), img)

			// Assert
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, text)
		})
	}
}

func TestClient_HealthCheck(t *testing.T) {
	healthy := newServer(t, http.StatusOK, "")
	defer healthy.Close()
	unhealthy := newServer(t, http.StatusServiceUnavailable, "")
	defer unhealthy.Close()

	assert.NoError(t, NewClient(Config{BaseURL: healthy.URL}, zaptest.NewLogger(t)).HealthCheck(context.Background()))
	assert.Error(t, NewClient(Config{BaseURL: unhealthy.URL}, zaptest.NewLogger(t)).HealthCheck(context.Background()))
}
