// Package testutils provides custom assertions and testing utilities
package testutils

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pantrypairing/server/internal/domain/recipe"
	"github.com/pantrypairing/server/pkg/errors"
)

// AssertAppError asserts that err is an *errors.AppError with the given code
// and operation and returns it.
func AssertAppError(t *testing.T, err error, code errors.ErrorCode, op errors.Operation) *errors.AppError {
	t.Helper()
	require.Error(t, err)
	appErr, ok := errors.As(err)
	require.True(t, ok, "expected *errors.AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
	assert.Equal(t, op, appErr.Operation)
	return appErr
}

// AssertPairingConformant asserts the cardinalities and id join the pairing
// prompt asks for.
func AssertPairingConformant(t *testing.T, resp *recipe.PairingResponse) {
	t.Helper()
	require.NotNil(t, resp)
	assert.Len(t, resp.Recommendations.RefrigeratorVersion, recipe.PairingItemsPerCategory)
	assert.Len(t, resp.Recommendations.ConvenienceStoreVersion, recipe.PairingItemsPerCategory)
	assert.Len(t, resp.Recommendations.DeliveryVersion, recipe.PairingItemsPerCategory)
	assert.Len(t, resp.DetailedPopupRecipes, recipe.PairingItemsPerCategory)
	for _, item := range resp.Recommendations.RefrigeratorVersion {
		_, ok := resp.RecipeByID(item.ID)
		assert.True(t, ok, "refrigerator item %s should resolve to a popup recipe", item.ID)
	}
	assert.Empty(t, resp.Conformance())
}

// Envelope mirrors the handlers' JSON response envelope.
type Envelope struct {
	Success bool                 `json:"success"`
	Data    json.RawMessage      `json:"data,omitempty"`
	Error   *errors.ErrorDetails `json:"error,omitempty"`
	Message string               `json:"message,omitempty"`
}

// DecodeEnvelope asserts a JSON response with the expected status and decodes
// its envelope. When data is non-nil the payload is decoded into it.
func DecodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, expectedStatus int, data interface{}) Envelope {
	t.Helper()
	require.Equal(t, expectedStatus, rec.Code, "body: %s", rec.Body.String())
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json"),
		"Response should have JSON content type, got: %s", rec.Header().Get("Content-Type"))

	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), "Response should be valid JSON")
	if data != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}
