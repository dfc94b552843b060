// Package respond writes the JSON response envelope shared by handlers and
// middleware.
package respond

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/pantrypairing/server/pkg/errors"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool                 `json:"success"`
	Data    interface{}          `json:"data,omitempty"`
	Error   *errors.ErrorDetails `json:"error,omitempty"`
	Message string               `json:"message,omitempty"`
}

// JSON writes a success envelope.
func JSON(w http.ResponseWriter, status int, data interface{}, message string) {
	write(w, status, APIResponse{Success: true, Data: data, Message: message})
}

// Error writes err as a failure envelope. Errors that are not AppErrors are
// reported as internal errors and logged.
func Error(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	appErr, ok := errors.As(err)
	if !ok {
		var maxBytes *http.MaxBytesError
		if stderrors.As(err, &maxBytes) {
			appErr = errors.NewAppError(errors.CodeBadRequest, "업로드 크기가 너무 큽니다.", "")
		} else {
			logger.Error("Unhandled error", zap.Error(err), zap.String("path", r.URL.Path))
			appErr = errors.NewInternalError("요청을 처리하는 중 오류가 발생했습니다.")
		}
	}

	status := appErr.StatusCode()
	if status >= http.StatusInternalServerError {
		logger.Warn("Request failed",
			zap.String("code", string(appErr.Code)),
			zap.String("operation", string(appErr.Operation)),
			zap.Error(appErr.Cause))
	}

	body := errors.ToErrorResponse(appErr, middleware.GetReqID(r.Context()))
	write(w, status, APIResponse{Success: false, Error: &body.Error})
}

func write(w http.ResponseWriter, status int, body APIResponse) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
