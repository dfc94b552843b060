// Package errors provides structured error handling for the application.
// Every error that crosses a layer boundary is an *AppError carrying a code,
// a user-facing message and, for AI operations, the operation it came from.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"time"
)

// ErrorCode represents an error code
type ErrorCode string

const (
	// Client errors (4xx)
	CodeBadRequest       ErrorCode = "BAD_REQUEST"
	CodeUnauthorized     ErrorCode = "UNAUTHORIZED"
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeConflict         ErrorCode = "CONFLICT"
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeTooManyRequests  ErrorCode = "TOO_MANY_REQUESTS"

	// Server errors (5xx)
	CodeInternal             ErrorCode = "INTERNAL_ERROR"
	CodeServiceUnavailable   ErrorCode = "SERVICE_UNAVAILABLE"
	CodeExternalServiceError ErrorCode = "EXTERNAL_SERVICE_ERROR"
	CodeTimeout              ErrorCode = "TIMEOUT"

	// Upstream model errors
	CodeUpstreamOverloaded ErrorCode = "UPSTREAM_OVERLOADED"
	CodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	CodeMalformedResponse  ErrorCode = "MALFORMED_RESPONSE"
)

// Operation names the AI operation an error originated from.
type Operation string

const (
	OpAnalysis       Operation = "analysis"
	OpRecommendation Operation = "recommendation"
	OpPairing        Operation = "pairing"
)

// User-facing messages.
const (
	MsgOverloaded         = "서버가 일시적으로 과부하 상태입니다. 잠시 후 다시 시도해주세요."
	MsgInvalidCredentials = "API 키가 유효하지 않습니다. 설정을 확인해주세요."
	MsgUnknown            = "알 수 없는 오류가 발생했습니다."
	MsgTimeout            = "요청 시간이 초과되었습니다."
	MsgAnalysisFailed     = "분석 결과를 처리하는 중 오류가 발생했습니다."
	MsgRecommendFailed    = "레시피를 추천하는 중 오류가 발생했습니다."
	MsgPairingFailed      = "페어링을 추천하는 중 오류가 발생했습니다."
)

// AppError represents an application error with structured information
type AppError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	Operation  Operation              `json:"operation,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	Cause      error                  `json:"-"`
	StackTrace string                 `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// StatusCode returns the appropriate HTTP status code
func (e *AppError) StatusCode() int {
	switch e.Code {
	case CodeBadRequest, CodeValidationFailed:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeTooManyRequests:
		return http.StatusTooManyRequests
	case CodeServiceUnavailable, CodeUpstreamOverloaded:
		return http.StatusServiceUnavailable
	case CodeInvalidCredentials, CodeMalformedResponse, CodeExternalServiceError:
		// the upstream failed, not the caller
		return http.StatusBadGateway
	case CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// Transient reports whether retrying the same call may succeed.
func (e *AppError) Transient() bool {
	return e.Code == CodeUpstreamOverloaded
}

// WithMetadata adds metadata to the error
func (e *AppError) WithMetadata(key string, value interface{}) *AppError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// WithCause adds a cause error
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithOperation tags the error with the AI operation it belongs to.
func (e *AppError) WithOperation(op Operation) *AppError {
	e.Operation = op
	return e
}

// NewAppError creates a new application error
func NewAppError(code ErrorCode, message, details string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		Details:    details,
		StackTrace: getStackTrace(),
	}
}

// NewBadRequestError creates a bad request error
func NewBadRequestError(message string) *AppError {
	return NewAppError(CodeBadRequest, message, "")
}

// NewValidationError creates a user input error. The message is shown to the
// user as is, so it should already be localized.
func NewValidationError(message string) *AppError {
	return NewAppError(CodeValidationFailed, message, "")
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError(message string) *AppError {
	if message == "" {
		message = "Authentication required"
	}
	return NewAppError(CodeUnauthorized, message, "")
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	message := "Resource not found"
	if resource != "" {
		message = fmt.Sprintf("%s not found", resource)
	}
	return NewAppError(CodeNotFound, message, "")
}

// NewInternalError creates an internal server error
func NewInternalError(message string) *AppError {
	if message == "" {
		message = "An unexpected error occurred"
	}
	return NewAppError(CodeInternal, message, "")
}

// NewTooManyRequestsError creates a rate limit error
func NewTooManyRequestsError() *AppError {
	return NewAppError(CodeTooManyRequests, "요청이 너무 많습니다. 잠시 후 다시 시도해주세요.", "")
}

// NewExternalServiceError creates an error for an unclassified upstream failure.
func NewExternalServiceError(service string, cause error) *AppError {
	return NewAppError(
		CodeExternalServiceError,
		MsgUnknown,
		fmt.Sprintf("failed to communicate with %s", service),
	).WithCause(cause)
}

// NewUpstreamOverloadedError creates a transient upstream error.
func NewUpstreamOverloadedError(cause error) *AppError {
	return NewAppError(CodeUpstreamOverloaded, MsgOverloaded, "").WithCause(cause)
}

// NewInvalidCredentialsError creates an error for a rejected provider API key.
func NewInvalidCredentialsError(cause error) *AppError {
	return NewAppError(CodeInvalidCredentials, MsgInvalidCredentials, "").WithCause(cause)
}

// NewMalformedResponseError creates an error for empty or unparseable model
// output. The message is the operation's fallback message.
func NewMalformedResponseError(op Operation, details string, cause error) *AppError {
	return NewAppError(CodeMalformedResponse, fallbackMessage(op), details).
		WithOperation(op).
		WithCause(cause)
}

// NewTimeoutError creates a timeout error
func NewTimeoutError(cause error) *AppError {
	return NewAppError(CodeTimeout, MsgTimeout, "").WithCause(cause)
}

func fallbackMessage(op Operation) string {
	switch op {
	case OpAnalysis:
		return MsgAnalysisFailed
	case OpRecommendation:
		return MsgRecommendFailed
	case OpPairing:
		return MsgPairingFailed
	default:
		return MsgUnknown
	}
}

// Utility functions

// As returns the *AppError in err's chain, if any.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Wrap wraps an error as an internal error if it's not already an AppError
func Wrap(err error, message string) *AppError {
	if err == nil {
		return nil
	}

	if appErr, ok := As(err); ok {
		return appErr
	}

	return NewInternalError(message).WithCause(err)
}

// Is checks if an error is of a specific error code
func Is(err error, code ErrorCode) bool {
	if appErr, ok := As(err); ok {
		return appErr.Code == code
	}
	return false
}

// IsOperation checks if an error came from the given AI operation.
func IsOperation(err error, op Operation) bool {
	if appErr, ok := As(err); ok {
		return appErr.Operation == op
	}
	return false
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	if appErr, ok := As(err); ok {
		return appErr.Code
	}
	return CodeInternal
}

// getStackTrace captures the current stack trace
func getStackTrace() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	var builder strings.Builder
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "pkg/errors") {
			builder.WriteString(fmt.Sprintf("%s:%d %s\n", frame.File, frame.Line, frame.Function))
		}
		if !more {
			break
		}
	}

	return builder.String()
}

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Value   interface{} `json:"value"`
	Tag     string      `json:"tag"`
	Message string      `json:"message"`
}

// ValidationErrors represents multiple validation errors
type ValidationErrors []ValidationError

// Error implements the error interface
func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}

	if len(v) == 1 {
		return v[0].Message
	}

	var messages []string
	for _, err := range v {
		messages = append(messages, err.Message)
	}

	return strings.Join(messages, "; ")
}

// NewValidationErrors creates validation errors from validator errors
func NewValidationErrors(errors []ValidationError) *AppError {
	validationErrs := ValidationErrors(errors)

	return NewAppError(
		CodeValidationFailed,
		"입력값을 확인해주세요.",
		validationErrs.Error(),
	).WithMetadata("validation_errors", validationErrs)
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error ErrorDetails `json:"error"`
}

// ErrorDetails represents the error details in API responses
type ErrorDetails struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Operation Operation              `json:"operation,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
	Timestamp string                 `json:"timestamp"`
}

// ToErrorResponse converts an AppError to an API error response. Details of
// upstream failures are withheld so provider payloads never reach the client.
func ToErrorResponse(err *AppError, requestID string) ErrorResponse {
	details := err.Details
	if err.StatusCode() >= http.StatusInternalServerError {
		details = ""
	}
	return ErrorResponse{
		Error: ErrorDetails{
			Code:      err.Code,
			Message:   err.Message,
			Details:   details,
			Operation: err.Operation,
			Metadata:  err.Metadata,
			RequestID: requestID,
			Timestamp: fmt.Sprintf("%d", time.Now().Unix()),
		},
	}
}
