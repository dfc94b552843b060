package ai

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"strings"

	"github.com/pantrypairing/server/internal/ports/outbound"
	"github.com/pantrypairing/server/pkg/errors"
)

// IsTransient reports whether err signals upstream overload or unavailability.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var pe *outbound.ProviderError
	if stderrors.As(err, &pe) {
		if pe.StatusCode == http.StatusServiceUnavailable || strings.EqualFold(pe.Status, "UNAVAILABLE") {
			return true
		}
		return transientMessage(pe.Message)
	}
	if appErr, ok := errors.As(err); ok {
		return appErr.Transient()
	}
	return transientMessage(err.Error())
}

func transientMessage(msg string) bool {
	msg = strings.ToLower(msg)
	return strings.Contains(msg, "overloaded") || strings.Contains(msg, "try again")
}

func isInvalidCredentials(err error) bool {
	var pe *outbound.ProviderError
	if stderrors.As(err, &pe) {
		switch pe.StatusCode {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
			return true
		}
		return strings.Contains(pe.Message, "API key")
	}
	return strings.Contains(err.Error(), "API key")
}

func isTimeout(err error) bool {
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return stderrors.As(err, &ne) && ne.Timeout()
}

// Normalize maps any failure of op into the user-facing taxonomy. The raw
// error is kept as the cause for logging only.
func Normalize(op errors.Operation, provider string, err error) *errors.AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := errors.As(err); ok {
		if appErr.Operation == "" {
			appErr.Operation = op
		}
		return appErr
	}

	var normalized *errors.AppError
	switch {
	case isTimeout(err):
		normalized = errors.NewTimeoutError(err)
	case IsTransient(err):
		normalized = errors.NewUpstreamOverloadedError(err)
	case isInvalidCredentials(err):
		normalized = errors.NewInvalidCredentialsError(err)
	default:
		normalized = errors.NewExternalServiceError(provider, err)
	}
	return normalized.WithOperation(op)
}
