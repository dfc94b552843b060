package middleware

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/pantrypairing/server/internal/infrastructure/http/respond"
	"github.com/pantrypairing/server/internal/infrastructure/security"
	"github.com/pantrypairing/server/pkg/errors"
)

type contextKey string

const sessionIDKey contextKey = "session_id"

// TokenValidator validates a bearer token.
type TokenValidator interface {
	Validate(token string) (*security.Claims, error)
}

// Authenticate requires a valid session token and stores the session id in
// the request context. Browsers cannot set headers on websocket upgrades, so
// the events endpoint may pass the token as the access_token query parameter.
func Authenticate(tokens TokenValidator, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				respond.Error(w, r, logger, errors.NewUnauthorizedError("세션 토큰이 필요합니다."))
				return
			}

			claims, err := tokens.Validate(token)
			if err != nil {
				respond.Error(w, r, logger, errors.NewUnauthorizedError("세션 토큰이 유효하지 않습니다."))
				return
			}

			ctx := WithSessionID(r.Context(), claims.SessionID())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		if token := r.URL.Query().Get("access_token"); token != "" && isUpgrade(r) {
			return token, true
		}
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func isUpgrade(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket")
}

// WithSessionID returns ctx carrying sessionID.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// SessionIDFromContext extracts the authenticated session id
func SessionIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionIDKey).(string)
	return id, ok && id != ""
}
