// Package handlers provides the JSON API handlers for sessions, pantry,
// recipes, pairings, bookmarks and the shopping list.
package handlers

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pantrypairing/server/internal/application/session"
	"github.com/pantrypairing/server/internal/infrastructure/http/middleware"
	"github.com/pantrypairing/server/internal/infrastructure/http/respond"
	"github.com/pantrypairing/server/internal/infrastructure/security"
	"github.com/pantrypairing/server/pkg/errors"
)

// TokenIssuer issues session tokens.
type TokenIssuer interface {
	Issue(sessionID string) (security.IssuedToken, error)
}

// EventStream subscribes a connection to a session's events.
type EventStream interface {
	Serve(w http.ResponseWriter, r *http.Request, sessionID string)
}

// Handlers holds the API handlers.
type Handlers struct {
	sessions       *session.Manager
	tokens         TokenIssuer
	events         EventStream
	validate       *validator.Validate
	logger         *zap.Logger
	maxUploadBytes int64

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewHandlers creates the API handlers.
func NewHandlers(sessions *session.Manager, tokens TokenIssuer, events EventStream, maxUploadBytes int64, logger *zap.Logger) *Handlers {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 << 20
	}
	return &Handlers{
		sessions:       sessions,
		tokens:         tokens,
		events:         events,
		validate:       validator.New(validator.WithRequiredStructEnabled()),
		logger:         logger.Named("api"),
		maxUploadBytes: maxUploadBytes,
		rng:            rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// AcceptedResponse is returned when an AI request continues in the background.
type AcceptedResponse struct {
	RequestID string `json:"request_id"`
}

// store resolves the authenticated session's store.
func (h *Handlers) store(r *http.Request) (*session.Store, error) {
	id, ok := middleware.SessionIDFromContext(r.Context())
	if !ok {
		return nil, errors.NewUnauthorizedError("세션 토큰이 필요합니다.")
	}
	sess, err := h.sessions.Get(id)
	if err != nil {
		return nil, errors.NewUnauthorizedError(err.Error()).WithCause(err)
	}
	return sess.Store, nil
}

// decode reads a JSON body into dst and validates it.
func (h *Handlers) decode(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if stderrors.Is(err, io.EOF) {
			return errors.NewBadRequestError("요청 본문이 비어 있습니다.")
		}
		var maxBytes *http.MaxBytesError
		if stderrors.As(err, &maxBytes) {
			return err
		}
		return errors.NewBadRequestError("잘못된 JSON 형식입니다.").WithCause(err)
	}
	return h.validateStruct(dst)
}

func (h *Handlers) validateStruct(v interface{}) error {
	err := h.validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return errors.NewValidationError(err.Error()).WithCause(err)
	}
	out := make([]errors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, errors.ValidationError{
			Field:   fe.Namespace(),
			Value:   fe.Value(),
			Tag:     fe.Tag(),
			Message: fe.Field() + " 값이 올바르지 않습니다 (" + fe.Tag() + ")",
		})
	}
	return errors.NewValidationErrors(out)
}

type aiResult struct {
	value interface{}
	err   error
}

// runAI executes an AI command detached from the request context, so a
// client that goes away never abandons a started request. With ?wait=true
// the handler blocks until the command commits; otherwise it answers 202.
func (h *Handlers) runAI(w http.ResponseWriter, r *http.Request, name string, fn func(ctx context.Context) (interface{}, error)) {
	wait, _ := strconv.ParseBool(r.URL.Query().Get("wait"))

	requestID := uuid.NewString()
	logger := h.logger.With(zap.String("ai_request_id", requestID), zap.String("command", name))
	results := make(chan aiResult, 1)
	h.sessions.Go(r.Context(), func(ctx context.Context) {
		value, err := fn(ctx)
		switch {
		case err == nil:
			logger.Debug("AI request committed")
		case stderrors.Is(err, session.ErrSuperseded):
			logger.Debug("AI request superseded")
		default:
			logger.Info("AI request finished with error", zap.String("code", string(errors.GetCode(err))))
		}
		results <- aiResult{value: value, err: err}
	})

	if !wait {
		respond.JSON(w, http.StatusAccepted, AcceptedResponse{RequestID: requestID}, "요청이 접수되었습니다.")
		return
	}

	select {
	case res := <-results:
		if res.err != nil {
			h.error(w, r, res.err)
			return
		}
		respond.JSON(w, http.StatusOK, res.value, "")
	case <-r.Context().Done():
		logger.Info("Client left before the AI request finished; it continues in the background")
	}
}

func (h *Handlers) error(w http.ResponseWriter, r *http.Request, err error) {
	if stderrors.Is(err, session.ErrSuperseded) {
		err = errors.NewAppError(errors.CodeConflict, "더 최근 요청이 처리 중입니다.", "").WithCause(err)
	}
	respond.Error(w, r, h.logger, err)
}

// param returns the unescaped URL parameter. chi matches on the raw path
// when it differs from the decoded one.
func param(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}
