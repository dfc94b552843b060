package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/pantrypairing/server/internal/infrastructure/http/middleware"
	"github.com/pantrypairing/server/internal/infrastructure/http/respond"
)

// SessionResponse is returned when a session starts.
type SessionResponse struct {
	SessionID string    `json:"session_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TabRequest selects the active tab.
type TabRequest struct {
	Tab string `json:"tab" validate:"required"`
}

// CreateSession handles POST /api/v1/sessions
func (h *Handlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Create()
	token, err := h.tokens.Issue(sess.ID)
	if err != nil {
		h.sessions.End(sess.ID)
		h.error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, SessionResponse{
		SessionID: sess.ID,
		Token:     token.Token,
		ExpiresAt: token.ExpiresAt,
	}, "세션이 시작되었습니다.")
}

// EndSession handles DELETE /api/v1/session
func (h *Handlers) EndSession(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.SessionIDFromContext(r.Context())
	if !h.sessions.End(id) {
		h.logger.Debug("End requested for unknown session", zap.String("session_id", id))
	}
	w.WriteHeader(http.StatusNoContent)
}

// State handles GET /api/v1/state
func (h *Handlers) State(w http.ResponseWriter, r *http.Request) {
	store, err := h.store(r)
	if err != nil {
		h.error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, store.Snapshot(), "")
}

// SetTab handles PUT /api/v1/state/tab
func (h *Handlers) SetTab(w http.ResponseWriter, r *http.Request) {
	store, err := h.store(r)
	if err != nil {
		h.error(w, r, err)
		return
	}
	var req TabRequest
	if err := h.decode(r, &req); err != nil {
		h.error(w, r, err)
		return
	}
	if err := store.SetActiveTab(req.Tab); err != nil {
		h.error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, store.Snapshot(), "")
}

// ClearNotice handles DELETE /api/v1/state/notice
func (h *Handlers) ClearNotice(w http.ResponseWriter, r *http.Request) {
	store, err := h.store(r)
	if err != nil {
		h.error(w, r, err)
		return
	}
	store.ClearNotice()
	w.WriteHeader(http.StatusNoContent)
}

// ClearError handles DELETE /api/v1/state/error
func (h *Handlers) ClearError(w http.ResponseWriter, r *http.Request) {
	store, err := h.store(r)
	if err != nil {
		h.error(w, r, err)
		return
	}
	store.ClearError()
	w.WriteHeader(http.StatusNoContent)
}

// Events handles GET /api/v1/events
func (h *Handlers) Events(w http.ResponseWriter, r *http.Request) {
	store, err := h.store(r)
	if err != nil {
		h.error(w, r, err)
		return
	}
	h.events.Serve(w, r, store.ID())
}
