package handlers

import (
	"net/http"

	"github.com/pantrypairing/server/internal/domain/recipe"
	"github.com/pantrypairing/server/internal/infrastructure/http/respond"
	"github.com/pantrypairing/server/pkg/errors"
)

// ToggleRequest carries the recipe whose bookmark star was pressed.
type ToggleRequest struct {
	Recipe recipe.Recipe `json:"recipe" validate:"required"`
}

// SaveBookmarkRequest saves a recipe directly, bypassing the draft.
type SaveBookmarkRequest struct {
	Recipe recipe.Recipe `json:"recipe" validate:"required"`
	Status string        `json:"status"`
	Tags   []string      `json:"tags" validate:"omitempty,dive,required"`
}

// StatusRequest sets a bookmark status.
type StatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// TagRequest adds a tag.
type TagRequest struct {
	Tag string `json:"tag" validate:"required"`
}

// TagResponse reports whether a tag operation changed anything.
type TagResponse struct {
	Changed bool `json:"changed"`
}

// ListBookmarks handles GET /api/v1/bookmarks?status=&tag=
func (h *Handlers) ListBookmarks(w http.ResponseWriter, r *http.Request) {
	store, err := h.store(r)
	if err != nil {
		h.error(w, r, err)
		return
	}
	filter := recipe.BookmarkFilter{Tag: r.URL.Query().Get("tag")}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := recipe.ParseStatus(raw)
		if err != nil {
			h.error(w, r, errors.NewValidationError(err.Error()).WithCause(err))
			return
		}
		filter.Status = status
	}
	respond.JSON(w, http.StatusOK, store.Bookmarks(filter), "")
}

// BookmarkTags handles GET /api/v1/bookmarks/tags
func (h *Handlers) BookmarkTags(w http.ResponseWriter, r *http.Request) {
	store, err := h.store(r)
	if err != nil {
		h.error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, store.AllTags(), "")
}

// ToggleBookmark handles POST /api/v1/bookmarks/toggle
func (h *Handlers) ToggleBookmark(w http.ResponseWriter, r *http.Request) {
	store, err := h.store(r)
	if err != nil {
		h.error(w, r, err)
		return
	}
	var req ToggleRequest
	if err := h.decode(r, &req); err != nil {
		h.error(w, r, err)
		return
	}
	result, err := store.ToggleBookmark(req.Recipe)
	if err != nil {
		h.error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, result, "")
}

// SaveBookmark handles POST /api/v1/bookmarks
func (h *Handlers) SaveBookmark(w http.ResponseWriter, r *http.Request) {
	store, err := h.store(r)
	if err != nil {
		h.error(w, r, err)
		return
	}
	var req SaveBookmarkRequest
	if err := h.decode(r, &req); err != nil {
		h.error(w, r, err)
		return
	}
	saved, err := store.SaveBookmark(req.Recipe, req.Status, req.Tags)
	if err != nil {
		h.error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, saved, "북마크에 저장되었습니다.")
}

// RemoveBookmark handles DELETE /api/v1/bookmarks/{id}
func (h *Handlers) RemoveBookmark(w http.ResponseWriter, r *http.Request) {
	store, err := h.store(r)
	if err != nil {
		h.error(w, r, err)
		return
	}
	if err := store.RemoveBookmark(param(r, "id")); err != nil {
		h.error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetBookmarkStatus handles PUT /api/v1/bookmarks/{id}/status
func (h *Handlers) SetBookmarkStatus(w http.ResponseWriter, r *http.Request) {
	store, err := h.store(r)
	if err != nil {
		h.error(w, r, err)
		return
	}
	var req StatusRequest
	if err := h.decode(r, &req); err != nil {
		h.error(w, r, err)
		return
	}
	if err := store.SetBookmarkStatus(param(r, "id"), req.Status); err != nil {
		h.error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddBookmarkTag handles POST /api/v1/bookmarks/{id}/tags
func (h *Handlers) AddBookmarkTag(w http.ResponseWriter, r *http.Request) {
	store, err := h.store(r)
	if err != nil {
		h.error(w, r, err)
		return
	}
	var req TagRequest
	if err := h.decode(r, &req); err != nil {
		h.error(w, r, err)
		return
	}
	changed, err := store.AddBookmarkTag(param(r, "id"), req.Tag)
	if err != nil {
		h.error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, TagResponse{Changed: changed}, "")
}

// RemoveBookmarkTag handles DELETE /api/v1/bookmarks/{id}/tags/{tag}
func (h *Handlers) RemoveBookmarkTag(w http.ResponseWriter, r *http.Request) {
	store, err := h.store(r)
	if err != nil {
		h.error(w, r, err)
		return
	}
	changed, err := store.RemoveBookmarkTag(param(r, "id"), param(r, "tag"))
	if err != nil {
		h.error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, TagResponse{Changed: changed}, "")
}

// EditBookmark handles POST /api/v1/bookmarks/{id}/edit
func (h *Handlers) EditBookmark(w http.ResponseWriter, r *http.Request) {
	store, err := h.store(r)
	if err != nil {
		h.error(w, r, err)
		return
	}
	draft, err := store.EditBookmark(param(r, "id"))
	if err != nil {
		h.error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, draft, "")
}

// Draft handles GET /api/v1/bookmarks/draft
func (h *Handlers) Draft(w http.ResponseWriter, r *http.Request) {
	store, err := h.store(r)
	if err != nil {
		h.error(w, r, err)
		return
	}
	draft := store.Draft()
	if draft == nil {
		h.error(w, r, errors.NewAppError(errors.CodeNotFound, recipe.ErrNoDraft.Error(), ""))
		return
	}
	respond.JSON(w, http.StatusOK, draft, "")
}

// SetDraftStatus handles PUT /api/v1/bookmarks/draft
func (h *Handlers) SetDraftStatus(w http.ResponseWriter, r *http.Request) {
	store, err := h.store(r)
	if err != nil {
		h.error(w, r, err)
		return
	}
	var req StatusRequest
	if err := h.decode(r, &req); err != nil {
		h.error(w, r, err)
		return
	}
	if err := store.SetDraftStatus(req.Status); err != nil {
		h.error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, store.Draft(), "")
}

// CancelDraft handles DELETE /api/v1/bookmarks/draft
func (h *Handlers) CancelDraft(w http.ResponseWriter, r *http.Request) {
	store, err := h.store(r)
	if err != nil {
		h.error(w, r, err)
		return
	}
	store.CancelDraft()
	w.WriteHeader(http.StatusNoContent)
}

// AddDraftTag handles POST /api/v1/bookmarks/draft/tags
func (h *Handlers) AddDraftTag(w http.ResponseWriter, r *http.Request) {
	store, err := h.store(r)
	if err != nil {
		h.error(w, r, err)
		return
	}
	var req TagRequest
	if err := h.decode(r, &req); err != nil {
		h.error(w, r, err)
		return
	}
	changed, err := store.AddDraftTag(req.Tag)
	if err != nil {
		h.error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, TagResponse{Changed: changed}, "")
}

// RemoveDraftTag handles DELETE /api/v1/bookmarks/draft/tags/{tag}
func (h *Handlers) RemoveDraftTag(w http.ResponseWriter, r *http.Request) {
	store, err := h.store(r)
	if err != nil {
		h.error(w, r, err)
		return
	}
	changed, err := store.RemoveDraftTag(param(r, "tag"))
	if err != nil {
		h.error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, TagResponse{Changed: changed}, "")
}

// SaveDraft handles POST /api/v1/bookmarks/draft/save
func (h *Handlers) SaveDraft(w http.ResponseWriter, r *http.Request) {
	store, err := h.store(r)
	if err != nil {
		h.error(w, r, err)
		return
	}
	saved, err := store.SaveDraft()
	if err != nil {
		h.error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, saved, "북마크에 저장되었습니다.")
}
