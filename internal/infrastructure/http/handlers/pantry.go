package handlers

import (
	"context"
	"encoding/base64"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/pantrypairing/server/internal/domain/pantry"
	"github.com/pantrypairing/server/internal/infrastructure/http/respond"
	"github.com/pantrypairing/server/internal/ports/outbound"
	"github.com/pantrypairing/server/pkg/errors"
)

// IngredientRequest adds or replaces a pantry item.
type IngredientRequest struct {
	Item           string `json:"item" validate:"required"`
	Quantity       string `json:"quantity"`
	Storage        string `json:"storage"`
	ExpirationDate string `json:"expiration_date"`
}

func (req IngredientRequest) input() pantry.Input {
	return pantry.Input{
		Item:           req.Item,
		Quantity:       req.Quantity,
		Storage:        req.Storage,
		ExpirationDate: req.ExpirationDate,
	}
}

// ImageRequest carries an image inline as base64.
type ImageRequest struct {
	MIMEType string `json:"mime_type" validate:"required"`
	Data     string `json:"data" validate:"required,base64"`
}

// PantryResponse lists the pantry flat and by storage.
type PantryResponse struct {
	Items     []pantry.IngredientDetail                            `json:"items"`
	ByStorage map[pantry.StorageLocation][]pantry.IngredientDetail `json:"by_storage"`
}

// ListPantry handles GET /api/v1/pantry
func (h *Handlers) ListPantry(w http.ResponseWriter, r *http.Request) {
	store, err := h.store(r)
	if err != nil {
		h.error(w, r, err)
		return
	}
	items := store.Pantry()
	respond.JSON(w, http.StatusOK, PantryResponse{Items: items, ByStorage: pantry.GroupByStorage(items)}, "")
}

// AddIngredient handles POST /api/v1/pantry
func (h *Handlers) AddIngredient(w http.ResponseWriter, r *http.Request) {
	store, err := h.store(r)
	if err != nil {
		h.error(w, r, err)
		return
	}
	var req IngredientRequest
	if err := h.decode(r, &req); err != nil {
		h.error(w, r, err)
		return
	}
	item, err := store.AddIngredient(req.input())
	if err != nil {
		h.error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, item, "재료가 추가되었습니다.")
}

// UpdateIngredient handles PUT /api/v1/pantry/{id}
func (h *Handlers) UpdateIngredient(w http.ResponseWriter, r *http.Request) {
	store, err := h.store(r)
	if err != nil {
		h.error(w, r, err)
		return
	}
	var req IngredientRequest
	if err := h.decode(r, &req); err != nil {
		h.error(w, r, err)
		return
	}
	item, err := store.UpdateIngredient(param(r, "id"), req.input())
	if err != nil {
		h.error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, item, "")
}

// RemoveIngredient handles DELETE /api/v1/pantry/{id}
func (h *Handlers) RemoveIngredient(w http.ResponseWriter, r *http.Request) {
	store, err := h.store(r)
	if err != nil {
		h.error(w, r, err)
		return
	}
	if err := store.RemoveIngredient(param(r, "id")); err != nil {
		h.error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClearStorage handles DELETE /api/v1/pantry?storage=
func (h *Handlers) ClearStorage(w http.ResponseWriter, r *http.Request) {
	store, err := h.store(r)
	if err != nil {
		h.error(w, r, err)
		return
	}
	removed, err := store.ClearStorage(r.URL.Query().Get("storage"))
	if err != nil {
		h.error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]int{"removed": removed}, "")
}

// AnalyzeImage handles POST /api/v1/pantry/analysis
func (h *Handlers) AnalyzeImage(w http.ResponseWriter, r *http.Request) {
	store, err := h.store(r)
	if err != nil {
		h.error(w, r, err)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	img, err := h.readImage(r)
	if err != nil {
		h.error(w, r, err)
		return
	}

	h.runAI(w, r, "analysis", func(ctx context.Context) (interface{}, error) {
		return store.AnalyzeImage(ctx, img)
	})
}

// readImage accepts a multipart "image" field or a JSON ImageRequest.
func (h *Handlers) readImage(r *http.Request) (outbound.Image, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
			return outbound.Image{}, errors.NewBadRequestError("이미지를 읽을 수 없습니다.").WithCause(err)
		}
		file, header, err := r.FormFile("image")
		if err != nil {
			return outbound.Image{}, errors.NewValidationError("이미지를 선택해주세요.").WithCause(err)
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			return outbound.Image{}, err
		}
		mimeType := header.Header.Get("Content-Type")
		if mimeType == "" || mimeType == "application/octet-stream" {
			mimeType = http.DetectContentType(data)
		}
		return outbound.Image{MIMEType: mimeType, Data: data}, nil
	}

	var req ImageRequest
	if err := h.decode(r, &req); err != nil {
		return outbound.Image{}, err
	}
	data, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		return outbound.Image{}, errors.NewValidationError("이미지 데이터가 올바르지 않습니다.").WithCause(err)
	}
	if !strings.HasPrefix(req.MIMEType, "image/") {
		return outbound.Image{}, errors.NewValidationError("이미지 형식만 지원합니다.")
	}
	return outbound.Image{MIMEType: req.MIMEType, Data: data}, nil
}

// ConfirmAnalysis handles POST /api/v1/pantry/analysis/confirm
func (h *Handlers) ConfirmAnalysis(w http.ResponseWriter, r *http.Request) {
	store, err := h.store(r)
	if err != nil {
		h.error(w, r, err)
		return
	}
	added, err := store.ConfirmAnalysis()
	if err != nil {
		h.error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]int{"added": added}, "")
}

// DiscardAnalysis handles DELETE /api/v1/pantry/analysis
func (h *Handlers) DiscardAnalysis(w http.ResponseWriter, r *http.Request) {
	store, err := h.store(r)
	if err != nil {
		h.error(w, r, err)
		return
	}
	store.DiscardAnalysis()
	w.WriteHeader(http.StatusNoContent)
}
