package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/pantrypairing/server/internal/domain/recipe"
	"github.com/pantrypairing/server/internal/infrastructure/http/respond"
	"github.com/pantrypairing/server/pkg/errors"
)

// RecommendRequest selects pantry items by id. An empty list uses the whole
// pantry.
type RecommendRequest struct {
	IngredientIDs []string `json:"ingredient_ids" validate:"omitempty,dive,required"`
}

// PairingRequest names the alcohol to pair with.
type PairingRequest struct {
	Alcohol string `json:"alcohol" validate:"required"`
}

// Expiry handles GET /api/v1/expiry. The pantry is re-checked against today.
func (h *Handlers) Expiry(w http.ResponseWriter, r *http.Request) {
	store, err := h.store(r)
	if err != nil {
		h.error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, store.CheckExpirations(), "")
}

// DismissExpiry handles DELETE /api/v1/expiry
func (h *Handlers) DismissExpiry(w http.ResponseWriter, r *http.Request) {
	store, err := h.store(r)
	if err != nil {
		h.error(w, r, err)
		return
	}
	store.DismissExpiryWarning()
	w.WriteHeader(http.StatusNoContent)
}

// RecommendForExpiring handles POST /api/v1/expiry/recommendations
func (h *Handlers) RecommendForExpiring(w http.ResponseWriter, r *http.Request) {
	store, err := h.store(r)
	if err != nil {
		h.error(w, r, err)
		return
	}
	store.CheckExpirations()
	if len(store.ExpiringItems()) == 0 {
		h.error(w, r, errors.NewValidationError("유통기한이 임박한 재료가 없습니다."))
		return
	}
	h.runAI(w, r, "recipes.expiring", func(ctx context.Context) (interface{}, error) {
		return store.RecommendForExpiring(ctx)
	})
}

// RecommendRecipes handles POST /api/v1/recipes/recommendations
func (h *Handlers) RecommendRecipes(w http.ResponseWriter, r *http.Request) {
	store, err := h.store(r)
	if err != nil {
		h.error(w, r, err)
		return
	}
	var req RecommendRequest
	if r.ContentLength != 0 {
		if err := h.decode(r, &req); err != nil {
			h.error(w, r, err)
			return
		}
	}
	if len(req.IngredientIDs) == 0 && len(store.Pantry()) == 0 {
		h.error(w, r, errors.NewValidationError("추천받을 재료를 선택해주세요."))
		return
	}
	h.runAI(w, r, "recipes", func(ctx context.Context) (interface{}, error) {
		return store.RecommendRecipes(ctx, req.IngredientIDs)
	})
}

// Recommendations handles GET /api/v1/recipes/recommendations
func (h *Handlers) Recommendations(w http.ResponseWriter, r *http.Request) {
	store, err := h.store(r)
	if err != nil {
		h.error(w, r, err)
		return
	}
	resp := store.Recommendations()
	if resp == nil {
		h.error(w, r, errors.NewNotFoundError("추천 결과"))
		return
	}
	respond.JSON(w, http.StatusOK, resp, "")
}

// RecommendPairings handles POST /api/v1/pairings
func (h *Handlers) RecommendPairings(w http.ResponseWriter, r *http.Request) {
	store, err := h.store(r)
	if err != nil {
		h.error(w, r, err)
		return
	}
	var req PairingRequest
	if err := h.decode(r, &req); err != nil {
		h.error(w, r, err)
		return
	}
	h.runAI(w, r, "pairing", func(ctx context.Context) (interface{}, error) {
		return store.RecommendPairings(ctx, req.Alcohol)
	})
}

// Pairing handles GET /api/v1/pairings
func (h *Handlers) Pairing(w http.ResponseWriter, r *http.Request) {
	store, err := h.store(r)
	if err != nil {
		h.error(w, r, err)
		return
	}
	resp := store.Pairing()
	if resp == nil {
		h.error(w, r, errors.NewNotFoundError("페어링 결과"))
		return
	}
	respond.JSON(w, http.StatusOK, resp, "")
}

// PairingRecipe handles GET /api/v1/pairings/recipes/{id}
func (h *Handlers) PairingRecipe(w http.ResponseWriter, r *http.Request) {
	store, err := h.store(r)
	if err != nil {
		h.error(w, r, err)
		return
	}
	rec, ok := store.PairingRecipe(param(r, "id"))
	if !ok {
		h.error(w, r, errors.NewAppError(errors.CodeNotFound, recipe.ErrPairingRecipeMissing.Error(), ""))
		return
	}
	respond.JSON(w, http.StatusOK, rec, "")
}

// PairingSuggestions handles GET /api/v1/pairings/suggestions?count=
func (h *Handlers) PairingSuggestions(w http.ResponseWriter, r *http.Request) {
	count := recipe.DefaultSuggestionCount
	if raw := r.URL.Query().Get("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			h.error(w, r, errors.NewValidationError("count는 양의 정수여야 합니다."))
			return
		}
		count = n
	}

	h.rngMu.Lock()
	picks := recipe.SuggestAlcohols(count, h.rng)
	h.rngMu.Unlock()

	respond.JSON(w, http.StatusOK, map[string][]string{"alcohols": picks}, "")
}
