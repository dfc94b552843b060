package handlers

import (
	"net/http"

	"github.com/pantrypairing/server/internal/infrastructure/http/respond"
)

// ShoppingRequest adds an item to the shopping list.
type ShoppingRequest struct {
	Item string `json:"item" validate:"required"`
}

// ShoppingAddResponse reports the outcome of an add.
type ShoppingAddResponse struct {
	Added  bool     `json:"added"`
	Notice string   `json:"notice"`
	Items  []string `json:"items"`
}

// ShoppingList handles GET /api/v1/shopping
func (h *Handlers) ShoppingList(w http.ResponseWriter, r *http.Request) {
	store, err := h.store(r)
	if err != nil {
		h.error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, store.ShoppingList(), "")
}

// AddShoppingItem handles POST /api/v1/shopping
func (h *Handlers) AddShoppingItem(w http.ResponseWriter, r *http.Request) {
	store, err := h.store(r)
	if err != nil {
		h.error(w, r, err)
		return
	}
	var req ShoppingRequest
	if err := h.decode(r, &req); err != nil {
		h.error(w, r, err)
		return
	}
	added, notice, err := store.AddToShoppingList(req.Item)
	if err != nil {
		h.error(w, r, err)
		return
	}
	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	respond.JSON(w, status, ShoppingAddResponse{Added: added, Notice: notice, Items: store.ShoppingList()}, notice)
}

// RemoveShoppingItem handles DELETE /api/v1/shopping/{item}
func (h *Handlers) RemoveShoppingItem(w http.ResponseWriter, r *http.Request) {
	store, err := h.store(r)
	if err != nil {
		h.error(w, r, err)
		return
	}
	if err := store.RemoveFromShoppingList(param(r, "item")); err != nil {
		h.error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PurchaseLink handles GET /api/v1/shopping/{item}/link
func (h *Handlers) PurchaseLink(w http.ResponseWriter, r *http.Request) {
	store, err := h.store(r)
	if err != nil {
		h.error(w, r, err)
		return
	}
	link, err := store.PurchaseLink(param(r, "item"))
	if err != nil {
		h.error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"url": link}, "")
}
