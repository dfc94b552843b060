// Package pantry holds the ingredient inventory types.
package pantry

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// IngredientDetail is one pantry entry. ID is assigned when the entry enters
// a session; entries decoded from model output have no ID.
type IngredientDetail struct {
	ID             string          `json:"id,omitempty"`
	Item           string          `json:"item" validate:"required"`
	Quantity       string          `json:"quantity"`
	Storage        StorageLocation `json:"storage" validate:"required,storage"`
	ExpirationDate string          `json:"expiration_date" validate:"required"`
}

// Input is the user-editable part of an ingredient.
type Input struct {
	Item           string `json:"item"`
	Quantity       string `json:"quantity"`
	Storage        string `json:"storage"`
	ExpirationDate string `json:"expiration_date"`
}

// NewIngredient validates input and returns an ingredient with a fresh ID.
func NewIngredient(in Input) (IngredientDetail, error) {
	item := strings.TrimSpace(in.Item)
	if item == "" {
		return IngredientDetail{}, ErrEmptyItem
	}

	storage := StorageRefrigerated
	if strings.TrimSpace(in.Storage) != "" {
		s, err := ParseStorage(in.Storage)
		if err != nil {
			return IngredientDetail{}, err
		}
		storage = s
	}

	expiration, err := NormalizeExpiration(in.ExpirationDate)
	if err != nil {
		return IngredientDetail{}, err
	}

	return IngredientDetail{
		ID:             uuid.NewString(),
		Item:           item,
		Quantity:       strings.TrimSpace(in.Quantity),
		Storage:        storage,
		ExpirationDate: expiration,
	}, nil
}

// WithNewID returns a copy of d with a freshly generated ID.
func (d IngredientDetail) WithNewID() IngredientDetail {
	d.ID = uuid.NewString()
	return d
}

// Label renders the ingredient as "item (quantity)".
func (d IngredientDetail) Label() string {
	if d.Quantity == "" {
		return d.Item
	}
	return fmt.Sprintf("%s (%s)", d.Item, d.Quantity)
}

// GroupByStorage partitions items by storage location, keeping their order.
// Every location is present in the result.
func GroupByStorage(items []IngredientDetail) map[StorageLocation][]IngredientDetail {
	groups := make(map[StorageLocation][]IngredientDetail, len(StorageLocations))
	for _, s := range StorageLocations {
		groups[s] = []IngredientDetail{}
	}
	for _, item := range items {
		groups[item.Storage] = append(groups[item.Storage], item)
	}
	return groups
}
