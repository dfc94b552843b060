package recipe

import (
	"fmt"
	"strings"

	"github.com/pantrypairing/server/internal/domain/pantry"
)

// Request type markers echoed by the model.
const (
	RequestTypeRecommendation = "Recipe_Recommendation"
	RequestTypePairing        = "Alcohol_Pairing"
)

// Expected cardinalities requested from the model.
const (
	RecommendedRecipeCount  = 3
	PairingItemsPerCategory = 5
)

// RecommendationResponse is the model's answer to a recipe request.
type RecommendationResponse struct {
	RequestType            string                    `json:"request_type" validate:"required"`
	InputIngredientsDetail []pantry.IngredientDetail `json:"input_ingredients_detail" validate:"dive"`
	RecipeRecommendations  []Recipe                  `json:"recipe_recommendations" validate:"required,min=1,dive"`
	AlcoholPairings        []AlcoholPairing          `json:"alcohol_pairings" validate:"dive"`
}

// Conformance lists deviations from what the prompt asked for: three recipes
// whose alcohol pairings do not overlap.
func (r RecommendationResponse) Conformance() []string {
	var violations []string
	if n := len(r.RecipeRecommendations); n != RecommendedRecipeCount {
		violations = append(violations, fmt.Sprintf("expected %d recipes, got %d", RecommendedRecipeCount, n))
	}

	owner := make(map[string]string)
	for _, rec := range r.RecipeRecommendations {
		for _, p := range rec.AlcoholPairings {
			key := strings.ToLower(strings.TrimSpace(p.Name))
			if prev, ok := owner[key]; ok && prev != rec.Name {
				violations = append(violations, fmt.Sprintf("alcohol %q paired with both %q and %q", p.Name, prev, rec.Name))
				continue
			}
			owner[key] = rec.Name
		}
	}
	return violations
}

// PairingItem is a refrigerator-version suggestion backed by a popup recipe.
type PairingItem struct {
	ID                  string `json:"id" validate:"required"`
	Name                string `json:"name" validate:"required"`
	IsDetailedAvailable bool   `json:"is_detailed_available"`
	Reason              string `json:"reason" validate:"required"`
}

// SimplePairingItem is a convenience store or delivery suggestion.
type SimplePairingItem struct {
	Name   string `json:"name" validate:"required"`
	Reason string `json:"reason" validate:"required"`
}

// PairingRecommendations groups suggestions by where the food comes from.
type PairingRecommendations struct {
	RefrigeratorVersion     []PairingItem       `json:"refrigerator_version" validate:"required,dive"`
	ConvenienceStoreVersion []SimplePairingItem `json:"convenience_store_version" validate:"required,dive"`
	DeliveryVersion         []SimplePairingItem `json:"delivery_version" validate:"required,dive"`
}

// PairingResponse is the model's answer to an alcohol pairing request.
type PairingResponse struct {
	RequestType          string                 `json:"request_type" validate:"required"`
	SelectedAlcohol      string                 `json:"selected_alcohol" validate:"required"`
	Recommendations      PairingRecommendations `json:"recommendations"`
	DetailedPopupRecipes []Recipe               `json:"detailed_popup_recipes" validate:"required,dive"`
}

// RecipeByID resolves a refrigerator-version id to its popup recipe.
func (p PairingResponse) RecipeByID(id string) (Recipe, bool) {
	for _, r := range p.DetailedPopupRecipes {
		if r.ID == id {
			return r, true
		}
	}
	return Recipe{}, false
}

// Conformance lists deviations from what the prompt asked for: five items per
// category and a popup recipe for every refrigerator-version id.
func (p PairingResponse) Conformance() []string {
	var violations []string
	check := func(name string, n int) {
		if n != PairingItemsPerCategory {
			violations = append(violations, fmt.Sprintf("expected %d %s, got %d", PairingItemsPerCategory, name, n))
		}
	}
	check("refrigerator_version items", len(p.Recommendations.RefrigeratorVersion))
	check("convenience_store_version items", len(p.Recommendations.ConvenienceStoreVersion))
	check("delivery_version items", len(p.Recommendations.DeliveryVersion))
	check("detailed_popup_recipes", len(p.DetailedPopupRecipes))

	for _, item := range p.Recommendations.RefrigeratorVersion {
		if _, ok := p.RecipeByID(item.ID); !ok {
			violations = append(violations, fmt.Sprintf("refrigerator item %q has no popup recipe", item.ID))
		}
	}
	return violations
}
